package locations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justsurfingit/jobboard/internal/cache"
	"github.com/justsurfingit/jobboard/internal/telemetry"
	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("jobboard/locations")

// Suggester returns place names matching a partial location. Results are
// advisory; callers ignore errors.
type Suggester interface {
	Suggest(ctx context.Context, query string) ([]string, error)
}

type suggestionResponse struct {
	Suggestions []string `json:"suggestions"`
}

type HTTPSuggester struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewHTTPSuggester(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPSuggester {
	return &HTTPSuggester{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (s *HTTPSuggester) Suggest(ctx context.Context, query string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Suggest")
	defer span.End()

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing locations url: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	u.RawQuery = q.Encode()
	span.SetAttributes(telemetry.String("http.url", u.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			s.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()
	span.SetAttributes(telemetry.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body suggestionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if body.Suggestions == nil {
		body.Suggestions = []string{}
	}
	return body.Suggestions, nil
}

// CachedSuggester serves repeated queries from a cache. Cache failures are
// logged and fall through to the wrapped Suggester.
type CachedSuggester struct {
	next   Suggester
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedSuggester(next Suggester, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedSuggester {
	return &CachedSuggester{next: next, cache: c, ttl: ttl, logger: logger}
}

func cacheKey(query string) string {
	return "locations:suggest:" + strings.ToLower(strings.TrimSpace(query))
}

func (s *CachedSuggester) Suggest(ctx context.Context, query string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "CachedSuggest")
	defer span.End()

	key := cacheKey(query)
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached []string
		if jerr := json.Unmarshal(raw, &cached); jerr == nil {
			span.SetAttributes(telemetry.String("cache.result", "hit"))
			return cached, nil
		}
		s.logger.Warn("discarding unreadable cached suggestions", zap.String("key", key))
	case errors.Is(err, cache.ErrNotFound):
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	default:
		span.SetAttributes(telemetry.String("cache.result", "error"))
		s.logger.Warn("cache error for location suggestions", zap.Error(err))
	}

	suggestions, err := s.next.Suggest(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(suggestions); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("failed to cache location suggestions", zap.Error(err))
		}
	}
	return suggestions, nil
}

// None is used when no lookup service is configured.
type None struct{}

func (None) Suggest(ctx context.Context, query string) ([]string, error) {
	return []string{}, nil
}

var (
	_ Suggester = (*HTTPSuggester)(nil)
	_ Suggester = (*CachedSuggester)(nil)
	_ Suggester = None{}
)
