package web

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/justsurfingit/jobboard/internal/cache"
	"github.com/justsurfingit/jobboard/internal/posting"
	"go.uber.org/zap"
)

const draftTTL = 24 * time.Hour

// drafts keeps posting form values between requests so a cancelled or failed
// form reopens with what the user typed.
type drafts struct {
	cache  cache.Cache
	logger *zap.Logger
}

func newDrafts(c cache.Cache, logger *zap.Logger) *drafts {
	if c == nil {
		c = cache.NewMemory(cache.Options{DefaultTTL: draftTTL})
	}
	return &drafts{cache: c, logger: logger}
}

func draftKey(userID, orgID string) string {
	return "drafts:" + userID + ":" + orgID
}

func (d *drafts) load(ctx context.Context, userID, orgID string) (posting.Fields, bool) {
	raw, err := d.cache.Get(ctx, draftKey(userID, orgID))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			d.logger.Warn("failed to load posting draft", zap.Error(err))
		}
		return posting.Fields{}, false
	}
	var fields posting.Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		d.logger.Warn("discarding unreadable posting draft", zap.Error(err))
		return posting.Fields{}, false
	}
	return fields, true
}

func (d *drafts) save(ctx context.Context, userID, orgID string, fields posting.Fields) {
	data, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := d.cache.Set(ctx, draftKey(userID, orgID), data, draftTTL); err != nil {
		d.logger.Warn("failed to save posting draft", zap.Error(err))
	}
}

func (d *drafts) discard(ctx context.Context, userID, orgID string) {
	if err := d.cache.Delete(ctx, draftKey(userID, orgID)); err != nil {
		d.logger.Warn("failed to discard posting draft", zap.Error(err))
	}
}
