package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobboard/internal/client"
	"github.com/justsurfingit/jobboard/internal/events"
	"github.com/justsurfingit/jobboard/internal/handlers"
	"github.com/justsurfingit/jobboard/internal/identity"
	"github.com/justsurfingit/jobboard/internal/locations"
	"github.com/justsurfingit/jobboard/internal/membership"
	"github.com/justsurfingit/jobboard/internal/models"
	"github.com/justsurfingit/jobboard/internal/repository"
	"github.com/justsurfingit/jobboard/internal/server"
	"github.com/justsurfingit/jobboard/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSuggester struct{ calls int }

func (s *staticSuggester) Suggest(ctx context.Context, query string) ([]string, error) {
	s.calls++
	return []string{query + "is, France"}, nil
}

// slowSuggester answers after delay, like a lookup service under load.
type slowSuggester struct {
	delay time.Duration
	calls atomic.Int32
}

func (s *slowSuggester) Suggest(ctx context.Context, query string) ([]string, error) {
	s.calls.Add(1)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return []string{query}, nil
	}
}

type testEnv struct {
	web       *gin.Engine
	repo      *repository.MemoryJobRepository
	members   *membership.MemoryProvider
	sessions  *identity.SessionProvider
	suggester *staticSuggester
	token     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	suggester := &staticSuggester{}
	env := newTestEnvWith(t, suggester)
	env.suggester = suggester
	return env
}

func newTestEnvWith(t *testing.T, suggester locations.Suggester) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryJobRepository()
	svc := services.NewJobService(repo, events.NewNoopPublisher(), zap.NewNop())
	api := httptest.NewServer(server.NewRouter(server.RouterConfig{
		JobHandler: handlers.NewJobHandler(svc, zap.NewNop()),
		Logger:     zap.NewNop(),
	}))
	t.Cleanup(api.Close)

	sessions, err := identity.NewSessionProvider("test-secret")
	require.NoError(t, err)
	token, err := sessions.Issue(identity.User{ID: "user_1", Name: "Jo", Email: "jo@acme.com"}, time.Hour)
	require.NoError(t, err)

	env := &testEnv{
		repo:     repo,
		members:  membership.NewMemoryProvider(),
		sessions: sessions,
		token:    token,
	}
	env.web = NewRouter(Config{
		Jobs:        client.New(api.URL, 5*time.Second, zap.NewNop()),
		Identity:    sessions,
		Sessions:    sessions,
		Memberships: env.members,
		Suggester:   suggester,
		Logger:      zap.NewNop(),
	})
	return env
}

func (e *testEnv) do(method, path string, form url.Values, signedIn bool) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if signedIn {
		req.AddCookie(&http.Cookie{Name: identity.SessionCookie, Value: e.token})
	}
	w := httptest.NewRecorder()
	e.web.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedJob(t *testing.T) *models.Job {
	t.Helper()
	job := &models.Job{
		JobTitle:       "Backend Engineer",
		JobDescription: "Build APIs",
		Location:       "Remote",
		JobType:        models.JobTypeFullTime,
		Salary:         "$90k-$110k",
		Organization:   models.Organization{Name: "Acme"},
		Poster:         models.Poster{Name: "Jo", Email: "jo@acme.com"},
		Requirements:   []string{"Go"},
	}
	require.NoError(t, e.repo.Create(context.Background(), job))
	return job
}

func (e *testEnv) seedOrg(t *testing.T) membership.Membership {
	t.Helper()
	m, err := e.members.Create(context.Background(), "user_1", "Acme")
	require.NoError(t, err)
	return m
}

func TestHome(t *testing.T) {
	env := newTestEnv(t)
	job := env.seedJob(t)

	w := env.do(http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Recent Jobs")
	assert.Contains(t, body, `href="/jobPage/`+job.ID+`"`)
	assert.Contains(t, body, "Backend Engineer")
	assert.Contains(t, body, "Acme")
	assert.Contains(t, body, "Remote | United States")
	assert.Contains(t, body, "2 weeks ago")
	assert.Contains(t, body, "Post a job")
	assert.Contains(t, body, `href="/sign-in"`)
}

func TestHomeAPIDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := httptest.NewServer(http.NotFoundHandler())
	addr := api.URL
	api.Close()

	r := NewRouter(Config{
		Jobs:        client.New(addr, time.Second, zap.NewNop()),
		Memberships: membership.NewMemoryProvider(),
		Logger:      zap.NewNop(),
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), jobsUnavailableMessage)
}

func TestJobPage(t *testing.T) {
	env := newTestEnv(t)
	job := env.seedJob(t)

	w := env.do(http.MethodGet, "/jobPage/"+job.ID, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<h1>Backend Engineer</h1>")
	assert.Contains(t, body, "Build APIs")
	assert.Contains(t, body, "Remote")
	assert.Contains(t, body, "Full-Time")
	assert.Contains(t, body, "<li>Go</li>")
	assert.Contains(t, body, job.CreatedAt.Format("Jan 2, 2006"))
	assert.NotContains(t, body, "Benefits")

	w = env.do(http.MethodGet, "/jobPage/64b7f0c2a1b2c3d4e5f60718", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Job not found")
}

func TestTemplateFallbacks(t *testing.T) {
	assert.Equal(t, unknownOrganization, funcs["orgLabel"].(func(models.Organization) string)(models.Organization{}))
	assert.Equal(t, notSpecified, funcs["locationLabel"].(func(string) string)(" "))
	assert.Equal(t, notAvailable, funcs["postedDate"].(func(time.Time) string)(time.Time{}))
}

func TestNewListingSignedOut(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/new-listing", "/new-listing/org_x"} {
		w := env.do(http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Contains(t, w.Body.String(), "Please sign up or log in to post a job")
	}
}

func TestNewListingNoMemberships(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/new-listing", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You are not part of any organization yet.")
	assert.Contains(t, w.Body.String(), "Create a New Organization")
}

func TestCreateOrganization(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/new-listing/organizations", url.Values{"name": {"Acme"}}, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	w = env.do(http.MethodPost, "/new-listing/organizations", url.Values{"name": {"   "}}, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	page, err := env.members.List(context.Background(), "user_1", 1)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Acme", page.Data[0].Organization.Name)

	w = env.do(http.MethodGet, "/new-listing", nil, true)
	assert.Contains(t, w.Body.String(), `href="/new-listing/`+page.Data[0].Organization.ID+`"`)
}

func TestMembershipPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 6; i++ {
		env.seedOrg(t)
	}

	w := env.do(http.MethodGet, "/new-listing", nil, true)
	body := w.Body.String()
	assert.Contains(t, body, `href="/new-listing?page=2"`)
	assert.NotContains(t, body, "Create a New Organization")

	w = env.do(http.MethodGet, "/new-listing?page=2", nil, true)
	body = w.Body.String()
	assert.Contains(t, body, `href="/new-listing?page=1"`)
	assert.Contains(t, body, "Create a New Organization")
}

func TestOpenPosting(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedOrg(t)

	w := env.do(http.MethodGet, "/new-listing/"+m.Organization.ID, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Post a Job for Acme")
	assert.Contains(t, body, `value="Jo"`)
	assert.Contains(t, body, `value="jo@acme.com"`)

	w = env.do(http.MethodGet, "/new-listing/org_not_mine", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func postingForm() url.Values {
	return url.Values{
		"title":        {"Backend Engineer"},
		"description":  {"Build APIs"},
		"location":     {"Remote"},
		"jobType":      {"Full-Time"},
		"salary":       {"$90k-$110k"},
		"requirements": {"Go\n\nPostgres"},
		"posterName":   {"Jo"},
		"posterEmail":  {"jo@acme.com"},
		"action":       {"post"},
	}
}

func TestSubmitPosting(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedOrg(t)

	w := env.do(http.MethodPost, "/new-listing/"+m.Organization.ID, postingForm(), true)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	jobs, err := env.repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Backend Engineer", jobs[0].JobTitle)
	assert.Equal(t, "Acme", jobs[0].Organization.Name)
	assert.Equal(t, []string{"Go", "Postgres"}, jobs[0].Requirements)
	assert.Equal(t, "jo@acme.com", jobs[0].Poster.Email)
}

func TestSubmitPostingSkipsLocationLookup(t *testing.T) {
	suggester := &slowSuggester{delay: 2 * time.Second}
	env := newTestEnvWith(t, suggester)
	m := env.seedOrg(t)

	start := time.Now()
	w := env.do(http.MethodPost, "/new-listing/"+m.Organization.ID, postingForm(), true)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, suggester.calls.Load())

	jobs, err := env.repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Remote", jobs[0].Location)
}

func TestSubmitPostingEmptySalary(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedOrg(t)
	form := postingForm()
	form.Set("salary", "")

	w := env.do(http.MethodPost, "/new-listing/"+m.Organization.ID, form, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "All fields are required.")
	assert.Contains(t, body, `value="Backend Engineer"`)

	jobs, err := env.repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSubmitPostingServerRejects(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedOrg(t)
	form := postingForm()
	form.Set("posterEmail", "not-an-email")

	w := env.do(http.MethodPost, "/new-listing/"+m.Organization.ID, form, true)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "poster.email: Please enter a valid email address")

	jobs, err := env.repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCancelKeepsDraft(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedOrg(t)
	form := postingForm()
	form.Set("action", "cancel")

	w := env.do(http.MethodPost, "/new-listing/"+m.Organization.ID, form, true)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	jobs, err := env.repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)

	w = env.do(http.MethodGet, "/new-listing/"+m.Organization.ID, nil, true)
	assert.Contains(t, w.Body.String(), `value="Backend Engineer"`)
	assert.Contains(t, w.Body.String(), `value="$90k-$110k"`)
}

func TestLocations(t *testing.T) {
	env := newTestEnv(t)
	m := env.seedOrg(t)
	path := "/new-listing/" + m.Organization.ID + "/locations?query="

	w := env.do(http.MethodGet, path+"P", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, w.Body.String())
	assert.Zero(t, env.suggester.calls)

	w = env.do(http.MethodGet, path+"Par", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"suggestions":["Paris, France"]}`, w.Body.String())

	w = env.do(http.MethodGet, path+"Par", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignIn(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/sign-in", url.Values{"name": {"Sam"}, "email": {"sam@acme.com"}}, false)
	require.Equal(t, http.StatusSeeOther, w.Code)

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == identity.SessionCookie {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	user, err := env.sessions.Parse(session.Value)
	require.NoError(t, err)
	assert.Equal(t, "Sam", user.Name)
	assert.Equal(t, "sam@acme.com", user.Email)

	w = env.do(http.MethodPost, "/sign-in", url.Values{"name": {"Sam"}}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
