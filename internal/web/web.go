package web

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/jobboard/internal/cache"
	"github.com/justsurfingit/jobboard/internal/client"
	"github.com/justsurfingit/jobboard/internal/handlers"
	"github.com/justsurfingit/jobboard/internal/identity"
	"github.com/justsurfingit/jobboard/internal/locations"
	"github.com/justsurfingit/jobboard/internal/membership"
	"github.com/justsurfingit/jobboard/internal/middleware"
	"github.com/justsurfingit/jobboard/internal/models"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	unknownOrganization = "Unknown Organization"
	notSpecified        = "Not specified"
	notAvailable        = "Not available"
	signInRequired      = "Please sign up or log in to post a job"
)

type Config struct {
	Jobs        *client.Client
	Identity    identity.Provider
	Sessions    *identity.SessionProvider // nil disables the local sign-in form
	Memberships membership.Provider
	Suggester   locations.Suggester
	Drafts      cache.Cache
	Health      *handlers.HealthHandler
	Logger      *zap.Logger
}

type Handler struct {
	jobs        *client.Client
	identity    identity.Provider
	sessions    *identity.SessionProvider
	memberships membership.Provider
	suggester   locations.Suggester
	drafts      *drafts
	logger      *zap.Logger
}

var funcs = template.FuncMap{
	"orgLabel": func(org models.Organization) string {
		if strings.TrimSpace(org.Name) == "" {
			return unknownOrganization
		}
		return org.Name
	},
	"locationLabel": func(location string) string {
		if strings.TrimSpace(location) == "" {
			return notSpecified
		}
		return location
	},
	"orDefault": func(fallback, v string) string {
		if strings.TrimSpace(v) == "" {
			return fallback
		}
		return v
	},
	"postedDate": func(t time.Time) string {
		if t.IsZero() {
			return notAvailable
		}
		return t.Format("Jan 2, 2006")
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"lines": func(items []string) string {
		return strings.Join(items, "\n")
	},
	"jobTypes": func() []models.JobType {
		return models.JobTypes
	},
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))
}

func NewRouter(cfg Config) *gin.Engine {
	h := &Handler{
		jobs:        cfg.Jobs,
		identity:    cfg.Identity,
		sessions:    cfg.Sessions,
		memberships: cfg.Memberships,
		suggester:   cfg.Suggester,
		drafts:      newDrafts(cfg.Drafts, cfg.Logger),
		logger:      cfg.Logger,
	}
	if h.identity == nil {
		h.identity = identity.SignedOut{}
	}
	if h.suggester == nil {
		h.suggester = locations.None{}
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(gin.Recovery())
	r.Use(middleware.Prometheus())
	r.SetHTMLTemplate(parseTemplates())

	if cfg.Health != nil {
		r.GET("/health", cfg.Health.Check)
	}

	r.GET("/", h.Home)
	r.GET("/jobPage/:id", h.JobPage)

	r.GET("/sign-in", h.SignInPage)
	r.POST("/sign-in", h.SignIn)
	r.POST("/sign-out", h.SignOut)

	listing := r.Group("/new-listing")
	{
		listing.GET("", h.NewListing)
		listing.POST("/organizations", h.CreateOrganization)
		listing.GET("/:org", h.OpenPosting)
		listing.POST("/:org", h.SubmitPosting)
		listing.GET("/:org/locations", h.Locations)
	}

	r.NoRoute(func(c *gin.Context) {
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{})
	})
	return r
}

// render adds the header state every page needs.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	user, signedIn := h.identity.CurrentUser(c.Request)
	data["User"] = user
	data["SignedIn"] = signedIn
	data["SignInEnabled"] = h.sessions != nil
	c.HTML(status, name, data)
}
