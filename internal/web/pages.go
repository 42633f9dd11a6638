package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/justsurfingit/jobboard/internal/client"
	"github.com/justsurfingit/jobboard/internal/identity"
	"github.com/justsurfingit/jobboard/internal/membership"
	"github.com/justsurfingit/jobboard/internal/posting"
	"go.uber.org/zap"
)

const (
	sessionTTL = 7 * 24 * time.Hour

	jobsUnavailableMessage = "Could not load jobs. Please try again later."
	jobFetchFailedMessage  = "An error occurred while fetching job data"
	createOrgFailedMessage = "Failed to create organization."
)

// Home is GET /
func (h *Handler) Home(c *gin.Context) {
	st := h.jobs.Jobs().Load(c.Request.Context(), struct{}{})
	data := gin.H{"Jobs": st.Data}
	if st.Err != nil {
		h.logger.Error("failed to load jobs", zap.Error(st.Err))
		data["Error"] = jobsUnavailableMessage
	}
	h.render(c, http.StatusOK, "home.html", data)
}

// JobPage is GET /jobPage/:id
func (h *Handler) JobPage(c *gin.Context) {
	st := h.jobs.Job().Load(c.Request.Context(), c.Param("id"))
	if st.Err == nil {
		h.render(c, http.StatusOK, "job.html", gin.H{"Job": st.Data})
		return
	}

	var apiErr *client.APIError
	if errors.As(st.Err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		h.render(c, http.StatusNotFound, "job.html", gin.H{"NotFound": true})
		return
	}
	h.logger.Error("failed to load job", zap.String("id", c.Param("id")), zap.Error(st.Err))
	h.render(c, http.StatusInternalServerError, "job.html", gin.H{"Error": jobFetchFailedMessage})
}

// SignInPage is GET /sign-in. It stands in for a hosted identity widget.
func (h *Handler) SignInPage(c *gin.Context) {
	if h.sessions == nil {
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{})
		return
	}
	h.render(c, http.StatusOK, "sign_in.html", gin.H{})
}

func (h *Handler) SignIn(c *gin.Context) {
	if h.sessions == nil {
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{})
		return
	}
	email := strings.TrimSpace(c.PostForm("email"))
	name := strings.TrimSpace(c.PostForm("name"))
	if email == "" {
		h.render(c, http.StatusBadRequest, "sign_in.html", gin.H{"Error": "Email is required.", "Name": name})
		return
	}

	// the same email always maps to the same user id
	user := identity.User{
		ID:    "user_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.ToLower(email))).String(),
		Name:  name,
		Email: email,
	}
	token, err := h.sessions.Issue(user, sessionTTL)
	if err != nil {
		h.logger.Error("failed to issue session", zap.Error(err))
		h.render(c, http.StatusInternalServerError, "sign_in.html", gin.H{"Error": "Could not sign in.", "Name": name})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(identity.SessionCookie, token, int(sessionTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) SignOut(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(identity.SessionCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// NewListing is GET /new-listing
func (h *Handler) NewListing(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	h.renderListing(c, http.StatusOK, user, listingView{})
}

// CreateOrganization is POST /new-listing/organizations. A blank name is
// ignored.
func (h *Handler) CreateOrganization(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.PostForm("name"))
	if name == "" {
		c.Redirect(http.StatusSeeOther, "/new-listing")
		return
	}
	if _, err := h.memberships.Create(c.Request.Context(), user.ID, name); err != nil {
		h.logger.Error("failed to create organization", zap.String("user", user.ID), zap.Error(err))
		h.renderListing(c, http.StatusOK, user, listingView{Error: createOrgFailedMessage, OrganizationName: name})
		return
	}
	c.Redirect(http.StatusSeeOther, "/new-listing")
}

// OpenPosting is GET /new-listing/:org
func (h *Handler) OpenPosting(c *gin.Context) {
	user, m, ok := h.requireMember(c)
	if !ok {
		return
	}
	flow := h.newFlow()
	if err := flow.Open(m.Organization.Name, user); err != nil {
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{})
		return
	}
	if fields, found := h.drafts.load(c.Request.Context(), user.ID, m.Organization.ID); found {
		flow.Restore(fields)
	}
	h.renderListing(c, http.StatusOK, user, listingView{Flow: flow, Selected: &m})
}

// SubmitPosting is POST /new-listing/:org. action=cancel closes the form and
// keeps what was typed.
func (h *Handler) SubmitPosting(c *gin.Context) {
	user, m, ok := h.requireMember(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	flow := h.newFlow()
	if err := flow.Open(m.Organization.Name, user); err != nil {
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{})
		return
	}

	if c.PostForm("action") == "cancel" {
		flow.Restore(formFields(c))
		flow.Cancel()
		h.drafts.save(ctx, user.ID, m.Organization.ID, flow.Fields())
		c.Redirect(http.StatusSeeOther, "/new-listing")
		return
	}

	flow.Fill(formFields(c))

	job, err := flow.Submit(ctx)
	if err != nil {
		h.drafts.save(ctx, user.ID, m.Organization.ID, flow.Fields())
		h.renderListing(c, http.StatusUnprocessableEntity, user, listingView{Flow: flow, Selected: &m})
		return
	}

	h.drafts.discard(ctx, user.ID, m.Organization.ID)
	h.logger.Info("job posted",
		zap.String("id", job.ID),
		zap.String("organization", m.Organization.Name),
		zap.String("user", user.ID))
	c.Redirect(http.StatusSeeOther, "/")
}

// Locations is GET /new-listing/:org/locations?query=
func (h *Handler) Locations(c *gin.Context) {
	user, ok := h.identity.CurrentUser(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": signInRequired})
		return
	}
	m, err := h.memberships.Get(c.Request.Context(), user.ID, c.Param("org"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}

	flow := h.newFlow()
	if err := flow.Open(m.Organization.Name, user); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}
	flow.SetLocation(c.Request.Context(), c.Query("query"))

	suggestions := flow.Suggestions()
	if suggestions == nil {
		suggestions = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

type listingView struct {
	Flow             *posting.Flow
	Selected         *membership.Membership
	Error            string
	OrganizationName string
}

func (h *Handler) renderListing(c *gin.Context, status int, user *identity.User, view listingView) {
	pageNumber, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || pageNumber < 1 {
		pageNumber = 1
	}
	page, err := h.memberships.List(c.Request.Context(), user.ID, pageNumber)
	if err != nil {
		h.logger.Error("failed to list memberships", zap.String("user", user.ID), zap.Error(err))
		view.Error = "Failed to load organizations."
	}

	data := gin.H{
		"Page":             page,
		"PreviousPage":     page.Number - 1,
		"NextPage":         page.Number + 1,
		"NoMemberships":    page.TotalCount == 0,
		"CanCreate":        len(page.Data) < membership.PageSize,
		"Error":            view.Error,
		"OrganizationName": view.OrganizationName,
	}
	if view.Flow != nil && view.Selected != nil {
		data["Modal"] = gin.H{
			"Organization": view.Selected.Organization,
			"Fields":       view.Flow.Fields(),
			"Error":        view.Flow.ErrorMessage(),
			"Suggestions":  view.Flow.Suggestions(),
		}
	}
	h.render(c, status, "new_listing.html", data)
}

func (h *Handler) requireUser(c *gin.Context) (*identity.User, bool) {
	user, ok := h.identity.CurrentUser(c.Request)
	if !ok {
		h.render(c, http.StatusUnauthorized, "signed_out.html", gin.H{"Message": signInRequired})
		return nil, false
	}
	return user, true
}

func (h *Handler) requireMember(c *gin.Context) (*identity.User, membership.Membership, bool) {
	user, ok := h.requireUser(c)
	if !ok {
		return nil, membership.Membership{}, false
	}
	m, err := h.memberships.Get(c.Request.Context(), user.ID, c.Param("org"))
	if err != nil {
		if !errors.Is(err, membership.ErrNotMember) {
			h.logger.Error("failed to load membership", zap.String("user", user.ID), zap.Error(err))
		}
		h.render(c, http.StatusNotFound, "not_found.html", gin.H{})
		return nil, membership.Membership{}, false
	}
	return user, m, true
}

func (h *Handler) newFlow() *posting.Flow {
	return posting.NewFlow(h.jobs, h.suggester, h.logger)
}

func formFields(c *gin.Context) posting.Fields {
	return posting.Fields{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Location:     c.PostForm("location"),
		JobType:      c.PostForm("jobType"),
		Salary:       c.PostForm("salary"),
		Requirements: splitLines(c.PostForm("requirements")),
		Benefits:     splitLines(c.PostForm("benefits")),
		PosterName:   c.PostForm("posterName"),
		PosterEmail:  c.PostForm("posterEmail"),
	}
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
