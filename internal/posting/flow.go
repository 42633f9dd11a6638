package posting

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/justsurfingit/jobboard/internal/client"
	"github.com/justsurfingit/jobboard/internal/dtos"
	"github.com/justsurfingit/jobboard/internal/identity"
	"github.com/justsurfingit/jobboard/internal/locations"
	"github.com/justsurfingit/jobboard/internal/models"
	"go.uber.org/zap"
)

type State int

const (
	Closed State = iota
	Editing
	Submitting
	EditingWithError
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case EditingWithError:
		return "editing_with_error"
	default:
		return "unknown"
	}
}

const (
	AnonymousPoster = "Anonymous"
	NoEmail         = "No email"

	MessageAllFieldsRequired = "All fields are required."
	messageBadRequest        = "Please check the job details."
	messageNotFound          = "The server could not find the requested resource."
	messageServerError       = "Something went wrong on the server."
	messageUnexpected        = "Unexpected error. Please try again later."
)

var (
	ErrNoOrganization = errors.New("posting: an organization must be selected")
	ErrNotOpen        = errors.New("posting: form is not open")
	ErrIncomplete     = errors.New("posting: required fields are empty")
)

// Fields is the form content. It survives failed submissions and Cancel.
type Fields struct {
	Title        string
	Description  string
	Location     string
	JobType      string
	Salary       string
	Requirements []string
	Benefits     []string
	PosterName   string
	PosterEmail  string
}

// JobCreator is the create call the flow submits through.
type JobCreator interface {
	CreateJob(ctx context.Context, req *dtos.CreateJobRequest) (*models.Job, error)
}

// Flow drives the job posting modal for one user. It is not safe for
// concurrent use.
type Flow struct {
	creator   JobCreator
	suggester locations.Suggester
	logger    *zap.Logger

	state        State
	organization string
	fields       Fields
	errMessage   string
	suggestions  []string
}

func NewFlow(creator JobCreator, suggester locations.Suggester, logger *zap.Logger) *Flow {
	if suggester == nil {
		suggester = locations.None{}
	}
	return &Flow{
		creator:   creator,
		suggester: suggester,
		logger:    logger,
	}
}

// Open shows the form for organization. Poster details default to the
// signed-in user's profile.
func (f *Flow) Open(organization string, user *identity.User) error {
	organization = strings.TrimSpace(organization)
	if organization == "" {
		return ErrNoOrganization
	}
	f.organization = organization
	f.fields.PosterName = AnonymousPoster
	f.fields.PosterEmail = NoEmail
	if user != nil {
		if name := strings.TrimSpace(user.Name); name != "" {
			f.fields.PosterName = name
		}
		if email := strings.TrimSpace(user.Email); email != "" {
			f.fields.PosterEmail = email
		}
	}
	f.state = Editing
	f.errMessage = ""
	return nil
}

// Restore puts back fields saved from an earlier session of the same form.
// Blank poster details keep the defaults set by Open.
func (f *Flow) Restore(fields Fields) {
	poster := f.fields
	f.fields = fields
	if strings.TrimSpace(f.fields.PosterName) == "" {
		f.fields.PosterName = poster.PosterName
	}
	if strings.TrimSpace(f.fields.PosterEmail) == "" {
		f.fields.PosterEmail = poster.PosterEmail
	}
}

// Cancel closes the form. Field values are kept.
func (f *Flow) Cancel() {
	f.state = Closed
}

func (f *Flow) State() State          { return f.state }
func (f *Flow) Organization() string  { return f.organization }
func (f *Flow) Fields() Fields        { return f.fields }
func (f *Flow) ErrorMessage() string  { return f.errMessage }
func (f *Flow) Suggestions() []string { return f.suggestions }

// edited clears a pending error; the form drops its message on any input.
func (f *Flow) edited() {
	if f.state == EditingWithError {
		f.state = Editing
	}
	f.errMessage = ""
}

func (f *Flow) SetTitle(v string)       { f.fields.Title = v; f.edited() }
func (f *Flow) SetDescription(v string) { f.fields.Description = v; f.edited() }
func (f *Flow) SetJobType(v string)     { f.fields.JobType = v; f.edited() }
func (f *Flow) SetSalary(v string)      { f.fields.Salary = v; f.edited() }
func (f *Flow) SetPosterName(v string)  { f.fields.PosterName = v; f.edited() }
func (f *Flow) SetPosterEmail(v string) { f.fields.PosterEmail = v; f.edited() }

func (f *Flow) SetRequirements(v []string) {
	f.fields.Requirements = append([]string(nil), v...)
	f.edited()
}

func (f *Flow) SetBenefits(v []string) {
	f.fields.Benefits = append([]string(nil), v...)
	f.edited()
}

// Fill replaces every field with a submitted form. No suggestion lookup
// runs; suggestions only follow keystrokes through SetLocation.
func (f *Flow) Fill(fields Fields) {
	fields.Requirements = append([]string(nil), fields.Requirements...)
	fields.Benefits = append([]string(nil), fields.Benefits...)
	f.fields = fields
	f.edited()
}

// SetLocation updates the location and refreshes suggestions. Lookups only
// run for input longer than one character; failures leave the list empty.
func (f *Flow) SetLocation(ctx context.Context, v string) {
	f.fields.Location = v
	f.edited()

	if utf8.RuneCountInString(v) <= 1 {
		f.suggestions = nil
		return
	}
	suggestions, err := f.suggester.Suggest(ctx, v)
	if err != nil {
		f.logger.Debug("location suggestions unavailable", zap.String("query", v), zap.Error(err))
		f.suggestions = nil
		return
	}
	f.suggestions = suggestions
}

func (f *Flow) complete() bool {
	for _, v := range []string{
		f.fields.Title,
		f.fields.Description,
		f.fields.Location,
		f.fields.JobType,
		f.fields.Salary,
	} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func (f *Flow) request() *dtos.CreateJobRequest {
	return &dtos.CreateJobRequest{
		Title:            f.fields.Title,
		Description:      f.fields.Description,
		OrganizationName: f.organization,
		Location:         f.fields.Location,
		JobType:          f.fields.JobType,
		Salary:           f.fields.Salary,
		Requirements:     f.fields.Requirements,
		Benefits:         f.fields.Benefits,
		Poster: dtos.PosterRequest{
			Name:  f.fields.PosterName,
			Email: f.fields.PosterEmail,
		},
	}
}

// Submit validates locally and sends the create request. An incomplete form
// never reaches the network. On success the form is reset and closed; on
// failure it stays open with the fields intact and ErrorMessage set.
func (f *Flow) Submit(ctx context.Context) (*models.Job, error) {
	if f.state != Editing && f.state != EditingWithError {
		return nil, ErrNotOpen
	}
	if !f.complete() {
		f.state = EditingWithError
		f.errMessage = MessageAllFieldsRequired
		return nil, ErrIncomplete
	}

	f.state = Submitting
	f.errMessage = ""
	job, err := f.creator.CreateJob(ctx, f.request())
	if err != nil {
		f.state = EditingWithError
		f.errMessage = Classify(err)
		f.logger.Info("job posting failed",
			zap.String("organization", f.organization),
			zap.Error(err))
		return nil, err
	}

	f.reset()
	f.state = Closed
	return job, nil
}

func (f *Flow) reset() {
	poster := Fields{PosterName: f.fields.PosterName, PosterEmail: f.fields.PosterEmail}
	f.fields = poster
	f.errMessage = ""
	f.suggestions = nil
}

// Classify turns a create failure into the message shown on the form.
func Classify(err error) string {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	switch apiErr.StatusCode {
	case http.StatusBadRequest:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return messageBadRequest
	case http.StatusNotFound:
		return messageNotFound
	case http.StatusInternalServerError:
		return messageServerError
	default:
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return messageUnexpected
	}
}
