package dtos

import (
	"strings"

	"github.com/justsurfingit/jobboard/internal/models"
)

type PosterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateJobRequest is the POST /api/jobs body. Only title, description and
// organizationName are checked at the boundary; the rest of the schema is
// enforced when the job is stored.
type CreateJobRequest struct {
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	OrganizationName string        `json:"organizationName"`
	Location         string        `json:"location"`
	JobType          string        `json:"jobType"`
	Type             string        `json:"type"` // older clients send "type"
	Salary           string        `json:"salary"`
	Requirements     []string      `json:"requirements"`
	Benefits         []string      `json:"benefits"`
	Poster           PosterRequest `json:"poster"`
}

const MissingRequiredFieldsMessage = "Missing required fields: title, description, or organization name."

func (r *CreateJobRequest) HasRequiredFields() bool {
	return strings.TrimSpace(r.Title) != "" &&
		strings.TrimSpace(r.Description) != "" &&
		strings.TrimSpace(r.OrganizationName) != ""
}

func (r *CreateJobRequest) ToModel() *models.Job {
	jobType := r.JobType
	if strings.TrimSpace(jobType) == "" {
		jobType = r.Type
	}
	return &models.Job{
		JobTitle:       r.Title,
		JobDescription: r.Description,
		Location:       r.Location,
		JobType:        models.JobType(jobType),
		Salary:         r.Salary,
		Organization:   models.Organization{Name: r.OrganizationName},
		Poster: models.Poster{
			Name:  r.Poster.Name,
			Email: r.Poster.Email,
		},
		Requirements: r.Requirements,
		Benefits:     r.Benefits,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type CreateJobResponse struct {
	NewJob *models.Job `json:"newJob"`
}
