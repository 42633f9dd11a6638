package models

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/justsurfingit/jobboard/internal/errors"
)

type JobType string

const (
	JobTypeFullTime JobType = "Full-Time"
	JobTypePartTime JobType = "Part-Time"
	JobTypeContract JobType = "Contract"
)

// JobTypes lists the accepted values in display order.
var JobTypes = []JobType{JobTypeFullTime, JobTypePartTime, JobTypeContract}

func (t JobType) Valid() bool {
	for _, jt := range JobTypes {
		if t == jt {
			return true
		}
	}
	return false
}

// Organization is a name-only snapshot; there is no link to a registry.
type Organization struct {
	Name string `json:"name" validate:"required"`
}

type Poster struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,basicemail"`
}

type Job struct {
	ID             string       `json:"id"`
	JobTitle       string       `json:"jobTitle" validate:"required"`
	JobDescription string       `json:"jobDescription" validate:"required"`
	Location       string       `json:"location" validate:"required"`
	JobType        JobType      `json:"jobType,omitempty" validate:"omitempty,oneof=Full-Time Part-Time Contract"`
	Salary         string       `json:"salary" validate:"required"`
	Organization   Organization `json:"organization"`
	Poster         Poster       `json:"poster"`
	Requirements   []string     `json:"requirements,omitempty"`
	Benefits       []string     `json:"benefits,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// Normalize trims every string field in place. List entries that are blank
// after trimming are dropped.
func (j *Job) Normalize() {
	j.JobTitle = strings.TrimSpace(j.JobTitle)
	j.JobDescription = strings.TrimSpace(j.JobDescription)
	j.Location = strings.TrimSpace(j.Location)
	j.JobType = JobType(strings.TrimSpace(string(j.JobType)))
	j.Salary = strings.TrimSpace(j.Salary)
	j.Organization.Name = strings.TrimSpace(j.Organization.Name)
	j.Poster.Name = strings.TrimSpace(j.Poster.Name)
	j.Poster.Email = strings.TrimSpace(j.Poster.Email)
	j.Requirements = trimList(j.Requirements)
	j.Benefits = trimList(j.Benefits)
}

// Validate checks the document schema and reports the first offending field
// as an INVALID_INPUT DomainError.
func (j *Job) Validate() error {
	err := validate.Struct(j)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperrors.Internal("validating job", err)
	}
	fe := verrs[0]
	return apperrors.Validation(fieldPath(fe.Namespace()), reason(fe))
}

func fieldPath(namespace string) string {
	// "Job.poster.email" -> "poster.email"
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "basicemail":
		return "Please enter a valid email address"
	default:
		return "is invalid"
	}
}

func trimList(items []string) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
