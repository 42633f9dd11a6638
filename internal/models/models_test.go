package models

import (
	"testing"

	apperrors "github.com/justsurfingit/jobboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJob() Job {
	return Job{
		JobTitle:       "Backend Engineer",
		JobDescription: "Build APIs",
		Location:       "Remote",
		JobType:        JobTypeFullTime,
		Salary:         "$90k-$110k",
		Organization:   Organization{Name: "Acme"},
		Poster:         Poster{Name: "Jo", Email: "jo@acme.com"},
	}
}

func TestNormalizeTrims(t *testing.T) {
	job := validJob()
	job.JobTitle = "  Backend Engineer \n"
	job.Organization.Name = "\tAcme "
	job.Poster.Email = " jo@acme.com "
	job.Requirements = []string{" Go ", "   ", "SQL"}

	job.Normalize()

	assert.Equal(t, "Backend Engineer", job.JobTitle)
	assert.Equal(t, "Acme", job.Organization.Name)
	assert.Equal(t, "jo@acme.com", job.Poster.Email)
	assert.Equal(t, []string{"Go", "SQL"}, job.Requirements)
	assert.Nil(t, job.Benefits)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(j *Job)
		field  string
	}{
		{name: "valid", mutate: func(j *Job) {}},
		{name: "job type optional", mutate: func(j *Job) { j.JobType = "" }},
		{name: "missing title", mutate: func(j *Job) { j.JobTitle = "" }, field: "jobTitle"},
		{name: "missing description", mutate: func(j *Job) { j.JobDescription = "" }, field: "jobDescription"},
		{name: "missing location", mutate: func(j *Job) { j.Location = "" }, field: "location"},
		{name: "missing salary", mutate: func(j *Job) { j.Salary = "" }, field: "salary"},
		{name: "bad job type", mutate: func(j *Job) { j.JobType = "Internship" }, field: "jobType"},
		{name: "missing organization", mutate: func(j *Job) { j.Organization.Name = "" }, field: "organization.name"},
		{name: "missing poster name", mutate: func(j *Job) { j.Poster.Name = "" }, field: "poster.name"},
		{name: "missing poster email", mutate: func(j *Job) { j.Poster.Email = "" }, field: "poster.email"},
		{name: "malformed poster email", mutate: func(j *Job) { j.Poster.Email = "not-an-email" }, field: "poster.email"},
		{name: "email without dot", mutate: func(j *Job) { j.Poster.Email = "jo@acme" }, field: "poster.email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := validJob()
			tt.mutate(&job)

			err := job.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			de, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrTypeInvalidInput, de.Type)
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestWhitespaceOnlyFailsAfterNormalize(t *testing.T) {
	job := validJob()
	job.Salary = "   "
	job.Normalize()

	err := job.Validate()
	de, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "salary", de.Field)
}

func TestJobTypeValid(t *testing.T) {
	assert.True(t, JobTypeContract.Valid())
	assert.False(t, JobType("Freelance").Valid())
}
