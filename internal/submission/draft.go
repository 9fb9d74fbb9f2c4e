// Package submission drives the project submission form: the locally
// persisted draft, its validation, and the not_open → open → submitted
// status machine.
package submission

import (
	"net/url"
	"strings"
	"time"

	"github.com/aiwars-hackathon/hackdash/internal/api"
)

// Field identifies one draft field.
type Field string

const (
	FieldTitle            Field = "title"
	FieldDescription      Field = "description"
	FieldTechStack        Field = "tech_stack"
	FieldGithubRepo       Field = "github_repo"
	FieldLiveDemo         Field = "live_demo"
	FieldContributions    Field = "contributions"
	FieldChallenges       Field = "challenges"
	FieldExperience       Field = "experience"
	FieldFeedback         Field = "feedback"
	FieldProblemStatement Field = "problem_statement"
)

// Fields lists the form fields in display order.
var Fields = []Field{
	FieldTitle,
	FieldDescription,
	FieldTechStack,
	FieldGithubRepo,
	FieldLiveDemo,
	FieldContributions,
	FieldChallenges,
	FieldExperience,
	FieldFeedback,
	FieldProblemStatement,
}

// RequiredFields must be non-blank after trimming.
var RequiredFields = []Field{
	FieldTitle,
	FieldDescription,
	FieldTechStack,
	FieldGithubRepo,
	FieldContributions,
	FieldChallenges,
	FieldExperience,
	FieldFeedback,
	FieldProblemStatement,
}

// Label returns a human label for f.
func (f Field) Label() string {
	switch f {
	case FieldTitle:
		return "Project title"
	case FieldDescription:
		return "Description"
	case FieldTechStack:
		return "Tech stack"
	case FieldGithubRepo:
		return "GitHub repository"
	case FieldLiveDemo:
		return "Live demo (optional)"
	case FieldContributions:
		return "Team contributions"
	case FieldChallenges:
		return "Challenges faced"
	case FieldExperience:
		return "Hackathon experience"
	case FieldFeedback:
		return "Feedback"
	case FieldProblemStatement:
		return "Problem statement"
	default:
		return string(f)
	}
}

// Multiline reports whether f is a long-form field.
func (f Field) Multiline() bool {
	switch f {
	case FieldDescription, FieldContributions, FieldChallenges, FieldExperience, FieldFeedback:
		return true
	}
	return false
}

// Draft is the in-progress submission form.
type Draft struct {
	Title            string `json:"title" yaml:"title"`
	Description      string `json:"description" yaml:"description"`
	TechStack        string `json:"tech_stack" yaml:"tech_stack"`
	GithubRepo       string `json:"github_repo" yaml:"github_repo"`
	LiveDemo         string `json:"live_demo" yaml:"live_demo"`
	Contributions    string `json:"contributions" yaml:"contributions"`
	Challenges       string `json:"challenges" yaml:"challenges"`
	Experience       string `json:"experience" yaml:"experience"`
	Feedback         string `json:"feedback" yaml:"feedback"`
	ProblemStatement string `json:"problem_statement" yaml:"problem_statement"`
}

func (d *Draft) ptr(f Field) *string {
	switch f {
	case FieldTitle:
		return &d.Title
	case FieldDescription:
		return &d.Description
	case FieldTechStack:
		return &d.TechStack
	case FieldGithubRepo:
		return &d.GithubRepo
	case FieldLiveDemo:
		return &d.LiveDemo
	case FieldContributions:
		return &d.Contributions
	case FieldChallenges:
		return &d.Challenges
	case FieldExperience:
		return &d.Experience
	case FieldFeedback:
		return &d.Feedback
	case FieldProblemStatement:
		return &d.ProblemStatement
	}
	return nil
}

// Get returns the value of f.
func (d Draft) Get(f Field) string {
	if p := d.ptr(f); p != nil {
		return *p
	}
	return ""
}

// set assigns f; unknown fields are ignored.
func (d *Draft) set(f Field, v string) bool {
	p := d.ptr(f)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Validation is the result of Validate.
type Validation struct {
	Valid  bool
	Errors map[Field]string
}

// Validate checks required fields and URL fields.
func (d Draft) Validate() Validation {
	errs := make(map[Field]string)
	for _, f := range RequiredFields {
		if strings.TrimSpace(d.Get(f)) == "" {
			errs[f] = f.Label() + " is required"
		}
	}
	if _, missing := errs[FieldGithubRepo]; !missing && !IsHTTPURL(d.GithubRepo) {
		errs[FieldGithubRepo] = "GitHub repository must be an http(s) URL"
	}
	if strings.TrimSpace(d.LiveDemo) != "" && !IsHTTPURL(d.LiveDemo) {
		errs[FieldLiveDemo] = "Live demo must be an http(s) URL"
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// IsHTTPURL reports whether s parses as an absolute http or https URL with
// a host.
func IsHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Request builds the submit body.
func (d Draft) Request(teamID string, at time.Time) api.SubmitRequest {
	return api.SubmitRequest{
		Title:               d.Title,
		Description:         d.Description,
		TechStack:           d.TechStack,
		GithubRepo:          d.GithubRepo,
		LiveDemo:            d.LiveDemo,
		Contributions:       d.Contributions,
		Challenges:          d.Challenges,
		Experience:          d.Experience,
		Feedback:            d.Feedback,
		ProblemStatement:    d.ProblemStatement,
		TeamID:              teamID,
		SubmissionTimestamp: api.Timestamp(at),
	}
}
