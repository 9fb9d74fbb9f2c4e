package submission

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
)

// User-visible messages.
const (
	MessageSubmitted   = "Project submitted successfully!"
	MessageSubmitError = "Submission failed. Please try again."
	MessageNotOpen     = "Submissions are not open yet. This form will appear automatically once they open."
)

// Errors returned by SetField.
var (
	ErrNotOpen  = errors.New("submissions are not open")
	ErrReadOnly = errors.New("field is read-only")
	ErrBusy     = errors.New("submission in progress")
)

// Controller owns the submission slice: status, draft, and the submit
// action. It is driven from the UI loop and not safe for concurrent use.
type Controller struct {
	store *DraftStore
	log   zerolog.Logger

	status      string
	teamID      string
	statement   string
	draft       Draft
	loaded      bool
	submitting  bool
	message     string
	err         string
	notice      *Notice
	summary     *api.SubmissionSummary
	submittedAt string
}

// NewController creates a controller persisting drafts to store.
func NewController(store *DraftStore, log zerolog.Logger) *Controller {
	return &Controller{store: store, log: log}
}

// Status returns the last known submission status, "" before the first poll.
func (c *Controller) Status() string { return c.status }

// Draft returns the current draft.
func (c *Controller) Draft() Draft { return c.draft }

// Validation validates the current draft.
func (c *Controller) Validation() Validation { return c.draft.Validate() }

// Submitting reports whether a submit is in flight.
func (c *Controller) Submitting() bool { return c.submitting }

// Message returns the success message, if any.
func (c *Controller) Message() string { return c.message }

// Err returns the inline submit error, if any.
func (c *Controller) Err() string { return c.err }

// Notice returns the problem statement change notice, if any.
func (c *Controller) Notice() *Notice { return c.notice }

// DismissNotice clears the change notice.
func (c *Controller) DismissNotice() { c.notice = nil }

// Summary returns the submitted project summary and time.
func (c *Controller) Summary() (*api.SubmissionSummary, string) {
	return c.summary, c.submittedAt
}

// CanSubmit reports whether the submit action is enabled.
func (c *Controller) CanSubmit() bool {
	return c.status == api.SubmissionOpen && c.loaded && !c.submitting && c.draft.Validate().Valid
}

// ApplyProfile mirrors the team's problem statement into the draft. A change
// after the first value is recorded as a notice.
func (c *Controller) ApplyProfile(ctx context.Context, p *api.TeamProfile) {
	if p == nil {
		return
	}
	if id := p.TeamID.String(); id != "" && id != c.teamID {
		c.teamID = id
		c.loaded = false
		if c.status == api.SubmissionSubmitted {
			c.discard(ctx)
		}
	}
	if p.ProblemStatement != c.statement {
		if c.statement != "" {
			c.notice = &Notice{Old: c.statement, New: p.ProblemStatement}
		}
		c.statement = p.ProblemStatement
	}
	c.draft.ProblemStatement = c.statement
	c.ensureLoaded(ctx)
	c.persist(ctx)
}

// ApplyStatus advances the status machine from a poll result.
func (c *Controller) ApplyStatus(ctx context.Context, s *api.SubmissionStatus) {
	if s == nil {
		return
	}
	prev := c.status
	c.status = s.Status

	switch s.Status {
	case api.SubmissionOpen:
		c.ensureLoaded(ctx)
	case api.SubmissionSubmitted:
		c.summary = s.Submission
		c.submittedAt = s.SubmittedAt
		if prev != api.SubmissionSubmitted {
			c.discard(ctx)
		}
	default:
		c.loaded = false
	}
}

// SetField edits one field and writes the draft through to storage.
func (c *Controller) SetField(ctx context.Context, f Field, v string) error {
	if f == FieldProblemStatement {
		return ErrReadOnly
	}
	if c.status != api.SubmissionOpen || !c.loaded {
		return ErrNotOpen
	}
	if c.submitting {
		return ErrBusy
	}
	if !c.draft.set(f, v) {
		return errors.New("unknown field " + string(f))
	}
	c.message = ""
	return c.persist(ctx)
}

// BeginSubmit starts the submit action. It returns false when submit is not
// enabled.
func (c *Controller) BeginSubmit(now time.Time) (api.SubmitRequest, bool) {
	if !c.CanSubmit() || c.teamID == "" {
		return api.SubmitRequest{}, false
	}
	c.submitting = true
	c.err = ""
	c.message = ""
	return c.draft.Request(c.teamID, now), true
}

// FinishSubmit records the submit outcome. On success the draft is
// discarded and the status slice is returned for an out-of-band refresh.
// On failure the draft is kept intact.
func (c *Controller) FinishSubmit(ctx context.Context, err error) []poll.Source {
	c.submitting = false
	if err != nil {
		if msg := api.ServerMessage(err); msg != "" {
			c.err = msg
		} else {
			c.err = MessageSubmitError
		}
		c.log.Warn().Err(err).Msg("project submission failed")
		return nil
	}
	c.err = ""
	c.message = MessageSubmitted
	c.discard(ctx)
	return []poll.Source{poll.SourceSubmission}
}

func (c *Controller) ensureLoaded(ctx context.Context) {
	if c.loaded || c.status != api.SubmissionOpen || c.teamID == "" {
		return
	}
	d := Draft{}
	stored, ok, err := c.store.Load(ctx, c.teamID)
	if err != nil {
		c.log.Warn().Err(err).Str("team", c.teamID).Msg("failed to load submission draft")
	} else if ok {
		d = stored
	}
	d.ProblemStatement = c.statement
	c.draft = d
	c.loaded = true
}

func (c *Controller) persist(ctx context.Context) error {
	if !c.loaded || c.status != api.SubmissionOpen || c.teamID == "" {
		return nil
	}
	if err := c.store.Save(ctx, c.teamID, c.draft); err != nil {
		c.log.Warn().Err(err).Msg("failed to save submission draft")
		return err
	}
	return nil
}

func (c *Controller) discard(ctx context.Context) {
	if c.teamID != "" {
		if err := c.store.Discard(ctx, c.teamID); err != nil {
			c.log.Warn().Err(err).Msg("failed to discard submission draft")
		}
	}
	c.draft = Draft{ProblemStatement: c.statement}
}
