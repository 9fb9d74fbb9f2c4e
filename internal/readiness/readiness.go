// Package readiness gates the "ready for evaluation" signal.
package readiness

import (
	"context"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
)

// Labels and hints shown on the readiness panel.
const (
	LabelReady          = "Ready for Evaluation"
	LabelAlreadyReady   = "Ready (already submitted)"
	LabelNotEligible    = "Not eligible yet"
	LabelSubmitting     = "Submitting…"
	HintPending         = "Tap Ready when your team is called."
	HintAlreadyReady    = "Ready submitted for this round."
	HintNotEligible     = "Complete check-in/payment to become eligible."
	HintNoLiveRound     = "No live round right now. This will update automatically."
	ErrMarkReadyMessage = "Unable to mark ready right now. Please retry."
)

// Visible reports whether the readiness action is shown at all.
func Visible(live *api.LiveEvaluation) bool {
	return live != nil
}

// Label is the button text for the given live round and team state.
func Label(live *api.LiveEvaluation, teamState string) string {
	switch {
	case live == nil:
		return LabelReady
	case teamState == api.TeamStateReadyForEval:
		return LabelAlreadyReady
	case teamState != "" && teamState != api.TeamStateEvalPending:
		return LabelNotEligible
	default:
		return LabelReady
	}
}

// Hint is the helper line under the button.
func Hint(live *api.LiveEvaluation, teamState string) string {
	if live == nil {
		return HintNoLiveRound
	}
	switch teamState {
	case api.TeamStateEvalPending:
		return HintPending
	case api.TeamStateReadyForEval:
		return HintAlreadyReady
	default:
		return HintNotEligible
	}
}

// Request is one mark-ready call.
type Request struct {
	EvaluationID   string
	IdempotencyKey string
}

// Marker is the API surface needed to send a ready signal.
type Marker interface {
	MarkReady(ctx context.Context, token, evaluationID, idempotencyKey string) error
}

// Send performs req against m.
func Send(ctx context.Context, m Marker, token string, req Request) error {
	return m.MarkReady(ctx, token, req.EvaluationID, req.IdempotencyKey)
}

// Controller holds the in-flight flag and the inline error. It is owned by
// the UI loop and not safe for concurrent use.
type Controller struct {
	inFlight bool
	err      string
}

// InFlight reports whether a ready request is outstanding.
func (c *Controller) InFlight() bool { return c.inFlight }

// Err returns the inline error, "" when none.
func (c *Controller) Err() string { return c.err }

// Enabled reports whether the action may be taken now.
func (c *Controller) Enabled(live *api.LiveEvaluation, teamState string) bool {
	return Visible(live) && teamState == api.TeamStateEvalPending && !c.inFlight
}

// ButtonLabel is Label, or the in-flight text while a request is outstanding.
func (c *Controller) ButtonLabel(live *api.LiveEvaluation, teamState string) string {
	if c.inFlight {
		return LabelSubmitting
	}
	return Label(live, teamState)
}

// Begin starts the action. It returns false, with no side effects, when the
// action is not enabled; the caller must not touch the network then.
func (c *Controller) Begin(live *api.LiveEvaluation, profile *api.TeamProfile) (Request, bool) {
	if profile == nil || !c.Enabled(live, profile.TeamState) {
		return Request{}, false
	}
	c.inFlight = true
	c.err = ""
	evalID := live.ID.String()
	return Request{
		EvaluationID:   evalID,
		IdempotencyKey: profile.TeamID.String() + ":" + evalID,
	}, true
}

// Finish records the outcome. On success it returns the slices to refresh
// out of band; on failure it sets the inline error and leaves state as it
// was so the action can be retried.
func (c *Controller) Finish(err error) []poll.Source {
	c.inFlight = false
	if err != nil {
		c.err = ErrMarkReadyMessage
		return nil
	}
	c.err = ""
	return []poll.Source{poll.SourceProfile, poll.SourceAgenda}
}
