// Package state holds the dashboard's data slices and applies poll results
// to them. A Dashboard has a single writer: the UI loop.
package state

import (
	"context"
	"fmt"
	"time"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/chat"
	"github.com/aiwars-hackathon/hackdash/internal/countdown"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
	"github.com/aiwars-hackathon/hackdash/internal/readiness"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// Inline slice errors.
const (
	ErrSessionInvalid    = "Session expired or invalid. Please login again."
	ErrAgendaLoad        = "Unable to load agenda right now."
	ErrAnnouncementsLoad = "Unable to load announcements right now."
	ErrSubmissionLoad    = "Unable to load submission status right now."
)

// Meta tracks a slice's error and freshness.
type Meta struct {
	Err       string
	Loaded    bool
	Updated   time.Time
	Attempted time.Time
}

func (m *Meta) succeed(at time.Time) {
	m.Err = ""
	m.Loaded = true
	m.Updated = at
	m.Attempted = at
}

func (m *Meta) fail(msg string, at time.Time) {
	m.Err = msg
	m.Attempted = at
}

// Outcome tells the caller what to do after applying a result.
type Outcome struct {
	// SessionFatal means the session must end: stop polling, clear the
	// token, go to login.
	SessionFatal bool
	Reason       string
}

// Dashboard is the full client-side state of one dashboard view.
type Dashboard struct {
	Profile           *api.TeamProfile
	ProfileMeta       Meta
	Agenda            *api.Agenda
	AgendaMeta        Meta
	Announcements     []api.Announcement
	AnnouncementsMeta Meta
	ChatMeta          Meta
	SubmissionMeta    Meta

	Chat       *chat.Channel
	Ready      *readiness.Controller
	Submission *submission.Controller
	Countdown  *countdown.Engine

	Intervals poll.Intervals
	Filter    string
	Welcome   string
}

// New creates an empty dashboard state.
func New(sub *submission.Controller, cd *countdown.Engine, iv poll.Intervals) *Dashboard {
	return &Dashboard{
		Chat:       &chat.Channel{},
		Ready:      &readiness.Controller{},
		Submission: sub,
		Countdown:  cd,
		Intervals:  iv,
	}
}

// Apply merges one poll result into its slice. A failed cycle never erases
// previously loaded data. A failed profile cycle, or a 401 from any
// source, is session-fatal.
func (d *Dashboard) Apply(ctx context.Context, r poll.Result) Outcome {
	if api.IsUnauthorized(r.Err) {
		if m := d.meta(r.Source); m != nil {
			m.fail(ErrSessionInvalid, r.At)
		}
		return Outcome{SessionFatal: true, Reason: ErrSessionInvalid}
	}

	switch r.Source {
	case poll.SourceProfile:
		p, err := as[*api.TeamProfile](r)
		if err != nil {
			d.ProfileMeta.fail(ErrSessionInvalid, r.At)
			return Outcome{SessionFatal: true, Reason: ErrSessionInvalid}
		}
		d.Profile = p
		d.ProfileMeta.succeed(r.At)
		d.Submission.ApplyProfile(ctx, p)

	case poll.SourceAgenda:
		a, err := as[*api.Agenda](r)
		if err != nil {
			d.AgendaMeta.fail(ErrAgendaLoad, r.At)
			return Outcome{}
		}
		d.Agenda = a
		d.AgendaMeta.succeed(r.At)
		if a.LiveEvaluation != nil && a.LiveEvaluation.RemainingSeconds != nil {
			d.Countdown.Set(*a.LiveEvaluation.RemainingSeconds)
		} else {
			d.Countdown.Clear()
		}

	case poll.SourceAnnouncements:
		list, err := as[[]api.Announcement](r)
		if err != nil {
			d.AnnouncementsMeta.fail(ErrAnnouncementsLoad, r.At)
			return Outcome{}
		}
		d.Announcements = list
		d.AnnouncementsMeta.succeed(r.At)

	case poll.SourceChat:
		msgs, err := as[[]api.ChatMessage](r)
		if err != nil {
			d.ChatMeta.fail(chat.ErrLoadMessage, r.At)
			return Outcome{}
		}
		d.Chat.ReplaceSnapshot(msgs)
		d.ChatMeta.succeed(r.At)

	case poll.SourceSubmission:
		s, err := as[*api.SubmissionStatus](r)
		if err != nil {
			d.SubmissionMeta.fail(ErrSubmissionLoad, r.At)
			return Outcome{}
		}
		d.Submission.ApplyStatus(ctx, s)
		d.SubmissionMeta.succeed(r.At)
	}
	return Outcome{}
}

func (d *Dashboard) meta(src poll.Source) *Meta {
	switch src {
	case poll.SourceProfile:
		return &d.ProfileMeta
	case poll.SourceAgenda:
		return &d.AgendaMeta
	case poll.SourceAnnouncements:
		return &d.AnnouncementsMeta
	case poll.SourceChat:
		return &d.ChatMeta
	case poll.SourceSubmission:
		return &d.SubmissionMeta
	}
	return nil
}

// as extracts a typed payload, turning a wrong or nil payload into an error.
func as[T any](r poll.Result) (T, error) {
	var zero T
	if r.Err != nil {
		return zero, r.Err
	}
	v, ok := r.Data.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected payload %T", r.Source, r.Data)
	}
	if isNil(v) {
		return zero, fmt.Errorf("%s: empty payload", r.Source)
	}
	return v, nil
}

func isNil(v any) bool {
	switch x := v.(type) {
	case *api.TeamProfile:
		return x == nil
	case *api.Agenda:
		return x == nil
	case *api.SubmissionStatus:
		return x == nil
	}
	return false
}

// Snapshot captures everything the view composer needs.
func (d *Dashboard) Snapshot(now time.Time) view.Snapshot {
	sub := d.Submission
	summary, submittedAt := sub.Summary()
	return view.Snapshot{
		Now:                now,
		Welcome:            d.Welcome,
		Profile:            d.Profile,
		ProfileErr:         d.ProfileMeta.Err,
		Agenda:             d.Agenda,
		AgendaErr:          d.AgendaMeta.Err,
		Remaining:          d.Countdown.Remaining(),
		ReadyInFlight:      d.Ready.InFlight(),
		ReadyErr:           d.Ready.Err(),
		Announcements:      d.Announcements,
		AnnouncementsErr:   d.AnnouncementsMeta.Err,
		AnnouncementFilter: d.Filter,
		Chat:               d.Chat.Messages(),
		ChatErr:            d.ChatMeta.Err,
		ChatSendErr:        d.Chat.Err(),
		ChatInput:          d.Chat.Input(),
		ChatSending:        d.Chat.Sending(),
		Submission: view.SubmissionState{
			Status:      sub.Status(),
			Draft:       sub.Draft(),
			Validation:  sub.Validation(),
			CanSubmit:   sub.CanSubmit(),
			Submitting:  sub.Submitting(),
			Message:     sub.Message(),
			Err:         sub.Err(),
			Notice:      sub.Notice(),
			Summary:     summary,
			SubmittedAt: submittedAt,
		},
		Freshness: map[poll.Source]view.Freshness{
			poll.SourceProfile:       {Updated: d.ProfileMeta.Updated, Interval: d.Intervals.Profile},
			poll.SourceAgenda:        {Updated: d.AgendaMeta.Updated, Interval: d.Intervals.Agenda},
			poll.SourceAnnouncements: {Updated: d.AnnouncementsMeta.Updated, Interval: d.Intervals.Announcements},
			poll.SourceChat:          {Updated: d.ChatMeta.Updated, Interval: d.Intervals.Chat},
			poll.SourceSubmission:    {Updated: d.SubmissionMeta.Updated, Interval: d.Intervals.Submission},
		},
	}
}
