package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/countdown"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
	"github.com/aiwars-hackathon/hackdash/internal/storage"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

func int64p(v int64) *int64 { return &v }

func newDashboard(t *testing.T) (*Dashboard, *clockwork.FakeClock, storage.KV) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	kv := storage.NewMemory()
	sub := submission.NewController(submission.NewDraftStore(kv), zerolog.Nop())
	return New(sub, countdown.New(clock), poll.DefaultIntervals()), clock, kv
}

func TestProfileFailureIsSessionFatal(t *testing.T) {
	d, clock, _ := newDashboard(t)
	ctx := context.Background()

	out := d.Apply(ctx, poll.Result{Source: poll.SourceProfile, Data: &api.TeamProfile{TeamName: "A"}, At: clock.Now()})
	if out.SessionFatal {
		t.Fatal("successful profile must not end the session")
	}

	out = d.Apply(ctx, poll.Result{Source: poll.SourceProfile, Err: api.ErrUnauthorized, At: clock.Now()})
	if !out.SessionFatal || out.Reason != ErrSessionInvalid {
		t.Errorf("unexpected outcome: %+v", out)
	}
}

func TestUnauthorizedFromAnySourceIsSessionFatal(t *testing.T) {
	d, clock, _ := newDashboard(t)
	err := api.NewAPIError("chat", 401, api.ErrUnauthorized)

	out := d.Apply(context.Background(), poll.Result{Source: poll.SourceChat, Err: err, At: clock.Now()})
	if !out.SessionFatal {
		t.Error("a 401 on chat should end the session")
	}
	out = d.Apply(context.Background(), poll.Result{Source: poll.SourceAgenda, Err: errors.New("timeout"), At: clock.Now()})
	if out.SessionFatal {
		t.Error("ordinary agenda failures are slice-local")
	}
}

func TestFailureKeepsPreviousData(t *testing.T) {
	d, clock, _ := newDashboard(t)
	ctx := context.Background()
	first := clock.Now()

	d.Apply(ctx, poll.Result{Source: poll.SourceAnnouncements, Data: []api.Announcement{{ID: "1", Title: "Hi"}}, At: first})
	clock.Advance(30 * time.Second)
	d.Apply(ctx, poll.Result{Source: poll.SourceAnnouncements, Err: errors.New("boom"), At: clock.Now()})

	if len(d.Announcements) != 1 {
		t.Errorf("stale announcements should be kept, got %d", len(d.Announcements))
	}
	if d.AnnouncementsMeta.Err != ErrAnnouncementsLoad {
		t.Errorf("Err = %q", d.AnnouncementsMeta.Err)
	}
	if !d.AnnouncementsMeta.Updated.Equal(first) {
		t.Errorf("Updated moved on failure: %v", d.AnnouncementsMeta.Updated)
	}

	d.Apply(ctx, poll.Result{Source: poll.SourceAnnouncements, Data: []api.Announcement{}, At: clock.Now()})
	if d.AnnouncementsMeta.Err != "" || len(d.Announcements) != 0 {
		t.Error("success should clear the error and install the empty list")
	}
}

func TestAgendaDrivesCountdown(t *testing.T) {
	d, clock, _ := newDashboard(t)
	ctx := context.Background()

	d.Apply(ctx, poll.Result{Source: poll.SourceAgenda, At: clock.Now(), Data: &api.Agenda{
		LiveEvaluation: &api.LiveEvaluation{ID: "1", RemainingSeconds: int64p(120)},
	}})
	clock.Advance(5 * time.Second)
	if got := d.Countdown.Remaining(); got != 115 {
		t.Errorf("Remaining() = %d, want 115", got)
	}

	d.Apply(ctx, poll.Result{Source: poll.SourceAgenda, At: clock.Now(), Data: &api.Agenda{}})
	if d.Countdown.Active() || d.Countdown.Remaining() != 0 {
		t.Error("countdown should clear with no live evaluation")
	}
}

func TestAgendaFailureKeepsCountdown(t *testing.T) {
	d, clock, _ := newDashboard(t)
	ctx := context.Background()

	d.Apply(ctx, poll.Result{Source: poll.SourceAgenda, At: clock.Now(), Data: &api.Agenda{
		LiveEvaluation: &api.LiveEvaluation{ID: "1", RemainingSeconds: int64p(60)},
	}})
	d.Apply(ctx, poll.Result{Source: poll.SourceAgenda, At: clock.Now(), Err: api.ErrTimeout})

	if d.Countdown.Remaining() != 60 || d.Agenda == nil {
		t.Error("a failed agenda cycle must not disturb the countdown")
	}
	if d.AgendaMeta.Err != ErrAgendaLoad {
		t.Errorf("Err = %q", d.AgendaMeta.Err)
	}
}

func TestChatAndSubmissionRouting(t *testing.T) {
	d, clock, kv := newDashboard(t)
	ctx := context.Background()

	d.Apply(ctx, poll.Result{Source: poll.SourceChat, At: clock.Now(), Data: []api.ChatMessage{{ID: "1", Message: "hi"}}})
	if len(d.Chat.Messages()) != 1 {
		t.Errorf("chat not routed: %+v", d.Chat.Messages())
	}

	d.Apply(ctx, poll.Result{Source: poll.SourceProfile, At: clock.Now(), Data: &api.TeamProfile{TeamID: "T1", ProblemStatement: "PS"}})
	d.Apply(ctx, poll.Result{Source: poll.SourceSubmission, At: clock.Now(), Data: &api.SubmissionStatus{Status: api.SubmissionOpen}})
	if d.Submission.Status() != api.SubmissionOpen {
		t.Fatalf("Status() = %q", d.Submission.Status())
	}
	if err := d.Submission.SetField(ctx, submission.FieldTitle, "Demo"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, storage.DraftKey("T1")); !ok {
		t.Error("draft should be persisted")
	}

	d.Apply(ctx, poll.Result{Source: poll.SourceSubmission, At: clock.Now(), Err: errors.New("down")})
	if d.SubmissionMeta.Err != ErrSubmissionLoad || d.Submission.Status() != api.SubmissionOpen {
		t.Error("failed status poll must keep the last status")
	}
}

func TestUnexpectedPayloadIsFailure(t *testing.T) {
	d, clock, _ := newDashboard(t)
	d.Apply(context.Background(), poll.Result{Source: poll.SourceChat, At: clock.Now(), Data: "nope"})
	if d.ChatMeta.Err == "" {
		t.Error("wrong payload type should surface as a load error")
	}
	var nilAgenda *api.Agenda
	d.Apply(context.Background(), poll.Result{Source: poll.SourceAgenda, At: clock.Now(), Data: nilAgenda})
	if d.AgendaMeta.Err == "" {
		t.Error("nil agenda should surface as a load error")
	}
}

func TestSnapshotFeedsView(t *testing.T) {
	d, clock, _ := newDashboard(t)
	ctx := context.Background()
	d.Apply(ctx, poll.Result{Source: poll.SourceProfile, At: clock.Now(), Data: &api.TeamProfile{TeamName: "Null Pointers"}})
	d.Filter = "lunch"

	s := d.Snapshot(clock.Now())
	if s.Profile == nil || s.AnnouncementFilter != "lunch" {
		t.Errorf("unexpected snapshot: %+v", s)
	}
	if f := s.Freshness[poll.SourceProfile]; !f.Updated.Equal(clock.Now()) || f.Interval != poll.DefaultProfileInterval {
		t.Errorf("profile freshness = %+v", f)
	}
	if got := view.Compose(s); got.Loading || got.Profile.TeamName != "Null Pointers" {
		t.Errorf("composed dashboard: %+v", got.Profile)
	}
}
