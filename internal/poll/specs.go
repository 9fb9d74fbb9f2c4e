package poll

import (
	"context"
	"time"

	"github.com/aiwars-hackathon/hackdash/internal/api"
)

// Fetchers is the read side of the API the dashboard polls.
type Fetchers interface {
	Profile(ctx context.Context, token string) (*api.TeamProfile, error)
	Agenda(ctx context.Context, token string) (*api.Agenda, error)
	Announcements(ctx context.Context, token string) ([]api.Announcement, error)
	Chat(ctx context.Context, token string) ([]api.ChatMessage, error)
	SubmissionStatus(ctx context.Context, token string) (*api.SubmissionStatus, error)
}

// Intervals holds one poll interval per slice.
type Intervals struct {
	Profile       time.Duration
	Agenda        time.Duration
	Announcements time.Duration
	Chat          time.Duration
	Submission    time.Duration
}

// For returns the interval for src.
func (iv Intervals) For(src Source) time.Duration {
	switch src {
	case SourceProfile:
		return iv.Profile
	case SourceAgenda:
		return iv.Agenda
	case SourceAnnouncements:
		return iv.Announcements
	case SourceChat:
		return iv.Chat
	case SourceSubmission:
		return iv.Submission
	}
	return 0
}

// DefaultIntervals returns the standard cadence.
func DefaultIntervals() Intervals {
	return Intervals{
		Profile:       DefaultProfileInterval,
		Agenda:        DefaultAgendaInterval,
		Announcements: DefaultAnnouncementsInterval,
		Chat:          DefaultChatInterval,
		Submission:    DefaultSubmissionInterval,
	}
}

// DefaultSpecs binds f to the five pollers at the default intervals.
func DefaultSpecs(f Fetchers) []Spec {
	return SpecsFor(f, DefaultIntervals())
}

// SpecsFor binds f to the five pollers. Zero intervals fall back to the
// defaults. Only the profile poller cancels its previous request.
func SpecsFor(f Fetchers, iv Intervals) []Spec {
	def := DefaultIntervals()
	pick := func(v, d time.Duration) time.Duration {
		if v <= 0 {
			return d
		}
		return v
	}
	return []Spec{
		{
			Source:         SourceProfile,
			Interval:       pick(iv.Profile, def.Profile),
			CancelPrevious: true,
			Fetch: func(ctx context.Context, tok string) (any, error) {
				p, err := f.Profile(ctx, tok)
				if err != nil {
					return nil, err
				}
				return p, nil
			},
		},
		{
			Source:   SourceAgenda,
			Interval: pick(iv.Agenda, def.Agenda),
			Fetch: func(ctx context.Context, tok string) (any, error) {
				a, err := f.Agenda(ctx, tok)
				if err != nil {
					return nil, err
				}
				return a, nil
			},
		},
		{
			Source:   SourceAnnouncements,
			Interval: pick(iv.Announcements, def.Announcements),
			Fetch: func(ctx context.Context, tok string) (any, error) {
				list, err := f.Announcements(ctx, tok)
				if err != nil {
					return nil, err
				}
				return list, nil
			},
		},
		{
			Source:   SourceChat,
			Interval: pick(iv.Chat, def.Chat),
			Fetch: func(ctx context.Context, tok string) (any, error) {
				msgs, err := f.Chat(ctx, tok)
				if err != nil {
					return nil, err
				}
				return msgs, nil
			},
		},
		{
			Source:   SourceSubmission,
			Interval: pick(iv.Submission, def.Submission),
			Fetch: func(ctx context.Context, tok string) (any, error) {
				s, err := f.SubmissionStatus(ctx, tok)
				if err != nil {
					return nil, err
				}
				return s, nil
			},
		},
	}
}
