// Package view projects the dashboard's slices into renderable panel data.
// Compose is pure: it performs no I/O and reads no clock.
package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/chat"
	"github.com/aiwars-hackathon/hackdash/internal/countdown"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
	"github.com/aiwars-hackathon/hackdash/internal/readiness"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
)

// Fixed copy.
const (
	Placeholder        = "—"
	LoadingText        = "Syncing your team data..."
	NoLiveTitle        = "NO LIVE EVALUATION"
	NoAnnouncements    = "No announcements yet."
	QRAvailableCaption = "Show this QR at the check-in desk."
	QRMissingCaption   = "QR not available yet."
)

// CountdownLabels name the four countdown cells.
var CountdownLabels = [4]string{"Days", "Hours", "Minutes", "Seconds"}

// Freshness is when a slice last loaded and how often it polls.
type Freshness struct {
	Updated  time.Time
	Interval time.Duration
}

// SubmissionState is the submission slice as seen by the view.
type SubmissionState struct {
	Status      string
	Draft       submission.Draft
	Validation  submission.Validation
	CanSubmit   bool
	Submitting  bool
	Message     string
	Err         string
	Notice      *submission.Notice
	Summary     *api.SubmissionSummary
	SubmittedAt string
}

// Snapshot is everything Compose reads.
type Snapshot struct {
	Now time.Time

	// Welcome replaces the default first chat line when set.
	Welcome string

	Profile    *api.TeamProfile
	ProfileErr string

	Agenda        *api.Agenda
	AgendaErr     string
	Remaining     int64
	ReadyInFlight bool
	ReadyErr      string

	Announcements      []api.Announcement
	AnnouncementsErr   string
	AnnouncementFilter string

	Chat        []api.ChatMessage
	ChatErr     string
	ChatSendErr string
	ChatInput   string
	ChatSending bool

	Submission SubmissionState

	Freshness map[poll.Source]Freshness
}

// ProfilePanel is the team profile sidebar.
type ProfilePanel struct {
	TeamID           string
	TeamName         string
	Members          []string
	College          string
	ProblemStatement string
	PreferredTrack   string
	PaymentStatus    string
	Venue            string
	Floor            string
	Err              string
}

// EvalBadge is one evaluation round indicator.
type EvalBadge struct {
	Name   string
	Active bool
}

// TimerPanel is the live round countdown and readiness action.
type TimerPanel struct {
	Title        string
	Cells        [4]string
	Live         bool
	Evaluations  []EvalBadge
	ReadyVisible bool
	ReadyLabel   string
	ReadyEnabled bool
	Hint         string
	Err          string
}

// QRPanel is the check-in QR section.
type QRPanel struct {
	Available bool
	Image     string
	Caption   string
}

// AnnouncementItem is one announcement row.
type AnnouncementItem struct {
	Title    string
	Body     string
	Priority bool
	Icon     string
}

// AnnouncementsPanel lists announcements.
type AnnouncementsPanel struct {
	Items  []AnnouncementItem
	Empty  string
	Filter string
	Total  int
	Err    string
}

// AgendaItem is one timeline row.
type AgendaItem struct {
	Title  string
	Detail string
	Status string
	Icon   string
	Live   bool
	Muted  bool
}

// AgendaPanel is the evaluation timeline.
type AgendaPanel struct {
	Items    []AgendaItem
	Fallback bool
	Err      string
}

// ChatLine is one rendered chat message.
type ChatLine struct {
	Key    string
	Text   string
	Class  chat.Class
	System bool
	At     string
}

// ChatPanel is the support chat.
type ChatPanel struct {
	Lines   []ChatLine
	Input   string
	Sending bool
	Err     string
	SendErr string
}

// FormField is one row of the submission form.
type FormField struct {
	Field     submission.Field
	Label     string
	Value     string
	Err       string
	ReadOnly  bool
	Multiline bool
}

// SubmissionPanel is the submission section in one of its modes.
type SubmissionPanel struct {
	Mode        string
	NotOpenText string
	Fields      []FormField
	CanSubmit   bool
	Submitting  bool
	SubmitLabel string
	Message     string
	Err         string
	Notice      []submission.Segment
	Summary     *api.SubmissionSummary
	SubmittedAt string
}

// Dashboard is the composed view.
type Dashboard struct {
	Now           time.Time
	Loading       bool
	LoadingText   string
	Profile       ProfilePanel
	Timer         TimerPanel
	QR            QRPanel
	Announcements AnnouncementsPanel
	Agenda        AgendaPanel
	Chat          ChatPanel
	Submission    SubmissionPanel
	Freshness     map[poll.Source]Freshness
}

// Compose builds the dashboard from s.
func Compose(s Snapshot) Dashboard {
	return Dashboard{
		Now:           s.Now,
		Loading:       s.Profile == nil && s.ProfileErr == "",
		LoadingText:   LoadingText,
		Profile:       composeProfile(s),
		Timer:         composeTimer(s),
		QR:            composeQR(s.Profile),
		Announcements: composeAnnouncements(s),
		Agenda:        composeAgenda(s),
		Chat:          composeChat(s),
		Submission:    composeSubmission(s.Submission),
		Freshness:     s.Freshness,
	}
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func composeProfile(s Snapshot) ProfilePanel {
	p := s.Profile
	if p == nil {
		return ProfilePanel{
			TeamID: Placeholder, TeamName: Placeholder, Members: []string{Placeholder},
			College: Placeholder, ProblemStatement: Placeholder, PreferredTrack: Placeholder,
			PaymentStatus: Placeholder, Venue: "Room/Table: " + Placeholder, Floor: Placeholder,
			Err: s.ProfileErr,
		}
	}
	members := make([]string, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, m.DisplayName())
	}
	if len(members) == 0 {
		members = []string{Placeholder}
	}
	return ProfilePanel{
		TeamID:           or(p.TeamID.String(), Placeholder),
		TeamName:         or(p.TeamName, Placeholder),
		Members:          members,
		College:          or(p.College, Placeholder),
		ProblemStatement: or(p.ProblemStatement, Placeholder),
		PreferredTrack:   or(p.PreferredTrack, Placeholder),
		PaymentStatus:    or(p.Payment.Status, Placeholder),
		Venue:            VenueLine(p.Venue),
		Floor:            or(p.Venue.Floor.String(), Placeholder),
		Err:              s.ProfileErr,
	}
}

// VenueLine formats the hall and room allocation.
func VenueLine(v api.Venue) string {
	room := "Room/Table: " + or(v.RoomNumber.String(), Placeholder)
	hall := or(v.VenueName, or(v.Building, v.Block))
	if strings.TrimSpace(hall) == "" {
		return room
	}
	return hall + " – " + room
}

func composeTimer(s Snapshot) TimerPanel {
	var live *api.LiveEvaluation
	if s.Agenda != nil {
		live = s.Agenda.LiveEvaluation
	}
	state := ""
	if s.Profile != nil {
		state = s.Profile.TeamState
	}

	t := TimerPanel{
		Title: NoLiveTitle,
		Cells: countdown.Decompose(s.Remaining).Padded(),
		Live:  live != nil,
		Hint:  readiness.Hint(live, state),
		Err:   s.ReadyErr,
	}
	if live != nil {
		t.Title = "CURRENT ROUND: " + or(live.Name, "Evaluation")
	}

	var flags api.EvaluationFlags
	if s.Profile != nil {
		flags = s.Profile.Evaluation
	}
	t.Evaluations = []EvalBadge{
		{Name: "Evaluation 1", Active: flags.Eval1},
		{Name: "Evaluation 2", Active: flags.Eval2},
		{Name: "Final Evaluation", Active: flags.Final},
	}

	t.ReadyVisible = readiness.Visible(live)
	t.ReadyLabel = readiness.Label(live, state)
	if s.ReadyInFlight {
		t.ReadyLabel = readiness.LabelSubmitting
	}
	t.ReadyEnabled = t.ReadyVisible && state == api.TeamStateEvalPending && !s.ReadyInFlight
	return t
}

func composeQR(p *api.TeamProfile) QRPanel {
	if p == nil || strings.TrimSpace(p.QRCode.Image) == "" {
		return QRPanel{Caption: QRMissingCaption}
	}
	return QRPanel{Available: true, Image: p.QRCode.Image, Caption: QRAvailableCaption}
}

func composeAnnouncements(s Snapshot) AnnouncementsPanel {
	panel := AnnouncementsPanel{
		Filter: s.AnnouncementFilter,
		Total:  len(s.Announcements),
		Err:    s.AnnouncementsErr,
	}
	for _, a := range FilterAnnouncements(s.Announcements, s.AnnouncementFilter) {
		icon := "ℹ"
		if a.Priority {
			icon = "⚠"
		}
		panel.Items = append(panel.Items, AnnouncementItem{
			Title:    or(a.Title, "Announcement"),
			Body:     a.Body,
			Priority: a.Priority,
			Icon:     icon,
		})
	}
	if len(panel.Items) == 0 {
		panel.Empty = NoAnnouncements
		if s.AnnouncementFilter != "" && len(s.Announcements) > 0 {
			panel.Empty = "No announcements match \"" + s.AnnouncementFilter + "\"."
		}
	}
	return panel
}

// FilterAnnouncements keeps announcements whose title or body fuzzily
// matches query, preserving server order. An empty query keeps all.
func FilterAnnouncements(list []api.Announcement, query string) []api.Announcement {
	query = strings.TrimSpace(query)
	if query == "" {
		return list
	}
	var out []api.Announcement
	for _, a := range list {
		if fuzzy.MatchFold(query, a.Title) || fuzzy.MatchFold(query, a.Body) {
			out = append(out, a)
		}
	}
	return out
}

// FallbackAgenda is shown until the event publishes its timeline.
var FallbackAgenda = []AgendaItem{
	{Title: "Check-in & Setup", Detail: Placeholder},
	{Title: "Evaluation Rounds", Detail: "Will appear here once the event starts"},
}

func composeAgenda(s Snapshot) AgendaPanel {
	panel := AgendaPanel{Err: s.AgendaErr}
	if s.Agenda == nil || len(s.Agenda.Evaluations) == 0 {
		panel.Items = append([]AgendaItem(nil), FallbackAgenda...)
		panel.Fallback = true
		return panel
	}
	evals := append([]api.Evaluation(nil), s.Agenda.Evaluations...)
	sort.SliceStable(evals, func(i, j int) bool { return evals[i].Order < evals[j].Order })
	for _, e := range evals {
		item := AgendaItem{Title: e.Name, Status: e.Status}
		if strings.TrimSpace(item.Title) == "" {
			item.Title = "Round " + strconv.Itoa(e.Order)
		}
		switch e.Status {
		case api.EvalLive:
			item.Detail, item.Icon, item.Live, item.Status = "Happening now", "●", true, "LIVE"
		case api.EvalCompleted:
			item.Detail, item.Icon = "Completed", "✓"
		default:
			item.Detail, item.Icon = "Upcoming", "…"
			item.Muted = e.Status == api.EvalPending
		}
		panel.Items = append(panel.Items, item)
	}
	return panel
}

func composeChat(s Snapshot) ChatPanel {
	lines := make([]ChatLine, 0, len(s.Chat)+1)
	lines = append(lines, ChatLine{Key: "welcome", Text: or(s.Welcome, chat.WelcomeMessage), System: true, Class: chat.ClassStaff})
	for _, m := range s.Chat {
		key := m.ID.String()
		if key == "" {
			key = m.CreatedAt + "-" + m.Message
		}
		lines = append(lines, ChatLine{
			Key:   key,
			Text:  m.Message,
			Class: chat.RoleClass(m.SenderRole),
			At:    m.CreatedAt,
		})
	}
	return ChatPanel{
		Lines:   lines,
		Input:   s.ChatInput,
		Sending: s.ChatSending,
		Err:     s.ChatErr,
		SendErr: s.ChatSendErr,
	}
}

func composeSubmission(s SubmissionState) SubmissionPanel {
	panel := SubmissionPanel{
		Mode:       s.Status,
		Submitting: s.Submitting,
		Message:    s.Message,
		Err:        s.Err,
	}
	switch s.Status {
	case api.SubmissionSubmitted:
		panel.Summary = s.Summary
		panel.SubmittedAt = s.SubmittedAt
	case api.SubmissionOpen:
		for _, f := range submission.Fields {
			panel.Fields = append(panel.Fields, FormField{
				Field:     f,
				Label:     f.Label(),
				Value:     s.Draft.Get(f),
				Err:       s.Validation.Errors[f],
				ReadOnly:  f == submission.FieldProblemStatement,
				Multiline: f.Multiline(),
			})
		}
		panel.CanSubmit = s.CanSubmit
		panel.SubmitLabel = "Submit Project"
		if s.Submitting {
			panel.SubmitLabel = "Submitting…"
		}
		if s.Notice != nil {
			panel.Notice = s.Notice.Segments()
		}
	default:
		panel.NotOpenText = submission.MessageNotOpen
	}
	return panel
}
