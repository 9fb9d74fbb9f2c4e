package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Text is a JSON scalar decoded as a string. The backend is loose about
// whether ids, floors and room numbers are strings or numbers.
type Text string

// UnmarshalJSON accepts strings, numbers, booleans and null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

// String returns the text value.
func (t Text) String() string { return string(t) }

// Team states reported in TeamProfile.TeamState.
const (
	TeamStateEvalPending  = "eval_pending"
	TeamStateReadyForEval = "ready_for_eval"
)

// Member is one participant of a team.
type Member struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DisplayName returns the name, falling back to email, then a dash.
func (m Member) DisplayName() string {
	if s := strings.TrimSpace(m.Name); s != "" {
		return s
	}
	if s := strings.TrimSpace(m.Email); s != "" {
		return s
	}
	return "—"
}

// Payment holds the team's payment status.
type Payment struct {
	Status string `json:"status"`
}

// Venue is where the team is seated.
type Venue struct {
	VenueName  string `json:"venueName"`
	Building   string `json:"building"`
	Block      string `json:"block"`
	RoomNumber Text   `json:"roomNumber"`
	Floor      Text   `json:"floor"`
}

// EvaluationFlags marks which evaluation rounds are unlocked for the team.
type EvaluationFlags struct {
	Eval1 bool `json:"eval1"`
	Eval2 bool `json:"eval2"`
	Final bool `json:"final"`
}

// QRCode carries the check-in QR image as a data URL.
type QRCode struct {
	Image string `json:"image"`
}

// TeamProfile is the response of GET /api/team/me.
type TeamProfile struct {
	TeamID           Text            `json:"teamId"`
	TeamName         string          `json:"teamName"`
	Members          []Member        `json:"members"`
	College          string          `json:"college"`
	ProblemStatement string          `json:"problemStatement"`
	PreferredTrack   string          `json:"preferredTrack"`
	Payment          Payment         `json:"payment"`
	Venue            Venue           `json:"venue"`
	Evaluation       EvaluationFlags `json:"evaluation"`
	TeamState        string          `json:"teamState"`
	QRCode           QRCode          `json:"qrCode"`
}

// Evaluation statuses.
const (
	EvalPending   = "pending"
	EvalLive      = "live"
	EvalCompleted = "completed"
)

// LiveEvaluation is the currently running round.
type LiveEvaluation struct {
	ID               Text   `json:"id"`
	Name             string `json:"name"`
	RemainingSeconds *int64 `json:"remaining_seconds"`
}

// Evaluation is one entry of the agenda timeline.
type Evaluation struct {
	ID     Text   `json:"id"`
	Order  int    `json:"order"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Agenda is the response of GET /api/agenda.
type Agenda struct {
	LiveEvaluation *LiveEvaluation `json:"live_evaluation"`
	Evaluations    []Evaluation    `json:"evaluations"`
}

// Announcement is one organiser broadcast.
type Announcement struct {
	ID       Text   `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Priority bool   `json:"priority"`
}

type announcementsResponse struct {
	Announcements []Announcement `json:"announcements"`
}

// ChatMessage is one support-chat line.
type ChatMessage struct {
	ID         Text   `json:"id"`
	Message    string `json:"message"`
	SenderRole string `json:"sender_role"`
	CreatedAt  string `json:"created_at"`
}

// UnmarshalJSON accepts both sender_role and senderRole.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type plain ChatMessage
	var raw struct {
		plain
		SenderRoleCamel string `json:"senderRole"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ChatMessage(raw.plain)
	if m.SenderRole == "" {
		m.SenderRole = raw.SenderRoleCamel
	}
	return nil
}

type chatResponse struct {
	Messages []ChatMessage `json:"messages"`
}

type chatSendRequest struct {
	Message string `json:"message"`
}

type chatSendResponse struct {
	Message ChatMessage `json:"message"`
}

// Submission statuses.
const (
	SubmissionNotOpen   = "not_open"
	SubmissionOpen      = "open"
	SubmissionSubmitted = "submitted"
)

// SubmissionSummary is the read-only view of a submitted project.
type SubmissionSummary struct {
	Title      string `json:"title"`
	GithubRepo string `json:"github_repo"`
	LiveDemo   string `json:"live_demo"`
}

// SubmissionStatus is the response of GET /api/submissions/status.
type SubmissionStatus struct {
	Status      string             `json:"status"`
	Submission  *SubmissionSummary `json:"submission,omitempty"`
	SubmittedAt string             `json:"submitted_at,omitempty"`
}

// SubmitRequest is the body of POST /api/team/submission.
type SubmitRequest struct {
	Title               string `json:"title"`
	Description         string `json:"description"`
	TechStack           string `json:"tech_stack"`
	GithubRepo          string `json:"github_repo"`
	LiveDemo            string `json:"live_demo"`
	Contributions       string `json:"contributions"`
	Challenges          string `json:"challenges"`
	Experience          string `json:"experience"`
	Feedback            string `json:"feedback"`
	ProblemStatement    string `json:"problem_statement"`
	TeamID              string `json:"team_id"`
	SubmissionTimestamp string `json:"submission_timestamp"`
}

// Timestamp formats t the way the backend expects submission timestamps.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
