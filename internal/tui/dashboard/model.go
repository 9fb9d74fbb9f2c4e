// Package dashboard is the interactive team dashboard: a Bubble Tea model
// that owns the client state, applies poll results, and dispatches the
// readiness, chat and submission actions.
package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/auth"
	"github.com/aiwars-hackathon/hackdash/internal/chat"
	"github.com/aiwars-hackathon/hackdash/internal/countdown"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
	"github.com/aiwars-hackathon/hackdash/internal/readiness"
	"github.com/aiwars-hackathon/hackdash/internal/state"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
	"github.com/aiwars-hackathon/hackdash/internal/tui/dashboard/panels"
	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
)

// API is the backend surface the dashboard uses.
type API interface {
	poll.Fetchers
	readiness.Marker
	chat.Sender
	Submitter
}

// Deps wires the dashboard to its collaborators.
type Deps struct {
	API    API
	Tokens *auth.TokenStore
	// Receiver runs the in-terminal login hand-off. Nil disables it and
	// the login screen only explains how to sign in.
	Receiver  *auth.Receiver
	Drafts    *submission.DraftStore
	Clock     clockwork.Clock
	Log       zerolog.Logger
	Intervals poll.Intervals
	Welcome   string
	// LoginHint is shown on the login screen when no receiver is set.
	LoginHint string
}

type screen int

const (
	screenLogin screen = iota
	screenDashboard
)

type focus int

const (
	focusNone focus = iota
	focusChat
	focusFilter
	focusForm
)

// resultBuffer bounds undelivered poll results. Delivery never blocks, so
// stopping the group from the UI loop cannot deadlock.
const resultBuffer = 64

// Model is the dashboard model.
type Model struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc

	results chan poll.Result
	group   *poll.Group
	dash    *state.Dashboard

	screen      screen
	loginReason string
	loginURL    string
	loginErr    string

	width, height    int
	tier             layout.Tier
	profileCollapsed bool
	collapseTouched  bool

	focus       focus
	showHelp    bool
	chatInput   textinput.Model
	filterInput textinput.Model
	fieldInput  textinput.Model
	fieldArea   textarea.Model
	formCursor  int
	body        viewport.Model
	md          *panels.Markdown

	quitting bool
}

// New creates the dashboard. The session starts on Init when the token
// store already holds a token; otherwise the login screen is shown.
func New(ctx context.Context, deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Intervals == (poll.Intervals{}) {
		deps.Intervals = poll.DefaultIntervals()
	}
	ctx, cancel := context.WithCancel(ctx)

	m := Model{
		deps:    deps,
		ctx:     ctx,
		cancel:  cancel,
		results: make(chan poll.Result, resultBuffer),
		width:   80,
		height:  24,
		md:      panels.NewMarkdown(markdownStyle()),
	}
	m.group = poll.NewGroup(
		poll.SpecsFor(deps.API, deps.Intervals),
		deps.Tokens.Token,
		deliverTo(m.results, deps.Log),
		poll.WithClock(deps.Clock),
		poll.WithLogger(deps.Log),
	)
	m.dash = m.newState()
	m.tier = layout.TierForWidth(m.width)
	m.profileCollapsed = layout.ProfileCollapsedByDefault(m.width)

	m.chatInput = newInput("Type a message…", 500)
	m.filterInput = newInput("Filter announcements…", 80)
	m.fieldInput = newInput("", 0)
	m.fieldArea = textarea.New()
	m.fieldArea.ShowLineNumbers = false
	m.fieldArea.CharLimit = 0
	m.fieldArea.SetHeight(4)
	m.body = viewport.New(m.width, m.bodyHeight())

	if deps.Tokens.Token() != "" {
		m.screen = screenDashboard
	}
	m.refreshBody()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	t := theme.Current()
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.PromptStyle = lipgloss.NewStyle().Foreground(t.Mauve)
	ti.TextStyle = lipgloss.NewStyle().Foreground(t.Text)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(t.Overlay)
	return ti
}

func markdownStyle() string {
	if theme.NoColorEnabled() {
		return "notty"
	}
	if theme.Current().Dark {
		return "dark"
	}
	return "light"
}

func deliverTo(ch chan<- poll.Result, log zerolog.Logger) poll.DeliverFunc {
	return func(r poll.Result) {
		select {
		case ch <- r:
		default:
			log.Warn().Str("source", string(r.Source)).Msg("dropping poll result, UI not keeping up")
		}
	}
}

func (m Model) newState() *state.Dashboard {
	sub := submission.NewController(m.deps.Drafts, m.deps.Log)
	d := state.New(sub, countdown.New(m.deps.Clock), m.deps.Intervals)
	d.Welcome = m.deps.Welcome
	return d
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick(), waitForResult(m.ctx, m.results)}
	if m.screen == screenDashboard {
		if err := m.group.Start(m.ctx); err != nil {
			m.deps.Log.Error().Err(err).Msg("failed to start pollers")
		}
	} else {
		cmds = append(cmds, startReceiver(m.ctx, m.deps.Receiver), waitForToken(m.ctx, m.deps.Receiver))
	}
	return tea.Batch(cmds...)
}

// Close stops polling and the login receiver.
func (m Model) Close() {
	m.group.Stop()
	if m.deps.Receiver != nil {
		_ = m.deps.Receiver.Stop(context.Background())
	}
	m.cancel()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.refreshBody()
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m, tick()

	case PollResultMsg:
		return m.applyResult(poll.Result(msg))

	case ReadyResultMsg:
		if api.IsUnauthorized(msg.Err) {
			return m.endSession(state.ErrSessionInvalid)
		}
		if msg.Err != nil {
			m.deps.Log.Warn().Err(msg.Err).Msg("mark ready failed")
		}
		m.refresh(m.dash.Ready.Finish(msg.Err)...)
		return m, nil

	case ChatSentMsg:
		if api.IsUnauthorized(msg.Err) {
			return m.endSession(state.ErrSessionInvalid)
		}
		if msg.Err != nil {
			m.deps.Log.Warn().Err(msg.Err).Msg("chat send failed")
		}
		m.dash.Chat.FinishSend(msg.Echo, msg.Err)
		m.chatInput.SetValue(m.dash.Chat.Input())
		m.chatInput.CursorEnd()
		return m, nil

	case SubmitResultMsg:
		if api.IsUnauthorized(msg.Err) {
			return m.endSession(state.ErrSessionInvalid)
		}
		if msg.Err != nil {
			m.deps.Log.Warn().Err(msg.Err).Msg("submission failed")
		}
		m.refresh(m.dash.Submission.FinishSubmit(m.ctx, msg.Err)...)
		m.syncForm()
		return m, nil

	case TokenAcquiredMsg:
		return m.beginSession()

	case ReceiverStartedMsg:
		m.loginURL = msg.URL
		m.loginErr = ""
		if msg.Err != nil {
			m.loginErr = msg.Err.Error()
		}
		return m, nil

	case ConfigReloadedMsg:
		return m.reload(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) applyResult(r poll.Result) (Model, tea.Cmd) {
	next := waitForResult(m.ctx, m.results)
	if m.screen != screenDashboard || !m.group.Running() || r.Epoch != m.group.Epoch() {
		m.deps.Log.Debug().Str("source", string(r.Source)).Uint64("epoch", r.Epoch).Msg("discarding stale poll result")
		return m, next
	}
	out := m.dash.Apply(m.ctx, r)
	if out.SessionFatal {
		m, cmd := m.endSession(out.Reason)
		return m, tea.Batch(next, cmd)
	}
	if r.Source == poll.SourceSubmission || r.Source == poll.SourceProfile {
		m.syncForm()
	}
	return m, next
}

func (m Model) refresh(sources ...poll.Source) {
	if len(sources) == 0 {
		return
	}
	if err := m.group.Refresh(sources...); err != nil && !errors.Is(err, poll.ErrNotRunning) {
		m.deps.Log.Warn().Err(err).Msg("refresh failed")
	}
}

// endSession stops polling, clears the token and returns to the login
// screen.
func (m Model) endSession(reason string) (Model, tea.Cmd) {
	m.group.Stop()
	m.deps.Tokens.Invalidate(m.ctx, reason)
	m.screen = screenLogin
	m.loginReason = reason
	m.focus = focusNone
	m.blurAll()
	return m, tea.Batch(startReceiver(m.ctx, m.deps.Receiver), waitForToken(m.ctx, m.deps.Receiver))
}

func (m Model) beginSession() (Model, tea.Cmd) {
	m.dash = m.newState()
	m.screen = screenDashboard
	m.loginReason = ""
	m.chatInput.SetValue("")
	m.filterInput.SetValue("")
	if err := m.group.Start(m.ctx); err != nil {
		m.deps.Log.Error().Err(err).Msg("failed to start pollers")
	}
	return m, stopReceiver(m.ctx, m.deps.Receiver)
}

func (m Model) reload(msg ConfigReloadedMsg) (Model, tea.Cmd) {
	if msg.Theme != "" {
		theme.Use(msg.Theme)
		m.md = panels.NewMarkdown(markdownStyle())
	}
	m.deps.Welcome = msg.Welcome
	m.dash.Welcome = msg.Welcome

	if msg.Intervals != (poll.Intervals{}) && msg.Intervals != m.deps.Intervals {
		m.deps.Intervals = msg.Intervals
		m.dash.Intervals = msg.Intervals
		m.group.SetIntervals(msg.Intervals)
		if m.group.Running() {
			m.group.Stop()
			if err := m.group.Start(m.ctx); err != nil {
				m.deps.Log.Error().Err(err).Msg("failed to restart pollers")
			}
		}
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.tier = layout.TierForWidth(w)
	if !m.collapseTouched {
		m.profileCollapsed = layout.ProfileCollapsedByDefault(w)
	}
	m.body.Width = w
	m.body.Height = m.bodyHeight()
}

func (m Model) bodyHeight() int {
	return max(m.height-2, 1)
}

func (m *Model) blurAll() {
	m.chatInput.Blur()
	m.filterInput.Blur()
	m.fieldInput.Blur()
	m.fieldArea.Blur()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.showHelp {
		if key.Matches(msg, dashKeys.Help, dashKeys.Leave) {
			m.showHelp = false
		}
		return m, nil
	}
	if m.screen == screenLogin {
		switch {
		case key.Matches(msg, dashKeys.Quit):
			return m.quit()
		case key.Matches(msg, dashKeys.Refresh):
			return m, recheckToken(m.ctx, m.deps.Tokens)
		}
		return m, nil
	}

	switch m.focus {
	case focusChat:
		return m.chatKey(msg)
	case focusFilter:
		return m.filterKey(msg)
	case focusForm:
		return m.formKey(msg)
	}

	switch {
	case key.Matches(msg, dashKeys.Quit):
		return m.quit()
	case key.Matches(msg, dashKeys.Help):
		m.showHelp = true
	case key.Matches(msg, dashKeys.ToggleProfile):
		m.profileCollapsed = !m.profileCollapsed
		m.collapseTouched = true
	case key.Matches(msg, dashKeys.Ready):
		return m.ready()
	case key.Matches(msg, dashKeys.Chat):
		m.focus = focusChat
		m.chatInput.SetValue(m.dash.Chat.Input())
		m.chatInput.CursorEnd()
		return m, m.chatInput.Focus()
	case key.Matches(msg, dashKeys.Filter):
		m.focus = focusFilter
		m.filterInput.SetValue(m.dash.Filter)
		m.filterInput.CursorEnd()
		return m, m.filterInput.Focus()
	case key.Matches(msg, dashKeys.Form):
		if m.dash.Submission.Status() == api.SubmissionOpen {
			m.focus = focusForm
			return m, m.loadField()
		}
	case key.Matches(msg, dashKeys.Dismiss):
		m.dash.Submission.DismissNotice()
	case key.Matches(msg, dashKeys.Refresh):
		m.refresh(poll.Sources...)
	case key.Matches(msg, dashKeys.ScrollUp):
		m.body.HalfViewUp()
	case key.Matches(msg, dashKeys.ScrollDown):
		m.body.HalfViewDown()
	case msg.Type == tea.KeyUp:
		m.body.LineUp(1)
	case msg.Type == tea.KeyDown:
		m.body.LineDown(1)
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	m.Close()
	return m, tea.Quit
}

func (m Model) ready() (Model, tea.Cmd) {
	var live *api.LiveEvaluation
	if m.dash.Agenda != nil {
		live = m.dash.Agenda.LiveEvaluation
	}
	req, ok := m.dash.Ready.Begin(live, m.dash.Profile)
	if !ok {
		return m, nil
	}
	return m, markReady(m.ctx, m.deps.API, m.deps.Tokens.Token(), req)
}

func (m Model) chatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, dashKeys.Leave):
		m.focus = focusNone
		m.chatInput.Blur()
		return m, nil
	case key.Matches(msg, dashKeys.Send):
		m.dash.Chat.SetInput(m.chatInput.Value())
		text, ok := m.dash.Chat.BeginSend()
		if !ok {
			return m, nil
		}
		m.chatInput.SetValue(m.dash.Chat.Input())
		m.body.GotoBottom()
		return m, sendChat(m.ctx, m.deps.API, m.deps.Tokens.Token(), text)
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	m.dash.Chat.SetInput(m.chatInput.Value())
	return m, cmd
}

func (m Model) filterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, dashKeys.Leave, dashKeys.Send) {
		m.focus = focusNone
		m.filterInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.dash.Filter = m.filterInput.Value()
	return m, cmd
}

func (m Model) currentField() submission.Field {
	return submission.Fields[m.formCursor]
}

func (m Model) fieldReadOnly(f submission.Field) bool {
	return f == submission.FieldProblemStatement
}

func (m Model) formKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, dashKeys.Leave):
		m.focus = focusNone
		m.fieldInput.Blur()
		m.fieldArea.Blur()
		return m, nil
	case key.Matches(msg, dashKeys.Submit):
		req, ok := m.dash.Submission.BeginSubmit(m.deps.Clock.Now())
		if !ok {
			return m, nil
		}
		return m, submitProject(m.ctx, m.deps.API, m.deps.Tokens.Token(), req)
	case key.Matches(msg, dashKeys.Up):
		m.formCursor = (m.formCursor + len(submission.Fields) - 1) % len(submission.Fields)
		return m, m.loadField()
	case key.Matches(msg, dashKeys.Down):
		m.formCursor = (m.formCursor + 1) % len(submission.Fields)
		return m, m.loadField()
	}

	f := m.currentField()
	if m.fieldReadOnly(f) || m.dash.Submission.Submitting() {
		return m, nil
	}
	if !f.Multiline() && key.Matches(msg, dashKeys.Send) {
		m.formCursor = (m.formCursor + 1) % len(submission.Fields)
		return m, m.loadField()
	}

	var cmd tea.Cmd
	var value string
	if f.Multiline() {
		m.fieldArea, cmd = m.fieldArea.Update(msg)
		value = m.fieldArea.Value()
	} else {
		m.fieldInput, cmd = m.fieldInput.Update(msg)
		value = m.fieldInput.Value()
	}
	if value != m.dash.Submission.Draft().Get(f) {
		if err := m.dash.Submission.SetField(m.ctx, f, value); err != nil {
			m.deps.Log.Warn().Err(err).Str("field", string(f)).Msg("draft edit rejected")
			if errors.Is(err, submission.ErrNotOpen) {
				m.focus = focusNone
				m.blurAll()
			}
		}
	}
	return m, cmd
}

// loadField points the active editor at the field under the cursor.
func (m *Model) loadField() tea.Cmd {
	f := m.currentField()
	value := m.dash.Submission.Draft().Get(f)
	m.fieldInput.Blur()
	m.fieldArea.Blur()
	if m.fieldReadOnly(f) {
		return nil
	}
	width := max(m.formWidth()-6, 10)
	if f.Multiline() {
		m.fieldArea.SetWidth(width)
		m.fieldArea.SetValue(value)
		return m.fieldArea.Focus()
	}
	m.fieldInput.Width = width
	m.fieldInput.SetValue(value)
	m.fieldInput.CursorEnd()
	return m.fieldInput.Focus()
}

// syncForm leaves the form when submissions close or the project was
// submitted.
func (m *Model) syncForm() {
	if m.focus == focusForm && m.dash.Submission.Status() != api.SubmissionOpen {
		m.focus = focusNone
		m.fieldInput.Blur()
		m.fieldArea.Blur()
	}
}

// now is the instant the view renders against.
func (m Model) now() time.Time {
	return m.deps.Clock.Now()
}
