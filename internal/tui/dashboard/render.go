package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aiwars-hackathon/hackdash/internal/poll"
	"github.com/aiwars-hackathon/hackdash/internal/submission"
	"github.com/aiwars-hackathon/hackdash/internal/tui/components"
	"github.com/aiwars-hackathon/hackdash/internal/tui/dashboard/panels"
	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/styles"
	"github.com/aiwars-hackathon/hackdash/internal/tui/theme"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// chatHistoryLines is how much chat scrollback the panel shows.
const chatHistoryLines = 14

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, components.HelpOverlay(helpSections()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.body.View(), m.renderHelpBar())
}

// refreshBody re-renders the scrollable body into the viewport.
func (m *Model) refreshBody() {
	atBottom := m.body.AtBottom()
	m.body.SetContent(m.renderBody())
	if atBottom && m.focus == focusChat {
		m.body.GotoBottom()
	}
}

func (m Model) renderBody() string {
	if m.screen == screenLogin {
		return m.renderLogin()
	}
	d := view.Compose(m.dash.Snapshot(m.now()))
	if d.Loading {
		return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center,
			components.RenderState(components.StateOptions{Kind: components.StateLoading, Message: d.LoadingText}))
	}

	sidebar, main, side := layout.Columns(m.width, m.profileCollapsed)
	switch m.tier {
	case layout.TierWide:
		left := m.stack(m.profileFrame(d, sidebar), m.qrFrame(d, sidebar))
		center := m.stack(m.timerFrame(d, main), m.agendaFrame(d, main), m.submissionFrame(d, main))
		right := m.stack(m.announcementsFrame(d, side), m.chatFrame(d, side))
		if sidebar == 0 {
			center = m.stack(m.profileFrame(d, main), center, m.qrFrame(d, main))
			return lipgloss.JoinHorizontal(lipgloss.Top, center, right)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, left, center, right)
	case layout.TierSplit:
		center := m.stack(m.timerFrame(d, main), m.agendaFrame(d, main), m.announcementsFrame(d, main), m.chatFrame(d, main), m.submissionFrame(d, main))
		if sidebar == 0 {
			return m.stack(m.profileFrame(d, main), center, m.qrFrame(d, main))
		}
		left := m.stack(m.profileFrame(d, sidebar), m.qrFrame(d, sidebar))
		return lipgloss.JoinHorizontal(lipgloss.Top, left, center)
	default:
		w := m.width
		return m.stack(
			m.profileFrame(d, w),
			m.timerFrame(d, w),
			m.qrFrame(d, w),
			m.agendaFrame(d, w),
			m.announcementsFrame(d, w),
			m.chatFrame(d, w),
			m.submissionFrame(d, w),
		)
	}
}

func (m Model) stack(parts ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) footer(d view.Dashboard, src poll.Source) string {
	return panels.Footer(d.Now, d.Freshness[src])
}

func (m Model) profileFrame(d view.Dashboard, w int) string {
	title := "Team"
	if m.profileCollapsed {
		title = "Team [tab]"
	}
	return panels.Frame(title, panels.Profile(d.Profile, w, m.profileCollapsed), m.footer(d, poll.SourceProfile), w, false)
}

func (m Model) timerFrame(d view.Dashboard, w int) string {
	return panels.Frame("Live Round", panels.Timer(d.Timer, w), m.footer(d, poll.SourceAgenda), w, false)
}

func (m Model) qrFrame(d view.Dashboard, w int) string {
	return panels.Frame("Check-in QR", panels.QR(d.QR, w), "", w, false)
}

func (m Model) agendaFrame(d view.Dashboard, w int) string {
	return panels.Frame("Agenda", panels.Agenda(d.Agenda, w), m.footer(d, poll.SourceAgenda), w, false)
}

func (m Model) announcementsFrame(d view.Dashboard, w int) string {
	opts := panels.AnnouncementsOptions{Width: w, Markdown: m.md}
	if m.focus == focusFilter {
		opts.Filter = m.filterInput.View()
	}
	return panels.Frame("Announcements", panels.Announcements(d.Announcements, opts), m.footer(d, poll.SourceAnnouncements), w, m.focus == focusFilter)
}

func (m Model) chatFrame(d view.Dashboard, w int) string {
	inner := panels.Inner(w)
	history := tail(panels.ChatLines(d.Chat, inner), chatHistoryLines)
	editor := ""
	if m.focus == focusChat {
		editor = m.chatInput.View()
	}
	body := history + "\n" + styles.Divider(inner, theme.Current().Surface1) + "\n" + panels.ChatInput(d.Chat, editor, inner)
	return panels.Frame("Support Chat", body, m.footer(d, poll.SourceChat), w, m.focus == focusChat)
}

func (m Model) submissionFrame(d view.Dashboard, w int) string {
	opts := panels.SubmissionOptions{Width: w, Cursor: -1}
	if m.focus == focusForm {
		opts.Cursor = m.formCursor
		f := submission.Fields[m.formCursor]
		switch {
		case m.fieldReadOnly(f):
		case f.Multiline():
			opts.Editor = m.fieldArea.View()
		default:
			opts.Editor = m.fieldInput.View()
		}
	}
	return panels.Frame("Project Submission", panels.Submission(d.Submission, opts), m.footer(d, poll.SourceSubmission), w, m.focus == focusForm)
}

// formWidth is the width the submission panel renders at.
func (m Model) formWidth() int {
	_, main, _ := layout.Columns(m.width, m.profileCollapsed)
	return main
}

func tail(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}

func (m Model) renderHeader() string {
	t := theme.Current()
	title := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("hackdash")
	if m.screen == screenDashboard && m.dash.Profile != nil {
		title += styles.Muted(" · ") + lipgloss.NewStyle().Foreground(t.Team).Bold(true).Render(m.dash.Profile.TeamName)
	}
	right := ""
	if m.screen == screenDashboard {
		if status := m.dash.Submission.Status(); status != "" {
			right = styles.StatusBadge(status)
		}
	}
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		return layout.Truncate(title, m.width)
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelpBar() string {
	k := dashKeys
	var hs []components.KeyHint
	switch {
	case m.screen == screenLogin:
		hs = hints(k.Refresh, k.Quit)
	case m.focus == focusChat:
		hs = hints(k.Send, k.Leave)
	case m.focus == focusFilter:
		hs = []components.KeyHint{hint(k.Send), hint(k.Leave)}
		hs[0].Desc = "apply"
	case m.focus == focusForm:
		hs = hints(k.Up, k.Down, k.Submit, k.Leave)
	default:
		hs = hints(k.Ready, k.Chat, k.Filter, k.Form, k.ToggleProfile, k.Dismiss, k.Refresh, k.Help, k.Quit)
	}
	return components.RenderHelpBar(hs, m.width)
}

func (m Model) renderLogin() string {
	t := theme.Current()
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Render("Sign in to your team dashboard"), "")
	if m.loginReason != "" {
		lines = append(lines, styles.ErrorText(m.loginReason), "")
	}
	switch {
	case m.deps.Receiver == nil:
		lines = append(lines, m.deps.LoginHint)
	case m.loginErr != "":
		lines = append(lines, components.ErrorLine(m.loginErr, m.width-8), "", m.deps.LoginHint)
	case m.loginURL != "":
		lines = append(lines,
			"Open this link in your browser to sign in:",
			lipgloss.NewStyle().Foreground(t.Blue).Underline(true).Render(m.loginURL),
			"",
			styles.Muted("The dashboard starts as soon as the login completes."),
		)
	default:
		lines = append(lines, components.RenderState(components.StateOptions{Kind: components.StateLoading, Message: "Starting login…"}))
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 3).
		Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, box)
}
