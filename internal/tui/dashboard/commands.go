package dashboard

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aiwars-hackathon/hackdash/internal/api"
	"github.com/aiwars-hackathon/hackdash/internal/auth"
	"github.com/aiwars-hackathon/hackdash/internal/chat"
	"github.com/aiwars-hackathon/hackdash/internal/poll"
	"github.com/aiwars-hackathon/hackdash/internal/readiness"
)

// PollResultMsg carries one completed poll cycle.
type PollResultMsg poll.Result

// TickMsg redraws the countdown and freshness indicators.
type TickMsg time.Time

// ReadyResultMsg is the outcome of a mark-ready request.
type ReadyResultMsg struct{ Err error }

// ChatSentMsg is the outcome of a chat send.
type ChatSentMsg struct {
	Echo *api.ChatMessage
	Err  error
}

// SubmitResultMsg is the outcome of a project submission.
type SubmitResultMsg struct{ Err error }

// TokenAcquiredMsg is sent when the login receiver captures a token.
type TokenAcquiredMsg struct{ Token string }

// ReceiverStartedMsg reports the login receiver address.
type ReceiverStartedMsg struct {
	URL string
	Err error
}

// ConfigReloadedMsg applies a changed config file to the running
// dashboard.
type ConfigReloadedMsg struct {
	Intervals poll.Intervals
	Theme     string
	Welcome   string
}

const tickInterval = time.Second

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForResult blocks until the poll group delivers a result.
func waitForResult(ctx context.Context, ch <-chan poll.Result) tea.Cmd {
	return func() tea.Msg {
		select {
		case r := <-ch:
			return PollResultMsg(r)
		case <-ctx.Done():
			return nil
		}
	}
}

func waitForToken(ctx context.Context, r *auth.Receiver) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case tok := <-r.Tokens():
			return TokenAcquiredMsg{Token: tok}
		case <-ctx.Done():
			return nil
		}
	}
}

// recheckToken picks up a token stored by another process, such as
// `hackdash login` run in a second terminal.
func recheckToken(ctx context.Context, tokens *auth.TokenStore) tea.Cmd {
	return func() tea.Msg {
		res, err := tokens.Resolve(ctx, nil)
		if err != nil || !res.Authenticated() {
			return nil
		}
		return TokenAcquiredMsg{Token: res.Token}
	}
}

func startReceiver(ctx context.Context, r *auth.Receiver) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		_ = r.Stop(ctx)
		err := r.Start(ctx)
		return ReceiverStartedMsg{URL: r.URL(), Err: err}
	}
}

func stopReceiver(ctx context.Context, r *auth.Receiver) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		_ = r.Stop(ctx)
		return nil
	}
}

func markReady(ctx context.Context, m readiness.Marker, token string, req readiness.Request) tea.Cmd {
	return func() tea.Msg {
		return ReadyResultMsg{Err: readiness.Send(ctx, m, token, req)}
	}
}

func sendChat(ctx context.Context, s chat.Sender, token, text string) tea.Cmd {
	return func() tea.Msg {
		echo, err := chat.Send(ctx, s, token, text)
		return ChatSentMsg{Echo: echo, Err: err}
	}
}

// Submitter is the API surface needed to submit a project.
type Submitter interface {
	Submit(ctx context.Context, token string, req api.SubmitRequest) error
}

func submitProject(ctx context.Context, s Submitter, token string, req api.SubmitRequest) tea.Cmd {
	return func() tea.Msg {
		return SubmitResultMsg{Err: s.Submit(ctx, token, req)}
	}
}
