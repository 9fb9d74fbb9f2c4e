// Package poll runs interval-driven fetches of the dashboard's data slices.
package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// Source names a polled data slice.
type Source string

const (
	SourceProfile       Source = "profile"
	SourceAgenda        Source = "agenda"
	SourceAnnouncements Source = "announcements"
	SourceChat          Source = "chat"
	SourceSubmission    Source = "submission"
)

// Sources lists every slice in display order.
var Sources = []Source{SourceProfile, SourceAgenda, SourceAnnouncements, SourceChat, SourceSubmission}

// Default poll intervals.
const (
	DefaultProfileInterval       = 15 * time.Second
	DefaultAgendaInterval        = 12 * time.Second
	DefaultChatInterval          = 7 * time.Second
	DefaultAnnouncementsInterval = 30 * time.Second
	DefaultSubmissionInterval    = 18 * time.Second
)

// FetchFunc performs one authenticated read.
type FetchFunc func(ctx context.Context, token string) (any, error)

// TokenFunc returns the current session token, "" when there is none.
type TokenFunc func() string

// Spec configures one poller.
type Spec struct {
	Source   Source
	Interval time.Duration
	Fetch    FetchFunc
	// CancelPrevious aborts the previous in-flight request when a new cycle
	// starts. Other pollers let cycles overlap.
	CancelPrevious bool
}

// Result is the outcome of one completed cycle.
type Result struct {
	Source Source
	Data   any
	Err    error
	At     time.Time
	// Epoch identifies the group run that produced the result.
	Epoch uint64
	// OutOfBand is set for cycles requested through Refresh.
	OutOfBand bool
}

// DeliverFunc receives completed cycle results.
type DeliverFunc func(Result)

// Poller runs the cycle for one slice.
type Poller struct {
	spec    Spec
	tokens  TokenFunc
	deliver DeliverFunc
	clock   clockwork.Clock
	log     zerolog.Logger

	mu         sync.Mutex
	cancelPrev context.CancelFunc
	seq        uint64
}

// NewPoller creates a poller.
func NewPoller(spec Spec, tokens TokenFunc, deliver DeliverFunc, clock clockwork.Clock, log zerolog.Logger) *Poller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Poller{
		spec:    spec,
		tokens:  tokens,
		deliver: deliver,
		clock:   clock,
		log:     log.With().Str("source", string(spec.Source)).Logger(),
	}
}

// Spec returns the poller's configuration.
func (p *Poller) Spec() Spec {
	return p.spec
}

// Cycle runs one fetch and delivers the result. It returns false when no
// fetch happened (no token) or the result was dropped because ctx ended or
// a newer cycle superseded it.
func (p *Poller) Cycle(ctx context.Context, epoch uint64, outOfBand bool) bool {
	token := p.tokens()
	if token == "" {
		p.log.Debug().Msg("skipping cycle without session token")
		return false
	}

	cycleCtx := ctx
	var seq uint64
	if p.spec.CancelPrevious {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithCancel(ctx)
		p.mu.Lock()
		if p.cancelPrev != nil {
			p.cancelPrev()
		}
		p.cancelPrev = cancel
		p.seq++
		seq = p.seq
		p.mu.Unlock()
		defer p.release(seq, cancel)
	}

	data, err := p.spec.Fetch(cycleCtx, token)
	if cycleCtx.Err() != nil {
		// Superseded or torn down; the view must not see this result.
		return false
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		p.log.Warn().Err(err).Bool("out_of_band", outOfBand).Msg("poll cycle failed")
	}

	p.deliver(Result{
		Source:    p.spec.Source,
		Data:      data,
		Err:       err,
		At:        p.clock.Now(),
		Epoch:     epoch,
		OutOfBand: outOfBand,
	})
	return true
}

func (p *Poller) release(seq uint64, cancel context.CancelFunc) {
	cancel()
	p.mu.Lock()
	if p.seq == seq {
		p.cancelPrev = nil
	}
	p.mu.Unlock()
}

// Abort cancels an in-flight cancel-previous cycle, if any.
func (p *Poller) Abort() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelPrev != nil {
		p.cancelPrev()
		p.cancelPrev = nil
	}
}
