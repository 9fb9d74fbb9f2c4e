package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// ErrNotRunning is returned by Refresh when the group is stopped.
var ErrNotRunning = errors.New("poll group not running")

// Group owns the pollers of one dashboard view. Start schedules every
// poller with an immediate first cycle; Stop cancels all timers and aborts
// in-flight requests. A stopped group can be started again.
type Group struct {
	pollers map[Source]*Poller
	order   []Source
	clock   clockwork.Clock
	log     zerolog.Logger

	mu      sync.Mutex
	sched   gocron.Scheduler
	cancel  context.CancelFunc
	ctx     context.Context
	epoch   uint64
	running bool
	wg      sync.WaitGroup
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithClock sets the clock used for scheduling and result timestamps.
func WithClock(c clockwork.Clock) GroupOption {
	return func(g *Group) { g.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) GroupOption {
	return func(g *Group) { g.log = l }
}

// NewGroup creates a group of pollers sharing a token source and a
// delivery target.
func NewGroup(specs []Spec, tokens TokenFunc, deliver DeliverFunc, opts ...GroupOption) *Group {
	g := &Group{
		pollers: make(map[Source]*Poller, len(specs)),
		clock:   clockwork.NewRealClock(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	for _, spec := range specs {
		g.pollers[spec.Source] = NewPoller(spec, tokens, deliver, g.clock, g.log)
		g.order = append(g.order, spec.Source)
	}
	return g
}

// Start schedules every poller. The first cycle of each runs immediately.
func (g *Group) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		return nil
	}

	sched, err := gocron.NewScheduler(
		gocron.WithClock(g.clock),
		gocron.WithStopTimeout(5*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	g.epoch++
	epoch := g.epoch

	for _, src := range g.order {
		p := g.pollers[src]
		interval := p.spec.Interval
		if interval <= 0 {
			cancel()
			_ = sched.Shutdown()
			return fmt.Errorf("poller %s: interval must be positive", src)
		}
		_, err := sched.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() { p.Cycle(runCtx, epoch, false) }),
			gocron.WithStartAt(gocron.WithStartImmediately()),
			gocron.WithName(string(src)),
		)
		if err != nil {
			cancel()
			_ = sched.Shutdown()
			return fmt.Errorf("failed to schedule %s poller: %w", src, err)
		}
	}

	sched.Start()
	g.sched = sched
	g.ctx = runCtx
	g.cancel = cancel
	g.running = true
	g.log.Debug().Uint64("epoch", epoch).Int("pollers", len(g.order)).Msg("poll group started")
	return nil
}

// Refresh runs one out-of-band cycle for each named source without
// waiting for its next scheduled tick.
func (g *Group) Refresh(sources ...Source) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.running {
		return ErrNotRunning
	}
	for _, src := range sources {
		p, ok := g.pollers[src]
		if !ok {
			return fmt.Errorf("unknown poll source %q", src)
		}
		ctx, epoch := g.ctx, g.epoch
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			p.Cycle(ctx, epoch, true)
		}()
	}
	return nil
}

// Stop cancels every timer and in-flight request. It is safe to call more
// than once.
func (g *Group) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	cancel, sched := g.cancel, g.sched
	g.cancel, g.sched = nil, nil
	g.mu.Unlock()

	cancel()
	for _, p := range g.pollers {
		p.Abort()
	}
	if err := sched.Shutdown(); err != nil {
		g.log.Warn().Err(err).Msg("scheduler shutdown")
	}
	g.wg.Wait()
	g.log.Debug().Msg("poll group stopped")
}

// Running reports whether the group is started.
func (g *Group) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Epoch returns the identifier of the current (or last) run.
func (g *Group) Epoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

// SetIntervals changes poll intervals. Non-positive values are ignored.
// The change takes effect on the next Start.
func (g *Group) SetIntervals(iv Intervals) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for src, p := range g.pollers {
		if d := iv.For(src); d > 0 {
			p.spec.Interval = d
		}
	}
}

// Intervals returns the configured interval per source.
func (g *Group) Intervals() map[Source]time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[Source]time.Duration, len(g.pollers))
	for src, p := range g.pollers {
		out[src] = p.spec.Interval
	}
	return out
}
