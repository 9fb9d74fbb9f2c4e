package poll

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type collector struct {
	mu      sync.Mutex
	results []Result
}

func (c *collector) deliver(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) snapshot() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Result(nil), c.results...)
}

func (c *collector) count(src Source) int {
	n := 0
	for _, r := range c.snapshot() {
		if r.Source == src {
			n++
		}
	}
	return n
}

func staticToken(tok string) TokenFunc { return func() string { return tok } }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestCycleWithoutTokenDoesNotFetch(t *testing.T) {
	var fetched atomic.Bool
	c := &collector{}
	p := NewPoller(Spec{
		Source:   SourceAgenda,
		Interval: time.Second,
		Fetch: func(context.Context, string) (any, error) {
			fetched.Store(true)
			return nil, nil
		},
	}, staticToken(""), c.deliver, nil, zerolog.Nop())

	if p.Cycle(context.Background(), 1, false) {
		t.Error("expected Cycle to report no fetch")
	}
	if fetched.Load() {
		t.Error("fetch ran without a token")
	}
	if len(c.snapshot()) != 0 {
		t.Error("expected no delivery")
	}
}

func TestCycleDeliversSuccessAndFailure(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	fail := errors.New("boom")
	calls := 0
	c := &collector{}
	p := NewPoller(Spec{
		Source:   SourceChat,
		Interval: time.Second,
		Fetch: func(_ context.Context, token string) (any, error) {
			calls++
			if token != "tok" {
				t.Errorf("token = %q", token)
			}
			if calls == 2 {
				return nil, fail
			}
			return []string{"hi"}, nil
		},
	}, staticToken("tok"), c.deliver, clock, zerolog.Nop())

	p.Cycle(context.Background(), 3, false)
	p.Cycle(context.Background(), 3, true)

	got := c.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Err != nil || got[0].Data == nil || got[0].Epoch != 3 || got[0].OutOfBand {
		t.Errorf("unexpected first result: %+v", got[0])
	}
	if !got[0].At.Equal(clock.Now()) {
		t.Errorf("At = %v, want %v", got[0].At, clock.Now())
	}
	if !errors.Is(got[1].Err, fail) || !got[1].OutOfBand {
		t.Errorf("unexpected second result: %+v", got[1])
	}
}

func TestCancelPreviousSupersedesInFlight(t *testing.T) {
	started := make(chan struct{}, 2)
	var n atomic.Int32
	c := &collector{}
	p := NewPoller(Spec{
		Source:         SourceProfile,
		Interval:       time.Second,
		CancelPrevious: true,
		Fetch: func(ctx context.Context, _ string) (any, error) {
			if n.Add(1) == 1 {
				started <- struct{}{}
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return "fresh", nil
		},
	}, staticToken("tok"), c.deliver, nil, zerolog.Nop())

	first := make(chan bool, 1)
	go func() { first <- p.Cycle(context.Background(), 1, false) }()
	<-started

	if !p.Cycle(context.Background(), 1, false) {
		t.Fatal("second cycle should deliver")
	}
	select {
	case delivered := <-first:
		if delivered {
			t.Error("superseded cycle must not deliver")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first cycle was not aborted")
	}

	got := c.snapshot()
	if len(got) != 1 || got[0].Data != "fresh" {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestOverlappingCyclesAllowed(t *testing.T) {
	release := make(chan struct{})
	var inFlight, peak atomic.Int32
	c := &collector{}
	p := NewPoller(Spec{
		Source:   SourceAnnouncements,
		Interval: time.Second,
		Fetch: func(ctx context.Context, _ string) (any, error) {
			cur := inFlight.Add(1)
			for {
				old := peak.Load()
				if cur <= old || peak.CompareAndSwap(old, cur) {
					break
				}
			}
			<-release
			inFlight.Add(-1)
			return nil, nil
		},
	}, staticToken("tok"), c.deliver, nil, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Cycle(context.Background(), 1, false)
		}()
	}
	waitFor(t, "two cycles in flight", func() bool { return inFlight.Load() == 2 })
	close(release)
	wg.Wait()

	if peak.Load() != 2 {
		t.Errorf("peak in-flight = %d, want 2", peak.Load())
	}
	if len(c.snapshot()) != 2 {
		t.Errorf("expected both cycles to deliver")
	}
}

func testSpecs(fetch FetchFunc) []Spec {
	specs := make([]Spec, 0, len(Sources))
	for _, src := range Sources {
		specs = append(specs, Spec{
			Source:         src,
			Interval:       20 * time.Millisecond,
			Fetch:          fetch,
			CancelPrevious: src == SourceProfile,
		})
	}
	return specs
}

func TestGroupStartRunsImmediatelyAndRepeats(t *testing.T) {
	c := &collector{}
	g := NewGroup(testSpecs(func(context.Context, string) (any, error) { return "ok", nil }),
		staticToken("tok"), c.deliver)

	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer g.Stop()

	for _, src := range Sources {
		waitFor(t, string(src)+" first cycle", func() bool { return c.count(src) >= 1 })
	}
	waitFor(t, "repeated chat cycles", func() bool { return c.count(SourceChat) >= 3 })

	if !g.Running() {
		t.Error("expected group to be running")
	}
}

func TestGroupStopHaltsPollingAndAborts(t *testing.T) {
	var aborted atomic.Int32
	c := &collector{}
	g := NewGroup(testSpecs(func(ctx context.Context, _ string) (any, error) {
		select {
		case <-ctx.Done():
			aborted.Add(1)
			return nil, ctx.Err()
		case <-time.After(time.Hour):
			return nil, nil
		}
	}), staticToken("tok"), c.deliver)

	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "fetches in flight", func() bool { return g.Running() })
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		g.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return")
	}

	if aborted.Load() == 0 {
		t.Error("expected in-flight requests to be aborted")
	}
	if n := len(c.snapshot()); n != 0 {
		t.Errorf("expected no deliveries from aborted cycles, got %d", n)
	}
	if g.Running() {
		t.Error("expected group to be stopped")
	}
	g.Stop()
}

func TestGroupNoDeliveriesAfterStop(t *testing.T) {
	c := &collector{}
	g := NewGroup(testSpecs(func(context.Context, string) (any, error) { return 1, nil }),
		staticToken("tok"), c.deliver)
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "first cycle", func() bool { return len(c.snapshot()) > 0 })
	g.Stop()

	before := len(c.snapshot())
	time.Sleep(100 * time.Millisecond)
	if after := len(c.snapshot()); after != before {
		t.Errorf("deliveries after Stop: before %d, after %d", before, after)
	}
}

func TestGroupRefresh(t *testing.T) {
	c := &collector{}
	specs := []Spec{
		{Source: SourceProfile, Interval: time.Hour, Fetch: func(context.Context, string) (any, error) { return "p", nil }},
		{Source: SourceAgenda, Interval: time.Hour, Fetch: func(context.Context, string) (any, error) { return "a", nil }},
	}
	g := NewGroup(specs, staticToken("tok"), c.deliver)

	if err := g.Refresh(SourceProfile); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}

	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer g.Stop()
	waitFor(t, "immediate cycles", func() bool { return len(c.snapshot()) == 2 })

	if err := g.Refresh(SourceProfile, SourceAgenda); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	waitFor(t, "out-of-band cycles", func() bool { return len(c.snapshot()) == 4 })

	oob := 0
	for _, r := range c.snapshot() {
		if r.OutOfBand {
			oob++
			if r.Epoch != g.Epoch() {
				t.Errorf("epoch = %d, want %d", r.Epoch, g.Epoch())
			}
		}
	}
	if oob != 2 {
		t.Errorf("expected 2 out-of-band results, got %d", oob)
	}

	if err := g.Refresh(SourceChat); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestGroupRestartBumpsEpoch(t *testing.T) {
	g := NewGroup(testSpecs(func(context.Context, string) (any, error) { return nil, nil }),
		staticToken(""), func(Result) {})
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := g.Epoch()
	g.Stop()
	if err := g.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	defer g.Stop()
	if g.Epoch() != first+1 {
		t.Errorf("epoch = %d, want %d", g.Epoch(), first+1)
	}
}

func TestGroupRejectsZeroInterval(t *testing.T) {
	g := NewGroup([]Spec{{Source: SourceChat, Fetch: func(context.Context, string) (any, error) { return nil, nil }}},
		staticToken("tok"), func(Result) {})
	if err := g.Start(context.Background()); err == nil {
		g.Stop()
		t.Fatal("expected error for zero interval")
	}
	if g.Running() {
		t.Error("group should not be running")
	}
}

func TestIntervals(t *testing.T) {
	g := NewGroup(DefaultSpecs(nil), staticToken(""), func(Result) {})
	want := map[Source]time.Duration{
		SourceProfile:       15 * time.Second,
		SourceAgenda:        12 * time.Second,
		SourceChat:          7 * time.Second,
		SourceAnnouncements: 30 * time.Second,
		SourceSubmission:    18 * time.Second,
	}
	got := g.Intervals()
	for src, d := range want {
		if got[src] != d {
			t.Errorf("%s interval = %v, want %v", src, got[src], d)
		}
	}
}

func TestSetIntervals(t *testing.T) {
	g := NewGroup(DefaultSpecs(nil), staticToken(""), func(Result) {})
	g.SetIntervals(Intervals{Chat: 3 * time.Second, Agenda: -1})

	got := g.Intervals()
	if got[SourceChat] != 3*time.Second {
		t.Errorf("chat interval = %v", got[SourceChat])
	}
	if got[SourceAgenda] != DefaultAgendaInterval {
		t.Errorf("non-positive value should be ignored, agenda = %v", got[SourceAgenda])
	}
	if DefaultIntervals().For(SourceSubmission) != DefaultSubmissionInterval {
		t.Error("For(submission) mismatch")
	}
}
