package playback

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"deckchat/internal/slides"
)

type fakeTimer struct {
	clock   *fakeClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) pending() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs every pending timer, including ones that were stopped when stale is true.
func (c *fakeClock) fireAll(stale bool) {
	for _, t := range append([]*fakeTimer(nil), c.timers...) {
		if t.fired || (t.stopped && !stale) {
			continue
		}
		t.fired = true
		t.f()
	}
}

type fakeAudio struct {
	ref     string
	done    func(error)
	stopped bool
}

func (a *fakeAudio) Stop() { a.stopped = true }

type fakePlayer struct {
	started []*fakeAudio
	failOn  map[string]bool
}

func (p *fakePlayer) Play(ref string, done func(error)) (Audio, error) {
	if p.failOn[ref] {
		return nil, errors.New("cannot open " + ref)
	}
	a := &fakeAudio{ref: ref, done: done}
	p.started = append(p.started, a)
	return a, nil
}

func (p *fakePlayer) live() []*fakeAudio {
	var out []*fakeAudio
	for _, a := range p.started {
		if !a.stopped {
			out = append(out, a)
		}
	}
	return out
}

type harness struct {
	t      *testing.T
	clock  *fakeClock
	player *fakePlayer
	queue  []Event
	e      *Engine
}

func newHarness(t *testing.T) *harness {
	h := &harness{t: t, clock: &fakeClock{}, player: &fakePlayer{failOn: map[string]bool{}}}
	h.e = New(func(ev Event) { h.queue = append(h.queue, ev) },
		WithClock(h.clock), WithPlayer(h.player), WithFallback(5*time.Second))
	return h
}

// drain feeds posted completions back into the engine.
func (h *harness) drain() {
	for len(h.queue) > 0 {
		ev := h.queue[0]
		h.queue = h.queue[1:]
		h.e.Dispatch(ev)
	}
	h.checkInvariant()
}

func (h *harness) do(kind EventKind) {
	h.e.Dispatch(Event{Kind: kind})
	h.checkInvariant()
}

func (h *harness) checkInvariant() {
	h.t.Helper()
	live, pending := len(h.player.live()), len(h.clock.pending())
	if live > 1 || pending > 1 {
		h.t.Fatalf("live audio=%d pending timers=%d, want at most one each", live, pending)
	}
	if h.e.ActiveAudio() != live || h.e.PendingTimers() != pending {
		h.t.Fatalf("engine reports audio=%d timers=%d, actual %d and %d", h.e.ActiveAudio(), h.e.PendingTimers(), live, pending)
	}
	if h.e.State() != Playing && (live != 0 || pending != 0) {
		h.t.Fatalf("state=%v holds audio=%d timers=%d", h.e.State(), live, pending)
	}
}

// expect checks the engine's state and slide index.
func (h *harness) expect(state State, index int) {
	h.t.Helper()
	if got := h.e.State(); got != state {
		h.t.Fatalf("state=%v, want %v", got, state)
	}
	if got := h.e.Index(); got != index {
		h.t.Fatalf("index=%d, want %d", got, index)
	}
}

// expectResources checks the live audio and pending timer counts.
func (h *harness) expectResources(audio, timers int) {
	h.t.Helper()
	if got := h.e.ActiveAudio(); got != audio {
		h.t.Fatalf("active audio=%d, want %d", got, audio)
	}
	if got := h.e.PendingTimers(); got != timers {
		h.t.Fatalf("pending timers=%d, want %d", got, timers)
	}
}

func (h *harness) open(audio ...string) {
	n := 3
	if len(audio) > n {
		n = len(audio)
	}
	markup := ""
	for i := 0; i < n; i++ {
		markup += "<section>s</section>"
	}
	h.e.Dispatch(Event{Kind: EventOpen, Slides: slides.Parse(markup, audio)})
	h.checkInvariant()
}

func (h *harness) endAudio() {
	h.t.Helper()
	live := h.player.live()
	if len(live) != 1 {
		h.t.Fatalf("live audio=%d, want 1", len(live))
	}
	live[0].done(nil)
	h.drain()
}

func TestOpenEmptyIsIdleAndInert(t *testing.T) {
	h := newHarness(t)
	h.e.Dispatch(Event{Kind: EventOpen})
	h.expect(Idle, 0)
	if h.e.Len() != 0 {
		t.Fatalf("len=%d, want 0", h.e.Len())
	}
	for _, k := range []EventKind{EventNext, EventPrev, EventToggle, EventTimerFired, EventAudioEnded} {
		h.do(k)
		if h.e.State() != Idle || h.e.Index() != 0 {
			t.Fatalf("%s moved an empty deck: state=%v index=%d", k, h.e.State(), h.e.Index())
		}
	}
	if len(h.clock.timers) != 0 {
		t.Fatalf("timers=%d, want 0", len(h.clock.timers))
	}
}

func TestOpenStartsPausedAtZero(t *testing.T) {
	h := newHarness(t)
	h.open()
	snap := h.e.Snapshot()
	if snap.State != Paused || snap.Index != 0 || snap.Count != 3 {
		t.Fatalf("snapshot=%+v, want paused at 0 of 3", snap)
	}
}

func TestManualNavigationWhilePausedClamps(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.do(EventPrev)
	h.expect(Paused, 0)
	h.do(EventNext)
	h.do(EventNext)
	h.do(EventNext)
	h.expect(Paused, 2)
	h.do(EventPrev)
	h.expect(Paused, 1)
	if len(h.clock.timers) != 0 || len(h.player.started) != 0 {
		t.Fatalf("paused navigation started timers=%d audio=%d", len(h.clock.timers), len(h.player.started))
	}
}

func TestTimerDrivenPlaybackStopsAtLast(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.do(EventToggle)
	h.expect(Playing, 0)
	pending := h.clock.pending()
	if len(pending) != 1 || pending[0].d != 5*time.Second {
		t.Fatalf("pending timers=%d, want one 5s timer", len(pending))
	}

	h.clock.fireAll(false)
	h.drain()
	h.expect(Playing, 1)

	h.clock.fireAll(false)
	h.drain()
	h.expect(Paused, 2)
	h.expectResources(0, 0)

	// playback must not loop
	h.clock.fireAll(true)
	h.drain()
	h.expect(Paused, 2)
}

func TestToggleAtLastRewinds(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.do(EventNext)
	h.do(EventNext)
	h.do(EventToggle)
	h.expect(Playing, 0)
	h.do(EventToggle)
	h.expect(Paused, 0)
	h.expectResources(0, 0)
}

func TestAudioDrivenAdvance(t *testing.T) {
	h := newHarness(t)
	h.open("a.mp3", "b.mp3", "c.mp3")
	h.do(EventToggle)
	if len(h.player.started) != 1 || h.player.started[0].ref != "a.mp3" {
		t.Fatalf("started=%d, want a.mp3 only", len(h.player.started))
	}
	h.expectResources(1, 0)
	if !h.e.Snapshot().Audible {
		t.Fatal("snapshot not audible while audio plays")
	}

	h.endAudio()
	h.expect(Playing, 1)
	if len(h.player.started) != 2 || h.player.started[1].ref != "b.mp3" {
		t.Fatalf("second clip not started: %d", len(h.player.started))
	}

	h.endAudio()
	h.expect(Paused, 2)
	h.expectResources(0, 0)
}

func TestAudioStartFailureFallsBackToTimer(t *testing.T) {
	h := newHarness(t)
	h.player.failOn["bad.mp3"] = true
	h.open("bad.mp3", "b.mp3")
	h.do(EventToggle)
	h.expect(Playing, 0)
	h.expectResources(0, 1)

	h.clock.fireAll(false)
	h.drain()
	h.expect(Playing, 1)
	h.expectResources(1, 0)
}

func TestAudioFailureMidwayFallsBackToTimer(t *testing.T) {
	h := newHarness(t)
	h.open("a.mp3", "b.mp3", "c.mp3")
	h.do(EventToggle)
	h.player.started[0].done(errors.New("decoder died"))
	h.drain()
	h.expect(Playing, 0)
	h.expectResources(0, 1)
}

func TestManualActionsCancelResources(t *testing.T) {
	h := newHarness(t)
	h.open("a.mp3", "", "c.mp3", "d.mp3")
	h.do(EventToggle)
	first := h.player.started[0]

	h.do(EventNext)
	if !first.stopped {
		t.Fatal("audio kept playing after next")
	}
	h.expect(Playing, 1)
	h.expectResources(0, 1)

	h.do(EventPrev)
	h.expect(Playing, 0)
	h.expectResources(1, 0)

	// completions from the torn-down resources are ignored
	first.done(nil)
	h.clock.fireAll(true)
	h.drain()
	h.expect(Playing, 0)
}

func TestCloseReleasesEverything(t *testing.T) {
	h := newHarness(t)
	h.open("a.mp3")
	h.do(EventToggle)
	h.expectResources(1, 0)

	h.do(EventClose)
	h.expect(Idle, 0)
	h.expectResources(0, 0)
	if h.e.Len() != 0 || len(h.player.live()) != 0 {
		t.Fatalf("len=%d live=%d after close", h.e.Len(), len(h.player.live()))
	}

	h.player.started[0].done(nil)
	h.drain()
	h.expect(Idle, 0)
}

func TestReopenResetsToFirstSlide(t *testing.T) {
	h := newHarness(t)
	h.open()
	h.do(EventToggle)
	h.clock.fireAll(false)
	h.drain()
	h.expect(Playing, 1)

	h.open("x.mp3", "y.mp3")
	h.expect(Paused, 0)
	h.expectResources(0, 0)
}

func TestRandomEventsKeepSingleResource(t *testing.T) {
	h := newHarness(t)
	h.player.failOn["c.mp3"] = true
	h.open("a.mp3", "", "c.mp3", "d.mp3", "")
	kinds := []EventKind{EventToggle, EventNext, EventPrev, EventToggle, EventNext, EventNext}
	for i := 0; i < 200; i++ {
		switch i % 5 {
		case 0, 1:
			h.do(kinds[(i*7)%len(kinds)])
		case 2:
			h.clock.fireAll(i%2 == 0)
			h.drain()
		case 3:
			if live := h.player.live(); len(live) == 1 {
				live[0].done(nil)
				h.drain()
			}
		case 4:
			if i%20 == 4 {
				h.open("a.mp3", "", "c.mp3", "d.mp3", "")
			}
		}
		if idx := h.e.Index(); idx < 0 || idx >= h.e.Len() {
			t.Fatalf("step %d: index %d out of range [0,%d)", i, idx, h.e.Len())
		}
	}
	h.do(EventClose)
	h.expectResources(0, 0)
}

func TestNopPlayerFallsBack(t *testing.T) {
	clock := &fakeClock{}
	e := New(nil, WithClock(clock))
	e.Dispatch(Event{Kind: EventOpen, Slides: slides.Parse("<section>a</section><section>b</section>", []string{"a.mp3"})})
	e.Dispatch(Event{Kind: EventToggle})
	if e.PendingTimers() != 1 {
		t.Fatalf("pending timers=%d, want 1", e.PendingTimers())
	}
	if d := clock.pending()[0].d; d != DefaultFallback {
		t.Fatalf("fallback=%v, want %v", d, DefaultFallback)
	}
}

func writeClip(t *testing.T) string {
	t.Helper()
	ref := filepath.Join(t.TempDir(), "slide-01.mp3")
	if err := os.WriteFile(ref, []byte("x"), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return ref
}

func TestExecPlayerRunsCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell builtin")
	}
	ref := writeClip(t)

	p, err := NewExecPlayer([]string{"true"})
	if err != nil {
		t.Fatalf("NewExecPlayer: %v", err)
	}
	done := make(chan error, 1)
	if _, err := p.Play(ref, func(err error) { done <- err }); err != nil {
		t.Fatalf("Play: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("done err=%v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("player never finished")
	}

	if _, err := p.Play(filepath.Join(t.TempDir(), "missing.mp3"), func(error) {}); err == nil {
		t.Fatal("expected an error for a missing clip")
	}
}

func TestExecPlayerStopSuppressesDone(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sleep")
	}
	ref := writeClip(t)

	p, err := NewExecPlayer([]string{"sh", "-c", "sleep 30"})
	if err != nil {
		t.Fatalf("NewExecPlayer: %v", err)
	}
	called := make(chan struct{}, 1)
	a, err := p.Play(ref, func(error) { called <- struct{}{} })
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	a.Stop()
	select {
	case <-called:
		t.Fatal("done must not run after Stop")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestNewExecPlayerUnknownCommand(t *testing.T) {
	if _, err := NewExecPlayer([]string{"deckchat-no-such-player"}); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}
