// Package playback drives an open presentation: the current slide, play/pause, and the single
// narration or fallback timer that advances it.
package playback

import (
	"time"

	"deckchat/internal/logging"
	"deckchat/internal/slides"
)

// DefaultFallback is how long a slide without usable narration stays up while playing.
const DefaultFallback = 5 * time.Second

// State is the engine's play state.
type State int

const (
	Idle State = iota
	Paused
	Playing
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	default:
		return "idle"
	}
}

// EventKind names an engine input.
type EventKind int

const (
	EventOpen EventKind = iota
	EventClose
	EventNext
	EventPrev
	EventToggle
	EventAudioEnded
	EventAudioFailed
	EventTimerFired
)

func (k EventKind) String() string {
	switch k {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventNext:
		return "next"
	case EventPrev:
		return "prev"
	case EventToggle:
		return "toggle"
	case EventAudioEnded:
		return "audio_ended"
	case EventAudioFailed:
		return "audio_failed"
	case EventTimerFired:
		return "timer_fired"
	default:
		return "unknown"
	}
}

// Event is one engine input. Slides is used by EventOpen. Gen ties audio and timer
// completions to the resource that produced them; completions from torn-down resources
// are ignored.
type Event struct {
	Kind   EventKind
	Slides []slides.Slide
	Gen    uint64
}

// Snapshot is a read-only view of the engine for rendering.
type Snapshot struct {
	State   State
	Index   int
	Count   int
	Slide   slides.Slide
	Audible bool
}

// Engine is the playback state machine. All state changes go through Dispatch, which must
// be called from one goroutine. Audio and timer completions are handed to the post sink
// as events; the owner feeds them back into Dispatch on that goroutine.
type Engine struct {
	clock    Clock
	player   Player
	fallback time.Duration
	post     func(Event)

	slides []slides.Slide
	index  int
	state  State

	gen   uint64
	audio Audio
	timer Timer
}

// Option configures an Engine.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithPlayer(p Player) Option {
	return func(e *Engine) { e.player = p }
}

// WithFallback sets the per-slide timer used when there is no narration. Non-positive
// values keep the default.
func WithFallback(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.fallback = d
		}
	}
}

// New creates an idle engine. post receives completion events from audio and timers.
func New(post func(Event), opts ...Option) *Engine {
	e := &Engine{
		clock:    RealClock{},
		player:   NopPlayer{},
		fallback: DefaultFallback,
		post:     post,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.post == nil {
		e.post = func(Event) {}
	}
	return e
}

// Dispatch applies one event.
func (e *Engine) Dispatch(ev Event) {
	switch ev.Kind {
	case EventOpen:
		e.teardown()
		e.slides = append([]slides.Slide(nil), ev.Slides...)
		e.index = 0
		e.state = Idle
		if len(e.slides) > 0 {
			e.state = Paused
		}
	case EventClose:
		e.teardown()
		e.slides = nil
		e.index = 0
		e.state = Idle
	case EventNext:
		if e.state == Idle || e.index >= e.last() {
			return
		}
		e.teardown()
		e.moveTo(e.index + 1)
	case EventPrev:
		if e.state == Idle || e.index == 0 {
			return
		}
		e.teardown()
		e.moveTo(e.index - 1)
	case EventToggle:
		e.toggle()
	case EventAudioEnded, EventTimerFired:
		if !e.current(ev.Gen) {
			return
		}
		e.teardown()
		if e.index >= e.last() {
			e.state = Paused
			return
		}
		e.moveTo(e.index + 1)
	case EventAudioFailed:
		if !e.current(ev.Gen) {
			return
		}
		logging.Debug().Int("slide", e.index).Msg("narration failed, using timer")
		e.teardown()
		e.startTimer()
	}
}

func (e *Engine) toggle() {
	switch e.state {
	case Paused:
		if e.index >= e.last() {
			e.index = 0
		}
		e.state = Playing
		e.schedule()
	case Playing:
		e.teardown()
		e.state = Paused
	}
}

// moveTo changes slide keeping the play state. Reaching the last slide while playing
// pauses there; playback never wraps around.
func (e *Engine) moveTo(i int) {
	e.index = i
	if e.state != Playing {
		return
	}
	if e.index >= e.last() {
		e.state = Paused
		return
	}
	e.schedule()
}

// schedule starts the advancement resource for the current slide.
func (e *Engine) schedule() {
	e.teardown()
	s := e.slides[e.index]
	if !s.HasAudio() {
		e.startTimer()
		return
	}
	gen := e.gen
	audio, err := e.player.Play(s.Audio, func(err error) {
		if err != nil {
			e.post(Event{Kind: EventAudioFailed, Gen: gen})
			return
		}
		e.post(Event{Kind: EventAudioEnded, Gen: gen})
	})
	if err != nil {
		logging.Debug().Err(err).Str("audio", s.Audio).Msg("narration did not start")
		e.startTimer()
		return
	}
	e.audio = audio
}

func (e *Engine) startTimer() {
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.fallback, func() {
		e.post(Event{Kind: EventTimerFired, Gen: gen})
	})
}

// teardown releases the audio resource and timer and invalidates their completions.
func (e *Engine) teardown() {
	e.gen++
	if e.audio != nil {
		e.audio.Stop()
		e.audio = nil
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Engine) current(gen uint64) bool {
	return e.state == Playing && gen == e.gen
}

func (e *Engine) last() int {
	return len(e.slides) - 1
}

// State returns the play state.
func (e *Engine) State() State { return e.state }

// Index returns the current slide index; zero when nothing is open.
func (e *Engine) Index() int { return e.index }

// Len returns the number of open slides.
func (e *Engine) Len() int { return len(e.slides) }

// ActiveAudio reports how many audio resources are live (0 or 1).
func (e *Engine) ActiveAudio() int {
	if e.audio != nil {
		return 1
	}
	return 0
}

// PendingTimers reports how many fallback timers are pending (0 or 1).
func (e *Engine) PendingTimers() int {
	if e.timer != nil {
		return 1
	}
	return 0
}

// Snapshot describes the engine for rendering.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{State: e.state, Index: e.index, Count: len(e.slides), Audible: e.audio != nil}
	if e.index < len(e.slides) {
		snap.Slide = e.slides[e.index]
	}
	return snap
}
