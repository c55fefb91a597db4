package playback

import "time"

// Timer is a pending fallback timer.
type Timer interface {
	Stop() bool
}

// Clock schedules fallback timers.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock uses the runtime timer.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
