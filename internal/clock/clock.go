// Package clock provides the 32-bit millisecond tick source shared by the
// scroll and quote engines.
//
// Ticks wrap around after roughly 49.7 days. Deadlines are therefore never
// compared with < or >; use Due, which interprets the difference between two
// ticks as a signed value and stays correct across a rollover as long as the
// two ticks are less than 2^31 ms apart.
package clock

import (
	"sync/atomic"
	"time"
)

// Tick is a monotonic millisecond counter that wraps at 2^32.
type Tick uint32

// Clock is a monotonic tick source.
type Clock interface {
	Now() Tick
}

// Due reports whether deadline has been reached at now.
func Due(now, deadline Tick) bool {
	return int32(now-deadline) >= 0
}

// After returns the tick d after t. Durations are truncated to milliseconds.
func After(t Tick, d time.Duration) Tick {
	return t + Tick(d.Milliseconds())
}

// Monotonic reads ticks from the process monotonic clock.
type Monotonic struct {
	start time.Time
}

func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) Now() Tick {
	return Tick(uint64(time.Since(m.start).Milliseconds()))
}

// Fake is a manually advanced clock for tests.
type Fake struct {
	now atomic.Uint32
}

func NewFake(start Tick) *Fake {
	f := &Fake{}
	f.now.Store(uint32(start))
	return f
}

func (f *Fake) Now() Tick {
	return Tick(f.now.Load())
}

// Advance moves the clock forward by d, wrapping like the real counter.
func (f *Fake) Advance(d time.Duration) {
	f.now.Add(uint32(d.Milliseconds()))
}

func (f *Fake) Set(t Tick) {
	f.now.Store(uint32(t))
}
