// ticksource.go - Virtual-time tick engine driving the counter devices

/*
ticksource.go - Tick Sources and the Virtual Clock

The timers in this machine do not count host time. They count ticks of a
virtual clock the machine advances from its run loop: one nanosecond
counter, and a set of tick sources that each fire a registered callback at
a programmed frequency while running.

A TickSource exposes the handle the timer device programs:

    SetFrequency(hz)       effective tick rate
    SetReload(ticks)       reload value (0 = free-running)
    Start(continuous)      begin ticking; one-shot when continuous is false
    Stop()                 stop ticking; phase is preserved

Advance(d) moves virtual time forward by d, firing every due callback in
chronological order across all sources. Callbacks run on the caller's
goroutine and must not block; a callback may start, stop or reprogram any
source, including its own. This is the cooperative single-thread model:
ticks interleave with CPU-issued MMIO only at Advance boundaries.

License: GPLv3 or later
*/

package main

import "time"

// VirtualClock owns virtual time and the tick sources attached to it.
// Not safe for concurrent use; the machine serializes access.
type VirtualClock struct {
	nowNs   uint64
	sources []*TickSource
}

func NewVirtualClock() *VirtualClock {
	return &VirtualClock{}
}

// Now returns the current virtual time.
func (c *VirtualClock) Now() time.Duration {
	return time.Duration(c.nowNs)
}

// NewTickSource attaches a stopped source with no frequency programmed.
func (c *VirtualClock) NewTickSource(cb func()) *TickSource {
	ts := &TickSource{clock: c, cb: cb}
	c.sources = append(c.sources, ts)
	return ts
}

// Advance moves virtual time forward by d, invoking due callbacks in
// chronological order. Sources that share a due time fire in attach order.
func (c *VirtualClock) Advance(d time.Duration) {
	target := c.nowNs + uint64(d)
	for {
		var next *TickSource
		for _, ts := range c.sources {
			if !ts.running || ts.periodNs == 0 || ts.nextNs > target {
				continue
			}
			if next == nil || ts.nextNs < next.nextNs {
				next = ts
			}
		}
		if next == nil {
			break
		}
		c.nowNs = next.nextNs
		next.nextNs += next.periodNs
		if !next.continuous {
			next.running = false
		}
		next.cb()
	}
	c.nowNs = target
}

// TickSource fires its callback at a programmed frequency while running.
type TickSource struct {
	clock      *VirtualClock
	cb         func()
	freqHz     uint32
	reload     uint32
	periodNs   uint64
	nextNs     uint64
	running    bool
	continuous bool
}

// SetFrequency programs the tick rate. Takes effect on the next Start or
// immediately if the source is running.
func (ts *TickSource) SetFrequency(hz uint32) {
	ts.freqHz = hz
	if hz == 0 {
		ts.periodNs = 0
		return
	}
	ts.periodNs = uint64(time.Second) / uint64(hz)
	if ts.running {
		ts.nextNs = ts.clock.nowNs + ts.periodNs
	}
}

// SetReload records the reload value. Zero means free-running.
func (ts *TickSource) SetReload(ticks uint32) {
	ts.reload = ticks
}

// Reload returns the programmed reload value.
func (ts *TickSource) Reload() uint32 {
	return ts.reload
}

// Start begins ticking. The first callback fires one period from now; a
// stopped-then-started source does not accumulate elapsed time.
func (ts *TickSource) Start(continuous bool) {
	ts.continuous = continuous
	ts.running = true
	ts.nextNs = ts.clock.nowNs + ts.periodNs
}

// Stop halts the source. The callback will not fire again until Start.
func (ts *TickSource) Stop() {
	ts.running = false
}

// Running reports whether the source is ticking.
func (ts *TickSource) Running() bool {
	return ts.running
}

// Tick invokes the callback n times immediately, outside virtual time.
// Used by tests and the monitor to step a counter deterministically.
func (ts *TickSource) Tick(n int) {
	for i := 0; i < n; i++ {
		ts.cb()
	}
}
