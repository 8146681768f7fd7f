package main

import "testing"

// fakeIRQ records the transitions a device drives on its interrupt line.
type fakeIRQ struct {
	pulses int
	lowers int
	raised bool
}

func (f *fakeIRQ) Raise() { f.raised = true }
func (f *fakeIRQ) Lower() { f.raised = false; f.lowers++ }
func (f *fakeIRQ) Pulse() { f.pulses++ }

func newTestTimer() (*NRF51Timer, *fakeIRQ) {
	irq := &fakeIRQ{}
	clock := NewVirtualClock()
	return NewNRF51Timer("nrf51_timer0", irq, clock), irq
}

func timerWrite(t *NRF51Timer, offset, value uint32) {
	t.Write(offset, 4, value)
}

// TestTimerBasicCompare runs the channel-0 compare scenario: prescaler 4,
// 16-bit counter, CC0=0x000A. The 10th tick matches, pulses once and
// bumps COMPARE0; the 11th tick does not.
func TestTimerBasicCompare(t *testing.T) {
	tm, irq := newTestTimer()

	timerWrite(tm, NRF51_TIMER_PRESCALER, 4)
	timerWrite(tm, NRF51_TIMER_BITMODE, 0)
	timerWrite(tm, NRF51_TIMER_CC0, 0x000A)
	timerWrite(tm, NRF51_TIMER_INTENSET, 0x00010000)
	timerWrite(tm, NRF51_TIMER_MODE, 0)
	timerWrite(tm, NRF51_TIMER_START, 1)

	if got := tm.freq; got != 16000000>>4 {
		t.Fatalf("Effective frequency %d, expected %d", got, 16000000>>4)
	}

	tm.TickSource().Tick(10)
	if irq.pulses != 1 {
		t.Fatalf("Expected 1 IRQ pulse after 10 ticks, got %d", irq.pulses)
	}
	if got := tm.Read(NRF51_TIMER_COMPARE0, 4); got != 1 {
		t.Fatalf("COMPARE0 = %d, expected 1", got)
	}

	tm.TickSource().Tick(1)
	if got := tm.InternalCounter(); got != 0x000B {
		t.Fatalf("Internal counter 0x%04X, expected 0x000B", got)
	}
	if irq.pulses != 1 {
		t.Fatalf("Expected no further pulse at tick 11, got %d total", irq.pulses)
	}
}

// TestTimerCounterMode verifies counter mode: the counter wraps to zero
// with one pulse when it reaches COUNT.
func TestTimerCounterMode(t *testing.T) {
	tm, irq := newTestTimer()

	timerWrite(tm, NRF51_TIMER_MODE, 1)
	timerWrite(tm, NRF51_TIMER_COUNT, 0x5)
	timerWrite(tm, NRF51_TIMER_START, 1)

	tm.TickSource().Tick(4)
	if irq.pulses != 0 {
		t.Fatalf("Pulsed before reaching COUNT: %d", irq.pulses)
	}
	tm.TickSource().Tick(1)
	if irq.pulses != 1 {
		t.Fatalf("Expected 1 pulse at COUNT, got %d", irq.pulses)
	}
	if got := tm.InternalCounter(); got != 0 {
		t.Fatalf("Counter did not wrap, got 0x%X", got)
	}
}

// TestTimerCountWriteDoesNotResetCounter pins the reload-only semantics
// of COUNT writes in counter mode.
func TestTimerCountWriteDoesNotResetCounter(t *testing.T) {
	tm, _ := newTestTimer()

	timerWrite(tm, NRF51_TIMER_MODE, 1)
	timerWrite(tm, NRF51_TIMER_COUNT, 0x10)
	timerWrite(tm, NRF51_TIMER_START, 1)
	tm.TickSource().Tick(3)

	timerWrite(tm, NRF51_TIMER_COUNT, 0x20)
	if got := tm.InternalCounter(); got != 3 {
		t.Fatalf("COUNT write reset the counter: 0x%X", got)
	}
	if got := tm.Read(NRF51_TIMER_COUNT, 4); got != 0x20 {
		t.Fatalf("COUNT = 0x%X, expected 0x20", got)
	}
}

// TestTimerBitmodeWrap verifies that an 8-bit counter can never match a
// CC value above its limit mask.
func TestTimerBitmodeWrap(t *testing.T) {
	tm, irq := newTestTimer()

	timerWrite(tm, NRF51_TIMER_BITMODE, 1)
	timerWrite(tm, NRF51_TIMER_CC0, 0x100)
	timerWrite(tm, NRF51_TIMER_INTENSET, 0x00010000)
	timerWrite(tm, NRF51_TIMER_START, 1)

	for i := 0; i < 600; i++ {
		tm.TickSource().Tick(1)
		if got := tm.InternalCounter(); got > 0xFF {
			t.Fatalf("8-bit counter exceeded limit mask: 0x%X", got)
		}
	}
	if irq.pulses != 0 {
		t.Fatalf("Channel 0 fired %d times, CC0 is beyond the wrap", irq.pulses)
	}
}

// TestTimerLimitMasks verifies every bitmode's derived mask.
func TestTimerLimitMasks(t *testing.T) {
	masks := map[uint32]uint32{
		0: 0xffff,
		1: 0xff,
		2: 0xffffff,
		3: 0xffffffff,
	}
	for bitmode, want := range masks {
		tm, _ := newTestTimer()
		timerWrite(tm, NRF51_TIMER_BITMODE, bitmode)
		timerWrite(tm, NRF51_TIMER_START, 1)
		if tm.limitMask != want {
			t.Fatalf("Bitmode %d: limit mask 0x%08X, expected 0x%08X", bitmode, tm.limitMask, want)
		}
	}
}

// TestTimerCompareMonotonic verifies one pulse and one COMPARE increment
// per match across several wraps of an 8-bit counter.
func TestTimerCompareMonotonic(t *testing.T) {
	tm, irq := newTestTimer()

	timerWrite(tm, NRF51_TIMER_BITMODE, 1)
	timerWrite(tm, NRF51_TIMER_CC0, 0x40)
	timerWrite(tm, NRF51_TIMER_INTENSET, 0x00010000)
	timerWrite(tm, NRF51_TIMER_START, 1)

	last := uint32(0)
	for wrap := 0; wrap < 3; wrap++ {
		tm.TickSource().Tick(256)
		got := tm.Read(NRF51_TIMER_COMPARE0, 4)
		if got != last+1 {
			t.Fatalf("COMPARE0 after wrap %d = %d, expected %d", wrap, got, last+1)
		}
		last = got
	}
	if irq.pulses != 3 {
		t.Fatalf("Expected 3 pulses over 3 wraps, got %d", irq.pulses)
	}
}

// TestTimerStopStartResumes verifies the pulsed flag: a stop/start pair
// keeps the counter where it was instead of reloading.
func TestTimerStopStartResumes(t *testing.T) {
	tm, _ := newTestTimer()

	timerWrite(tm, NRF51_TIMER_START, 1)
	tm.TickSource().Tick(7)
	timerWrite(tm, NRF51_TIMER_STOP, 1)
	if !tm.pulsed {
		t.Fatalf("STOP did not set pulsed")
	}
	if tm.TickSource().Running() {
		t.Fatalf("Tick source still running after STOP")
	}

	timerWrite(tm, NRF51_TIMER_START, 1)
	if tm.pulsed {
		t.Fatalf("START did not consume pulsed")
	}
	if got := tm.InternalCounter(); got != 7 {
		t.Fatalf("Resume lost the counter: 0x%X", got)
	}
}

// TestTimerClearAndShutdown verifies the counter-zeroing writes.
func TestTimerClearAndShutdown(t *testing.T) {
	tm, _ := newTestTimer()

	timerWrite(tm, NRF51_TIMER_START, 1)
	tm.TickSource().Tick(5)
	timerWrite(tm, NRF51_TIMER_CLEAR, 1)
	if got := tm.InternalCounter(); got != 0 {
		t.Fatalf("CLEAR left counter at 0x%X", got)
	}
	if !tm.TickSource().Running() {
		t.Fatalf("CLEAR stopped the tick source")
	}

	tm.TickSource().Tick(5)
	timerWrite(tm, NRF51_TIMER_STOP, 1)
	timerWrite(tm, NRF51_TIMER_SHUTDOWN, 1)
	if got := tm.InternalCounter(); got != 0 {
		t.Fatalf("SHUTDOWN left counter at 0x%X", got)
	}
	if tm.pulsed {
		t.Fatalf("SHUTDOWN left pulsed set")
	}
	if tm.TickSource().Running() {
		t.Fatalf("SHUTDOWN left the tick source running")
	}
}

// TestTimerCaptureCopiesCounter verifies that a CAPTURE trigger snapshots
// the running counter into the channel's CC register.
func TestTimerCaptureCopiesCounter(t *testing.T) {
	tm, _ := newTestTimer()

	timerWrite(tm, NRF51_TIMER_START, 1)
	tm.TickSource().Tick(0x2A)
	timerWrite(tm, NRF51_TIMER_CAPTURE2, 1)
	if got := tm.Read(NRF51_TIMER_CC2, 4); got != 0x2A {
		t.Fatalf("CC2 after capture = 0x%X, expected 0x2A", got)
	}
}

// TestTimerRegisterRoundTrip verifies the masked write/read-back of the
// configuration registers.
func TestTimerRegisterRoundTrip(t *testing.T) {
	tm, _ := newTestTimer()

	timerWrite(tm, NRF51_TIMER_CC1, 0xDEADBEEF)
	if got := tm.Read(NRF51_TIMER_CC1, 4); got != 0xDEADBEEF {
		t.Fatalf("CC1 = 0x%08X, expected 0xDEADBEEF", got)
	}
	timerWrite(tm, NRF51_TIMER_COMPARE3, 0x1234)
	if got := tm.Read(NRF51_TIMER_COMPARE3, 4); got != 0x1234 {
		t.Fatalf("COMPARE3 = 0x%X, expected 0x1234", got)
	}
	timerWrite(tm, NRF51_TIMER_MODE, 0xFF)
	if got := tm.Read(NRF51_TIMER_MODE, 4); got != 1 {
		t.Fatalf("MODE = %d, expected masked value 1", got)
	}
	timerWrite(tm, NRF51_TIMER_BITMODE, 0x7)
	if got := tm.Read(NRF51_TIMER_BITMODE, 4); got != 3 {
		t.Fatalf("BITMODE = %d, expected masked value 3", got)
	}
	timerWrite(tm, NRF51_TIMER_PRESCALER, 0x1F)
	if got := tm.Read(NRF51_TIMER_PRESCALER, 4); got != 0xF {
		t.Fatalf("PRESCALER = %d, expected masked value 0xF", got)
	}
}

// TestTimerInten verifies INTENSET/INTENCLR take channel bits from the
// high halfword and that reads report unimplemented.
func TestTimerInten(t *testing.T) {
	tm, _ := newTestTimer()

	timerWrite(tm, NRF51_TIMER_INTENSET, 0x000F0000)
	if tm.inten != 0xF {
		t.Fatalf("inten = 0x%X after INTENSET, expected 0xF", tm.inten)
	}
	timerWrite(tm, NRF51_TIMER_INTENCLR, 0x00050000)
	if tm.inten != 0xA {
		t.Fatalf("inten = 0x%X after INTENCLR, expected 0xA", tm.inten)
	}
	if got := tm.Read(NRF51_TIMER_INTENSET, 4); got != 0 {
		t.Fatalf("INTENSET read = 0x%X, expected 0", got)
	}
}

// TestTimerBadOffset verifies the guest-error path returns zero and
// drops the write.
func TestTimerBadOffset(t *testing.T) {
	tm, _ := newTestTimer()
	timerWrite(tm, 0xF00, 0x1234)
	if got := tm.Read(0xF00, 4); got != 0 {
		t.Fatalf("Bad offset read = 0x%X, expected 0", got)
	}
}

// TestTimerReset verifies the timer returns to power-on defaults.
func TestTimerReset(t *testing.T) {
	tm, _ := newTestTimer()

	timerWrite(tm, NRF51_TIMER_PRESCALER, 3)
	timerWrite(tm, NRF51_TIMER_CC0, 0x55)
	timerWrite(tm, NRF51_TIMER_START, 1)
	tm.TickSource().Tick(9)

	tm.Reset()
	if tm.InternalCounter() != 0 || tm.Read(NRF51_TIMER_CC0, 4) != 0 ||
		tm.Read(NRF51_TIMER_PRESCALER, 4) != 0 {
		t.Fatalf("Reset left state behind")
	}
	if tm.TickSource().Running() {
		t.Fatalf("Reset left the tick source running")
	}
}
