// nrf51_timer.go - nRF51822 TIMER peripheral

/*
nrf51_timer.go - TIMER/COUNTER Peripheral

Implements the nRF51822 TIMER peripheral with respect to the reference
manual: a 32-bit internal counter behind a prescaled 16MHz tick source,
four compare/capture channels, and an interrupt line shared by all
channels. The machine instantiates three of these at TIMER0/1/2.

    freq = 16MHz / (2 ^ prescaler)
    0 <= prescaler <= 9
    i.e:
      16MHz  <= freq <= 32KHz
      62.5ns <= tick <= 31.25us

The counter width is set by BITMODE (16/8/24/32 bits); the derived limit
mask is applied on every tick, so the counter can never exceed it. In
timer mode each interrupt-enabled channel whose CC value matches the
counter increments its COMPARE event latch and pulses the IRQ line. In
counter mode a match against COUNT wraps the counter to zero and pulses.

STOP remembers that it ran (pulsed); the next START resumes instead of
reloading the tick source, so a stop/start pair does not lose phase.
SHUTDOWN clears that memory and the counter.

SHORTS is not modeled. A COUNT write in counter mode changes the reload
value but never resets the running counter.

License: GPLv3 or later
*/

package main

// Timer register offsets.
const (
	NRF51_TIMER_START     = 0x000
	NRF51_TIMER_STOP      = 0x004
	NRF51_TIMER_COUNT     = 0x008
	NRF51_TIMER_CLEAR     = 0x00C
	NRF51_TIMER_SHUTDOWN  = 0x010
	NRF51_TIMER_CAPTURE0  = 0x040
	NRF51_TIMER_CAPTURE1  = 0x044
	NRF51_TIMER_CAPTURE2  = 0x048
	NRF51_TIMER_CAPTURE3  = 0x04C
	NRF51_TIMER_COMPARE0  = 0x140
	NRF51_TIMER_COMPARE1  = 0x144
	NRF51_TIMER_COMPARE2  = 0x148
	NRF51_TIMER_COMPARE3  = 0x14C
	NRF51_TIMER_SHORTS    = 0x200
	NRF51_TIMER_INTENSET  = 0x304
	NRF51_TIMER_INTENCLR  = 0x308
	NRF51_TIMER_MODE      = 0x504
	NRF51_TIMER_BITMODE   = 0x508
	NRF51_TIMER_PRESCALER = 0x510
	NRF51_TIMER_CC0       = 0x540
	NRF51_TIMER_CC1       = 0x544
	NRF51_TIMER_CC2       = 0x548
	NRF51_TIMER_CC3       = 0x54C
)

const (
	NRF51_TIMER_BASE_FREQ = 0x01000000 // 16MHz

	TIMER_MODE_TIMER   = 0
	TIMER_MODE_COUNTER = 1
)

// NRF51Timer is one TIMER instance.
type NRF51Timer struct {
	name  string
	irq   IRQLine
	timer *TickSource

	pulsed    bool
	inten     uint32
	limitMask uint32
	freq      uint32

	// Register shadows.
	start     uint32
	stop      uint32
	count     uint32
	clear     uint32
	shutdown  uint32
	capture   [4]uint32
	compare   [4]uint32
	shorts    uint32
	mode      uint32
	bitmode   uint32
	prescaler uint32
	cc        [4]uint32

	internalCounter uint32
}

// NewNRF51Timer creates a timer instance and acquires its tick source from
// the clock. name distinguishes the three instances in logs and snapshots.
func NewNRF51Timer(name string, irq IRQLine, clock *VirtualClock) *NRF51Timer {
	if irq == nil {
		irq = NewDetachedIRQLine()
	}
	t := &NRF51Timer{name: name, irq: irq, freq: NRF51_TIMER_BASE_FREQ}
	t.timer = clock.NewTickSource(t.tick)
	return t
}

func (t *NRF51Timer) DeviceName() string { return t.name }

// TickSource exposes the underlying tick source to the machine and tests.
func (t *NRF51Timer) TickSource() *TickSource { return t.timer }

// InternalCounter exposes the running counter for capture-style probes.
func (t *NRF51Timer) InternalCounter() uint32 { return t.internalCounter }

func (t *NRF51Timer) Read(offset uint32, size int) uint32 {
	switch offset {
	case NRF51_TIMER_START:
		return t.start
	case NRF51_TIMER_STOP:
		return t.stop
	case NRF51_TIMER_COUNT:
		return t.count
	case NRF51_TIMER_CLEAR:
		return t.clear
	case NRF51_TIMER_SHUTDOWN:
		return t.shutdown
	case NRF51_TIMER_CAPTURE0, NRF51_TIMER_CAPTURE1, NRF51_TIMER_CAPTURE2, NRF51_TIMER_CAPTURE3:
		return t.capture[(offset>>2)&3]
	case NRF51_TIMER_COMPARE0, NRF51_TIMER_COMPARE1, NRF51_TIMER_COMPARE2, NRF51_TIMER_COMPARE3:
		return t.compare[(offset>>2)&3]
	case NRF51_TIMER_SHORTS:
		return t.shorts
	case NRF51_TIMER_INTENSET, NRF51_TIMER_INTENCLR:
		logUnimpRead(t.name, offset)
		return 0
	case NRF51_TIMER_MODE:
		return t.mode
	case NRF51_TIMER_BITMODE:
		return t.bitmode
	case NRF51_TIMER_PRESCALER:
		return t.prescaler
	case NRF51_TIMER_CC0, NRF51_TIMER_CC1, NRF51_TIMER_CC2, NRF51_TIMER_CC3:
		return t.cc[(offset>>2)&3]
	default:
		logBadRead(t.name, offset)
		return 0
	}
}

// recalibrate pushes the reload value for the current mode down to the
// tick source: COUNT in counter mode, free-running in timer mode.
func (t *NRF51Timer) recalibrate() {
	if t.mode&1 == TIMER_MODE_COUNTER {
		t.timer.SetReload(t.count)
	} else {
		t.timer.SetReload(0)
	}
}

func (t *NRF51Timer) Write(offset uint32, size int, value uint32) {
	switch offset {
	case NRF51_TIMER_START:
		t.start = value
		if value&1 != 0 {
			t.freq = NRF51_TIMER_BASE_FREQ >> t.prescaler
			t.timer.SetFrequency(t.freq)
			switch t.bitmode {
			case 0:
				t.limitMask = 0xffff
			case 1:
				t.limitMask = 0xff
			case 2:
				t.limitMask = 0xffffff
			case 3:
				t.limitMask = 0xffffffff
			}
			if t.pulsed {
				t.pulsed = false
			} else {
				t.recalibrate()
			}
			t.timer.Start(true)
		}
	case NRF51_TIMER_STOP:
		t.stop = value
		if value&1 != 0 {
			t.timer.Stop()
			t.pulsed = true
		}
	case NRF51_TIMER_COUNT:
		if t.mode&1 == TIMER_MODE_COUNTER {
			t.count = value
			t.recalibrate()
		}
	case NRF51_TIMER_CLEAR:
		t.clear = value
		if value&1 != 0 {
			t.internalCounter = 0
			t.recalibrate()
		}
	case NRF51_TIMER_SHUTDOWN:
		t.shutdown = value
		if value&1 != 0 {
			t.timer.Stop()
			t.internalCounter = 0
			t.recalibrate()
			t.pulsed = false
		}
	case NRF51_TIMER_CAPTURE0, NRF51_TIMER_CAPTURE1, NRF51_TIMER_CAPTURE2, NRF51_TIMER_CAPTURE3:
		t.cc[(offset>>2)&3] = t.internalCounter
	case NRF51_TIMER_COMPARE0, NRF51_TIMER_COMPARE1, NRF51_TIMER_COMPARE2, NRF51_TIMER_COMPARE3:
		t.compare[(offset>>2)&3] = value
	case NRF51_TIMER_SHORTS:
		logUnimpWrite(t.name, offset)
	case NRF51_TIMER_INTENSET:
		t.inten |= (value >> 16) & 0xf
	case NRF51_TIMER_INTENCLR:
		t.inten &= ^((value >> 16) & 0xf)
	case NRF51_TIMER_MODE:
		t.mode = value & 1
		t.recalibrate()
	case NRF51_TIMER_BITMODE:
		t.bitmode = value & 0x3
	case NRF51_TIMER_PRESCALER:
		t.prescaler = value & 0xf
		t.recalibrate()
	case NRF51_TIMER_CC0, NRF51_TIMER_CC1, NRF51_TIMER_CC2, NRF51_TIMER_CC3:
		t.cc[(offset>>2)&3] = value
	default:
		logBadWrite(t.name, offset)
	}
}

// tick advances the internal counter by one and fires the channel events
// due at the new value.
func (t *NRF51Timer) tick() {
	t.internalCounter = (t.internalCounter + 1) & t.limitMask

	if t.mode&1 == TIMER_MODE_COUNTER {
		if t.internalCounter == t.count {
			t.internalCounter = 0
			t.irq.Pulse()
		} else {
			t.irq.Lower()
		}
		return
	}

	for i := 0; i < 4; i++ {
		if t.inten&(1<<i) != 0 {
			if t.cc[i] == t.internalCounter {
				t.compare[i]++
				t.irq.Pulse()
			} else {
				t.irq.Lower()
			}
		}
	}
}

// nrf51TimerState is the version-1 snapshot record.
type nrf51TimerState struct {
	Pulsed          bool      `cbor:"pulsed"`
	Inten           uint32    `cbor:"inten"`
	LimitMask       uint32    `cbor:"limit_mask"`
	Start           uint32    `cbor:"start"`
	Stop            uint32    `cbor:"stop"`
	Count           uint32    `cbor:"count"`
	Clear           uint32    `cbor:"clear"`
	Shutdown        uint32    `cbor:"shutdown"`
	Capture         [4]uint32 `cbor:"capture"`
	Compare         [4]uint32 `cbor:"compare"`
	Shorts          uint32    `cbor:"shorts"`
	Mode            uint32    `cbor:"mode"`
	Bitmode         uint32    `cbor:"bitmode"`
	Prescaler       uint32    `cbor:"prescaler"`
	CC              [4]uint32 `cbor:"cc"`
	InternalCounter uint32    `cbor:"internal_counter"`
}

func (t *NRF51Timer) SnapshotVersion() (current, minimum int) { return 1, 1 }

func (t *NRF51Timer) SnapshotState() any {
	return &nrf51TimerState{
		Pulsed:          t.pulsed,
		Inten:           t.inten,
		LimitMask:       t.limitMask,
		Start:           t.start,
		Stop:            t.stop,
		Count:           t.count,
		Clear:           t.clear,
		Shutdown:        t.shutdown,
		Capture:         t.capture,
		Compare:         t.compare,
		Shorts:          t.shorts,
		Mode:            t.mode,
		Bitmode:         t.bitmode,
		Prescaler:       t.prescaler,
		CC:              t.cc,
		InternalCounter: t.internalCounter,
	}
}

func (t *NRF51Timer) RestoreState(decode func(dst any) error) error {
	var s nrf51TimerState
	if err := decode(&s); err != nil {
		return err
	}
	t.pulsed = s.Pulsed
	t.inten = s.Inten
	t.limitMask = s.LimitMask
	t.start = s.Start
	t.stop = s.Stop
	t.count = s.Count
	t.clear = s.Clear
	t.shutdown = s.Shutdown
	t.capture = s.Capture
	t.compare = s.Compare
	t.shorts = s.Shorts
	t.mode = s.Mode
	t.bitmode = s.Bitmode
	t.prescaler = s.Prescaler
	t.cc = s.CC
	t.internalCounter = s.InternalCounter
	t.recalibrate()
	return nil
}

func (t *NRF51Timer) Reset() {
	t.timer.Stop()
	t.irq.Lower()
	t.pulsed = false
	t.inten = 0
	t.limitMask = 0
	t.freq = NRF51_TIMER_BASE_FREQ
	t.start = 0
	t.stop = 0
	t.count = 0
	t.clear = 0
	t.shutdown = 0
	t.capture = [4]uint32{}
	t.compare = [4]uint32{}
	t.shorts = 0
	t.mode = 0
	t.bitmode = 0
	t.prescaler = 0
	t.cc = [4]uint32{}
	t.internalCounter = 0
	t.recalibrate()
}
