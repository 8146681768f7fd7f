// nrf51_clock.go - nRF51822 clock, power and MPU block stub

/*
nrf51_clock.go - CLOCK/POWER/MPU Stub

The clock block is a fake: the timers in this machine take their rate
from the virtual tick engine and need no clock input. What firmware
observes is kept consistent - starting a clock makes its STARTED flag
read back set, stopping clears it. The power block stores the RAM-on
mask; the low-frequency clock source selection is accepted silently.

License: GPLv3 or later
*/

package main

const (
	NRF51_CLK_HFCLKSTART   = 0x000
	NRF51_CLK_HFCLKSTOP    = 0x004
	NRF51_CLK_LFCLKSTART   = 0x008
	NRF51_CLK_LFCLKSTOP    = 0x00C
	NRF51_CLK_CAL          = 0x010
	NRF51_CLK_CTSTART      = 0x014
	NRF51_CLK_CTSTOP       = 0x018
	NRF51_CLK_HFCLKSTARTED = 0x100
	NRF51_CLK_LFCLKSTARTED = 0x104
	NRF51_CLK_INTENSET     = 0x304
	NRF51_CLK_INTENCLR     = 0x308
	NRF51_CLK_HFCLKRUN     = 0x408
	NRF51_CLK_HFCLKSTAT    = 0x40c
	NRF51_CLK_LFCLKRUN     = 0x414
	NRF51_CLK_LFCLKSTAT    = 0x418
	NRF51_CLK_LFCLKSRCCOPY = 0x41c
	NRF51_PWR_RAMON        = 0x524
	NRF51_CLK_LFCLKSRC     = 0x518
	NRF51_CLK_CTIV         = 0x538
	NRF51_CLK_XTALFREQ     = 0x550
)

const NRF51_RAMON_MASK = 0x00030003

type NRF51Clock struct {
	hfclkEnabled bool
	lfclkEnabled bool
	ramon        uint32
}

func NewNRF51Clock() *NRF51Clock {
	return &NRF51Clock{}
}

func (c *NRF51Clock) DeviceName() string { return "nrf51_clock_power_mpu" }

func boolReg(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (c *NRF51Clock) Read(offset uint32, size int) uint32 {
	switch offset {
	case NRF51_CLK_HFCLKSTART, NRF51_CLK_LFCLKSTART, NRF51_CLK_HFCLKSTOP, NRF51_CLK_LFCLKSTOP:
		return 0
	case NRF51_CLK_HFCLKSTARTED:
		return boolReg(c.hfclkEnabled)
	case NRF51_CLK_LFCLKSTARTED:
		return boolReg(c.lfclkEnabled)
	case NRF51_PWR_RAMON:
		return c.ramon
	case NRF51_CLK_LFCLKSRC:
		return 0
	default:
		logBadRead(c.DeviceName(), offset)
		return 0
	}
}

func (c *NRF51Clock) Write(offset uint32, size int, value uint32) {
	switch offset {
	case NRF51_CLK_HFCLKSTART:
		c.hfclkEnabled = value&1 != 0
	case NRF51_CLK_LFCLKSTART:
		c.lfclkEnabled = value&1 != 0
	case NRF51_CLK_HFCLKSTOP:
		c.hfclkEnabled = value&1 == 0
	case NRF51_CLK_LFCLKSTOP:
		c.lfclkEnabled = value&1 == 0
	case NRF51_CLK_HFCLKSTARTED, NRF51_CLK_LFCLKSTARTED:
		// Event registers; writes are meaningless but harmless.
	case NRF51_PWR_RAMON:
		c.ramon = value & NRF51_RAMON_MASK
	case NRF51_CLK_LFCLKSRC:
		// Source selection accepted silently; all clocks are fake.
	default:
		logBadWrite(c.DeviceName(), offset)
	}
}

// nrf51ClockState is the version-1 snapshot record.
type nrf51ClockState struct {
	HfclkEnabled bool   `cbor:"hfclk_enabled"`
	LfclkEnabled bool   `cbor:"lfclk_enabled"`
	Ramon        uint32 `cbor:"ramon"`
}

func (c *NRF51Clock) SnapshotVersion() (current, minimum int) { return 1, 1 }

func (c *NRF51Clock) SnapshotState() any {
	return &nrf51ClockState{HfclkEnabled: c.hfclkEnabled, LfclkEnabled: c.lfclkEnabled, Ramon: c.ramon}
}

func (c *NRF51Clock) RestoreState(decode func(dst any) error) error {
	var s nrf51ClockState
	if err := decode(&s); err != nil {
		return err
	}
	c.hfclkEnabled = s.HfclkEnabled
	c.lfclkEnabled = s.LfclkEnabled
	c.ramon = s.Ramon
	return nil
}

func (c *NRF51Clock) Reset() {
	c.hfclkEnabled = false
	c.lfclkEnabled = false
	c.ramon = 0
}
