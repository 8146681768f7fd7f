// machine_microbit.go - micro:bit machine assembly and run loop

/*
machine_microbit.go - The micro:bit Machine

Builds the whole board: allocates the bus and its backing memory, creates
every peripheral, maps them into the physical address space, wires the
three timer interrupt lines to CPU inputs 8/9/10, points the GPIO output
observer at the LED matrix, loads the kernel image into flash, copies the
vector table into the code-loader ROM and registers the CPU reset hook.

Boot protocol:
    1. The raw kernel binary is loaded at 0x00018000, at most 0x28000
       bytes. An optional pflash backing image is loaded first and the
       kernel overlays it.
    2. The first 0xC0 bytes of flash (initial SP + exception vectors) are
       copied to ROM at 0x00000000, where the core fetches them.
    3. The machine's reset runs every device reset plus the CPU reset.

Configuration errors (wrong CPU type, RAM size not 16KB/32KB, unreadable
kernel, image too large) are returned from the constructor; main reports
them and exits nonzero.

The run loop advances the virtual clock in wall-time steps and drives the
display tick. Everything that mutates machine state - MMIO issued by a
frontend, monitor pokes, clock advancement - is serialized on one mutex,
preserving the cooperative single-thread model.

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	MACHINE_NAME     = "micro:bit"
	DEFAULT_CPU_TYPE = "cortex-m3"
	DEFAULT_RAM_SIZE = RAM_SIZE_32K

	// Wall-time step of the run loop and refresh rate of the display.
	MACHINE_TICK_INTERVAL    = time.Millisecond
	DISPLAY_REFRESH_INTERVAL = time.Second / 30
)

// MachineConfig selects the board variant to build.
type MachineConfig struct {
	CPUType        string // must be "cortex-m3"
	RAMSize        int    // 16384 or 32768
	KernelFilename string // required: raw binary loaded into flash
	PFlashFilename string // optional flash backing image

	// NewCPU constructs the CPU collaborator. Nil selects the detached
	// core, which accepts interrupts and does nothing else.
	NewCPU func(numIRQ int, cpuType string, bus Bus32) (CPUCore, error)
}

// MicrobitMachine owns every device instance and the virtual clock.
type MicrobitMachine struct {
	mu sync.Mutex

	bus   *MachineBus
	cpu   CPUCore
	clock *VirtualClock

	gpio   *NRF51GPIO
	led    *LEDMatrix
	rng    *NRF51RNG
	timers [3]*NRF51Timer

	devices    []Device
	resetHooks []func()

	surface *Surface
	video   VideoOutput

	stopCh chan struct{}
	doneCh chan struct{}
}

// unimplementedSlots mirrors the board's unmodeled peripherals.
var unimplementedSlots = []struct {
	name string
	base uint32
	size uint32
}{
	{"radio", RADIO_BASE, PERI_SLOT_SIZE},
	{"uart0", UART0_BASE, PERI_SLOT_SIZE},
	{"spi0_twi0", SPI0_BASE, PERI_SLOT_SIZE},
	{"spi1_twi1", SPI1_BASE, PERI_SLOT_SIZE},
	{"gpiote", GPIOTE_BASE, PERI_SLOT_SIZE},
	{"adc", ADC_BASE, PERI_SLOT_SIZE},
	{"rtc0", RTC0_BASE, PERI_SLOT_SIZE},
	{"temp", TEMP_BASE, PERI_SLOT_SIZE},
	{"ecb", ECB_BASE, PERI_SLOT_SIZE},
	{"aar_ccm", AAR_BASE, PERI_SLOT_SIZE},
	{"wdt", WDT_BASE, PERI_SLOT_SIZE},
	{"rtc1", RTC1_BASE, PERI_SLOT_SIZE},
	{"qdec", QDEC_BASE, PERI_SLOT_SIZE},
	{"lpcomp", LPCOMP_BASE, PERI_SLOT_SIZE},
	{"swi", SWI_BASE, PERI_SLOT_SIZE},
	{"ppi", PPI_BASE, PERI_SLOT_SIZE},
	{"uicr", UICR_BASE, PERI_SLOT_SIZE},
}

// NewMicrobitMachine builds and boots the board.
func NewMicrobitMachine(cfg MachineConfig) (*MicrobitMachine, error) {
	if cfg.CPUType == "" {
		cfg.CPUType = DEFAULT_CPU_TYPE
	}
	if cfg.CPUType != DEFAULT_CPU_TYPE {
		return nil, fmt.Errorf("microbit: this board can only be used with CPU [%s]", DEFAULT_CPU_TYPE)
	}
	if cfg.RAMSize == 0 {
		cfg.RAMSize = DEFAULT_RAM_SIZE
	}

	bus, err := NewMachineBus(cfg.RAMSize)
	if err != nil {
		return nil, fmt.Errorf("microbit: %w", err)
	}

	newCPU := cfg.NewCPU
	if newCPU == nil {
		newCPU = func(numIRQ int, cpuType string, bus Bus32) (CPUCore, error) {
			return NewDetachedCPU(numIRQ), nil
		}
	}
	cpu, err := newCPU(NUM_IRQ, cfg.CPUType, bus)
	if err != nil {
		return nil, fmt.Errorf("microbit: initializing CPU: %w", err)
	}

	surface, err := NewSurface(LED_SURFACE_WIDTH, LED_SURFACE_HEIGHT, 32)
	if err != nil {
		return nil, fmt.Errorf("microbit: %w", err)
	}

	m := &MicrobitMachine{
		bus:     bus,
		cpu:     cpu,
		clock:   NewVirtualClock(),
		surface: surface,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	// Peripherals.
	clockDev := NewNRF51Clock()
	m.rng = NewNRF51RNG()
	nvmc := NewNRF51NVMC()
	ficr := NewNRF51FICR()
	m.gpio = NewNRF51GPIO()
	m.led = NewLEDMatrix()
	m.gpio.SetLEDBus(m.led.BusWrite)

	m.addDevice(clockDev, CLOCK_BASE, PERI_SLOT_SIZE)
	m.addDevice(m.rng, RNG_BASE, PERI_SLOT_SIZE)
	m.addDevice(nvmc, NVMC_BASE, PERI_SLOT_SIZE)
	m.addDevice(ficr, FICR_BASE, PERI_SLOT_SIZE)
	m.addDevice(m.gpio, GPIO_BASE, PERI_SLOT_SIZE)
	m.addDevice(m.led, LED_BASE, PERI_SLOT_SIZE)

	timerBases := [3]uint32{TIMER0_BASE, TIMER1_BASE, TIMER2_BASE}
	timerIRQs := [3]int{TIMER0_IRQ, TIMER1_IRQ, TIMER2_IRQ}
	for i := range m.timers {
		t := NewNRF51Timer(fmt.Sprintf("nrf51_timer%d", i), NewCPUIRQLine(cpu, timerIRQs[i]), m.clock)
		m.timers[i] = t
		m.addDevice(t, timerBases[i], PERI_SLOT_SIZE)
	}

	for _, slot := range unimplementedSlots {
		m.addDevice(NewUnimplementedDevice(slot.name), slot.base, slot.size)
	}

	// Load binary image.
	if cfg.PFlashFilename != "" {
		if err := m.loadFlashImage(cfg.PFlashFilename); err != nil {
			return nil, err
		}
	}
	if err := m.loadKernel(cfg.KernelFilename); err != nil {
		return nil, err
	}

	m.RegisterResetHook(cpu.Reset)
	m.bus.Seal()
	return m, nil
}

func (m *MicrobitMachine) addDevice(dev Device, base, size uint32) {
	m.devices = append(m.devices, dev)
	m.bus.MapDevice(base, size, dev)
}

// loadKernel reads a raw binary into flash and copies the vector table
// into the code-loader ROM.
func (m *MicrobitMachine) loadKernel(filename string) error {
	if filename == "" {
		return fmt.Errorf("microbit: kernel filename is required")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("microbit: failed to load file %s: %w", filename, err)
	}
	if len(data) > CODE_KERNEL_SIZE {
		return fmt.Errorf("microbit: kernel %s is %d bytes, flash holds %d", filename, len(data), CODE_KERNEL_SIZE)
	}
	if err := m.bus.LoadFlash(0, data); err != nil {
		return err
	}
	return m.bus.LoadROM(0, m.bus.FlashBytes(0, VECTOR_SIZE))
}

func (m *MicrobitMachine) loadFlashImage(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("microbit: failed to load flash image %s: %w", filename, err)
	}
	if len(data) > CODE_KERNEL_SIZE {
		data = data[:CODE_KERNEL_SIZE]
	}
	return m.bus.LoadFlash(0, data)
}

// AttachVideo connects a display backend for the LED panel.
func (m *MicrobitMachine) AttachVideo(v VideoOutput) {
	m.video = v
}

// Accessors for frontends, the monitor and tests.
func (m *MicrobitMachine) Bus() *MachineBus        { return m.bus }
func (m *MicrobitMachine) Clock() *VirtualClock    { return m.clock }
func (m *MicrobitMachine) GPIO() *NRF51GPIO        { return m.gpio }
func (m *MicrobitMachine) LED() *LEDMatrix         { return m.led }
func (m *MicrobitMachine) RNG() *NRF51RNG          { return m.rng }
func (m *MicrobitMachine) Timer(i int) *NRF51Timer { return m.timers[i] }

// RunLocked serializes fn against the run loop. Frontend MMIO and monitor
// commands go through here.
func (m *MicrobitMachine) RunLocked(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// DisplayTick renders pending LED events and pushes the frame to the
// attached backend.
func (m *MicrobitMachine) DisplayTick() {
	var changed bool
	var status string
	m.RunLocked(func() {
		changed = m.led.UpdateDisplay(m.surface)
		status = m.led.TextStatus()
	})
	if changed && m.video != nil {
		_ = m.video.UpdateFrame(m.surface.RGBA())
		if st, ok := m.video.(StatusLine); ok {
			st.SetStatus(status)
		}
	}
}

// Run paces the virtual clock against wall time and fires display ticks
// until Stop is called. It blocks the calling goroutine.
func (m *MicrobitMachine) Run() {
	defer close(m.doneCh)

	ticker := time.NewTicker(MACHINE_TICK_INTERVAL)
	defer ticker.Stop()

	lastDisplay := time.Now()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.RunLocked(func() {
				m.clock.Advance(MACHINE_TICK_INTERVAL)
			})
			if time.Since(lastDisplay) >= DISPLAY_REFRESH_INTERVAL {
				lastDisplay = time.Now()
				m.DisplayTick()
			}
		}
	}
}

// Stop ends the run loop and waits for it to drain.
func (m *MicrobitMachine) Stop() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
	<-m.doneCh
}

// DetachedCPU is the placeholder CPU collaborator: it latches interrupt
// levels and counts resets, which is all the machine model needs when no
// instruction-executing core is plugged in.
type DetachedCPU struct {
	irqLevel []bool
	irqEdges []int // rising edges per line
	resets   int
}

func NewDetachedCPU(numIRQ int) *DetachedCPU {
	return &DetachedCPU{
		irqLevel: make([]bool, numIRQ),
		irqEdges: make([]int, numIRQ),
	}
}

func (c *DetachedCPU) SetIRQ(line int, level bool) {
	if line < 0 || line >= len(c.irqLevel) {
		return
	}
	if level && !c.irqLevel[line] {
		c.irqEdges[line]++
	}
	c.irqLevel[line] = level
}

func (c *DetachedCPU) Reset() {
	c.resets++
}

// IRQEdges reports how many rising edges one interrupt input has seen.
func (c *DetachedCPU) IRQEdges(line int) int {
	if line < 0 || line >= len(c.irqEdges) {
		return 0
	}
	return c.irqEdges[line]
}

// IRQLevel reports the latched level of one interrupt input.
func (c *DetachedCPU) IRQLevel(line int) bool {
	if line < 0 || line >= len(c.irqLevel) {
		return false
	}
	return c.irqLevel[line]
}

// ResetCount reports how many times the core was reset.
func (c *DetachedCPU) ResetCount() int { return c.resets }
