// device_interface.go - Device, IRQ and CPU contracts for the micro:bit machine

/*
device_interface.go - Device Capability Set

Every memory-mapped peripheral in this machine implements the small Device
capability set below: a name for logging, 32-bit register read/write
handlers keyed by offset within the device's region, and a reset hook.
Device instances are owned by the machine; the bus dispatcher holds
non-owning references to them.

All handlers treat accesses as 32-bit operations. Narrow reads return the
low byte or halfword of the register; narrow writes are accepted as-is.
Handlers run on the machine thread, must not block, and run to completion
before the CPU or another handler runs.

Devices that participate in save/restore additionally implement the
snapshotter interface in machine_snapshot.go.

License: GPLv3 or later
*/

package main

// Device is the capability set shared by every memory-mapped peripheral.
type Device interface {
	// DeviceName identifies the device in logs and snapshot records.
	DeviceName() string

	// Read returns the register at offset. size is 1, 2 or 4; narrow
	// reads observe the low bits of the 32-bit register.
	Read(offset uint32, size int) uint32

	// Write stores value at offset. size is 1, 2 or 4.
	Write(offset uint32, size int, value uint32)

	// Reset restores the documented power-on defaults.
	Reset()
}

// IRQLine is one interrupt input as seen from a device. Pulse asserts and
// deasserts on the same tick edge.
type IRQLine interface {
	Raise()
	Lower()
	Pulse()
}

// CPUCore is the host CPU collaborator. The machine model only needs the
// interrupt inputs and the reset entry; instruction execution lives
// outside this repository.
type CPUCore interface {
	// SetIRQ drives interrupt input line (0..NUM_IRQ-1) to level.
	SetIRQ(line int, level bool)

	// Reset re-runs the core's reset sequence (vector fetch etc.).
	Reset()
}

// cpuIRQLine adapts one CPUCore interrupt input to an IRQLine.
type cpuIRQLine struct {
	cpu  CPUCore
	line int
}

func NewCPUIRQLine(cpu CPUCore, line int) IRQLine {
	return &cpuIRQLine{cpu: cpu, line: line}
}

func (l *cpuIRQLine) Raise() { l.cpu.SetIRQ(l.line, true) }
func (l *cpuIRQLine) Lower() { l.cpu.SetIRQ(l.line, false) }

func (l *cpuIRQLine) Pulse() {
	l.cpu.SetIRQ(l.line, true)
	l.cpu.SetIRQ(l.line, false)
}

// detachedIRQLine discards every transition. Devices constructed without a
// consumer for their interrupt get one of these instead of a nil check.
type detachedIRQLine struct{}

func NewDetachedIRQLine() IRQLine { return detachedIRQLine{} }

func (detachedIRQLine) Raise() {}
func (detachedIRQLine) Lower() {}
func (detachedIRQLine) Pulse() {}
