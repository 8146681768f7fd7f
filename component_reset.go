// component_reset.go - Machine-wide reset lifecycle

/*
component_reset.go - Reset Lifecycle

Reset order matters: device state goes back to power-on defaults before
the registered hooks run, so when the CPU reset hook re-fetches the
vector table the peripherals it will probe are already in their
documented state. Hooks run in registration order; the machine registers
the CPU reset during construction, after every device exists.

Each device implements its own Reset() next to its registers; this file
only owns the sequencing.

License: GPLv3 or later
*/

package main

// RegisterResetHook appends fn to the machine reset sequence. Hooks run
// after the device resets, in registration order.
func (m *MicrobitMachine) RegisterResetHook(fn func()) {
	m.resetHooks = append(m.resetHooks, fn)
}

// Reset restores every device to power-on defaults, clears RAM and runs
// the registered hooks (CPU reset among them).
func (m *MicrobitMachine) Reset() {
	m.bus.Reset()
	for _, dev := range m.devices {
		dev.Reset()
	}
	for _, fn := range m.resetHooks {
		fn()
	}
}
