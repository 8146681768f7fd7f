package main

import (
	"path/filepath"
	"strings"
	"testing"
)

// TestMonitorPeekPoke verifies the Lua bindings reach the bus.
func TestMonitorPeekPoke(t *testing.T) {
	m, _ := newTestMachine(t)
	mon := NewMonitor(m)
	defer mon.Close()

	script := `
poke(0x20000000, 0xDEADBEEF)
v = peek(0x20000000)
`
	if err := mon.DoString(script); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := m.Bus().Read32(RAM_BASE); got != 0xDEADBEEF {
		t.Fatalf("poke did not land: 0x%08X", got)
	}
}

// TestMonitorTickAndLED verifies timer stepping and frame inspection
// from a script. 0x3FE0 is the scan word for row 0 with column 0 active.
func TestMonitorTickAndLED(t *testing.T) {
	m, _ := newTestMachine(t)
	mon := NewMonitor(m)
	defer mon.Close()

	script := `
poke(0x40008000 + 0x504, 1)   -- MODE = counter
poke(0x40008000 + 0x008, 2)   -- COUNT = 2
poke(0x40008000 + 0x000, 1)   -- START
tick(0, 1)
poke(0x40020000, 0x3FE0)
l = led()
`
	if err := mon.DoString(script); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := m.Timer(0).InternalCounter(); got != 1 {
		t.Fatalf("Timer counter %d after tick(0, 1), expected 1", got)
	}
	if got := m.LED().LEDState(); got != 0x1 {
		t.Fatalf("led_state = 0x%X, expected 0x1", got)
	}
}

// TestMonitorSnapshotBinding verifies snapshot/restore from a script.
func TestMonitorSnapshotBinding(t *testing.T) {
	m, _ := newTestMachine(t)
	mon := NewMonitor(m)
	defer mon.Close()

	path := filepath.Join(t.TempDir(), "state.cbor")
	path = strings.ReplaceAll(path, `\`, `\\`)

	if err := mon.DoString(`poke(0x40020000, 0x3FE0) snapshot("` + path + `")`); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if err := mon.DoString(`reset() restore("` + path + `")`); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := m.LED().LEDState(); got != 0x1 {
		t.Fatalf("led_state = 0x%X after restore, expected 0x1", got)
	}
}
