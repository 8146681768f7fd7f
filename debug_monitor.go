// debug_monitor.go - Lua-scripted machine monitor

/*
debug_monitor.go - Machine Monitor

A scripting surface over the machine for debugging and automation: a Lua
interpreter with the machine bound in. Works as a stdin REPL or runs a
script file, so "poke the scan word, tick timer0 a thousand times, check
the frame" is a five-line script instead of a debugging session.

Bound functions:

    peek(addr)            32-bit bus read
    poke(addr, value)     32-bit bus write
    tick(n, count)        step timer n's tick source count times
    advance(us)           advance the virtual clock by microseconds
    led()                 the 25-bit matrix frame
    ledtext()             print the matrix as a block grid
    reset()               machine reset
    snapshot(path)        save machine state
    restore(path)         load machine state

Every binding serializes against the run loop through RunLocked.

License: GPLv3 or later
*/

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

type Monitor struct {
	machine *MicrobitMachine
	state   *lua.LState
	out     io.Writer
}

func NewMonitor(m *MicrobitMachine) *Monitor {
	mon := &Monitor{machine: m, state: lua.NewState(), out: os.Stdout}
	mon.bind()
	return mon
}

func (mon *Monitor) Close() {
	mon.state.Close()
}

func (mon *Monitor) bind() {
	L := mon.state
	m := mon.machine

	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		var val uint32
		m.RunLocked(func() { val = m.Bus().Read32(addr) })
		L.Push(lua.LNumber(val))
		return 1
	}))

	L.SetGlobal("poke", L.NewFunction(func(L *lua.LState) int {
		addr := uint32(L.CheckInt64(1))
		val := uint32(L.CheckInt64(2))
		m.RunLocked(func() { m.Bus().Write32(addr, val) })
		return 0
	}))

	L.SetGlobal("tick", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		count := L.OptInt(2, 1)
		if n < 0 || n > 2 {
			L.ArgError(1, "timer index must be 0..2")
			return 0
		}
		m.RunLocked(func() { m.Timer(n).TickSource().Tick(count) })
		return 0
	}))

	L.SetGlobal("advance", L.NewFunction(func(L *lua.LState) int {
		us := L.CheckInt64(1)
		m.RunLocked(func() { m.Clock().Advance(time.Duration(us) * time.Microsecond) })
		return 0
	}))

	L.SetGlobal("led", L.NewFunction(func(L *lua.LState) int {
		var state uint32
		m.RunLocked(func() { state = m.LED().LEDState() })
		L.Push(lua.LNumber(state))
		return 1
	}))

	L.SetGlobal("ledtext", L.NewFunction(func(L *lua.LState) int {
		var state uint32
		var status string
		m.RunLocked(func() {
			state = m.LED().LEDState()
			status = m.LED().TextStatus()
		})
		var sb strings.Builder
		for y := 0; y < 5; y++ {
			for x := 0; x < 5; x++ {
				if state&(1<<(x+y*5)) != 0 {
					sb.WriteString("## ")
				} else {
					sb.WriteString(".. ")
				}
			}
			sb.WriteByte('\n')
		}
		sb.WriteString(status)
		sb.WriteByte('\n')
		fmt.Fprint(mon.out, sb.String())
		return 0
	}))

	L.SetGlobal("reset", L.NewFunction(func(L *lua.LState) int {
		m.RunLocked(func() { m.Reset() })
		return 0
	}))

	L.SetGlobal("snapshot", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		var err error
		m.RunLocked(func() { err = m.SaveState(path) })
		if err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}))

	L.SetGlobal("restore", L.NewFunction(func(L *lua.LState) int {
		path := L.CheckString(1)
		var err error
		m.RunLocked(func() { err = m.LoadState(path) })
		if err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}))
}

// RunScript executes a Lua script file against the machine.
func (mon *Monitor) RunScript(path string) error {
	return mon.state.DoFile(path)
}

// DoString executes one chunk of Lua.
func (mon *Monitor) DoString(src string) error {
	return mon.state.DoString(src)
}

// REPL reads Lua chunks line by line until EOF.
func (mon *Monitor) REPL(in io.Reader) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintf(mon.out, "(%s monitor) ", MACHINE_NAME)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return
		}
		if line != "" {
			if err := mon.state.DoString(line); err != nil {
				fmt.Fprintf(mon.out, "error: %v\n", err)
			}
		}
		fmt.Fprintf(mon.out, "(%s monitor) ", MACHINE_NAME)
	}
}
