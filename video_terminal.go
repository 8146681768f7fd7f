// video_terminal.go - ANSI terminal view of the LED matrix

/*
video_terminal.go - Terminal LED View

Text-mode frontend: renders the 5x5 matrix as a block grid plus the
four-hex-digit state word. On a real terminal the view repaints in place
with ANSI cursor movement; on a pipe it degrades to printing the state
word whenever it changes, which keeps logs readable.

The view polls the matrix from its own goroutine; all machine access
goes through RunLocked.

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

const TERMINAL_VIEW_INTERVAL = 100 * time.Millisecond

type TerminalView struct {
	machine *MicrobitMachine
	out     io.Writer
	ansi    bool

	lastState uint32
	painted   bool

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewTerminalView(m *MicrobitMachine) *TerminalView {
	return &TerminalView{
		machine: m,
		out:     os.Stdout,
		ansi:    term.IsTerminal(int(os.Stdout.Fd())),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start begins polling the matrix. Call Stop to end and drain.
func (tv *TerminalView) Start() {
	go func() {
		defer close(tv.doneCh)
		ticker := time.NewTicker(TERMINAL_VIEW_INTERVAL)
		defer ticker.Stop()
		for {
			select {
			case <-tv.stopCh:
				return
			case <-ticker.C:
				tv.renderOnce()
			}
		}
	}()
}

func (tv *TerminalView) Stop() {
	close(tv.stopCh)
	<-tv.doneCh
}

func (tv *TerminalView) renderOnce() {
	var state uint32
	var status string
	tv.machine.RunLocked(func() {
		state = tv.machine.LED().LEDState()
		status = tv.machine.LED().TextStatus()
	})
	if tv.painted && state == tv.lastState {
		return
	}
	tv.lastState = state
	tv.render(state, status)
	tv.painted = true
}

func (tv *TerminalView) render(state uint32, status string) {
	if !tv.ansi {
		fmt.Fprintf(tv.out, "led %s\n", status)
		return
	}
	if tv.painted {
		// Repaint in place: matrix rows plus the status line.
		fmt.Fprintf(tv.out, "\033[6A")
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if state&(1<<(x+y*5)) != 0 {
				fmt.Fprint(tv.out, "\033[97m##\033[0m ")
			} else {
				fmt.Fprint(tv.out, "\033[90m..\033[0m ")
			}
		}
		fmt.Fprintln(tv.out)
	}
	fmt.Fprintf(tv.out, "\033[34m%s\033[0m\n", status)
}
