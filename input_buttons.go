// input_buttons.go - Host keyboard to board buttons (terminal frontend)

/*
input_buttons.go - Button Input

The board has two buttons, A and B, wired to GPIO pins 17 and 26, active
low. The windowed frontend forwards real key press/release edges; a
terminal cannot observe key release, so this reader emulates the edge: a
keystroke presses the button and a short hold timer releases it.

Keys: 'a' and left arrow press button A, 'b' and right arrow press
button B. Ctrl-C stops the reader and reports it so main can shut the
machine down.

License: GPLv3 or later
*/

package main

import (
	"time"

	"github.com/eiannone/keyboard"
)

// How long an emulated press lasts before the release edge fires.
const BUTTON_HOLD_TIME = 100 * time.Millisecond

type ButtonReader struct {
	handler func(button int, pressed bool)

	stopCh      chan struct{}
	doneCh      chan struct{}
	InterruptCh chan struct{} // closed when the user hits Ctrl-C
}

func NewButtonReader() *ButtonReader {
	return &ButtonReader{
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		InterruptCh: make(chan struct{}),
	}
}

func (br *ButtonReader) SetButtonHandler(fn func(button int, pressed bool)) {
	br.handler = fn
}

// Start opens the keyboard and begins translating keystrokes. Returns an
// error when the terminal cannot deliver key events.
func (br *ButtonReader) Start() error {
	keyEvents, err := keyboard.GetKeys(8)
	if err != nil {
		return err
	}

	go func() {
		defer close(br.doneCh)
		defer keyboard.Close()
		for {
			select {
			case <-br.stopCh:
				return
			case ev, ok := <-keyEvents:
				if !ok {
					return
				}
				if ev.Err != nil {
					continue
				}
				if ev.Key == keyboard.KeyCtrlC {
					close(br.InterruptCh)
					return
				}
				br.press(buttonForKey(ev.Rune, ev.Key))
			}
		}
	}()
	return nil
}

func (br *ButtonReader) Stop() {
	close(br.stopCh)
	<-br.doneCh
}

func buttonForKey(ch rune, key keyboard.Key) int {
	switch {
	case ch == 'a' || ch == 'A' || key == keyboard.KeyArrowLeft:
		return BUTTON_A
	case ch == 'b' || ch == 'B' || key == keyboard.KeyArrowRight:
		return BUTTON_B
	}
	return -1
}

// press fires the press edge now and the release edge after the hold
// time, emulating what a window frontend gets from real key events.
func (br *ButtonReader) press(button int) {
	if button < 0 || br.handler == nil {
		return
	}
	br.handler(button, true)
	time.AfterFunc(BUTTON_HOLD_TIME, func() {
		br.handler(button, false)
	})
}
