// video_interface.go - Display backend contract for the LED panel

/*
video_interface.go - Video Output Interface

The LED matrix paints into a Surface; a VideoOutput presents that surface
to the user. Two backends exist, selected by build tag: a windowed ebiten
backend and a headless one that only counts frames. The terminal view in
video_terminal.go sits outside this interface - it renders the matrix
state directly, without pixels.

Backends receive raw RGBA frames only. Frontends that can produce button
events additionally implement ButtonInput and forward press/release pairs
to the machine's GPIO input pins.

License: GPLv3 or later
*/

package main

// Board buttons and the GPIO pins they drive. The buttons are active low:
// pressed pulls the pin to ground.
const (
	BUTTON_A = 0
	BUTTON_B = 1

	BUTTON_A_PIN = 17
	BUTTON_B_PIN = 26
)

// DisplayConfig is the hardware-independent backend configuration.
type DisplayConfig struct {
	Width  int
	Height int
	Scale  int // integer scaling factor for output
	Title  string
}

// VideoOutput is the minimal interface a display backend implements.
type VideoOutput interface {
	Start() error
	Stop() error
	IsStarted() bool

	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig

	// UpdateFrame takes raw RGBA pixels at the configured size.
	UpdateFrame(buffer []byte) error

	GetFrameCount() uint64
}

// StatusLine is implemented by backends that can show the matrix state
// word next to the frame.
type StatusLine interface {
	SetStatus(s string)
}

// ButtonInput is implemented by frontends that can produce board button
// events.
type ButtonInput interface {
	SetButtonHandler(func(button int, pressed bool))
}

// buttonPin maps a button index to its GPIO pin, or -1.
func buttonPin(button int) int {
	switch button {
	case BUTTON_A:
		return BUTTON_A_PIN
	case BUTTON_B:
		return BUTTON_B_PIN
	}
	return -1
}

// WireButtons routes a frontend's button events to the machine's GPIO
// input latch, pressed = low.
func WireButtons(m *MicrobitMachine, in ButtonInput) {
	in.SetButtonHandler(func(button int, pressed bool) {
		pin := buttonPin(button)
		if pin < 0 {
			return
		}
		m.RunLocked(func() {
			m.GPIO().SetInputPin(pin, !pressed)
		})
	})
}
