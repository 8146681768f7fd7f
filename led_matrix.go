// led_matrix.go - micro:bit 5x5 LED matrix decoder

/*
led_matrix.go - LED Matrix

The board's 25 LEDs are wired as a 3-row by 9-column multiplex: firmware
scans the matrix by driving one row line high and pulling the column lines
of the LEDs it wants lit low. The GPIO controller forwards each scan word
to the single-byte LED bus slot at LED_BASE, and this device decodes it
back into a flat 25-bit frame, one bit per LED of the logical 5x5 grid.

A scan word carries the one-hot row selector in bits 13-15 and the
active-low column bits in bits 4-12. A fixed 27-entry translation table
maps (row, column) to grid coordinates; two slots of row 1 are unused.
Each decoded word replaces exactly the LEDs of its row (per-row clear
masks) and leaves the other rows' state alone, so the persistent frame is
the union of the three scan phases - which is what the human eye sees on
hardware.

A word whose row selector is not one-hot is silently ignored.

Reads return the frame and mark both redraw events, as does restoring a
snapshot. The display path consumes the events: background set means
clear the surface, foreground set means repaint the lit blocks.

License: GPLv3 or later
*/

package main

import "fmt"

const (
	LED_MAP_MASK = 0x01FFFFFF

	// Block layout on the display surface.
	LED_HSIZE = 10
	LED_VSIZE = 40
	LED_HSKIP = 40
	LED_VSKIP = 10
	LED_HBASE = 40
	LED_VBASE = 40

	LED_EVENT_NONE  = 0
	LED_EVENT_FRONT = 1
	LED_EVENT_BACK  = 2
)

type matrixPoint struct {
	x int
	y int
}

// matrixMap translates (row, col) to grid coordinates; index = row + 3*col.
// Row 1 columns 8 and 9 are not used, set as (5,5).
var matrixMap = [3 * 9]matrixPoint{
	{0, 0}, {4, 2}, {2, 4},
	{2, 0}, {0, 2}, {4, 4},
	{4, 0}, {2, 2}, {0, 4},
	{4, 3}, {1, 0}, {0, 1},
	{3, 3}, {3, 0}, {1, 1},
	{2, 3}, {3, 4}, {2, 1},
	{1, 3}, {1, 4}, {3, 1},
	{0, 3}, {5, 5}, {4, 1},
	{1, 2}, {5, 5}, {3, 2},
}

// ledRowClearBits are the frame bits owned by each scan row.
var ledRowClearBits = [3]uint32{0x000f8815, 0x00a0540a, 0x015023e0}

// LEDMatrix is the LED bus device and frame store.
type LEDMatrix struct {
	ledState uint32 // only 25 bits are used
	ledEvent uint8
}

func NewLEDMatrix() *LEDMatrix {
	return &LEDMatrix{ledEvent: LED_EVENT_BACK | LED_EVENT_FRONT}
}

func (m *LEDMatrix) DeviceName() string { return "microbit_led_matrix" }

func (m *LEDMatrix) Read(offset uint32, size int) uint32 {
	m.ledEvent = LED_EVENT_BACK | LED_EVENT_FRONT
	return m.ledState
}

func (m *LEDMatrix) Write(offset uint32, size int, value uint32) {
	m.BusWrite(value)
}

// BusWrite decodes one scan word into the frame. This is the entry the
// GPIO observer calls; the MMIO write handler goes through it too.
func (m *LEDMatrix) BusWrite(value uint32) {
	rowBits := (value >> 13) & 7
	colBits := (^(value >> 4)) & 0x1FF

	var row int
	switch rowBits {
	case 1:
		row = 0
	case 2:
		row = 1
	case 4:
		row = 2
	default:
		// Not a one-hot row selector; drop the word.
		return
	}

	var ledBits uint32
	for col := 0; col < 9; col++ {
		if row == 1 && col == 8 {
			continue
		}
		index := row + col*3
		if colBits&(1<<col) != 0 {
			p := matrixMap[index]
			ledBits |= 1 << (p.x + p.y*5)
		}
	}

	m.ledState &= ^ledRowClearBits[row]
	m.ledState |= ledBits
	m.ledState &= LED_MAP_MASK

	m.ledEvent = LED_EVENT_BACK | LED_EVENT_FRONT
}

// LEDState returns the 25-bit frame.
func (m *LEDMatrix) LEDState() uint32 { return m.ledState }

// Lit reports whether the LED at grid position (x, y) is on.
func (m *LEDMatrix) Lit(x, y int) bool {
	return m.ledState&(1<<(x+y*5)) != 0
}

// InvalidateDisplay forces a full repaint on the next display tick.
func (m *LEDMatrix) InvalidateDisplay() {
	m.ledEvent = LED_EVENT_BACK | LED_EVENT_FRONT
}

// UpdateDisplay renders the pending events onto the surface and clears
// them. Returns true when the surface changed.
func (m *LEDMatrix) UpdateDisplay(surf *Surface) bool {
	if m.ledEvent == LED_EVENT_NONE {
		return false
	}

	frontColor, err := rgbToPixel(surf.BitsPerPixel(), 0xFF, 0xFF, 0xFF)
	if err != nil {
		// A surface with an unsupported depth cannot exist; see NewSurface.
		panic(err)
	}

	if m.ledEvent&LED_EVENT_BACK != 0 {
		surf.Clear()
	}
	if m.ledEvent&LED_EVENT_FRONT != 0 {
		for i := 0; i < 25; i++ {
			if m.ledState&(1<<i) == 0 {
				continue
			}
			row := i / 5
			col := i % 5
			ltx := LED_HBASE + col*(LED_HSKIP+LED_HSIZE)
			lty := LED_VBASE + row*(LED_VSKIP+LED_VSIZE)
			surf.FillBlock(ltx, lty, ltx+LED_HSIZE, lty+LED_VSIZE, frontColor)
		}
	}

	m.ledEvent = LED_EVENT_NONE
	return true
}

// TextStatus renders the frame's low bits as the four-hex-digit console
// representation.
func (m *LEDMatrix) TextStatus() string {
	return fmt.Sprintf("%04x", m.ledState&0xFFFF)
}

// ledMatrixState is the version-1 snapshot record.
type ledMatrixState struct {
	LEDState uint32 `cbor:"led_state"`
}

func (m *LEDMatrix) SnapshotVersion() (current, minimum int) { return 1, 1 }

func (m *LEDMatrix) SnapshotState() any {
	return &ledMatrixState{LEDState: m.ledState}
}

func (m *LEDMatrix) RestoreState(decode func(dst any) error) error {
	var s ledMatrixState
	if err := decode(&s); err != nil {
		return err
	}
	m.ledState = s.LEDState & LED_MAP_MASK
	m.InvalidateDisplay()
	return nil
}

func (m *LEDMatrix) Reset() {
	m.ledState = 0
	m.ledEvent = LED_EVENT_BACK | LED_EVENT_FRONT
}
