package main

import "testing"

// scanWord builds an LED bus word: one-hot row in bits 13-15, active-low
// columns in bits 4-12.
func scanWord(row uint32, cols ...int) uint32 {
	var active uint32
	for _, c := range cols {
		active |= 1 << c
	}
	return row<<13 | (^active&0x1FF)<<4
}

// TestLEDMatrixDecodeRow0 verifies the basic decode: row 0 with columns
// 0 and 1 active lights grid (0,0) and (2,0).
func TestLEDMatrixDecodeRow0(t *testing.T) {
	m := NewLEDMatrix()
	m.BusWrite(scanWord(1, 0, 1))

	want := uint32(1<<0 | 1<<2)
	if got := m.LEDState(); got != want {
		t.Fatalf("led_state = 0x%07X, expected 0x%07X", got, want)
	}
	if !m.Lit(0, 0) || !m.Lit(2, 0) {
		t.Fatalf("Expected (0,0) and (2,0) lit")
	}
}

// TestLEDMatrixInvalidRowIgnored verifies that a non-one-hot row selector
// drops the write without touching the frame.
func TestLEDMatrixInvalidRowIgnored(t *testing.T) {
	m := NewLEDMatrix()
	m.BusWrite(scanWord(1, 0))
	before := m.LEDState()

	for _, row := range []uint32{0, 3, 5, 6, 7} {
		m.BusWrite(scanWord(row, 0, 1, 2))
		if got := m.LEDState(); got != before {
			t.Fatalf("Row bits %d changed the frame: 0x%07X", row, got)
		}
	}
}

// TestLEDMatrixRowsAreIndependent verifies the per-row clear masks: a
// scan of one row leaves the other rows' LEDs alone.
func TestLEDMatrixRowsAreIndependent(t *testing.T) {
	m := NewLEDMatrix()

	// All nine columns of each row in turn: the full frame.
	allCols := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	m.BusWrite(scanWord(1, allCols...))
	m.BusWrite(scanWord(2, allCols...))
	m.BusWrite(scanWord(4, allCols...))
	if got := m.LEDState(); got != LED_MAP_MASK {
		t.Fatalf("Full scan = 0x%07X, expected 0x%07X", got, uint32(LED_MAP_MASK))
	}

	// Re-scan row 1 with nothing active: only row 1's LEDs go out.
	m.BusWrite(scanWord(2))
	want := uint32(LED_MAP_MASK) &^ ledRowClearBits[1]
	if got := m.LEDState(); got != want {
		t.Fatalf("After clearing row 1: 0x%07X, expected 0x%07X", got, want)
	}
}

// TestLEDMatrixClearMasksCoverFrame verifies the three row masks tile the
// 25-bit frame exactly.
func TestLEDMatrixClearMasksCoverFrame(t *testing.T) {
	var union uint32
	for i, mask := range ledRowClearBits {
		if union&mask != 0 {
			t.Fatalf("Row %d mask overlaps another row", i)
		}
		union |= mask
	}
	if union != LED_MAP_MASK {
		t.Fatalf("Masks cover 0x%07X, expected 0x%07X", union, uint32(LED_MAP_MASK))
	}
}

// TestLEDMatrixReadMarksRedraw verifies a read returns the frame and
// requests both redraw events.
func TestLEDMatrixReadMarksRedraw(t *testing.T) {
	m := NewLEDMatrix()
	m.BusWrite(scanWord(1, 0))

	surf, err := NewSurface(LED_SURFACE_WIDTH, LED_SURFACE_HEIGHT, 32)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}
	m.UpdateDisplay(surf)
	if m.ledEvent != LED_EVENT_NONE {
		t.Fatalf("Events not consumed by display update")
	}

	if got := m.Read(0, 4); got != 1 {
		t.Fatalf("Read = 0x%X, expected 0x1", got)
	}
	if m.ledEvent != LED_EVENT_FRONT|LED_EVENT_BACK {
		t.Fatalf("Read did not mark redraw events: %d", m.ledEvent)
	}
}

// TestLEDMatrixTextStatus verifies the four-hex-digit console form.
func TestLEDMatrixTextStatus(t *testing.T) {
	m := NewLEDMatrix()
	m.BusWrite(scanWord(1, 0, 1))
	if got := m.TextStatus(); got != "0005" {
		t.Fatalf("TextStatus = %q, expected %q", got, "0005")
	}
}

// TestLEDMatrixRendersBlocks verifies block placement and the background
// clear on a 32-bit surface.
func TestLEDMatrixRendersBlocks(t *testing.T) {
	m := NewLEDMatrix()
	surf, err := NewSurface(LED_SURFACE_WIDTH, LED_SURFACE_HEIGHT, 32)
	if err != nil {
		t.Fatalf("NewSurface: %v", err)
	}

	m.BusWrite(scanWord(1, 0)) // (0,0)
	if !m.UpdateDisplay(surf) {
		t.Fatalf("UpdateDisplay reported no change")
	}

	white, _ := rgbToPixel(32, 0xFF, 0xFF, 0xFF)
	if got := surf.Pixel(LED_HBASE, LED_VBASE); got != white {
		t.Fatalf("Block origin pixel 0x%08X, expected 0x%08X", got, white)
	}
	if got := surf.Pixel(LED_HBASE+LED_HSIZE, LED_VBASE+LED_VSIZE); got != white {
		t.Fatalf("Block corner pixel 0x%08X, expected 0x%08X", got, white)
	}
	if got := surf.Pixel(LED_HBASE+LED_HSIZE+1, LED_VBASE); got != 0 {
		t.Fatalf("Pixel past block edge 0x%08X, expected black", got)
	}

	// Dropping the LED clears its blocks on the next update.
	m.BusWrite(scanWord(1))
	m.UpdateDisplay(surf)
	if got := surf.Pixel(LED_HBASE, LED_VBASE); got != 0 {
		t.Fatalf("Background clear missed the old block: 0x%08X", got)
	}
}

// TestLEDMatrixRendersAllDepths verifies the white fill on every
// supported surface depth.
func TestLEDMatrixRendersAllDepths(t *testing.T) {
	for _, bpp := range []int{8, 15, 16, 24, 32} {
		m := NewLEDMatrix()
		surf, err := NewSurface(LED_SURFACE_WIDTH, LED_SURFACE_HEIGHT, bpp)
		if err != nil {
			t.Fatalf("NewSurface(%d): %v", bpp, err)
		}
		m.BusWrite(scanWord(1, 0))
		m.UpdateDisplay(surf)

		white, err := rgbToPixel(bpp, 0xFF, 0xFF, 0xFF)
		if err != nil {
			t.Fatalf("rgbToPixel(%d): %v", bpp, err)
		}
		if got := surf.Pixel(LED_HBASE, LED_VBASE); got != white {
			t.Fatalf("%d bpp: pixel 0x%08X, expected 0x%08X", bpp, got, white)
		}
	}
}

// TestLEDMatrixSnapshotPostLoad verifies restore re-marks the redraw
// events so the next display tick repaints.
func TestLEDMatrixSnapshotPostLoad(t *testing.T) {
	m := NewLEDMatrix()
	m.BusWrite(scanWord(1, 0))
	surf, _ := NewSurface(LED_SURFACE_WIDTH, LED_SURFACE_HEIGHT, 32)
	m.UpdateDisplay(surf)

	err := m.RestoreState(func(dst any) error {
		*(dst.(*ledMatrixState)) = ledMatrixState{LEDState: 0x3}
		return nil
	})
	if err != nil {
		t.Fatalf("RestoreState: %v", err)
	}
	if m.LEDState() != 0x3 {
		t.Fatalf("led_state = 0x%X after restore, expected 0x3", m.LEDState())
	}
	if m.ledEvent != LED_EVENT_FRONT|LED_EVENT_BACK {
		t.Fatalf("Restore did not mark redraw events")
	}
}

// TestSurfacePixelFormats verifies the rgb packing for each depth.
func TestSurfacePixelFormats(t *testing.T) {
	cases := []struct {
		bpp  int
		want uint32
	}{
		{8, 0xFF},
		{15, 0x7FFF},
		{16, 0xFFFF},
		{24, 0xFFFFFF},
		{32, 0xFFFFFF},
	}
	for _, c := range cases {
		got, err := rgbToPixel(c.bpp, 0xFF, 0xFF, 0xFF)
		if err != nil {
			t.Fatalf("rgbToPixel(%d): %v", c.bpp, err)
		}
		if got != c.want {
			t.Fatalf("White at %d bpp = 0x%X, expected 0x%X", c.bpp, got, c.want)
		}
	}
	if _, err := rgbToPixel(12, 0, 0, 0); err == nil {
		t.Fatalf("Expected error for unsupported depth")
	}
}
