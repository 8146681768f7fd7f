//go:build !headless

// video_backend_ebiten.go - Windowed LED panel backend (Ebiten)

/*
video_backend_ebiten.go - Ebiten Video Backend

Presents the LED panel surface in a window. The machine pushes RGBA
frames through UpdateFrame from its display tick; Draw blits the latest
frame and overlays the four-hex-digit frame status in the corner.

Host keys map to the board buttons: A / left arrow is button A, B /
right arrow is button B. Press and release both forward, so firmware
polling the input latch sees real edges.

License: GPLv3 or later
*/

package main

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

type EbitenOutput struct {
	running     bool
	window      *ebiten.Image
	width       int
	height      int
	scale       int
	title       string
	status      string
	frameBuffer []byte
	bufferMutex sync.RWMutex
	frameCount  uint64
	vsyncChan   chan struct{}

	buttonHandler func(button int, pressed bool)
}

func NewWindowOutput() (VideoOutput, error) {
	return &EbitenOutput{
		width:       LED_SURFACE_WIDTH,
		height:      LED_SURFACE_HEIGHT,
		scale:       1,
		title:       MACHINE_NAME,
		frameBuffer: make([]byte, LED_SURFACE_WIDTH*LED_SURFACE_HEIGHT*4),
		vsyncChan:   make(chan struct{}, 1),
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.running = true
	ebiten.SetWindowSize(eo.width*eo.scale, eo.height*eo.scale)
	ebiten.SetWindowTitle(eo.title)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("Ebiten error: %v\n", err)
		}
	}()

	// Wait for the first Draw call to ensure Ebiten is ready
	<-eo.vsyncChan
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running = false
	return nil
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()
	if config.Width != 0 {
		eo.width = config.Width
	}
	if config.Height != 0 {
		eo.height = config.Height
	}
	if config.Scale != 0 {
		eo.scale = config.Scale
	}
	if config.Title != "" {
		eo.title = config.Title
	}
	eo.frameBuffer = make([]byte, eo.width*eo.height*4)
	eo.window = nil
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return DisplayConfig{Width: eo.width, Height: eo.height, Scale: eo.scale, Title: eo.title}
}

func (eo *EbitenOutput) UpdateFrame(data []byte) error {
	eo.bufferMutex.Lock()
	copy(eo.frameBuffer, data)
	eo.frameCount++
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return eo.frameCount
}

// SetStatus sets the text overlay (the matrix state in hex).
func (eo *EbitenOutput) SetStatus(s string) {
	eo.bufferMutex.Lock()
	eo.status = s
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) SetButtonHandler(fn func(button int, pressed bool)) {
	eo.bufferMutex.Lock()
	eo.buttonHandler = fn
	eo.bufferMutex.Unlock()
}

// buttonKeys maps host keys to board buttons.
var buttonKeys = map[ebiten.Key]int{
	ebiten.KeyA:          BUTTON_A,
	ebiten.KeyArrowLeft:  BUTTON_A,
	ebiten.KeyB:          BUTTON_B,
	ebiten.KeyArrowRight: BUTTON_B,
}

func (eo *EbitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() || !eo.running {
		return ebiten.Termination
	}

	eo.bufferMutex.RLock()
	handler := eo.buttonHandler
	eo.bufferMutex.RUnlock()
	if handler != nil {
		for key, button := range buttonKeys {
			if inpututil.IsKeyJustPressed(key) {
				handler(button, true)
			}
			if inpututil.IsKeyJustReleased(key) {
				handler(button, false)
			}
		}
	}
	return nil
}

func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}

	eo.bufferMutex.RLock()
	eo.window.WritePixels(eo.frameBuffer)
	status := eo.status
	eo.bufferMutex.RUnlock()
	screen.DrawImage(eo.window, nil)

	if status != "" {
		text.Draw(screen, status, basicfont.Face7x13, 8, eo.height-8, color.White)
	}

	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}
