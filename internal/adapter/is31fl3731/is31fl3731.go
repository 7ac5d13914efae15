// Package is31fl3731 drives an IS31FL3731 charlieplexed LED controller over
// I²C, wired as the Adafruit 15x7 CharlieWing.
//
// Pixels are buffered in memory. Show writes the buffer into the frame page
// that is not on screen and then switches the picture display register to
// it, so a partially written frame is never visible.
package is31fl3731

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// DefaultAddr is the controller address with the AD pin tied to GND.
const DefaultAddr uint16 = 0x74

const (
	regCommand = 0xFD // selects the page targeted by following writes

	pageFunction = 0x0B

	// function page registers
	regConfig       = 0x00
	regPictureFrame = 0x01
	regAudioSync    = 0x06
	regShutdown     = 0x0A

	// frame page layout
	offLEDControl = 0x00
	offBlink      = 0x12
	offPWM        = 0x24

	ledControlBytes = 18
	pwmBytes        = 144
	pwmChunk        = 24

	modePicture = 0x00
)

// Opts is the configuration for the matrix.
type Opts struct {
	W int // Width (default 15)
	H int // Height (default 7)
}

// Dev is a handle to the controller. It implements domain.PixelSink.
type Dev struct {
	d *i2c.Dev
	w int
	h int

	buf     [pwmBytes]byte
	visible byte // frame page currently on screen
}

// New initialises the controller on bus at addr, clears both frame pages and
// shows frame 0. opts may be nil for the CharlieWing defaults.
func New(bus i2c.Bus, addr uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &Opts{W: 15, H: 7}
	}
	if opts.W <= 0 || opts.W > 15 || opts.H <= 0 || opts.H > 7 {
		return nil, errors.New("is31fl3731: CharlieWing geometry is at most 15x7")
	}

	d := &Dev{d: &i2c.Dev{Bus: bus, Addr: addr}, w: opts.W, h: opts.H}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dev) init() error {
	if err := d.shutdown(true); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	if err := d.shutdown(false); err != nil {
		return err
	}
	if err := d.writeRegs(pageFunction, regConfig, modePicture); err != nil {
		return err
	}
	if err := d.writeRegs(pageFunction, regAudioSync, 0); err != nil {
		return err
	}

	enabled := make([]byte, ledControlBytes)
	for i := range enabled {
		enabled[i] = 0xFF
	}
	for frame := byte(0); frame < 2; frame++ {
		if err := d.writeRegs(frame, offLEDControl, enabled...); err != nil {
			return err
		}
		if err := d.writeRegs(frame, offBlink, make([]byte, ledControlBytes)...); err != nil {
			return err
		}
		if err := d.writePWM(frame); err != nil {
			return err
		}
	}
	return d.showFrame(0)
}

func (d *Dev) String() string {
	return fmt.Sprintf("is31fl3731.Dev{%dx%d}", d.w, d.h)
}

func (d *Dev) Width() int  { return d.w }
func (d *Dev) Height() int { return d.h }

// SetPixel buffers a brightness for (x, y). Out of range coordinates are
// ignored and brightness is clamped to 0-255.
func (d *Dev) SetPixel(x, y, brightness int) {
	if x < 0 || x >= d.w || y < 0 || y >= d.h {
		return
	}
	d.buf[pixelAddr(x, y)] = byte(min(max(brightness, 0), 255))
}

// Show pushes the buffer to the hidden frame page and flips to it.
func (d *Dev) Show() error {
	hidden := d.visible ^ 1
	if err := d.writePWM(hidden); err != nil {
		return err
	}
	return d.showFrame(hidden)
}

// Clear blanks the buffer and the display.
func (d *Dev) Clear() error {
	d.buf = [pwmBytes]byte{}
	return d.Show()
}

// Halt blanks the display and puts the controller into software shutdown.
func (d *Dev) Halt() error {
	if err := d.Clear(); err != nil {
		return err
	}
	return d.shutdown(true)
}

func (d *Dev) shutdown(on bool) error {
	v := byte(1)
	if on {
		v = 0
	}
	return d.writeRegs(pageFunction, regShutdown, v)
}

func (d *Dev) showFrame(frame byte) error {
	if err := d.writeRegs(pageFunction, regPictureFrame, frame); err != nil {
		return err
	}
	d.visible = frame
	return nil
}

func (d *Dev) writePWM(frame byte) error {
	for off := 0; off < pwmBytes; off += pwmChunk {
		if err := d.writeRegs(frame, byte(offPWM+off), d.buf[off:off+pwmChunk]...); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) writeRegs(page, reg byte, data ...byte) error {
	if err := d.d.Tx([]byte{regCommand, page}, nil); err != nil {
		return fmt.Errorf("is31fl3731: select page %#x: %w", page, err)
	}
	w := make([]byte, 0, len(data)+1)
	w = append(w, reg)
	w = append(w, data...)
	if err := d.d.Tx(w, nil); err != nil {
		return fmt.Errorf("is31fl3731: write %#x/%#x: %w", page, reg, err)
	}
	return nil
}

// pixelAddr maps CharlieWing (x, y) to the controller's LED index. The left
// eight columns are wired bottom-up on matrix A, the rest mirrored on
// matrix B.
func pixelAddr(x, y int) int {
	if x > 7 {
		x = 15 - x
		y += 8
	} else {
		y = 7 - y
	}
	return x*16 + y
}
