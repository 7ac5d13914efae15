// Package console is a text pixel sink for running without LED hardware.
package console

import (
	"fmt"
	"io"
	"strings"
)

// shades runs from dark to fully lit.
const shades = " .:-=+*#%@"

// Sink buffers pixels and prints them as shaded characters on Show.
type Sink struct {
	w, h          int
	maxBrightness int
	pix           []int
	out           io.Writer
}

// NewSink creates a width x height sink that shades against maxBrightness.
func NewSink(out io.Writer, width, height, maxBrightness int) *Sink {
	if maxBrightness <= 0 {
		maxBrightness = 255
	}
	return &Sink{
		w:             width,
		h:             height,
		maxBrightness: maxBrightness,
		pix:           make([]int, width*height),
		out:           out,
	}
}

func (s *Sink) Width() int  { return s.w }
func (s *Sink) Height() int { return s.h }

func (s *Sink) SetPixel(x, y, brightness int) {
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return
	}
	s.pix[y*s.w+x] = brightness
}

// Pixel returns the buffered brightness at (x, y).
func (s *Sink) Pixel(x, y int) int {
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return 0
	}
	return s.pix[y*s.w+x]
}

// Show writes the buffer framed by a border, one text line per matrix row.
func (s *Sink) Show() error {
	var b strings.Builder
	border := "+" + strings.Repeat("-", s.w) + "+\n"
	b.WriteString(border)
	for y := range s.h {
		b.WriteByte('|')
		for x := range s.w {
			b.WriteByte(s.shade(s.pix[y*s.w+x]))
		}
		b.WriteString("|\n")
	}
	b.WriteString(border)

	if _, err := io.WriteString(s.out, b.String()); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}

// Clear blanks the buffer and prints the empty frame.
func (s *Sink) Clear() error {
	clear(s.pix)
	return s.Show()
}

func (s *Sink) shade(v int) byte {
	if v <= 0 {
		return shades[0]
	}
	if v >= s.maxBrightness {
		return shades[len(shades)-1]
	}
	// any lit pixel gets at least the first visible shade
	i := 1 + v*(len(shades)-2)/s.maxBrightness
	return shades[i]
}
