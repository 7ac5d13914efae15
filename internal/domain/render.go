package domain

import (
	"fmt"
	"math/rand/v2"
)

// PixelSink is anything that can light a single matrix cell. Coordinates are
// (x, y) with x horizontal.
type PixelSink interface {
	Width() int
	Height() int
	SetPixel(x, y, brightness int)
}

// Render writes levels to the sink in row-major order. Levels past
// width*height, and cells past len(levels), are left untouched.
func Render(levels []int, width, height int, sink PixelSink) {
	if width <= 0 || height <= 0 {
		return
	}
	n := min(len(levels), width*height)
	for i := range n {
		row, col := i/width, i%width
		sink.SetPixel(col, row, levels[i])
	}
}

// Animate draws frames of random static, each cell drawn from
// [0, maxBrightness) with even draws forced dark. present, if non-nil, is
// called after every frame and is where callers flush the sink and pace the
// animation.
func Animate(frames, width, height, maxBrightness int, sink PixelSink, rnd *rand.Rand, present func() error) error {
	for f := range frames {
		for row := range height {
			for col := range width {
				v := 0
				if maxBrightness > 0 {
					v = rnd.IntN(maxBrightness)
				}
				if v%2 == 0 {
					v = 0
				}
				sink.SetPixel(col, row, v)
			}
		}
		if present == nil {
			continue
		}
		if err := present(); err != nil {
			return fmt.Errorf("present frame %d: %w", f, err)
		}
	}
	return nil
}

// NewFrame fits levels into a width*height frame. Missing cells are dark and
// extra levels are dropped.
func NewFrame(levels []int, width, height, peak int) Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	out := make([]int, width*height)
	copy(out, levels)
	return Frame{Width: width, Height: height, Peak: peak, Levels: out}
}
