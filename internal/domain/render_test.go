package domain

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pixel struct{ x, y, v int }

type recordingSink struct {
	w, h   int
	pixels []pixel
}

func (s *recordingSink) Width() int  { return s.w }
func (s *recordingSink) Height() int { return s.h }
func (s *recordingSink) SetPixel(x, y, v int) {
	s.pixels = append(s.pixels, pixel{x, y, v})
}

func TestRender_RowMajorToXY(t *testing.T) {
	sink := &recordingSink{w: 3, h: 2}
	Render([]int{10, 11, 12, 20, 21, 22}, 3, 2, sink)

	assert.Equal(t, []pixel{
		{0, 0, 10}, {1, 0, 11}, {2, 0, 12},
		{0, 1, 20}, {1, 1, 21}, {2, 1, 22},
	}, sink.pixels)
}

func TestRender_IgnoresExcessLevels(t *testing.T) {
	sink := &recordingSink{w: 2, h: 1}
	Render([]int{1, 2, 3, 4}, 2, 1, sink)

	assert.Equal(t, []pixel{{0, 0, 1}, {1, 0, 2}}, sink.pixels)
}

func TestRender_ShortLevels(t *testing.T) {
	sink := &recordingSink{w: 2, h: 2}
	Render([]int{5}, 2, 2, sink)

	assert.Equal(t, []pixel{{0, 0, 5}}, sink.pixels)
}

func TestRender_ZeroGeometry(t *testing.T) {
	sink := &recordingSink{}
	Render([]int{1, 2}, 0, 2, sink)
	assert.Empty(t, sink.pixels)
}

func TestAnimate(t *testing.T) {
	sink := &recordingSink{w: 15, h: 7}
	presented := 0

	err := Animate(4, 15, 7, 255, sink, rand.New(rand.NewPCG(1, 2)), func() error {
		presented++
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 4, presented)
	require.Len(t, sink.pixels, 4*15*7)

	dark := 0
	for _, p := range sink.pixels {
		assert.GreaterOrEqual(t, p.v, 0)
		assert.Less(t, p.v, 255)
		if p.v == 0 {
			dark++
			continue
		}
		assert.Equal(t, 1, p.v%2, "lit cells are odd draws")
	}
	assert.Positive(t, dark)
	assert.Less(t, dark, len(sink.pixels))

	// first frame walks every cell with x horizontal
	assert.Equal(t, pixel{0, 0, sink.pixels[0].v}, sink.pixels[0])
	assert.Equal(t, 14, sink.pixels[14].x)
	assert.Equal(t, 1, sink.pixels[15].y)
}

func TestAnimate_Deterministic(t *testing.T) {
	a := &recordingSink{w: 3, h: 3}
	b := &recordingSink{w: 3, h: 3}

	require.NoError(t, Animate(2, 3, 3, 64, a, rand.New(rand.NewPCG(7, 7)), nil))
	require.NoError(t, Animate(2, 3, 3, 64, b, rand.New(rand.NewPCG(7, 7)), nil))
	assert.Equal(t, a.pixels, b.pixels)
}

func TestAnimate_PresentError(t *testing.T) {
	sink := &recordingSink{w: 2, h: 2}
	boom := errors.New("i2c nack")

	err := Animate(3, 2, 2, 255, sink, rand.New(rand.NewPCG(1, 1)), func() error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Len(t, sink.pixels, 4)
}

func TestAnimate_ZeroBrightnessStaysDark(t *testing.T) {
	sink := &recordingSink{w: 2, h: 2}
	require.NoError(t, Animate(1, 2, 2, 0, sink, rand.New(rand.NewPCG(1, 1)), nil))
	for _, p := range sink.pixels {
		assert.Zero(t, p.v)
	}
}

func TestNewFrame(t *testing.T) {
	f := NewFrame([]int{1, 0, 3}, 2, 2, 3)
	assert.Equal(t, []int{1, 0, 3, 0}, f.Levels)
	assert.Equal(t, 2, f.Lit())
	assert.Equal(t, 3, f.Peak)

	f = NewFrame([]int{1, 2, 3, 4, 5}, 2, 2, 5)
	assert.Equal(t, []int{1, 2, 3, 4}, f.Levels)
}
