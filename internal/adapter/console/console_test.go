package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestSink_Show(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, 3, 2, 255)

	s.SetPixel(0, 0, 255)
	s.SetPixel(2, 1, 1)
	s.SetPixel(5, 5, 255) // ignored
	require.NoError(t, s.Show())

	want := "+---+\n" +
		"|@  |\n" +
		"|  .|\n" +
		"+---+\n"
	assert.Equal(t, want, buf.String())
}

func TestSink_PixelAndClear(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, 2, 2, 64)

	s.SetPixel(1, 0, 32)
	assert.Equal(t, 32, s.Pixel(1, 0))
	assert.Equal(t, 0, s.Pixel(9, 9))

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Pixel(1, 0))
	assert.Equal(t, 2, s.Width())
	assert.Equal(t, 2, s.Height())
}

func TestSink_ShadeMonotonic(t *testing.T) {
	s := NewSink(&bytes.Buffer{}, 1, 1, 255)
	prev := -1
	for v := 0; v <= 255; v++ {
		i := bytes.IndexByte([]byte(shades), s.shade(v))
		assert.GreaterOrEqual(t, i, prev)
		prev = i
	}
}

func TestSink_WriteError(t *testing.T) {
	s := NewSink(failingWriter{}, 1, 1, 255)
	err := s.Show()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "console")
}
