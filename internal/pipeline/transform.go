package pipeline

import (
	"errors"

	"github.com/couchcryptid/contrib-matrix/internal/domain"
)

// FrameTransformer implements Transformer with the domain parse and normalize
// functions, fitted to a fixed matrix.
type FrameTransformer struct {
	width         int
	height        int
	maxBrightness int
	leadingTotal  bool
}

// NewTransformer creates a FrameTransformer for a width x height matrix.
// leadingTotal drops a running-total header line from each payload.
func NewTransformer(width, height, maxBrightness int, leadingTotal bool) *FrameTransformer {
	return &FrameTransformer{
		width:         width,
		height:        height,
		maxBrightness: maxBrightness,
		leadingTotal:  leadingTotal,
	}
}

// Transform parses the payload, keeps the rows that fit the matrix, and
// normalizes them against their peak. A grid with no cells becomes an
// all-dark frame. Rows the payload does not cover stay dark.
func (t *FrameTransformer) Transform(p domain.Payload) (domain.Frame, error) {
	grid, err := domain.Parse(string(p.Body), t.width, t.leadingTotal)
	if err != nil {
		return domain.Frame{}, err
	}
	grid = grid.Clip(t.height)

	levels, err := domain.Normalize(grid, t.maxBrightness)
	if errors.Is(err, domain.ErrEmptyGrid) {
		return domain.NewFrame(nil, t.width, t.height, 0), nil
	}
	if err != nil {
		return domain.Frame{}, err
	}

	return domain.NewFrame(levels, t.width, t.height, domain.Peak(domain.Counts(grid))), nil
}
