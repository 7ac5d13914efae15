package domain

import "strconv"

// Normalize scales every cell of the grid to [0, maxBrightness] against the
// grid peak, in row-major order. Each row contributes exactly grid.Width
// levels; cells missing from short rows count as 0. An all-zero grid yields
// all-zero levels.
func Normalize(grid Grid, maxBrightness int) ([]int, error) {
	if grid.Cells() == 0 {
		return nil, ErrEmptyGrid
	}
	counts := Counts(grid)
	return Scale(counts, Peak(counts), maxBrightness), nil
}

// Counts converts the grid cells to counts, padding short rows with zeros.
func Counts(grid Grid) []int {
	counts := make([]int, 0, len(grid.Rows)*grid.Width)
	for _, row := range grid.Rows {
		for col := 0; col < grid.Width; col++ {
			if col < len(row) {
				counts = append(counts, ParseCount(row[col]))
			} else {
				counts = append(counts, 0)
			}
		}
	}
	return counts
}

// Peak returns the largest count, or 0 for an empty slice.
func Peak(counts []int) int {
	peak := 0
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}
	return peak
}

// Scale maps counts linearly onto [0, maxBrightness] with peak as the
// denominator, rounding down.
func Scale(counts []int, peak, maxBrightness int) []int {
	levels := make([]int, len(counts))
	if peak <= 0 || maxBrightness <= 0 {
		return levels
	}
	for i, c := range counts {
		if c <= 0 {
			continue
		}
		if c > peak {
			c = peak
		}
		levels[i] = int(int64(c) * int64(maxBrightness) / int64(peak))
	}
	return levels
}

// ParseCount reads a cell as a non-negative count. Cells that are not plain
// ASCII digits, or that overflow, are 0.
func ParseCount(cell string) int {
	if cell == "" {
		return 0
	}
	for i := 0; i < len(cell); i++ {
		if cell[i] < '0' || cell[i] > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0
	}
	return n
}
