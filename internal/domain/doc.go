// Package domain turns contribution-history payloads into LED brightness
// frames.
//
// # Data Source
//
// The contributions endpoint (github-contributions-api.deno.dev by default)
// serves a plain-text grid for a user when asked for the ".text" response type:
//
//	<total>                       <- only without ?no-total=true
//	0,1,0,3,0,0,2,0,0,0,0,1,4,0,0,
//	2,0,0,0,5,1,0,0,0,0,0,0,0,0,0,
//	...
//
// Each line is one weekday, each field one week, oldest first. Lines usually
// end with a trailing delimiter, and the current week may be short or hold
// empty cells for days that have not happened yet.
//
// # Pipeline
//
//	Parse      raw text -> Grid (last width fields per line, trimmed)
//	Normalize  Grid -> brightness levels scaled against the grid peak
//	Render     levels -> PixelSink, row-major
//	Animate    random "static" frames shown before each Render
//
// # Axis convention
//
// Linear index i maps to row, col = i / width, i % width, and the sink is
// always addressed as SetPixel(col, row, v): x is horizontal, y is vertical.
// Render and Animate both follow it.
//
// # Cell values
//
// Cells made only of ASCII digits are counts. Anything else, including empty
// cells, signs and "n/a", counts as 0. A grid whose peak is 0 normalizes to an
// all-dark frame instead of dividing by zero.
package domain
