package domain

import "time"

// Payload is a successful response body from the contributions endpoint.
// Failed fetches never produce a Payload; they surface as *FetchError.
type Payload struct {
	Body      []byte
	FetchedAt time.Time
}

// Row holds the trimmed cells of one payload line, at most width long.
type Row []string

// Grid is the parsed payload, one Row per matrix row. Rows may be shorter
// than Width; the missing cells count as 0.
type Grid struct {
	Width int
	Rows  []Row
}

// Cells returns the number of parsed cells across all rows.
func (g Grid) Cells() int {
	n := 0
	for _, r := range g.Rows {
		n += len(r)
	}
	return n
}

// Clip returns a grid holding at most height rows.
func (g Grid) Clip(height int) Grid {
	if height < 0 {
		height = 0
	}
	if len(g.Rows) > height {
		return Grid{Width: g.Width, Rows: g.Rows[:height]}
	}
	return g
}

// Frame is a full matrix worth of brightness levels in row-major order.
type Frame struct {
	Width  int   `json:"width"`
	Height int   `json:"height"`
	Peak   int   `json:"peak"`
	Levels []int `json:"levels"`
}

// Lit returns the number of levels above zero.
func (f Frame) Lit() int {
	n := 0
	for _, v := range f.Levels {
		if v > 0 {
			n++
		}
	}
	return n
}

// Snapshot describes a frame that was rendered, for downstream consumers.
type Snapshot struct {
	Username   string    `json:"username"`
	Hour       int       `json:"hour"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Peak       int       `json:"peak"`
	Levels     []int     `json:"levels"`
	RenderedAt time.Time `json:"rendered_at"`
}
