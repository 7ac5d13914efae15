package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// HourSource supplies the wall-clock hour (0-23) used to decide when a
// refresh is due.
type HourSource interface {
	CurrentHour() int
}

// ClockHours reads the hour from a clock in a fixed location.
type ClockHours struct {
	clock    clockwork.Clock
	location *time.Location
}

// NewClockHours returns an HourSource backed by c. A nil clock means real
// time and a nil location means time.Local.
func NewClockHours(c clockwork.Clock, loc *time.Location) ClockHours {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.Local
	}
	return ClockHours{clock: c, location: loc}
}

func (h ClockHours) CurrentHour() int {
	return h.clock.Now().In(h.location).Hour()
}
