package clock

import (
	"fmt"
	"time"
)

// ReferenceZone is the timezone the booking site publishes release times in.
// All schedule math happens in this zone, never the host's local zone.
const ReferenceZone = "America/Vancouver"

type Clock struct {
	loc *time.Location
}

func New() (Clock, error) {
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		return Clock{}, fmt.Errorf("load reference timezone %s: %w", ReferenceZone, err)
	}
	return Clock{loc: loc}, nil
}

func (c Clock) Location() *time.Location { return c.loc }

func (c Clock) Now() time.Time { return time.Now().In(c.loc) }

// In converts t into the reference zone.
func (c Clock) In(t time.Time) time.Time { return t.In(c.loc) }
