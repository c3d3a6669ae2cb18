package booking

import "time"

// Request describes one slot acquisition attempt. Immutable for the
// duration of the attempt.
type Request struct {
	Activity  string
	Location  string
	TimeLabel string
	Date      time.Time

	AcceptWaitlist bool
}

// SlotStatus is the result of scanning the results view for a matching row.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotWaitlist  SlotStatus = "waitlist"
	SlotFull      SlotStatus = "full"
	SlotNotFound  SlotStatus = "not-found"
)

// Outcome is the single terminal record of one attempt. Produced exactly
// once per Request, never mutated after creation.
type Outcome struct {
	Success    bool
	Waitlisted bool

	// Assumed marks a success that was reported without detecting a
	// confirmation marker (order placement attempted but unverifiable).
	Assumed bool

	Activity  string
	Location  string
	TimeLabel string
	Date      time.Time

	Message string
	Err     string

	// Warnings records every tolerated skip (missing marker, failed
	// filter) so downstream consumers can see what was glossed over.
	Warnings []string

	At time.Time
}

func (o Outcome) Failed() bool { return !o.Success }
