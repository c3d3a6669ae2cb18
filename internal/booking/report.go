package booking

import (
	"fmt"
	"strings"
	"time"
)

// Line renders one outcome as a single human-readable log line.
func Line(o Outcome) string {
	status := "FAILED"
	switch {
	case o.Success && o.Waitlisted:
		status = "WAITLISTED"
	case o.Success && o.Assumed:
		status = "BOOKED (unverified)"
	case o.Success:
		status = "BOOKED"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q %s %s @ %s", status, o.Activity, o.Date.Format("02-Jan-2006"), o.TimeLabel, o.Location)
	if o.Message != "" {
		fmt.Fprintf(&b, ": %s", o.Message)
	}
	if o.Err != "" {
		fmt.Fprintf(&b, " (%s)", o.Err)
	}
	return b.String()
}

// Summary tallies a batch of outcomes into one line.
func Summary(outcomes []Outcome) string {
	var booked, waitlisted, failed int
	for _, o := range outcomes {
		switch {
		case o.Success && o.Waitlisted:
			waitlisted++
		case o.Success:
			booked++
		default:
			failed++
		}
	}
	return fmt.Sprintf("%d booked, %d waitlisted, %d failed (%d total)",
		booked, waitlisted, failed, len(outcomes))
}

// AllSucceeded reports whether every attempt in the batch ended in success
// (booked or waitlisted). Drives the process exit code.
func AllSucceeded(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if !o.Success {
			return false
		}
	}
	return true
}

// Failure builds a terminal failed outcome for req.
func Failure(req Request, now time.Time, message string, err error) Outcome {
	o := Outcome{
		Activity:  req.Activity,
		Location:  req.Location,
		TimeLabel: req.TimeLabel,
		Date:      req.Date,
		Message:   message,
		At:        now,
	}
	if err != nil {
		o.Err = err.Error()
	}
	return o
}
