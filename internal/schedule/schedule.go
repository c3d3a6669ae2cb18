package schedule

import (
	"time"

	"github.com/example/rec-sniper/internal/catalog"
)

// LeadBuffer is how far before the official release a scheduled attempt
// starts, absorbing login and navigation latency so the claim click lands
// as close to the release instant as possible.
const LeadBuffer = 2 * time.Minute

// releaseAt is the rule's official release instant on the day of ref,
// built as a wall-clock time in ref's location so DST shifts are honored.
func releaseAt(r catalog.Rule, ref time.Time) time.Time {
	return time.Date(ref.Year(), ref.Month(), ref.Day(), r.ReleaseHour, r.ReleaseMinute, 0, 0, ref.Location())
}

// ResolveTargetDate returns the calendar date being contended for at `now`.
// If today is the trigger day and the release time has already passed, this
// week's window is closed, so the reference date advances a day before the
// rule's target-day function applies.
func ResolveTargetDate(r catalog.Rule, now time.Time) time.Time {
	ref := now
	if now.Weekday() == r.TriggerDay && !now.Before(releaseAt(r, now)) {
		ref = ref.AddDate(0, 0, 1)
	}
	return r.TargetDate(ref)
}

// NextTrigger returns the next lead-adjusted firing instant, strictly after
// `now`. An instant exactly equal to now counts as already past.
func NextTrigger(r catalog.Rule, now time.Time) time.Time {
	days := (int(r.TriggerDay) - int(now.Weekday()) + 7) % 7
	day := now.AddDate(0, 0, days)
	cand := releaseAt(r, day).Add(-LeadBuffer)
	if !cand.After(now) {
		cand = releaseAt(r, day.AddDate(0, 0, 7)).Add(-LeadBuffer)
	}
	return cand
}

// ReleaseInstant returns the official release instant for the firing
// scheduled at fireAt, the lead-adjusted instant NextTrigger produced. It is
// derived from the schedule itself, not rebuilt from fireAt's calendar day:
// a release inside the lead buffer after midnight fires on the previous day,
// where a wall-clock rebuild would land a day in the past.
func ReleaseInstant(fireAt time.Time) time.Time {
	return fireAt.Add(LeadBuffer)
}

// Status is a read-only projection of one rule's schedule state.
type Status struct {
	Rule          catalog.Rule
	NextFire      time.Time
	TargetDate    time.Time
	Pending       bool
	FiredThisWeek bool
}

// StatusAt projects the whole catalog at `now`. It never mutates schedule
// state; manual-only rules appear with Pending=false.
func StatusAt(rules []catalog.Rule, now time.Time) []Status {
	out := make([]Status, 0, len(rules))
	for _, r := range rules {
		out = append(out, Status{
			Rule:          r,
			NextFire:      NextTrigger(r, now),
			TargetDate:    ResolveTargetDate(r, now),
			Pending:       !r.ManualOnly,
			FiredThisWeek: firedThisWeek(r, now),
		})
	}
	return out
}

// firedThisWeek reports whether this week's lead-adjusted instant has
// already passed. Weeks start on Sunday in the reference timezone.
func firedThisWeek(r catalog.Rule, now time.Time) bool {
	weekStart := now.AddDate(0, 0, -int(now.Weekday()))
	occ := releaseAt(r, weekStart.AddDate(0, 0, int(r.TriggerDay))).Add(-LeadBuffer)
	return !occ.After(now)
}
