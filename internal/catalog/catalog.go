package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/rec-sniper/internal/booking"
)

// Rule is one recurring release: every week on TriggerDay at
// ReleaseHour:ReleaseMinute (reference timezone) the site opens booking for
// the slot described by Activity/Location/TimeLabel on the rule's target
// date. Rules are built once at startup and never mutated.
type Rule struct {
	ID        string
	Activity  string
	Location  string
	TimeLabel string

	TriggerDay    time.Weekday
	ReleaseHour   int
	ReleaseMinute int

	// Exactly one of TargetWeekday / TargetDaysAhead is set: either "the
	// next occurrence of this weekday strictly after the reference date"
	// or "reference date plus N days".
	TargetWeekday   *time.Weekday
	TargetDaysAhead int

	// ManualOnly excludes the rule from automatic scheduling; it stays
	// resolvable for `run <rule-id>`.
	ManualOnly bool

	AcceptWaitlist bool
}

// TargetDate applies the rule's target-day function to a reference date.
// Pure: same inputs, same date.
func (r Rule) TargetDate(ref time.Time) time.Time {
	ref = midnight(ref)
	if r.TargetWeekday != nil {
		days := (int(*r.TargetWeekday) - int(ref.Weekday()) + 7) % 7
		if days == 0 {
			days = 7 // strictly after the reference date
		}
		return ref.AddDate(0, 0, days)
	}
	return ref.AddDate(0, 0, r.TargetDaysAhead)
}

func (r Rule) Request(targetDate time.Time) booking.Request {
	return booking.Request{
		Activity:       r.Activity,
		Location:       r.Location,
		TimeLabel:      booking.NormalizeTimeLabel(r.TimeLabel),
		Date:           targetDate,
		AcceptWaitlist: r.AcceptWaitlist,
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Spec is the declarative form a rule takes in the config file.
type Spec struct {
	ID             string `json:"id"`
	Activity       string `json:"activity"`
	Location       string `json:"location"`
	Time           string `json:"time"`
	TriggerDay     string `json:"trigger_day"`
	ReleaseTime    string `json:"release_time"` // "HH:MM", 24h, reference timezone
	TargetDay      string `json:"target_day"`
	DaysAhead      int    `json:"days_ahead"`
	ManualOnly     bool   `json:"manual_only"`
	AcceptWaitlist bool   `json:"accept_waitlist"`
}

// Compile validates every spec and builds the immutable catalog. Invalid
// trigger specifications are rejected here, never at fire time.
func Compile(specs []Spec) ([]Rule, error) {
	seen := make(map[string]bool, len(specs))
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		r, err := compileOne(s)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, s.ID, err)
		}
		if seen[r.ID] {
			return nil, booking.ConfigError{Field: "id", Msg: fmt.Sprintf("duplicate rule id %q", r.ID)}
		}
		seen[r.ID] = true
		rules = append(rules, r)
	}
	return rules, nil
}

func compileOne(s Spec) (Rule, error) {
	if strings.TrimSpace(s.ID) == "" {
		return Rule{}, booking.ConfigError{Field: "id", Msg: "required"}
	}
	if strings.TrimSpace(s.Activity) == "" {
		return Rule{}, booking.ConfigError{Field: "activity", Msg: "required"}
	}
	if strings.TrimSpace(s.Location) == "" {
		return Rule{}, booking.ConfigError{Field: "location", Msg: "required"}
	}
	if booking.NormalizeTimeLabel(s.Time) == "" {
		return Rule{}, booking.ConfigError{Field: "time", Msg: "required"}
	}

	trigger, err := ParseWeekday(s.TriggerDay)
	if err != nil {
		return Rule{}, booking.ConfigError{Field: "trigger_day", Msg: err.Error()}
	}
	hour, minute, err := parseHHMM(s.ReleaseTime)
	if err != nil {
		return Rule{}, booking.ConfigError{Field: "release_time", Msg: err.Error()}
	}

	r := Rule{
		ID:             s.ID,
		Activity:       s.Activity,
		Location:       s.Location,
		TimeLabel:      s.Time,
		TriggerDay:     trigger,
		ReleaseHour:    hour,
		ReleaseMinute:  minute,
		ManualOnly:     s.ManualOnly,
		AcceptWaitlist: s.AcceptWaitlist,
	}

	hasTargetDay := strings.TrimSpace(s.TargetDay) != ""
	switch {
	case hasTargetDay && s.DaysAhead != 0:
		return Rule{}, booking.ConfigError{Field: "target_day", Msg: "target_day and days_ahead are mutually exclusive"}
	case hasTargetDay:
		wd, err := ParseWeekday(s.TargetDay)
		if err != nil {
			return Rule{}, booking.ConfigError{Field: "target_day", Msg: err.Error()}
		}
		r.TargetWeekday = &wd
	case s.DaysAhead >= 1:
		r.TargetDaysAhead = s.DaysAhead
	default:
		return Rule{}, booking.ConfigError{Field: "target_day", Msg: "one of target_day or days_ahead (>= 1) is required"}
	}
	return r, nil
}

// Find returns the rule with the given id.
func Find(rules []Rule, id string) (Rule, bool) {
	for _, r := range rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

func ParseWeekday(s string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdays[key]; ok {
		return wd, nil
	}
	// numeric form, 0=Sunday..6=Saturday
	if len(key) == 1 && key[0] >= '0' && key[0] <= '6' {
		return time.Weekday(key[0] - '0'), nil
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func parseHHMM(s string) (int, int, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("invalid time %q (want HH:MM)", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return h, m, nil
}
