package booking

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeTimeLabel canonicalizes a displayed slot time like "08:15 AM" or
// "8:15am" to "8:15 am" so matching against row text is case and
// leading-zero insensitive.
func NormalizeTimeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), " ")
	// "8:15am" -> "8:15 am"
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suffix) && !strings.HasSuffix(s, " "+suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix)) + " " + suffix
		}
	}
	s = strings.TrimPrefix(s, "0")
	return s
}

// ParseDate parses the day-month(abbreviated)-year form used at the config
// boundary, e.g. "03-Feb-2026", as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2-Jan-2006", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want DD-Mon-YYYY, e.g. 03-Feb-2026)", s)
	}
	return t, nil
}

// FirstWord returns the leading word of a location name, the token used for
// loose location matching.
func FirstWord(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
