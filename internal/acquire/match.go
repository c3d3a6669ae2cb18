package acquire

import (
	"context"
	"strings"

	"github.com/example/rec-sniper/internal/booking"
	"github.com/example/rec-sniper/internal/browser"
)

// matchesRow reports whether a row's combined text covers the requested
// activity, time label and location. Location matching is loose by default:
// only the first word has to appear, tolerating the site's inconsistent
// venue formatting.
func matchesRow(text string, req booking.Request, firstWordLocation bool) bool {
	text = strings.ToLower(text)
	if !strings.Contains(text, strings.ToLower(req.Activity)) {
		return false
	}
	if !strings.Contains(text, booking.NormalizeTimeLabel(req.TimeLabel)) {
		return false
	}
	loc := req.Location
	if firstWordLocation {
		loc = booking.FirstWord(loc)
	}
	return strings.Contains(text, strings.ToLower(loc))
}

// scan walks all visible rows and returns the first match. It never clicks.
func scan(ctx context.Context, sess browser.Session, req booking.Request, firstWordLocation bool) (browser.Element, bool, error) {
	rows, err := sess.FindAll(ctx, selResultRow)
	if err != nil {
		return nil, false, err
	}
	for _, row := range rows {
		text, err := row.Text(ctx)
		if err != nil {
			continue
		}
		if matchesRow(text, req, firstWordLocation) {
			return row, true, nil
		}
	}
	return nil, false, nil
}

// resolve scans the rows and, on a match, invokes the claim control, or the
// waitlist control when the request accepts it. full and not-found perform
// no click. A non-nil error alongside available/waitlist means the control
// was located but the click itself failed.
func resolve(ctx context.Context, sess browser.Session, req booking.Request, firstWordLocation bool) (booking.SlotStatus, error) {
	row, ok, err := scan(ctx, sess, req, firstWordLocation)
	if err != nil {
		return booking.SlotNotFound, err
	}
	if !ok {
		return booking.SlotNotFound, nil
	}

	if claim, err := row.FindByText(ctx, selRowControl, claimLabel); err == nil {
		return booking.SlotAvailable, claim.Click(ctx)
	}

	if waitlist, err := row.FindByText(ctx, selRowControl, waitlistLabel); err == nil {
		if !req.AcceptWaitlist {
			return booking.SlotFull, nil
		}
		return booking.SlotWaitlist, waitlist.Click(ctx)
	}

	// Row matched but carries no actionable control; treat like a full
	// slot with no waitlist offered.
	return booking.SlotFull, nil
}
