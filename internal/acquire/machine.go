package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/example/rec-sniper/internal/booking"
	"github.com/example/rec-sniper/internal/browser"
)

// Tolerances are the configurable leniency policies of the workflow.
type Tolerances struct {
	FirstWordLocation bool
	AssumeUnverified  bool
}

// Machine drives one acquisition request through the site's multi-step
// workflow: session → login → filters → slot scan → claim/waitlist →
// checkout. Each run owns its session exclusively and always produces
// exactly one outcome; nothing escapes to the caller.
type Machine struct {
	NewSession func() (browser.Session, error)
	BaseURL    string
	Username   string
	Password   string

	Tol Tolerances
	Log *slog.Logger
	Now func() time.Time

	// ScreenshotDir, when set, receives a capture of the page on
	// unexpected failures.
	ScreenshotDir string

	// OnAuthenticated fires once login is verified, before any further
	// stage. Used to persist the session cookies for reuse.
	OnAuthenticated func(browser.Session)
}

// Run executes one attempt. releaseAt, when non-nil, is the official
// release instant: the machine pre-stages through the scan during the lead
// buffer, then holds the claim click until the instant is reached. The
// session is released on every exit path, and panics from the automation
// layer are converted into a failed outcome.
func (m *Machine) Run(ctx context.Context, req booking.Request, releaseAt *time.Time) (out booking.Outcome) {
	var warnings []string
	warn := func(msg string) {
		warnings = append(warnings, msg)
		m.Log.Warn(msg, "activity", req.Activity)
	}

	defer func() {
		if r := recover(); r != nil {
			out = booking.Failure(req, m.Now(), "attempt aborted", fmt.Errorf("panic: %v", r))
		}
		out.Warnings = warnings
	}()

	sess, err := m.NewSession()
	if err != nil {
		return booking.Failure(req, m.Now(), "session initialization failed", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			m.Log.Warn("session close failed", "err", cerr)
		}
	}()

	if err := m.login(ctx, sess); err != nil {
		m.capture(ctx, sess, "login")
		return booking.Failure(req, m.Now(), "login failed", fmt.Errorf("%w: %v", booking.ErrSession, err))
	}

	m.applyFilters(ctx, sess, req, warn)

	if releaseAt != nil {
		m.holdForRelease(ctx, sess, req, *releaseAt, warn)
	}

	status, err := resolve(ctx, sess, req, m.Tol.FirstWordLocation)
	if err != nil && status != booking.SlotAvailable && status != booking.SlotWaitlist {
		m.capture(ctx, sess, "scan")
		return booking.Failure(req, m.Now(), "slot scan failed", err)
	}
	switch status {
	case booking.SlotNotFound:
		return booking.Failure(req, m.Now(), "No matching slot found", booking.ErrNotFound)
	case booking.SlotFull:
		return booking.Failure(req, m.Now(), "Slot is full", booking.ErrSlotFull)
	}
	if err != nil {
		// the slot's control was located but the click itself failed
		m.capture(ctx, sess, "claim")
		msg := "claim action failed"
		if status == booking.SlotWaitlist {
			msg = "waitlist action failed"
		}
		return booking.Failure(req, m.Now(), msg, err)
	}

	attempted, verified := m.finalize(ctx, sess, warn)

	o := booking.Outcome{
		Activity:   req.Activity,
		Location:   req.Location,
		TimeLabel:  req.TimeLabel,
		Date:       req.Date,
		Waitlisted: status == booking.SlotWaitlist,
		At:         m.Now(),
	}
	switch {
	case verified:
		o.Success = true
		o.Message = "Booking confirmed"
		if o.Waitlisted {
			o.Message = "Added to waitlist"
		}
	case attempted && m.Tol.AssumeUnverified:
		o.Success = true
		o.Assumed = true
		o.Message = "Order placed; confirmation not detected"
	default:
		o.Message = "could not verify booking completion"
		m.capture(ctx, sess, "finalize")
	}
	return o
}

// login verifies the signed-in marker, submitting credentials only when it
// is absent. No retry within an attempt.
func (m *Machine) login(ctx context.Context, sess browser.Session) error {
	if err := sess.Navigate(ctx, m.BaseURL); err != nil {
		return err
	}
	if m.signedIn(ctx, sess) {
		m.Log.Debug("existing session still authenticated")
		return nil
	}

	if err := sess.Navigate(ctx, m.BaseURL+signinPath); err != nil {
		return err
	}
	if err := sess.Fill(ctx, selLoginUsername, m.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := sess.Fill(ctx, selLoginPassword, m.Password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	submit, err := sess.Find(ctx, selLoginSubmit)
	if err != nil {
		return fmt.Errorf("locate sign-in control: %w", err)
	}
	if err := submit.Click(ctx); err != nil {
		return fmt.Errorf("submit sign-in: %w", err)
	}
	if err := sess.WaitFor(ctx, selSignedInMarker, 0); err != nil {
		return fmt.Errorf("signed-in marker not detected: %w", err)
	}
	if m.OnAuthenticated != nil {
		m.OnAuthenticated(sess)
	}
	return nil
}

func (m *Machine) signedIn(ctx context.Context, sess browser.Session) bool {
	return sess.WaitFor(ctx, selSignedInMarker, markerWait) == nil
}

// applyFilters narrows the results view to the target activity and date.
// Failures here are warnings, not aborts: the scan re-verifies every row
// regardless of whether the filters visibly applied.
func (m *Machine) applyFilters(ctx context.Context, sess browser.Session, req booking.Request, warn func(string)) {
	if err := sess.Navigate(ctx, m.BaseURL+searchPath); err != nil {
		warn(fmt.Sprintf("open search view: %v", err))
		return
	}
	if err := sess.Fill(ctx, selKeywordInput, req.Activity); err != nil {
		warn(fmt.Sprintf("activity filter not applied: %v", err))
	}
	if err := sess.Fill(ctx, selDateInput, req.Date.Format("02-Jan-2006")); err != nil {
		warn(fmt.Sprintf("date filter not applied: %v", err))
	}
	search, err := sess.FindByText(ctx, "button", searchLabel)
	if err != nil {
		warn(fmt.Sprintf("search control not found: %v", err))
		return
	}
	if err := search.Click(ctx); err != nil {
		warn(fmt.Sprintf("search click failed: %v", err))
	}
}

// holdForRelease keeps the attempt parked at the scan stage until the
// release instant. Far out it re-scans every couple of seconds to stay
// positioned; close in it tightens to sub-second clock polling so the claim
// click lands as near the instant as achievable.
func (m *Machine) holdForRelease(ctx context.Context, sess browser.Session, req booking.Request, releaseAt time.Time, warn func(string)) {
	m.Log.Info("pre-staged, holding for release", "release_at", releaseAt, "lead", releaseAt.Sub(m.Now()))
	seen := false
	err := waitUntil(ctx, m.Now, releaseAt, func() {
		if _, ok, err := scan(ctx, sess, req, m.Tol.FirstWordLocation); err == nil && ok && !seen {
			seen = true
			m.Log.Info("target row already visible before release")
		}
	})
	if err != nil {
		warn(fmt.Sprintf("release wait interrupted: %v", err))
	}
}

// finalize walks the confirmation flow. Sub-step markers are not
// contractually stable, so each missing marker is tolerated with a recorded
// warning and the flow proceeds optimistically. Returns whether a placement
// click happened and whether a confirmation marker was seen afterward.
func (m *Machine) finalize(ctx context.Context, sess browser.Session, warn func(string)) (attempted, verified bool) {
	m.subStep(ctx, sess, "attendee confirmation", selAttendeeMarker, warn)
	m.subStep(ctx, sess, "fee option", selFeeMarker, warn)

	attempted = placeOrder(ctx, sess, warn)
	if !attempted {
		return false, false
	}
	if err := sess.WaitFor(ctx, selConfirmation, confirmWait); err != nil {
		warn(fmt.Sprintf("confirmation marker not detected: %v", err))
		return true, false
	}
	return true, true
}

func (m *Machine) subStep(ctx context.Context, sess browser.Session, name, marker string, warn func(string)) {
	if err := sess.WaitFor(ctx, marker, markerWait); err != nil {
		warn(fmt.Sprintf("%s marker not detected; proceeding", name))
		return
	}
	next, err := sess.FindByText(ctx, "button", nextLabel)
	if err != nil {
		warn(fmt.Sprintf("%s control not found; proceeding", name))
		return
	}
	if err := next.Click(ctx); err != nil {
		warn(fmt.Sprintf("%s click failed; proceeding: %v", name, err))
	}
}

func (m *Machine) capture(ctx context.Context, sess browser.Session, stage string) {
	if m.ScreenshotDir == "" {
		return
	}
	path := filepath.Join(m.ScreenshotDir, fmt.Sprintf("recsniper-%s-%s.png", stage, m.Now().Format("20060102-150405")))
	if err := sess.Screenshot(ctx, path); err != nil {
		m.Log.Debug("screenshot failed", "stage", stage, "err", err)
		return
	}
	m.Log.Info("saved screenshot", "stage", stage, "path", path)
}
