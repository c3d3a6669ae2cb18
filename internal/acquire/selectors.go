package acquire

import "time"

// Selectors and labels for the booking site. The page structure is not
// contractually stable; everything that consumes these tolerates their
// absence (see Machine.finalize).
const (
	signinPath = "/signin"
	searchPath = "/activity/search"

	selSignedInMarker = ".header-account-menu"
	selLoginUsername  = "input#username"
	selLoginPassword  = "input#password"
	selLoginSubmit    = "button[type='submit']"

	selKeywordInput = "input[aria-label='Keyword search']"
	selDateInput    = "input[aria-label='Date range']"
	searchLabel     = "Search"

	// One row per activity session in the results view.
	selResultRow  = ".activity-card"
	selRowControl = "a, button"
	claimLabel    = "Register"
	waitlistLabel = "Waitlist"

	selAttendeeMarker = ".attendee-summary"
	selFeeMarker      = ".fee-summary"
	nextLabel         = "Next"

	placeOrderLabel  = "Place My Order"
	selCheckoutFrame = "iframe#checkout"
	selConfirmation  = ".order-confirmation"
)

const (
	// markerWait bounds each optimistic sub-step marker check.
	markerWait = 5 * time.Second
	// confirmWait bounds the post-placement confirmation scan.
	confirmWait = 8 * time.Second

	// refresh cadence while pre-staged ahead of the release instant, and
	// the tight poll granularity close to it.
	preStageRefresh = 2 * time.Second
	releasePoll     = 250 * time.Millisecond
)
