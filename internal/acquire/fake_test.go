package acquire

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/rec-sniper/internal/browser"
)

var errNoElement = errors.New("element not found")

// fakeControl is a clickable element.
type fakeControl struct {
	label     string
	clicks    int
	clickErr  error
	clickHook func()
}

func (c *fakeControl) Text(ctx context.Context) (string, error) { return c.label, nil }

func (c *fakeControl) Click(ctx context.Context) error {
	if c.clickErr != nil {
		return c.clickErr
	}
	c.clicks++
	if c.clickHook != nil {
		c.clickHook()
	}
	return nil
}

func (c *fakeControl) Find(ctx context.Context, selector string) (browser.Element, error) {
	return nil, errNoElement
}

func (c *fakeControl) FindByText(ctx context.Context, selector, text string) (browser.Element, error) {
	return nil, errNoElement
}

// fakeRow is one result row with optional claim/waitlist controls.
type fakeRow struct {
	text     string
	claim    *fakeControl
	waitlist *fakeControl
}

func (r *fakeRow) Text(ctx context.Context) (string, error) { return r.text, nil }

func (r *fakeRow) Click(ctx context.Context) error { return nil }

func (r *fakeRow) Find(ctx context.Context, selector string) (browser.Element, error) {
	return nil, errNoElement
}

func (r *fakeRow) FindByText(ctx context.Context, selector, text string) (browser.Element, error) {
	if r.claim != nil && strings.EqualFold(text, r.claim.label) {
		return r.claim, nil
	}
	if r.waitlist != nil && strings.EqualFold(text, r.waitlist.label) {
		return r.waitlist, nil
	}
	return nil, errNoElement
}

// fakeSession scripts the whole site: markers present, result rows, buttons
// reachable by label, and error injection per stage.
type fakeSession struct {
	rows    []*fakeRow
	markers map[string]bool
	buttons map[string]*fakeControl

	navigated []string
	filled    map[string]string

	navErr     error
	findAllErr error
	scanPanic  bool

	// when set, clicking the place-order control makes the confirmation
	// marker appear.
	confirmOnPlace bool

	frame    *fakeSession
	frameErr error

	closed int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		markers: map[string]bool{selSignedInMarker: true},
		buttons: map[string]*fakeControl{},
		filled:  map[string]string{},
	}
}

func (s *fakeSession) withPlaceOrder() *fakeSession {
	s.buttons[placeOrderLabel] = &fakeControl{label: placeOrderLabel}
	s.confirmOnPlace = true
	return s
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.navigated = append(s.navigated, url)
	return s.navErr
}

func (s *fakeSession) Find(ctx context.Context, selector string) (browser.Element, error) {
	if selector == selLoginSubmit {
		return &fakeControl{label: "submit"}, nil
	}
	return nil, errNoElement
}

func (s *fakeSession) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if s.scanPanic {
		panic("renderer crashed")
	}
	if s.findAllErr != nil {
		return nil, s.findAllErr
	}
	out := make([]browser.Element, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeSession) FindByText(ctx context.Context, selector, text string) (browser.Element, error) {
	if b, ok := s.buttons[text]; ok {
		b.clickHook = func() {
			if text == placeOrderLabel && s.confirmOnPlace {
				s.markers[selConfirmation] = true
			}
		}
		return b, nil
	}
	return nil, errNoElement
}

func (s *fakeSession) FindByRole(ctx context.Context, role, name string) (browser.Element, error) {
	key := "role:" + name
	if b, ok := s.buttons[key]; ok {
		return b, nil
	}
	return nil, errNoElement
}

func (s *fakeSession) Fill(ctx context.Context, selector, value string) error {
	s.filled[selector] = value
	return nil
}

func (s *fakeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if s.markers[selector] {
		return nil
	}
	return errNoElement
}

func (s *fakeSession) Frame(ctx context.Context, selector string) (browser.Session, error) {
	if s.frame != nil {
		return s.frame, nil
	}
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return nil, errNoElement
}

func (s *fakeSession) Screenshot(ctx context.Context, path string) error { return nil }

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}
