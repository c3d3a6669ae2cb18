package browser

import (
	"context"
	"time"
)

// Session is the capability contract against the booking site: an
// authenticated, navigable browser context owned by exactly one acquisition
// attempt for its entire lifetime. Close must be safe to call exactly once
// on every exit path.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Find(ctx context.Context, selector string) (Element, error)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// FindByText matches elements of `selector` whose text contains `text`
	// (case-insensitive).
	FindByText(ctx context.Context, selector, text string) (Element, error)
	// FindByRole looks an element up by its accessibility role and name.
	FindByRole(ctx context.Context, role, name string) (Element, error)
	Fill(ctx context.Context, selector, value string) error
	// WaitFor blocks until selector exists or timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Frame returns a session scoped to the nested frame at selector.
	Frame(ctx context.Context, selector string) (Session, error)
	Screenshot(ctx context.Context, path string) error
	Close() error
}

type Element interface {
	Text(ctx context.Context) (string, error)
	Click(ctx context.Context) error
	Find(ctx context.Context, selector string) (Element, error)
	FindByText(ctx context.Context, selector, text string) (Element, error)
}
