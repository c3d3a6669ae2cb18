package acquire

import (
	"context"
	"fmt"

	"github.com/example/rec-sniper/internal/browser"
)

// placement is one way of reaching the order-submission control. The chain
// below is tried in fixed priority order and short-circuits on the first
// strategy that manages a click.
type placement struct {
	name string
	run  func(ctx context.Context, sess browser.Session) error
}

func placementChain() []placement {
	return []placement{
		{
			name: "direct control",
			run: func(ctx context.Context, sess browser.Session) error {
				el, err := sess.FindByText(ctx, "button", placeOrderLabel)
				if err != nil {
					return err
				}
				return el.Click(ctx)
			},
		},
		{
			name: "checkout frame",
			run: func(ctx context.Context, sess browser.Session) error {
				frame, err := sess.Frame(ctx, selCheckoutFrame)
				if err != nil {
					return err
				}
				el, err := frame.FindByText(ctx, "button", placeOrderLabel)
				if err != nil {
					return err
				}
				return el.Click(ctx)
			},
		},
		{
			name: "accessible role",
			run: func(ctx context.Context, sess browser.Session) error {
				el, err := sess.FindByRole(ctx, "button", placeOrderLabel)
				if err != nil {
					return err
				}
				return el.Click(ctx)
			},
		},
	}
}

// placeOrder walks the chain. It reports whether any strategy performed a
// placement click; per-strategy failures go on the warning trail.
func placeOrder(ctx context.Context, sess browser.Session, warn func(string)) bool {
	for _, p := range placementChain() {
		if err := p.run(ctx, sess); err != nil {
			warn(fmt.Sprintf("order placement via %s failed: %v", p.name, err))
			continue
		}
		return true
	}
	return false
}
