package acquire

import (
	"context"
	"time"
)

// waitUntil blocks until the release instant is reached or passed, or ctx
// is cancelled. It re-reads the wall clock each tick and never sleeps past
// the instant: far out it ticks at the pre-stage cadence, close in it
// tightens to sub-second polling.
func waitUntil(ctx context.Context, now func() time.Time, releaseAt time.Time, onTick func()) error {
	for {
		remaining := releaseAt.Sub(now())
		if remaining <= 0 {
			return nil
		}
		step := releasePoll
		if remaining > preStageRefresh*2 {
			step = preStageRefresh
			if onTick != nil {
				onTick()
			}
		}
		if step > remaining {
			step = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(step):
		}
	}
}
