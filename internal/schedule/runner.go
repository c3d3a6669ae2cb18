package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/rec-sniper/internal/catalog"
)

// FireFunc is invoked once per firing. releaseAt is the official release
// instant; targetDate is the date being contended for.
type FireFunc func(ctx context.Context, rule catalog.Rule, targetDate, releaseAt time.Time)

// Runner drives the recurring firings. One goroutine per active rule; each
// firing spawns an independent attempt goroutine, so two rules releasing at
// the same minute do not serialize each other.
type Runner struct {
	Rules  []catalog.Rule
	Now    func() time.Time
	OnFire FireFunc
	Log    *slog.Logger

	wg sync.WaitGroup
}

// Run blocks until ctx is cancelled, then drains in-flight attempts.
// Manual-only rules are skipped.
func (r *Runner) Run(ctx context.Context) error {
	for _, rule := range r.Rules {
		if rule.ManualOnly {
			r.Log.Info("skipping manual-only rule", "rule", rule.ID)
			continue
		}
		rule := rule
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.loop(ctx, rule)
		}()
	}
	<-ctx.Done()
	r.wg.Wait()
	return ctx.Err()
}

func (r *Runner) loop(ctx context.Context, rule catalog.Rule) {
	for {
		now := r.Now()
		next := NextTrigger(rule, now)
		// The release and target come from the scheduled instant, not the
		// wall clock at wake-up: a firing ahead of a just-past-midnight
		// release happens on the previous calendar day.
		release := ReleaseInstant(next)
		target := rule.TargetDate(release)
		r.Log.Info("armed", "rule", rule.ID, "fire_at", next, "target", target.Format("02-Jan-2006"))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.OnFire(ctx, rule, target, release)
		}()

		// Next iteration recomputes from a point strictly past this
		// firing, yielding the following week's instant.
	}
}
