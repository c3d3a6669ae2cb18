package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/rec-sniper/internal/catalog"
	"github.com/example/rec-sniper/internal/schedule"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the scheduler loop, firing an acquisition attempt at each release",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			m, err := a.machine()
			if err != nil {
				return err
			}

			store := a.openHistory()
			if store != nil {
				defer store.Close()
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runner := &schedule.Runner{
				Rules: a.rules,
				Now:   a.clk.Now,
				Log:   a.log,
				OnFire: func(ctx context.Context, rule catalog.Rule, targetDate, releaseAt time.Time) {
					a.log.Info("firing", "rule", rule.ID, "target", targetDate.Format("02-Jan-2006"), "release_at", releaseAt)
					outcome := m.Run(ctx, rule.Request(targetDate), &releaseAt)
					a.report(ctx, store, rule.ID, outcome)
				},
			}

			a.log.Info("scheduler started", "rules", len(a.rules), "timezone", a.clk.Location().String())
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			a.log.Info("scheduler stopped")
			return nil
		},
	}
}
