package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/rec-sniper/internal/booking"
)

func newBookCmd() *cobra.Command {
	var index int

	c := &cobra.Command{
		Use:   "book",
		Short: "Book one request from the config file's request list",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			reqs, err := a.cfg.CompileRequests(a.clk.Location())
			if err != nil {
				return err
			}
			if len(reqs) == 0 {
				return fmt.Errorf("no requests in config")
			}
			if index < 0 || index >= len(reqs) {
				return fmt.Errorf("request index %d out of range (have %d)", index, len(reqs))
			}
			outcomes, err := bookAll(cmd.Context(), a, reqs[index:index+1])
			if err != nil {
				return err
			}
			if !booking.AllSucceeded(outcomes) {
				return fmt.Errorf("booking failed")
			}
			return nil
		},
	}

	c.Flags().IntVar(&index, "index", 0, "which request to book (position in the config list)")
	return c
}

func newBookAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "book-all",
		Short: "Book every request from the config file, with a delay between attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			reqs, err := a.cfg.CompileRequests(a.clk.Location())
			if err != nil {
				return err
			}
			if len(reqs) == 0 {
				return fmt.Errorf("no requests in config")
			}
			outcomes, err := bookAll(cmd.Context(), a, reqs)
			if err != nil {
				return err
			}
			fmt.Println(booking.Summary(outcomes))
			if !booking.AllSucceeded(outcomes) {
				return fmt.Errorf("not all bookings succeeded")
			}
			return nil
		},
	}
}

// bookAll runs the requests strictly in sequence with the configured
// inter-request delay between them. The delay is deliberate: hammering the
// site with back-to-back sessions trips its abuse detection.
func bookAll(ctx context.Context, a app, reqs []booking.Request) ([]booking.Outcome, error) {
	m, err := a.machine()
	if err != nil {
		return nil, err
	}
	store := a.openHistory()
	if store != nil {
		defer store.Close()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	outcomes := make([]booking.Outcome, 0, len(reqs))
	for i, req := range reqs {
		if i > 0 {
			a.log.Info("pausing between requests", "delay", a.cfg.InterRequestDelay())
			select {
			case <-ctx.Done():
				return outcomes, ctx.Err()
			case <-time.After(a.cfg.InterRequestDelay()):
			}
		}
		outcome := m.Run(ctx, req, nil)
		a.report(ctx, store, "", outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
