package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/rec-sniper/internal/schedule"
)

func newListCmd() *cobra.Command {
	var showHistory int

	c := &cobra.Command{
		Use:   "list",
		Short: "Show all rules with their next trigger and target date",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}

			now := a.clk.Now()
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"RULE", "ACTIVITY", "LOCATION", "TIME", "NEXT FIRE", "TARGET DATE", "FIRED THIS WEEK", "MODE"})
			for _, st := range schedule.StatusAt(a.rules, now) {
				mode := "scheduled"
				if st.Rule.ManualOnly {
					mode = "manual"
				}
				t.AppendRow(table.Row{
					st.Rule.ID,
					st.Rule.Activity,
					st.Rule.Location,
					st.Rule.TimeLabel,
					st.NextFire.Format("Mon 02-Jan-2006 15:04 MST"),
					st.TargetDate.Format("02-Jan-2006"),
					st.FiredThisWeek,
					mode,
				})
			}
			t.Render()

			if showHistory > 0 {
				return renderHistory(cmd.Context(), a, showHistory)
			}
			return nil
		},
	}

	c.Flags().IntVar(&showHistory, "history", 0, "also show the N most recent attempts")
	return c
}

func renderHistory(ctx context.Context, a app, n int) error {
	store := a.openHistory()
	if store == nil {
		return fmt.Errorf("attempt history unavailable")
	}
	defer store.Close()

	if ctx == nil {
		ctx = context.Background()
	}
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	attempts, err := store.Recent(cctx, n)
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"WHEN", "RULE", "ACTIVITY", "DATE", "RESULT", "MESSAGE"})
	for _, at := range attempts {
		result := "failed"
		switch {
		case at.Outcome.Success && at.Outcome.Waitlisted:
			result = "waitlisted"
		case at.Outcome.Success && at.Outcome.Assumed:
			result = "booked?"
		case at.Outcome.Success:
			result = "booked"
		}
		rule := at.RuleID
		if rule == "" {
			rule = "(manual)"
		}
		t.AppendRow(table.Row{
			at.AttemptedAt.Local().Format("02-Jan 15:04"),
			rule,
			at.Outcome.Activity,
			at.Outcome.Date.Format("02-Jan-2006"),
			result,
			at.Outcome.Message,
		})
	}
	t.Render()
	return nil
}
