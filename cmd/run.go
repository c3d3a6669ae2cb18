package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/rec-sniper/internal/catalog"
	"github.com/example/rec-sniper/internal/schedule"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <rule-id>",
		Short: "Execute one rule's acquisition attempt immediately, without waiting for its release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			rule, ok := catalog.Find(a.rules, args[0])
			if !ok {
				return fmt.Errorf("unknown rule %q", args[0])
			}
			m, err := a.machine()
			if err != nil {
				return err
			}

			store := a.openHistory()
			if store != nil {
				defer store.Close()
			}

			target := schedule.ResolveTargetDate(rule, a.clk.Now())
			a.log.Info("running rule now", "rule", rule.ID, "target", target.Format("02-Jan-2006"))

			// nil release instant: claim immediately, no release-wait stage
			outcome := m.Run(cmd.Context(), rule.Request(target), nil)
			a.report(cmd.Context(), store, rule.ID, outcome)
			if outcome.Failed() {
				return fmt.Errorf("attempt failed: %s", outcome.Message)
			}
			return nil
		},
	}
}
