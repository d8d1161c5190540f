package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/activity"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Inspect and reconcile the send activity log",
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List activity entries for the selected network, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine()
		if err != nil {
			return err
		}
		record, err := e.requireAccount(ctx)
		if err != nil {
			return err
		}
		entries, err := activity.List(ctx, e.store, string(record.NetworkSelected))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, entry := range entries {
			fmt.Fprintf(out, "%s  %-11s  %-12s  %10d sats  fee %8d  %s\n",
				time.Unix(entry.Time, 0).UTC().Format(time.RFC3339), entry.Status, entry.Operation, entry.Amount, entry.Fee, entry.TxID)
		}
		return nil
	},
}

var activityPollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run the confirmation poller in the foreground until interrupted",
	Long: `Reconciles every unconfirmed activity row against the block
explorer on a fixed interval (spec.md's poller uses 60 seconds), blocking
until the process is interrupted. Intended to run as a background
process alongside the GUI or other CLI commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine()
		if err != nil {
			return err
		}
		poller := activity.NewPoller(e.store, e.explorer)
		interval, _ := cmd.Flags().GetDuration("interval")
		fmt.Fprintf(cmd.OutOrStdout(), "polling every %s; press ctrl-c to stop\n", interval)
		poller.Run(cmd.Context(), interval)
		return nil
	},
}

func init() {
	activityPollCmd.Flags().Duration("interval", 60*time.Second, "polling interval")
	activityCmd.AddCommand(activityListCmd, activityPollCmd)
	rootCmd.AddCommand(activityCmd)
}
