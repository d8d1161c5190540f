package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/priceoracle"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Show the current USD/BTC price",
	Long: `Fetch the current USD/BTC price from the public ticker. On a
transient failure this prints the last price it managed to fetch
instead of erroring, matching the engine's degrade-to-last-good policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine()
		if err != nil {
			return err
		}
		price, err := e.prices.Fetch(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "$%s\n", priceoracle.FormatUSD(price))
		return nil
	},
}

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Show the current low/middle/high sat/vbyte fee tiers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine()
		if err != nil {
			return err
		}
		tiers, err := e.fees.Fetch(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "low:    %.1f sat/vB\n", tiers.Low)
		fmt.Fprintf(out, "middle: %.1f sat/vB\n", tiers.Middle)
		fmt.Fprintf(out, "high:   %.1f sat/vB\n", tiers.High)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(priceCmd, feesCmd)
}
