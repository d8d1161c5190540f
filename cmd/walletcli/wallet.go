package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/money"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the confirmed balance on the selected network",
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

		utxos, err := e.utxos.ConfirmedUTXOs(ctx, e.explorer, explorerNetworkFor(record), addressFor(record))
		if err != nil {
			return err
		}
		var sats int64
		for _, u := range utxos {
			sats += u.Value
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d sats (%s BTC)\n", sats, money.SatsToBTCString(sats))
		return nil
	},
}

var utxoCmd = &cobra.Command{
	Use:   "utxo",
	Short: "List confirmed UTXOs above the dust floor",
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

		utxos, err := e.utxos.ConfirmedUTXOs(ctx, e.explorer, explorerNetworkFor(record), addressFor(record))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, u := range utxos {
			fmt.Fprintf(out, "%s:%d  %d sats\n", u.TxID, u.Vout, u.Value)
		}
		if len(utxos) == 0 {
			fmt.Fprintln(out, "no confirmed utxos")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd, utxoCmd)
}
