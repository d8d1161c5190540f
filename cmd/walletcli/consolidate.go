package main

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/account"
	"github.com/coldwatch/wallet/internal/activity"
	"github.com/coldwatch/wallet/internal/psbtengine"
	"github.com/coldwatch/wallet/internal/sendpolicy"
	"github.com/coldwatch/wallet/internal/walletkey"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Sweep every confirmed UTXO into a single output",
	Long: `Consolidates every confirmed UTXO on the selected network into one
output at --to (defaulting to the wallet's own address), paying a single
one-output fee estimate. Unlike send, there is no per-transaction send
ceiling to check since nothing leaves the wallet's control by default.`,
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

		to, _ := cmd.Flags().GetString("to")
		feeRate, _ := cmd.Flags().GetInt64("feerate")
		passphrase, err := promptPassphrase(cmd)
		if err != nil {
			return err
		}
		if to == "" {
			to = addressFor(record)
		}

		network := explorerNetworkFor(record)
		address := addressFor(record)
		utxos, err := e.utxos.ConfirmedUTXOs(ctx, e.explorer, network, address)
		if err != nil {
			return err
		}

		selection, err := sendpolicy.BuildConsolidation(utxos, feeRate, int64(e.cfg.Account.MaxFeeAmount))
		if err != nil {
			return err
		}
		outputValue := selection.Total - selection.Fee

		seed, err := account.Seed(record, passphrase)
		if err != nil {
			return err
		}
		defer walletkey.SecureZero(seed)

		keys, err := walletkey.DeriveNetwork(seed, networkKeyFor(record))
		if err != nil {
			return err
		}

		params, err := walletkey.Params(networkKeyFor(record))
		if err != nil {
			return err
		}
		destAddr, err := btcutil.DecodeAddress(to, params)
		if err != nil {
			return fmt.Errorf("invalid destination address: %w", err)
		}
		destScript, err := txscript.PayToAddrScript(destAddr)
		if err != nil {
			return fmt.Errorf("building destination script: %w", err)
		}

		ownScript, err := walletkey.ScriptPubKey(keys.AccountPublicKey)
		if err != nil {
			return err
		}

		watch := &psbtengine.Watch{
			Network:           networkKeyFor(record),
			AccountPublicKey:  keys.AccountPublicKey,
			MasterFingerprint: keys.MasterFingerprint,
		}
		cold := &psbtengine.Cold{AccountPrivateKey: keys.AccountPrivateKey}

		packet, err := watch.Create(selection.Inputs, destScript, outputValue, nil, 0)
		if err != nil {
			return err
		}

		prevOuts, err := prevOutputsFor(selection.Inputs, ownScript)
		if err != nil {
			return err
		}

		if err := watch.Update(packet, prevOuts); err != nil {
			return err
		}
		if err := cold.Sign(packet); err != nil {
			return err
		}
		if err := watch.Finalize(packet); err != nil {
			return err
		}

		detail, err := psbtengine.ExtractAndVerify(packet, prevOuts)
		if err != nil {
			return err
		}

		txid, err := e.explorer.Broadcast(ctx, network, detail.TxHex)
		if err != nil {
			return err
		}
		e.utxos.Invalidate(network, address)

		if _, err := activity.Append(ctx, e.store, string(record.NetworkSelected), txid, "consolidate", outputValue, detail.FeeAmount, time.Now().Unix()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "txid: %s\n", txid)
		fmt.Fprintf(out, "swept %d inputs, fee %d sats\n", len(selection.Inputs), detail.FeeAmount)
		return nil
	},
}

func init() {
	consolidateCmd.Flags().String("to", "", "destination address (defaults to the wallet's own address)")
	consolidateCmd.Flags().Int64("feerate", 0, "fee rate in sat/vbyte")
	consolidateCmd.Flags().String("passphrase", "", "the account's passphrase")
	rootCmd.AddCommand(consolidateCmd)
}
