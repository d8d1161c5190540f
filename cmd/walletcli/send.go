package main

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/account"
	"github.com/coldwatch/wallet/internal/activity"
	"github.com/coldwatch/wallet/internal/explorer"
	"github.com/coldwatch/wallet/internal/money"
	"github.com/coldwatch/wallet/internal/psbtengine"
	"github.com/coldwatch/wallet/internal/sendpolicy"
	"github.com/coldwatch/wallet/internal/walleterrors"
	"github.com/coldwatch/wallet/internal/walletkey"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Build, sign, verify, and broadcast a payment",
	Long: `Runs the full send pipeline against the selected network: validates
the request against the account's configured ceilings, selects coins,
builds and signs a PSBT with the account key, runs a full consensus
verification of the extracted transaction, broadcasts it, and appends
an unconfirmed activity entry.`,
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
		amountBTC, _ := cmd.Flags().GetString("amount")
		feeRate, _ := cmd.Flags().GetInt64("feerate")
		passphrase, err := promptPassphrase(cmd)
		if err != nil {
			return err
		}

		sendAmount, err := money.BTCStringToSats(amountBTC)
		if err != nil {
			return err
		}

		maxSendAmount, err := money.BTCStringToSats(fmt.Sprintf("%v", e.cfg.Account.MaxSendAmount))
		if err != nil {
			return err
		}

		if err := sendpolicy.Verify(sendpolicy.Params{
			RecipientAddress: to,
			SendAmountSats:   sendAmount,
			MaxSendAmount:    maxSendAmount,
			FeeRateSatPerVB:  feeRate,
			MaxFeeRate:       int64(e.cfg.Account.MaxFeeRate),
			MaxFeeAmount:     int64(e.cfg.Account.MaxFeeAmount),
		}); err != nil {
			return err
		}

		network := explorerNetworkFor(record)
		address := addressFor(record)
		utxos, err := e.utxos.ConfirmedUTXOs(ctx, e.explorer, network, address)
		if err != nil {
			return err
		}

		selection, err := sendpolicy.SelectCoins(utxos, sendAmount, feeRate, int64(e.cfg.Account.MaxFeeAmount))
		if err != nil {
			return err
		}

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
		recipientAddr, err := btcutil.DecodeAddress(to, params)
		if err != nil {
			return fmt.Errorf("invalid recipient address: %w", err)
		}
		recipientScript, err := txscript.PayToAddrScript(recipientAddr)
		if err != nil {
			return fmt.Errorf("building recipient script: %w", err)
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

		packet, err := watch.Create(selection.Inputs, recipientScript, sendAmount, ownScript, selection.Change)
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

		if _, err := activity.Append(ctx, e.store, string(record.NetworkSelected), txid, "send", sendAmount, detail.FeeAmount, time.Now().Unix()); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "txid: %s\n", txid)
		fmt.Fprintf(out, "fee:  %d sats\n", detail.FeeAmount)
		return nil
	},
}

// prevOutputsFor builds the PSBT engine's view of each selected UTXO's
// previous output. Every UTXO this wallet ever selects was paid to its
// own single account address, so the script is the same for all of them.
func prevOutputsFor(utxos []explorer.UTXO, ownScript []byte) (psbtengine.PrevOutputs, error) {
	prevOuts := make(psbtengine.PrevOutputs, len(utxos))
	for _, u := range utxos {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.KindBadInput, "invalid utxo txid", err)
		}
		outPoint := wire.OutPoint{Hash: *hash, Index: u.Vout}
		prevOuts[outPoint] = &wire.TxOut{Value: u.Value, PkScript: ownScript}
	}
	return prevOuts, nil
}

func init() {
	sendCmd.Flags().String("to", "", "recipient address")
	sendCmd.Flags().String("amount", "", "amount to send, in BTC")
	sendCmd.Flags().Int64("feerate", 0, "fee rate in sat/vbyte")
	sendCmd.Flags().String("passphrase", "", "the account's passphrase")
	rootCmd.AddCommand(sendCmd)
}
