package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/account"
	"github.com/coldwatch/wallet/internal/config"
	"github.com/coldwatch/wallet/internal/explorer"
	"github.com/coldwatch/wallet/internal/feeoracle"
	"github.com/coldwatch/wallet/internal/priceoracle"
	"github.com/coldwatch/wallet/internal/storage"
	"github.com/coldwatch/wallet/internal/walleterrors"
	"github.com/coldwatch/wallet/internal/walletkey"
)

var (
	cfgFile   string
	storeFile string
)

var rootCmd = &cobra.Command{
	Use:   "walletcli",
	Short: "Self-custodial Bitcoin wallet engine",
	Long: `walletcli drives the cold/watch key-management and transaction-
construction engine from a terminal: account lifecycle, balance and UTXO
inspection, the address book, sending funds through the full PSBT
pipeline, and the activity log. It has no GUI of its own — it exists to
exercise the engine the way a graphical front end would.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to wallet.toml (defaults to built-in settings)")
	rootCmd.PersistentFlags().StringVar(&storeFile, "store", defaultStorePath(), "path to the JSON state file")
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "wallet-state.json"
	}
	return home + "/.coldwatch-wallet.json"
}

// engine bundles the dependencies every subcommand needs, built fresh on
// each invocation since the CLI is a new OS process per command.
type engine struct {
	cfg      *config.Config
	store    storage.Store
	explorer *explorer.Client
	utxos    *explorer.AddressCache
	prices   *priceoracle.Oracle
	fees     *feeoracle.Oracle
}

func newEngine() (*engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	store, err := storage.NewFileStore(storeFile)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	client := explorer.New("https://blockstream.info")
	client.DustFloor = int64(cfg.Account.SkipUTXOAmount)

	return &engine{
		cfg:      cfg,
		store:    store,
		explorer: client,
		utxos:    explorer.NewAddressCache(),
		prices:   priceoracle.New(),
		fees:     feeoracle.New(),
	}, nil
}

// requireAccount loads the single stored account, erroring if none exists
// yet (the caller needs to run "account create" or "account recover" first).
func (e *engine) requireAccount(ctx context.Context) (*account.Record, error) {
	record, err := account.Load(ctx, e.store)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, walleterrors.New(walleterrors.KindBadInput, "no account exists yet; run 'account create' or 'account recover'")
	}
	return record, nil
}

func networkKeyFor(record *account.Record) walletkey.Network {
	if record.NetworkSelected == account.NetworkTest {
		return walletkey.Test
	}
	return walletkey.Main
}

func explorerNetworkFor(record *account.Record) string {
	if record.NetworkSelected == account.NetworkTest {
		return "test"
	}
	return "main"
}

func addressFor(record *account.Record) string {
	if record.NetworkSelected == account.NetworkTest {
		return record.AddressTest
	}
	return record.AddressMain
}

func promptPassphrase(cmd *cobra.Command) (string, error) {
	passphrase, err := cmd.Flags().GetString("passphrase")
	if err != nil {
		return "", err
	}
	if passphrase == "" {
		return "", walleterrors.New(walleterrors.KindBadInput, "--passphrase is required")
	}
	return passphrase, nil
}
