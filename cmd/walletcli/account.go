package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/account"
	"github.com/coldwatch/wallet/internal/walletkey"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the single stored account",
}

var generateMnemonicCmd = &cobra.Command{
	Use:   "generate-mnemonic",
	Short: "Generate a fresh 24-word BIP-39 mnemonic",
	Long: `Generate a cryptographically random 24-word mnemonic. This does not
touch storage; pass the result to "account create" once you've written
it down somewhere safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mnemonic, err := walletkey.RandomMnemonic()
		if err != nil {
			return err
		}
		fmt.Println(mnemonic)
		fmt.Fprintln(cmd.ErrOrStderr(), "\nSECURITY WARNING: store this mnemonic offline. Anyone who has it controls the wallet.")
		return nil
	},
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the wallet account from a mnemonic",
	Long: `Create the single stored account from a 24-word mnemonic, encrypting
it at rest under --passphrase. Any existing account and its activity log
are replaced, matching the single-account policy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine()
		if err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		mnemonic, _ := cmd.Flags().GetString("mnemonic")
		passphrase, err := promptPassphrase(cmd)
		if err != nil {
			return err
		}
		if mnemonic == "" {
			return fmt.Errorf("--mnemonic is required")
		}

		record, err := account.CreateAccount(ctx, e.store, name, passphrase, mnemonic)
		if err != nil {
			return err
		}
		printAccountSummary(cmd, record)
		return nil
	},
}

var accountRecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover the account from an existing mnemonic",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine()
		if err != nil {
			return err
		}

		mnemonic, _ := cmd.Flags().GetString("mnemonic")
		passphrase, err := promptPassphrase(cmd)
		if err != nil {
			return err
		}
		if mnemonic == "" {
			return fmt.Errorf("--mnemonic is required")
		}

		record, err := account.RecoverAccount(ctx, e.store, passphrase, mnemonic)
		if err != nil {
			return err
		}
		printAccountSummary(cmd, record)
		return nil
	},
}

var accountInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the stored account's addresses and selected network",
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
		printAccountSummary(cmd, record)
		return nil
	},
}

var accountRevealCmd = &cobra.Command{
	Use:   "reveal-mnemonic",
	Short: "Decrypt and print the mnemonic",
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
		passphrase, err := promptPassphrase(cmd)
		if err != nil {
			return err
		}

		mnemonic, err := account.RevealMnemonic(record, passphrase)
		if err != nil {
			return err
		}
		defer walletkey.SecureZero(mnemonic)
		fmt.Println(string(mnemonic))
		return nil
	},
}

var accountChangePassphraseCmd = &cobra.Command{
	Use:   "change-passphrase",
	Short: "Re-encrypt the mnemonic under a new passphrase",
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

		oldPass, _ := cmd.Flags().GetString("old-passphrase")
		newPass, _ := cmd.Flags().GetString("new-passphrase")
		if oldPass == "" || newPass == "" {
			return fmt.Errorf("--old-passphrase and --new-passphrase are required")
		}

		if _, err := account.ChangePassphrase(ctx, e.store, record, oldPass, newPass); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "passphrase changed")
		return nil
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored account and its activity log",
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
		passphrase, err := promptPassphrase(cmd)
		if err != nil {
			return err
		}
		if err := account.DeleteAccount(ctx, e.store, record, passphrase); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "account deleted")
		return nil
	},
}

var accountSwitchNetworkCmd = &cobra.Command{
	Use:   "switch-network [main|test]",
	Short: "Switch the account's active network",
	Args:  cobra.ExactArgs(1),
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
		updated, err := account.SwitchNetwork(ctx, e.store, record, account.Network(args[0]))
		if err != nil {
			return err
		}
		printAccountSummary(cmd, updated)
		return nil
	},
}

func printAccountSummary(cmd *cobra.Command, record *account.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "uuid:            %s\n", record.UUID)
	fmt.Fprintf(out, "name:            %s\n", record.Name)
	fmt.Fprintf(out, "network:         %s\n", record.NetworkSelected)
	fmt.Fprintf(out, "address (main):  %s\n", record.AddressMain)
	fmt.Fprintf(out, "address (test):  %s\n", record.AddressTest)
}

func init() {
	accountCreateCmd.Flags().String("name", "default", "a display name for the account")
	accountCreateCmd.Flags().String("mnemonic", "", "24-word BIP-39 mnemonic")
	accountCreateCmd.Flags().String("passphrase", "", "passphrase to encrypt the mnemonic at rest")

	accountRecoverCmd.Flags().String("mnemonic", "", "24-word BIP-39 mnemonic")
	accountRecoverCmd.Flags().String("passphrase", "", "passphrase to encrypt the mnemonic at rest")

	accountRevealCmd.Flags().String("passphrase", "", "the account's passphrase")
	accountDeleteCmd.Flags().String("passphrase", "", "the account's passphrase")
	accountChangePassphraseCmd.Flags().String("old-passphrase", "", "current passphrase")
	accountChangePassphraseCmd.Flags().String("new-passphrase", "", "new passphrase")

	accountCmd.AddCommand(
		generateMnemonicCmd,
		accountCreateCmd,
		accountRecoverCmd,
		accountInfoCmd,
		accountRevealCmd,
		accountChangePassphraseCmd,
		accountDeleteCmd,
		accountSwitchNetworkCmd,
	)
	rootCmd.AddCommand(accountCmd)
}
