package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coldwatch/wallet/internal/addressbook"
)

var addressBookCmd = &cobra.Command{
	Use:     "addressbook",
	Aliases: []string{"ab"},
	Short:   "Manage saved addresses for the selected network",
}

var addressBookAddCmd = &cobra.Command{
	Use:   "add [name] [address]",
	Short: "Save a new address-book entry",
	Args:  cobra.ExactArgs(2),
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
		entry, err := addressbook.Add(ctx, e.store, string(record.NetworkSelected), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", entry.UUID, entry.Name, entry.Address)
		return nil
	},
}

var addressBookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List address-book entries for the selected network",
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
		entries, err := addressbook.List(ctx, e.store, string(record.NetworkSelected))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, entry := range entries {
			fmt.Fprintf(out, "%s  %s  %s\n", entry.UUID, entry.Name, entry.Address)
		}
		return nil
	},
}

var addressBookRenameCmd = &cobra.Command{
	Use:   "rename [uuid] [name]",
	Short: "Rename an address-book entry",
	Args:  cobra.ExactArgs(2),
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
		entries, err := addressbook.List(ctx, e.store, string(record.NetworkSelected))
		if err != nil {
			return err
		}
		entry := findEntry(entries, args[0])
		if entry == nil {
			return fmt.Errorf("no address-book entry with uuid %s", args[0])
		}
		updated, err := addressbook.Rename(ctx, e.store, entry, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", updated.UUID, updated.Name, updated.Address)
		return nil
	},
}

var addressBookRemoveCmd = &cobra.Command{
	Use:   "remove [uuid]",
	Short: "Remove an address-book entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEngine()
		if err != nil {
			return err
		}
		if err := addressbook.Remove(ctx, e.store, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "removed")
		return nil
	},
}

func findEntry(entries []addressbook.Entry, uuid string) *addressbook.Entry {
	for i := range entries {
		if entries[i].UUID == uuid {
			return &entries[i]
		}
	}
	return nil
}

func init() {
	addressBookCmd.AddCommand(addressBookAddCmd, addressBookListCmd, addressBookRenameCmd, addressBookRemoveCmd)
	rootCmd.AddCommand(addressBookCmd)
}
