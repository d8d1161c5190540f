// Package addressbook manages the user's saved, network-scoped address
// entries: a name paired with an address the user sends to repeatedly.
package addressbook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/coldwatch/wallet/internal/storage"
	"github.com/coldwatch/wallet/internal/walleterrors"
)

// Entry is one saved address-book row.
type Entry struct {
	UUID    string `json:"uuid"`
	Network string `json:"network"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Add validates name/address are non-empty and stores a new entry.
func Add(ctx context.Context, store storage.Store, network, name, address string) (*Entry, error) {
	if name == "" {
		return nil, walleterrors.New(walleterrors.KindBadInput, "name must not be empty")
	}
	if address == "" {
		return nil, walleterrors.New(walleterrors.KindBadInput, "address must not be empty")
	}

	entry := &Entry{
		UUID:    uuid.NewString(),
		Network: network,
		Name:    name,
		Address: address,
	}
	if err := put(ctx, store, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Rename updates an existing entry's display name.
func Rename(ctx context.Context, store storage.Store, entry *Entry, name string) (*Entry, error) {
	if name == "" {
		return nil, walleterrors.New(walleterrors.KindBadInput, "name must not be empty")
	}
	updated := *entry
	updated.Name = name
	if err := put(ctx, store, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Remove deletes an entry by UUID.
func Remove(ctx context.Context, store storage.Store, uuid string) error {
	if err := store.Delete(ctx, storage.TableAddressBook, uuid); err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "deleting address book entry", err)
	}
	return nil
}

// List returns every saved entry for the given network.
func List(ctx context.Context, store storage.Store, network string) ([]Entry, error) {
	rows, err := store.ListNetwork(ctx, storage.TableAddressBook, network)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "listing address book", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		var entry Entry
		if err := json.Unmarshal(row.Data, &entry); err != nil {
			return nil, walleterrors.Wrap(walleterrors.KindStorageError, "decoding address book entry", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func put(ctx context.Context, store storage.Store, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "encoding address book entry", err)
	}
	if err := store.Put(ctx, storage.TableAddressBook, entry.UUID, entry.Network, data); err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "storing address book entry", err)
	}
	return nil
}
