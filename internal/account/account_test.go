package account

import (
	"context"
	"errors"
	"testing"

	"github.com/coldwatch/wallet/internal/secretstore"
	"github.com/coldwatch/wallet/internal/storage"
	"github.com/coldwatch/wallet/internal/walleterrors"
	"github.com/coldwatch/wallet/internal/walletkey"
)

func init() {
	secretstore.SetScryptWorkFactor(1)
}

func newMnemonic(t *testing.T) string {
	t.Helper()
	m, err := walletkey.RandomMnemonic()
	if err != nil {
		t.Fatalf("RandomMnemonic: %v", err)
	}
	return m
}

func TestCreateAccountThenLoad(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	mnemonic := newMnemonic(t)

	record, err := CreateAccount(ctx, store, "my-wallet", "hunter2", mnemonic)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if record.AddressMain == "" || record.AddressTest == "" {
		t.Fatalf("expected both addresses to be populated")
	}

	loaded, err := Load(ctx, store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil || loaded.UUID != record.UUID {
		t.Fatalf("Load did not return the created record")
	}
}

func TestCreateAccountRejectsShortMnemonic(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	if _, err := CreateAccount(ctx, store, "x", "hunter2", "abandon abandon abandon"); err == nil {
		t.Fatalf("expected error for short mnemonic")
	}
}

func TestCreateAccountPurgesPriorAccountAndActivity(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()

	first, err := CreateAccount(ctx, store, "first", "pw1", newMnemonic(t))
	if err != nil {
		t.Fatalf("CreateAccount(first): %v", err)
	}
	_ = store.Put(ctx, storage.TableActivity, "tx1", "main", []byte(`{}`))

	second, err := CreateAccount(ctx, store, "second", "pw2", newMnemonic(t))
	if err != nil {
		t.Fatalf("CreateAccount(second): %v", err)
	}
	if second.UUID == first.UUID {
		t.Fatalf("expected a fresh UUID for the replacement account")
	}

	rows, err := store.List(ctx, storage.TableAccount)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one account row after replacement, got %d", len(rows))
	}

	activityRows, err := store.List(ctx, storage.TableActivity)
	if err != nil {
		t.Fatalf("List(activity): %v", err)
	}
	if len(activityRows) != 0 {
		t.Fatalf("expected activity to be purged on account replacement, got %d rows", len(activityRows))
	}
}

func TestChangePassphraseRejectsWrongOld(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	record, err := CreateAccount(ctx, store, "x", "correct-horse", newMnemonic(t))
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if _, err := ChangePassphrase(ctx, store, record, "wrong", "new-pass"); !errors.Is(err, walleterrors.ErrBadPassphrase) {
		t.Fatalf("expected ErrBadPassphrase, got %v", err)
	}
}

func TestChangePassphraseThenRevealWithNewPassphrase(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	mnemonic := newMnemonic(t)
	record, err := CreateAccount(ctx, store, "x", "old-pass", mnemonic)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	updated, err := ChangePassphrase(ctx, store, record, "old-pass", "new-pass")
	if err != nil {
		t.Fatalf("ChangePassphrase: %v", err)
	}

	revealed, err := RevealMnemonic(updated, "new-pass")
	if err != nil {
		t.Fatalf("RevealMnemonic with new passphrase: %v", err)
	}
	if string(revealed) != mnemonic {
		t.Fatalf("revealed mnemonic does not match original")
	}

	if _, err := RevealMnemonic(updated, "old-pass"); err == nil {
		t.Fatalf("expected old passphrase to be rejected after change")
	}
}

func TestDeleteAccountRequiresPassphrase(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	record, err := CreateAccount(ctx, store, "x", "hunter2", newMnemonic(t))
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	if err := DeleteAccount(ctx, store, record, "wrong"); err == nil {
		t.Fatalf("expected DeleteAccount to reject wrong passphrase")
	}
	if err := DeleteAccount(ctx, store, record, "hunter2"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}

	rows, err := store.List(ctx, storage.TableAccount)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no account rows after delete, got %d", len(rows))
	}
}

func TestSwitchNetworkRejectsUnknownNetwork(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	record, err := CreateAccount(ctx, store, "x", "hunter2", newMnemonic(t))
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := SwitchNetwork(ctx, store, record, "mainnet"); err == nil {
		t.Fatalf("expected SwitchNetwork to reject an unrecognized network")
	}
	updated, err := SwitchNetwork(ctx, store, record, NetworkTest)
	if err != nil {
		t.Fatalf("SwitchNetwork: %v", err)
	}
	if updated.NetworkSelected != NetworkTest {
		t.Fatalf("expected network to switch to test")
	}
}

func TestSeedReturnsVerifiedSeed(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	mnemonic := newMnemonic(t)
	record, err := CreateAccount(ctx, store, "x", "hunter2", mnemonic)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	seed, err := Seed(record, "hunter2")
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(seed) == 0 {
		t.Fatalf("expected non-empty seed")
	}
}
