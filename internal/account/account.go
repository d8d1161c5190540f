// Package account implements the single-account lifecycle: creation,
// recovery, passphrase change, deletion, mnemonic reveal, and network
// switching, all persisted through the storage.Store interface.
package account

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/coldwatch/wallet/internal/secretstore"
	"github.com/coldwatch/wallet/internal/storage"
	"github.com/coldwatch/wallet/internal/walleterrors"
	"github.com/coldwatch/wallet/internal/walletkey"
)

// Network mirrors walletkey.Network as a storage-level string, kept
// distinct so this package does not force callers to import walletkey
// just to read a persisted record's selected network.
type Network string

const (
	NetworkMain Network = "main"
	NetworkTest Network = "test"
)

// Record is the persistent, at-rest representation of the wallet.
type Record struct {
	UUID              string                       `json:"uuid"`
	Name              string                       `json:"name"`
	Mnemonic          secretstore.EncryptedSecret  `json:"mnemonic"`
	PasswordVerifier  secretstore.PasswordVerifier `json:"password_verifier"`
	NetworkSelected   Network                      `json:"network_selected"`
	AddressMain       string                       `json:"address_main"`
	AddressTest       string                       `json:"address_test"`
}

// CreateAccount validates the mnemonic, derives both network addresses,
// encrypts the mnemonic, and stores the record. Per the single-account
// policy, any previous account and all of its activity rows are purged
// first — this mirrors the reference implementation's on_new_account
// behavior exactly.
func CreateAccount(ctx context.Context, store storage.Store, name, passphrase, mnemonic string) (*Record, error) {
	return newAccount(ctx, store, name, passphrase, mnemonic)
}

// RecoverAccount is identical to CreateAccount; it exists as a distinct
// entry point so callers can express intent (restoring vs. generating).
func RecoverAccount(ctx context.Context, store storage.Store, passphrase, mnemonic string) (*Record, error) {
	return newAccount(ctx, store, "recovered-account", passphrase, mnemonic)
}

func newAccount(ctx context.Context, store storage.Store, name, passphrase, mnemonic string) (*Record, error) {
	if err := validateMnemonicWordCount(mnemonic); err != nil {
		return nil, err
	}

	seed, err := walletkey.Seed(mnemonic)
	if err != nil {
		return nil, err
	}

	mainKeys, err := walletkey.DeriveNetwork(seed, walletkey.Main)
	if err != nil {
		return nil, err
	}
	testKeys, err := walletkey.DeriveNetwork(seed, walletkey.Test)
	if err != nil {
		return nil, err
	}

	encrypted, err := secretstore.Encrypt(passphrase, []byte(mnemonic))
	if err != nil {
		return nil, err
	}

	salt, err := secretstore.NewVerifierSalt()
	if err != nil {
		return nil, err
	}
	verifier, err := secretstore.Hash(passphrase, salt)
	if err != nil {
		return nil, err
	}

	record := &Record{
		UUID:             uuid.NewString(),
		Name:             name,
		Mnemonic:         encrypted,
		PasswordVerifier: *verifier,
		NetworkSelected:  NetworkMain,
		AddressMain:      mainKeys.Address,
		AddressTest:      testKeys.Address,
	}

	// Single-account policy: purge any prior account and its activity
	// before the new one is stored.
	if err := store.DeleteAll(ctx, storage.TableAccount); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "purging prior account", err)
	}
	if err := store.DeleteAll(ctx, storage.TableActivity); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "purging prior activity", err)
	}

	if err := put(ctx, store, record); err != nil {
		return nil, err
	}
	return record, nil
}

func validateMnemonicWordCount(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if len(words) != 24 {
		return walleterrors.New(walleterrors.KindBadInput, "mnemonic must be 24 words")
	}
	return nil
}

func put(ctx context.Context, store storage.Store, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "encoding account record", err)
	}
	if err := store.Put(ctx, storage.TableAccount, record.UUID, "", data); err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "storing account record", err)
	}
	return nil
}

// Load fetches the single account record, or nil if none exists.
func Load(ctx context.Context, store storage.Store) (*Record, error) {
	rows, err := store.List(ctx, storage.TableAccount)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "listing account table", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	var record Record
	if err := json.Unmarshal(rows[0].Data, &record); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "decoding account record", err)
	}
	return &record, nil
}

// VerifyPassphrase checks passphrase against the record's password
// verifier without attempting decryption.
func VerifyPassphrase(record *Record, passphrase string) (bool, error) {
	return secretstore.Verify(passphrase, &record.PasswordVerifier)
}

// ChangePassphrase verifies old, decrypts the mnemonic, and re-encrypts it
// under new together with a fresh verifier in a single storage write, so a
// crash cannot leave the ciphertext and verifier disagreeing.
func ChangePassphrase(ctx context.Context, store storage.Store, record *Record, oldPass, newPass string) (*Record, error) {
	ok, err := VerifyPassphrase(record, oldPass)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, walleterrors.New(walleterrors.KindBadPassphrase, "")
	}

	mnemonic, err := secretstore.Decrypt(oldPass, record.Mnemonic)
	if err != nil {
		return nil, err
	}

	newEncrypted, err := secretstore.Encrypt(newPass, mnemonic)
	walletkey.SecureZero(mnemonic)
	if err != nil {
		return nil, err
	}

	salt, err := secretstore.NewVerifierSalt()
	if err != nil {
		return nil, err
	}
	newVerifier, err := secretstore.Hash(newPass, salt)
	if err != nil {
		return nil, err
	}

	updated := *record
	updated.Mnemonic = newEncrypted
	updated.PasswordVerifier = *newVerifier

	if err := put(ctx, store, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAccount verifies passphrase, then deletes the account row and all
// activity rows.
func DeleteAccount(ctx context.Context, store storage.Store, record *Record, passphrase string) error {
	ok, err := VerifyPassphrase(record, passphrase)
	if err != nil {
		return err
	}
	if !ok {
		return walleterrors.New(walleterrors.KindBadPassphrase, "")
	}

	if err := store.Delete(ctx, storage.TableAccount, record.UUID); err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "deleting account record", err)
	}
	if err := store.DeleteAll(ctx, storage.TableActivity); err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "purging activity", err)
	}
	return nil
}

// RevealMnemonic verifies passphrase and returns the decrypted mnemonic.
// Callers must zero the returned bytes once done with them.
func RevealMnemonic(record *Record, passphrase string) ([]byte, error) {
	ok, err := VerifyPassphrase(record, passphrase)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, walleterrors.New(walleterrors.KindBadPassphrase, "")
	}
	return secretstore.Decrypt(passphrase, record.Mnemonic)
}

// SwitchNetwork updates the selected network on the record. The caller is
// responsible for reloading network-scoped activity and address-book
// views after this returns.
func SwitchNetwork(ctx context.Context, store storage.Store, record *Record, network Network) (*Record, error) {
	if network != NetworkMain && network != NetworkTest {
		return nil, walleterrors.New(walleterrors.KindBadInput, "network must be main or test")
	}
	updated := *record
	updated.NetworkSelected = network
	if err := put(ctx, store, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Seed decrypts the mnemonic and derives its BIP-39 seed, verifying the
// result reproduces the persisted addresses exactly before returning.
// Callers must zero the returned seed once the signing session ends.
func Seed(record *Record, passphrase string) ([]byte, error) {
	mnemonic, err := RevealMnemonic(record, passphrase)
	if err != nil {
		return nil, err
	}
	defer walletkey.SecureZero(mnemonic)

	seed, err := walletkey.Seed(string(mnemonic))
	if err != nil {
		return nil, err
	}

	if err := walletkey.Verify(seed, record.AddressMain, record.AddressTest); err != nil {
		walletkey.SecureZero(seed)
		return nil, err
	}
	return seed, nil
}
