// Package walletkey turns a BIP-39 mnemonic into the network-tagged keys
// and P2WPKH addresses the rest of the engine operates on. The account
// derivation path is fixed at m/0'/0' for both supported networks: this
// design deliberately uses one chain, one address, per network.
package walletkey

import (
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/tyler-smith/go-bip39"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

// Network selects which chain parameters and address prefix to derive for.
type Network string

const (
	Main Network = "main"
	Test Network = "test"
)

func (n Network) params() (*chaincfg.Params, error) {
	switch n {
	case Main:
		return &chaincfg.MainNetParams, nil
	case Test:
		return &chaincfg.TestNet3Params, nil
	default:
		return nil, walleterrors.New(walleterrors.KindBadInput, "unknown network: "+string(n))
	}
}

// Params exposes the chain parameters for network, for callers that need
// to decode or validate a raw address string (e.g. a recipient address
// typed at the CLI) outside of key derivation itself.
func Params(network Network) (*chaincfg.Params, error) {
	return network.params()
}

// AccountDerivationPath is the single canonical hardened path used for
// every account in this design: m/0'/0'.
const AccountDerivationPath = "m/0'/0'"

// NetworkKeys bundles the derived account key material for one network.
type NetworkKeys struct {
	Network           Network
	AccountPrivateKey *hdkeychain.ExtendedKey // nil for a watch-only view
	AccountPublicKey  *hdkeychain.ExtendedKey
	Address           string
	MasterFingerprint uint32
}

// Seed derives the BIP-39 seed from a mnemonic with an empty BIP-39
// passphrase: the user's passphrase is an at-rest encryption secret only,
// never a BIP-39 passphrase.
func Seed(mnemonic string) ([]byte, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, walleterrors.New(walleterrors.KindBadInput, "mnemonic failed BIP-39 checksum validation")
	}
	return bip39.NewSeed(mnemonic, ""), nil
}

// RandomMnemonic generates a fresh 24-word English BIP-39 mnemonic from a
// cryptographically secure RNG (256 bits of entropy).
func RandomMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.KindStorageError, "generating entropy", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.KindStorageError, "building mnemonic", err)
	}
	return mnemonic, nil
}

// DeriveNetwork builds the network-tagged master key from seed, derives
// the account path m/0'/0', and publishes the account xpub and its
// P2WPKH bech32 address.
func DeriveNetwork(seed []byte, network Network) (*NetworkKeys, error) {
	params, err := network.params()
	if err != nil {
		return nil, err
	}

	masterKey, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "deriving master key", err)
	}

	masterPub, err := masterKey.ECPubKey()
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "deriving master public key", err)
	}
	fingerprint := masterFingerprint(masterPub)

	purposeKey, err := masterKey.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "deriving m/0'", err)
	}
	accountKey, err := purposeKey.Derive(hdkeychain.HardenedKeyStart + 0)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "deriving m/0'/0'", err)
	}

	accountPub, err := accountKey.Neuter()
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "neutering account key", err)
	}

	address, err := p2wpkhAddress(accountPub, params)
	if err != nil {
		return nil, err
	}

	return &NetworkKeys{
		Network:           network,
		AccountPrivateKey: accountKey,
		AccountPublicKey:  accountPub,
		Address:           address,
		MasterFingerprint: fingerprint,
	}, nil
}

func p2wpkhAddress(key *hdkeychain.ExtendedKey, params *chaincfg.Params) (string, error) {
	pubKey, err := key.ECPubKey()
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.KindStorageError, "reading public key", err)
	}
	hash := btcutil.Hash160(pubKey.SerializeCompressed())
	addr, err := btcutil.NewAddressWitnessPubKeyHash(hash, params)
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.KindStorageError, "constructing P2WPKH address", err)
	}
	return addr.EncodeAddress(), nil
}

// ScriptPubKey returns the P2WPKH script paying the given account key.
func ScriptPubKey(accountPub *hdkeychain.ExtendedKey) ([]byte, error) {
	pubKey, err := accountPub.ECPubKey()
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "reading public key", err)
	}
	hash := btcutil.Hash160(pubKey.SerializeCompressed())
	return txscript.NewScriptBuilder().AddOp(txscript.OP_0).AddData(hash).Script()
}

func masterFingerprint(pub *btcec.PublicKey) uint32 {
	hash := btcutil.Hash160(pub.SerializeCompressed())
	return binary.LittleEndian.Uint32(hash[:4])
}

// Verify re-derives both network addresses from seed and demands bit-exact
// equality against the two persisted addresses. Called at the start of
// every signing session as an anti-tamper check on the on-disk record.
func Verify(seed []byte, addressMain, addressTest string) error {
	mainKeys, err := DeriveNetwork(seed, Main)
	if err != nil {
		return err
	}
	if mainKeys.Address != addressMain {
		return walleterrors.New(walleterrors.KindAddressMismatch, "main")
	}

	testKeys, err := DeriveNetwork(seed, Test)
	if err != nil {
		return err
	}
	if testKeys.Address != addressTest {
		return walleterrors.New(walleterrors.KindAddressMismatch, "test")
	}
	return nil
}

// PaymentURI renders a bare bitcoin: URI for the address — the hand-off
// point for an external QR renderer, which this engine does not own.
func PaymentURI(address string, amountSats int64) string {
	if amountSats <= 0 {
		return fmt.Sprintf("bitcoin:%s", address)
	}
	return fmt.Sprintf("bitcoin:%s?amount=%s", address, satsToBTC(amountSats))
}

func satsToBTC(sats int64) string {
	whole := sats / 100_000_000
	frac := sats % 100_000_000
	return fmt.Sprintf("%d.%08d", whole, frac)
}

// SecureZero overwrites a byte slice; callers use this to drop a seed or
// mnemonic from memory as soon as a signing session ends.
func SecureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
