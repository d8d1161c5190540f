// Package secretstore encrypts and decrypts the wallet mnemonic at rest
// and produces a password verifier hash that is independent of the
// encryption key. The two derivations never share key material: knowledge
// of the verifier must not leak anything usable to decrypt the ciphertext.
package secretstore

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"

	"filippo.io/age"
	"golang.org/x/crypto/blake2b"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

// scryptWorkFactor is age's password-recipient cost parameter. Kept at the
// library default; tests lower it via SetScryptWorkFactor to stay fast.
var scryptWorkFactor = 18

// SetScryptWorkFactor overrides the age scrypt work factor, clamped to
// age's accepted range. Exists so tests do not pay the default cost.
func SetScryptWorkFactor(factor int) {
	if factor < 1 {
		factor = 1
	}
	if factor > 30 {
		factor = 30
	}
	scryptWorkFactor = factor
}

// EncryptedSecret is a self-contained age ciphertext: header, salt, work
// factor and authentication tag travel with the bytes.
type EncryptedSecret []byte

// VerifierSaltLen is the length of the random salt stored alongside a
// PasswordVerifier (see DESIGN.md Open Question 1: the verifier is salted,
// unlike the original implementation's bare hash).
const VerifierSaltLen = 16

// PasswordVerifier is a salted, keyed BLAKE2b-256 hash of a passphrase. It
// never participates in deriving the age encryption key.
type PasswordVerifier struct {
	Salt []byte
	Hash []byte
}

// Encrypt authenticated-encrypts plaintext under a key derived from
// passphrase via age's scrypt password recipient.
func Encrypt(passphrase string, plaintext []byte) (EncryptedSecret, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindBadInput, "building scrypt recipient", err)
	}
	recipient.SetWorkFactor(scryptWorkFactor)

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "initializing encryption", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "writing ciphertext", err)
	}
	if err := w.Close(); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "finalizing ciphertext", err)
	}
	return EncryptedSecret(buf.Bytes()), nil
}

// Decrypt authenticates and decrypts secret under passphrase. A wrong
// passphrase returns ErrBadPassphrase; a structurally malformed envelope
// returns ErrCorruptCiphertext. Neither path returns any byte derived from
// the wrong key.
func Decrypt(passphrase string, secret EncryptedSecret) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindBadInput, "building scrypt identity", err)
	}
	identity.SetMaxWorkFactor(scryptWorkFactor)

	r, err := age.Decrypt(bytes.NewReader(secret), identity)
	if err != nil {
		if errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, walleterrors.Wrap(walleterrors.KindBadPassphrase, "", err)
		}
		return nil, walleterrors.Wrap(walleterrors.KindCorruptCiphertext, "", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindCorruptCiphertext, "truncated ciphertext", err)
	}
	return plaintext, nil
}

// Hash produces a salted password verifier. It is fast and deterministic
// given (passphrase, salt) and intentionally uses a different primitive
// family (BLAKE2b keyed hash) from the age/scrypt encryption path above.
func Hash(passphrase string, salt []byte) (*PasswordVerifier, error) {
	if len(salt) != VerifierSaltLen {
		return nil, walleterrors.New(walleterrors.KindBadInput, "verifier salt must be 16 bytes")
	}
	h, err := blake2b.New256(salt)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "constructing verifier hash", err)
	}
	h.Write([]byte(passphrase))
	return &PasswordVerifier{Salt: append([]byte(nil), salt...), Hash: h.Sum(nil)}, nil
}

// NewVerifierSalt returns a fresh random salt for a new account.
func NewVerifierSalt() ([]byte, error) {
	salt := make([]byte, VerifierSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "generating verifier salt", err)
	}
	return salt, nil
}

// Verify reports whether passphrase matches the stored verifier.
func Verify(passphrase string, verifier *PasswordVerifier) (bool, error) {
	candidate, err := Hash(passphrase, verifier.Salt)
	if err != nil {
		return false, err
	}
	if len(candidate.Hash) != len(verifier.Hash) {
		return false, nil
	}
	var diff byte
	for i := range candidate.Hash {
		diff |= candidate.Hash[i] ^ verifier.Hash[i]
	}
	return diff == 0, nil
}
