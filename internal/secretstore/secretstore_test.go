package secretstore

import (
	"errors"
	"testing"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

func TestMain(m *testing.M) {
	SetScryptWorkFactor(1)
	m.Run()
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("abandon abandon abandon ... mnemonic words go here")
	ciphertext, err := Encrypt("12345678", plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, err := Decrypt("12345678", ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
	}
}

func TestDecryptWrongPassphraseFails(t *testing.T) {
	ciphertext, err := Encrypt("correct-horse", []byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	_, err = Decrypt("incorrect-horse", ciphertext)
	if !errors.Is(err, walleterrors.ErrBadPassphrase) {
		t.Fatalf("expected ErrBadPassphrase, got %v", err)
	}
}

func TestDecryptCorruptCiphertext(t *testing.T) {
	_, err := Decrypt("anything", EncryptedSecret([]byte("not an age file")))
	if !errors.Is(err, walleterrors.ErrCorruptCiphertext) {
		t.Fatalf("expected ErrCorruptCiphertext, got %v", err)
	}
}

func TestVerifierIndependentOfEncryptionKey(t *testing.T) {
	salt, err := NewVerifierSalt()
	if err != nil {
		t.Fatalf("NewVerifierSalt: %v", err)
	}

	verifier, err := Hash("12345678", salt)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := Verify("12345678", verifier)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching passphrase to verify")
	}

	ok, err = Verify("wrong", verifier)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong passphrase to fail verification")
	}
}

func TestHashIsDeterministic(t *testing.T) {
	salt, err := NewVerifierSalt()
	if err != nil {
		t.Fatalf("NewVerifierSalt: %v", err)
	}
	a, err := Hash("same-pass", salt)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := Hash("same-pass", salt)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if string(a.Hash) != string(b.Hash) {
		t.Fatalf("expected deterministic hash for same passphrase+salt")
	}
}
