package walleterrors

import (
	"errors"
	"testing"
)

func TestWalletErrorIsMatchesByKind(t *testing.T) {
	err := Wrap(KindLimitExceeded, "send_amount", errors.New("too high"))
	if !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected errors.Is to match ErrLimitExceeded")
	}
	if errors.Is(err, ErrBadPassphrase) {
		t.Fatalf("did not expect errors.Is to match ErrBadPassphrase")
	}
}

func TestWalletErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(KindStorageError, "account", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected Unwrap chain to expose the cause")
	}
}

func TestWalletErrorMessageFormatting(t *testing.T) {
	bare := New(KindBadInput, "")
	if bare.Error() != string(KindBadInput) {
		t.Fatalf("unexpected bare message: %q", bare.Error())
	}

	detailed := New(KindBadInput, "empty recipient")
	if detailed.Error() == bare.Error() {
		t.Fatalf("expected detail to change the message")
	}
}
