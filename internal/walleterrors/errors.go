// Package walleterrors defines the error taxonomy shared by every engine
// component: a small set of sentinel kinds that callers can compare with
// errors.Is, wrapped in a WalletError that carries the offending detail.
package walleterrors

import "fmt"

// Kind identifies one of the fixed error categories the engine can produce.
type Kind string

const (
	KindBadPassphrase      Kind = "bad_passphrase"
	KindCorruptCiphertext  Kind = "corrupt_ciphertext"
	KindAddressMismatch    Kind = "address_mismatch"
	KindLimitExceeded      Kind = "limit_exceeded"
	KindInsufficientFunds  Kind = "insufficient_balance"
	KindNetworkError       Kind = "network_error"
	KindBroadcastRejected  Kind = "broadcast_rejected"
	KindBadInput           Kind = "bad_input"
	KindStorageError       Kind = "storage_error"
	KindInvalidTransition  Kind = "invalid_transition"
)

// Sentinel errors for errors.Is comparisons against a Kind, independent of
// the Detail carried by a particular occurrence.
var (
	ErrBadPassphrase     = &WalletError{Kind: KindBadPassphrase}
	ErrCorruptCiphertext = &WalletError{Kind: KindCorruptCiphertext}
	ErrAddressMismatch   = &WalletError{Kind: KindAddressMismatch}
	ErrLimitExceeded     = &WalletError{Kind: KindLimitExceeded}
	ErrInsufficientFunds = &WalletError{Kind: KindInsufficientFunds}
	ErrNetworkError      = &WalletError{Kind: KindNetworkError}
	ErrBroadcastRejected = &WalletError{Kind: KindBroadcastRejected}
	ErrBadInput          = &WalletError{Kind: KindBadInput}
	ErrStorageError      = &WalletError{Kind: KindStorageError}
	ErrInvalidTransition = &WalletError{Kind: KindInvalidTransition}
)

// WalletError is the concrete error type returned by every engine package.
type WalletError struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *WalletError) Error() string {
	if e.Detail == "" && e.Cause == nil {
		return string(e.Kind)
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
}

func (e *WalletError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind only, so callers can write errors.Is(err, ErrBadPassphrase)
// regardless of the Detail/Cause carried by a specific occurrence.
func (e *WalletError) Is(target error) bool {
	t, ok := target.(*WalletError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a WalletError of the given kind with a detail string.
func New(kind Kind, detail string) *WalletError {
	return &WalletError{Kind: kind, Detail: detail}
}

// Wrap builds a WalletError of the given kind around a causing error.
func Wrap(kind Kind, detail string, cause error) *WalletError {
	return &WalletError{Kind: kind, Detail: detail, Cause: cause}
}
