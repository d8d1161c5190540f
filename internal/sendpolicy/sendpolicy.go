// Package sendpolicy validates a proposed send against the user's
// configured ceilings and selects the UTXOs to fund it.
package sendpolicy

import (
	"crypto/rand"
	"math/big"

	"github.com/coldwatch/wallet/internal/explorer"
	"github.com/coldwatch/wallet/internal/walleterrors"
)

// Virtual-size constants for a P2WPKH-only transaction, sat/vbyte fee
// sizing model: base overhead plus a fixed cost per input/output.
const (
	txOverhead       = 10
	p2wpkhInputSize  = 68
	p2wpkhOutputSize = 31
)

// Params is a transient description of one proposed send, validated
// against the account's policy ceilings before coin selection runs.
type Params struct {
	RecipientAddress string
	SendAmountSats   int64
	MaxSendAmount    int64
	FeeRateSatPerVB  int64
	MaxFeeRate       int64
	MaxFeeAmount     int64
}

// Verify enforces the two ceilings of spec.md §4.5.
func Verify(p Params) error {
	if p.RecipientAddress == "" {
		return walleterrors.New(walleterrors.KindBadInput, "recipient address must not be empty")
	}
	if p.SendAmountSats <= 0 {
		return walleterrors.New(walleterrors.KindBadInput, "send amount must be positive")
	}
	if p.SendAmountSats > p.MaxSendAmount {
		return walleterrors.New(walleterrors.KindLimitExceeded, "send_amount")
	}
	if p.FeeRateSatPerVB > p.MaxFeeRate {
		return walleterrors.New(walleterrors.KindLimitExceeded, "fee_rate")
	}
	return nil
}

// Selection is the outcome of coin selection: the chosen inputs plus the
// computed fee and change amount.
type Selection struct {
	Inputs []explorer.UTXO
	Total  int64
	Fee    int64
	Change int64
}

// SelectCoins shuffles utxos with a cryptographically seeded PRNG, then
// accumulates inputs one at a time, re-costing a constant two-output
// transaction on every iteration, until the accumulated value clears
// sendAmount plus the estimated fee. This intentionally never steps the
// fee estimate when the change output appears, which is what gives the
// loop monotone convergence. The result is adequate, not fee-optimal.
func SelectCoins(utxos []explorer.UTXO, sendAmount, feeRate, maxFeeAmount int64) (Selection, error) {
	shuffled, err := shuffle(utxos)
	if err != nil {
		return Selection{}, err
	}

	var inputs []explorer.UTXO
	var total, fee int64

	for _, candidate := range shuffled {
		inputs = append(inputs, candidate)
		total += candidate.Value

		if sendAmount >= total {
			continue
		}

		fee = vsize(len(inputs), 2) * feeRate

		if total > sendAmount+fee {
			change := total - sendAmount - fee
			if fee > maxFeeAmount {
				return Selection{}, walleterrors.New(walleterrors.KindLimitExceeded, "fee_amount")
			}
			return Selection{Inputs: inputs, Total: total, Fee: fee, Change: change}, nil
		}
	}

	return Selection{}, walleterrors.New(walleterrors.KindInsufficientFunds, "")
}

// BuildConsolidation sweeps every given UTXO into a single output, paying
// the whole input value minus a one-output fee estimate to destination.
// Unlike SelectCoins there is no accumulate-until-enough loop: every UTXO
// passed in is spent.
func BuildConsolidation(utxos []explorer.UTXO, feeRate, maxFeeAmount int64) (Selection, error) {
	if len(utxos) < 2 {
		return Selection{}, walleterrors.New(walleterrors.KindBadInput, "need at least 2 utxos to consolidate")
	}

	var total int64
	for _, u := range utxos {
		total += u.Value
	}

	fee := vsize(len(utxos), 1) * feeRate
	if fee > maxFeeAmount {
		return Selection{}, walleterrors.New(walleterrors.KindLimitExceeded, "fee_amount")
	}

	outputValue := total - fee
	if outputValue <= 0 {
		return Selection{}, walleterrors.New(walleterrors.KindInsufficientFunds, "")
	}

	return Selection{Inputs: utxos, Total: total, Fee: fee, Change: 0}, nil
}

func vsize(numInputs, numOutputs int) int64 {
	return int64(txOverhead) + int64(numInputs)*int64(p2wpkhInputSize) + int64(numOutputs)*int64(p2wpkhOutputSize)
}

// shuffle returns a Fisher-Yates shuffled copy of utxos, seeded from
// crypto/rand so no privacy-sensitive ordering is ever leaked.
func shuffle(utxos []explorer.UTXO) ([]explorer.UTXO, error) {
	shuffled := append([]explorer.UTXO(nil), utxos...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return nil, err
		}
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled, nil
}

func randIndex(n int) (int, error) {
	max := big.NewInt(int64(n))
	idx, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, walleterrors.Wrap(walleterrors.KindStorageError, "seeding coin-selection shuffle", err)
	}
	return int(idx.Int64()), nil
}
