// Package money is the single canonical routine for BTC<->satoshi
// conversion. Every place in the engine that needs this conversion goes
// through here so there is exactly one rounding policy.
package money

import (
	"github.com/shopspring/decimal"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

// SatsPerBTC is the fixed exchange rate between a bitcoin and a satoshi.
const SatsPerBTC = 100_000_000

var satsPerBTCDecimal = decimal.NewFromInt(SatsPerBTC)

// BTCStringToSats parses a decimal BTC amount string (as a user would type
// it) into an exact satoshi count. Parsing is truncation-free: the decimal
// library carries arbitrary precision until the final multiply, so
// "0.12345678" and "1.2345678" convert exactly.
func BTCStringToSats(btc string) (int64, error) {
	d, err := decimal.NewFromString(btc)
	if err != nil {
		return 0, walleterrors.Wrap(walleterrors.KindBadInput, "invalid BTC amount: "+btc, err)
	}
	if d.IsNegative() {
		return 0, walleterrors.New(walleterrors.KindBadInput, "BTC amount must not be negative: "+btc)
	}
	sats := d.Mul(satsPerBTCDecimal)
	if !sats.Equal(sats.Truncate(0)) {
		return 0, walleterrors.New(walleterrors.KindBadInput, "BTC amount has sub-satoshi precision: "+btc)
	}
	return sats.IntPart(), nil
}

// SatsToBTCString renders a satoshi count as a decimal BTC string with
// exactly eight decimal places, e.g. 12345678 -> "0.12345678" and
// 100000000 -> "1.00000000".
func SatsToBTCString(sats int64) string {
	return decimal.NewFromInt(sats).DivRound(satsPerBTCDecimal, 8).StringFixed(8)
}
