// Package feeoracle fetches fee-rate estimates and reduces them to a
// simple (low, middle, high) triple for the send screen.
package feeoracle

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

const requestTimeout = 15 * time.Second

// DefaultURL is the public fee-estimates endpoint used by spec.md §6.
const DefaultURL = "https://blockstream.info/api/fee-estimates"

// Tiers is the reduced (low, middle, high) sat/vbyte triple.
type Tiers struct {
	Low, Middle, High float64
}

// Oracle fetches and reduces fee-rate estimates.
type Oracle struct {
	HTTP *http.Client
	URL  string
}

// New builds an Oracle with the default 15-second timeout.
func New() *Oracle {
	return &Oracle{
		HTTP: &http.Client{Timeout: requestTimeout},
		URL:  DefaultURL,
	}
}

// Fetch retrieves the current fee-estimates map and reduces it to Tiers.
func (o *Oracle) Fetch(ctx context.Context) (Tiers, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.URL, nil)
	if err != nil {
		return Tiers{}, walleterrors.Wrap(walleterrors.KindBadInput, "building fee-estimate request", err)
	}

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return Tiers{}, walleterrors.Wrap(walleterrors.KindNetworkError, "fee_oracle", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Tiers{}, walleterrors.New(walleterrors.KindNetworkError, "fee_oracle: non-2xx response")
	}

	var estimates map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&estimates); err != nil {
		return Tiers{}, walleterrors.Wrap(walleterrors.KindNetworkError, "decoding fee-estimate response", err)
	}

	return Reduce(estimates)
}

// Reduce sorts the fee-rate values ascending and collapses them to a
// (low, middle, high) triple: zero values error, one value is used for
// all three tiers, two values give (v0, v0, v1), and three or more give
// (first, median, last).
func Reduce(estimates map[string]float64) (Tiers, error) {
	values := make([]float64, 0, len(estimates))
	for _, v := range estimates {
		values = append(values, v)
	}
	sort.Float64s(values)

	switch len(values) {
	case 0:
		return Tiers{}, walleterrors.New(walleterrors.KindBadInput, "fee_oracle: no estimates to reduce")
	case 1:
		return Tiers{Low: values[0], Middle: values[0], High: values[0]}, nil
	case 2:
		return Tiers{Low: values[0], Middle: values[0], High: values[1]}, nil
	default:
		return Tiers{Low: values[0], Middle: median(values), High: values[len(values)-1]}, nil
	}
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
