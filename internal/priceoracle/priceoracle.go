// Package priceoracle fetches the current USD/BTC price from a public
// ticker and degrades to the last-known-good value on any failure.
package priceoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

const requestTimeout = 15 * time.Second

// DefaultURL is the public ticker endpoint used by spec.md §6.
const DefaultURL = "https://api.alternative.me/v2/ticker/bitcoin/"

type tickerResponse struct {
	Data map[string]struct {
		Quotes struct {
			USD struct {
				Price float64 `json:"price"`
			} `json:"USD"`
		} `json:"quotes"`
	} `json:"data"`
}

// Oracle polls DefaultURL (or a configured override) and caches the last
// successfully fetched price, so a transient failure never blanks the UI.
type Oracle struct {
	HTTP *http.Client
	URL  string

	mu       sync.Mutex
	lastGood float64
	haveGood bool
}

// New builds an Oracle with the default 15-second timeout.
func New() *Oracle {
	return &Oracle{
		HTTP: &http.Client{Timeout: requestTimeout},
		URL:  DefaultURL,
	}
}

// Fetch retrieves the current USD/BTC price. On any transport or parse
// failure it returns the last known-good value instead of propagating the
// error, unless no value has ever been fetched successfully.
func (o *Oracle) Fetch(ctx context.Context) (float64, error) {
	price, err := o.fetchLive(ctx)
	if err != nil {
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.haveGood {
			return o.lastGood, nil
		}
		return 0, err
	}

	o.mu.Lock()
	o.lastGood = price
	o.haveGood = true
	o.mu.Unlock()
	return price, nil
}

func (o *Oracle) fetchLive(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.URL, nil)
	if err != nil {
		return 0, walleterrors.Wrap(walleterrors.KindBadInput, "building price request", err)
	}

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return 0, walleterrors.Wrap(walleterrors.KindNetworkError, "price_oracle", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, walleterrors.New(walleterrors.KindNetworkError, "price_oracle: non-2xx response")
	}

	var ticker tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return 0, walleterrors.Wrap(walleterrors.KindNetworkError, "decoding price response", err)
	}

	entry, ok := ticker.Data["1"]
	if !ok {
		return 0, walleterrors.New(walleterrors.KindNetworkError, "price_oracle: missing data[\"1\"]")
	}
	return entry.Quotes.USD.Price, nil
}

// FormatUSD renders price at a precision that scales with magnitude: two
// decimal places once the price clears 1.0 (typical BTC range), otherwise
// enough digits to show a meaningful figure for a near-zero test value.
func FormatUSD(price float64) string {
	if price >= 1 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.8f", price)
}
