// Package explorer is a typed REST client for a block-explorer service
// (Blockstream-shaped API), exposing the five operations the rest of the
// engine needs: UTXO listing, balance, broadcast, and confirmation status.
package explorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

const requestTimeout = 15 * time.Second

// DefaultDustFloor is the default dust floor (in satoshis):
// ListConfirmedUTXOs drops every UTXO whose value is at or below it.
const DefaultDustFloor = 1000

// Status is the confirmation status of a UTXO or a transaction.
type Status struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight uint64 `json:"block_height,omitempty"`
	BlockHash   string `json:"block_hash,omitempty"`
	BlockTime   int64  `json:"block_time,omitempty"`
}

// UTXO is one unspent output as reported by the explorer.
type UTXO struct {
	TxID   string `json:"txid"`
	Vout   uint32 `json:"vout"`
	Value  int64  `json:"value"`
	Status Status `json:"status"`
}

// Client talks to a block-explorer REST API over HTTPS. BaseURL must not
// have a trailing slash; TestnetPrefix is prepended to every path when the
// caller asks for the test network (Blockstream-style "/testnet" mount).
type Client struct {
	HTTP          *http.Client
	BaseURL       string
	TestnetPrefix string
	DustFloor     int64
}

// New builds a Client against baseURL (e.g. "https://blockstream.info")
// with the default 15-second per-call timeout and 1000-sat dust floor.
func New(baseURL string) *Client {
	return &Client{
		HTTP:          &http.Client{Timeout: requestTimeout},
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		TestnetPrefix: "/testnet",
		DustFloor:     DefaultDustFloor,
	}
}

func (c *Client) apiRoot(network string) string {
	if network == "test" {
		return c.BaseURL + c.TestnetPrefix + "/api"
	}
	return c.BaseURL + "/api"
}

// ListUTXOs fetches every UTXO known for address, confirmed or not.
func (c *Client) ListUTXOs(ctx context.Context, network, address string) ([]UTXO, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/address/%s/utxo", c.apiRoot(network), address)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindBadInput, "building utxo request", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindNetworkError, "list_utxos", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, walleterrors.New(walleterrors.KindNetworkError, fmt.Sprintf("list_utxos: status %d", resp.StatusCode))
	}

	var utxos []UTXO
	if err := json.NewDecoder(resp.Body).Decode(&utxos); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindNetworkError, "decoding utxo response", err)
	}
	return utxos, nil
}

// ListConfirmedUTXOs filters ListUTXOs to confirmed entries above the
// configured dust floor.
func (c *Client) ListConfirmedUTXOs(ctx context.Context, network, address string) ([]UTXO, error) {
	all, err := c.ListUTXOs(ctx, network, address)
	if err != nil {
		return nil, err
	}

	floor := c.DustFloor
	if floor <= 0 {
		floor = DefaultDustFloor
	}

	confirmed := make([]UTXO, 0, len(all))
	for _, u := range all {
		if u.Status.Confirmed && u.Value > floor {
			confirmed = append(confirmed, u)
		}
	}
	return confirmed, nil
}

// Balance sums the value of every confirmed UTXO for address.
func (c *Client) Balance(ctx context.Context, network, address string) (int64, error) {
	utxos, err := c.ListConfirmedUTXOs(ctx, network, address)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, u := range utxos {
		total += u.Value
	}
	return total, nil
}

// Broadcast posts the raw transaction hex; a 2xx response body is the
// txid. Any other status yields walleterrors.ErrBroadcastRejected carrying
// the explorer's response body verbatim.
func (c *Client) Broadcast(ctx context.Context, network, txHex string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/tx", c.apiRoot(network))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(txHex))
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.KindBadInput, "building broadcast request", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.KindNetworkError, "broadcast", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", walleterrors.Wrap(walleterrors.KindNetworkError, "reading broadcast response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", walleterrors.New(walleterrors.KindBroadcastRejected, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}

// IsConfirmed asks the explorer for txid's current confirmation status.
func (c *Client) IsConfirmed(ctx context.Context, network, txid string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/tx/%s/status", c.apiRoot(network), txid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, walleterrors.Wrap(walleterrors.KindBadInput, "building status request", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, walleterrors.Wrap(walleterrors.KindNetworkError, "is_confirmed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, walleterrors.New(walleterrors.KindNetworkError, fmt.Sprintf("is_confirmed: status %d", resp.StatusCode))
	}

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, walleterrors.Wrap(walleterrors.KindNetworkError, "decoding status response", err)
	}
	return status.Confirmed, nil
}
