package explorer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MaxCacheAge bounds how long a cached UTXO set is trusted before a forced
// refresh, independent of whether the caller ever invalidates it.
const MaxCacheAge = 5 * time.Minute

type cacheEntry struct {
	fingerprint string
	utxos       []UTXO
	fetchedAt   time.Time
}

// AddressCache memoizes ListConfirmedUTXOs per (network, address). Each
// entry also records a fingerprint of the confirmed-UTXO set it holds; the
// fingerprint is not exposed and is not consulted when serving or
// refreshing an entry. Invalidate after a broadcast so the wallet's own
// next-created output is never missed.
type AddressCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewAddressCache returns an empty cache.
func NewAddressCache() *AddressCache {
	return &AddressCache{entries: make(map[string]cacheEntry)}
}

func cacheKey(network, address string) string {
	return network + ":" + address
}

// ConfirmedUTXOs returns the cached confirmed-UTXO set for address if it is
// younger than MaxCacheAge, otherwise fetches fresh from client and
// refreshes the cache.
func (c *AddressCache) ConfirmedUTXOs(ctx context.Context, client *Client, network, address string) ([]UTXO, error) {
	key := cacheKey(network, address)

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && time.Since(entry.fetchedAt) < MaxCacheAge {
		return entry.utxos, nil
	}

	utxos, err := client.ListConfirmedUTXOs(ctx, network, address)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{
		fingerprint: fingerprint(utxos),
		utxos:       utxos,
		fetchedAt:   time.Now(),
	}
	c.mu.Unlock()
	return utxos, nil
}

// Invalidate drops the cached entry for (network, address), forcing the
// next ConfirmedUTXOs call to hit the explorer. Call this right after a
// broadcast so the wallet's own change output is visible immediately.
func (c *AddressCache) Invalidate(network, address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(network, address))
}

// fingerprint hashes a UTXO set's (txid, vout, value) triples in sorted
// order, giving a stable identity for "did the confirmed set change"
// independent of the order the explorer happened to return it in.
func fingerprint(utxos []UTXO) string {
	sorted := append([]UTXO(nil), utxos...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].TxID != sorted[j].TxID {
			return sorted[i].TxID < sorted[j].TxID
		}
		return sorted[i].Vout < sorted[j].Vout
	})

	h := sha256.New()
	for _, u := range sorted {
		fmt.Fprintf(h, "%s:%d:%d;", u.TxID, u.Vout, u.Value)
	}
	return hex.EncodeToString(h.Sum(nil))
}
