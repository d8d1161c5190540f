package explorer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestAddressCacheServesCachedResultWithoutRefetch(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte(`[{"txid":"a","vout":0,"value":5000,"status":{"confirmed":true}}]`))
	}))
	defer server.Close()

	client := New(server.URL)
	cache := NewAddressCache()
	ctx := context.Background()

	first, err := cache.ConfirmedUTXOs(ctx, client, "main", "addr1")
	if err != nil {
		t.Fatalf("ConfirmedUTXOs: %v", err)
	}
	second, err := cache.ConfirmedUTXOs(ctx, client, "main", "addr1")
	if err != nil {
		t.Fatalf("ConfirmedUTXOs: %v", err)
	}

	if atomic.LoadInt64(&hits) != 1 {
		t.Fatalf("expected exactly one explorer call, got %d", hits)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("unexpected utxo counts: %d, %d", len(first), len(second))
	}
}

func TestAddressCacheInvalidateForcesRefetch(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte(`[{"txid":"a","vout":0,"value":5000,"status":{"confirmed":true}}]`))
	}))
	defer server.Close()

	client := New(server.URL)
	cache := NewAddressCache()
	ctx := context.Background()

	if _, err := cache.ConfirmedUTXOs(ctx, client, "main", "addr1"); err != nil {
		t.Fatalf("ConfirmedUTXOs: %v", err)
	}
	cache.Invalidate("main", "addr1")
	if _, err := cache.ConfirmedUTXOs(ctx, client, "main", "addr1"); err != nil {
		t.Fatalf("ConfirmedUTXOs: %v", err)
	}

	if atomic.LoadInt64(&hits) != 2 {
		t.Fatalf("expected two explorer calls after invalidation, got %d", hits)
	}
}

func TestAddressCacheDifferentAddressesDoNotShareEntries(t *testing.T) {
	cache := NewAddressCache()
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL)
	ctx := context.Background()

	if _, err := cache.ConfirmedUTXOs(ctx, client, "main", "addr1"); err != nil {
		t.Fatalf("ConfirmedUTXOs: %v", err)
	}
	if _, err := cache.ConfirmedUTXOs(ctx, client, "main", "addr2"); err != nil {
		t.Fatalf("ConfirmedUTXOs: %v", err)
	}

	if atomic.LoadInt64(&hits) != 2 {
		t.Fatalf("expected a separate fetch per address, got %d calls", hits)
	}
}
