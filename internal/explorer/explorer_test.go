package explorer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestListConfirmedUTXOsFiltersDustAndUnconfirmed(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"txid":"a","vout":0,"value":500,"status":{"confirmed":true}},
			{"txid":"b","vout":0,"value":5000,"status":{"confirmed":false}},
			{"txid":"c","vout":0,"value":5000,"status":{"confirmed":true}}
		]`))
	})
	client := New(srv.URL)

	utxos, err := client.ListConfirmedUTXOs(context.Background(), "main", "addr")
	if err != nil {
		t.Fatalf("ListConfirmedUTXOs: %v", err)
	}
	if len(utxos) != 1 || utxos[0].TxID != "c" {
		t.Fatalf("expected only utxo c to survive filtering, got %+v", utxos)
	}
}

func TestBalanceSumsConfirmedValues(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"txid":"a","vout":0,"value":5000,"status":{"confirmed":true}},
			{"txid":"b","vout":1,"value":3000,"status":{"confirmed":true}}
		]`))
	})
	client := New(srv.URL)

	balance, err := client.Balance(context.Background(), "main", "addr")
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if balance != 8000 {
		t.Fatalf("expected balance 8000, got %d", balance)
	}
}

func TestBroadcastReturnsTxidOnSuccess(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("deadbeef txid\n"))
	})
	client := New(srv.URL)

	txid, err := client.Broadcast(context.Background(), "main", "0200...")
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if txid != "deadbeef txid" {
		t.Fatalf("unexpected txid: %q", txid)
	}
}

func TestBroadcastRejectedOnNon2xx(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad-txn-inputs-missingorspent"))
	})
	client := New(srv.URL)

	_, err := client.Broadcast(context.Background(), "main", "0200...")
	if !errors.Is(err, walleterrors.ErrBroadcastRejected) {
		t.Fatalf("expected ErrBroadcastRejected, got %v", err)
	}
}

func TestIsConfirmed(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"confirmed":true,"block_height":100}`))
	})
	client := New(srv.URL)

	confirmed, err := client.IsConfirmed(context.Background(), "main", "txid")
	if err != nil {
		t.Fatalf("IsConfirmed: %v", err)
	}
	if !confirmed {
		t.Fatalf("expected confirmed=true")
	}
}

func TestListUTXOsUsesTestnetPrefix(t *testing.T) {
	var gotPath string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	})
	client := New(srv.URL)

	if _, err := client.ListUTXOs(context.Background(), "test", "addr"); err != nil {
		t.Fatalf("ListUTXOs: %v", err)
	}
	if gotPath != "/testnet/api/address/addr/utxo" {
		t.Fatalf("expected testnet-prefixed path, got %q", gotPath)
	}
}
