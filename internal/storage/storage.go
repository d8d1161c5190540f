// Package storage defines the persistence boundary the engine depends on:
// a small interface over JSON-document rows grouped by table, standing in
// for the embedded relational store spec.md treats as an external
// collaborator. MemStore is the in-memory reference implementation used by
// tests; FileStore wraps it with a JSON file and is what the CLI uses.
package storage

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/coldwatch/wallet/internal/walleterrors"
)

// Table names for the three logical tables the engine persists to,
// matching spec.md §6's storage layout exactly.
const (
	TableAccount     = "account"
	TableActivity    = "activity"
	TableAddressBook = "address_book"
)

// Row is one persisted document: a UUID key, an optional network scope
// (empty for the single-row account table), and an opaque JSON blob —
// matching the (uuid, network, data) shape shared by every table in the
// reference implementation this engine was modeled on.
type Row struct {
	UUID    string
	Network string
	Data    json.RawMessage
}

// Store is the persistence interface every higher-level package depends
// on instead of a process-wide singleton (see DESIGN.md's Open Question
// decision on global mutable state).
type Store interface {
	Put(ctx context.Context, table, uuid, network string, data json.RawMessage) error
	Get(ctx context.Context, table, uuid string) (*Row, error)
	List(ctx context.Context, table string) ([]Row, error)
	ListNetwork(ctx context.Context, table, network string) ([]Row, error)
	Delete(ctx context.Context, table, uuid string) error
	DeleteAll(ctx context.Context, table string) error
}

// MemStore is an in-memory Store guarded by a mutex, standing in for the
// embedded database's own transaction discipline.
type MemStore struct {
	mu     sync.RWMutex
	tables map[string]map[string]Row
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]map[string]Row)}
}

func (s *MemStore) table(name string) map[string]Row {
	t, ok := s.tables[name]
	if !ok {
		t = make(map[string]Row)
		s.tables[name] = t
	}
	return t
}

func (s *MemStore) Put(_ context.Context, table, uuid, network string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table(table)[uuid] = Row{UUID: uuid, Network: network, Data: append(json.RawMessage(nil), data...)}
	return nil
}

func (s *MemStore) Get(_ context.Context, table, uuid string) (*Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.tables[table][uuid]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (s *MemStore) List(_ context.Context, table string) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]Row, 0, len(s.tables[table]))
	for _, row := range s.tables[table] {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UUID < rows[j].UUID })
	return rows, nil
}

func (s *MemStore) ListNetwork(ctx context.Context, table, network string) ([]Row, error) {
	all, err := s.List(ctx, table)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(all))
	for _, row := range all {
		if row.Network == network {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (s *MemStore) Delete(_ context.Context, table, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.table(table), uuid)
	return nil
}

func (s *MemStore) DeleteAll(_ context.Context, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = make(map[string]Row)
	return nil
}

// FileStore wraps a MemStore and snapshots its full contents to a JSON
// file after every mutation, so the CLI's default in-process run can
// survive across separate invocations without standing up a real
// database — still a reference implementation, not a production store.
type FileStore struct {
	path string
	mem  *MemStore
}

type fileStoreSnapshot struct {
	Tables map[string]map[string]Row `json:"tables"`
}

// NewFileStore loads path if it exists, or starts empty, and returns a
// Store that persists every mutation back to path.
func NewFileStore(path string) (*FileStore, error) {
	store := &FileStore{path: path, mem: NewMemStore()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "reading store file", err)
	}

	var snapshot fileStoreSnapshot
	if len(data) > 0 {
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, walleterrors.Wrap(walleterrors.KindStorageError, "decoding store file", err)
		}
		store.mem.tables = snapshot.Tables
		if store.mem.tables == nil {
			store.mem.tables = make(map[string]map[string]Row)
		}
	}
	return store, nil
}

func (s *FileStore) persist() error {
	s.mem.mu.RLock()
	snapshot := fileStoreSnapshot{Tables: s.mem.tables}
	data, err := json.Marshal(snapshot)
	s.mem.mu.RUnlock()
	if err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "encoding store snapshot", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "writing store file", err)
	}
	return nil
}

func (s *FileStore) Put(ctx context.Context, table, uuid, network string, data json.RawMessage) error {
	if err := s.mem.Put(ctx, table, uuid, network, data); err != nil {
		return err
	}
	return s.persist()
}

func (s *FileStore) Get(ctx context.Context, table, uuid string) (*Row, error) {
	return s.mem.Get(ctx, table, uuid)
}

func (s *FileStore) List(ctx context.Context, table string) ([]Row, error) {
	return s.mem.List(ctx, table)
}

func (s *FileStore) ListNetwork(ctx context.Context, table, network string) ([]Row, error) {
	return s.mem.ListNetwork(ctx, table, network)
}

func (s *FileStore) Delete(ctx context.Context, table, uuid string) error {
	if err := s.mem.Delete(ctx, table, uuid); err != nil {
		return err
	}
	return s.persist()
}

func (s *FileStore) DeleteAll(ctx context.Context, table string) error {
	if err := s.mem.DeleteAll(ctx, table); err != nil {
		return err
	}
	return s.persist()
}

// ErrNotFound is a typed not-found error for callers that want one; no
// Store in this package returns it. MemStore and FileStore return
// (nil, nil) for a missing row and let the caller decide, matching
// the teacher's getWallet/getConfig convention of a nil return meaning
// "absent" rather than an error.
var ErrNotFound = walleterrors.New(walleterrors.KindStorageError, "not found")
