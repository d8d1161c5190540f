package addressbook

import (
	"context"
	"testing"

	"github.com/coldwatch/wallet/internal/storage"
)

func TestAddListRemove(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()

	entry, err := Add(ctx, store, "main", "alice", "bc1qexampleaddress")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	entries, err := List(ctx, store, "main")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].UUID != entry.UUID {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if err := Remove(ctx, store, entry.UUID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	entries, err = List(ctx, store, "main")
	if err != nil {
		t.Fatalf("List after remove: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries after remove, got %d", len(entries))
	}
}

func TestAddRejectsEmptyFields(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	if _, err := Add(ctx, store, "main", "", "bc1q..."); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := Add(ctx, store, "main", "bob", ""); err == nil {
		t.Fatalf("expected error for empty address")
	}
}

func TestListFiltersByNetwork(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	if _, err := Add(ctx, store, "main", "alice", "bc1qmain"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := Add(ctx, store, "test", "bob", "tb1qtest"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	mainEntries, err := List(ctx, store, "main")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mainEntries) != 1 || mainEntries[0].Name != "alice" {
		t.Fatalf("unexpected main entries: %+v", mainEntries)
	}
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemStore()
	entry, err := Add(ctx, store, "main", "alice", "bc1qexampleaddress")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	updated, err := Rename(ctx, store, entry, "alice-2")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if updated.Name != "alice-2" {
		t.Fatalf("expected renamed entry")
	}
}
