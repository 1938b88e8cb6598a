package localstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

func testStoreRoundtrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	records, err := store.GetAll(ctx, models.KindProduct)
	if err != nil {
		t.Fatalf("GetAll empty: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty collection, got %d records", len(records))
	}

	in := []json.RawMessage{
		json.RawMessage(`{"id":"p1","name":"Rice 5kg"}`),
		json.RawMessage(`{"id":"p2","name":"Salt"}`),
	}
	if err := store.SetAll(ctx, models.KindProduct, in); err != nil {
		t.Fatalf("SetAll: %v", err)
	}

	out, err := store.GetAll(ctx, models.KindProduct)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if string(out[0]) != string(in[0]) {
		t.Fatalf("record changed in storage:\n got %s\nwant %s", out[0], in[0])
	}

	// Collections are isolated per kind.
	other, err := store.GetAll(ctx, models.KindCustomer)
	if err != nil {
		t.Fatalf("GetAll other kind: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("kinds leak into each other: %d records", len(other))
	}
}

func testStoreStatus(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	var status models.MigrationStatus
	found, err := store.GetStatus(ctx, KeyMigrationStatus, &status)
	if err != nil {
		t.Fatalf("GetStatus missing: %v", err)
	}
	if found {
		t.Fatalf("expected no status before SetStatus")
	}

	if err := store.SetStatus(ctx, KeyMigrationStatus, models.MigrationStatus{Version: 2}); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	found, err = store.GetStatus(ctx, KeyMigrationStatus, &status)
	if err != nil || !found {
		t.Fatalf("GetStatus: found=%v err=%v", found, err)
	}
	if status.Version != 2 {
		t.Fatalf("Version = %d, expected 2", status.Version)
	}
}

func TestMemoryStore(t *testing.T) {
	testStoreRoundtrip(t, NewMemoryStore())
	testStoreStatus(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	testStoreRoundtrip(t, store)

	store2, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	testStoreStatus(t, store2)
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	in := []json.RawMessage{json.RawMessage(`{"id":"p1"}`)}
	if err := first.SetAll(ctx, models.KindProduct, in); err != nil {
		t.Fatalf("SetAll: %v", err)
	}

	second, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	out, err := second.GetAll(ctx, models.KindProduct)
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(out) != 1 || string(out[0]) != `{"id":"p1"}` {
		t.Fatalf("data did not survive reopen: %v", out)
	}
}

func TestCollectionKey(t *testing.T) {
	if got := CollectionKey(models.KindProduct); got != "storemaster:collection:products" {
		t.Fatalf("CollectionKey = %q", got)
	}
}
