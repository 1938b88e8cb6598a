package syncengine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
)

func TestMerge_RemoteWinsOnCollision(t *testing.T) {
	locals := []models.Product{
		{SyncMeta: models.SyncMeta{ID: "p1", Synced: false}, Name: "Rice 5kg (local edit)"},
		{SyncMeta: models.SyncMeta{ID: "p2", Synced: false}, Name: "Local Only"},
	}
	remotes := []models.Product{
		{SyncMeta: models.SyncMeta{ID: "p1"}, Name: "Rice 5kg"},
		{SyncMeta: models.SyncMeta{ID: "p3"}, Name: "Remote Only"},
	}

	merged := Merge[models.Product](locals, remotes)
	if len(merged) != 3 {
		t.Fatalf("expected 3 records, got %d", len(merged))
	}

	byID := make(map[string]models.Product, len(merged))
	for _, p := range merged {
		byID[p.ID] = p
	}
	if byID["p1"].Name != "Rice 5kg" {
		t.Fatalf("remote copy did not win: %+v", byID["p1"])
	}
	if !byID["p1"].Synced || !byID["p3"].Synced {
		t.Fatalf("remote records must come back synced")
	}
	if byID["p2"].Synced {
		t.Fatalf("local-only record gained a synced flag")
	}
}

func TestMerge_SortsByDisplayKeyThenID(t *testing.T) {
	locals := []models.Product{
		{SyncMeta: models.SyncMeta{ID: "p2"}, Name: "Salt"},
		{SyncMeta: models.SyncMeta{ID: "p9"}, Name: "Salt"},
		{SyncMeta: models.SyncMeta{ID: "p1"}, Name: "Cooking Oil"},
	}

	merged := Merge[models.Product](locals, nil)
	if merged[0].Name != "Cooking Oil" {
		t.Fatalf("order: %+v", merged)
	}
	if merged[1].ID != "p2" || merged[2].ID != "p9" {
		t.Fatalf("equal keys not ordered by id: %s then %s", merged[1].ID, merged[2].ID)
	}
}

func TestMergedView_CombinesLocalAndRemote(t *testing.T) {
	store := localstore.NewMemoryStore()
	adapter := newFakeAdapter()
	engine := newTestEngine(t, store, adapter)

	seedCollection(t, store, models.KindProduct,
		map[string]any{"id": "p1", "name": "Rice 5kg", "synced": false},
	)
	adapter.seed(t, models.KindProduct, map[string]any{"id": "p1", "name": "Rice 5kg (remote)"})
	adapter.seed(t, models.KindProduct, map[string]any{"id": "p2", "name": "Cooking Oil"})

	records, err := engine.MergedView(context.Background(), models.KindProduct, "u1", "")
	if err != nil {
		t.Fatalf("MergedView: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	var first map[string]any
	if err := json.Unmarshal(records[0], &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// "Cooking Oil" sorts before "Rice 5kg (remote)".
	if first["name"] != "Cooking Oil" {
		t.Fatalf("unexpected order, first = %v", first["name"])
	}

	var second map[string]any
	if err := json.Unmarshal(records[1], &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second["name"] != "Rice 5kg (remote)" {
		t.Fatalf("remote copy did not win: %v", second["name"])
	}
	if synced, _ := second["synced"].(bool); !synced {
		t.Fatalf("remote record not forced synced")
	}
}

func TestMergedView_UsesInvoiceNumberAsKey(t *testing.T) {
	store := localstore.NewMemoryStore()
	adapter := newFakeAdapter()
	engine := newTestEngine(t, store, adapter)

	seedCollection(t, store, models.KindInvoice,
		map[string]any{"id": "i2", "invoiceNumber": "INV-002"},
		map[string]any{"id": "i1", "invoiceNumber": "INV-001"},
	)

	records, err := engine.MergedView(context.Background(), models.KindInvoice, "u1", "")
	if err != nil {
		t.Fatalf("MergedView: %v", err)
	}

	var first map[string]any
	if err := json.Unmarshal(records[0], &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["invoiceNumber"] != "INV-001" {
		t.Fatalf("unexpected order, first = %v", first["invoiceNumber"])
	}
}
