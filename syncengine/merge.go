package syncengine

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// Merge combines local and remote copies of one collection. Local records
// seed the result, then remote records overwrite by id with synced forced
// true. Remote-only records appear, local-only records survive, and on an
// id collision the remote copy wins wholesale. The result sorts by display
// key, falling back to id for a stable order.
func Merge[T any, PT interface {
	models.Syncable
	*T
}](locals []T, remotes []T) []T {
	index := make(map[string]int, len(locals)+len(remotes))
	merged := make([]T, 0, len(locals)+len(remotes))

	for _, rec := range locals {
		id := PT(&rec).SyncID()
		index[id] = len(merged)
		merged = append(merged, rec)
	}
	for _, rec := range remotes {
		p := PT(&rec)
		p.SetSynced(true)
		if at, ok := index[p.SyncID()]; ok {
			merged[at] = rec
			continue
		}
		index[p.SyncID()] = len(merged)
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := PT(&merged[i]), PT(&merged[j])
		if a.DisplayKey() != b.DisplayKey() {
			return a.DisplayKey() < b.DisplayKey()
		}
		return a.SyncID() < b.SyncID()
	})
	return merged
}

// MergedView fetches the remote copy of a collection and merges it with the
// local one, returning raw records for callers that never needed the typed
// model.
func (e *Engine) MergedView(ctx context.Context, kind models.EntityKind, userID string, orgID string) ([]json.RawMessage, error) {
	if !models.IsValidKind(kind) {
		return nil, &PreconditionError{Reason: "unknown entity kind " + string(kind)}
	}

	locals, err := e.store.GetAll(ctx, kind)
	if err != nil {
		return nil, &StorageError{Op: "load collection " + string(kind), Err: err}
	}
	remotes, err := e.adapter.FetchAll(ctx, kind, userID, orgID)
	if err != nil {
		return nil, &RemoteError{Kind: kind, ID: "", Err: err}
	}
	return mergeRaw(kind, locals, remotes), nil
}

type mergeEntry struct {
	raw json.RawMessage
	id  string
	key string
}

func mergeRaw(kind models.EntityKind, locals []json.RawMessage, remotes []json.RawMessage) []json.RawMessage {
	index := make(map[string]int, len(locals)+len(remotes))
	entries := make([]mergeEntry, 0, len(locals)+len(remotes))

	add := func(raw json.RawMessage, fromRemote bool) {
		m, err := decodeRecord(raw)
		if err != nil {
			return
		}
		if fromRemote {
			m["synced"] = true
			encoded, err := encodeRecord(m)
			if err != nil {
				return
			}
			raw = encoded
		}
		entry := mergeEntry{raw: raw, id: recordString(m, "id"), key: displayKey(kind, m)}
		if at, ok := index[entry.id]; ok && entry.id != "" {
			entries[at] = entry
			return
		}
		index[entry.id] = len(entries)
		entries = append(entries, entry)
	}

	for _, raw := range locals {
		add(raw, false)
	}
	for _, raw := range remotes {
		add(raw, true)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].id < entries[j].id
	})

	merged := make([]json.RawMessage, len(entries))
	for i, entry := range entries {
		merged[i] = entry.raw
	}
	return merged
}

// displayKey mirrors each model's DisplayKey for raw records.
func displayKey(kind models.EntityKind, m map[string]interface{}) string {
	switch kind {
	case models.KindInvoice:
		return recordString(m, "invoiceNumber")
	case models.KindTransaction:
		return recordString(m, "transactionNumber")
	default:
		return recordString(m, "name")
	}
}
