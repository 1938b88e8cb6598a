package syncengine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/utils"
	"github.com/google/uuid"
)

// ApplyCreate stores a new record locally, marked dirty for the next sync
// pass. A missing id is assigned here so the record can be matched against
// its remote copy later.
func (e *Engine) ApplyCreate(ctx context.Context, kind models.EntityKind, record json.RawMessage) (json.RawMessage, error) {
	if !models.IsValidKind(kind) {
		return nil, &PreconditionError{Reason: "unknown entity kind " + string(kind)}
	}
	m, err := decodeRecord(record)
	if err != nil {
		return nil, err
	}
	if recordString(m, "id") == "" {
		m["id"] = uuid.NewString()
	}
	e.markDirty(m)

	encoded, err := encodeRecord(m)
	if err != nil {
		return nil, err
	}

	records, err := e.store.GetAll(ctx, kind)
	if err != nil {
		return nil, &StorageError{Op: "load collection " + string(kind), Err: err}
	}
	records = append(records, encoded)
	if err := e.store.SetAll(ctx, kind, records); err != nil {
		return nil, &StorageError{Op: "persist collection " + string(kind), Err: err}
	}
	return encoded, nil
}

// ApplyUpdate replaces the local copy of a record by id and marks it dirty.
func (e *Engine) ApplyUpdate(ctx context.Context, kind models.EntityKind, id string, record json.RawMessage) (json.RawMessage, error) {
	if !models.IsValidKind(kind) {
		return nil, &PreconditionError{Reason: "unknown entity kind " + string(kind)}
	}
	if id == "" {
		return nil, &PreconditionError{Reason: "missing record id"}
	}
	m, err := decodeRecord(record)
	if err != nil {
		return nil, err
	}
	m["id"] = id
	e.markDirty(m)

	encoded, err := encodeRecord(m)
	if err != nil {
		return nil, err
	}

	records, err := e.store.GetAll(ctx, kind)
	if err != nil {
		return nil, &StorageError{Op: "load collection " + string(kind), Err: err}
	}
	found := false
	for i, raw := range records {
		existing, err := decodeRecord(raw)
		if err != nil {
			continue
		}
		if recordString(existing, "id") == id {
			records[i] = encoded
			found = true
			break
		}
	}
	if !found {
		return nil, utils.ErrorRecordNotFound
	}
	if err := e.store.SetAll(ctx, kind, records); err != nil {
		return nil, &StorageError{Op: "persist collection " + string(kind), Err: err}
	}
	return encoded, nil
}

// ApplyDelete removes the local copy immediately and deletes the remote
// copy best-effort. A remote failure is logged, never surfaced; the local
// delete already happened and stays.
func (e *Engine) ApplyDelete(ctx context.Context, kind models.EntityKind, id string) error {
	if !models.IsValidKind(kind) {
		return &PreconditionError{Reason: "unknown entity kind " + string(kind)}
	}
	if id == "" {
		return &PreconditionError{Reason: "missing record id"}
	}

	records, err := e.store.GetAll(ctx, kind)
	if err != nil {
		return &StorageError{Op: "load collection " + string(kind), Err: err}
	}
	kept := records[:0]
	found := false
	for _, raw := range records {
		m, err := decodeRecord(raw)
		if err == nil && recordString(m, "id") == id {
			found = true
			continue
		}
		kept = append(kept, raw)
	}
	if !found {
		return utils.ErrorRecordNotFound
	}
	if err := e.store.SetAll(ctx, kind, kept); err != nil {
		return &StorageError{Op: "persist collection " + string(kind), Err: err}
	}

	if err := e.adapter.Delete(ctx, kind, id); err != nil {
		config.LogError(e.logger, "syncengine", "ApplyDelete", "remote delete "+string(kind), map[string]interface{}{
			"id": id,
		}, err)
	}
	return nil
}

// markDirty stamps the metadata a local write carries. lastModified only
// moves forward so replayed writes cannot rewind it.
func (e *Engine) markDirty(m map[string]interface{}) {
	now := e.now()
	if prev, ok := recordTime(m, "lastModified"); ok && prev.After(now) {
		now = prev
	}
	m["synced"] = false
	m["lastModified"] = now.Format(time.RFC3339Nano)
	m["syncAttempts"] = 0
	delete(m, "lastSyncError")
	delete(m, "nextAttemptAt")
	delete(m, "dead")
}
