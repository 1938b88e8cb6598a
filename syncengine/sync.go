package syncengine

import (
	"context"
	"errors"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/remote"
)

// SyncAll pushes every pending record across all entity kinds. Only one
// pass may run at a time; a pass already in flight returns
// ErrSyncInProgress without touching any record.
func (e *Engine) SyncAll(ctx context.Context, user Identity) (models.SyncReport, error) {
	return e.runSync(ctx, user, models.AllKinds())
}

// SyncEntity pushes pending records of a single kind.
func (e *Engine) SyncEntity(ctx context.Context, user Identity, kind models.EntityKind) (models.SyncReport, error) {
	if !models.IsValidKind(kind) {
		return models.SyncReport{}, &PreconditionError{Reason: "unknown entity kind " + string(kind)}
	}
	return e.runSync(ctx, user, []models.EntityKind{kind})
}

func (e *Engine) runSync(ctx context.Context, user Identity, kinds []models.EntityKind) (models.SyncReport, error) {
	if user.ID == "" {
		return models.SyncReport{}, &PreconditionError{Reason: "no authenticated user"}
	}
	if err := e.beginSync(); err != nil {
		return models.SyncReport{}, err
	}

	report := models.SyncReport{
		StartedAt: e.now(),
		Entities:  make([]models.EntitySyncResult, 0, len(kinds)),
	}
	for _, kind := range kinds {
		entity := e.syncCollection(ctx, user, kind)
		report.Entities = append(report.Entities, entity)
		report.TotalOperations += entity.Total
		report.Successful += entity.Successful
		report.Failed += entity.Failed
	}
	report.FinishedAt = e.now()
	e.endSync(report.FinishedAt)

	e.logger.WithField("module", "syncengine").
		WithField("total", report.TotalOperations).
		WithField("successful", report.Successful).
		WithField("failed", report.Failed).
		Info("sync pass finished")
	return report, nil
}

// syncCollection pushes every due record of one kind sequentially. A failed
// push never aborts the pass; it is recorded on the record itself and the
// loop moves on. Records that are not due yet or dead are skipped and do
// not count toward the totals.
func (e *Engine) syncCollection(ctx context.Context, user Identity, kind models.EntityKind) models.EntitySyncResult {
	result := models.EntitySyncResult{Kind: kind}

	records, err := e.store.GetAll(ctx, kind)
	if err != nil {
		config.LogError(e.logger, "syncengine", "syncCollection", "load collection "+string(kind), nil, err)
		return result
	}
	if len(records) == 0 {
		return result
	}

	now := e.now()
	dirty := false
	for i, raw := range records {
		m, err := decodeRecord(raw)
		if err != nil {
			continue
		}
		if !pendingSync(m, now) {
			continue
		}
		if user.OrgID != "" {
			if org := recordString(m, "organizationId"); org != "" && org != user.OrgID {
				continue
			}
		}

		result.Total++
		if err := e.pushRecord(ctx, kind, m, user); err != nil {
			result.Failed++
			e.markFailed(m, err, now)
			config.LogError(e.logger, "syncengine", "syncCollection", "push "+string(kind), map[string]interface{}{
				"id": recordString(m, "id"),
			}, err)
		} else {
			result.Successful++
			e.markSynced(m)
		}

		encoded, err := encodeRecord(m)
		if err != nil {
			config.LogError(e.logger, "syncengine", "syncCollection", "encode "+string(kind), nil, err)
			continue
		}
		records[i] = encoded
		dirty = true
	}

	if dirty {
		if err := e.store.SetAll(ctx, kind, records); err != nil {
			config.LogError(e.logger, "syncengine", "syncCollection", "persist collection "+string(kind), nil, err)
		}
	}
	return result
}

// pushRecord updates the remote copy, falling back to a create when the
// remote has never seen the record.
func (e *Engine) pushRecord(ctx context.Context, kind models.EntityKind, m map[string]interface{}, user Identity) error {
	raw, err := encodeRecord(m)
	if err != nil {
		return err
	}

	id := recordString(m, "id")
	_, err = e.adapter.Update(ctx, kind, raw)
	if errors.Is(err, remote.ErrNotFound) {
		_, err = e.adapter.Create(ctx, kind, raw, user.ID)
	}
	if err != nil {
		return &RemoteError{Kind: kind, ID: id, Err: err}
	}
	return nil
}

func (e *Engine) markSynced(m map[string]interface{}) {
	m["synced"] = true
	m["syncAttempts"] = 0
	delete(m, "lastSyncError")
	delete(m, "nextAttemptAt")
	delete(m, "dead")
}

func (e *Engine) markFailed(m map[string]interface{}, cause error, now time.Time) {
	attempts := recordInt(m, "syncAttempts") + 1
	m["syncAttempts"] = attempts
	m["lastSyncError"] = cause.Error()
	if attempts >= e.retry.MaxAttempts {
		m["dead"] = true
		delete(m, "nextAttemptAt")
		return
	}
	m["nextAttemptAt"] = now.Add(backoff(e.retry, attempts)).Format(time.RFC3339Nano)
}

// backoff doubles per failed attempt starting from the base, capped at the
// configured maximum.
func backoff(retry config.SyncRetryConfig, attempts int) time.Duration {
	d := retry.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= retry.MaxBackoff {
			return retry.MaxBackoff
		}
	}
	if d > retry.MaxBackoff {
		return retry.MaxBackoff
	}
	return d
}

// GetSyncStatus counts pending records per kind. The in-progress flag and
// last sync time come from the engine itself, never from storage.
func (e *Engine) GetSyncStatus(ctx context.Context) (models.SyncStatus, error) {
	status := models.SyncStatus{
		InProgress:    e.Syncing(),
		PendingByKind: make(map[models.EntityKind]int, len(models.AllKinds())),
	}

	e.mu.Lock()
	status.LastSyncAt = e.lastSyncAt
	e.mu.Unlock()

	now := e.now()
	for _, kind := range models.AllKinds() {
		records, err := e.store.GetAll(ctx, kind)
		if err != nil {
			return status, &StorageError{Op: "load collection " + string(kind), Err: err}
		}
		pending := 0
		for _, raw := range records {
			m, err := decodeRecord(raw)
			if err != nil {
				continue
			}
			if pendingSync(m, now) {
				pending++
			}
		}
		status.PendingByKind[kind] = pending
		status.TotalPending += pending
	}

	e.mu.Lock()
	cached := status
	e.cached = &cached
	e.mu.Unlock()
	return status, nil
}

// HasPendingSync reports whether any kind has at least one due record.
func (e *Engine) HasPendingSync(ctx context.Context) (bool, error) {
	status, err := e.GetSyncStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.TotalPending > 0, nil
}

// CachedSyncStatus returns the most recent status snapshot without touching
// storage, or a live one when nothing has been cached yet.
func (e *Engine) CachedSyncStatus(ctx context.Context) (models.SyncStatus, error) {
	e.mu.Lock()
	cached := e.cached
	e.mu.Unlock()
	if cached != nil {
		snapshot := *cached
		snapshot.InProgress = e.Syncing()
		return snapshot, nil
	}
	return e.GetSyncStatus(ctx)
}
