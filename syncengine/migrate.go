package syncengine

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/google/uuid"
)

// CurrentMigrationVersion gates the local metadata migrations. Bump it when
// a new migration set ships; the stored version only advances after every
// per-entity migration in a run succeeds.
const CurrentMigrationVersion = 2

// RunMigrations upgrades already-persisted local records to the current
// metadata schema. It is idempotent: once the stored version reaches the
// target it returns immediately without touching any collection. A partial
// failure leaves the version unchanged so the exact same migration set runs
// again next launch.
func (e *Engine) RunMigrations(ctx context.Context) models.MigrationReport {
	report := models.MigrationReport{
		Version:       CurrentMigrationVersion,
		AllSuccessful: true,
		Timestamp:     e.now(),
	}

	var status models.MigrationStatus
	found, err := e.store.GetStatus(ctx, localstore.KeyMigrationStatus, &status)
	if err != nil {
		// Unreadable version counter: treat as version 0. The migrations
		// are idempotent so re-running them is safe.
		config.LogError(e.logger, "syncengine", "RunMigrations", "read migration status", nil, err)
	}
	if found && status.Version >= CurrentMigrationVersion {
		return report
	}

	for _, kind := range models.AllKinds() {
		result := e.migrateCollection(ctx, kind)
		report.Results = append(report.Results, result)
		report.TotalItemsMigrated += result.ItemsMigrated
		if !result.Success {
			report.AllSuccessful = false
		}
	}

	if report.AllSuccessful {
		persisted := models.MigrationStatus{
			Version:   CurrentMigrationVersion,
			Timestamp: report.Timestamp,
			Results:   report.Results,
		}
		if err := e.store.SetStatus(ctx, localstore.KeyMigrationStatus, persisted); err != nil {
			// The version stays behind and the same set reruns next launch;
			// the collections themselves are already upgraded.
			config.LogError(e.logger, "syncengine", "RunMigrations", "persist migration status", nil, err)
		}
	}

	e.logger.WithField("module", "syncengine").
		WithField("allSuccessful", report.AllSuccessful).
		WithField("totalItemsMigrated", report.TotalItemsMigrated).
		Info("local metadata migration finished")

	return report
}

// migrateCollection upgrades one entity kind. Failures are reported, never
// thrown: a broken collection must not abort its siblings.
func (e *Engine) migrateCollection(ctx context.Context, kind models.EntityKind) models.EntityMigrationResult {
	result := models.EntityMigrationResult{Kind: kind}

	records, err := e.store.GetAll(ctx, kind)
	if err != nil {
		storageErr := &StorageError{Op: "read " + string(kind), Err: err}
		config.LogError(e.logger, "syncengine", "migrateCollection", string(kind), nil, storageErr)
		result.Error = storageErr.Error()
		return result
	}
	if len(records) == 0 {
		result.Success = true
		return result
	}

	decoded := make([]map[string]any, len(records))
	needsRewrite := false
	for i, raw := range records {
		m, err := decodeRecord(raw)
		if err != nil {
			result.Error = "undecodable record in " + string(kind) + ": " + err.Error()
			return result
		}
		decoded[i] = m
		if !hasSyncMetadata(m) {
			needsRewrite = true
		}
	}

	if !needsRewrite {
		result.Success = true
		return result
	}

	// One record without metadata forces a whole-collection rewrite.
	// Qualifying records keep their original bytes so migration leaves them
	// untouched on disk.
	rewritten := make([]json.RawMessage, len(records))
	now := e.now()
	for i, m := range decoded {
		if hasSyncMetadata(m) {
			rewritten[i] = records[i]
			continue
		}
		e.fillSyncMetadata(m, now)
		raw, err := encodeRecord(m)
		if err != nil {
			result.Error = err.Error()
			result.ItemsMigrated = 0
			return result
		}
		rewritten[i] = raw
		result.ItemsMigrated++
	}

	if err := e.store.SetAll(ctx, kind, rewritten); err != nil {
		storageErr := &StorageError{Op: "write " + string(kind), Err: err}
		config.LogError(e.logger, "syncengine", "migrateCollection", string(kind), nil, storageErr)
		result.Error = storageErr.Error()
		result.ItemsMigrated = 0
		return result
	}

	result.Success = true
	return result
}

func (e *Engine) fillSyncMetadata(m map[string]any, now time.Time) {
	if strings.TrimSpace(recordString(m, "id")) == "" {
		m["id"] = uuid.NewString()
	}
	if _, ok := recordBool(m, "synced"); !ok {
		m["synced"] = e.policy == AssumeSynced
	}
	if _, ok := m["lastModified"].(string); !ok {
		m["lastModified"] = now.Format(time.RFC3339Nano)
	}
	switch m["syncAttempts"].(type) {
	case float64, int:
	default:
		m["syncAttempts"] = 0
	}
}
