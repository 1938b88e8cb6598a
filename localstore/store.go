package localstore

import (
	"context"
	"encoding/json"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// Persisted status keys. Collections get one key per entity kind.
const (
	KeyMigrationStatus   = "storemaster:migration-status"
	KeyMultiTenantStatus = "storemaster:multi-tenant-migration"

	collectionKeyPrefix = "storemaster:collection:"
)

// Store is the client-resident persistence contract: one list per entity
// kind, read and rewritten whole. Writes are atomic per kind, not across
// kinds. Records are kept as raw JSON because collections written by older
// app versions may predate the sync-metadata schema.
type Store interface {
	GetAll(ctx context.Context, kind models.EntityKind) ([]json.RawMessage, error)
	SetAll(ctx context.Context, kind models.EntityKind, records []json.RawMessage) error

	// GetStatus/SetStatus read and write a small named status blob, such as
	// the migration version or the multi-tenant completion flag.
	GetStatus(ctx context.Context, key string, dest any) (bool, error)
	SetStatus(ctx context.Context, key string, value any) error
}

func CollectionKey(kind models.EntityKind) string {
	return collectionKeyPrefix + string(kind)
}

// EncodeRecords marshals a typed slice into the raw form the store accepts.
func EncodeRecords[T any](records []T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// DecodeRecords unmarshals raw store records into a typed slice. Records
// that fail to decode are returned as an error; the store never silently
// drops data.
func DecodeRecords[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var rec T
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
