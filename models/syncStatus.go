package models

import "time"

// MigrationStatus is the persisted migration-version blob. It is written
// only after every per-entity migration in a run succeeds; a partial failure
// leaves the stored version untouched so the same set retries next launch.
type MigrationStatus struct {
	Version   int                     `json:"version"`
	Timestamp time.Time               `json:"timestamp"`
	Results   []EntityMigrationResult `json:"results"`
}

// MultiTenantMigrationStatus is the persisted one-time-reassignment blob.
// It is a local cache only: a remote membership record is the authoritative
// truth and always overrides a stale local flag.
type MultiTenantMigrationStatus struct {
	Version        int       `json:"version"`
	Completed      bool      `json:"completed"`
	OrganizationId string    `json:"organizationId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Error          string    `json:"error,omitempty"`
}

type EntityMigrationResult struct {
	Kind          EntityKind `json:"entity"`
	Success       bool       `json:"success"`
	ItemsMigrated int        `json:"itemsMigrated"`
	Error         string     `json:"error,omitempty"`
}

type MigrationReport struct {
	Version            int                     `json:"version"`
	AllSuccessful      bool                    `json:"allSuccessful"`
	TotalItemsMigrated int                     `json:"totalItemsMigrated"`
	Results            []EntityMigrationResult `json:"results"`
	Timestamp          time.Time               `json:"timestamp"`
}

type MultiTenantMigrationResult struct {
	Needed         bool                 `json:"needed"`
	Completed      bool                 `json:"completed"`
	OrganizationId string               `json:"organizationId,omitempty"`
	Updated        map[EntityKind]int64 `json:"updated,omitempty"`
	Error          string               `json:"error,omitempty"`
	Timestamp      time.Time            `json:"timestamp"`
}

type EntitySyncResult struct {
	Kind       EntityKind `json:"entity"`
	Total      int        `json:"total"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
}

type SyncReport struct {
	TotalOperations int                `json:"totalOperations"`
	Successful      int                `json:"successful"`
	Failed          int                `json:"failed"`
	Entities        []EntitySyncResult `json:"entities"`
	StartedAt       time.Time          `json:"startedAt"`
	FinishedAt      time.Time          `json:"finishedAt"`
}

type SyncStatus struct {
	InProgress    bool               `json:"inProgress"`
	TotalPending  int                `json:"totalPending"`
	PendingByKind map[EntityKind]int `json:"pendingByKind"`
	LastSyncAt    *time.Time         `json:"lastSyncAt"`
}
