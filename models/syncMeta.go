package models

import "time"

// EntityKind names one locally-persisted collection. The local store keeps
// exactly one list per kind.
type EntityKind string

const (
	KindProduct     EntityKind = "products"
	KindCategory    EntityKind = "categories"
	KindCustomer    EntityKind = "customers"
	KindInvoice     EntityKind = "invoices"
	KindTransaction EntityKind = "transactions"
)

// AllKinds returns every syncable collection, in sync order.
func AllKinds() []EntityKind {
	return []EntityKind{KindProduct, KindCategory, KindCustomer, KindInvoice, KindTransaction}
}

func IsValidKind(kind EntityKind) bool {
	switch kind {
	case KindProduct, KindCategory, KindCustomer, KindInvoice, KindTransaction:
		return true
	}
	return false
}

// SyncMeta is embedded by every syncable entity. Synced is true only once
// the remote copy is known identical; the retry bookkeeping fields are
// client-local and never persisted to the remote store.
type SyncMeta struct {
	ID            string     `gorm:"primary_key;size:64" json:"id"`
	Synced        bool       `gorm:"-" json:"synced"`
	LastModified  time.Time  `json:"lastModified"`
	SyncAttempts  int        `gorm:"-" json:"syncAttempts"`
	LastSyncError string     `gorm:"-" json:"lastSyncError,omitempty"`
	NextAttemptAt *time.Time `gorm:"-" json:"nextAttemptAt,omitempty"`
	Dead          bool       `gorm:"-" json:"dead,omitempty"`
}

func (m SyncMeta) SyncID() string { return m.ID }

func (m *SyncMeta) SetSynced(synced bool) { m.Synced = synced }

// Syncable is what the merge resolver needs from an entity.
type Syncable interface {
	SyncID() string
	SetSynced(synced bool)
	DisplayKey() string
}
