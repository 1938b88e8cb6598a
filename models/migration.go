package models

import "gorm.io/gorm"

// MigrateRemoteTables creates the authoritative-store schema used by the
// GORM remote adapter. This is the remote backend's own schema bootstrap and
// is distinct from the local metadata migrations run by the sync engine.
func MigrateRemoteTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&Organization{}, &OrganizationMember{},
		&Product{}, &ProductCategory{},
		&Customer{},
		&Invoice{}, &Transaction{},
	)
}
