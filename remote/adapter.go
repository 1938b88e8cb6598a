package remote

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// ErrNotFound reports that the remote store has no copy of the record. The
// sync coordinator falls back from update to create on it.
var ErrNotFound = errors.New("remote: record not found")

// BulkFilter selects the records a bulk update applies to. The only shipped
// use is the multi-tenant reassignment: records owned by a user whose
// organization reference is still null.
type BulkFilter struct {
	Kind             models.EntityKind
	UserId           string
	OrganizationNull bool
}

// BulkPatch is the field set a bulk update writes.
type BulkPatch struct {
	OrganizationId *string
}

// Adapter is the authoritative networked backend. Records travel as raw
// JSON in the same wire shape the local store keeps. Any error from these
// methods is a recoverable per-record failure, never a process fault.
type Adapter interface {
	FetchAll(ctx context.Context, kind models.EntityKind, userID string, orgID string) ([]json.RawMessage, error)
	Create(ctx context.Context, kind models.EntityKind, record json.RawMessage, userID string) (json.RawMessage, error)
	// Update returns ErrNotFound when the remote copy does not exist.
	Update(ctx context.Context, kind models.EntityKind, record json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, kind models.EntityKind, id string) error
	// BulkUpdate applies patch to every record matching filter and returns
	// the affected-row count.
	BulkUpdate(ctx context.Context, filter BulkFilter, patch BulkPatch) (int64, error)

	// FindMembership returns (nil, nil) when the user has no membership.
	FindMembership(ctx context.Context, userID string) (*models.OrganizationMember, error)
	// FindOrganization returns (nil, nil) when no organization has that id.
	FindOrganization(ctx context.Context, id string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, org *models.Organization) (*models.Organization, error)
	CreateMembership(ctx context.Context, member *models.OrganizationMember) (*models.OrganizationMember, error)
}
