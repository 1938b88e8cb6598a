package syncengine

import (
	"errors"
	"fmt"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// ErrSyncInProgress rejects a sync call made while another pass is in
// flight. Calls are rejected, never queued.
var ErrSyncInProgress = errors.New("sync in progress")

// ErrMigrationInProgress rejects a multi-tenant migration attempt while
// another device holds the run lock.
var ErrMigrationInProgress = errors.New("multi-tenant migration already running")

// StorageError wraps a local store read/write failure. It is folded into
// migration/sync reports and never crashes the process.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RemoteError wraps a network/backend failure for one record. The record is
// retried on the next pass; siblings are never blocked.
type RemoteError struct {
	Kind models.EntityKind
	ID   string
	Err  error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s/%s: %v", e.Kind, e.ID, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// PreconditionError rejects a call before anything is attempted, such as a
// missing authenticated user or an unknown entity kind.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// PartialMigrationError marks a multi-tenant migration step that failed
// after the organization was already created. The deterministic organization
// id lets the next retry converge on the same organization instead of
// orphaning it.
type PartialMigrationError struct {
	OrganizationId string
	Step           string
	Err            error
}

func (e *PartialMigrationError) Error() string {
	return fmt.Sprintf("multi-tenant migration failed at %s (organization %s): %v", e.Step, e.OrganizationId, e.Err)
}

func (e *PartialMigrationError) Unwrap() error { return e.Err }
