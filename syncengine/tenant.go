package syncengine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/config"
	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
	"github.com/ScepterCode/Storemaster-sub000/remote"
	"github.com/ScepterCode/Storemaster-sub000/utils"
	"github.com/bsm/redislock"
)

// MultiTenantMigrationVersion gates the one-time single-tenant to
// multi-tenant reassignment.
const MultiTenantMigrationVersion = 1

const orgSlugMaxLen = 50

// NeedsMultiTenantMigration decides, short-circuiting in order: local status
// already completed at the target version; no authenticated user; an active
// remote membership (self-heals the local flag); otherwise any record owned
// by the user with a null organization reference.
func (e *Engine) NeedsMultiTenantMigration(ctx context.Context, userID string) (bool, error) {
	var status models.MultiTenantMigrationStatus
	found, err := e.store.GetStatus(ctx, localstore.KeyMultiTenantStatus, &status)
	if err != nil {
		// A local flag is only a cache; fall through to the remote check.
		config.LogError(e.logger, "syncengine", "NeedsMultiTenantMigration", "read local status", nil, err)
	}
	if found && status.Completed && status.Version >= MultiTenantMigrationVersion {
		return false, nil
	}

	if strings.TrimSpace(userID) == "" {
		return false, nil
	}

	member, err := e.adapter.FindMembership(ctx, userID)
	if err != nil {
		return false, &RemoteError{Kind: "memberships", ID: userID, Err: err}
	}
	if member != nil {
		// The remote membership is authoritative; repair the stale cache.
		healed := models.MultiTenantMigrationStatus{
			Version:        MultiTenantMigrationVersion,
			Completed:      true,
			OrganizationId: member.OrganizationId,
			Timestamp:      e.now(),
		}
		if err := e.store.SetStatus(ctx, localstore.KeyMultiTenantStatus, healed); err != nil {
			config.LogError(e.logger, "syncengine", "NeedsMultiTenantMigration", "self-heal local status", nil, err)
		}
		return false, nil
	}

	for _, kind := range models.AllKinds() {
		records, err := e.adapter.FetchAll(ctx, kind, userID, "")
		if err != nil {
			return false, &RemoteError{Kind: kind, ID: "", Err: err}
		}
		for _, raw := range records {
			m, err := decodeRecord(raw)
			if err != nil {
				continue
			}
			if recordOwnedOrphan(m, userID) {
				return true, nil
			}
		}
	}
	return false, nil
}

// RunMultiTenantMigration creates an owning organization for the user's
// orphaned records and reassigns them. The organization id is derived
// deterministically from the user id and creation is find-or-create, so a
// crash between steps re-converges on the same organization on retry. Only
// a missing user propagates as an error; every other failure is persisted
// into the status blob and reported in the result.
func (e *Engine) RunMultiTenantMigration(ctx context.Context, user Identity) (models.MultiTenantMigrationResult, error) {
	result := models.MultiTenantMigrationResult{Timestamp: e.now()}

	if strings.TrimSpace(user.ID) == "" {
		return result, &PreconditionError{Reason: "no authenticated user"}
	}

	needed, err := e.NeedsMultiTenantMigration(ctx, user.ID)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}
	if !needed {
		return result, nil
	}
	result.Needed = true

	if e.locker != nil {
		lock, err := e.locker.Obtain(ctx, "storemaster:tenant-migration:"+user.ID, time.Minute, nil)
		if err != nil {
			if errors.Is(err, redislock.ErrNotObtained) {
				return result, ErrMigrationInProgress
			}
			result.Error = err.Error()
			return result, nil
		}
		defer lock.Release(context.WithoutCancel(ctx))
	}

	org, err := e.findOrCreateOrganization(ctx, user)
	if err != nil {
		e.persistTenantFailure(ctx, &result, err)
		return result, nil
	}
	result.OrganizationId = org.ID

	if _, err := e.adapter.CreateMembership(ctx, models.NewOwnerMembership(org.ID, user.ID)); err != nil {
		e.persistTenantFailure(ctx, &result, &PartialMigrationError{
			OrganizationId: org.ID,
			Step:           "create membership",
			Err:            err,
		})
		return result, nil
	}

	result.Updated = make(map[models.EntityKind]int64, len(models.AllKinds()))
	orgID := org.ID
	for _, kind := range models.AllKinds() {
		affected, err := e.adapter.BulkUpdate(ctx, remote.BulkFilter{
			Kind:             kind,
			UserId:           user.ID,
			OrganizationNull: true,
		}, remote.BulkPatch{OrganizationId: &orgID})
		if err != nil {
			e.persistTenantFailure(ctx, &result, &PartialMigrationError{
				OrganizationId: org.ID,
				Step:           "reassign " + string(kind),
				Err:            err,
			})
			return result, nil
		}
		result.Updated[kind] = affected
	}

	completed := models.MultiTenantMigrationStatus{
		Version:        MultiTenantMigrationVersion,
		Completed:      true,
		OrganizationId: org.ID,
		Timestamp:      e.now(),
	}
	if err := e.store.SetStatus(ctx, localstore.KeyMultiTenantStatus, completed); err != nil {
		// The remote membership now exists, so the next launch self-heals.
		config.LogError(e.logger, "syncengine", "RunMultiTenantMigration", "persist completed status", nil, err)
	}

	result.Completed = true
	e.logger.WithField("module", "syncengine").
		WithField("organizationId", org.ID).
		WithField("updated", result.Updated).
		Info("multi-tenant migration completed")
	return result, nil
}

func (e *Engine) findOrCreateOrganization(ctx context.Context, user Identity) (*models.Organization, error) {
	orgID := models.DeterministicOrganizationID(user.ID)

	org, err := e.adapter.FindOrganization(ctx, orgID)
	if err != nil {
		return nil, &RemoteError{Kind: "organizations", ID: orgID, Err: err}
	}
	if org != nil {
		return org, nil
	}

	name := organizationName(user)
	created, err := e.adapter.CreateOrganization(ctx, models.NewFreeTierOrganization(user.ID, name, organizationSlug(name, user.ID)))
	if err != nil {
		return nil, &RemoteError{Kind: "organizations", ID: orgID, Err: err}
	}
	return created, nil
}

func (e *Engine) persistTenantFailure(ctx context.Context, result *models.MultiTenantMigrationResult, cause error) {
	config.LogError(e.logger, "syncengine", "RunMultiTenantMigration", "migration step failed", nil, cause)
	result.Error = cause.Error()

	failed := models.MultiTenantMigrationStatus{
		Version:   MultiTenantMigrationVersion,
		Completed: false,
		Timestamp: e.now(),
		Error:     cause.Error(),
	}
	if err := e.store.SetStatus(ctx, localstore.KeyMultiTenantStatus, failed); err != nil {
		config.LogError(e.logger, "syncengine", "RunMultiTenantMigration", "persist failed status", nil, err)
	}
}

func organizationName(user Identity) string {
	return utils.FirstNonEmpty(user.Name, emailLocalPart(user.Email), "My Organization")
}

func emailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

// organizationSlug derives a unique slug: the slugified name truncated to 50
// characters plus the first 8 characters of the user id.
func organizationSlug(name string, userID string) string {
	slug := utils.Slugify(name, orgSlugMaxLen)
	suffix := userID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if slug == "" {
		return suffix
	}
	return slug + "-" + suffix
}
