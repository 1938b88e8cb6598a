package syncengine

import (
	"context"
	"testing"

	"github.com/ScepterCode/Storemaster-sub000/localstore"
	"github.com/ScepterCode/Storemaster-sub000/models"
)

func TestNeedsMultiTenantMigration_ExistingMembershipSelfHeals(t *testing.T) {
	store := localstore.NewMemoryStore()
	adapter := newFakeAdapter()
	adapter.memberships["u1"] = models.NewOwnerMembership("org-1", "u1")
	engine := newTestEngine(t, store, adapter)

	needed, err := engine.NeedsMultiTenantMigration(context.Background(), "u1")
	if err != nil {
		t.Fatalf("NeedsMultiTenantMigration: %v", err)
	}
	if needed {
		t.Fatalf("expected not needed with an existing membership")
	}

	var status models.MultiTenantMigrationStatus
	found, err := store.GetStatus(context.Background(), localstore.KeyMultiTenantStatus, &status)
	if err != nil || !found {
		t.Fatalf("GetStatus: found=%v err=%v", found, err)
	}
	if !status.Completed || status.OrganizationId != "org-1" {
		t.Fatalf("expected self-healed status, got %+v", status)
	}
}

func TestNeedsMultiTenantMigration_NoUser(t *testing.T) {
	engine := newTestEngine(t, localstore.NewMemoryStore(), newFakeAdapter())

	needed, err := engine.NeedsMultiTenantMigration(context.Background(), "")
	if err != nil {
		t.Fatalf("NeedsMultiTenantMigration: %v", err)
	}
	if needed {
		t.Fatalf("expected not needed without a user")
	}
}

func TestNeedsMultiTenantMigration_DetectsOwnedOrphans(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.seed(t, models.KindProduct, map[string]any{"id": "p1", "name": "Rice 5kg", "userId": "u1"})
	engine := newTestEngine(t, localstore.NewMemoryStore(), adapter)

	needed, err := engine.NeedsMultiTenantMigration(context.Background(), "u1")
	if err != nil {
		t.Fatalf("NeedsMultiTenantMigration: %v", err)
	}
	if !needed {
		t.Fatalf("expected needed with an owned orphan record")
	}

	needed, err = engine.NeedsMultiTenantMigration(context.Background(), "someone-else")
	if err != nil {
		t.Fatalf("NeedsMultiTenantMigration: %v", err)
	}
	if needed {
		t.Fatalf("expected not needed for a different user")
	}
}

func TestRunMultiTenantMigration_ReassignsOrphans(t *testing.T) {
	store := localstore.NewMemoryStore()
	adapter := newFakeAdapter()
	adapter.seed(t, models.KindProduct, map[string]any{"id": "p1", "name": "Rice 5kg", "userId": "u1"})
	adapter.seed(t, models.KindProduct, map[string]any{"id": "p2", "name": "Cooking Oil", "userId": "u1"})
	adapter.seed(t, models.KindProduct, map[string]any{"id": "p3", "name": "Salt", "userId": "u1"})
	adapter.seed(t, models.KindCategory, map[string]any{"id": "cat1", "name": "Groceries", "userId": "u1"})
	engine := newTestEngine(t, store, adapter)

	user := Identity{ID: "u1", Name: "Ko Aung", Email: "aung@example.com"}
	result, err := engine.RunMultiTenantMigration(context.Background(), user)
	if err != nil {
		t.Fatalf("RunMultiTenantMigration: %v", err)
	}
	if !result.Needed || !result.Completed {
		t.Fatalf("result: %+v", result)
	}

	if adapter.createdOrgs != 1 {
		t.Fatalf("expected exactly one organization created, got %d", adapter.createdOrgs)
	}
	if adapter.createdMemberships != 1 {
		t.Fatalf("expected exactly one membership created, got %d", adapter.createdMemberships)
	}
	if result.Updated[models.KindProduct] != 3 {
		t.Fatalf("productsUpdated = %d, expected 3", result.Updated[models.KindProduct])
	}
	if result.Updated[models.KindCategory] != 1 {
		t.Fatalf("categoriesUpdated = %d, expected 1", result.Updated[models.KindCategory])
	}
	if result.Updated[models.KindCustomer] != 0 {
		t.Fatalf("customersUpdated = %d, expected 0", result.Updated[models.KindCustomer])
	}

	org := adapter.organizations[result.OrganizationId]
	if org == nil {
		t.Fatalf("organization %s not stored", result.OrganizationId)
	}
	if org.MaxUsers != models.FreeTierMaxUsers || org.MaxProducts != models.FreeTierMaxProducts {
		t.Fatalf("expected free-tier limits, got %+v", org)
	}
	if org.Slug != "ko-aung-u1" {
		t.Fatalf("slug = %q", org.Slug)
	}
}

func TestRunMultiTenantMigration_DeterministicOrganizationAcrossRetries(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.seed(t, models.KindProduct, map[string]any{"id": "p1", "name": "Rice 5kg", "userId": "u1"})
	engine := newTestEngine(t, localstore.NewMemoryStore(), adapter)

	user := Identity{ID: "u1", Name: "Ko Aung"}
	first, err := engine.RunMultiTenantMigration(context.Background(), user)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.OrganizationId != models.DeterministicOrganizationID("u1") {
		t.Fatalf("organization id %s is not the deterministic one", first.OrganizationId)
	}

	// Simulate a crash after the organization was created: wipe the
	// membership and local flag, leave the organization behind.
	adapter.mu.Lock()
	delete(adapter.memberships, "u1")
	adapter.mu.Unlock()
	adapter.seed(t, models.KindCustomer, map[string]any{"id": "c1", "name": "Daw Mya", "userId": "u1"})
	engine2 := newTestEngine(t, localstore.NewMemoryStore(), adapter)

	second, err := engine2.RunMultiTenantMigration(context.Background(), user)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.OrganizationId != first.OrganizationId {
		t.Fatalf("retry created a different organization: %s vs %s", second.OrganizationId, first.OrganizationId)
	}
	if adapter.createdOrgs != 1 {
		t.Fatalf("retry created a second organization, total %d", adapter.createdOrgs)
	}
}

func TestRunMultiTenantMigration_NotNeededWhenAlreadyMember(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.memberships["u1"] = models.NewOwnerMembership("org-1", "u1")
	engine := newTestEngine(t, localstore.NewMemoryStore(), adapter)

	result, err := engine.RunMultiTenantMigration(context.Background(), Identity{ID: "u1"})
	if err != nil {
		t.Fatalf("RunMultiTenantMigration: %v", err)
	}
	if result.Needed || result.Completed {
		t.Fatalf("expected a no-op result, got %+v", result)
	}
	if adapter.createdOrgs != 0 {
		t.Fatalf("no-op run created an organization")
	}
}

func TestOrganizationName_FallsBackToEmailThenDefault(t *testing.T) {
	cases := []struct {
		user     Identity
		expected string
	}{
		{Identity{Name: "Ko Aung"}, "Ko Aung"},
		{Identity{Email: "aung@example.com"}, "aung"},
		{Identity{Email: "plainaddress"}, "plainaddress"},
		{Identity{}, "My Organization"},
	}
	for _, tc := range cases {
		if got := organizationName(tc.user); got != tc.expected {
			t.Fatalf("organizationName(%+v) = %q, expected %q", tc.user, got, tc.expected)
		}
	}
}

func TestOrganizationSlug_TruncatesAndSuffixes(t *testing.T) {
	slug := organizationSlug("Ko Aung's Shop & Services", "0123456789abcdef")
	if slug != "ko-aung-s-shop-services-01234567" {
		t.Fatalf("slug = %q", slug)
	}

	long := organizationSlug("ABCDEFGHIJKLMNOPQRSTUVWXYZ abcdefghijklmnopqrstuvwxyz 0123456789", "user-001")
	// Name part capped at 50, then the 8-char suffix.
	if len(long) > 50+1+8 {
		t.Fatalf("slug too long: %q (%d)", long, len(long))
	}
}
