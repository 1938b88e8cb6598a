package models

import "testing"

func TestIsValidKind(t *testing.T) {
	for _, kind := range AllKinds() {
		if !IsValidKind(kind) {
			t.Fatalf("%q should be valid", kind)
		}
	}
	if IsValidKind("widgets") {
		t.Fatalf("unknown kind accepted")
	}
}

func TestDeterministicOrganizationID(t *testing.T) {
	a := DeterministicOrganizationID("u1")
	b := DeterministicOrganizationID("u1")
	c := DeterministicOrganizationID("u2")
	if a != b {
		t.Fatalf("same user produced different ids: %s vs %s", a, b)
	}
	if a == c {
		t.Fatalf("different users share an id")
	}
}

func TestNewFreeTierOrganization(t *testing.T) {
	org := NewFreeTierOrganization("u1", "Ko Aung", "ko-aung-u1")
	if org.ID != DeterministicOrganizationID("u1") {
		t.Fatalf("organization id is not deterministic: %s", org.ID)
	}
	if org.MaxUsers != FreeTierMaxUsers ||
		org.MaxProducts != FreeTierMaxProducts ||
		org.MaxInvoicesPerMonth != FreeTierMaxInvoicesPerMonth ||
		org.MaxStorageMB != FreeTierMaxStorageMB {
		t.Fatalf("free-tier limits: %+v", org)
	}
	if org.IsActive == nil || !*org.IsActive {
		t.Fatalf("new organization must be active")
	}
}
