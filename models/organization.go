package models

import (
	"time"

	"github.com/google/uuid"
)

// Free-tier subscription defaults applied to organizations created by the
// multi-tenant migration.
const (
	FreeTierMaxUsers            = 2
	FreeTierMaxProducts         = 50
	FreeTierMaxInvoicesPerMonth = 20
	FreeTierMaxStorageMB        = 100
)

const (
	MemberRoleOwner = "owner"
	MemberRoleStaff = "staff"
)

type Organization struct {
	ID                  string    `gorm:"primary_key;size:64" json:"id"`
	Name                string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Slug                string    `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	MaxUsers            int       `gorm:"not null" json:"maxUsers"`
	MaxProducts         int       `gorm:"not null" json:"maxProducts"`
	MaxInvoicesPerMonth int       `gorm:"not null" json:"maxInvoicesPerMonth"`
	MaxStorageMB        int       `gorm:"not null" json:"maxStorageMb"`
	IsActive            *bool     `gorm:"not null;default:true" json:"isActive"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

type OrganizationMember struct {
	ID             string    `gorm:"primary_key;size:64" json:"id"`
	OrganizationId string    `gorm:"index;size:64;not null" json:"organizationId"`
	UserId         string    `gorm:"uniqueIndex;size:64;not null" json:"userId"`
	Role           string    `gorm:"size:20;not null" json:"role"`
	IsActive       *bool     `gorm:"not null;default:true" json:"isActive"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// nsOrganization namespaces the deterministic organization id derived from a
// user id, so a crashed migration re-converges on the same organization
// instead of creating an orphan on retry.
var nsOrganization = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func DeterministicOrganizationID(userID string) string {
	return uuid.NewSHA1(nsOrganization, []byte("organization:"+userID)).String()
}

func NewFreeTierOrganization(userID string, name string, slug string) *Organization {
	active := true
	return &Organization{
		ID:                  DeterministicOrganizationID(userID),
		Name:                name,
		Slug:                slug,
		MaxUsers:            FreeTierMaxUsers,
		MaxProducts:         FreeTierMaxProducts,
		MaxInvoicesPerMonth: FreeTierMaxInvoicesPerMonth,
		MaxStorageMB:        FreeTierMaxStorageMB,
		IsActive:            &active,
	}
}

func NewOwnerMembership(orgID string, userID string) *OrganizationMember {
	active := true
	return &OrganizationMember{
		ID:             uuid.NewString(),
		OrganizationId: orgID,
		UserId:         userID,
		Role:           MemberRoleOwner,
		IsActive:       &active,
	}
}
