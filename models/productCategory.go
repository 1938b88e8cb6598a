package models

type ProductCategory struct {
	SyncMeta
	Name           string  `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Description    string  `gorm:"type:text" json:"description"`
	UserId         string  `gorm:"index;size:64" json:"userId"`
	OrganizationId *string `gorm:"index;size:64;default:NULL" json:"organizationId"`
}

func (c ProductCategory) DisplayKey() string { return c.Name }
