package models

type Customer struct {
	SyncMeta
	Name           string  `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Email          string  `gorm:"size:255" json:"email"`
	Phone          string  `gorm:"size:20" json:"phone"`
	Mobile         string  `gorm:"size:20" json:"mobile"`
	Address        string  `gorm:"type:text" json:"address"`
	UserId         string  `gorm:"index;size:64" json:"userId"`
	OrganizationId *string `gorm:"index;size:64;default:NULL" json:"organizationId"`
}

func (c Customer) DisplayKey() string { return c.Name }
