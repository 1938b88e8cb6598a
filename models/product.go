package models

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	SyncMeta
	Name                 string          `gorm:"index;size:255;not null" json:"name" binding:"required"`
	Sku                  string          `gorm:"size:100" json:"sku"`
	Barcode              string          `gorm:"size:100" json:"barcode"`
	Description          string          `gorm:"type:text" json:"description"`
	CategoryId           string          `gorm:"index;size:64" json:"categoryId"`
	CostPrice            decimal.Decimal `gorm:"type:decimal(20,4)" json:"costPrice"`
	SellingPrice         decimal.Decimal `gorm:"type:decimal(20,4)" json:"sellingPrice"`
	CurrentStock         int             `json:"currentStock"`
	MinimumStockLevel    int             `json:"minimumStockLevel"`
	ReorderFrequencyDays int             `gorm:"default:30" json:"reorderFrequencyDays"`
	Brand                string          `gorm:"size:100" json:"brand"`
	Supplier             string          `gorm:"size:255" json:"supplier"`
	IsActive             *bool           `gorm:"not null;default:true" json:"isActive"`
	UserId               string          `gorm:"index;size:64" json:"userId"`
	OrganizationId       *string         `gorm:"index;size:64;default:NULL" json:"organizationId"`
}

func (p Product) DisplayKey() string { return p.Name }
