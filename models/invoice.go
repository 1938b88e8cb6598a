package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusIssued  InvoiceStatus = "issued"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusVoid    InvoiceStatus = "void"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

type Invoice struct {
	SyncMeta
	InvoiceNumber  string          `gorm:"index;size:100;not null" json:"invoiceNumber" binding:"required"`
	CustomerId     string          `gorm:"index;size:64" json:"customerId"`
	InvoiceDate    time.Time       `json:"invoiceDate"`
	DueDate        *time.Time      `json:"dueDate"`
	Status         InvoiceStatus   `gorm:"size:20;default:draft" json:"status"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4)" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(20,4)" json:"taxAmount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4)" json:"discountAmount"`
	Total          decimal.Decimal `gorm:"type:decimal(20,4)" json:"total"`
	Notes          string          `gorm:"type:text" json:"notes"`
	UserId         string          `gorm:"index;size:64" json:"userId"`
	OrganizationId *string         `gorm:"index;size:64;default:NULL" json:"organizationId"`
}

func (i Invoice) DisplayKey() string { return i.InvoiceNumber }
