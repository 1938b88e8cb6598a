package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeSale   TransactionType = "sale"
	TransactionTypeRefund TransactionType = "refund"
)

type Transaction struct {
	SyncMeta
	TransactionNumber string          `gorm:"index;size:100;not null" json:"transactionNumber"`
	Type              TransactionType `gorm:"size:20;default:sale" json:"type"`
	TransactionDate   time.Time       `json:"transactionDate"`
	InvoiceId         string          `gorm:"index;size:64" json:"invoiceId"`
	PaymentMethod     string          `gorm:"size:50" json:"paymentMethod"`
	Amount            decimal.Decimal `gorm:"type:decimal(20,4)" json:"amount"`
	UserId            string          `gorm:"index;size:64" json:"userId"`
	OrganizationId    *string         `gorm:"index;size:64;default:NULL" json:"organizationId"`
}

func (t Transaction) DisplayKey() string { return t.TransactionNumber }
