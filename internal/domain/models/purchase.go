package models

import "github.com/shopspring/decimal"

// PurchaseRecord is one purchased line from a supplier. Paid and Balance are
// only ever changed by supplier settlement.
type PurchaseRecord struct {
	ID           int64           `bson:"id" json:"id" gorm:"primaryKey;autoIncrement:false"`
	Supplier     string          `bson:"supplier" json:"supplier" gorm:"size:180;index"`
	Item         string          `bson:"item" json:"item" gorm:"size:200"`
	Quantity     decimal.Decimal `bson:"quantity" json:"quantity" gorm:"type:decimal(14,3)"`
	Price        decimal.Decimal `bson:"price" json:"price" gorm:"type:decimal(14,2)"`
	Total        decimal.Decimal `bson:"total" json:"total" gorm:"type:decimal(14,2)"`
	PurchaseDate string          `bson:"purchase_date" json:"purchase_date" gorm:"size:40"`
	InvoiceRef   string          `bson:"invoice_ref" json:"invoice_ref" gorm:"size:64"`
	Paid         bool            `bson:"paid" json:"paid"`
	Balance      decimal.Decimal `bson:"balance" json:"balance" gorm:"type:decimal(14,2)"`
}

// TableName pins the gorm table name.
func (PurchaseRecord) TableName() string { return "purchases" }

// Date returns the stored purchase date text.
func (p PurchaseRecord) Date() string { return p.PurchaseDate }

// Outstanding reports whether any part of the purchase is still unpaid.
func (p PurchaseRecord) Outstanding() bool { return p.Balance.IsPositive() }

// AmountPaid is the settled portion of the purchase.
func (p PurchaseRecord) AmountPaid() decimal.Decimal { return p.Total.Sub(p.Balance) }
