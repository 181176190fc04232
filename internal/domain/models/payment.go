package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates the ways a supplier can be paid.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "CASH"
	PaymentMpesa PaymentMethod = "MPESA"
	PaymentBank  PaymentMethod = "BANK"
)

// SupplierPaymentType tags every payment written by supplier settlement.
const SupplierPaymentType = "supplier_payment"

// ParsePaymentMethod normalises user input; an empty value means cash.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "", string(PaymentCash):
		return PaymentCash, nil
	case string(PaymentMpesa), "M-PESA":
		return PaymentMpesa, nil
	case string(PaymentBank):
		return PaymentBank, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", value)
	}
}

// PaymentRecord is an append-only ledger entry for money paid to a supplier.
type PaymentRecord struct {
	ID          int64           `bson:"id" json:"id" gorm:"primaryKey;autoIncrement:false"`
	Supplier    string          `bson:"supplier" json:"supplier" gorm:"size:180;index"`
	Amount      decimal.Decimal `bson:"amount" json:"amount" gorm:"type:decimal(14,2)"`
	Method      PaymentMethod   `bson:"method" json:"method" gorm:"size:16"`
	Reference   string          `bson:"reference" json:"reference" gorm:"size:120"`
	PaymentDate string          `bson:"payment_date" json:"payment_date" gorm:"size:40"`
	Type        string          `bson:"type" json:"type" gorm:"size:32"`
}

// TableName pins the gorm table name.
func (PaymentRecord) TableName() string { return "payments" }

// Date returns the stored payment timestamp text.
func (p PaymentRecord) Date() string { return p.PaymentDate }
