package models

import "github.com/shopspring/decimal"

// OrderStatusPending is the status of a freshly captured customer order.
const OrderStatusPending = "Pending"

// OrderRecord captures a customer order that has not been invoiced yet.
type OrderRecord struct {
	ID           int64           `bson:"id" json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderNo      string          `bson:"order_no" json:"order_no" gorm:"size:32;index"`
	CustomerName string          `bson:"customer_name" json:"customer_name" gorm:"size:180"`
	Items        []LineItem      `bson:"items" json:"items" gorm:"serializer:json;type:text"`
	TotalAmount  decimal.Decimal `bson:"total_amount" json:"total_amount" gorm:"type:decimal(14,2)"`
	OrderDate    string          `bson:"order_date" json:"order_date" gorm:"size:40"`
	Status       string          `bson:"status" json:"status" gorm:"size:32"`
}

// TableName pins the gorm table name.
func (OrderRecord) TableName() string { return "orders" }
