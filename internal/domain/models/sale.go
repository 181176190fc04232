package models

import "github.com/shopspring/decimal"

// LineItem is one item on a sale or an order.
type LineItem struct {
	Item     string          `bson:"item" json:"item"`
	Quantity decimal.Decimal `bson:"quantity" json:"quantity"`
	Price    decimal.Decimal `bson:"price" json:"price"`
	Total    decimal.Decimal `bson:"total" json:"total"`
}

// SaleRecord is a sale header with its nested line items.
type SaleRecord struct {
	ID           int64           `bson:"id" json:"id" gorm:"primaryKey;autoIncrement:false"`
	InvoiceNo    string          `bson:"invoice_no" json:"invoice_no" gorm:"size:64;index"`
	CustomerName string          `bson:"customer_name" json:"customer_name" gorm:"size:180"`
	Items        []LineItem      `bson:"items" json:"items" gorm:"serializer:json;type:text"`
	TotalAmount  decimal.Decimal `bson:"total_amount" json:"total_amount" gorm:"type:decimal(14,2)"`
	SaleDate     string          `bson:"sale_date" json:"sale_date" gorm:"size:40"`
}

// TableName pins the gorm table name.
func (SaleRecord) TableName() string { return "sales" }

// Date returns the stored sale date text.
func (s SaleRecord) Date() string { return s.SaleDate }

// ItemsSold sums the quantities of every line item.
func (s SaleRecord) ItemsSold() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Quantity)
	}
	return total
}

// SaleRow is the flattened, row-per-item view of a sale.
type SaleRow struct {
	SaleID       int64           `json:"id"`
	InvoiceNo    string          `json:"invoice_no"`
	CustomerName string          `json:"customer_name"`
	Item         string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Total        decimal.Decimal `json:"total"`
	SaleDate     string          `json:"sale_date"`
}

// Date returns the stored sale date text.
func (r SaleRow) Date() string { return r.SaleDate }

// FlattenSales expands every sale into one row per line item, preserving order.
func FlattenSales(sales []SaleRecord) []SaleRow {
	rows := make([]SaleRow, 0, len(sales))
	for _, sale := range sales {
		for _, item := range sale.Items {
			rows = append(rows, SaleRow{
				SaleID:       sale.ID,
				InvoiceNo:    sale.InvoiceNo,
				CustomerName: sale.CustomerName,
				Item:         item.Item,
				Quantity:     item.Quantity,
				Price:        item.Price,
				Total:        item.Total,
				SaleDate:     sale.SaleDate,
			})
		}
	}
	return rows
}
