package jsonfile

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

// Wire shapes mirror the persisted documents with optional fields left
// nullable so defaults can be applied once, here.

type purchaseDoc struct {
	ID           int64               `json:"id"`
	Supplier     string              `json:"supplier"`
	Item         string              `json:"item"`
	Quantity     decimal.Decimal     `json:"quantity"`
	Price        decimal.Decimal     `json:"price"`
	Total        decimal.NullDecimal `json:"total"`
	PurchaseDate string              `json:"purchase_date"`
	InvoiceRef   string              `json:"invoice_ref"`
	Paid         *bool               `json:"paid"`
	Balance      decimal.NullDecimal `json:"balance"`
}

type lineItemDoc struct {
	Item     string              `json:"item"`
	Quantity decimal.Decimal     `json:"quantity"`
	Price    decimal.Decimal     `json:"price"`
	Total    decimal.NullDecimal `json:"total"`
}

type saleDoc struct {
	ID           int64               `json:"id"`
	InvoiceNo    string              `json:"invoice_no"`
	CustomerName string              `json:"customer_name"`
	Items        []lineItemDoc       `json:"items"`
	TotalAmount  decimal.NullDecimal `json:"total_amount"`
	SaleDate     string              `json:"sale_date"`
}

type orderDoc struct {
	ID           int64               `json:"id"`
	OrderNo      string              `json:"order_no"`
	CustomerName string              `json:"customer_name"`
	Items        []lineItemDoc       `json:"items"`
	TotalAmount  decimal.NullDecimal `json:"total_amount"`
	OrderDate    string              `json:"order_date"`
	Status       string              `json:"status"`
}

func decodePurchase(raw json.RawMessage) (models.PurchaseRecord, error) {
	var doc purchaseDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.PurchaseRecord{}, err
	}

	// A purchase stored without a total counts as 0, never quantity x price.
	total := decimal.Zero
	if doc.Total.Valid {
		total = doc.Total.Decimal
	}

	record := models.PurchaseRecord{
		ID:           doc.ID,
		Supplier:     doc.Supplier,
		Item:         doc.Item,
		Quantity:     doc.Quantity,
		Price:        doc.Price,
		Total:        total,
		PurchaseDate: doc.PurchaseDate,
		InvoiceRef:   doc.InvoiceRef,
	}

	switch {
	case doc.Balance.Valid:
		record.Balance = doc.Balance.Decimal
	case doc.Paid != nil && *doc.Paid:
		record.Balance = decimal.Zero
	default:
		// Purchases saved before payment tracking existed owe their full total.
		record.Balance = total
	}

	return repository.NormalizePurchase(record), nil
}

func decodeLineItems(docs []lineItemDoc) ([]models.LineItem, decimal.Decimal) {
	items := make([]models.LineItem, 0, len(docs))
	sum := decimal.Zero
	for _, d := range docs {
		total := d.Quantity.Mul(d.Price)
		if d.Total.Valid {
			total = d.Total.Decimal
		}
		items = append(items, models.LineItem{
			Item:     d.Item,
			Quantity: d.Quantity,
			Price:    d.Price,
			Total:    total,
		})
		sum = sum.Add(total)
	}
	return items, sum
}

func decodeSale(raw json.RawMessage) (models.SaleRecord, error) {
	var doc saleDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.SaleRecord{}, err
	}

	items, sum := decodeLineItems(doc.Items)
	total := sum
	if doc.TotalAmount.Valid {
		total = doc.TotalAmount.Decimal
	}

	return models.SaleRecord{
		ID:           doc.ID,
		InvoiceNo:    doc.InvoiceNo,
		CustomerName: doc.CustomerName,
		Items:        items,
		TotalAmount:  total,
		SaleDate:     doc.SaleDate,
	}, nil
}

func decodeOrder(raw json.RawMessage) (models.OrderRecord, error) {
	var doc orderDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.OrderRecord{}, err
	}

	items, sum := decodeLineItems(doc.Items)
	total := sum
	if doc.TotalAmount.Valid {
		total = doc.TotalAmount.Decimal
	}

	status := doc.Status
	if status == "" {
		status = models.OrderStatusPending
	}

	return models.OrderRecord{
		ID:           doc.ID,
		OrderNo:      doc.OrderNo,
		CustomerName: doc.CustomerName,
		Items:        items,
		TotalAmount:  total,
		OrderDate:    doc.OrderDate,
		Status:       status,
	}, nil
}

func decodePayment(raw json.RawMessage) (models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return models.PaymentRecord{}, err
	}
	if record.Type == "" {
		record.Type = models.SupplierPaymentType
	}
	return record, nil
}
