package bookkeeping

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

var (
	// ErrInvalidItem is returned for an item with a missing name or a
	// quantity or price that is not positive.
	ErrInvalidItem = errors.New("invalid item: name is required, quantity and price must be positive")
	// ErrNoItems is returned when saving a builder that holds no items.
	ErrNoItems = errors.New("no items to save")
	// ErrInvalidDate is returned for a date that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")
	// ErrCustomerRequired is returned when a sale or order has no customer.
	ErrCustomerRequired = errors.New("customer name is required")
	// ErrItemNotFound is returned when removing an index the builder does not hold.
	ErrItemNotFound = errors.New("item not found")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

type itemInput struct {
	Item     string          `validate:"required"`
	Quantity decimal.Decimal `validate:"gt=0"`
	Price    decimal.Decimal `validate:"gt=0"`
}

func checkItem(in itemInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w (%s: %s)", ErrInvalidItem, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	return nil
}

// PurchaseLine is one pending purchase item.
type PurchaseLine struct {
	Supplier string          `json:"supplier"`
	Item     string          `json:"item"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// PurchaseBuilder collects the items of one purchase entry session. Each
// item becomes its own purchase record when saved.
type PurchaseBuilder struct {
	items []PurchaseLine
	total decimal.Decimal
}

// NewPurchaseBuilder returns an empty builder.
func NewPurchaseBuilder() *PurchaseBuilder {
	return &PurchaseBuilder{total: decimal.Zero}
}

// AddItem validates and appends an item, returning the stored line.
func (b *PurchaseBuilder) AddItem(supplier, item string, quantity, price decimal.Decimal) (PurchaseLine, error) {
	supplier, item = strings.TrimSpace(supplier), strings.TrimSpace(item)
	if supplier == "" {
		return PurchaseLine{}, fmt.Errorf("%w (supplier: required)", ErrInvalidItem)
	}
	if err := checkItem(itemInput{Item: item, Quantity: quantity, Price: price}); err != nil {
		return PurchaseLine{}, err
	}
	line := PurchaseLine{Supplier: supplier, Item: item, Quantity: quantity, Price: price, Total: quantity.Mul(price)}
	b.items = append(b.items, line)
	b.total = b.total.Add(line.Total)
	return line, nil
}

// RemoveItem drops the item at index.
func (b *PurchaseBuilder) RemoveItem(index int) error {
	if index < 0 || index >= len(b.items) {
		return ErrItemNotFound
	}
	b.total = b.total.Sub(b.items[index].Total)
	b.items = slices.Delete(b.items, index, index+1)
	return nil
}

// Items returns a copy of the pending items.
func (b *PurchaseBuilder) Items() []PurchaseLine { return slices.Clone(b.items) }

// Total is the sum of the pending item totals.
func (b *PurchaseBuilder) Total() decimal.Decimal { return b.total }

// Len reports how many items are pending.
func (b *PurchaseBuilder) Len() int { return len(b.items) }

// Clear empties the builder.
func (b *PurchaseBuilder) Clear() {
	b.items = nil
	b.total = decimal.Zero
}

// lineItems is the item list shared by sale and order builders.
type lineItems struct {
	items []models.LineItem
	total decimal.Decimal
}

// AddItem validates and appends a line item, returning the stored line.
func (l *lineItems) AddItem(item string, quantity, price decimal.Decimal) (models.LineItem, error) {
	item = strings.TrimSpace(item)
	if err := checkItem(itemInput{Item: item, Quantity: quantity, Price: price}); err != nil {
		return models.LineItem{}, err
	}
	line := models.LineItem{Item: item, Quantity: quantity, Price: price, Total: quantity.Mul(price)}
	l.items = append(l.items, line)
	l.total = l.total.Add(line.Total)
	return line, nil
}

// RemoveItem drops the item at index.
func (l *lineItems) RemoveItem(index int) error {
	if index < 0 || index >= len(l.items) {
		return ErrItemNotFound
	}
	l.total = l.total.Sub(l.items[index].Total)
	l.items = slices.Delete(l.items, index, index+1)
	return nil
}

// Items returns a copy of the pending items.
func (l *lineItems) Items() []models.LineItem { return slices.Clone(l.items) }

// Total is the sum of the pending item totals.
func (l *lineItems) Total() decimal.Decimal { return l.total }

// Len reports how many items are pending.
func (l *lineItems) Len() int { return len(l.items) }

// Clear empties the builder.
func (l *lineItems) Clear() {
	l.items = nil
	l.total = decimal.Zero
}

// SaleBuilder collects the line items of one sale.
type SaleBuilder struct {
	lineItems
}

// NewSaleBuilder returns an empty builder.
func NewSaleBuilder() *SaleBuilder {
	return &SaleBuilder{lineItems{total: decimal.Zero}}
}

// OrderBuilder collects the line items of one customer order.
type OrderBuilder struct {
	lineItems
}

// NewOrderBuilder returns an empty builder.
func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{lineItems{total: decimal.Zero}}
}
