package bookkeeping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

const (
	invoicePrefix = "INV"
	orderPrefix   = "ORD"
)

// SaleHeader carries the fields of a sale entered alongside its items.
type SaleHeader struct {
	Customer  string `validate:"required"`
	Date      string `validate:"required,datetime=2006-01-02"`
	InvoiceNo string
}

// Service records purchases, sales and orders in the record store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a bookkeeping service on top of the record store.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// SavePurchase stores one unpaid purchase record per pending item, all dated
// date (YYYY-MM-DD), and clears the builder.
func (s *Service) SavePurchase(ctx context.Context, b *PurchaseBuilder, date, invoiceRef string) ([]models.PurchaseRecord, error) {
	if b == nil || b.Len() == 0 {
		return nil, ErrNoItems
	}
	stamp, err := storedDate(date)
	if err != nil {
		return nil, err
	}

	var created []models.PurchaseRecord
	err = repository.Update(ctx, s.store, func(ctx context.Context) error {
		purchases, err := repository.LoadForWrite(ctx, "purchases", s.store.LoadPurchases)
		if err != nil {
			return err
		}

		nextID := repository.NextID(purchases, func(p models.PurchaseRecord) int64 { return p.ID })
		created = make([]models.PurchaseRecord, 0, b.Len())
		for _, line := range b.Items() {
			created = append(created, models.PurchaseRecord{
				ID:           nextID,
				Supplier:     line.Supplier,
				Item:         line.Item,
				Quantity:     line.Quantity,
				Price:        line.Price,
				Total:        line.Total,
				PurchaseDate: stamp,
				InvoiceRef:   strings.TrimSpace(invoiceRef),
				Paid:         false,
				Balance:      line.Total,
			})
			nextID++
		}

		if err := s.store.SavePurchases(ctx, append(purchases, created...)); err != nil {
			return fmt.Errorf("save purchases: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	b.Clear()

	s.logger.Info("purchase saved",
		zap.Int("items", len(created)),
		zap.String("date", stamp))
	return created, nil
}

// SaveSale stores the pending items as one sale and clears the builder. An
// empty invoice number is replaced by the next INV number.
func (s *Service) SaveSale(ctx context.Context, b *SaleBuilder, header SaleHeader) (models.SaleRecord, error) {
	header.Customer = strings.TrimSpace(header.Customer)
	header.Date = strings.TrimSpace(header.Date)
	if err := checkHeader(header); err != nil {
		return models.SaleRecord{}, err
	}
	if b == nil || b.Len() == 0 {
		return models.SaleRecord{}, ErrNoItems
	}

	var sale models.SaleRecord
	err := repository.Update(ctx, s.store, func(ctx context.Context) error {
		sales, err := repository.LoadForWrite(ctx, "sales", s.store.LoadSales)
		if err != nil {
			return err
		}

		invoice := strings.TrimSpace(header.InvoiceNo)
		if invoice == "" {
			invoice = nextInvoice(sales)
		}
		sale = models.SaleRecord{
			ID:           repository.NextID(sales, func(r models.SaleRecord) int64 { return r.ID }),
			InvoiceNo:    invoice,
			CustomerName: header.Customer,
			Items:        b.Items(),
			TotalAmount:  b.Total(),
			SaleDate:     header.Date + "T00:00:00",
		}

		if err := s.store.SaveSales(ctx, append(sales, sale)); err != nil {
			return fmt.Errorf("save sales: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.SaleRecord{}, err
	}
	b.Clear()

	s.logger.Info("sale saved",
		zap.String("invoice", sale.InvoiceNo),
		zap.String("customer", sale.CustomerName),
		zap.String("total", sale.TotalAmount.String()))
	return sale, nil
}

// NextInvoiceNo previews the number the next sale without one would get.
func (s *Service) NextInvoiceNo(ctx context.Context) (string, error) {
	sales, err := s.store.LoadSales(ctx)
	if err != nil {
		s.logLoadError("sales", err)
	}
	return nextInvoice(sales), nil
}

// SaveOrder stores the pending items as a Pending order dated now and clears
// the builder.
func (s *Service) SaveOrder(ctx context.Context, b *OrderBuilder, customer string) (models.OrderRecord, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return models.OrderRecord{}, ErrCustomerRequired
	}
	if b == nil || b.Len() == 0 {
		return models.OrderRecord{}, ErrNoItems
	}

	var order models.OrderRecord
	err := repository.Update(ctx, s.store, func(ctx context.Context) error {
		orders, err := repository.LoadForWrite(ctx, "orders", s.store.LoadOrders)
		if err != nil {
			return err
		}

		refs := make([]string, 0, len(orders))
		for _, o := range orders {
			refs = append(refs, o.OrderNo)
		}
		order = models.OrderRecord{
			ID:           repository.NextID(orders, func(o models.OrderRecord) int64 { return o.ID }),
			OrderNo:      repository.FormatNumber(orderPrefix, repository.NextNumber(refs, orderPrefix)),
			CustomerName: customer,
			Items:        b.Items(),
			TotalAmount:  b.Total(),
			OrderDate:    s.now().Format(models.DateTimeLayout),
			Status:       models.OrderStatusPending,
		}

		if err := s.store.SaveOrders(ctx, append(orders, order)); err != nil {
			return fmt.Errorf("save orders: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.OrderRecord{}, err
	}
	b.Clear()

	s.logger.Info("order saved", zap.String("order", order.OrderNo), zap.String("customer", customer))
	return order, nil
}

// Purchases lists every stored purchase.
func (s *Service) Purchases(ctx context.Context) ([]models.PurchaseRecord, error) {
	purchases, err := s.store.LoadPurchases(ctx)
	if err != nil {
		s.logLoadError("purchases", err)
	}
	return purchases, nil
}

// Sales lists every stored sale with its line items.
func (s *Service) Sales(ctx context.Context) ([]models.SaleRecord, error) {
	sales, err := s.store.LoadSales(ctx)
	if err != nil {
		s.logLoadError("sales", err)
	}
	return sales, nil
}

// SaleRows lists every stored sale as one row per line item.
func (s *Service) SaleRows(ctx context.Context) ([]models.SaleRow, error) {
	sales, err := s.Sales(ctx)
	if err != nil {
		return nil, err
	}
	return models.FlattenSales(sales), nil
}

// Orders lists every stored order.
func (s *Service) Orders(ctx context.Context) ([]models.OrderRecord, error) {
	orders, err := s.store.LoadOrders(ctx)
	if err != nil {
		s.logLoadError("orders", err)
	}
	return orders, nil
}

// IsInputError reports whether err was caused by the caller's input.
func IsInputError(err error) bool {
	for _, target := range []error{ErrInvalidItem, ErrNoItems, ErrInvalidDate, ErrCustomerRequired, ErrItemNotFound} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func checkHeader(header SaleHeader) error {
	err := validate.Struct(header)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Field() == "Customer" {
			return ErrCustomerRequired
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidDate, header.Date)
}

func storedDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return date + "T00:00:00", nil
}

func nextInvoice(sales []models.SaleRecord) string {
	refs := make([]string, 0, len(sales))
	for _, sale := range sales {
		refs = append(refs, sale.InvoiceNo)
	}
	return repository.FormatNumber(invoicePrefix, repository.NextNumber(refs, invoicePrefix))
}

func (s *Service) logLoadError(collection string, err error) {
	if errors.Is(err, repository.ErrUnavailable) {
		s.logger.Debug("collection unavailable", zap.String("collection", collection), zap.Error(err))
		return
	}
	s.logger.Warn("collection load failed", zap.String("collection", collection), zap.Error(err))
}
