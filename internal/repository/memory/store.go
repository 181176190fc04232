package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

// Store keeps every collection in process memory. Collections never saved
// report repository.ErrAbsent on load, like absent files do.
type Store struct {
	mu        sync.RWMutex
	purchases []models.PurchaseRecord
	sales     []models.SaleRecord
	payments  []models.PaymentRecord
	orders    []models.OrderRecord
	present   map[string]bool

	// SaveErr, when set, is returned by every save.
	SaveErr error
	// LoadErr, when set, is returned by every load with an empty collection,
	// the way a database store reports a failed read.
	LoadErr error
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{present: make(map[string]bool)}
}

// Seeded returns a store whose purchases and sales collections exist.
func Seeded(purchases []models.PurchaseRecord, sales []models.SaleRecord) *Store {
	s := NewStore()
	_ = s.SavePurchases(context.Background(), purchases)
	_ = s.SaveSales(context.Background(), sales)
	return s
}

func load[T any](s *Store, name string, records *[]T) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LoadErr != nil {
		return []T{}, repository.Unavailable(name, s.LoadErr)
	}
	out := slices.Clone(*records)
	if out == nil {
		out = []T{}
	}
	if !s.present[name] {
		return out, repository.Absent(name, nil)
	}
	return out, nil
}

func save[T any](s *Store, name string, dst *[]T, records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	*dst = slices.Clone(records)
	s.present[name] = true
	return nil
}

// LoadPurchases returns a copy of the purchases.
func (s *Store) LoadPurchases(_ context.Context) ([]models.PurchaseRecord, error) {
	return load(s, "purchases", &s.purchases)
}

// SavePurchases replaces the purchases.
func (s *Store) SavePurchases(_ context.Context, purchases []models.PurchaseRecord) error {
	return save(s, "purchases", &s.purchases, purchases)
}

// LoadSales returns a copy of the sales.
func (s *Store) LoadSales(_ context.Context) ([]models.SaleRecord, error) {
	return load(s, "sales", &s.sales)
}

// SaveSales replaces the sales.
func (s *Store) SaveSales(_ context.Context, sales []models.SaleRecord) error {
	return save(s, "sales", &s.sales, sales)
}

// LoadPayments returns a copy of the payments.
func (s *Store) LoadPayments(_ context.Context) ([]models.PaymentRecord, error) {
	return load(s, "payments", &s.payments)
}

// SavePayments replaces the payments.
func (s *Store) SavePayments(_ context.Context, payments []models.PaymentRecord) error {
	return save(s, "payments", &s.payments, payments)
}

// LoadOrders returns a copy of the orders.
func (s *Store) LoadOrders(_ context.Context) ([]models.OrderRecord, error) {
	return load(s, "orders", &s.orders)
}

// SaveOrders replaces the orders.
func (s *Store) SaveOrders(_ context.Context, orders []models.OrderRecord) error {
	return save(s, "orders", &s.orders, orders)
}
