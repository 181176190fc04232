package bookkeeping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
	"github.com/mamadbah2/decentfoods/internal/repository/memory"
)

func newTestService(t *testing.T, store *memory.Store) *Service {
	t.Helper()
	svc := NewService(store, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, time.May, 2, 8, 30, 0, 0, time.UTC) }
	return svc
}

func TestSavePurchaseStoresOneRecordPerItem(t *testing.T) {
	store := memory.Seeded([]models.PurchaseRecord{{ID: 4, Supplier: "Old", Total: dec("1"), Balance: dec("1")}}, nil)
	svc := newTestService(t, store)
	ctx := context.Background()

	b := NewPurchaseBuilder()
	_, _ = b.AddItem("Acme", "Flour", dec("2"), dec("150"))
	_, _ = b.AddItem("Globex", "Oil", dec("1"), dec("400"))

	created, err := svc.SavePurchase(ctx, b, "2024-05-01", "INV-77")
	if err != nil {
		t.Fatalf("SavePurchase: %v", err)
	}
	if len(created) != 2 || created[0].ID != 5 || created[1].ID != 6 {
		t.Fatalf("unexpected ids %#v", created)
	}
	for _, p := range created {
		if p.Paid || !p.Balance.Equal(p.Total) || p.PurchaseDate != "2024-05-01T00:00:00" || p.InvoiceRef != "INV-77" {
			t.Fatalf("unexpected purchase %#v", p)
		}
	}
	if b.Len() != 0 {
		t.Fatalf("builder should be cleared after save")
	}

	stored, _ := store.LoadPurchases(ctx)
	if len(stored) != 3 {
		t.Fatalf("expected 3 stored purchases, got %d", len(stored))
	}
}

func TestSavePurchaseRejectsBadInputWithoutClearing(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	ctx := context.Background()

	if _, err := svc.SavePurchase(ctx, NewPurchaseBuilder(), "2024-05-01", ""); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}

	b := NewPurchaseBuilder()
	_, _ = b.AddItem("Acme", "Flour", dec("1"), dec("1"))
	if _, err := svc.SavePurchase(ctx, b, "01/05/2024", ""); !errors.Is(err, ErrInvalidDate) || !IsInputError(err) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("builder must keep its items after a rejected save")
	}
}

func TestSaveSaleNumbersInvoices(t *testing.T) {
	store := memory.Seeded(nil, []models.SaleRecord{
		{ID: 1, InvoiceNo: "INV-0009"},
		{ID: 2, InvoiceNo: "manual"},
	})
	svc := newTestService(t, store)
	ctx := context.Background()

	next, err := svc.NextInvoiceNo(ctx)
	if err != nil || next != "INV-0010" {
		t.Fatalf("NextInvoiceNo = %q, %v", next, err)
	}

	b := NewSaleBuilder()
	_, _ = b.AddItem("Bread", dec("3"), dec("55"))
	_, _ = b.AddItem("Milk", dec("1"), dec("60"))

	sale, err := svc.SaveSale(ctx, b, SaleHeader{Customer: " Jane ", Date: "2024-05-02"})
	if err != nil {
		t.Fatalf("SaveSale: %v", err)
	}
	if sale.ID != 3 || sale.InvoiceNo != "INV-0010" || sale.CustomerName != "Jane" {
		t.Fatalf("unexpected sale header %#v", sale)
	}
	if !sale.TotalAmount.Equal(dec("225")) || len(sale.Items) != 2 || sale.SaleDate != "2024-05-02T00:00:00" {
		t.Fatalf("unexpected sale body %#v", sale)
	}

	rows, err := svc.SaleRows(ctx)
	if err != nil || len(rows) != 2 || rows[0].InvoiceNo != "INV-0010" {
		t.Fatalf("SaleRows = %#v, %v", rows, err)
	}
}

func TestSaveSaleValidatesHeader(t *testing.T) {
	svc := newTestService(t, memory.NewStore())
	ctx := context.Background()
	b := NewSaleBuilder()
	_, _ = b.AddItem("Bread", dec("1"), dec("50"))

	cases := []struct {
		header SaleHeader
		want   error
	}{
		{SaleHeader{Customer: "", Date: "2024-05-02"}, ErrCustomerRequired},
		{SaleHeader{Customer: "Jane", Date: "2024-13-02"}, ErrInvalidDate},
		{SaleHeader{Customer: "Jane", Date: ""}, ErrInvalidDate},
	}
	for _, tc := range cases {
		if _, err := svc.SaveSale(ctx, b, tc.header); !errors.Is(err, tc.want) {
			t.Fatalf("SaveSale(%+v): expected %v, got %v", tc.header, tc.want, err)
		}
	}
	if _, err := svc.SaveSale(ctx, NewSaleBuilder(), SaleHeader{Customer: "Jane", Date: "2024-05-02"}); !errors.Is(err, ErrNoItems) {
		t.Fatalf("expected ErrNoItems, got %v", err)
	}
}

func TestSaveOrder(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store)
	ctx := context.Background()

	for i, want := range []string{"ORD-0001", "ORD-0002"} {
		b := NewOrderBuilder()
		_, _ = b.AddItem("Eggs", dec("30"), dec("15"))
		order, err := svc.SaveOrder(ctx, b, "Hotel Rio")
		if err != nil {
			t.Fatalf("SaveOrder: %v", err)
		}
		if order.OrderNo != want || order.ID != int64(i+1) {
			t.Fatalf("unexpected order numbering %#v", order)
		}
		if order.Status != models.OrderStatusPending || order.OrderDate != "2024-05-02T08:30:00" || !order.TotalAmount.Equal(dec("450")) {
			t.Fatalf("unexpected order %#v", order)
		}
	}

	orders, err := svc.Orders(ctx)
	if err != nil || len(orders) != 2 {
		t.Fatalf("Orders = %#v, %v", orders, err)
	}

	if _, err := svc.SaveOrder(ctx, NewOrderBuilder(), " "); !errors.Is(err, ErrCustomerRequired) {
		t.Fatalf("expected ErrCustomerRequired, got %v", err)
	}
}

func TestSaveFailsWhenStoreRejectsWrite(t *testing.T) {
	store := memory.NewStore()
	store.SaveErr = errors.New("disk full")
	svc := newTestService(t, store)

	b := NewOrderBuilder()
	_, _ = b.AddItem("Eggs", dec("1"), dec("15"))
	if _, err := svc.SaveOrder(context.Background(), b, "Jane"); err == nil || IsInputError(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("builder must keep its items after a failed save")
	}
}

func TestSavesRefuseToReplaceUnreadableCollections(t *testing.T) {
	ctx := context.Background()
	var sales []models.SaleRecord
	for i := 1; i <= 5; i++ {
		sales = append(sales, models.SaleRecord{ID: int64(i), InvoiceNo: fmt.Sprintf("INV-%04d", i), CustomerName: "Jane"})
	}
	seedPurchases := []models.PurchaseRecord{{ID: 1, Supplier: "Acme", Total: dec("10"), Balance: dec("10")}}

	cases := []struct {
		name  string
		save  func(*Service) error
		count func(*memory.Store) int
	}{
		{"purchase", func(svc *Service) error {
			b := NewPurchaseBuilder()
			_, _ = b.AddItem("Acme", "Flour", dec("1"), dec("10"))
			_, err := svc.SavePurchase(ctx, b, "2024-05-02", "")
			return err
		}, func(s *memory.Store) int { p, _ := s.LoadPurchases(ctx); return len(p) }},
		{"sale", func(svc *Service) error {
			b := NewSaleBuilder()
			_, _ = b.AddItem("Bread", dec("1"), dec("55"))
			_, err := svc.SaveSale(ctx, b, SaleHeader{Customer: "Joe", Date: "2024-05-02"})
			return err
		}, func(s *memory.Store) int { r, _ := s.LoadSales(ctx); return len(r) }},
		{"order", func(svc *Service) error {
			b := NewOrderBuilder()
			_, _ = b.AddItem("Eggs", dec("12"), dec("15"))
			_, err := svc.SaveOrder(ctx, b, "Joe")
			return err
		}, func(s *memory.Store) int { o, _ := s.LoadOrders(ctx); return len(o) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.Seeded(seedPurchases, sales)
			if err := store.SaveOrders(ctx, []models.OrderRecord{{ID: 1, OrderNo: "ORD-0001"}}); err != nil {
				t.Fatalf("seed orders: %v", err)
			}
			before := tc.count(store)

			store.LoadErr = errors.New("read timeout")
			err := tc.save(newTestService(t, store))
			if !errors.Is(err, repository.ErrUnavailable) || IsInputError(err) {
				t.Fatalf("expected an unavailable store error, got %v", err)
			}

			store.LoadErr = nil
			if after := tc.count(store); after != before {
				t.Fatalf("records before=%d after=%d", before, after)
			}
		})
	}
}

func TestConcurrentSalesGetDistinctInvoices(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(repository.NewSerial(store), nil)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := NewSaleBuilder()
			_, _ = b.AddItem("Bread", dec("1"), dec("55"))
			if _, err := svc.SaveSale(ctx, b, SaleHeader{Customer: "Jane", Date: "2024-05-02"}); err != nil {
				t.Errorf("SaveSale: %v", err)
			}
		}()
	}
	wg.Wait()

	sales, _ := store.LoadSales(ctx)
	invoices := make(map[string]bool, len(sales))
	for _, sale := range sales {
		invoices[sale.InvoiceNo] = true
	}
	if len(sales) != n || len(invoices) != n {
		t.Fatalf("expected %d sales with distinct invoices, got %d sales and %d invoices", n, len(sales), len(invoices))
	}
}
