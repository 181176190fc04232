package ledger

import (
	"testing"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

func TestSupplierStatement(t *testing.T) {
	purchases := []models.PurchaseRecord{
		purchase(3, "Acme", "2024-03-01", "80", "80"),
		purchase(1, "acme", "2024-01-01", "100", "0"),
		purchase(2, "Acme", "2024-02-01", "50", "20"),
		purchase(4, "Globex", "2024-01-01", "999", "999"),
	}
	payments := []models.PaymentRecord{
		{ID: 1, Supplier: "Acme", Amount: dec("100"), PaymentDate: "2024-02-10T09:00:00"},
		{ID: 2, Supplier: "Globex", Amount: dec("5"), PaymentDate: "2024-02-11T09:00:00"},
		{ID: 3, Supplier: "ACME", Amount: dec("30"), PaymentDate: "2024-02-10T17:30:00"},
		{ID: 4, Supplier: "Acme", Amount: dec("1"), PaymentDate: ""},
	}

	st := SupplierStatement(" ACME ", purchases, payments)

	if st.Supplier != "acme" {
		t.Fatalf("expected the oldest purchase's spelling, got %q", st.Supplier)
	}
	wantPurchases := []int64{1, 2, 3}
	if len(st.Purchases) != len(wantPurchases) {
		t.Fatalf("unexpected purchases %#v", st.Purchases)
	}
	for i, id := range wantPurchases {
		if st.Purchases[i].ID != id {
			t.Fatalf("purchase %d: expected id %d, got %d", i, id, st.Purchases[i].ID)
		}
	}
	if !st.TotalPurchased.Equal(dec("230")) || !st.TotalPaid.Equal(dec("130")) || !st.Outstanding.Equal(dec("100")) {
		t.Fatalf("unexpected totals %s/%s/%s", st.TotalPurchased, st.TotalPaid, st.Outstanding)
	}
	if !st.TotalPurchased.Equal(st.TotalPaid.Add(st.Outstanding)) {
		t.Fatalf("statement out of balance")
	}

	wantPayments := []int64{3, 1, 4}
	if len(st.Payments) != len(wantPayments) {
		t.Fatalf("unexpected payments %#v", st.Payments)
	}
	for i, id := range wantPayments {
		if st.Payments[i].ID != id {
			t.Fatalf("payment %d: expected id %d, got %d", i, id, st.Payments[i].ID)
		}
	}
	if !st.PaymentsTotal.Equal(dec("131")) {
		t.Fatalf("unexpected payments total %s", st.PaymentsTotal)
	}
}

func TestSupplierStatementUnknownSupplier(t *testing.T) {
	st := SupplierStatement("Nobody", []models.PurchaseRecord{purchase(1, "Acme", "2024-01-01", "1", "1")}, nil)
	if len(st.Purchases) != 0 || len(st.Payments) != 0 || !st.TotalPurchased.IsZero() {
		t.Fatalf("expected an empty statement, got %#v", st)
	}
	if st.Supplier != "Nobody" {
		t.Fatalf("expected requested name to be kept, got %q", st.Supplier)
	}
}

func TestSuppliers(t *testing.T) {
	purchases := []models.PurchaseRecord{
		purchase(1, "zeta farm", "2024-01-01", "10", "10"),
		purchase(2, "Acme", "2024-01-01", "100", "0"),
		purchase(3, "ACME", "2024-01-02", "50", "25"),
		purchase(4, "", "2024-01-02", "5", "5"),
	}

	got := Suppliers(purchases)
	if len(got) != 2 {
		t.Fatalf("expected 2 suppliers, got %#v", got)
	}
	if got[0].Name != "Acme" || got[0].Purchases != 2 || !got[0].Outstanding.Equal(dec("25")) || !got[0].TotalPurchased.Equal(dec("150")) {
		t.Fatalf("unexpected first supplier %#v", got[0])
	}
	if got[1].Name != "zeta farm" {
		t.Fatalf("unexpected second supplier %#v", got[1])
	}
}
