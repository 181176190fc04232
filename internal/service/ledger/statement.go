package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

// Statement is a supplier's account: what was bought, what was paid and
// what is still owed. TotalPurchased always equals TotalPaid + Outstanding.
type Statement struct {
	Supplier       string                  `json:"supplier"`
	Purchases      []models.PurchaseRecord `json:"purchases"`
	Payments       []models.PaymentRecord  `json:"payments"`
	TotalPurchased decimal.Decimal         `json:"total_purchased"`
	TotalPaid      decimal.Decimal         `json:"total_paid"`
	Outstanding    decimal.Decimal         `json:"outstanding"`
	PaymentsTotal  decimal.Decimal         `json:"payments_total"`
}

// SupplierStatement collects the supplier's purchases oldest first and its
// payments most recent first, with the running totals.
func SupplierStatement(supplier string, purchases []models.PurchaseRecord, payments []models.PaymentRecord) Statement {
	st := Statement{
		Supplier:       strings.TrimSpace(supplier),
		Purchases:      []models.PurchaseRecord{},
		TotalPurchased: decimal.Zero,
		TotalPaid:      decimal.Zero,
		Outstanding:    decimal.Zero,
	}

	var idx []int
	for i, p := range purchases {
		if SameSupplier(p.Supplier, supplier) {
			idx = append(idx, i)
		}
	}
	sortOldestFirst(idx, purchases)

	for _, i := range idx {
		p := purchases[i]
		st.Purchases = append(st.Purchases, p)
		st.TotalPurchased = st.TotalPurchased.Add(p.Total)
		st.Outstanding = st.Outstanding.Add(p.Balance)
		if p.Paid || p.Balance.LessThan(p.Total) {
			st.TotalPaid = st.TotalPaid.Add(p.AmountPaid())
		}
	}
	if len(st.Purchases) > 0 {
		st.Supplier = st.Purchases[0].Supplier
	}

	st.Payments, st.PaymentsTotal = PaymentHistory(supplier, payments)
	return st
}

// PaymentHistory returns the supplier's payments most recent first, together
// with their sum. Payments with an unreadable date are listed last.
func PaymentHistory(supplier string, payments []models.PaymentRecord) ([]models.PaymentRecord, decimal.Decimal) {
	history := []models.PaymentRecord{}
	total := decimal.Zero
	for _, p := range payments {
		if SameSupplier(p.Supplier, supplier) {
			history = append(history, p)
			total = total.Add(p.Amount)
		}
	}

	dates := make([]time.Time, len(history))
	valid := make([]bool, len(history))
	for i, p := range history {
		if d, err := parseTimestamp(p.PaymentDate); err == nil {
			dates[i], valid[i] = d, true
		}
	}
	order := make([]int, len(history))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		return dates[ia].After(dates[ib])
	})

	sorted := make([]models.PaymentRecord, len(history))
	for i, j := range order {
		sorted[i] = history[j]
	}
	return sorted, total
}

// SupplierBalance is one line of the supplier list.
type SupplierBalance struct {
	Name           string          `json:"name"`
	Purchases      int             `json:"purchases"`
	TotalPurchased decimal.Decimal `json:"total_purchased"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

// Suppliers lists every supplier found in the purchases, sorted by name.
// Names differing only in case are merged under the first spelling seen.
func Suppliers(purchases []models.PurchaseRecord) []SupplierBalance {
	byKey := make(map[string]int)
	out := []SupplierBalance{}
	for _, p := range purchases {
		name := strings.TrimSpace(p.Supplier)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		i, ok := byKey[key]
		if !ok {
			i = len(out)
			byKey[key] = i
			out = append(out, SupplierBalance{Name: name, TotalPurchased: decimal.Zero, Outstanding: decimal.Zero})
		}
		out[i].Purchases++
		out[i].TotalPurchased = out[i].TotalPurchased.Add(p.Total)
		out[i].Outstanding = out[i].Outstanding.Add(p.Balance)
	}
	sort.Slice(out, func(a, b int) bool {
		return strings.ToLower(out[a].Name) < strings.ToLower(out[b].Name)
	})
	return out
}

// parseTimestamp keeps the time of day so that two payments on the same day
// still order correctly.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.RFC3339Nano, models.DateTimeLayout, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return models.ParseDate(value)
}
