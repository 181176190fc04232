package ledger

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

var (
	// ErrInvalidAmount is returned for a payment amount that is not positive.
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")
	// ErrInvalidMethod is returned for a payment method other than CASH, MPESA or BANK.
	ErrInvalidMethod = errors.New("invalid payment method")
	// ErrSupplierRequired is returned when no supplier name was given.
	ErrSupplierRequired = errors.New("supplier name is required")
)

// Allocation records how much of a payment went to one purchase.
type Allocation struct {
	PurchaseID   int64           `json:"purchase_id"`
	Item         string          `json:"item"`
	PurchaseDate string          `json:"purchase_date"`
	Applied      decimal.Decimal `json:"applied"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Paid         bool            `json:"paid"`
}

// Settlement is the outcome of applying one payment to a supplier's purchases.
type Settlement struct {
	Supplier    string          `json:"supplier"`
	Amount      decimal.Decimal `json:"amount"`
	Applied     decimal.Decimal `json:"applied"`
	Unapplied   decimal.Decimal `json:"unapplied"`
	Allocations []Allocation    `json:"allocations"`
	// NothingToSettle is set when the supplier had no outstanding balance.
	// Nothing was changed and no payment was recorded.
	NothingToSettle bool                  `json:"nothing_to_settle"`
	Payment         *models.PaymentRecord `json:"payment,omitempty"`
}

// SameSupplier compares supplier names ignoring case and surrounding spaces.
func SameSupplier(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ApplyPayment settles the supplier's outstanding purchases oldest first and
// returns the updated collection. The input slice is not modified. Purchases
// whose date cannot be parsed are treated as the oldest. Any amount left once
// every balance is cleared is reported as Unapplied.
func ApplyPayment(supplier string, amount decimal.Decimal, purchases []models.PurchaseRecord) ([]models.PurchaseRecord, Settlement, error) {
	if strings.TrimSpace(supplier) == "" {
		return purchases, Settlement{}, ErrSupplierRequired
	}
	if !amount.IsPositive() {
		return purchases, Settlement{}, ErrInvalidAmount
	}

	result := Settlement{
		Supplier:  strings.TrimSpace(supplier),
		Amount:    amount,
		Applied:   decimal.Zero,
		Unapplied: amount,
	}

	eligible := outstandingFor(supplier, purchases)
	if len(eligible) == 0 {
		result.NothingToSettle = true
		return purchases, result, nil
	}
	result.Supplier = purchases[eligible[0]].Supplier

	sortOldestFirst(eligible, purchases)

	updated := slices.Clone(purchases)
	remaining := amount
	for _, idx := range eligible {
		if !remaining.IsPositive() {
			break
		}
		p := &updated[idx]
		applied := decimal.Min(remaining, p.Balance)
		p.Balance = p.Balance.Sub(applied)
		remaining = remaining.Sub(applied)
		if p.Balance.IsZero() {
			p.Paid = true
		}
		result.Allocations = append(result.Allocations, Allocation{
			PurchaseID:   p.ID,
			Item:         p.Item,
			PurchaseDate: p.PurchaseDate,
			Applied:      applied,
			BalanceAfter: p.Balance,
			Paid:         p.Paid,
		})
	}

	result.Applied = amount.Sub(remaining)
	result.Unapplied = remaining
	return updated, result, nil
}

func outstandingFor(supplier string, purchases []models.PurchaseRecord) []int {
	var idx []int
	for i, p := range purchases {
		if SameSupplier(p.Supplier, supplier) && p.Balance.IsPositive() {
			idx = append(idx, i)
		}
	}
	return idx
}

// sortOldestFirst orders purchase indexes by date, unparsable dates first,
// keeping input order on ties.
func sortOldestFirst(idx []int, purchases []models.PurchaseRecord) {
	type key struct {
		ok   bool
		date time.Time
	}
	keys := make(map[int]key, len(idx))
	for _, i := range idx {
		d, err := models.ParseDate(purchases[i].PurchaseDate)
		keys[i] = key{ok: err == nil, date: d}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if ka.ok != kb.ok {
			return !ka.ok
		}
		return ka.date.Before(kb.date)
	})
}
