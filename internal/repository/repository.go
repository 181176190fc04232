package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

// ErrUnavailable reports that a collection could not be read at all: the
// backing file is absent or corrupt, or the database is unreachable. Loads
// returning it still hand back an empty, usable collection.
var ErrUnavailable = errors.New("record store unavailable")

// ErrAbsent marks the unavailable collections that hold nothing to lose:
// never created, or a JSON file too corrupt to parse. They read as empty and
// may be replaced. Every ErrAbsent error is also ErrUnavailable.
var ErrAbsent = errors.New("collection absent")

// Store is the record store the services read from and write back to. Saves
// replace the whole collection.
type Store interface {
	LoadPurchases(ctx context.Context) ([]models.PurchaseRecord, error)
	SavePurchases(ctx context.Context, purchases []models.PurchaseRecord) error
	LoadSales(ctx context.Context) ([]models.SaleRecord, error)
	SaveSales(ctx context.Context, sales []models.SaleRecord) error
	LoadPayments(ctx context.Context) ([]models.PaymentRecord, error)
	SavePayments(ctx context.Context, payments []models.PaymentRecord) error
	LoadOrders(ctx context.Context) ([]models.OrderRecord, error)
	SaveOrders(ctx context.Context, orders []models.OrderRecord) error
}

// ReportArchive keeps snapshots of generated period reports.
type ReportArchive interface {
	SaveReport(ctx context.Context, report models.PeriodReport) error
}

// Unavailable wraps cause so that errors.Is(err, ErrUnavailable) holds.
func Unavailable(collection string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", collection, ErrUnavailable)
	}
	return fmt.Errorf("%s: %w: %v", collection, ErrUnavailable, cause)
}

// Absent wraps cause so that both errors.Is(err, ErrAbsent) and
// errors.Is(err, ErrUnavailable) hold.
func Absent(collection string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%s: %w: %w", collection, ErrUnavailable, ErrAbsent)
	}
	return fmt.Errorf("%s: %w: %w: %v", collection, ErrUnavailable, ErrAbsent, cause)
}

// Writable returns nil when a load error still allows the collection to be
// written back: the load succeeded or the collection is absent. Any other
// failure is returned as is.
func Writable(loadErr error) error {
	if loadErr == nil || errors.Is(loadErr, ErrAbsent) {
		return nil
	}
	return loadErr
}

// LoadForWrite loads a collection that is about to be replaced. It fails
// unless the load succeeded or the collection is absent.
func LoadForWrite[T any](ctx context.Context, collection string, load func(context.Context) ([]T, error)) ([]T, error) {
	records, err := load(ctx)
	if err := Writable(err); err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return records, nil
}

// NextID returns max(ids)+1 so identifiers stay monotonic even after gaps.
func NextID[T any](records []T, id func(T) int64) int64 {
	var maxID int64
	for _, r := range records {
		if v := id(r); v > maxID {
			maxID = v
		}
	}
	return maxID + 1
}

// NextNumber returns the next sequence number for references such as
// "INV-0007": the highest numeric suffix carrying prefix, plus one.
func NextNumber(refs []string, prefix string) int {
	highest := 0
	for _, ref := range refs {
		if !strings.HasPrefix(ref, prefix+"-") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(ref, prefix+"-"))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest + 1
}

// FormatNumber renders a sequence reference such as "ORD-0001".
func FormatNumber(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// NormalizePurchase enforces paid == (balance == 0) and 0 <= balance <= total.
func NormalizePurchase(p models.PurchaseRecord) models.PurchaseRecord {
	if p.Balance.IsNegative() {
		p.Balance = decimal.Zero
	}
	if !p.Total.IsNegative() && p.Balance.GreaterThan(p.Total) {
		p.Balance = p.Total
	}
	p.Paid = p.Balance.IsZero()
	return p
}

// Archives fans a report out to several archives. Every archive is tried.
type Archives []ReportArchive

// SaveReport implements ReportArchive.
func (a Archives) SaveReport(ctx context.Context, report models.PeriodReport) error {
	var errs []error
	for _, archive := range a {
		if err := archive.SaveReport(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
