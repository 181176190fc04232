package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

const (
	purchasesFile = "purchases.json"
	salesFile     = "sales.json"
	paymentsFile  = "payments.json"
	ordersFile    = "orders.json"
)

// Store keeps each collection in its own JSON array file inside dir.
type Store struct {
	dir    string
	logger *zap.Logger
}

var _ repository.Store = (*Store)(nil)

// NewStore builds a file-backed store rooted at dir, creating it when needed.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// LoadPurchases reads purchases.json, migrating documents that predate
// payment tracking.
func (s *Store) LoadPurchases(_ context.Context) ([]models.PurchaseRecord, error) {
	return decodeCollection(s, purchasesFile, decodePurchase)
}

// SavePurchases replaces purchases.json.
func (s *Store) SavePurchases(_ context.Context, purchases []models.PurchaseRecord) error {
	return writeCollection(s, purchasesFile, purchases)
}

// LoadSales reads sales.json.
func (s *Store) LoadSales(_ context.Context) ([]models.SaleRecord, error) {
	return decodeCollection(s, salesFile, decodeSale)
}

// SaveSales replaces sales.json.
func (s *Store) SaveSales(_ context.Context, sales []models.SaleRecord) error {
	return writeCollection(s, salesFile, sales)
}

// LoadPayments reads payments.json.
func (s *Store) LoadPayments(_ context.Context) ([]models.PaymentRecord, error) {
	return decodeCollection(s, paymentsFile, decodePayment)
}

// SavePayments replaces payments.json.
func (s *Store) SavePayments(_ context.Context, payments []models.PaymentRecord) error {
	return writeCollection(s, paymentsFile, payments)
}

// LoadOrders reads orders.json.
func (s *Store) LoadOrders(_ context.Context) ([]models.OrderRecord, error) {
	return decodeCollection(s, ordersFile, decodeOrder)
}

// SaveOrders replaces orders.json.
func (s *Store) SaveOrders(_ context.Context, orders []models.OrderRecord) error {
	return writeCollection(s, ordersFile, orders)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// decodeCollection never fails outright. An absent or corrupt file yields an
// empty collection alongside repository.ErrAbsent, so the next save starts
// the file over. A file that exists but cannot be read is only
// ErrUnavailable. A single undecodable document is skipped.
func decodeCollection[T any](s *Store, name string, decode func(json.RawMessage) (T, error)) ([]T, error) {
	records := make([]T, 0)

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("collection file absent", zap.String("file", name))
			return records, repository.Absent(name, nil)
		}
		s.logger.Warn("collection file unreadable", zap.String("file", name), zap.Error(err))
		return records, repository.Unavailable(name, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}

	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		s.logger.Warn("collection file corrupt", zap.String("file", name), zap.Error(err))
		return records, repository.Absent(name, err)
	}

	for i, doc := range docs {
		record, err := decode(doc)
		if err != nil {
			s.logger.Warn("skip undecodable record", zap.String("file", name), zap.Int("index", i), zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

func writeCollection[T any](s *Store, name string, records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}

	s.logger.Debug("collection saved", zap.String("file", name), zap.Int("records", len(records)))
	return nil
}
