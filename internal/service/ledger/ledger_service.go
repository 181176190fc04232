package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

// PaymentRequest describes a payment made to a supplier.
type PaymentRequest struct {
	Supplier  string          `json:"supplier"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

// Service records supplier payments and reads supplier accounts from the store.
type Service struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a ledger service on top of the record store.
func NewService(store repository.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Pay applies a payment to the supplier's outstanding purchases, appends it to
// the payment ledger and persists both collections. A supplier with nothing
// outstanding yields a NothingToSettle result and no write.
func (s *Service) Pay(ctx context.Context, req PaymentRequest) (Settlement, error) {
	supplier := strings.TrimSpace(req.Supplier)
	if supplier == "" {
		return Settlement{}, ErrSupplierRequired
	}
	if !req.Amount.IsPositive() {
		return Settlement{}, ErrInvalidAmount
	}
	method, err := models.ParsePaymentMethod(req.Method)
	if err != nil {
		return Settlement{}, fmt.Errorf("%w: %v", ErrInvalidMethod, err)
	}

	var (
		result  Settlement
		payment models.PaymentRecord
	)
	err = repository.Update(ctx, s.store, func(ctx context.Context) error {
		purchases, err := repository.LoadForWrite(ctx, "purchases", s.store.LoadPurchases)
		if err != nil {
			return err
		}

		var updated []models.PurchaseRecord
		updated, result, err = ApplyPayment(supplier, req.Amount, purchases)
		if err != nil || result.NothingToSettle {
			return err
		}

		payments, err := repository.LoadForWrite(ctx, "payments", s.store.LoadPayments)
		if err != nil {
			return err
		}
		payment = models.PaymentRecord{
			ID:          repository.NextID(payments, func(p models.PaymentRecord) int64 { return p.ID }),
			Supplier:    result.Supplier,
			Amount:      req.Amount,
			Method:      method,
			Reference:   strings.TrimSpace(req.Reference),
			PaymentDate: s.now().Format(models.DateTimeLayout),
			Type:        models.SupplierPaymentType,
		}

		if err := s.store.SavePurchases(ctx, updated); err != nil {
			return fmt.Errorf("save purchases: %w", err)
		}
		if err := s.store.SavePayments(ctx, append(payments, payment)); err != nil {
			return fmt.Errorf("save payments: %w", err)
		}
		return nil
	})
	if err != nil {
		return Settlement{}, err
	}
	if result.NothingToSettle {
		s.logger.Info("nothing to settle", zap.String("supplier", supplier))
		return result, nil
	}

	result.Payment = &payment
	s.logger.Info("supplier payment recorded",
		zap.String("supplier", result.Supplier),
		zap.String("amount", req.Amount.String()),
		zap.String("applied", result.Applied.String()),
		zap.Int("purchases_touched", len(result.Allocations)))
	if result.Unapplied.IsPositive() {
		s.logger.Warn("payment exceeds outstanding balance",
			zap.String("supplier", result.Supplier),
			zap.String("unapplied", result.Unapplied.String()))
	}
	return result, nil
}

// Statement builds the supplier's account from the stored collections.
func (s *Service) Statement(ctx context.Context, supplier string) (Statement, error) {
	if strings.TrimSpace(supplier) == "" {
		return Statement{}, ErrSupplierRequired
	}
	purchases, err := s.store.LoadPurchases(ctx)
	if err != nil {
		s.logLoadError("purchases", err)
	}
	payments, err := s.store.LoadPayments(ctx)
	if err != nil {
		s.logLoadError("payments", err)
	}
	return SupplierStatement(supplier, purchases, payments), nil
}

// Suppliers lists the suppliers found in the stored purchases.
func (s *Service) Suppliers(ctx context.Context) ([]SupplierBalance, error) {
	purchases, err := s.store.LoadPurchases(ctx)
	if err != nil {
		s.logLoadError("purchases", err)
	}
	return Suppliers(purchases), nil
}

// Payments returns the supplier's payment history, most recent first.
func (s *Service) Payments(ctx context.Context, supplier string) ([]models.PaymentRecord, decimal.Decimal, error) {
	if strings.TrimSpace(supplier) == "" {
		return nil, decimal.Zero, ErrSupplierRequired
	}
	payments, err := s.store.LoadPayments(ctx)
	if err != nil {
		s.logLoadError("payments", err)
	}
	history, total := PaymentHistory(supplier, payments)
	return history, total, nil
}

// IsInputError reports whether err was caused by the caller's input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidMethod) || errors.Is(err, ErrSupplierRequired)
}

func (s *Service) logLoadError(collection string, err error) {
	if errors.Is(err, repository.ErrUnavailable) {
		s.logger.Debug("collection unavailable", zap.String("collection", collection), zap.Error(err))
		return
	}
	s.logger.Warn("collection load failed", zap.String("collection", collection), zap.Error(err))
}
