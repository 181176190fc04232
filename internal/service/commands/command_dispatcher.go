package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const referencePrefix = "ref="

// HelpText lists the commands understood over chat.
const HelpText = `Decent Foods commands
/summary [week|month|last month] - sales, purchases and profit
/pay <amount> [cash|mpesa|bank] <supplier> [ref=<code>] - record a supplier payment
/statement <supplier> - purchases, payments and balance
/suppliers - outstanding balance per supplier
/help - this message`

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	QuickReport(ctx context.Context, kind reporting.QuickPeriod) (reporting.Report, error)
	Render(report reporting.Report) string
}

// LedgerAdapter defines the supplier ledger functions required by the dispatcher.
type LedgerAdapter interface {
	Pay(ctx context.Context, req ledger.PaymentRequest) (ledger.Settlement, error)
	Statement(ctx context.Context, supplier string) (ledger.Statement, error)
	Suppliers(ctx context.Context) ([]ledger.SupplierBalance, error)
}

// Dispatcher executes parsed commands and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	reporting ReportingAdapter
	ledger    LedgerAdapter
	currency  string
	logger    *zap.Logger
	now       func() time.Time
}

var _ Dispatcher = (*Service)(nil)

// NewService constructs a command dispatcher.
func NewService(reports ReportingAdapter, accounts LedgerAdapter, currency string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reporting: reports,
		ledger:    accounts,
		currency:  currency,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand runs the command and formats its outcome as a chat reply.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandSummary:
		kind, err := reporting.ParseQuickPeriod(strings.Join(cmd.Args, " "))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
		}
		report, err := s.reporting.QuickReport(ctx, kind)
		if err != nil {
			return "", err
		}
		return s.reporting.Render(report), nil
	case models.CommandPay:
		req, err := buildPaymentRequest(cmd)
		if err != nil {
			return "", err
		}
		result, err := s.ledger.Pay(ctx, req)
		if err != nil {
			if ledger.IsInputError(err) {
				return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
			}
			return "", err
		}
		s.logger.Info("payment command handled",
			zap.String("sender", sender),
			zap.String("supplier", result.Supplier),
			zap.Bool("nothing_to_settle", result.NothingToSettle),
			zap.Time("at", s.now().UTC()))
		return ledger.RenderSettlement(result, s.currency), nil
	case models.CommandStatement:
		supplier := strings.TrimSpace(strings.Join(cmd.Args, " "))
		if supplier == "" {
			return "", fmt.Errorf("%w: supplier name required", ErrInvalidArguments)
		}
		st, err := s.ledger.Statement(ctx, supplier)
		if err != nil {
			return "", err
		}
		return ledger.RenderStatement(st, s.currency), nil
	case models.CommandSuppliers:
		suppliers, err := s.ledger.Suppliers(ctx)
		if err != nil {
			return "", err
		}
		return ledger.RenderSuppliers(suppliers, s.currency), nil
	case models.CommandHelp:
		return HelpText, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

// buildPaymentRequest reads "<amount> [method] <supplier...> [ref=<code>]".
func buildPaymentRequest(cmd models.Command) (ledger.PaymentRequest, error) {
	if len(cmd.Args) < 2 {
		return ledger.PaymentRequest{}, fmt.Errorf("%w: usage /pay <amount> [method] <supplier>", ErrInvalidArguments)
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(cmd.Args[0], ",", ""))
	if err != nil || !amount.IsPositive() {
		return ledger.PaymentRequest{}, fmt.Errorf("%w: amount %q", ErrInvalidArguments, cmd.Args[0])
	}

	req := ledger.PaymentRequest{Amount: amount}
	rest := cmd.Args[1:]
	if len(rest) > 1 {
		if method, err := models.ParsePaymentMethod(rest[0]); err == nil {
			req.Method = string(method)
			rest = rest[1:]
		}
	}

	var name []string
	for _, token := range rest {
		if strings.HasPrefix(strings.ToLower(token), referencePrefix) {
			req.Reference = token[len(referencePrefix):]
			continue
		}
		name = append(name, token)
	}
	if req.Method == "" && len(name) == 1 {
		if _, err := models.ParsePaymentMethod(name[0]); err == nil {
			return ledger.PaymentRequest{}, fmt.Errorf("%w: supplier missing after method %q, usage /pay <amount> [method] <supplier>", ErrInvalidArguments, name[0])
		}
	}
	req.Supplier = strings.Join(name, " ")
	if req.Supplier == "" {
		return ledger.PaymentRequest{}, fmt.Errorf("%w: supplier name required", ErrInvalidArguments)
	}
	return req, nil
}
