package reporting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

const trendMonths = 12

// Report is a period summary together with the records it was computed from.
type Report struct {
	Period    models.Period           `json:"period"`
	Summary   models.PeriodSummary    `json:"summary"`
	Purchases []models.PurchaseRecord `json:"purchases"`
	Sales     []models.SaleRecord     `json:"sales"`
	// Unavailable lists the collections that could not be read.
	Unavailable []string `json:"unavailable,omitempty"`
	// NoData is set when no collection could be read at all, as opposed to a
	// period that simply had no transactions.
	NoData bool `json:"no_data"`
}

// Options tune a reporting Service.
type Options struct {
	Archive  repository.ReportArchive
	Location *time.Location
	Currency string
}

// Service exposes period analytics for the dashboard, the CLI and WhatsApp.
type Service struct {
	store    repository.Store
	archive  repository.ReportArchive
	location *time.Location
	currency string
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(store repository.Store, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		store:    store,
		archive:  opts.Archive,
		location: opts.Location,
		currency: opts.Currency,
		logger:   logger,
		now:      time.Now,
	}
}

// Now returns the current instant in the business time zone.
func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// QuickReport builds the report for a preset window.
func (s *Service) QuickReport(ctx context.Context, kind QuickPeriod) (Report, error) {
	period, err := ResolvePeriod(kind, s.Now())
	if err != nil {
		return Report{}, err
	}
	return s.Report(ctx, period)
}

// CustomReport builds the report for user-entered YYYY-MM-DD bounds.
func (s *Service) CustomReport(ctx context.Context, from, to string) (Report, error) {
	period, err := ParseCustomPeriod(from, to)
	if err != nil {
		return Report{}, err
	}
	return s.Report(ctx, period)
}

// MonthlyReport builds the dashboard report for one calendar month.
func (s *Service) MonthlyReport(ctx context.Context, year, month int) (Report, error) {
	period, err := MonthPeriod(year, month)
	if err != nil {
		return Report{}, err
	}
	return s.Report(ctx, period)
}

// Report loads both collections, keeps the records dated inside period and
// aggregates them. Store failures degrade to empty collections; only a done
// context is returned as an error.
func (s *Service) Report(ctx context.Context, period models.Period) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	report := Report{Period: period}

	purchases, err := s.store.LoadPurchases(ctx)
	if err != nil {
		s.noteUnavailable(&report, "purchases", err)
		purchases = nil
	}
	sales, err := s.store.LoadSales(ctx)
	if err != nil {
		s.noteUnavailable(&report, "sales", err)
		sales = nil
	}
	report.NoData = len(report.Unavailable) == 2

	report.Purchases = FilterByPeriod(purchases, period.Start, period.End, models.PurchaseRecord.Date)
	report.Sales = FilterByPeriod(sales, period.Start, period.End, models.SaleRecord.Date)

	report.Summary = Aggregate(report.Purchases, report.Sales)
	report.Summary.Start = period.Start
	report.Summary.End = period.End

	s.logger.Debug("period report built",
		zap.String("period", period.String()),
		zap.Int("purchases", report.Summary.PurchaseCount),
		zap.Int("sales", report.Summary.SaleCount),
		zap.Bool("no_data", report.NoData))

	return report, nil
}

// SalesTrend returns monthly sales totals for the last twelve months.
func (s *Service) SalesTrend(ctx context.Context) ([]MonthTotal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sales, err := s.store.LoadSales(ctx)
	if err != nil {
		s.logger.Debug("sales unavailable for trend", zap.Error(err))
	}
	return SalesTrend(sales, s.Now(), trendMonths), nil
}

// Archive stores a snapshot of the report when an archive is configured.
func (s *Service) Archive(ctx context.Context, report Report) error {
	if s.archive == nil {
		return nil
	}
	snapshot := models.PeriodReport{
		Label:     report.Period.Label,
		Summary:   report.Summary,
		CreatedAt: s.now().UTC(),
	}
	if err := s.archive.SaveReport(ctx, snapshot); err != nil {
		return fmt.Errorf("archive %s report: %w", report.Period.Label, err)
	}
	return nil
}

// Render formats the report as plain text in the configured currency.
func (s *Service) Render(report Report) string {
	return RenderText(report, s.currency)
}

func (s *Service) noteUnavailable(report *Report, collection string, err error) {
	report.Unavailable = append(report.Unavailable, collection)
	if errors.Is(err, repository.ErrUnavailable) {
		s.logger.Debug("collection unavailable", zap.String("collection", collection), zap.Error(err))
		return
	}
	s.logger.Warn("collection load failed", zap.String("collection", collection), zap.Error(err))
}
