package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository"
)

// ReportsRange is where period summaries are appended, one row each.
const ReportsRange = "Reports!A:J"

var reportHeader = []interface{}{
	"Created At", "Period", "Start", "End", "Purchases", "Purchase Total", "Sales", "Sale Total", "Profit", "Margin %",
}

// ReportArchive publishes period report snapshots to a spreadsheet.
type ReportArchive struct {
	sheet Repository

	mu          sync.Mutex
	headerReady bool
}

var _ repository.ReportArchive = (*ReportArchive)(nil)

// NewReportArchive wraps a sheet repository.
func NewReportArchive(sheet Repository) *ReportArchive {
	return &ReportArchive{sheet: sheet}
}

// SaveReport appends the report as a single row, writing the column header
// first when the Reports sheet is still empty.
func (a *ReportArchive) SaveReport(ctx context.Context, report models.PeriodReport) error {
	if err := a.ensureHeader(ctx); err != nil {
		return fmt.Errorf("prepare reports sheet: %w", err)
	}

	sum := report.Summary
	row := []interface{}{
		report.CreatedAt.UTC().Format(time.RFC3339),
		report.Label,
		sum.Start.Format(models.DateLayout),
		sum.End.Format(models.DateLayout),
		sum.PurchaseCount,
		sum.PurchaseTotal.StringFixed(2),
		sum.SaleCount,
		sum.SaleTotal.StringFixed(2),
		sum.Profit.StringFixed(2),
		sum.ProfitMargin.StringFixed(1),
	}
	if err := a.sheet.WriteRow(ctx, ReportsRange, row); err != nil {
		return fmt.Errorf("publish %s report: %w", report.Label, err)
	}
	return nil
}

func (a *ReportArchive) ensureHeader(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.headerReady {
		return nil
	}

	existing, err := a.sheet.ReadRange(ctx, "Reports!A1:J1")
	if err != nil {
		return err
	}
	if len(existing) == 0 || len(existing[0]) == 0 {
		if err := a.sheet.WriteRow(ctx, ReportsRange, reportHeader); err != nil {
			return err
		}
	}
	a.headerReady = true
	return nil
}
