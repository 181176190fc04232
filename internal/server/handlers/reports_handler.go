package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/export"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

// ReportService is the reporting surface exposed over HTTP.
type ReportService interface {
	Now() time.Time
	QuickReport(ctx context.Context, kind reporting.QuickPeriod) (reporting.Report, error)
	CustomReport(ctx context.Context, from, to string) (reporting.Report, error)
	MonthlyReport(ctx context.Context, year, month int) (reporting.Report, error)
	SalesTrend(ctx context.Context) ([]reporting.MonthTotal, error)
}

// ReportsHandler serves period summaries, exports and the sales trend.
type ReportsHandler struct {
	reports ReportService
	header  export.Header
	logger  *zap.Logger
}

// NewReportsHandler constructs the reporting HTTP adapter.
func NewReportsHandler(reports ReportService, header export.Header, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportsHandler{reports: reports, header: header, logger: logger}
}

// Summary returns the report for ?period=week|month|last_month|custom.
func (h *ReportsHandler) Summary(c *gin.Context) {
	report, err := h.selectReport(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Monthly returns the dashboard report for ?year=&month=, defaulting to the
// current month.
func (h *ReportsHandler) Monthly(c *gin.Context) {
	now := h.reports.Now()
	year, err := intQuery(c, "year", now.Year())
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	month, err := intQuery(c, "month", int(now.Month()))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	report, err := h.reports.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Export streams the selected period report as an xlsx workbook.
func (h *ReportsHandler) Export(c *gin.Context) {
	report, err := h.selectReport(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	f, err := export.PeriodWorkbook(report, h.header)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("summary_%s_%s.xlsx",
		report.Period.Start.Format(models.DateLayout), report.Period.End.Format(models.DateLayout))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, f); err != nil {
		h.logger.Error("failed writing workbook", zap.Error(err))
	}
}

// Trend returns monthly sales totals for the last twelve months.
func (h *ReportsHandler) Trend(c *gin.Context) {
	trend, err := h.reports.SalesTrend(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": trend})
}

func (h *ReportsHandler) selectReport(c *gin.Context) (reporting.Report, error) {
	ctx := c.Request.Context()
	period := c.DefaultQuery("period", string(reporting.ThisWeek))
	if strings.EqualFold(period, "custom") {
		return h.reports.CustomReport(ctx, c.Query("from"), c.Query("to"))
	}
	kind, err := reporting.ParseQuickPeriod(period)
	if err != nil {
		return reporting.Report{}, err
	}
	return h.reports.QuickReport(ctx, kind)
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}
