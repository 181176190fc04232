package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/export"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
)

// LedgerService is the supplier ledger surface exposed over HTTP.
type LedgerService interface {
	Pay(ctx context.Context, req ledger.PaymentRequest) (ledger.Settlement, error)
	Statement(ctx context.Context, supplier string) (ledger.Statement, error)
	Suppliers(ctx context.Context) ([]ledger.SupplierBalance, error)
	Payments(ctx context.Context, supplier string) ([]models.PaymentRecord, decimal.Decimal, error)
}

// LedgerHandler serves supplier balances, statements and payments.
type LedgerHandler struct {
	ledger LedgerService
	header export.Header
	logger *zap.Logger
}

// NewLedgerHandler constructs the supplier ledger HTTP adapter.
func NewLedgerHandler(svc LedgerService, header export.Header, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{ledger: svc, header: header, logger: logger}
}

type paymentBody struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
}

// Suppliers lists every supplier with its outstanding balance.
func (h *LedgerHandler) Suppliers(c *gin.Context) {
	suppliers, err := h.ledger.Suppliers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

// Statement returns the supplier statement as JSON, or as a workbook with
// ?format=xlsx.
func (h *LedgerHandler) Statement(c *gin.Context) {
	st, err := h.ledger.Statement(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if !strings.EqualFold(c.Query("format"), "xlsx") {
		c.JSON(http.StatusOK, st)
		return
	}

	f, err := export.StatementWorkbook(st, h.header)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	filename := fmt.Sprintf("statement_%s.xlsx", strings.ReplaceAll(st.Supplier, " ", "_"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.Write(c.Writer, f); err != nil {
		h.logger.Error("failed writing workbook", zap.Error(err))
	}
}

// Payments lists the supplier's payments, most recent first.
func (h *LedgerHandler) Payments(c *gin.Context) {
	payments, total, err := h.ledger.Payments(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "total": total})
}

// Pay settles a payment against the supplier's outstanding purchases.
// A supplier with nothing outstanding answers 200 and records nothing.
func (h *LedgerHandler) Pay(c *gin.Context) {
	var body paymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.ledger.Pay(c.Request.Context(), ledger.PaymentRequest{
		Supplier:  c.Param("name"),
		Amount:    body.Amount,
		Method:    body.Method,
		Reference: body.Reference,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if result.NothingToSettle {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
