package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/bookkeeping"
)

// BookkeepingService records and lists purchases, sales and orders.
type BookkeepingService interface {
	SavePurchase(ctx context.Context, b *bookkeeping.PurchaseBuilder, date, invoiceRef string) ([]models.PurchaseRecord, error)
	SaveSale(ctx context.Context, b *bookkeeping.SaleBuilder, header bookkeeping.SaleHeader) (models.SaleRecord, error)
	SaveOrder(ctx context.Context, b *bookkeeping.OrderBuilder, customer string) (models.OrderRecord, error)
	Purchases(ctx context.Context) ([]models.PurchaseRecord, error)
	Sales(ctx context.Context) ([]models.SaleRecord, error)
	SaleRows(ctx context.Context) ([]models.SaleRow, error)
	Orders(ctx context.Context) ([]models.OrderRecord, error)
}

// RecordsHandler serves the purchase, sale and order collections. Each POST
// is one entry session: its items are collected in a builder and saved.
type RecordsHandler struct {
	books  BookkeepingService
	logger *zap.Logger
}

// NewRecordsHandler constructs the records HTTP adapter.
func NewRecordsHandler(books BookkeepingService, logger *zap.Logger) *RecordsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordsHandler{books: books, logger: logger}
}

type itemBody struct {
	Supplier string          `json:"supplier"`
	Item     string          `json:"item"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type purchaseBody struct {
	Date       string     `json:"date" binding:"required"`
	InvoiceRef string     `json:"invoice_ref"`
	Items      []itemBody `json:"items" binding:"required,min=1"`
}

type saleBody struct {
	Customer  string     `json:"customer"`
	Date      string     `json:"date"`
	InvoiceNo string     `json:"invoice_no"`
	Items     []itemBody `json:"items" binding:"required,min=1"`
}

type orderBody struct {
	Customer string     `json:"customer"`
	Items    []itemBody `json:"items" binding:"required,min=1"`
}

// ListPurchases returns every stored purchase.
func (h *RecordsHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.books.Purchases(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// CreatePurchase stores one unpaid purchase per submitted item.
func (h *RecordsHandler) CreatePurchase(c *gin.Context) {
	var body purchaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	b := bookkeeping.NewPurchaseBuilder()
	for i, it := range body.Items {
		if _, err := b.AddItem(it.Supplier, it.Item, it.Quantity, it.Price); err != nil {
			badRequest(c, fmt.Sprintf("item %d: %v", i+1, err))
			return
		}
	}

	created, err := h.books.SavePurchase(c.Request.Context(), b, body.Date, body.InvoiceRef)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchases": created})
}

// ListSales returns every stored sale, or one row per item with ?flatten=true.
func (h *RecordsHandler) ListSales(c *gin.Context) {
	flatten, _ := strconv.ParseBool(c.DefaultQuery("flatten", "false"))
	if flatten {
		rows, err := h.books.SaleRows(c.Request.Context())
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sales": rows})
		return
	}

	sales, err := h.books.Sales(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

// CreateSale stores the submitted items as one sale.
func (h *RecordsHandler) CreateSale(c *gin.Context) {
	var body saleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	b := bookkeeping.NewSaleBuilder()
	if !h.collect(c, body.Items, b.AddItem) {
		return
	}

	sale, err := h.books.SaveSale(c.Request.Context(), b, bookkeeping.SaleHeader{
		Customer:  body.Customer,
		Date:      body.Date,
		InvoiceNo: body.InvoiceNo,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// ListOrders returns every stored order.
func (h *RecordsHandler) ListOrders(c *gin.Context) {
	orders, err := h.books.Orders(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// CreateOrder stores the submitted items as a pending order.
func (h *RecordsHandler) CreateOrder(c *gin.Context) {
	var body orderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	b := bookkeeping.NewOrderBuilder()
	if !h.collect(c, body.Items, b.AddItem) {
		return
	}

	order, err := h.books.SaveOrder(c.Request.Context(), b, body.Customer)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *RecordsHandler) collect(c *gin.Context, items []itemBody, add func(string, decimal.Decimal, decimal.Decimal) (models.LineItem, error)) bool {
	for i, it := range items {
		if _, err := add(it.Item, it.Quantity, it.Price); err != nil {
			badRequest(c, fmt.Sprintf("item %d: %v", i+1, err))
			return false
		}
	}
	return true
}
