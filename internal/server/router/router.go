package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/server/handlers"
)

const requestIDHeader = "X-Request-ID"

// Handlers groups the HTTP adapters. Webhook is nil when WhatsApp is not
// configured.
type Handlers struct {
	Reports *handlers.ReportsHandler
	Ledger  *handlers.LedgerHandler
	Records *handlers.RecordsHandler
	Webhook *handlers.WebhookHandler

	// AllowedOrigins turns on CORS. Empty leaves it off.
	AllowedOrigins []string
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	if len(h.AllowedOrigins) > 0 {
		r.Use(corsMiddleware(h.AllowedOrigins))
	}
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/summary", h.Reports.Summary)
		api.GET("/summary/monthly", h.Reports.Monthly)
		api.GET("/summary/export", h.Reports.Export)
		api.GET("/sales/trend", h.Reports.Trend)

		api.GET("/purchases", h.Records.ListPurchases)
		api.POST("/purchases", h.Records.CreatePurchase)
		api.GET("/sales", h.Records.ListSales)
		api.POST("/sales", h.Records.CreateSale)
		api.GET("/orders", h.Records.ListOrders)
		api.POST("/orders", h.Records.CreateOrder)

		api.GET("/suppliers", h.Ledger.Suppliers)
		api.GET("/suppliers/:name/statement", h.Ledger.Statement)
		api.GET("/suppliers/:name/payments", h.Ledger.Payments)
		api.POST("/suppliers/:name/payments", h.Ledger.Pay)
	}

	if h.Webhook != nil {
		r.GET("/webhook", h.Webhook.Verify)
		r.POST("/webhook", h.Webhook.Receive)
		r.POST("/send-message", h.Webhook.SendMessage)
	}

	logger.Info("router initialized", zap.Bool("whatsapp", h.Webhook != nil))
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	cfg.AddAllowHeaders("Authorization", requestIDHeader)
	cfg.AddExposeHeaders(requestIDHeader, "Content-Disposition")
	return cors.New(cfg)
}

// requestIDMiddleware reuses an incoming X-Request-ID or assigns a new one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString(handlers.RequestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
