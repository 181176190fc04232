package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/service/bookkeeping"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

func isInputError(err error) bool {
	return errors.Is(err, reporting.ErrInvalidPeriod) ||
		errors.Is(err, reporting.ErrInvalidDate) ||
		ledger.IsInputError(err) ||
		bookkeeping.IsInputError(err)
}

// respondError maps caller mistakes to 400 and everything else to 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if isInputError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	logger.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
