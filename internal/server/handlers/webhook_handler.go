package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	service "github.com/mamadbah2/decentfoods/internal/service/whatsapp"
)

const whatsAppObject = "whatsapp_business_account"

// WebhookHandler exposes the WhatsApp command surface over HTTP.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

type verifyQuery struct {
	Mode      string `form:"hub.mode"`
	Token     string `form:"hub.verify_token"`
	Challenge string `form:"hub.challenge"`
}

// Verify answers the subscription handshake by echoing hub.challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	var q verifyQuery
	_ = c.ShouldBindQuery(&q)

	challenge, err := h.svc.VerifyWebhookToken(q.Mode, q.Token, q.Challenge)
	if err != nil {
		h.log(c).Warn("webhook verification rejected", zap.String("mode", q.Mode), zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive runs the chat commands carried by a callback. Once the body decodes
// the callback is acknowledged even if a command fails, since Meta retries
// unacknowledged deliveries and a replayed /pay records the payment twice.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.log(c).Warn("undecodable webhook body", zap.Error(err))
		badRequest(c, "invalid payload")
		return
	}
	if payload.Object != "" && payload.Object != whatsAppObject {
		h.log(c).Debug("ignoring callback for another object", zap.String("object", payload.Object))
		c.Status(http.StatusOK)
		return
	}

	inbound := len(payload.InboundMessages())
	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.log(c).Error("webhook processed with errors", zap.Int("messages", inbound), zap.Error(err))
	} else if inbound > 0 {
		h.log(c).Info("webhook processed", zap.Int("messages", inbound))
	}
	c.Status(http.StatusOK)
}

// SendMessage relays an operator message to one WhatsApp number.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.log(c).Error("outbound message failed", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"to": req.To, "status": "queued"})
}

func (h *WebhookHandler) log(c *gin.Context) *zap.Logger {
	return h.logger.With(zap.String("request_id", c.GetString(RequestIDKey)))
}
