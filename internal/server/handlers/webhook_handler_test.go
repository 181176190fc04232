package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

type fakeMessaging struct {
	handled  int
	sent     []models.OutboundMessageRequest
	handleFn func(models.WebhookPayload) error
	sendErr  error
}

func (f *fakeMessaging) VerifyWebhookToken(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != "secret" {
		return "", errors.New("rejected")
	}
	return challenge, nil
}

func (f *fakeMessaging) HandleWebhook(_ context.Context, payload models.WebhookPayload) error {
	f.handled++
	if f.handleFn != nil {
		return f.handleFn(payload)
	}
	return nil
}

func (f *fakeMessaging) SendOutbound(_ context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return f.sendErr
}

func webhookEngine(svc *fakeMessaging) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewWebhookHandler(svc, nil)
	r := gin.New()
	r.GET("/webhook", h.Verify)
	r.POST("/webhook", h.Receive)
	r.POST("/send-message", h.SendMessage)
	return r
}

func serve(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWebhookVerify(t *testing.T) {
	r := webhookEngine(&fakeMessaging{})

	rec := serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=1158201444", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "1158201444" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	rec = serve(r, http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=nope&hub.challenge=1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestWebhookReceive(t *testing.T) {
	const message = `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{"messages":[{"from":"2547","id":"m1","type":"text","text":{"body":"/pay 500 Acme"}}]}}]}]}`

	cases := []struct {
		name    string
		body    string
		failing bool
		code    int
		handled int
	}{
		{"handled", message, false, http.StatusOK, 1},
		{"failures still acknowledged", message, true, http.StatusOK, 1},
		{"other object ignored", `{"object":"page","entry":[]}`, false, http.StatusOK, 0},
		{"undecodable", `{"entry":`, false, http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeMessaging{}
			if tc.failing {
				svc.handleFn = func(models.WebhookPayload) error { return errors.New("store offline") }
			}
			rec := serve(webhookEngine(svc), http.MethodPost, "/webhook", tc.body)
			if rec.Code != tc.code || svc.handled != tc.handled {
				t.Fatalf("got %d with %d dispatches, want %d with %d", rec.Code, svc.handled, tc.code, tc.handled)
			}
		})
	}
}

func TestSendMessage(t *testing.T) {
	svc := &fakeMessaging{}
	r := webhookEngine(svc)

	if rec := serve(r, http.MethodPost, "/send-message", `{"to":"2547"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without message, got %d", rec.Code)
	}
	rec := serve(r, http.MethodPost, "/send-message", `{"to":"2547","message":"Stock arrives Monday"}`)
	if rec.Code != http.StatusAccepted || len(svc.sent) != 1 || svc.sent[0].Message != "Stock arrives Monday" {
		t.Fatalf("unexpected response %d sends=%+v", rec.Code, svc.sent)
	}

	svc.sendErr = errors.New("meta down")
	if rec := serve(r, http.MethodPost, "/send-message", `{"to":"2547","message":"hi"}`); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
