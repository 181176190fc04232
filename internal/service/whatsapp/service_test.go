package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mamadbah2/decentfoods/internal/config"
	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/commands"
	client "github.com/mamadbah2/decentfoods/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent []client.SendTextMessageRequest
	err  error
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, f.err
}

type fakeDispatcher struct {
	reply string
	err   error
	seen  []models.Command
}

func (f *fakeDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ string) (string, error) {
	f.seen = append(f.seen, cmd)
	return f.reply, f.err
}

func textPayload(from string, bodies ...string) models.WebhookPayload {
	var msgs []models.InboundMessage
	for i, body := range bodies {
		msgs = append(msgs, models.InboundMessage{From: from, ID: fmt.Sprintf("m%d", i), Type: "text", Text: &models.TextContent{Body: body}})
	}
	return models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{Messages: msgs}}}}}}
}

func TestVerifyWebhookToken(t *testing.T) {
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, &fakeClient{}, &fakeDispatcher{}, nil)

	if got, err := svc.VerifyWebhookToken("subscribe", "secret", "42"); err != nil || got != "42" {
		t.Fatalf("expected challenge echo, got %q %v", got, err)
	}
	for _, tc := range [][2]string{{"", "secret"}, {"unsubscribe", "secret"}, {"subscribe", "wrong"}} {
		if _, err := svc.VerifyWebhookToken(tc[0], tc[1], "42"); err == nil {
			t.Fatalf("expected error for mode=%q token=%q", tc[0], tc[1])
		}
	}
}

func TestHandleWebhookRepliesWithDispatcherOutput(t *testing.T) {
	c := &fakeClient{}
	d := &fakeDispatcher{reply: "Suppliers\n- Acme"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, c, d, nil)

	if err := svc.HandleWebhook(context.Background(), textPayload("2547", " /suppliers ")); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(d.seen) != 1 || d.seen[0].Type != models.CommandSuppliers {
		t.Fatalf("unexpected dispatch %+v", d.seen)
	}
	if len(c.sent) != 1 || c.sent[0].To != "2547" || c.sent[0].Body != "Suppliers\n- Acme" {
		t.Fatalf("unexpected sends %+v", c.sent)
	}
}

func TestHandleWebhookErrorReplies(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unknown", commands.ErrUnsupportedCommand, "Unknown command."},
		{"bad args", fmt.Errorf("%w: amount", commands.ErrInvalidArguments), "Could not run /pay"},
		{"internal", errors.New("disk on fire"), "Something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &fakeClient{}
			svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, c, &fakeDispatcher{err: tc.err}, nil)
			if err := svc.HandleWebhook(context.Background(), textPayload("1", "/pay x")); err != nil {
				t.Fatalf("HandleWebhook: %v", err)
			}
			if len(c.sent) != 1 || !strings.Contains(c.sent[0].Body, tc.want) {
				t.Fatalf("expected reply containing %q, got %+v", tc.want, c.sent)
			}
		})
	}
}

func TestHandleWebhookReportsSendFailure(t *testing.T) {
	c := &fakeClient{err: errors.New("network down")}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, c, &fakeDispatcher{reply: "ok"}, nil)

	err := svc.HandleWebhook(context.Background(), textPayload("1", "/help", "/help"))
	if err == nil || len(c.sent) != 2 {
		t.Fatalf("expected error after trying both messages, got %v with %d sends", err, len(c.sent))
	}
}

func TestNotify(t *testing.T) {
	c := &fakeClient{}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, c, &fakeDispatcher{}, nil)
	if err := svc.Notify(context.Background(), "weekly"); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}

	svc = NewMetaWhatsAppService(config.WhatsAppConfig{ManagerID: "2547"}, c, &fakeDispatcher{}, nil)
	if err := svc.Notify(context.Background(), "weekly"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(c.sent) != 1 || c.sent[0].To != "2547" {
		t.Fatalf("unexpected sends %+v", c.sent)
	}
}

func TestHandleWebhookUsesInteractiveReplies(t *testing.T) {
	c := &fakeClient{}
	d := &fakeDispatcher{reply: "ok"}
	svc := NewMetaWhatsAppService(config.WhatsAppConfig{}, c, d, nil)

	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{Value: models.WebhookValue{
		Messages: []models.InboundMessage{
			{From: "1", Type: "interactive", Interactive: &models.InteractiveContent{ButtonReply: &models.ReplyOption{ID: "/summary month"}}},
			{From: "1", Type: "image"},
		},
		Statuses: []models.MessageStatus{{ID: "wamid.1", Status: "read"}},
	}}}}}}

	if err := svc.HandleWebhook(context.Background(), payload); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if len(d.seen) != 1 || d.seen[0].Type != models.CommandSummary || len(c.sent) != 1 {
		t.Fatalf("expected only the button reply to be dispatched, got %+v / %d sends", d.seen, len(c.sent))
	}
}
