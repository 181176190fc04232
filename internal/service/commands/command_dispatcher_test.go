package commands

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/repository/memory"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

func newDispatcher(store *memory.Store) *Service {
	reports := reporting.NewService(store, reporting.Options{Location: time.UTC, Currency: "KSH"}, nil)
	return NewService(reports, ledger.NewService(store, nil), "KSH", nil)
}

func seededStore() *memory.Store {
	return memory.Seeded([]models.PurchaseRecord{
		{ID: 1, Supplier: "Acme Foods", Item: "Flour", Total: decimal.NewFromInt(100), Balance: decimal.NewFromInt(100), PurchaseDate: "2024-01-01T00:00:00"},
		{ID: 2, Supplier: "Acme Foods", Item: "Sugar", Total: decimal.NewFromInt(50), Balance: decimal.NewFromInt(50), PurchaseDate: "2024-01-05T00:00:00"},
	}, nil)
}

func TestBuildPaymentRequest(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want ledger.PaymentRequest
	}{
		{"method and reference", []string{"1,200", "mpesa", "Acme", "Foods", "ref=QX12"}, ledger.PaymentRequest{Supplier: "Acme Foods", Amount: decimal.NewFromInt(1200), Method: "MPESA", Reference: "QX12"}},
		{"default method", []string{"50", "Acme"}, ledger.PaymentRequest{Supplier: "Acme", Amount: decimal.NewFromInt(50)}},
		{"method then supplier", []string{"50", "cash", "Bank", "Supplies"}, ledger.PaymentRequest{Supplier: "Bank Supplies", Amount: decimal.NewFromInt(50), Method: "CASH"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := buildPaymentRequest(models.Command{Type: models.CommandPay, Args: tc.args})
			if err != nil {
				t.Fatalf("buildPaymentRequest: %v", err)
			}
			if got.Supplier != tc.want.Supplier || !got.Amount.Equal(tc.want.Amount) || got.Method != tc.want.Method || got.Reference != tc.want.Reference {
				t.Fatalf("got %#v want %#v", got, tc.want)
			}
		})
	}
}

func TestBuildPaymentRequestRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"100"},
		{"abc", "Acme"},
		{"-5", "Acme"},
		{"10", "ref=X"},
		{"100", "cash"},
		{"100", "M-PESA"},
		{"100", "bank", "ref=QX12"},
		{"100", "ref=QX12", "mpesa"},
	} {
		if _, err := buildPaymentRequest(models.Command{Type: models.CommandPay, Args: args}); !errors.Is(err, ErrInvalidArguments) {
			t.Fatalf("args %v: expected ErrInvalidArguments, got %v", args, err)
		}
	}
}

func TestHandlePayCommand(t *testing.T) {
	store := seededStore()
	svc := newDispatcher(store)
	ctx := context.Background()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/pay 120 cash acme foods"), "254700000000")
	if err != nil {
		t.Fatalf("HandleCommand: %v", err)
	}
	if !strings.Contains(reply, "Payment of KSH 120.00 recorded for Acme Foods") {
		t.Fatalf("unexpected reply %q", reply)
	}

	purchases, _ := store.LoadPurchases(ctx)
	if !purchases[0].Paid || !purchases[1].Balance.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("settlement not persisted: %#v", purchases)
	}

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/statement Acme Foods"), "254700000000")
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !strings.Contains(reply, "Outstanding: KSH 30.00") {
		t.Fatalf("unexpected statement %q", reply)
	}

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("/suppliers"), "254700000000")
	if err != nil {
		t.Fatalf("suppliers: %v", err)
	}
	if !strings.Contains(reply, "Acme Foods: 2 purchases, outstanding KSH 30.00") {
		t.Fatalf("unexpected suppliers %q", reply)
	}
}

func TestHandleCommandErrors(t *testing.T) {
	svc := newDispatcher(seededStore())
	ctx := context.Background()

	cases := []struct {
		message string
		want    error
	}{
		{"/summary fortnight", ErrInvalidArguments},
		{"/statement", ErrInvalidArguments},
		{"/pay 0 Acme", ErrInvalidArguments},
		{"hello there", ErrUnsupportedCommand},
	}
	for _, tc := range cases {
		if _, err := svc.HandleCommand(ctx, models.ParseCommand(tc.message), "x"); !errors.Is(err, tc.want) {
			t.Fatalf("%q: expected %v, got %v", tc.message, tc.want, err)
		}
	}
}

func TestHandleSummaryAndHelp(t *testing.T) {
	svc := newDispatcher(seededStore())
	ctx := context.Background()

	reply, err := svc.HandleCommand(ctx, models.ParseCommand("/summary last month"), "x")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(reply, "Total Purchases:") {
		t.Fatalf("unexpected summary %q", reply)
	}

	reply, err = svc.HandleCommand(ctx, models.ParseCommand("help"), "x")
	if err != nil || reply != HelpText {
		t.Fatalf("unexpected help reply %q, %v", reply, err)
	}
}
