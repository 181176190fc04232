package export

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func roundTrip(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	if err := Write(&buf, f); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { _ = out.Close() })
	return out
}

func TestPeriodWorkbook(t *testing.T) {
	report := reporting.Report{
		Period: models.Period{
			Label: "Monthly Summary - 03/2024",
			Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		},
		Summary: models.PeriodSummary{PurchaseCount: 1, PurchaseTotal: dec("200"), SaleCount: 1, SaleTotal: dec("500"), Profit: dec("300"), ProfitMargin: dec("60"), ItemsSold: dec("3")},
		Purchases: []models.PurchaseRecord{
			{ID: 1, Supplier: "Acme", Item: "Flour", Quantity: dec("2"), Price: dec("100"), Total: dec("200"), Balance: dec("50"), PurchaseDate: "2024-03-01T00:00:00"},
		},
		Sales: []models.SaleRecord{{
			ID: 1, InvoiceNo: "INV-0001", CustomerName: "Jane", SaleDate: "2024-03-05T00:00:00", TotalAmount: dec("500"),
			Items: []models.LineItem{
				{Item: "Bread", Quantity: dec("2"), Price: dec("100"), Total: dec("200")},
				{Item: "Cake", Quantity: dec("1"), Price: dec("300"), Total: dec("300")},
			},
		}},
	}

	f, err := PeriodWorkbook(report, Header{BusinessName: "Decent Foods", Currency: "KSH"})
	if err != nil {
		t.Fatalf("PeriodWorkbook: %v", err)
	}
	book := roundTrip(t, f)

	if got := book.GetSheetList(); !slices.Equal(got, []string{SummarySheet, PurchasesSheet, SalesSheet}) {
		t.Fatalf("unexpected sheets %v", got)
	}
	if v, _ := book.GetCellValue(SummarySheet, "A2"); v != "Monthly Summary - 03/2024" {
		t.Fatalf("unexpected title %q", v)
	}
	if v, _ := book.GetCellValue(SummarySheet, "B3"); v != "2024-03-01 to 2024-03-31" {
		t.Fatalf("unexpected period %q", v)
	}

	purchases, err := book.GetRows(PurchasesSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(purchases) != 2 || purchases[1][1] != "Acme" || purchases[1][7] != "Partial" {
		t.Fatalf("unexpected purchase rows %v", purchases)
	}

	sales, err := book.GetRows(SalesSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(sales) != 3 || sales[1][3] != "Bread" || sales[2][3] != "Cake" || sales[2][0] != "2024-03-05" {
		t.Fatalf("expected one row per line item, got %v", sales)
	}
}

func TestStatementWorkbook(t *testing.T) {
	st := ledger.Statement{
		Supplier: "Acme",
		Purchases: []models.PurchaseRecord{
			{ID: 1, Item: "Flour", Total: dec("100"), Balance: dec("0"), Paid: true, PurchaseDate: "2024-01-01T00:00:00"},
			{ID: 2, Item: "Oil", Total: dec("50"), Balance: dec("50"), PurchaseDate: "2024-01-15T00:00:00"},
		},
		Payments: []models.PaymentRecord{
			{ID: 1, Amount: dec("100"), Method: models.PaymentMpesa, Reference: "QX1", PaymentDate: "2024-01-20T10:00:00"},
		},
		TotalPurchased: dec("150"),
		TotalPaid:      dec("100"),
		Outstanding:    dec("50"),
	}

	f, err := StatementWorkbook(st, Header{BusinessName: "Decent Foods", Currency: "KSH"})
	if err != nil {
		t.Fatalf("StatementWorkbook: %v", err)
	}
	book := roundTrip(t, f)

	if got := book.GetSheetList(); !slices.Equal(got, []string{StatementSheet, PaymentsSheet}) {
		t.Fatalf("unexpected sheets %v", got)
	}
	if v, _ := book.GetCellValue(StatementSheet, "B2"); v != "Acme" {
		t.Fatalf("unexpected supplier cell %q", v)
	}
	if v, _ := book.GetCellValue(StatementSheet, "G8"); v != "Paid" {
		t.Fatalf("unexpected first purchase status %q", v)
	}
	if v, _ := book.GetCellValue(StatementSheet, "G9"); v != "Unpaid" {
		t.Fatalf("unexpected second purchase status %q", v)
	}

	payments, err := book.GetRows(PaymentsSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(payments) != 2 || payments[1][2] != "MPESA" || payments[1][3] != "QX1" {
		t.Fatalf("unexpected payment rows %v", payments)
	}
}
