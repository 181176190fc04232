package models

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	cases := []string{
		"2024-03-05",
		"2024-03-05T00:00:00",
		"2024-03-05T17:45:12",
		"2024-03-05T17:45:12.123456",
		"2024-03-05 08:00:00",
		"2024-03-05T23:30:00+03:00",
		" 2024-03-05 ",
		"2024-03-05garbage",
	}
	for _, in := range cases {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseDate("  "); !errors.Is(err, ErrEmptyDate) {
		t.Fatalf("expected ErrEmptyDate, got %v", err)
	}
	for _, in := range []string{"05/03/2024", "2024-13-01", "yesterday"} {
		if _, err := ParseDate(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate("2024-03-05T10:00:00"); got != "2024-03-05" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDate("not a date"); got != "N/A" {
		t.Fatalf("got %q", got)
	}
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	p := Period{Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), End: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)}
	for _, d := range []time.Time{p.Start, p.End, time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)} {
		if !p.Contains(d) {
			t.Fatalf("expected %v inside %s", d, p)
		}
	}
	if p.Contains(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)) || p.Contains(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("dates outside the period reported as contained")
	}
}

func TestFlattenSales(t *testing.T) {
	d := decimal.RequireFromString
	sales := []SaleRecord{
		{ID: 1, InvoiceNo: "INV-0001", CustomerName: "Jane", SaleDate: "2024-03-01T00:00:00", Items: []LineItem{
			{Item: "Bread", Quantity: d("2"), Price: d("50"), Total: d("100")},
			{Item: "Milk", Quantity: d("1"), Price: d("60"), Total: d("60")},
		}},
		{ID: 2, InvoiceNo: "INV-0002", CustomerName: "Joe", SaleDate: "2024-03-02T00:00:00"},
		{ID: 3, InvoiceNo: "INV-0003", CustomerName: "Ann", SaleDate: "2024-03-03T00:00:00", Items: []LineItem{
			{Item: "Eggs", Quantity: d("12"), Price: d("15"), Total: d("180")},
		}},
	}

	rows := FlattenSales(sales)
	var got []string
	for _, r := range rows {
		got = append(got, r.InvoiceNo+"/"+r.Item)
	}
	want := []string{"INV-0001/Bread", "INV-0001/Milk", "INV-0003/Eggs"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if rows[2].CustomerName != "Ann" || rows[2].SaleDate != "2024-03-03T00:00:00" || !rows[2].Total.Equal(d("180")) {
		t.Fatalf("row fields not copied: %+v", rows[2])
	}
	if !sales[0].ItemsSold().Equal(d("3")) {
		t.Fatalf("unexpected items sold %s", sales[0].ItemsSold())
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		typ  CommandType
		args []string
	}{
		{"/summary month", CommandSummary, []string{"month"}},
		{"REPORT", CommandSummary, nil},
		{"/Pay 500 mpesa Acme Foods", CommandPay, []string{"500", "mpesa", "Acme", "Foods"}},
		{"balance  Acme", CommandStatement, []string{"Acme"}},
		{"/suppliers", CommandSuppliers, nil},
		{"/start", CommandHelp, nil},
		{"hello", CommandUnknown, nil},
		{"   ", CommandUnknown, nil},
	}
	for _, tc := range cases {
		got := ParseCommand(tc.in)
		if got.Type != tc.typ || !reflect.DeepEqual(got.Args, tc.args) || got.Raw != tc.in {
			t.Fatalf("ParseCommand(%q) = %+v", tc.in, got)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	cases := map[string]PaymentMethod{
		"":       PaymentCash,
		"cash":   PaymentCash,
		" Mpesa": PaymentMpesa,
		"m-pesa": PaymentMpesa,
		"BANK":   PaymentBank,
	}
	for in, want := range cases {
		got, err := ParsePaymentMethod(in)
		if err != nil || got != want {
			t.Fatalf("ParsePaymentMethod(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePaymentMethod("cheque"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestPurchaseAmounts(t *testing.T) {
	p := PurchaseRecord{Total: decimal.NewFromInt(100), Balance: decimal.NewFromInt(30)}
	if !p.Outstanding() || !p.AmountPaid().Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected amounts outstanding=%v paid=%s", p.Outstanding(), p.AmountPaid())
	}
	if got := FormatAmount("KSH", decimal.RequireFromString("1234.5")); got != "KSH 1234.50" {
		t.Fatalf("got %q", got)
	}
}
