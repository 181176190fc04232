package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

type fakeSheet struct {
	ranges []string
	rows   [][]interface{}
	err    error
}

func (f *fakeSheet) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.ranges = append(f.ranges, sheetRange)
	f.rows = append(f.rows, values)
	return nil
}

func (f *fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rows) == 0 {
		return nil, nil
	}
	return f.rows[:1], nil
}

func weeklyReport() models.PeriodReport {
	return models.PeriodReport{
		Label: "Weekly Summary",
		Summary: models.PeriodSummary{
			Start:         time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
			End:           time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
			PurchaseCount: 2,
			PurchaseTotal: decimal.RequireFromString("200"),
			SaleCount:     1,
			SaleTotal:     decimal.RequireFromString("500"),
			Profit:        decimal.RequireFromString("300"),
			ProfitMargin:  decimal.RequireFromString("60"),
		},
		CreatedAt: time.Date(2024, 3, 15, 17, 0, 0, 0, time.UTC),
	}
}

func TestSaveReportWritesHeaderOnceThenRows(t *testing.T) {
	sheet := &fakeSheet{}
	archive := NewReportArchive(sheet)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := archive.SaveReport(ctx, weeklyReport()); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	if len(sheet.rows) != 3 {
		t.Fatalf("expected header plus two rows, got %v", sheet.rows)
	}
	if sheet.rows[0][0] != "Created At" {
		t.Fatalf("expected header first, got %v", sheet.rows[0])
	}
	for _, r := range sheet.ranges {
		if r != ReportsRange {
			t.Fatalf("unexpected range %s", r)
		}
	}

	want := []interface{}{"2024-03-15T17:00:00Z", "Weekly Summary", "2024-03-08", "2024-03-14", 2, "200.00", 1, "500.00", "300.00", "60.0"}
	got := sheet.rows[1]
	if len(got) != len(want) {
		t.Fatalf("unexpected row %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestSaveReportSkipsHeaderWhenPresent(t *testing.T) {
	sheet := &fakeSheet{rows: [][]interface{}{{"Created At"}}}
	archive := NewReportArchive(sheet)

	if err := archive.SaveReport(context.Background(), weeklyReport()); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if len(sheet.rows) != 2 {
		t.Fatalf("expected existing header plus one row, got %v", sheet.rows)
	}
}

func TestSaveReportWrapsSheetError(t *testing.T) {
	boom := errors.New("quota exceeded")
	archive := NewReportArchive(&fakeSheet{err: boom})
	if err := archive.SaveReport(context.Background(), weeklyReport()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped sheet error, got %v", err)
	}
}
