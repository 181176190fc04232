package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SummarySheet   = "Summary"
	PurchasesSheet = "Purchases"
	SalesSheet     = "Sales"
	StatementSheet = "Statement"
	PaymentsSheet  = "Payments"
)

// Header identifies the business on every generated document.
type Header struct {
	BusinessName string
	Currency     string
}

// PeriodWorkbook renders a period report into Summary, Purchases and Sales
// sheets. Sales are listed one row per line item.
func PeriodWorkbook(report reporting.Report, header Header) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}

	sum := report.Summary
	title := report.Period.Label
	if title == "" {
		title = "Summary"
	}
	status := "OK"
	if report.NoData {
		status = "No data: the record store could not be read"
	}
	rows := [][]interface{}{
		{header.BusinessName},
		{title},
		{"Period", report.Period.String()},
		{"Status", status},
		{},
		{"Metric", "Value"},
		{"Purchases", sum.PurchaseCount},
		{fmt.Sprintf("Total Purchases (%s)", header.Currency), amount(sum.PurchaseTotal)},
		{"Sales", sum.SaleCount},
		{fmt.Sprintf("Total Sales (%s)", header.Currency), amount(sum.SaleTotal)},
		{fmt.Sprintf("Net Profit (%s)", header.Currency), amount(sum.Profit)},
		{"Profit Margin (%)", amount(sum.ProfitMargin.Round(1))},
		{"Items Sold", amount(sum.ItemsSold)},
	}
	if err := writeRows(f, SummarySheet, 1, rows); err != nil {
		return nil, err
	}

	purchaseRows := make([][]interface{}, 0, len(report.Purchases))
	for _, p := range report.Purchases {
		purchaseRows = append(purchaseRows, []interface{}{
			models.FormatDate(p.PurchaseDate), p.Supplier, p.Item, amount(p.Quantity), amount(p.Price), amount(p.Total), p.InvoiceRef, paidLabel(p),
		})
	}
	if err := writeTable(f, PurchasesSheet, []string{"Date", "Supplier", "Item", "Quantity", "Price", "Total", "Invoice", "Status"}, purchaseRows); err != nil {
		return nil, err
	}

	saleRows := make([][]interface{}, 0, len(report.Sales))
	for _, row := range models.FlattenSales(report.Sales) {
		saleRows = append(saleRows, []interface{}{
			models.FormatDate(row.SaleDate), row.InvoiceNo, row.CustomerName, row.Item, amount(row.Quantity), amount(row.Price), amount(row.Total),
		})
	}
	if err := writeTable(f, SalesSheet, []string{"Date", "Invoice", "Customer", "Item", "Quantity", "Price", "Total"}, saleRows); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// StatementWorkbook renders a supplier statement into Statement and Payments
// sheets.
func StatementWorkbook(st ledger.Statement, header Header) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", StatementSheet); err != nil {
		return nil, err
	}

	intro := [][]interface{}{
		{header.BusinessName},
		{"Supplier Statement", st.Supplier},
		{fmt.Sprintf("Total Purchased (%s)", header.Currency), amount(st.TotalPurchased)},
		{fmt.Sprintf("Total Paid (%s)", header.Currency), amount(st.TotalPaid)},
		{fmt.Sprintf("Outstanding (%s)", header.Currency), amount(st.Outstanding)},
		{},
	}
	if err := writeRows(f, StatementSheet, 1, intro); err != nil {
		return nil, err
	}

	purchaseRows := [][]interface{}{{"Date", "Item", "Quantity", "Total", "Paid", "Balance", "Status"}}
	for _, p := range st.Purchases {
		purchaseRows = append(purchaseRows, []interface{}{
			models.FormatDate(p.PurchaseDate), p.Item, amount(p.Quantity), amount(p.Total), amount(p.AmountPaid()), amount(p.Balance), paidLabel(p),
		})
	}
	if err := writeRows(f, StatementSheet, len(intro)+1, purchaseRows); err != nil {
		return nil, err
	}
	if err := boldRow(f, StatementSheet, len(intro)+1, 7); err != nil {
		return nil, err
	}

	paymentRows := make([][]interface{}, 0, len(st.Payments))
	for _, p := range st.Payments {
		paymentRows = append(paymentRows, []interface{}{
			models.FormatDate(p.PaymentDate), amount(p.Amount), string(p.Method), p.Reference,
		})
	}
	if err := writeTable(f, PaymentsSheet, []string{"Date", "Amount", "Method", "Reference"}, paymentRows); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook and closes it.
func Write(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headings []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	head := make([]interface{}, len(headings))
	for i, h := range headings {
		head[i] = h
	}
	if err := writeRows(f, sheet, 1, append([][]interface{}{head}, rows...)); err != nil {
		return err
	}
	return boldRow(f, sheet, 1, len(headings))
}

func writeRows(f *excelize.File, sheet string, firstRow int, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, firstRow+i)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, firstRow+i, err)
		}
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, row, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(columns, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, style)
}

func amount(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func paidLabel(p models.PurchaseRecord) string {
	switch {
	case p.Paid:
		return "Paid"
	case p.Balance.LessThan(p.Total):
		return "Partial"
	default:
		return "Unpaid"
	}
}
