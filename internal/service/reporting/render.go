package reporting

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

const recentEntries = 10

// RenderText formats a report for chat messages and terminals.
func RenderText(report Report, currency string) string {
	money := func(v decimal.Decimal) string { return models.FormatAmount(currency, v) }

	var b strings.Builder
	sum := report.Summary

	title := report.Period.Label
	if title == "" {
		title = "Summary"
	}
	fmt.Fprintf(&b, "%s\nPeriod: %s\n", title, report.Period.String())

	if report.NoData {
		b.WriteString("No data: the record store could not be read.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Total Purchases: %s (%d transactions)\n", money(sum.PurchaseTotal), sum.PurchaseCount)
	fmt.Fprintf(&b, "Total Sales: %s (%d transactions)\n", money(sum.SaleTotal), sum.SaleCount)
	fmt.Fprintf(&b, "Net Profit: %s (%s%% margin)\n", money(sum.Profit), sum.ProfitMargin.StringFixed(1))
	fmt.Fprintf(&b, "Items Sold: %s\n", sum.ItemsSold.String())

	if len(report.Purchases) > 0 {
		fmt.Fprintf(&b, "\nRecent purchases (%d total)\n", len(report.Purchases))
		for _, p := range lastN(report.Purchases, recentEntries) {
			fmt.Fprintf(&b, "- %s: %s %s x%s = %s\n", models.FormatDate(p.PurchaseDate), p.Supplier, p.Item, p.Quantity.String(), money(p.Total))
		}
	}

	if len(report.Sales) > 0 {
		fmt.Fprintf(&b, "\nRecent sales (%d total)\n", len(report.Sales))
		for _, s := range lastN(report.Sales, recentEntries) {
			fmt.Fprintf(&b, "- %s: %s - %s\n", models.FormatDate(s.SaleDate), s.CustomerName, money(s.TotalAmount))
		}
	}

	if len(report.Unavailable) > 0 {
		fmt.Fprintf(&b, "\nUnavailable: %s\n", strings.Join(report.Unavailable, ", "))
	}

	return b.String()
}

func lastN[T any](records []T, n int) []T {
	if len(records) <= n {
		return records
	}
	return records[len(records)-n:]
}
