package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

// Aggregate computes the period figures from purchases and sale headers.
// Start and End are left for the caller to fill in.
func Aggregate(purchases []models.PurchaseRecord, sales []models.SaleRecord) models.PeriodSummary {
	saleTotal := decimal.Zero
	itemsSold := decimal.Zero
	for _, sale := range sales {
		saleTotal = saleTotal.Add(sale.TotalAmount)
		itemsSold = itemsSold.Add(sale.ItemsSold())
	}
	return summarize(purchases, len(sales), saleTotal, itemsSold)
}

// AggregateRows is Aggregate for the flattened row-per-item sales shape.
// Rows sharing a sale id count as one sale; rows without an id (0) count as
// a sale each.
func AggregateRows(purchases []models.PurchaseRecord, rows []models.SaleRow) models.PeriodSummary {
	saleTotal := decimal.Zero
	itemsSold := decimal.Zero
	unnumbered := 0
	seen := make(map[int64]struct{}, len(rows))
	for _, row := range rows {
		saleTotal = saleTotal.Add(row.Total)
		itemsSold = itemsSold.Add(row.Quantity)
		if row.SaleID == 0 {
			unnumbered++
			continue
		}
		seen[row.SaleID] = struct{}{}
	}
	return summarize(purchases, len(seen)+unnumbered, saleTotal, itemsSold)
}

func summarize(purchases []models.PurchaseRecord, saleCount int, saleTotal, itemsSold decimal.Decimal) models.PeriodSummary {
	purchaseTotal := decimal.Zero
	for _, p := range purchases {
		purchaseTotal = purchaseTotal.Add(p.Total)
	}

	profit := saleTotal.Sub(purchaseTotal)
	return models.PeriodSummary{
		PurchaseCount: len(purchases),
		PurchaseTotal: purchaseTotal,
		SaleCount:     saleCount,
		SaleTotal:     saleTotal,
		Profit:        profit,
		ItemsSold:     itemsSold,
		ProfitMargin:  models.Margin(profit, saleTotal),
	}
}

// MonthTotal is the sales total of one calendar month.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// SalesTrend totals sales per calendar month for the given number of months
// ending with now's month, oldest first.
func SalesTrend(sales []models.SaleRecord, now time.Time, months int) []MonthTotal {
	if months <= 0 {
		return nil
	}

	current := firstOfMonth(models.DateOf(now))
	trend := make([]MonthTotal, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := current.AddDate(0, i-months+1, 0).Format("2006-01")
		trend[i] = MonthTotal{Month: key, Total: decimal.Zero}
		index[key] = i
	}

	for _, sale := range sales {
		date, err := models.ParseDate(sale.SaleDate)
		if err != nil {
			continue
		}
		if i, ok := index[date.Format("2006-01")]; ok {
			trend[i].Total = trend[i].Total.Add(sale.TotalAmount)
		}
	}

	return trend
}
