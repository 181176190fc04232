package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is an inclusive calendar-date range.
type Period struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar date d lies inside the period.
func (p Period) Contains(d time.Time) bool {
	day := DateOf(d)
	return !day.Before(DateOf(p.Start)) && !day.After(DateOf(p.End))
}

// String renders the period as "YYYY-MM-DD to YYYY-MM-DD".
func (p Period) String() string {
	return p.Start.Format(DateLayout) + " to " + p.End.Format(DateLayout)
}

// PeriodSummary holds the derived figures for one period. It is never persisted
// on its own.
type PeriodSummary struct {
	Start         time.Time       `bson:"start" json:"start"`
	End           time.Time       `bson:"end" json:"end"`
	PurchaseCount int             `bson:"purchase_count" json:"purchase_count"`
	PurchaseTotal decimal.Decimal `bson:"purchase_total" json:"purchase_total"`
	SaleCount     int             `bson:"sale_count" json:"sale_count"`
	SaleTotal     decimal.Decimal `bson:"sale_total" json:"sale_total"`
	Profit        decimal.Decimal `bson:"profit" json:"profit"`
	ItemsSold     decimal.Decimal `bson:"items_sold" json:"items_sold"`
	ProfitMargin  decimal.Decimal `bson:"profit_margin" json:"profit_margin"`
}

// Combine adds two summaries field-wise and recomputes the derived figures.
// The resulting range spans both inputs.
func (s PeriodSummary) Combine(other PeriodSummary) PeriodSummary {
	out := PeriodSummary{
		Start:         s.Start,
		End:           s.End,
		PurchaseCount: s.PurchaseCount + other.PurchaseCount,
		PurchaseTotal: s.PurchaseTotal.Add(other.PurchaseTotal),
		SaleCount:     s.SaleCount + other.SaleCount,
		SaleTotal:     s.SaleTotal.Add(other.SaleTotal),
		ItemsSold:     s.ItemsSold.Add(other.ItemsSold),
	}
	if out.Start.IsZero() || (!other.Start.IsZero() && other.Start.Before(out.Start)) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	out.Profit = out.SaleTotal.Sub(out.PurchaseTotal)
	out.ProfitMargin = Margin(out.Profit, out.SaleTotal)
	return out
}

var hundred = decimal.NewFromInt(100)

// Margin returns profit as a percentage of sales, or zero when there are no
// sales.
func Margin(profit, saleTotal decimal.Decimal) decimal.Decimal {
	if !saleTotal.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(saleTotal).Mul(hundred)
}
