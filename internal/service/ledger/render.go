package ledger

import (
	"fmt"
	"strings"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
)

// RenderSettlement formats a settlement outcome for chat and terminal output.
func RenderSettlement(result Settlement, currency string) string {
	if result.NothingToSettle {
		return fmt.Sprintf("No outstanding balance for %s. Nothing was recorded.\n", result.Supplier)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Payment of %s recorded for %s", models.FormatAmount(currency, result.Amount), result.Supplier)
	if result.Payment != nil {
		fmt.Fprintf(&b, " (%s", result.Payment.Method)
		if result.Payment.Reference != "" {
			fmt.Fprintf(&b, ", ref %s", result.Payment.Reference)
		}
		b.WriteString(")")
	}
	b.WriteString("\n")

	for _, a := range result.Allocations {
		status := "partial"
		if a.Paid {
			status = "paid"
		}
		fmt.Fprintf(&b, "- #%d %s (%s): %s applied, balance %s [%s]\n",
			a.PurchaseID, a.Item, models.FormatDate(a.PurchaseDate),
			models.FormatAmount(currency, a.Applied), models.FormatAmount(currency, a.BalanceAfter), status)
	}

	if result.Unapplied.IsPositive() {
		fmt.Fprintf(&b, "Unapplied: %s exceeds the outstanding balance and was not credited.\n", models.FormatAmount(currency, result.Unapplied))
	}
	return b.String()
}

// RenderStatement formats a supplier statement.
func RenderStatement(st Statement, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Statement: %s\n", st.Supplier)
	fmt.Fprintf(&b, "Total Purchased: %s\n", models.FormatAmount(currency, st.TotalPurchased))
	fmt.Fprintf(&b, "Total Paid: %s\n", models.FormatAmount(currency, st.TotalPaid))
	fmt.Fprintf(&b, "Outstanding: %s\n", models.FormatAmount(currency, st.Outstanding))

	if len(st.Purchases) == 0 {
		b.WriteString("\nNo purchases found.\n")
	} else {
		b.WriteString("\nPurchases\n")
		for _, p := range st.Purchases {
			status := "unpaid"
			switch {
			case p.Paid:
				status = "paid"
			case p.Balance.LessThan(p.Total):
				status = "partial"
			}
			fmt.Fprintf(&b, "- %s %s: %s, balance %s [%s]\n",
				models.FormatDate(p.PurchaseDate), p.Item,
				models.FormatAmount(currency, p.Total), models.FormatAmount(currency, p.Balance), status)
		}
	}

	if len(st.Payments) > 0 {
		b.WriteString("\nPayments\n")
		for _, p := range st.Payments {
			fmt.Fprintf(&b, "- %s %s via %s", models.FormatDate(p.PaymentDate), models.FormatAmount(currency, p.Amount), p.Method)
			if p.Reference != "" {
				fmt.Fprintf(&b, " (%s)", p.Reference)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderSuppliers formats the supplier list with outstanding balances.
func RenderSuppliers(suppliers []SupplierBalance, currency string) string {
	if len(suppliers) == 0 {
		return "No suppliers found.\n"
	}
	var b strings.Builder
	b.WriteString("Suppliers\n")
	for _, s := range suppliers {
		fmt.Fprintf(&b, "- %s: %d purchases, outstanding %s\n", s.Name, s.Purchases, models.FormatAmount(currency, s.Outstanding))
	}
	return b.String()
}
