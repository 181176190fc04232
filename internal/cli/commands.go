package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/decentfoods/internal/domain/models"
	"github.com/mamadbah2/decentfoods/internal/service/export"
	"github.com/mamadbah2/decentfoods/internal/service/ledger"
	"github.com/mamadbah2/decentfoods/internal/service/reporting"
)

type periodFlags struct {
	period string
	from   string
	to     string
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.period, "period", "p", "week", "week, month, last_month or custom")
	cmd.Flags().StringVar(&p.from, "from", "", "Start date for --period custom (YYYY-MM-DD)")
	cmd.Flags().StringVar(&p.to, "to", "", "End date for --period custom (YYYY-MM-DD)")
}

func (p *periodFlags) report(cmd *cobra.Command, rt *runtime) (reporting.Report, error) {
	if strings.EqualFold(p.period, "custom") {
		return rt.app.Reporting.CustomReport(cmd.Context(), p.from, p.to)
	}
	kind, err := reporting.ParseQuickPeriod(p.period)
	if err != nil {
		return reporting.Report{}, err
	}
	return rt.app.Reporting.QuickReport(cmd.Context(), kind)
}

func newSummaryCommand(rt *runtime) *cobra.Command {
	var flags periodFlags
	var archive bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the purchase, sales and profit summary of a period",
		Example: `  decentfoods summary
  decentfoods summary --period last_month
  decentfoods summary --period custom --from 2024-03-01 --to 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := flags.report(cmd, rt)
			if err != nil {
				return err
			}
			if archive {
				if err := rt.app.Reporting.Archive(cmd.Context(), report); err != nil {
					return err
				}
			}
			return rt.print(cmd.OutOrStdout(), rt.app.Reporting.Render(report), report)
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&archive, "archive", false, "Also store the summary in the configured report archive")
	return cmd
}

func newMonthlyCommand(rt *runtime) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Print the dashboard summary of a calendar month and the 12-month sales trend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := rt.app.Reporting.Now()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}

			report, err := rt.app.Reporting.MonthlyReport(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			trend, err := rt.app.Reporting.SalesTrend(cmd.Context())
			if err != nil {
				return err
			}

			var b strings.Builder
			b.WriteString(rt.app.Reporting.Render(report))
			b.WriteString("\nSales trend\n")
			for _, m := range trend {
				fmt.Fprintf(&b, "%s  %s\n", m.Month, models.FormatAmount(rt.app.Config.Business.Currency, m.Total))
			}
			return rt.print(cmd.OutOrStdout(), b.String(), struct {
				Report reporting.Report       `json:"report"`
				Trend  []reporting.MonthTotal `json:"trend"`
			}{report, trend})
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "Year (default: current)")
	cmd.Flags().IntVar(&month, "month", 0, "Month 1-12 (default: current)")
	return cmd
}

func newPayCommand(rt *runtime) *cobra.Command {
	var amount, method, reference string

	cmd := &cobra.Command{
		Use:     "pay <supplier>",
		Short:   "Record a payment to a supplier and settle its oldest purchases first",
		Example: `  decentfoods pay "Acme Foods" --amount 1500 --method mpesa --reference QX12`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := decimal.NewFromString(strings.ReplaceAll(amount, ",", ""))
			if err != nil {
				return fmt.Errorf("%w: %q", ledger.ErrInvalidAmount, amount)
			}
			result, err := rt.app.Ledger.Pay(cmd.Context(), ledger.PaymentRequest{
				Supplier:  strings.Join(args, " "),
				Amount:    value,
				Method:    method,
				Reference: reference,
			})
			if err != nil {
				return err
			}
			return rt.print(cmd.OutOrStdout(), ledger.RenderSettlement(result, rt.app.Config.Business.Currency), result)
		},
	}
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount paid")
	cmd.Flags().StringVarP(&method, "method", "m", "cash", "cash, mpesa or bank")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "Transaction reference")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newStatementCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "statement <supplier>",
		Short: "Print a supplier's purchases, payments and outstanding balance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := rt.app.Ledger.Statement(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return rt.print(cmd.OutOrStdout(), ledger.RenderStatement(st, rt.app.Config.Business.Currency), st)
		},
	}
}

func newSuppliersCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "suppliers",
		Short: "List suppliers with their outstanding balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suppliers, err := rt.app.Ledger.Suppliers(cmd.Context())
			if err != nil {
				return err
			}
			return rt.print(cmd.OutOrStdout(), ledger.RenderSuppliers(suppliers, rt.app.Config.Business.Currency), suppliers)
		},
	}
}

func newExportCommand(rt *runtime) *cobra.Command {
	var flags periodFlags
	var supplier, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a period report, or a supplier statement, to an .xlsx workbook",
		Example: `  decentfoods export --period month --out march.xlsx
  decentfoods export --supplier "Acme Foods" --out acme.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header := rt.app.ExportHeader()

			var name string
			var build func() (*excelize.File, error)
			if supplier != "" {
				st, err := rt.app.Ledger.Statement(cmd.Context(), supplier)
				if err != nil {
					return err
				}
				name = "statement_" + strings.ReplaceAll(st.Supplier, " ", "_") + ".xlsx"
				build = func() (*excelize.File, error) { return export.StatementWorkbook(st, header) }
			} else {
				report, err := flags.report(cmd, rt)
				if err != nil {
					return err
				}
				name = fmt.Sprintf("summary_%s_%s.xlsx",
					report.Period.Start.Format(models.DateLayout), report.Period.End.Format(models.DateLayout))
				build = func() (*excelize.File, error) { return export.PeriodWorkbook(report, header) }
			}
			if out == "" {
				out = name
			}

			f, err := build()
			if err != nil {
				return err
			}
			file, err := os.Create(out)
			if err != nil {
				_ = f.Close()
				return fmt.Errorf("create %s: %w", out, err)
			}
			defer file.Close()
			if err := export.Write(file, f); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&supplier, "supplier", "", "Export this supplier's statement instead of a period report")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: derived from the report)")
	return cmd
}
