package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/financial-statements-engine/internal/ledger"
	"github.com/sheikh-saqib/financial-statements-engine/internal/models"
	"github.com/sheikh-saqib/financial-statements-engine/internal/statement"
	"github.com/sheikh-saqib/financial-statements-engine/internal/storage/file"
)

var flags struct {
	fixture   string
	statement string
	scope     string
	from      string
	to        string
	month     string
	series    string
	base      string
	expand    bool
	format    string
	noFold    bool
	budgetTag string
}

var rootCmd = &cobra.Command{
	Use:   "statement",
	Short: "Render financial statements from a ledger fixture",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a DRE/DFC statement",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, q, err := setup()
		if err != nil {
			return err
		}
		report, err := svc.BuildStatement(cmd.Context(), q)
		if err != nil {
			return err
		}
		if flags.format == "table" {
			return printTable(cmd.OutOrStdout(), report)
		}
		return printJSON(cmd.OutOrStdout(), report)
	},
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "List ledger classifications that do not reach the statement",
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, q, err := setup()
		if err != nil {
			return err
		}
		d, err := svc.Diagnose(cmd.Context(), q)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), d)
	},
}

func setup() (*ledger.Ledger, models.ReportQuery, error) {
	var q models.ReportQuery
	if flags.fixture == "" {
		return nil, q, fmt.Errorf("--fixture is required")
	}
	store, err := file.Open(flags.fixture)
	if err != nil {
		return nil, q, err
	}

	if q.Statement, err = models.ParseStatementType(flags.statement); err != nil {
		return nil, q, err
	}
	q.Scope = flags.scope
	if q.Scope == "" {
		q.Scope = store.Scope
	}
	if q.Series, err = models.ParseSeriesSelection(flags.series); err != nil {
		return nil, q, err
	}
	q.Expand = flags.expand
	q.VerticalBase = flags.base

	switch {
	case flags.month != "":
		if flags.from != "" || flags.to != "" {
			return nil, q, fmt.Errorf("--mes cannot be combined with --inicio/--fim")
		}
		start, end, err := models.ParseMonth(flags.month)
		if err != nil {
			return nil, q, err
		}
		q.From, q.To = &start, &end
	default:
		if q.From, err = parseDate(flags.from); err != nil {
			return nil, q, fmt.Errorf("--inicio: %w", err)
		}
		if q.To, err = parseDate(flags.to); err != nil {
			return nil, q, fmt.Errorf("--fim: %w", err)
		}
	}

	engine := &statement.Engine{BudgetOrigin: flags.budgetTag, NormalizeFallback: !flags.noFold}
	svc := ledger.NewLedger(ledger.Stores{Entries: store, Structures: store, Mappings: store}, engine)
	return svc, q, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable writes one row per line with its monthly values and total.
func printTable(w io.Writer, report *models.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\ttotal\t\n", "linha", strings.Join(report.Months, "\t"))

	var walk func(lines []*models.ReportLine, depth int)
	walk = func(lines []*models.ReportLine, depth int) {
		for _, l := range lines {
			cells := make([]string, 0, len(report.Months)+1)
			values, total := l.MonthlyValues, l.Value
			if values == nil {
				values, total = l.MonthlyBudget, l.BudgetTotal
			}
			for _, m := range report.Months {
				cells = append(cells, values[m].StringFixed(2))
			}
			if total != nil {
				cells = append(cells, total.StringFixed(2))
			}
			fmt.Fprintf(tw, "%s%s\t%s\t\n", strings.Repeat("  ", depth), l.Name, strings.Join(cells, "\t"))
			walk(l.Children, depth+1)
			walk(l.Classifications, depth+1)
			walk(l.Entries, depth+1)
		}
	}
	walk(report.Lines, 0)
	return tw.Flush()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.fixture, "fixture", "f", "", "YAML fixture with structure, mappings and entries")
	rootCmd.PersistentFlags().StringVarP(&flags.statement, "tipo", "t", "DRE", "Statement type (DRE or DFC)")
	rootCmd.PersistentFlags().StringVarP(&flags.scope, "empresa", "e", "", "Scope (default is the fixture scope)")
	rootCmd.PersistentFlags().StringVar(&flags.from, "inicio", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flags.to, "fim", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flags.month, "mes", "", "Single month (YYYY-MM)")
	rootCmd.PersistentFlags().StringVar(&flags.budgetTag, "origem-orcamento", models.BudgetOrigin, "Origin tag of budget entries")
	rootCmd.PersistentFlags().BoolVar(&flags.noFold, "sem-normalizacao", false, "Disable the normalized account name fallback")

	renderCmd.Flags().StringVarP(&flags.series, "serie", "s", "ambos", "Series: realizado, orcado or ambos")
	renderCmd.Flags().StringVar(&flags.base, "base", "", "Node id used as the vertical analysis base")
	renderCmd.Flags().BoolVarP(&flags.expand, "detalhar", "d", false, "Expand leaf lines into classifications and entries")
	renderCmd.Flags().StringVar(&flags.format, "formato", "json", "Output format: json or table")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(diagnoseCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
