package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/odyssey-erp/costbook/internal/costing"
)

// Analyzer produces a recipe cost analysis.
type Analyzer interface {
	AnalyzeRecipe(ctx context.Context, id string) (costing.Analysis, error)
}

// ReportOptions defines the flags of the report command.
type ReportOptions struct {
	RecipeID   string
	JSONOutput bool
	Lang       string
	Stdout     io.Writer
	Stderr     io.Writer
}

// ReportCLI prints recipe cost breakdowns.
type ReportCLI struct {
	analyzer Analyzer
}

// NewReportCLI constructs the report command.
func NewReportCLI(analyzer Analyzer) *ReportCLI {
	return &ReportCLI{analyzer: analyzer}
}

// Run executes the report and returns the process exit code. Recipes whose
// locked prices drifted exit with 10 so scripts can flag them.
func (c *ReportCLI) Run(ctx context.Context, opts ReportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.RecipeID == "" {
		_, _ = fmt.Fprintln(opts.Stderr, "report: recipe id is required")
		return 1
	}
	tag, err := language.Parse(opts.Lang)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: invalid language %q\n", opts.Lang)
		return 1
	}
	analysis, err := c.analyzer.AnalyzeRecipe(ctx, opts.RecipeID)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
		return 1
	}
	if opts.JSONOutput {
		enc := json.NewEncoder(opts.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: encode json: %v\n", err)
			return 1
		}
	} else {
		renderReport(message.NewPrinter(tag), opts.Stdout, analysis)
	}
	if analysis.HasPriceChanges {
		return 10
	}
	return 0
}

func renderReport(p *message.Printer, out io.Writer, a costing.Analysis) {
	_, _ = p.Fprintf(out, "Cost report for %s (%s)\n\n", a.RecipeName, a.RecipeID)
	_, _ = p.Fprintf(out, "%-24s %14s %14s %8s\n", "Ingredient", "Quantity", "Cost+Tax", "Share")
	for _, line := range a.Breakdown {
		marker := ""
		if line.Locked {
			marker = " *"
		}
		_, _ = p.Fprintf(out, "%-24s %14.3f %14.2f %7.1f%%%s\n",
			truncate(line.Name, 24),
			f(line.CanonicalQuantity),
			f(line.CostWithTax),
			f(line.Percentage),
			marker,
		)
	}
	t := a.Totals
	_, _ = p.Fprintf(out, "\nTotal cost        %14.2f\n", f(t.TotalCost))
	_, _ = p.Fprintf(out, "Total with tax    %14.2f\n", f(t.TotalCostWithTax))
	_, _ = p.Fprintf(out, "Total weight (kg) %14.3f\n", f(t.TotalWeight))
	_, _ = p.Fprintf(out, "Cost per kg       %14.2f\n", f(t.CostPerKgWithTax))
	if len(a.TopCostDrivers) > 0 {
		_, _ = p.Fprintf(out, "Top cost drivers: %v\n", a.TopCostDrivers)
	}
	if a.HasPriceChanges {
		_, _ = p.Fprintln(out, "Locked prices differ from current catalog prices. Relock to refresh.")
	}
	for _, w := range a.Warnings {
		_, _ = p.Fprintf(out, "warning: %s\n", w)
	}
}

func f(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
