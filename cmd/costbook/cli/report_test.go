package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/costbook/internal/costing"
)

type stubAnalyzer struct {
	analysis costing.Analysis
	err      error
}

func (s stubAnalyzer) AnalyzeRecipe(context.Context, string) (costing.Analysis, error) {
	return s.analysis, s.err
}

func sampleAnalysis(drift bool) costing.Analysis {
	line := costing.BreakdownLine{
		IngredientCost: costing.IngredientCost{
			IngredientID:      "i1",
			Name:              "Flour",
			CanonicalQuantity: decimal.RequireFromString("1250"),
			CostWithTax:       decimal.RequireFromString("2500.5"),
		},
		Percentage: decimal.NewFromInt(100),
	}
	return costing.Analysis{
		RecipeID:   "bread",
		RecipeName: "Bread",
		Totals: costing.Totals{
			TotalCost:        decimal.NewFromInt(2400),
			TotalCostWithTax: decimal.RequireFromString("2500.5"),
			TotalWeight:      decimal.RequireFromString("1250"),
			CostPerKgWithTax: decimal.NewFromInt(2),
		},
		Breakdown:       []costing.BreakdownLine{line},
		TopCostDrivers:  []string{"Flour"},
		HasPriceChanges: drift,
	}
}

func TestReportHumanOutputUsesLocale(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := NewReportCLI(stubAnalyzer{analysis: sampleAnalysis(false)}).Run(context.Background(), ReportOptions{
		RecipeID: "bread",
		Lang:     "en",
		Stdout:   &stdout,
		Stderr:   &stderr,
	})
	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	require.Contains(t, out, "Cost report for Bread (bread)")
	require.Contains(t, out, "2,500.50")
	require.Contains(t, out, "1,250.000")
}

func TestReportJSONAndDriftExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := NewReportCLI(stubAnalyzer{analysis: sampleAnalysis(true)}).Run(context.Background(), ReportOptions{
		RecipeID:   "bread",
		JSONOutput: true,
		Lang:       "en",
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	require.Equal(t, 10, code)
	var decoded costing.Analysis
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &decoded))
	require.True(t, decoded.HasPriceChanges)
	require.Equal(t, "bread", decoded.RecipeID)
}

func TestReportErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cli := NewReportCLI(stubAnalyzer{err: costing.ErrRecipeNotFound})

	require.Equal(t, 1, cli.Run(context.Background(), ReportOptions{Stdout: &stdout, Stderr: &stderr}))
	require.Contains(t, stderr.String(), "recipe id is required")

	stderr.Reset()
	require.Equal(t, 1, cli.Run(context.Background(), ReportOptions{RecipeID: "x", Lang: "en", Stdout: &stdout, Stderr: &stderr}))
	require.Contains(t, stderr.String(), "report:")

	stderr.Reset()
	require.Equal(t, 1, cli.Run(context.Background(), ReportOptions{RecipeID: "x", Lang: "!!", Stdout: &stdout, Stderr: &stderr}))
	require.Contains(t, stderr.String(), "invalid language")
}

func TestJobsTriggerRejectsUnknownTask(t *testing.T) {
	jobsCLI, err := NewJobsCLI("127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = jobsCLI.Close() }()

	_, err = jobsCLI.Trigger(context.Background(), "mail:send")
	require.ErrorContains(t, err, "unsupported job")

	var stdout, stderr bytes.Buffer
	require.Equal(t, 2, jobsCLI.Run(context.Background(), []string{"bogus"}, &stdout, &stderr))
}
