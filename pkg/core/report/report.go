// Package report renders a finished valuation into a markdown analyst
// report, optionally with model-written commentary, and converts it to HTML
// for the API layer.
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"dcf_engine/pkg/core/llm"
	"dcf_engine/pkg/core/utils"
	"dcf_engine/pkg/models"
)

// Service generates reports. Provider is optional; without one the report
// is purely numeric.
type Service struct {
	provider llm.Provider
}

// NewService builds a report service. provider may be nil.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider}
}

// Markdown renders the result (and grid, when present) as a markdown
// document. Degraded results carry an explicit estimated-values notice
// derived from TierUsed and WasRepaired.
func (s *Service) Markdown(ctx context.Context, res models.DCFResult, grid *models.SensitivityGrid) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# DCF Valuation — %s\n\n", res.Symbol)
	if res.TierUsed != models.TierCustom || res.WasRepaired {
		fmt.Fprintf(&b, "> **Note:** estimated values (tier: %s%s).\n\n",
			res.TierUsed, repairSuffix(res.WasRepaired))
	}

	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Intrinsic value per share | %.2f |\n", res.EquityValuePerShare)
	fmt.Fprintf(&b, "| Equity value | %.0f |\n", res.EquityValue)
	fmt.Fprintf(&b, "| Enterprise value | %.0f |\n", res.EnterpriseValue)
	fmt.Fprintf(&b, "| Net debt | %.0f |\n", res.NetDebt)
	fmt.Fprintf(&b, "| PV of forecast FCF | %.0f |\n", res.SumOfDiscountedFreeCashFlows)
	fmt.Fprintf(&b, "| PV of terminal value | %.0f |\n", res.PresentValueOfTerminalValue)
	fmt.Fprintf(&b, "| WACC | %.2f%% |\n", res.WACC*100)
	fmt.Fprintf(&b, "| Terminal growth | %.2f%% |\n\n", res.LongTermGrowthRate*100)

	if len(res.YearlyProjections) > 0 {
		b.WriteString("## Projections\n\n| Year | Revenue | EBITDA | EBIT | OCF | CapEx | FCF |\n|---|---|---|---|---|---|---|\n")
		for _, y := range res.YearlyProjections {
			fmt.Fprintf(&b, "| %s | %.0f | %.0f | %.0f | %.0f | %.0f | %.0f |\n",
				y.Year, y.Revenue, y.Ebitda, y.Ebit, y.OperatingCashFlow, y.CapitalExpenditure, y.FreeCashFlow)
		}
		b.WriteString("\n")
	}

	if grid != nil && len(grid.Cells) > 0 {
		b.WriteString("## Sensitivity (growth × discount rate)\n\n")
		fmt.Fprintf(&b, "| g \\ r | %s |\n", strings.Join(grid.ColumnLabels, " | "))
		b.WriteString("|" + strings.Repeat("---|", len(grid.ColumnLabels)+1) + "\n")
		for i, row := range grid.Cells {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = fmt.Sprintf("%.2f", v)
			}
			fmt.Fprintf(&b, "| %s | %s |\n", grid.RowLabels[i], strings.Join(cells, " | "))
		}
		b.WriteString("\n")
	}

	if commentary := s.commentary(ctx, res); commentary != "" {
		b.WriteString("## Commentary\n\n")
		b.WriteString(commentary)
		b.WriteString("\n")
	}

	return b.String()
}

// HTML converts a markdown report to HTML.
func HTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// commentary asks the model for two short paragraphs on the result. Any
// failure just yields an empty section.
func (s *Service) commentary(ctx context.Context, res models.DCFResult) string {
	if s.provider == nil {
		return ""
	}
	prompt := fmt.Sprintf(
		"Write two short paragraphs interpreting this DCF result for %s: "+
			"intrinsic value %.2f per share, WACC %.2f%%, terminal growth %.2f%%, "+
			"enterprise value %.0f. Plain markdown, no headings.",
		res.Symbol, res.EquityValuePerShare, res.WACC*100, res.LongTermGrowthRate*100, res.EnterpriseValue)

	reply, err := s.provider.GenerateResponse(ctx, prompt,
		"You are an equity analyst. Be factual and concise.", nil)
	if err != nil {
		fmt.Printf("[REPORT] Commentary generation failed for %s: %v\n", res.Symbol, err)
		return ""
	}
	return utils.StripCodeFence(reply)
}

func repairSuffix(repaired bool) string {
	if repaired {
		return ", repaired"
	}
	return ""
}
