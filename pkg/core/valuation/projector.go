package valuation

import (
	"fmt"
	"math"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/models"
)

// DefaultHorizonYears is the standard projection horizon.
const DefaultHorizonYears = 5

// Projection is the ordered five-year forecast together with the growth
// schedule that produced it, so callers can see the tapering policy that
// was applied instead of guessing.
type Projection struct {
	Years          []models.YearlyProjection `json:"years"`
	GrowthSchedule []float64                 `json:"growthSchedule"`
}

// Project builds the yearly forecast from percentage-of-revenue assumptions.
//
// Revenue growth tapers linearly from RevenueGrowthRate in year 1 to
// TerminalGrowthRate in the final year — constant high growth across the
// whole horizon overstates every downstream number. Missing or non-finite
// ratios are substituted with the canonical defaults rather than letting a
// NaN propagate into the discounting stage.
func Project(a assumption.Set, snap models.FinancialSnapshot, horizonYears int) Projection {
	if horizonYears <= 0 {
		horizonYears = DefaultHorizonYears
	}

	g1 := ratioOr(a.RevenueGrowthRate, assumption.DefaultRevenueGrowth)
	gT := ratioOr(a.TerminalGrowthRate, assumption.DefaultTerminalGrowth)
	ebitdaMargin := ratioOr(a.EbitdaMargin, assumption.DefaultEbitdaMargin)
	ebitMargin := ratioOr(a.EbitMargin, assumption.DefaultEbitMargin)
	capexRatio := ratioOr(a.CapitalExpenditureRatio, assumption.DefaultCapexRatio)
	ocfRatio := ratioOr(a.OperatingCashFlowRatio, assumption.DefaultOperatingCFRatio)

	schedule := make([]float64, horizonYears)
	for i := 0; i < horizonYears; i++ {
		if horizonYears == 1 {
			schedule[i] = g1
			continue
		}
		t := float64(i) / float64(horizonYears-1)
		schedule[i] = g1 + (gT-g1)*t
	}

	years := make([]models.YearlyProjection, 0, horizonYears)
	revenue := snap.Revenue
	for i := 0; i < horizonYears; i++ {
		revenue *= 1 + schedule[i]

		ocf := revenue * ocfRatio
		capex := -revenue * capexRatio
		years = append(years, models.YearlyProjection{
			Year:               fmt.Sprintf("Year %d", i+1),
			Revenue:            revenue,
			Ebit:               revenue * ebitMargin,
			Ebitda:             revenue * ebitdaMargin,
			OperatingCashFlow:  ocf,
			CapitalExpenditure: capex,
			FreeCashFlow:       ocf + capex,
		})
	}

	return Projection{Years: years, GrowthSchedule: schedule}
}

// ratioOr substitutes the fallback when a ratio is absent (zero), non-finite,
// or outside the tolerance band.
func ratioOr(v, fallback float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) || !assumption.InBand(v) {
		return fallback
	}
	return v
}
