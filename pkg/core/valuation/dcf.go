package valuation

import (
	"math"

	"dcf_engine/pkg/models"
)

// minTerminalSpread is the floor enforced between the discount rate and the
// terminal growth rate. When wacc <= g the Gordon Growth model is undefined;
// instead of failing, g is pulled down to wacc - minTerminalSpread and the
// result is flagged as repaired.
const minTerminalSpread = 0.01

// Calculate discounts the projected free cash flows and a Gordon Growth
// terminal value into enterprise, equity and per-share values. TierUsed is
// left empty; the orchestrator stamps it.
func Calculate(proj Projection, wacc, terminalGrowth float64, snap models.FinancialSnapshot) models.DCFResult {
	res := models.DCFResult{
		Symbol:             snap.Symbol,
		WACC:               wacc,
		LongTermGrowthRate: terminalGrowth,
		Revenue:            snap.Revenue,
		YearlyProjections:  proj.Years,
	}

	effectiveGrowth, repaired := safeTerminalGrowth(wacc, terminalGrowth)
	res.LongTermGrowthRate = effectiveGrowth
	res.WasRepaired = repaired

	var pvSum, lastFCF float64
	for i, year := range proj.Years {
		pvSum += year.FreeCashFlow / math.Pow(1+wacc, float64(i+1))
		lastFCF = year.FreeCashFlow
	}
	res.SumOfDiscountedFreeCashFlows = pvSum
	res.FreeCashFlow = lastFCF

	horizon := len(proj.Years)
	res.TerminalValue = lastFCF * (1 + effectiveGrowth) / (wacc - effectiveGrowth)
	res.PresentValueOfTerminalValue = res.TerminalValue / math.Pow(1+wacc, float64(horizon))

	res.EnterpriseValue = pvSum + res.PresentValueOfTerminalValue
	res.NetDebt = snap.TotalDebt - snap.CashAndEquivalents
	res.EquityValue = res.EnterpriseValue - res.NetDebt

	if snap.SharesOutstanding > 0 {
		res.EquityValuePerShare = res.EquityValue / snap.SharesOutstanding
	} else {
		// No share count: report the market price rather than divide by
		// zero, and mark the result so the caller knows we had no opinion.
		res.EquityValuePerShare = snap.CurrentPrice
		res.WasRepaired = true
	}
	return res
}

// safeTerminalGrowth enforces wacc > g, returning the effective growth rate
// and whether a substitution was needed.
func safeTerminalGrowth(wacc, g float64) (float64, bool) {
	if math.IsNaN(g) || math.IsInf(g, 0) || wacc-g < minTerminalSpread {
		return wacc - minTerminalSpread, true
	}
	return g, false
}
