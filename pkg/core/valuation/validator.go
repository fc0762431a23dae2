package valuation

import (
	"math"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/models"
)

// maxPlausiblePerShare is the upper bound before a per-share value is
// considered garbage rather than a valuation.
const maxPlausiblePerShare = 1_000_000

// Validate clamps and repairs a result so nothing non-finite, negative, or
// absurd reaches the UI layer. TierUsed is always preserved; WasRepaired is
// set when any substitution occurred so a degraded result stays
// distinguishable from a clean one.
func Validate(res models.DCFResult, snap models.FinancialSnapshot) models.DCFResult {
	if bad := !isFinite(res.EquityValuePerShare) ||
		res.EquityValuePerShare <= 0 ||
		res.EquityValuePerShare > maxPlausiblePerShare; bad {
		if snap.CurrentPrice > 0 {
			res.EquityValuePerShare = snap.CurrentPrice
		} else {
			res.EquityValuePerShare = assumption.DefaultEquityValuePerShare
		}
		res.WasRepaired = true
	}

	for _, field := range []*float64{
		&res.WACC, &res.TaxRate, &res.LongTermGrowthRate,
		&res.Revenue, &res.FreeCashFlow, &res.TerminalValue,
		&res.PresentValueOfTerminalValue, &res.SumOfDiscountedFreeCashFlows,
	} {
		if !isFinite(*field) {
			*field = 0
			res.WasRepaired = true
		}
	}

	// The equity identity must survive repair: zero what is broken, then
	// re-derive equity from the surviving pieces.
	identityRepaired := false
	for _, field := range []*float64{&res.EnterpriseValue, &res.NetDebt, &res.EquityValue} {
		if !isFinite(*field) {
			*field = 0
			identityRepaired = true
			res.WasRepaired = true
		}
	}
	if identityRepaired {
		res.EquityValue = res.EnterpriseValue - res.NetDebt
	}

	// The projection slice is shared with the caller; repair a copy, never
	// the caller's backing array.
	res.YearlyProjections = append([]models.YearlyProjection(nil), res.YearlyProjections...)
	for i := range res.YearlyProjections {
		p := &res.YearlyProjections[i]
		for _, field := range []*float64{
			&p.Revenue, &p.Ebit, &p.Ebitda,
			&p.OperatingCashFlow, &p.CapitalExpenditure, &p.FreeCashFlow,
		} {
			if !isFinite(*field) {
				*field = 0
				res.WasRepaired = true
			}
		}
	}
	return res
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
