// Package valuation implements the pure numerical core of the DCF engine:
// cost of capital, cash-flow projection, discounting, the sensitivity grid,
// and result validation. Every function here is a pure function of its
// inputs and safe for concurrent use.
package valuation

import (
	"math"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/models"
)

// WACC band considered sane for a going concern. A computed rate outside
// this band is replaced with the default and flagged.
const (
	MinWACC = 0.01
	MaxWACC = 0.30
)

// WACCResult holds the cost-of-capital decomposition.
type WACCResult struct {
	WACC               float64 `json:"wacc"`
	CostOfEquity       float64 `json:"costOfEquity"`
	AfterTaxCostOfDebt float64 `json:"afterTaxCostOfDebt"`
	DebtWeight         float64 `json:"debtWeight"`
	EquityWeight       float64 `json:"equityWeight"`
	// Clamped is set when the raw rate fell outside [MinWACC, MaxWACC]
	// and the default was substituted. Feeds the validator's repair flag.
	Clamped bool `json:"clamped"`
}

// ComputeWACC derives the discount rate from capital structure and market
// inputs.
//
//	Ke   = Rf + beta * MRP            (CAPM)
//	Kd   = costOfDebt * (1 - t)       (after-tax)
//	WACC = Wd*Kd + We*Ke
//
// Equity is marked to market (shares * price). Weights come from total
// capital, so an all-debt balance sheet weighs the debt side fully; only a
// company with no measurable capital at all is treated as unlevered.
func ComputeWACC(a assumption.Set, snap models.FinancialSnapshot) WACCResult {
	ke := a.RiskFreeRate + a.Beta*a.MarketRiskPremium
	kd := a.CostOfDebt * (1 - a.TaxRate)

	totalEquity := snap.SharesOutstanding * snap.CurrentPrice
	totalCapital := snap.TotalDebt + totalEquity

	wd, we := 0.0, 1.0
	if totalCapital > 0 {
		wd = snap.TotalDebt / totalCapital
		we = 1 - wd
	}

	wacc := wd*kd + we*ke

	res := WACCResult{
		WACC:               wacc,
		CostOfEquity:       ke,
		AfterTaxCostOfDebt: kd,
		DebtWeight:         wd,
		EquityWeight:       we,
	}
	if math.IsNaN(wacc) || math.IsInf(wacc, 0) || wacc < MinWACC || wacc > MaxWACC {
		res.WACC = assumption.DefaultWACC
		res.Clamped = true
	}
	return res
}
