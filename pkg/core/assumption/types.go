// Package assumption implements the AssumptionSet model that drives every
// DCF calculation, plus the resolver that produces one from an AI suggestion,
// the cache, or built-in defaults.
package assumption

import (
	"math"
	"time"
)

// Set is a complete, internally consistent collection of DCF inputs.
// All ratios are decimal fractions of revenue unless noted. A Set is a value
// type: it is passed by value and never mutated in place — parameter changes
// produce a new Set.
type Set struct {
	// Growth
	RevenueGrowthRate  float64 `json:"revenueGrowthRate"`
	TerminalGrowthRate float64 `json:"terminalGrowthRate"`

	// Margins / ratios
	EbitdaMargin              float64 `json:"ebitdaMargin"`
	EbitMargin                float64 `json:"ebitMargin"`
	CapitalExpenditureRatio   float64 `json:"capitalExpenditureRatio"`
	DepreciationRatio         float64 `json:"depreciationRatio"`
	OperatingCashFlowRatio    float64 `json:"operatingCashFlowRatio"`
	SgaRatio                  float64 `json:"sgaRatio"`
	CashAndSTInvestmentsRatio float64 `json:"cashAndSTInvestmentsRatio"`
	ReceivablesRatio          float64 `json:"receivablesRatio"`
	InventoryRatio            float64 `json:"inventoryRatio"`
	PayablesRatio             float64 `json:"payablesRatio"`

	// Tax / capital
	TaxRate           float64 `json:"taxRate"`
	Beta              float64 `json:"beta"`
	RiskFreeRate      float64 `json:"riskFreeRate"`
	MarketRiskPremium float64 `json:"marketRiskPremium"`
	CostOfDebt        float64 `json:"costOfDebt"`
}

// RatioBand is the wide tolerance applied to every rate or share-of-revenue
// field. Pathological companies can legitimately sit near the edges; values
// outside are treated as suspicious and rejected or repaired.
const (
	RatioBandMin = -1.0
	RatioBandMax = 5.0
)

// InBand reports whether a single ratio is finite and inside the tolerance
// band.
func InBand(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= RatioBandMin && v <= RatioBandMax
}

// Sane reports whether every field of the set is finite and in band, and the
// structural constraints hold (taxRate in [0,1], beta > 0, terminal growth
// below the cost of equity implied by CAPM).
func (s Set) Sane() bool {
	fields := []float64{
		s.RevenueGrowthRate, s.TerminalGrowthRate,
		s.EbitdaMargin, s.EbitMargin, s.CapitalExpenditureRatio,
		s.DepreciationRatio, s.OperatingCashFlowRatio, s.SgaRatio,
		s.CashAndSTInvestmentsRatio, s.ReceivablesRatio, s.InventoryRatio,
		s.PayablesRatio, s.TaxRate, s.Beta, s.RiskFreeRate,
		s.MarketRiskPremium, s.CostOfDebt,
	}
	for _, v := range fields {
		if !InBand(v) {
			return false
		}
	}
	if s.TaxRate < 0 || s.TaxRate > 1 {
		return false
	}
	if s.Beta <= 0 {
		return false
	}
	// Gordon Growth is undefined when terminal growth meets the discount
	// rate; CAPM cost of equity is the cheapest upper-bound proxy here.
	costOfEquity := s.RiskFreeRate + s.Beta*s.MarketRiskPremium
	if s.TerminalGrowthRate >= costOfEquity {
		return false
	}
	return true
}

// CacheEntry wraps an AI-generated Set with its freshness window.
// An entry past ExpiresAt must never be served; it is a cache miss.
type CacheEntry struct {
	Symbol      string    `json:"symbol"`
	Assumptions Set       `json:"assumptions"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Fresh reports whether the entry is still servable at the given instant.
func (e *CacheEntry) Fresh(now time.Time) bool {
	return e != nil && now.Before(e.ExpiresAt)
}
