package assumption

import (
	"sync/atomic"

	"dcf_engine/pkg/models"
)

// Canonical defaults representative of a mature large-cap company. Every
// fallback path (resolver failure, tier "standard", tier "synthetic") reads
// these — they exist exactly once so the copies cannot drift.
const (
	DefaultRevenueGrowth       = 0.085
	DefaultTerminalGrowth      = 0.03
	DefaultEbitdaMargin        = 0.3127
	DefaultEbitMargin          = 0.25
	DefaultCapexRatio          = 0.045
	DefaultDepreciationRatio   = 0.05
	DefaultOperatingCFRatio    = 0.27
	DefaultSgaRatio            = 0.20
	DefaultCashRatio           = 0.08
	DefaultReceivablesRatio    = 0.10
	DefaultInventoryRatio      = 0.05
	DefaultPayablesRatio       = 0.08
	DefaultTaxRate             = 0.21
	DefaultBeta                = 1.25
	DefaultRiskFreeRate        = 0.036
	DefaultMarketRiskPremium   = 0.047 // with default beta, CAPM cost of equity ~9.5%
	DefaultCostOfDebt          = 0.036
	DefaultWACC                = 0.095
	DefaultEquityValuePerShare = 100.0
)

// baselineRiskFree holds the process-wide risk-free rate used by Defaults.
// It starts at the hard-coded constant and may be refreshed once at startup
// from a live treasury quote (pkg/core/macro). Kept in an atomic so
// concurrent resolvers read a consistent value.
var baselineRiskFree atomic.Value

func init() {
	baselineRiskFree.Store(DefaultRiskFreeRate)
}

// SetBaselineRiskFreeRate overrides the risk-free rate used in default sets.
// Out-of-band values are ignored so a bad scrape cannot poison defaults.
func SetBaselineRiskFreeRate(r float64) {
	if r > 0.001 && r < 0.20 {
		baselineRiskFree.Store(r)
	}
}

// BaselineRiskFreeRate returns the current default risk-free rate.
func BaselineRiskFreeRate() float64 {
	return baselineRiskFree.Load().(float64)
}

// Defaults builds the built-in fallback Set, deriving what it can from the
// snapshot (EBIT margin from reported operating income, beta from the
// provider) and falling back to the canonical constants for the rest.
func Defaults(snap models.FinancialSnapshot) Set {
	s := Set{
		RevenueGrowthRate:         DefaultRevenueGrowth,
		TerminalGrowthRate:        DefaultTerminalGrowth,
		EbitdaMargin:              DefaultEbitdaMargin,
		EbitMargin:                DefaultEbitMargin,
		CapitalExpenditureRatio:   DefaultCapexRatio,
		DepreciationRatio:         DefaultDepreciationRatio,
		OperatingCashFlowRatio:    DefaultOperatingCFRatio,
		SgaRatio:                  DefaultSgaRatio,
		CashAndSTInvestmentsRatio: DefaultCashRatio,
		ReceivablesRatio:          DefaultReceivablesRatio,
		InventoryRatio:            DefaultInventoryRatio,
		PayablesRatio:             DefaultPayablesRatio,
		TaxRate:                   DefaultTaxRate,
		Beta:                      DefaultBeta,
		RiskFreeRate:              BaselineRiskFreeRate(),
		MarketRiskPremium:         DefaultMarketRiskPremium,
		CostOfDebt:                DefaultCostOfDebt,
	}

	if snap.Revenue > 0 && snap.OperatingIncome != 0 {
		margin := snap.OperatingIncome / snap.Revenue
		if InBand(margin) {
			s.EbitMargin = margin
			// EBITDA tracks EBIT plus the depreciation add-back.
			if InBand(margin + s.DepreciationRatio) {
				s.EbitdaMargin = margin + s.DepreciationRatio
			}
		}
	}
	if snap.Beta > 0 && InBand(snap.Beta) {
		s.Beta = snap.Beta
	}
	if snap.Revenue > 0 && snap.CashAndEquivalents > 0 {
		ratio := snap.CashAndEquivalents / snap.Revenue
		if InBand(ratio) {
			s.CashAndSTInvestmentsRatio = ratio
		}
	}
	return s
}
