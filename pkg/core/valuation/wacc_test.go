package valuation

import (
	"math"
	"testing"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/models"
)

func largeCap() (assumption.Set, models.FinancialSnapshot) {
	a := assumption.Set{
		RevenueGrowthRate:       0.085,
		TerminalGrowthRate:      0.03,
		EbitdaMargin:            0.3127,
		EbitMargin:              0.25,
		OperatingCashFlowRatio:  0.27,
		CapitalExpenditureRatio: 0.045,
		TaxRate:                 0.21,
		Beta:                    1.2,
		RiskFreeRate:            0.036,
		MarketRiskPremium:       0.047,
		CostOfDebt:              0.036,
	}
	snap := models.FinancialSnapshot{
		Symbol:             "MEGA",
		Revenue:            100e9,
		OperatingIncome:    25e9,
		NetIncome:          20e9,
		SharesOutstanding:  10e9,
		TotalDebt:          50e9,
		CashAndEquivalents: 20e9,
		Beta:               1.2,
		CurrentPrice:       15, // market equity = 150e9
	}
	return a, snap
}

func TestComputeWACC_LargeCap(t *testing.T) {
	a, snap := largeCap()
	res := ComputeWACC(a, snap)

	if res.Clamped {
		t.Fatal("expected no clamping for a normal capital structure")
	}
	if math.Abs(res.EquityWeight-0.75) > 1e-9 {
		t.Errorf("expected equity weight 0.75, got %v", res.EquityWeight)
	}
	if res.WACC < 0.07 || res.WACC > 0.11 {
		t.Errorf("expected wacc near 7-11%%, got %v", res.WACC)
	}

	// CAPM: 0.036 + 1.2*0.047
	if math.Abs(res.CostOfEquity-0.0924) > 1e-9 {
		t.Errorf("expected cost of equity 0.0924, got %v", res.CostOfEquity)
	}
	// After-tax debt: 0.036 * 0.79
	if math.Abs(res.AfterTaxCostOfDebt-0.02844) > 1e-9 {
		t.Errorf("expected after-tax cost of debt 0.02844, got %v", res.AfterTaxCostOfDebt)
	}
}

func TestComputeWACC_Bounds(t *testing.T) {
	// Property: the published rate always sits inside [1%, 30%], whatever
	// the inputs.
	cases := []assumption.Set{
		{Beta: 8, RiskFreeRate: 0.1, MarketRiskPremium: 0.2, TaxRate: 0.21, CostOfDebt: 0.3},
		{Beta: 0.01, RiskFreeRate: 0.0001, MarketRiskPremium: 0.0001, TaxRate: 0.21, CostOfDebt: 0.0001},
		{Beta: 1.2, RiskFreeRate: math.NaN(), MarketRiskPremium: 0.05, TaxRate: 0.21, CostOfDebt: 0.04},
	}
	_, snap := largeCap()
	for i, a := range cases {
		res := ComputeWACC(a, snap)
		if res.WACC < MinWACC || res.WACC > MaxWACC {
			t.Errorf("case %d: wacc %v outside sane band", i, res.WACC)
		}
		if !res.Clamped {
			t.Errorf("case %d: expected clamp flag for pathological inputs", i)
		}
		if res.WACC != assumption.DefaultWACC {
			t.Errorf("case %d: expected default substitution, got %v", i, res.WACC)
		}
	}
}

func TestComputeWACC_AllDebt(t *testing.T) {
	a, snap := largeCap()
	snap.SharesOutstanding = 0
	snap.CurrentPrice = 0

	res := ComputeWACC(a, snap)
	if res.DebtWeight != 1 || res.EquityWeight != 0 {
		t.Errorf("expected fully levered weights, got wd=%v we=%v", res.DebtWeight, res.EquityWeight)
	}
	if math.Abs(res.WACC-res.AfterTaxCostOfDebt) > 1e-12 {
		t.Errorf("all-debt wacc should equal the after-tax cost of debt, got %v vs %v",
			res.WACC, res.AfterTaxCostOfDebt)
	}
	if res.Clamped {
		t.Error("after-tax cost of debt sits inside the sane band, no clamp expected")
	}
}

func TestComputeWACC_NoCapital(t *testing.T) {
	a, snap := largeCap()
	snap.SharesOutstanding = 0
	snap.CurrentPrice = 0
	snap.TotalDebt = 0

	res := ComputeWACC(a, snap)
	if res.EquityWeight != 1 || res.DebtWeight != 0 {
		t.Errorf("expected unlevered treatment, got we=%v wd=%v", res.EquityWeight, res.DebtWeight)
	}
	if math.Abs(res.WACC-res.CostOfEquity) > 1e-12 {
		t.Errorf("unlevered wacc should equal cost of equity, got %v vs %v", res.WACC, res.CostOfEquity)
	}
}

func TestComputeWACC_Deterministic(t *testing.T) {
	a, snap := largeCap()
	first := ComputeWACC(a, snap)
	second := ComputeWACC(a, snap)
	if first != second {
		t.Errorf("identical inputs produced different outputs: %+v vs %+v", first, second)
	}
}
