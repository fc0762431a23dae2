package engine

import (
	"context"
	"fmt"
	"math"
	"testing"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/models"
)

func snapshot() models.FinancialSnapshot {
	return models.FinancialSnapshot{
		Symbol:             "ACME",
		Revenue:            100e9,
		OperatingIncome:    25e9,
		NetIncome:          20e9,
		SharesOutstanding:  10e9,
		TotalDebt:          50e9,
		CashAndEquivalents: 20e9,
		Beta:               1.2,
		CurrentPrice:       48,
	}
}

// failingRemote simulates the remote calculation service being down.
type failingRemote struct {
	calls int
}

func (f *failingRemote) Calculate(ctx context.Context, symbol string, a assumption.Set, tier models.Tier) (models.DCFResult, error) {
	f.calls++
	return models.DCFResult{}, fmt.Errorf("connection refused")
}

func TestRun_LocalPipelineUsesCustomTier(t *testing.T) {
	orch := NewOrchestrator(assumption.NewResolver(nil, nil), nil)
	res := orch.Run(context.Background(), "ACME", snapshot(), Options{})

	if res.TierUsed != models.TierCustom {
		t.Errorf("healthy local pipeline should report tier custom, got %s", res.TierUsed)
	}
	if res.EquityValuePerShare <= 0 {
		t.Errorf("expected a positive valuation, got %v", res.EquityValuePerShare)
	}
	if len(res.YearlyProjections) != 5 {
		t.Errorf("expected 5 projected years, got %d", len(res.YearlyProjections))
	}
}

func TestRun_BadCustomAssumptionsFallToStandard(t *testing.T) {
	orch := NewOrchestrator(assumption.NewResolver(nil, nil), nil)
	garbage := assumption.Set{
		RevenueGrowthRate:  40, // far outside the tolerance band
		TerminalGrowthRate: 0.03,
		Beta:               1.1,
		TaxRate:            0.21,
		RiskFreeRate:       0.04,
		MarketRiskPremium:  0.05,
		CostOfDebt:         0.04,
	}

	res := orch.Run(context.Background(), "ACME", snapshot(), Options{Custom: &garbage})
	if res.TierUsed != models.TierStandard {
		t.Errorf("expected fallback to standard, got %s", res.TierUsed)
	}
}

func TestRun_RemoteDownEndsSynthetic(t *testing.T) {
	remote := &failingRemote{}
	orch := NewOrchestrator(assumption.NewResolver(nil, nil), remote)

	snap := snapshot()
	res := orch.Run(context.Background(), "ACME", snap, Options{})

	if res.TierUsed != models.TierSynthetic {
		t.Fatalf("expected synthetic tier after remote failures, got %s", res.TierUsed)
	}
	if remote.calls != 2 {
		t.Errorf("expected one attempt per live tier, got %d", remote.calls)
	}
	if floor := 0.75 * snap.CurrentPrice; res.EquityValuePerShare < floor {
		t.Errorf("synthetic estimate %v below price floor %v", res.EquityValuePerShare, floor)
	}
}

func TestRun_NeverFails(t *testing.T) {
	// Even an empty snapshot (no revenue, no shares) must come back as a
	// validated result.
	orch := NewOrchestrator(assumption.NewResolver(nil, nil), nil)
	res := orch.Run(context.Background(), "EMPTY", models.FinancialSnapshot{Symbol: "EMPTY"}, Options{})

	switch res.TierUsed {
	case models.TierCustom, models.TierStandard, models.TierSynthetic:
	default:
		t.Fatalf("tierUsed must always be set, got %q", res.TierUsed)
	}
	if math.IsNaN(res.EquityValuePerShare) || res.EquityValuePerShare <= 0 {
		t.Errorf("validated result must carry a usable per-share value, got %v", res.EquityValuePerShare)
	}
}

func TestSynthesize_EarningsMultiple(t *testing.T) {
	snap := snapshot()
	snap.CurrentPrice = 10 // floor far below the earnings-based estimate

	res := Synthesize("ACME", snap)
	// eps = 20e9 / 10e9 = 2; estimate = 2 * 20 = 40
	if math.Abs(res.EquityValuePerShare-40) > 1e-9 {
		t.Errorf("expected earnings-multiple estimate 40, got %v", res.EquityValuePerShare)
	}
	if res.TierUsed != models.TierSynthetic {
		t.Errorf("expected synthetic tier marker, got %s", res.TierUsed)
	}
	diff := res.EquityValue - (res.EnterpriseValue - res.NetDebt)
	if math.Abs(diff) > 1e-6 {
		t.Errorf("equity identity violated by %v", diff)
	}
}

func TestSynthesize_PriceFloor(t *testing.T) {
	snap := snapshot()
	snap.NetIncome = 0 // zero earnings: the floor must carry the estimate

	res := Synthesize("ACME", snap)
	if want := 0.75 * snap.CurrentPrice; res.EquityValuePerShare != want {
		t.Errorf("expected price floor %v, got %v", want, res.EquityValuePerShare)
	}
}
