// Package engine sequences DCF calculation attempts across three ordered
// tiers — custom, standard, synthetic — and guarantees a normalized result
// regardless of which tier succeeded.
package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/core/valuation"
	"dcf_engine/pkg/models"
)

// AttemptTimeout bounds each tier's remote call. Local computation is
// effectively instant and ignores it.
const AttemptTimeout = 30 * time.Second

// syntheticPEMultiple is the representative earnings multiple used by the
// last-resort tier, and syntheticPriceFloor bounds the estimate relative to
// the current market price.
const (
	syntheticPEMultiple = 20.0
	syntheticPriceFloor = 0.75
)

// RemoteCalculator is the optional delegate for tiers custom/standard when
// numeric computation runs remotely instead of locally. calcsvc.Client
// implements it.
type RemoteCalculator interface {
	Calculate(ctx context.Context, symbol string, a assumption.Set, tier models.Tier) (models.DCFResult, error)
}

// Options tune a single orchestrated run.
type Options struct {
	// Custom supplies caller-edited assumptions for tier "custom". When
	// nil the resolver provides them (AI suggestion, cache, or defaults).
	Custom *assumption.Set
	// ForceRefresh bypasses the assumption cache.
	ForceRefresh bool
}

// Orchestrator runs the tiered fallback strategy. Attempts are strictly
// sequential: later tiers exist only as fallbacks, and running them
// speculatively would waste remote calls in the common case.
type Orchestrator struct {
	resolver *assumption.Resolver
	remote   RemoteCalculator // nil means compute locally
}

// NewOrchestrator builds an orchestrator. remote may be nil.
func NewOrchestrator(resolver *assumption.Resolver, remote RemoteCalculator) *Orchestrator {
	return &Orchestrator{resolver: resolver, remote: remote}
}

// Run produces a validated DCFResult for the symbol. It never returns an
// error: tier "synthetic" has no external dependency and always yields a
// deterministic estimate. TierUsed reports which path actually succeeded.
func (o *Orchestrator) Run(ctx context.Context, symbol string, snap models.FinancialSnapshot, opts Options) models.DCFResult {
	runID := uuid.New().String()[:8]
	var failures []string

	// Tier 1: custom
	custom := opts.Custom
	if custom == nil {
		resolved := o.resolver.Resolve(ctx, symbol, snap, opts.ForceRefresh)
		custom = &resolved
	}
	if res, err := o.attempt(ctx, symbol, snap, *custom, models.TierCustom); err == nil {
		return valuation.Validate(res, snap)
	} else {
		failures = append(failures, fmt.Sprintf("custom: %v", err))
		fmt.Printf("[ENGINE] run=%s tier=custom failed for %s: %v\n", runID, symbol, err)
	}

	// Tier 2: standard (fixed defaults, same pipeline)
	if res, err := o.attempt(ctx, symbol, snap, assumption.Defaults(snap), models.TierStandard); err == nil {
		return valuation.Validate(res, snap)
	} else {
		failures = append(failures, fmt.Sprintf("standard: %v", err))
		fmt.Printf("[ENGINE] run=%s tier=standard failed for %s: %v\n", runID, symbol, err)
	}

	// Tier 3: synthetic — deterministic, cannot fail.
	fmt.Printf("[ENGINE] run=%s all live tiers failed for %s (%d failures), synthesizing estimate\n",
		runID, symbol, len(failures))
	return valuation.Validate(Synthesize(symbol, snap), snap)
}

// attempt executes one tier: remote delegation when configured, otherwise
// the local pure pipeline. Any error, invalid precondition, or non-finite
// output fails the attempt so the next tier runs.
func (o *Orchestrator) attempt(ctx context.Context, symbol string, snap models.FinancialSnapshot, a assumption.Set, tier models.Tier) (models.DCFResult, error) {
	if !a.Sane() {
		return models.DCFResult{}, fmt.Errorf("assumption set outside tolerance band")
	}

	var res models.DCFResult
	if o.remote != nil {
		attemptCtx, cancel := context.WithTimeout(ctx, AttemptTimeout)
		defer cancel()
		remote, err := o.remote.Calculate(attemptCtx, symbol, a, tier)
		if err != nil {
			return models.DCFResult{}, err
		}
		res = remote
	} else {
		local, err := computeLocal(a, snap)
		if err != nil {
			return models.DCFResult{}, err
		}
		res = local
	}

	if !usable(res) {
		return models.DCFResult{}, fmt.Errorf("tier produced unusable result (per-share=%v)", res.EquityValuePerShare)
	}
	res.TierUsed = tier
	return res, nil
}

// computeLocal runs the full pure pipeline: WACC -> projection -> DCF.
func computeLocal(a assumption.Set, snap models.FinancialSnapshot) (models.DCFResult, error) {
	if snap.Revenue <= 0 {
		return models.DCFResult{}, fmt.Errorf("snapshot has no base revenue")
	}

	wacc := valuation.ComputeWACC(a, snap)
	proj := valuation.Project(a, snap, valuation.DefaultHorizonYears)
	res := valuation.Calculate(proj, wacc.WACC, a.TerminalGrowthRate, snap)
	res.TaxRate = a.TaxRate
	if wacc.Clamped {
		res.WasRepaired = true
	}
	return res, nil
}

// Synthesize builds the tier-3 estimate directly from the snapshot: trailing
// earnings per share times a representative P/E multiple, floored at 75% of
// the current price. No external call is involved, so this path is total.
func Synthesize(symbol string, snap models.FinancialSnapshot) models.DCFResult {
	eps := 0.0
	if snap.SharesOutstanding > 0 {
		eps = snap.NetIncome / snap.SharesOutstanding
	}
	perShare := eps * syntheticPEMultiple
	if floor := snap.CurrentPrice * syntheticPriceFloor; perShare < floor {
		perShare = floor
	}

	// Projections still come from the default assumptions so the UI has a
	// chart to draw; only the headline number is synthesized.
	defaults := assumption.Defaults(snap)
	proj := valuation.Project(defaults, snap, valuation.DefaultHorizonYears)

	netDebt := snap.TotalDebt - snap.CashAndEquivalents
	equity := perShare * snap.SharesOutstanding

	lastFCF := 0.0
	if n := len(proj.Years); n > 0 {
		lastFCF = proj.Years[n-1].FreeCashFlow
	}

	return models.DCFResult{
		Symbol:              symbol,
		WACC:                assumption.DefaultWACC,
		TaxRate:             defaults.TaxRate,
		LongTermGrowthRate:  defaults.TerminalGrowthRate,
		Revenue:             snap.Revenue,
		FreeCashFlow:        lastFCF,
		EnterpriseValue:     equity + netDebt,
		NetDebt:             netDebt,
		EquityValue:         equity,
		EquityValuePerShare: perShare,
		YearlyProjections:   proj.Years,
		TierUsed:            models.TierSynthetic,
	}
}

// usable rejects results the next tier should replace: non-finite or
// non-positive headline values.
func usable(res models.DCFResult) bool {
	v := res.EquityValuePerShare
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
