package assumption

import (
	"math"
	"testing"
	"time"

	"dcf_engine/pkg/models"
)

func TestInBand(t *testing.T) {
	for _, v := range []float64{-1, 0, 0.085, 4.99, 5} {
		if !InBand(v) {
			t.Errorf("expected %v in band", v)
		}
	}
	for _, v := range []float64{-1.01, 5.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if InBand(v) {
			t.Errorf("expected %v out of band", v)
		}
	}
}

func TestSet_Sane(t *testing.T) {
	base := Defaults(models.FinancialSnapshot{})
	if !base.Sane() {
		t.Fatal("defaults must be sane")
	}

	tax := base
	tax.TaxRate = 1.5
	if tax.Sane() {
		t.Error("tax rate above 1 should be insane")
	}

	beta := base
	beta.Beta = 0
	if beta.Sane() {
		t.Error("non-positive beta should be insane")
	}

	terminal := base
	terminal.TerminalGrowthRate = 0.5 // above any plausible cost of equity
	if terminal.Sane() {
		t.Error("terminal growth above cost of equity should be insane")
	}
}

func TestCacheEntry_Fresh(t *testing.T) {
	now := time.Now()
	entry := &CacheEntry{ExpiresAt: now.Add(time.Minute)}

	if !entry.Fresh(now) {
		t.Error("entry expiring in the future should be fresh")
	}
	if entry.Fresh(now.Add(2 * time.Minute)) {
		t.Error("entry past expiry should be stale")
	}
	var nilEntry *CacheEntry
	if nilEntry.Fresh(now) {
		t.Error("nil entry can never be fresh")
	}
}

func TestDefaults_DerivesFromSnapshot(t *testing.T) {
	snap := models.FinancialSnapshot{
		Revenue:         200e9,
		OperatingIncome: 60e9,
		Beta:            0.9,
	}
	s := Defaults(snap)

	if s.EbitMargin != 0.3 {
		t.Errorf("expected snapshot-derived EBIT margin 0.3, got %v", s.EbitMargin)
	}
	if s.EbitdaMargin != 0.3+DefaultDepreciationRatio {
		t.Errorf("expected EBITDA margin to track EBIT plus depreciation, got %v", s.EbitdaMargin)
	}
	if s.Beta != 0.9 {
		t.Errorf("expected snapshot beta 0.9, got %v", s.Beta)
	}
}
