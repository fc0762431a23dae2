package assumption

import (
	"context"
	"fmt"
	"testing"
	"time"

	"dcf_engine/pkg/models"
)

type memoryCache struct {
	entries map[string]*CacheEntry
	puts    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*CacheEntry{}}
}

func (m *memoryCache) Get(ctx context.Context, symbol string) (*CacheEntry, error) {
	return m.entries[symbol], nil
}

func (m *memoryCache) Put(ctx context.Context, entry *CacheEntry) error {
	m.puts++
	m.entries[entry.Symbol] = entry
	return nil
}

type stubSuggester struct {
	set   Set
	err   error
	calls int
}

func (s *stubSuggester) Suggest(ctx context.Context, symbol string, snap models.FinancialSnapshot) (Set, error) {
	s.calls++
	return s.set, s.err
}

func saneSuggestion() Set {
	s := Defaults(models.FinancialSnapshot{})
	s.RevenueGrowthRate = 0.12
	return s
}

func TestResolve_FreshCacheWins(t *testing.T) {
	cache := newMemoryCache()
	now := time.Now()
	cached := saneSuggestion()
	cached.EbitdaMargin = 0.42
	cache.entries["AAPL"] = &CacheEntry{
		Symbol:      "AAPL",
		Assumptions: cached,
		CreatedAt:   now.Add(-time.Hour),
		ExpiresAt:   now.Add(23 * time.Hour),
	}
	suggester := &stubSuggester{set: saneSuggestion()}
	r := NewResolver(cache, suggester)

	got := r.Resolve(context.Background(), "AAPL", models.FinancialSnapshot{}, false)
	if got.EbitdaMargin != 0.42 {
		t.Errorf("expected cached assumptions, got margin %v", got.EbitdaMargin)
	}
	if suggester.calls != 0 {
		t.Errorf("fresh cache hit must not trigger a suggestion, got %d calls", suggester.calls)
	}
}

func TestResolve_ExpiredEntryIsAMiss(t *testing.T) {
	cache := newMemoryCache()
	now := time.Now()
	stale := saneSuggestion()
	stale.EbitdaMargin = 0.99 // sentinel: serving this would be a TTL bug
	cache.entries["AAPL"] = &CacheEntry{
		Symbol:      "AAPL",
		Assumptions: stale,
		CreatedAt:   now.Add(-48 * time.Hour),
		ExpiresAt:   now.Add(-24 * time.Hour),
	}
	// The fresh fetch also fails: defaults, never the stale entry.
	suggester := &stubSuggester{err: fmt.Errorf("service unavailable")}
	r := NewResolver(cache, suggester)

	got := r.Resolve(context.Background(), "AAPL", models.FinancialSnapshot{}, false)
	if got.EbitdaMargin == 0.99 {
		t.Fatal("stale cache entry was served")
	}
	if got.EbitdaMargin != DefaultEbitdaMargin {
		t.Errorf("expected default margin, got %v", got.EbitdaMargin)
	}
	if suggester.calls != 1 {
		t.Errorf("expected one suggestion attempt, got %d", suggester.calls)
	}
}

func TestResolve_ForceRefreshBypassesCache(t *testing.T) {
	cache := newMemoryCache()
	now := time.Now()
	cache.entries["MSFT"] = &CacheEntry{
		Symbol:      "MSFT",
		Assumptions: saneSuggestion(),
		CreatedAt:   now,
		ExpiresAt:   now.Add(SuggestionTTL),
	}
	fresh := saneSuggestion()
	fresh.RevenueGrowthRate = 0.2
	suggester := &stubSuggester{set: fresh}
	r := NewResolver(cache, suggester)

	got := r.Resolve(context.Background(), "MSFT", models.FinancialSnapshot{}, true)
	if got.RevenueGrowthRate != 0.2 {
		t.Errorf("forceRefresh should fetch a fresh suggestion, got growth %v", got.RevenueGrowthRate)
	}
	if suggester.calls != 1 {
		t.Errorf("expected one suggestion call, got %d", suggester.calls)
	}
}

func TestResolve_SuccessfulSuggestionIsCachedWithTTL(t *testing.T) {
	cache := newMemoryCache()
	suggester := &stubSuggester{set: saneSuggestion()}
	r := NewResolver(cache, suggester)

	r.Resolve(context.Background(), "NVDA", models.FinancialSnapshot{}, false)

	entry, ok := cache.entries["NVDA"]
	if !ok {
		t.Fatal("suggestion was not cached")
	}
	if ttl := entry.ExpiresAt.Sub(entry.CreatedAt); ttl != SuggestionTTL {
		t.Errorf("expected 24h TTL, got %v", ttl)
	}
}

func TestResolve_InsaneSuggestionDegradesToDefaults(t *testing.T) {
	bad := saneSuggestion()
	bad.Beta = -2
	r := NewResolver(newMemoryCache(), &stubSuggester{set: bad})

	snap := models.FinancialSnapshot{Revenue: 10e9, OperatingIncome: 2e9}
	got := r.Resolve(context.Background(), "ACME", snap, false)

	if got.Beta <= 0 {
		t.Errorf("insane suggestion leaked through: beta %v", got.Beta)
	}
	// Defaults derive the EBIT margin from the snapshot.
	if got.EbitMargin != 0.2 {
		t.Errorf("expected snapshot-derived margin 0.2, got %v", got.EbitMargin)
	}
}

func TestResolve_NeverPanicsWithNilCollaborators(t *testing.T) {
	r := NewResolver(nil, nil)
	got := r.Resolve(context.Background(), "ACME", models.FinancialSnapshot{}, false)
	if !got.Sane() {
		t.Error("defaults must always be sane")
	}
}
