package assumption

import (
	"context"
	"fmt"
	"time"

	"dcf_engine/pkg/models"
)

// SuggestionTTL is how long an AI-generated assumption set stays servable.
const SuggestionTTL = 24 * time.Hour

// Suggester produces an externally generated assumption set (AI or rules
// engine — the resolver does not care which). Implemented by suggest.Service.
type Suggester interface {
	Suggest(ctx context.Context, symbol string, snap models.FinancialSnapshot) (Set, error)
}

// Cache is the key-value store for suggestion entries, keyed by symbol.
// Get returns (nil, nil) on a miss; expired entries count as misses.
// Put is an idempotent upsert, last writer wins.
type Cache interface {
	Get(ctx context.Context, symbol string) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
}

// Resolver yields a complete Set for a symbol: cached suggestion first,
// then a fresh suggestion, then built-in defaults. It never fails — any
// upstream problem degrades to Defaults so downstream calculation can
// always proceed.
type Resolver struct {
	cache     Cache
	suggester Suggester
	ttl       time.Duration
	now       func() time.Time
}

// NewResolver builds a resolver. Both cache and suggester may be nil, in
// which case the corresponding step is skipped.
func NewResolver(cache Cache, suggester Suggester) *Resolver {
	return &Resolver{
		cache:     cache,
		suggester: suggester,
		ttl:       SuggestionTTL,
		now:       time.Now,
	}
}

// Resolve returns the assumption set for symbol.
//
// With forceRefresh false, a fresh cache entry wins. Otherwise a new
// suggestion is requested and cached with a 24h TTL. On any failure —
// including a stale-only cache — the built-in defaults are returned; a
// stale entry is never served.
func (r *Resolver) Resolve(ctx context.Context, symbol string, snap models.FinancialSnapshot, forceRefresh bool) Set {
	if !forceRefresh && r.cache != nil {
		entry, err := r.cache.Get(ctx, symbol)
		if err != nil {
			fmt.Printf("[ASSUMPTION] Cache read failed for %s: %v\n", symbol, err)
		} else if entry.Fresh(r.now()) {
			return entry.Assumptions
		}
	}

	if r.suggester != nil {
		suggested, err := r.suggester.Suggest(ctx, symbol, snap)
		if err == nil && suggested.Sane() {
			r.store(ctx, symbol, suggested)
			return suggested
		}
		if err != nil {
			fmt.Printf("[ASSUMPTION] Suggestion failed for %s, using defaults: %v\n", symbol, err)
		} else {
			fmt.Printf("[ASSUMPTION] Suggestion for %s out of tolerance band, using defaults\n", symbol)
		}
	}

	return Defaults(snap)
}

func (r *Resolver) store(ctx context.Context, symbol string, s Set) {
	if r.cache == nil {
		return
	}
	created := r.now()
	entry := &CacheEntry{
		Symbol:      symbol,
		Assumptions: s,
		CreatedAt:   created,
		ExpiresAt:   created.Add(r.ttl),
	}
	if err := r.cache.Put(ctx, entry); err != nil {
		// Advisory data only; a failed write is not worth surfacing.
		fmt.Printf("[WARNING] Failed to cache assumptions for %s: %v\n", symbol, err)
	}
}
