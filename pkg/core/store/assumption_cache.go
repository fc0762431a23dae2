// Package store persists AI-generated assumption sets. It is a hybrid
// vault: Postgres when DATABASE_URL is configured, per-symbol JSON files
// otherwise, with identical TTL semantics either way.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"dcf_engine/pkg/core/assumption"
)

// AssumptionCache implements assumption.Cache. Writes are idempotent
// upserts keyed by symbol; last writer wins. Expired entries are reported
// as misses in one place — here — so the TTL invariant is not re-checked
// per call site.
type AssumptionCache struct {
	pool    *pgxpool.Pool
	fileDir string
	now     func() time.Time
}

// NewAssumptionCache builds a cache. With a nil pool and empty dir, the
// cache defaults to .cache/assumptions on disk.
func NewAssumptionCache(pool *pgxpool.Pool, dir string) *AssumptionCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "assumptions")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check assumption cache dir: %v\n", err)
		}
	}
	return &AssumptionCache{pool: pool, fileDir: dir, now: time.Now}
}

// Get returns the entry for symbol, or (nil, nil) when absent or expired.
func (c *AssumptionCache) Get(ctx context.Context, symbol string) (*assumption.CacheEntry, error) {
	if c.pool != nil {
		query := `
			SELECT symbol, assumptions, created_at, expires_at
			FROM assumption_cache
			WHERE symbol = $1
			LIMIT 1
		`
		var entry assumption.CacheEntry
		var assumptionsJSON []byte
		err := c.pool.QueryRow(ctx, query, strings.ToUpper(symbol)).Scan(
			&entry.Symbol, &assumptionsJSON, &entry.CreatedAt, &entry.ExpiresAt,
		)
		if err != nil {
			return nil, nil // Cache miss
		}
		if err := json.Unmarshal(assumptionsJSON, &entry.Assumptions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached assumptions: %w", err)
		}
		if !entry.Fresh(c.now()) {
			return nil, nil
		}
		return &entry, nil
	}

	if c.fileDir != "" {
		return c.loadFromFile(symbol)
	}
	return nil, nil
}

// Put upserts the entry under its symbol.
func (c *AssumptionCache) Put(ctx context.Context, entry *assumption.CacheEntry) error {
	if entry == nil || entry.Symbol == "" {
		return fmt.Errorf("cache entry must carry a symbol")
	}
	if !entry.ExpiresAt.After(entry.CreatedAt) {
		return fmt.Errorf("cache entry expires before it was created")
	}

	if c.pool != nil {
		assumptionsJSON, err := json.Marshal(entry.Assumptions)
		if err != nil {
			return fmt.Errorf("failed to marshal assumptions: %w", err)
		}
		query := `
			INSERT INTO assumption_cache (symbol, assumptions, created_at, expires_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (symbol)
			DO UPDATE SET
				assumptions = EXCLUDED.assumptions,
				created_at = EXCLUDED.created_at,
				expires_at = EXCLUDED.expires_at
		`
		_, err = c.pool.Exec(ctx, query,
			strings.ToUpper(entry.Symbol), assumptionsJSON, entry.CreatedAt, entry.ExpiresAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert assumption cache: %w", err)
		}
		return nil
	}

	if c.fileDir != "" {
		fileBytes, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal cache entry: %w", err)
		}
		if err := os.WriteFile(c.symbolPath(entry.Symbol), fileBytes, 0644); err != nil {
			return fmt.Errorf("failed to write file cache: %w", err)
		}
	}
	return nil
}

func (c *AssumptionCache) symbolPath(symbol string) string {
	safe := strings.ToUpper(strings.ReplaceAll(symbol, string(filepath.Separator), "_"))
	return filepath.Join(c.fileDir, safe+".json")
}

func (c *AssumptionCache) loadFromFile(symbol string) (*assumption.CacheEntry, error) {
	bytes, err := os.ReadFile(c.symbolPath(symbol))
	if err != nil {
		return nil, nil // Not found
	}
	var entry assumption.CacheEntry
	if err := json.Unmarshal(bytes, &entry); err != nil {
		return nil, fmt.Errorf("corrupt cache file for %s: %w", symbol, err)
	}
	if !entry.Fresh(c.now()) {
		// Stale files are garbage; removing eagerly keeps the dir small.
		_ = os.Remove(c.symbolPath(symbol))
		return nil, nil
	}
	return &entry, nil
}
