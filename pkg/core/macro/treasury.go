// Package macro fetches live market inputs that seed the default
// assumptions. Only the 10-year treasury yield is needed today; a failed
// fetch leaves the hard-coded default in place and never blocks a valuation.
package macro

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	tenYearQuoteURL = "https://www.cnbc.com/quotes/US10Y"
	fetchTimeout    = 10 * time.Second
)

// FetchTreasuryYield scrapes the current 10-year treasury yield and returns
// it as a decimal fraction (0.042 for 4.2%).
func FetchTreasuryYield(ctx context.Context) (float64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, tenYearQuoteURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build treasury request: %w", err)
	}
	req.Header.Set("User-Agent", "dcf-engine/1.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("treasury quote fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("treasury quote returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse treasury quote page: %w", err)
	}

	raw := strings.TrimSpace(doc.Find(".QuoteStrip-lastPrice").First().Text())
	if raw == "" {
		return 0, fmt.Errorf("yield not found on quote page")
	}
	return parseYield(raw)
}

// parseYield converts a displayed yield like "4.28%" into 0.0428.
func parseYield(raw string) (float64, error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(raw), "%")
	pct, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable yield %q: %w", raw, err)
	}
	yield := pct / 100
	if yield <= 0 || yield > 0.20 {
		return 0, fmt.Errorf("implausible yield %.4f", yield)
	}
	return yield, nil
}
