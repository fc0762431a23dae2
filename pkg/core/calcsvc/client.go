// Package calcsvc is the client for the remote calculation service: an
// opaque endpoint that, given a symbol and an assumption set, returns a raw
// result array. Only the first element matters; absent fields decode to zero
// so the arithmetic identities of the result shape always hold.
package calcsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/models"
)

// DefaultTimeout bounds a single remote attempt. A slow service is treated
// as a tier failure, never retried within the same tier.
const DefaultTimeout = 30 * time.Second

// Client talks to one remote calculation endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

type calcRequest struct {
	Symbol      string         `json:"symbol"`
	Tier        models.Tier    `json:"tier"`
	Assumptions assumption.Set `json:"assumptions"`
}

// rawResult mirrors the wire shape of one element of the service's response
// array. Missing fields unmarshal to 0 by construction.
type rawResult struct {
	Symbol                       string                    `json:"symbol"`
	WACC                         float64                   `json:"wacc"`
	TaxRate                      float64                   `json:"taxRate"`
	LongTermGrowthRate           float64                   `json:"longTermGrowthRate"`
	Revenue                      float64                   `json:"revenue"`
	FreeCashFlow                 float64                   `json:"freeCashFlow"`
	TerminalValue                float64                   `json:"terminalValue"`
	PresentValueOfTerminalValue  float64                   `json:"presentValueOfTerminalValue"`
	SumOfDiscountedFreeCashFlows float64                   `json:"sumOfDiscountedFreeCashFlows"`
	EnterpriseValue              float64                   `json:"enterpriseValue"`
	NetDebt                      float64                   `json:"netDebt"`
	EquityValue                  float64                   `json:"equityValue"`
	EquityValuePerShare          float64                   `json:"equityValuePerShare"`
	YearlyProjections            []models.YearlyProjection `json:"yearlyProjections"`
}

// Calculate invokes the remote service and normalizes the first element of
// its response into a DCFResult. An empty response array is an error — the
// orchestrator treats it as a tier failure.
func (c *Client) Calculate(ctx context.Context, symbol string, a assumption.Set, tier models.Tier) (models.DCFResult, error) {
	body, err := json.Marshal(calcRequest{Symbol: symbol, Tier: tier, Assumptions: a})
	if err != nil {
		return models.DCFResult{}, fmt.Errorf("failed to marshal calc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calculate", bytes.NewReader(body))
	if err != nil {
		return models.DCFResult{}, fmt.Errorf("failed to build calc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.DCFResult{}, fmt.Errorf("calc service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return models.DCFResult{}, fmt.Errorf("calc service returned %d: %s", resp.StatusCode, string(payload))
	}

	var raw []rawResult
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return models.DCFResult{}, fmt.Errorf("malformed calc response: %w", err)
	}
	if len(raw) == 0 {
		return models.DCFResult{}, fmt.Errorf("calc service returned empty result for %s", symbol)
	}

	return normalize(raw[0], symbol), nil
}

// normalize maps the raw record onto the result shape, re-deriving the
// equity identity when the service omitted the derived fields.
func normalize(r rawResult, symbol string) models.DCFResult {
	res := models.DCFResult{
		Symbol:                       r.Symbol,
		WACC:                         r.WACC,
		TaxRate:                      r.TaxRate,
		LongTermGrowthRate:           r.LongTermGrowthRate,
		Revenue:                      r.Revenue,
		FreeCashFlow:                 r.FreeCashFlow,
		TerminalValue:                r.TerminalValue,
		PresentValueOfTerminalValue:  r.PresentValueOfTerminalValue,
		SumOfDiscountedFreeCashFlows: r.SumOfDiscountedFreeCashFlows,
		EnterpriseValue:              r.EnterpriseValue,
		NetDebt:                      r.NetDebt,
		EquityValue:                  r.EquityValue,
		EquityValuePerShare:          r.EquityValuePerShare,
		YearlyProjections:            r.YearlyProjections,
	}
	if res.Symbol == "" {
		res.Symbol = symbol
	}
	if res.EnterpriseValue == 0 {
		res.EnterpriseValue = res.SumOfDiscountedFreeCashFlows + res.PresentValueOfTerminalValue
	}
	if res.EquityValue == 0 {
		res.EquityValue = res.EnterpriseValue - res.NetDebt
	}
	if res.YearlyProjections == nil {
		res.YearlyProjections = []models.YearlyProjection{}
	}
	return res
}
