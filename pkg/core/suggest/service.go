// Package suggest turns an LLM provider into the Suggestion Service the
// assumption resolver consumes: snapshot in, complete assumption set out,
// or a clean failure the resolver degrades from.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/core/llm"
	"dcf_engine/pkg/core/utils"
	"dcf_engine/pkg/models"
)

// Timeout bounds one suggestion request end to end.
const Timeout = 30 * time.Second

const systemPrompt = `You are a sell-side equity analyst calibrating a 5-year DCF model.
Given the company's latest reported financials, respond with a single JSON object
containing these keys, all as decimal fractions (0.085 means 8.5%):
revenueGrowthRate, terminalGrowthRate, ebitdaMargin, ebitMargin,
capitalExpenditureRatio, depreciationRatio, operatingCashFlowRatio, sgaRatio,
cashAndSTInvestmentsRatio, receivablesRatio, inventoryRatio, payablesRatio,
taxRate, beta, riskFreeRate, marketRiskPremium, costOfDebt.
terminalGrowthRate must be below the implied cost of equity. No commentary, JSON only.`

// Service implements assumption.Suggester.
type Service struct {
	provider llm.Provider
	timeout  time.Duration
}

var _ assumption.Suggester = (*Service)(nil)

// NewService wraps a provider.
func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider, timeout: Timeout}
}

// Suggest prompts the model with the snapshot and parses the reply into a
// Set. Replies that survive decoding but fall outside the tolerance band
// are rejected here so the resolver sees a single failure mode.
func (s *Service) Suggest(ctx context.Context, symbol string, snap models.FinancialSnapshot) (assumption.Set, error) {
	if s.provider == nil {
		return assumption.Set{}, fmt.Errorf("no suggestion provider configured")
	}

	snapJSON, err := json.Marshal(snap)
	if err != nil {
		return assumption.Set{}, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	prompt := fmt.Sprintf("Company: %s\nLatest reported financials (USD):\n%s", symbol, string(snapJSON))

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.provider.GenerateResponse(reqCtx, prompt, systemPrompt, llm.JSONMode())
	if err != nil {
		return assumption.Set{}, fmt.Errorf("suggestion generation failed: %w", err)
	}

	var set assumption.Set
	if err := utils.DecodeLenient(reply, &set); err != nil {
		return assumption.Set{}, fmt.Errorf("malformed suggestion for %s: %w", symbol, err)
	}
	if !set.Sane() {
		return assumption.Set{}, fmt.Errorf("suggestion for %s outside tolerance band", symbol)
	}
	return set, nil
}
