// Package valuation exposes the engine's four entry points over HTTP:
// assumption resolution, the tiered valuation run, the sensitivity grid,
// and the rendered report.
package valuation

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/core/engine"
	"dcf_engine/pkg/core/report"
	valuationcore "dcf_engine/pkg/core/valuation"
	"dcf_engine/pkg/models"
)

var (
	orchestrator *engine.Orchestrator
	resolver     *assumption.Resolver
	reports      *report.Service
)

// InitHandler wires the handlers to their collaborators.
func InitHandler(orch *engine.Orchestrator, res *assumption.Resolver, rep *report.Service) {
	orchestrator = orch
	resolver = res
	reports = rep
}

type runRequest struct {
	Symbol       string                   `json:"symbol"`
	Snapshot     models.FinancialSnapshot `json:"snapshot"`
	Assumptions  *assumption.Set          `json:"assumptions,omitempty"`
	ForceRefresh bool                     `json:"forceRefresh"`
}

type gridRequest struct {
	Symbol        string                   `json:"symbol"`
	Snapshot      models.FinancialSnapshot `json:"snapshot"`
	Assumptions   *assumption.Set          `json:"assumptions,omitempty"`
	GrowthRates   []float64                `json:"growthRates,omitempty"`
	DiscountRates []float64                `json:"discountRates,omitempty"`
}

// HandleRun executes the tiered valuation for a symbol.
func HandleRun(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	symbol := normalizeSymbol(req.Symbol, req.Snapshot)
	fmt.Printf("[API] Valuation run: %s (force=%v, custom=%v)\n", symbol, req.ForceRefresh, req.Assumptions != nil)

	result := orchestrator.Run(r.Context(), symbol, req.Snapshot, engine.Options{
		Custom:       req.Assumptions,
		ForceRefresh: req.ForceRefresh,
	})
	writeJSON(w, result)
}

// HandleAssumptions resolves (or force-refreshes) the assumption set.
func HandleAssumptions(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	symbol := normalizeSymbol(req.Symbol, req.Snapshot)
	set := resolver.Resolve(r.Context(), symbol, req.Snapshot, req.ForceRefresh)
	writeJSON(w, set)
}

// HandleSensitivity runs the base case and derives the grid from it.
func HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	symbol := normalizeSymbol(req.Symbol, req.Snapshot)

	base := orchestrator.Run(r.Context(), symbol, req.Snapshot, engine.Options{Custom: req.Assumptions})
	grid := valuationcore.BuildGrid(base, req.Snapshot, req.GrowthRates, req.DiscountRates)
	writeJSON(w, map[string]interface{}{
		"base": base,
		"grid": grid,
	})
}

// HandleReport runs the valuation and returns the rendered report.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	if !allowPost(w, r) {
		return
	}
	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	symbol := normalizeSymbol(req.Symbol, req.Snapshot)

	base := orchestrator.Run(r.Context(), symbol, req.Snapshot, engine.Options{Custom: req.Assumptions})
	grid := valuationcore.BuildGrid(base, req.Snapshot, req.GrowthRates, req.DiscountRates)

	markdown := reports.Markdown(r.Context(), base, &grid)
	html, err := report.HTML(markdown)
	if err != nil {
		http.Error(w, fmt.Sprintf("Report rendering failed: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"markdown": markdown,
		"html":     html,
		"tierUsed": base.TierUsed,
	})
}

// allowPost applies CORS and restricts the handler to POST.
func allowPost(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func normalizeSymbol(symbol string, snap models.FinancialSnapshot) string {
	if symbol == "" {
		symbol = snap.Symbol
	}
	return strings.ToUpper(symbol)
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fmt.Printf("[WARNING] Failed to encode response: %v\n", err)
	}
}
