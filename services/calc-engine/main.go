// calc-engine is a standalone stand-in for the remote calculation service.
// It speaks the /calculate contract the engine's calcsvc client expects and
// runs the local pure pipeline behind it, so the orchestrator's remote
// delegation path can be exercised without real infrastructure.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"

	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/core/valuation"
	"dcf_engine/pkg/models"
)

type calcRequest struct {
	Symbol      string         `json:"symbol"`
	Tier        models.Tier    `json:"tier"`
	Assumptions assumption.Set `json:"assumptions"`
	// Snapshot is optional on the wire. The production client does not send
	// one; the stand-in substitutes a nominal profile so the pipeline still
	// produces a complete result.
	Snapshot models.FinancialSnapshot `json:"snapshot"`
}

// nominalSnapshot stands in for real financials when the request carries
// none. A mid-cap profile keeps every derived number finite and positive.
func nominalSnapshot(symbol string) models.FinancialSnapshot {
	return models.FinancialSnapshot{
		Symbol:             symbol,
		Revenue:            100e9,
		OperatingIncome:    25e9,
		NetIncome:          20e9,
		TotalDebt:          30e9,
		CashAndEquivalents: 10e9,
		SharesOutstanding:  1e9,
		CurrentPrice:       40,
		Beta:               assumption.DefaultBeta,
	}
}

func main() {
	addr := flag.String("addr", ":8090", "listen address")
	flag.Parse()

	http.HandleFunc("/calculate", handleCalculate)

	fmt.Printf("[CALC] listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		fmt.Printf("[ERROR] calc-engine exited: %v\n", err)
	}
}

func handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req calcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("malformed request: %v", err), http.StatusBadRequest)
		return
	}
	if !req.Assumptions.Sane() {
		http.Error(w, "assumption set outside tolerance band", http.StatusUnprocessableEntity)
		return
	}

	snap := req.Snapshot
	if snap.Revenue <= 0 {
		snap = nominalSnapshot(req.Symbol)
	}
	if snap.Symbol == "" {
		snap.Symbol = req.Symbol
	}

	wacc := valuation.ComputeWACC(req.Assumptions, snap)
	proj := valuation.Project(req.Assumptions, snap, valuation.DefaultHorizonYears)
	res := valuation.Calculate(proj, wacc.WACC, req.Assumptions.TerminalGrowthRate, snap)
	res.TaxRate = req.Assumptions.TaxRate

	fmt.Printf("[CALC] symbol=%s tier=%s perShare=%.2f\n", req.Symbol, req.Tier, res.EquityValuePerShare)

	// The wire contract is a result array; clients read the first element.
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode([]models.DCFResult{res})
}
