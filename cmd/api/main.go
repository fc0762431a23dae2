package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	valuationapi "dcf_engine/pkg/api/valuation"
	"dcf_engine/pkg/core/agent"
	"dcf_engine/pkg/core/assumption"
	"dcf_engine/pkg/core/calcsvc"
	"dcf_engine/pkg/core/engine"
	"dcf_engine/pkg/core/macro"
	"dcf_engine/pkg/core/report"
	"dcf_engine/pkg/core/store"
	"dcf_engine/pkg/core/suggest"
)

func main() {
	// Load environment variables
	godotenv.Load()
	ctx := context.Background()

	// Provider config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	// Assumption cache: DB when configured, file fallback otherwise
	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[WARNING] Database unavailable, using file cache: %v\n", err)
	}
	cache := store.NewAssumptionCache(store.GetPool(), "")

	// Seed the risk-free default from the live 10Y yield; a failed scrape
	// leaves the built-in constant in place.
	if yield, err := macro.FetchTreasuryYield(ctx); err != nil {
		fmt.Printf("[MACRO] Treasury fetch failed, keeping default risk-free rate: %v\n", err)
	} else {
		assumption.SetBaselineRiskFreeRate(yield)
		fmt.Printf("[MACRO] Risk-free rate seeded at %.3f%%\n", yield*100)
	}

	suggester := suggest.NewService(agentMgr.GetProvider("assumption_suggestion"))
	resolver := assumption.NewResolver(cache, suggester)

	// Remote calculation delegate is optional; local pipeline otherwise
	var remote engine.RemoteCalculator
	if url := os.Getenv("CALC_SERVICE_URL"); url != "" {
		fmt.Printf("[ENGINE] Delegating calculation to %s\n", url)
		remote = calcsvc.NewClient(url)
	}
	orchestrator := engine.NewOrchestrator(resolver, remote)
	reports := report.NewService(agentMgr.GetProvider("report_commentary"))

	valuationapi.InitHandler(orchestrator, resolver, reports)
	http.HandleFunc("/api/valuation/run", valuationapi.HandleRun)
	http.HandleFunc("/api/valuation/assumptions", valuationapi.HandleAssumptions)
	http.HandleFunc("/api/valuation/sensitivity", valuationapi.HandleSensitivity)
	http.HandleFunc("/api/valuation/report", valuationapi.HandleReport)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - POST /api/valuation/run")
	fmt.Println("  - POST /api/valuation/assumptions")
	fmt.Println("  - POST /api/valuation/sensitivity")
	fmt.Println("  - POST /api/valuation/report")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[ERROR] Server exited: %v\n", err)
		os.Exit(1)
	}
}
