// Package models defines the shared data model for the DCF valuation engine.
// Field names mirror the frontend wire format (camelCase JSON) so results can
// be consumed directly by the UI layer without remapping.
package models

// Tier identifies which calculation path produced a DCFResult.
// Callers branch on this instead of sentinel "isMockData" style flags.
type Tier string

const (
	TierCustom    Tier = "custom"    // caller-supplied assumptions, full pipeline
	TierStandard  Tier = "standard"  // built-in default assumptions, full pipeline
	TierSynthetic Tier = "synthetic" // deterministic estimate, no live calculation
)

// FinancialSnapshot is the most recent actual reported financials for a
// company. Owned by the caller; the engine never mutates it.
type FinancialSnapshot struct {
	Symbol             string  `json:"symbol"`
	Revenue            float64 `json:"revenue"`
	OperatingIncome    float64 `json:"operatingIncome"`
	NetIncome          float64 `json:"netIncome"`
	SharesOutstanding  float64 `json:"sharesOutstanding"`
	TotalDebt          float64 `json:"totalDebt"`
	CashAndEquivalents float64 `json:"cashAndEquivalents"`
	Beta               float64 `json:"beta"`
	CurrentPrice       float64 `json:"currentPrice"`
}

// YearlyProjection is one projected fiscal year. CapitalExpenditure is
// reported as a negative outflow, so FreeCashFlow = OperatingCashFlow + Capex.
type YearlyProjection struct {
	Year               string  `json:"year"`
	Revenue            float64 `json:"revenue"`
	Ebit               float64 `json:"ebit"`
	Ebitda             float64 `json:"ebitda"`
	OperatingCashFlow  float64 `json:"operatingCashFlow"`
	CapitalExpenditure float64 `json:"capitalExpenditure"`
	FreeCashFlow       float64 `json:"freeCashFlow"`
}

// DCFResult is the normalized valuation output, identical in shape no matter
// which tier produced it.
//
// Invariants: EquityValue = EnterpriseValue - NetDebt, and
// EquityValuePerShare = EquityValue / sharesOutstanding when shares > 0.
type DCFResult struct {
	Symbol                       string             `json:"symbol"`
	WACC                         float64            `json:"wacc"`
	TaxRate                      float64            `json:"taxRate"`
	LongTermGrowthRate           float64            `json:"longTermGrowthRate"`
	Revenue                      float64            `json:"revenue"`
	FreeCashFlow                 float64            `json:"freeCashFlow"`
	TerminalValue                float64            `json:"terminalValue"`
	PresentValueOfTerminalValue  float64            `json:"presentValueOfTerminalValue"`
	SumOfDiscountedFreeCashFlows float64            `json:"sumOfDiscountedFreeCashFlows"`
	EnterpriseValue              float64            `json:"enterpriseValue"`
	NetDebt                      float64            `json:"netDebt"`
	EquityValue                  float64            `json:"equityValue"`
	EquityValuePerShare          float64            `json:"equityValuePerShare"`
	YearlyProjections            []YearlyProjection `json:"yearlyProjections"`
	TierUsed                     Tier               `json:"tierUsed"`
	// WasRepaired is set whenever a degraded substitution occurred anywhere
	// in the pipeline (terminal growth clamp, zero-share fallback, validator
	// repair). The UI shows an "estimated values" notice off this + TierUsed.
	WasRepaired bool `json:"wasRepaired"`
}

// SensitivityGrid is a rectangular matrix of per-share valuations across
// growth-rate rows and discount-rate columns.
type SensitivityGrid struct {
	RowLabels    []string    `json:"rowLabels"`
	ColumnLabels []string    `json:"columnLabels"`
	Cells        [][]float64 `json:"cells"`
}
