package valuation

import (
	"fmt"
	"math"
	"sort"

	"dcf_engine/pkg/models"
)

// Default axis construction for the sensitivity grid. The discount axis is
// centered on the base case's computed WACC rather than a fixed band, so the
// "near current price" cell is meaningful whatever the company's actual cost
// of capital turned out to be.
const (
	gridHalfWidth = 0.01
	gridStep      = 0.005
)

// BuildGrid recomputes the valuation across growth-rate rows and
// discount-rate columns. The base case's yearly projections are reused for
// every cell — only the terminal value and discount mechanics vary per cell.
// Rows and columns come out in ascending order; every cell is finite.
//
// Nil axes default to terminal growth 2%–4% and a WACC-centered discount
// band.
func BuildGrid(base models.DCFResult, snap models.FinancialSnapshot, growthRates, discountRates []float64) models.SensitivityGrid {
	if len(growthRates) == 0 {
		growthRates = axis(0.02, 0.04, gridStep)
	}
	if len(discountRates) == 0 {
		center := base.WACC
		if center <= MinWACC || center >= MaxWACC {
			center = 0.095
		}
		discountRates = axis(center-gridHalfWidth, center+gridHalfWidth, gridStep)
	}

	rows := append([]float64(nil), growthRates...)
	cols := append([]float64(nil), discountRates...)
	sort.Float64s(rows)
	sort.Float64s(cols)

	grid := models.SensitivityGrid{
		RowLabels:    percentLabels(rows),
		ColumnLabels: percentLabels(cols),
		Cells:        make([][]float64, len(rows)),
	}

	for i, g := range rows {
		grid.Cells[i] = make([]float64, len(cols))
		for j, d := range cols {
			grid.Cells[i][j] = cellValue(base, snap, g, d)
		}
	}
	return grid
}

// cellValue rediscounts the base-case cash flows at rate d with terminal
// growth g, returning the implied equity value per share.
func cellValue(base models.DCFResult, snap models.FinancialSnapshot, g, d float64) float64 {
	var pvSum, lastFCF float64
	for i, year := range base.YearlyProjections {
		pvSum += year.FreeCashFlow / math.Pow(1+d, float64(i+1))
		lastFCF = year.FreeCashFlow
	}

	effectiveGrowth, _ := safeTerminalGrowth(d, g)
	tv := lastFCF * (1 + effectiveGrowth) / (d - effectiveGrowth)
	ev := pvSum + tv/math.Pow(1+d, float64(len(base.YearlyProjections)))

	equity := ev - base.NetDebt
	perShare := equity
	if snap.SharesOutstanding > 0 {
		perShare = equity / snap.SharesOutstanding
	}
	if math.IsNaN(perShare) || math.IsInf(perShare, 0) {
		return 0
	}
	return perShare
}

func axis(from, to, step float64) []float64 {
	var out []float64
	for v := from; v <= to+1e-9; v += step {
		out = append(out, v)
	}
	return out
}

func percentLabels(rates []float64) []string {
	labels := make([]string, len(rates))
	for i, r := range rates {
		labels[i] = fmt.Sprintf("%.1f%%", r*100)
	}
	return labels
}
