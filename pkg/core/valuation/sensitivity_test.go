package valuation

import (
	"math"
	"testing"

	"dcf_engine/pkg/models"
)

func baseCase(t *testing.T) (models.DCFResult, models.FinancialSnapshot) {
	t.Helper()
	a, snap := largeCap()
	proj := Project(a, snap, 5)
	res := Calculate(proj, 0.095, a.TerminalGrowthRate, snap)
	return res, snap
}

func TestBuildGrid_Rectangular(t *testing.T) {
	base, snap := baseCase(t)
	growth := []float64{0.02, 0.025, 0.03}
	discount := []float64{0.09, 0.095, 0.10}

	grid := BuildGrid(base, snap, growth, discount)

	if len(grid.Cells) != len(growth) || len(grid.RowLabels) != len(growth) {
		t.Fatalf("expected %d rows, got %d cells / %d labels", len(growth), len(grid.Cells), len(grid.RowLabels))
	}
	for i, row := range grid.Cells {
		if len(row) != len(discount) {
			t.Fatalf("row %d: expected %d columns, got %d", i, len(discount), len(row))
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("cell [%d][%d] is not finite: %v", i, j, v)
			}
		}
	}
	if len(grid.ColumnLabels) != len(discount) {
		t.Errorf("expected %d column labels, got %d", len(discount), len(grid.ColumnLabels))
	}
}

func TestBuildGrid_Monotonicity(t *testing.T) {
	base, snap := baseCase(t)
	grid := BuildGrid(base, snap, []float64{0.02, 0.025, 0.03}, []float64{0.09, 0.095, 0.10})

	// Holding the discount rate fixed, value rises with growth.
	for j := range grid.ColumnLabels {
		for i := 1; i < len(grid.Cells); i++ {
			if grid.Cells[i][j] <= grid.Cells[i-1][j] {
				t.Errorf("column %d: value should rise with growth (%v -> %v)",
					j, grid.Cells[i-1][j], grid.Cells[i][j])
			}
		}
	}
	// Holding growth fixed, value falls as the discount rate rises.
	for i := range grid.Cells {
		for j := 1; j < len(grid.Cells[i]); j++ {
			if grid.Cells[i][j] >= grid.Cells[i][j-1] {
				t.Errorf("row %d: value should fall with discount rate (%v -> %v)",
					i, grid.Cells[i][j-1], grid.Cells[i][j])
			}
		}
	}
}

func TestBuildGrid_SortsAxes(t *testing.T) {
	base, snap := baseCase(t)
	grid := BuildGrid(base, snap, []float64{0.03, 0.02, 0.025}, []float64{0.10, 0.09, 0.095})

	if grid.RowLabels[0] != "2.0%" || grid.RowLabels[2] != "3.0%" {
		t.Errorf("rows should be ascending, got %v", grid.RowLabels)
	}
	if grid.ColumnLabels[0] != "9.0%" || grid.ColumnLabels[2] != "10.0%" {
		t.Errorf("columns should be ascending, got %v", grid.ColumnLabels)
	}
}

func TestBuildGrid_DefaultsCenterOnWACC(t *testing.T) {
	base, snap := baseCase(t)
	grid := BuildGrid(base, snap, nil, nil)

	if len(grid.Cells) == 0 || len(grid.ColumnLabels) == 0 {
		t.Fatal("default axes should produce a non-empty grid")
	}
	// 9.5% WACC with a 1% half-width: middle column is the base rate.
	mid := grid.ColumnLabels[len(grid.ColumnLabels)/2]
	if mid != "9.5%" {
		t.Errorf("expected discount axis centered on computed WACC, middle column was %s", mid)
	}
}

func TestBuildGrid_DegradedCellsStayFinite(t *testing.T) {
	base, snap := baseCase(t)
	// Growth above every discount rate forces the substitution path in
	// each cell.
	grid := BuildGrid(base, snap, []float64{0.12}, []float64{0.09, 0.10})

	for _, row := range grid.Cells {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("degraded cell should be finite, got %v", v)
			}
		}
	}
}
