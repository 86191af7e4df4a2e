package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/luanshen/mga-optimizer/internal/optimize"
)

const comparisonSheet = "Comparison"

// ExportComparisonXLSX writes a scenario-comparison table to an .xlsx
// workbook: one row per scenario with its algorithm overrides and headline
// results side by side.
func ExportComparisonXLSX(path string, results []optimize.ComparisonResult) error {
	if len(results) == 0 {
		return fmt.Errorf("no comparison results to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", comparisonSheet); err != nil {
		return err
	}

	headers := []string{
		"Scenario", "Population", "Generations", "Crossover", "Mutation", "Adaptive",
		"Speed (r/min)", "Feed (mm/min)", "Cut Depth (mm)",
		"MRR (cm3/min)", "Fitness", "Safety Score", "Generations Run", "Status",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(comparisonSheet, cell, h); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(comparisonSheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, r := range results {
		row := i + 2
		values := []interface{}{
			r.Scenario.Name,
			orDefault(r.Scenario.Request.PopulationSize),
			orDefault(r.Scenario.Request.Generations),
			orDefaultFloat(r.Scenario.Request.CrossoverRate),
			orDefaultFloat(r.Scenario.Request.MutationRate),
			r.Scenario.Request.AdaptiveRates,
		}
		if r.Err != nil {
			values = append(values, "", "", "", "", "", "", "", "failed: "+r.Err.Error())
		} else {
			ev := r.Response.Evaluation
			values = append(values,
				ev.SpeedRPM, ev.FeedMMMin, ev.CutDepthMM,
				r.MRRCm3Min, r.Fitness, r.SafetyScore, r.Generations, status(r.Response),
			)
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(comparisonSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func status(resp optimize.Response) string {
	switch {
	case resp.Aborted:
		return "aborted"
	case resp.Unreliable:
		return "unreliable"
	case resp.Success:
		return "ok"
	default:
		return "failed"
	}
}

func orDefault(v *int) interface{} {
	if v == nil {
		return "default"
	}
	return *v
}

func orDefaultFloat(v *float64) interface{} {
	if v == nil {
		return "default"
	}
	return *v
}
