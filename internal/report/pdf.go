// Package report renders a finished optimization for the shop floor: a
// one-page PDF setup sheet with a scannable QR ticket, and a spreadsheet
// export of scenario comparisons.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/luanshen/mga-optimizer/internal/domain"
	"github.com/luanshen/mga-optimizer/internal/optimize"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	qrSize       = 32.0
)

// TicketInfo holds the data encoded into the setup sheet's QR code, so an
// operator can scan the sheet at the machine and confirm the loaded
// parameters match the optimized ones.
type TicketInfo struct {
	ResultID   string  `json:"result_id"`
	ToolID     string  `json:"tool_id"`
	MaterialID string  `json:"material_id"`
	SpeedRPM   float64 `json:"speed_rpm"`
	FeedMMMin  float64 `json:"feed_mm_min"`
	CutDepthMM float64 `json:"cut_depth_mm"`
	CutWidthMM float64 `json:"cut_width_mm"`
}

// ExportSetupSheet generates a one-page PDF setup sheet for a finished
// optimization: the chosen parameters, all derived quantities, the search
// box with its reason, and the review items.
func ExportSetupSheet(path string, req optimize.Request, resp optimize.Response) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Cutting Parameter Setup Sheet", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(marginLeft, marginTop+10)
	sub := fmt.Sprintf("Result %s | tool %s | material %s | machine %s | strategy %s",
		resp.ID, req.ToolID, req.MaterialID, req.MachineID, req.StrategyID)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, sub, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+17, pageWidth-marginRight, marginTop+17)

	if err := renderTicketQR(pdf, req, resp); err != nil {
		return err
	}

	y := marginTop + 22.0
	y = renderParameterBlock(pdf, resp.Evaluation, y)
	y = renderDerivedBlock(pdf, resp.Evaluation, y)
	y = renderSearchBoxBlock(pdf, resp, y)
	if resp.Review != nil {
		renderReviewBlock(pdf, *resp.Review, y)
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by mga-optimizer - cutting parameter optimization", "", 0, "C", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

// renderTicketQR draws the scan-to-confirm QR code in the top right corner.
func renderTicketQR(pdf *fpdf.Fpdf, req optimize.Request, resp optimize.Response) error {
	info := TicketInfo{
		ResultID:   resp.ID,
		ToolID:     req.ToolID,
		MaterialID: req.MaterialID,
		SpeedRPM:   resp.Evaluation.SpeedRPM,
		FeedMMMin:  resp.Evaluation.FeedMMMin,
		CutDepthMM: resp.Evaluation.CutDepthMM,
		CutWidthMM: resp.Evaluation.CutWidthMM,
	}
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal ticket info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := "ticket_" + resp.ID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, pageWidth-marginRight-qrSize, marginTop+20, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(pageWidth-marginRight-qrSize, marginTop+20+qrSize)
	pdf.CellFormat(qrSize, 3, "scan to confirm parameters", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// renderParameterBlock draws the headline parameter triple in large type.
func renderParameterBlock(pdf *fpdf.Fpdf, ev domain.Evaluation, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Cutting Parameters", "", 0, "L", false, 0, "")
	y += 9

	params := []struct {
		label string
		value string
	}{
		{"Spindle Speed", fmt.Sprintf("%.2f r/min", ev.SpeedRPM)},
		{"Feed Rate", fmt.Sprintf("%.2f mm/min", ev.FeedMMMin)},
		{"Cut Depth", fmt.Sprintf("%.2f mm", ev.CutDepthMM)},
		{"Cut Width", fmt.Sprintf("%.2f mm", ev.CutWidthMM)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, p := range params {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 6, p.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(50, 6, p.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	return y + 4
}

// renderDerivedBlock draws the derived machining quantities as a table.
func renderDerivedBlock(pdf *fpdf.Fpdf, ev domain.Evaluation, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Derived Quantities", "", 0, "L", false, 0, "")
	y += 9

	rows := []struct {
		label string
		value string
	}{
		{"Material Removal Rate", fmt.Sprintf("%.2f cm3/min", ev.MRRCm3Min)},
		{"Cutting Speed", fmt.Sprintf("%.2f m/min", ev.CuttingSpeedMMin)},
		{"Feed per Tooth", fmt.Sprintf("%.4f mm", ev.FeedPerToothMM)},
		{"Spindle Power", fmt.Sprintf("%.2f kW", ev.PowerKW)},
		{"Spindle Torque", fmt.Sprintf("%.2f Nm", ev.TorqueNm)},
		{"Feed Force", fmt.Sprintf("%.2f N", ev.FeedForceN)},
		{"Tool Life", fmt.Sprintf("%.2f min", ev.ToolLifeMin)},
		{"Bottom Roughness Rz", fmt.Sprintf("%.2f um", ev.RzUM)},
		{"Side Roughness Rx", fmt.Sprintf("%.2f um", ev.RxUM)},
		{"Tool Deflection", fmt.Sprintf("%.4f mm", ev.DeflectionMM)},
	}

	colW := []float64{60, 50}
	pdf.SetFont("Helvetica", "", 9)
	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(colW[0], 5.5, row.label, "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW[1], 5.5, row.value, "1", 0, "R", true, 0, "")
		y += 5.5
	}
	return y + 6
}

// renderSearchBoxBlock draws the planner's box and its reason string.
func renderSearchBoxBlock(pdf *fpdf.Fpdf, resp optimize.Response, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Search Box", "", 0, "L", false, 0, "")
	y += 9

	box := resp.SearchBox
	lines := []string{
		fmt.Sprintf("speed %.0f - %.0f r/min | feed %.0f - %.0f mm/min", box.SpeedMinRPM, box.SpeedMaxRPM, box.FeedMinMMMin, box.FeedMaxMMMin),
		fmt.Sprintf("cut depth %.2f - %.2f mm | cut width %.2f - %.2f mm", box.CutDepthMinMM, box.CutDepthMaxMM, box.CutWidthMinMM, box.CutWidthMaxMM),
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range lines {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(pageWidth-marginLeft-marginRight-5, 5, line, "", 0, "L", false, 0, "")
		y += 5
	}

	if resp.SearchReason != "" {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(100, 100, 100)
		pdf.SetXY(marginLeft+5, y)
		pdf.MultiCell(pageWidth-marginLeft-marginRight-5, 4, resp.SearchReason, "", "L", false)
		y = pdf.GetY() + 2
		pdf.SetTextColor(0, 0, 0)
	}
	return y + 4
}

// renderReviewBlock draws the review items with severity coloring and the
// aggregate assessment.
func renderReviewBlock(pdf *fpdf.Fpdf, report domain.ReviewReport, y float64) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	title := fmt.Sprintf("Safety Review (score %.0f/100)", report.SafetyScore)
	pdf.CellFormat(130, 7, title, "", 0, "L", false, 0, "")
	y += 9

	colW := []float64{40, 22, 118}
	headers := []string{"Check", "Severity", "Message"}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	pdf.SetXY(x, y)
	for i, h := range headers {
		pdf.CellFormat(colW[i], 5.5, h, "1", 0, "C", true, 0, "")
		x += colW[i]
	}
	y += 5.5

	pdf.SetFont("Helvetica", "", 8)
	for _, item := range report.Items {
		r, g, b := severityColor(item.Severity)
		pdf.SetTextColor(r, g, b)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(colW[0], 5, item.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 5, item.Severity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colW[2], 5, truncate(pdf, item.Message, colW[2]-2), "1", 0, "L", false, 0, "")
		y += 5
	}
	pdf.SetTextColor(0, 0, 0)

	y += 3
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetXY(marginLeft, y)
	pdf.MultiCell(pageWidth-marginLeft-marginRight, 4.5, report.OverallAssessment, "", "L", false)
}

func severityColor(s domain.Severity) (int, int, int) {
	switch s {
	case domain.Critical:
		return 180, 0, 0
	case domain.Error:
		return 200, 80, 0
	case domain.Warning:
		return 150, 120, 0
	default:
		return 0, 110, 0
	}
}

// truncate shortens text to fit the given cell width.
func truncate(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}
