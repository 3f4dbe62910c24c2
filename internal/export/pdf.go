package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"seaplan/internal/plan/models"
)

type pdfRenderer struct{}

func (pdfRenderer) Render(plans []models.Plan) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "Navigation Plans")
	pdf.Ln(14)

	headers := []string{"ID", "Vessel", "Window Start", "Window End", "Status", "Rejection Reason"}
	widths := []float64{70, 26, 40, 40, 24, 70}

	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, p := range plans {
		reason := ""
		if p.RejectionReason != nil {
			reason = *p.RejectionReason
		}
		row := []string{
			p.ID.String(),
			p.VesselID,
			p.WindowStart.Format("2006-01-02 15:04"),
			p.WindowEnd.Format("2006-01-02 15:04"),
			p.Status.String(),
			reason,
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf export: %w", err)
	}
	return buf.Bytes(), nil
}

func (pdfRenderer) ContentType() string { return "application/pdf" }
