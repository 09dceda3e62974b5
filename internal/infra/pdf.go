package infra

// pdf.go — Daily consolidation report rendering using go-pdf/fpdf.
// One A4 page per day: transfer table (session, expected, received,
// difference) followed by the day totals. The nightly job emails the file to
// the treasury address; the same renderer backs the download endpoint.

import (
	"fmt"
	"os"
	"path/filepath"

	"restopos/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateConsolidationPDF writes the consolidation report for one day to
// storagePath/consolidation_{date}.pdf and returns the absolute path.
func GenerateConsolidationPDF(c *dto.ConsolidationResponse, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("consolidation_%s.pdf", c.Date)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Daily Cash Consolidation", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, c.Date, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Transfer table ────────────────────────────────────────────────────────
	col1 := contentW * 0.34 // session
	col2 := contentW * 0.22 // expected
	col3 := contentW * 0.22 // received
	col4 := contentW * 0.22 // difference

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Session", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Expected", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 7, "Received", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Difference", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, t := range c.Transfers {
		session := t.SessionID
		if len(session) > 13 {
			session = session[:13] + "…"
		}
		received, difference := "pending", "-"
		if t.ReceivedAmount != nil {
			received = "$" + t.ReceivedAmount.StringFixed(2)
		}
		if t.Difference != nil {
			difference = "$" + t.Difference.StringFixed(2)
		}
		pdf.CellFormat(col1, 6, session, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, "$"+t.ExpectedAmount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 6, received, "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, difference, "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, fmt.Sprintf("%d transfers (%d confirmed)", c.TransferCount, c.ConfirmedCount), "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "$"+c.TotalExpected.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 7, "$"+c.TotalReceived.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "$"+c.TotalDifference.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
