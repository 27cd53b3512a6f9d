package infra

// Audit sheet generation using go-pdf/fpdf.
// Renders one accessory record with its descriptive fields and the full
// embedded audit trail, for printing or attaching to a hand-over.

import (
	"bytes"
	"fmt"

	"assettrack/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateAuditPDF renders an A4 audit sheet for a single record and
// returns the document bytes.
func GenerateAuditPDF(rec *model.AccessoryRecord) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, "Accessory Audit Sheet", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Record summary ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	summary := [][2]string{
		{"Asset type", rec.AssetType},
		{"Brand / model", fmt.Sprintf("%s %s", rec.Brand, rec.Model)},
		{"Serial number", rec.SerialNumber},
		{"Barcode", rec.Barcode},
		{"Location", rec.Location},
		{"Status", string(rec.Status)},
		{"Quantity", fmt.Sprintf("%d", rec.Quantity)},
		{"Borrower", rec.BorrowerOrNA()},
	}
	if rec.LineageID != nil {
		summary = append(summary, [2]string{"Split from", rec.LineageID.String()})
	}
	for _, row := range summary {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(40, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-40, 6, row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Audit trail table ────────────────────────────────────────────────────
	col1 := contentW * 0.20 // timestamp
	col2 := contentW * 0.15 // actor
	col3 := contentW * 0.13 // action
	col4 := contentW - col1 - col2 - col3

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "When", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Who", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "Action", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 6, "Description", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, e := range rec.AuditTrail {
		pdf.CellFormat(col1, 5, e.Timestamp.Format("02/01/2006 15:04"), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, e.Actor, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, e.Action, "", 0, "L", false, 0, "")
		pdf.MultiCell(col4, 5, e.Description, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
