package infra

// pdf.go — PDF receipt generation using go-pdf/fpdf.
// Generates A7-size thermal receipt-style documents with:
//   - Clinic name header
//   - Receipt number and timestamp
//   - Line item table (name, quantity, subtotal)
//   - Bold total
//   - Payment method
//
// The output file is saved to storagePath/receipt_{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"vetpos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateReceiptPDF renders a completed receipt to PDF. storagePath is the
// directory where the file will be written (created if needed). Returns the
// absolute path to the generated file.
func GenerateReceiptPDF(rec *model.Receipt, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("receipt_%d.pdf", rec.Number)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper (custom size, "A7" is not in fpdf's named list)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "VetPOS", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	branch := "Receipt"
	if rec.Branch != nil {
		branch = rec.Branch.Name
	}
	pdf.CellFormat(contentW, 5, branch, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Receipt info ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Receipt No. %d", rec.Number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, rec.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if rec.Customer != nil {
		pdf.CellFormat(contentW, 4, "Customer: "+rec.Customer.Name, "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // item name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	for _, item := range rec.Items {
		name := item.ItemName
		// Truncate long names
		if len(name) > 22 {
			name = name[:21] + "…"
		}
		pdf.CellFormat(col1, 5, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "$"+item.Subtotal().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Total ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+rec.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payment method ────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Paid ("+rec.PaymentMethod+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "$"+rec.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ────────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your visit!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
