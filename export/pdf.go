package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pdfFontFamily = "sheet"

type pdfRenderer struct {
	fontPath string
}

// NewPDFRenderer lays the sheet out on an A4 page. Hangul needs a UTF-8
// TrueType font; without fontPath the core Helvetica font is used.
func NewPDFRenderer(fontPath string) *pdfRenderer {
	return &pdfRenderer{fontPath: fontPath}
}

func (r *pdfRenderer) ContentType() string { return "application/pdf" }
func (r *pdfRenderer) Ext() string         { return ".pdf" }

// column widths in mm, matching columns
var pdfColumns = []float64{12, 58, 20, 30, 34, 36}

func (r *pdfRenderer) Render(ctx context.Context, v *View) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	if r.fontPath != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", r.fontPath)
		family = pdfFontFamily
	}
	pdf.SetTitle(v.Title, true)
	pdf.AddPage()

	pdf.SetFont(family, "", 18)
	pdf.CellFormat(0, 12, v.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 10)
	pdf.CellFormat(0, 6, "일자: "+v.Header.Date, "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 6, "공급자: "+v.Header.Issuer, "", "L", false)
	pdf.MultiCell(0, 6, "수신: "+v.Header.Recipient, "", "L", false)
	pdf.Ln(4)

	pdf.SetFillColor(240, 240, 240)
	for i, h := range columns {
		pdf.CellFormat(pdfColumns[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for _, row := range v.Rows {
		for i, cell := range row.cells() {
			align := "L"
			if i >= 2 && i <= 4 {
				align = "R"
			}
			pdf.CellFormat(pdfColumns[i], 7, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(2)
	pdf.SetFont(family, "", 12)
	pdf.CellFormat(0, 8, "합계: "+v.GrandTotal, "", 1, "R", false, 0, "")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}
