package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// TimetableSection groups rows rendered under one date heading.
type TimetableSection struct {
	Heading string
	Rows    [][]string
}

// TimetableDocument is a paginated, date-grouped exam timetable.
type TimetableDocument struct {
	Title    string
	Subtitle string
	Headers  []string
	Sections []TimetableSection
}

// TimetablePDFExporter renders timetable documents with wrapped, banded table
// rows, one section per exam date.
type TimetablePDFExporter struct{}

// NewTimetablePDFExporter constructs the PDF exporter.
func NewTimetablePDFExporter() *TimetablePDFExporter {
	return &TimetablePDFExporter{}
}

const (
	pdfLineHeight  = 5.0
	pdfCellPadding = 2.0
)

// Render produces the PDF bytes for the document.
func (e *TimetablePDFExporter) Render(doc TimetableDocument) ([]byte, error) {
	if len(doc.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, doc.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths := columnWidths(doc.Headers, pageWidth-left-right)

	for _, section := range doc.Sections {
		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 8, section.Heading, "", 1, "L", false, 0, "")

		e.printRow(pdf, doc.Headers, widths, true, 0)
		for i, row := range section.Rows {
			e.printRow(pdf, row, widths, false, i)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render timetable pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// printRow writes one logical row, wrapping each cell onto as many lines as
// its column width demands so every cell in the row spans the same height.
func (e *TimetablePDFExporter) printRow(pdf *gofpdf.Fpdf, cells []string, widths []float64, header bool, rowIdx int) {
	if header {
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFillColor(149, 33, 28)
	} else {
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(0, 0, 0)
		if rowIdx%2 == 1 {
			pdf.SetFillColor(240, 240, 240)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
	}

	wrapped := make([][]string, len(cells))
	maxLines := 1
	for i, cell := range cells {
		w := widths[i%len(widths)]
		wrapped[i] = wrapText(pdf, cell, w-pdfCellPadding)
		if len(wrapped[i]) > maxLines {
			maxLines = len(wrapped[i])
		}
	}

	for line := 0; line < maxLines; line++ {
		for i := range cells {
			text := ""
			if line < len(wrapped[i]) {
				text = wrapped[i][line]
			}
			pdf.CellFormat(widths[i%len(widths)], pdfLineHeight, text, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(pdfLineHeight)
	}
}

// wrapText splits text on word boundaries so each line fits the column width.
func wrapText(pdf *gofpdf.Fpdf, text string, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if pdf.GetStringWidth(candidate) <= width {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// columnWidths gives the subject column double weight and splits the rest
// evenly.
func columnWidths(headers []string, usable float64) []float64 {
	weights := make([]float64, len(headers))
	total := 0.0
	for i, h := range headers {
		weights[i] = 1
		if strings.EqualFold(h, "Subject") {
			weights[i] = 2
		}
		total += weights[i]
	}
	widths := make([]float64, len(headers))
	for i := range headers {
		widths[i] = usable * weights[i] / total
	}
	return widths
}
