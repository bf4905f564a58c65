package cert

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Renderer produces completion certificate PDFs. It is a pure function of the
// student name and certificate id plus the static program identity it was
// constructed with.
type Renderer struct {
	orgName      string
	programTitle string
}

// NewRenderer constructs a certificate renderer.
func NewRenderer(orgName, programTitle string) *Renderer {
	return &Renderer{orgName: orgName, programTitle: programTitle}
}

// Render creates an A4 portrait certificate document.
func (r *Renderer) Render(studentName, certificateID string) ([]byte, error) {
	if studentName == "" || certificateID == "" {
		return nil, fmt.Errorf("student name and certificate id required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	width, height := pdf.GetPageSize()

	// Border
	pdf.SetDrawColor(42, 67, 101)
	pdf.SetLineWidth(1.8)
	pdf.Rect(12, 12, width-24, height-24, "D")

	// Title
	pdf.SetFont("Helvetica", "B", 26)
	pdf.SetTextColor(42, 67, 101)
	pdf.SetXY(0, 34)
	pdf.CellFormat(width, 12, "Certificate of Completion", "", 1, "C", false, 0, "")

	// Body
	pdf.SetTextColor(0, 0, 0)
	lines := []struct {
		text string
		bold bool
	}{
		{"This certifies that", false},
		{"", false},
		{studentName, true},
		{"", false},
		{"has successfully completed the program", false},
		{"", false},
		{r.programTitle, true},
		{"", false},
		{fmt.Sprintf("organized by %s.", r.orgName), false},
	}
	y := 62.0
	for _, line := range lines {
		style := ""
		if line.bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 12)
		pdf.SetXY(20, y)
		pdf.CellFormat(width-40, 8, line.text, "", 1, "C", false, 0, "")
		y += 9
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetXY(18, height-28)
	pdf.CellFormat(0, 6, fmt.Sprintf("Issued on: %s", time.Now().Format("2006-01-02")), "", 0, "L", false, 0, "")
	pdf.SetXY(-90, height-28)
	pdf.CellFormat(72, 6, fmt.Sprintf("Certificate ID: %s", certificateID), "", 0, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}
