package report

import (
	"io"

	"github.com/go-pdf/fpdf"
)

// PDFRenderer draws the document with fpdf. The PDF cross-reference table
// can only be written once every page is known, so bytes reach the writer
// when the document is closed.
type PDFRenderer struct {
	pdf       *fpdf.Fpdf
	out       io.Writer
	translate func(string) string
}

// NewPDFRenderer returns a PDFRenderer writing to out.
func NewPDFRenderer(out io.Writer, title string) *PDFRenderer {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, Margin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("trip-planner", true)
	return &PDFRenderer{
		pdf:       pdf,
		out:       out,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (p *PDFRenderer) FillRect(x, y, w, h float64, fill Color) {
	p.pdf.SetFillColor(fill.R, fill.G, fill.B)
	p.pdf.Rect(x, y, w, h, "F")
}

func (p *PDFRenderer) Text(x, y float64, style Style, s string) {
	fontStyle := ""
	if style.Bold {
		fontStyle = "B"
	}
	p.pdf.SetFont("Helvetica", fontStyle, style.Size)
	p.pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	p.pdf.Text(x, y, p.translate(s))
}

func (p *PDFRenderer) NewPage() error {
	p.pdf.AddPage()
	return p.pdf.Error()
}

func (p *PDFRenderer) Flush() error {
	return p.pdf.Error()
}

// Close writes the whole PDF to the underlying writer. Nothing is written
// before Close.
func (p *PDFRenderer) Close() error {
	return p.pdf.Output(p.out)
}

func (p *PDFRenderer) ContentType() string {
	return "application/pdf"
}
