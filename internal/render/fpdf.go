package render

import (
	"bytes"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Fixed so identical command streams produce byte-identical files.
var pdfEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// EncodePDF replays a command stream onto an A4 page. Commands use a
// bottom-left origin; gofpdf uses top-left, so every y is flipped here.
func EncodePDF(cmds []Command) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case SetFont:
			pdf.SetFont(c.Family, c.Style, c.Size)
		case Text:
			pdf.Text(c.X, pageHeight-c.Y, tr(asciiCurrency(c.S)))
		case Rect:
			if c.Fill {
				g := int(c.Gray * 255)
				pdf.SetFillColor(g, g, g)
				pdf.Rect(c.X, pageHeight-c.Y-c.H, c.W, c.H, "F")
			} else {
				pdf.Rect(c.X, pageHeight-c.Y-c.H, c.W, c.H, "D")
			}
		case Line:
			pdf.Line(c.X1, pageHeight-c.Y1, c.X2, pageHeight-c.Y2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// The built-in core fonts have no rupee glyph.
func asciiCurrency(s string) string {
	return strings.ReplaceAll(s, "₹", "Rs. ")
}
