package render

import (
	"fmt"
	"time"

	"github.com/quillbooks/quillbooks/internal/money"
)

const (
	pageMargin = 50.0
	contentTop = 750.0

	rowHeight = 20.0
	cellInset = 5.0
	// Text baselines sit this far above the row bottom.
	textRise = 6.0

	headerGray = 0.90
	altRowGray = 0.95

	metaStep    = 15.0
	sectionStep = 25.0
	titleStep   = 30.0

	totalsRowHeight   = 25.0
	invoiceTotalsW    = 250.0
	quotationTotalsW  = 200.0
	totalsValueInset  = 100.0
	metaColumnX       = 380.0
	footerTop         = 170.0
	thankYouY         = 80.0
)

const dateLayout = "02 Jan 2006"

type column struct {
	title string
	width float64
}

var invoiceColumns = []column{
	{"#", 30}, {"Description", 150}, {"License", 70}, {"Qty", 40},
	{"Unit Price", 70}, {"Discount", 60}, {"Tax", 50}, {"Amount", 70},
}

var quotationColumns = []column{
	{"#", 30}, {"Description", 200}, {"License", 80}, {"Qty", 50},
	{"Unit Price", 80}, {"Amount", 80},
}

var invoiceTerms = []string{
	"Payment due within 30 days",
	"Late payment charges: 2% per month",
	"All disputes subject to Coimbatore jurisdiction",
}

type totalsRow struct {
	label string
	value string
	grand bool
}

// Layout turns a document into a single-page command stream. It is pure; the
// same document always yields the same commands.
func Layout(doc *Document) []Command {
	if doc.Kind == KindQuotation {
		return buildQuotation(doc)
	}
	return buildInvoice(doc)
}

func buildInvoice(doc *Document) []Command {
	p := &page{}
	y := contentTop

	p.setFont("Helvetica", "B", 20)
	p.text(pageMargin, y, "INVOICE")
	p.metaBlock(y, []string{
		"Invoice No: " + doc.Number,
		"Date: " + doc.Date.Format(dateLayout),
		"Due Date: " + doc.DueDate.Format(dateLayout),
	})
	y -= titleStep

	y = p.sellerBlock(y)
	y = p.partyBlock(y, "Bill To:", doc.Customer)

	rows := make([][]string, 0, len(doc.Lines))
	for i, line := range doc.Lines {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			truncate(line.Description, 30),
			line.LicenseType,
			line.Quantity.String(),
			money.FormatAmount(line.UnitPrice),
			money.FormatPercent(line.DiscountPercent),
			money.FormatPercent(line.TaxPercent),
			money.FormatAmount(line.Amount),
		})
	}
	y = p.table(y, invoiceColumns, rows)
	y -= metaStep

	p.totalsBox(y, invoiceColumns, invoiceTotalsW, []totalsRow{
		{label: "Subtotal", value: money.FormatAmount(doc.Subtotal)},
		{label: "Discount", value: money.FormatAmount(doc.DiscountAmount)},
		{label: "Tax", value: money.FormatAmount(doc.TaxAmount)},
		{label: "Grand Total", value: money.FormatAmount(doc.TotalAmount), grand: true},
	})

	p.notesBlock(doc.Notes)
	p.footer("Terms & Conditions:", invoiceTerms)
	return p.cmds
}

func buildQuotation(doc *Document) []Command {
	p := &page{}
	y := contentTop

	p.setFont("Helvetica", "B", 20)
	p.text(pageMargin, y, "QUOTATION")
	p.metaBlock(y, []string{
		"Quote No: " + doc.Number,
		"Date: " + doc.Date.Format(dateLayout),
		"Valid Until: " + validUntil(doc.Date, doc.ValidityDays).Format(dateLayout),
	})
	y -= titleStep

	y = p.sellerBlock(y)
	y = p.partyBlock(y, "Quote For:", doc.Customer)

	rows := make([][]string, 0, len(doc.Lines))
	for i, line := range doc.Lines {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			truncate(line.Description, 40),
			line.LicenseType,
			line.Quantity.String(),
			money.FormatAmount(line.UnitPrice),
			money.FormatAmount(line.Amount),
		})
	}
	y = p.table(y, quotationColumns, rows)
	y -= metaStep

	// Zero-rate rows add no information on a flat-rate document.
	totals := []totalsRow{{label: "Subtotal", value: money.FormatAmount(doc.Subtotal)}}
	if !doc.DiscountPercent.IsZero() {
		totals = append(totals, totalsRow{label: "Discount (" + money.FormatPercent(doc.DiscountPercent) + ")", value: money.FormatAmount(doc.DiscountAmount)})
	}
	if !doc.TaxPercent.IsZero() {
		totals = append(totals, totalsRow{label: "Tax (" + money.FormatPercent(doc.TaxPercent) + ")", value: money.FormatAmount(doc.TaxAmount)})
	}
	totals = append(totals, totalsRow{label: "Grand Total", value: money.FormatAmount(doc.TotalAmount), grand: true})
	p.totalsBox(y, quotationColumns, quotationTotalsW, totals)

	p.notesBlock(doc.Notes)
	p.footer("Terms & Conditions:", []string{
		fmt.Sprintf("This quotation is valid for %d days from the date above", doc.ValidityDays),
		"Payment: 50% advance, 50% before delivery",
		"Delivery within 15 days of order confirmation",
	})
	return p.cmds
}

// page accumulates commands and deduplicates font switches.
type page struct {
	cmds []Command
	font SetFont
}

func (p *page) setFont(family, style string, size float64) {
	f := SetFont{Family: family, Style: style, Size: size}
	if f == p.font {
		return
	}
	p.font = f
	p.cmds = append(p.cmds, f)
}

func (p *page) text(x, y float64, s string) {
	p.cmds = append(p.cmds, Text{X: x, Y: y, S: s})
}

func (p *page) fillRect(x, y, w, h, gray float64) {
	p.cmds = append(p.cmds, Rect{X: x, Y: y, W: w, H: h, Gray: gray, Fill: true})
}

func (p *page) strokeRect(x, y, w, h float64) {
	p.cmds = append(p.cmds, Rect{X: x, Y: y, W: w, H: h})
}

func (p *page) line(x1, y1, x2, y2 float64) {
	p.cmds = append(p.cmds, Line{X1: x1, Y1: y1, X2: x2, Y2: y2})
}

func (p *page) metaBlock(y float64, lines []string) {
	for i, s := range lines {
		if i == 0 {
			p.setFont("Helvetica", "B", 10)
		} else {
			p.setFont("Helvetica", "", 10)
		}
		p.text(metaColumnX, y, s)
		y -= metaStep
	}
}

func (p *page) sellerBlock(y float64) float64 {
	p.setFont("Helvetica", "B", 12)
	p.text(pageMargin, y, sellerName)
	y -= metaStep

	p.setFont("Helvetica", "", 9)
	for _, s := range []string{
		sellerAddress,
		"Email: " + sellerEmail + "  Phone: " + sellerPhone,
		"Web: " + sellerWebsite + "  GSTIN: " + sellerGSTIN,
	} {
		p.text(pageMargin, y, s)
		y -= metaStep
	}
	return y - metaStep
}

func (p *page) partyBlock(y float64, heading string, party Party) float64 {
	p.setFont("Helvetica", "B", 11)
	p.text(pageMargin, y, heading)
	y -= metaStep

	lines := []string{party.Name}
	if party.Address != "" {
		lines = append(lines, party.Address)
	}
	if s := cityLine(party); s != "" {
		lines = append(lines, s)
	}
	if party.GSTIN != "" {
		lines = append(lines, "GSTIN: "+party.GSTIN)
	}

	p.setFont("Helvetica", "", 10)
	for _, s := range lines {
		p.text(pageMargin, y, s)
		y -= metaStep
	}
	return y - sectionStep + metaStep
}

// table draws a header row plus one row per entry and returns the y below the
// table. Odd rows get a light fill.
func (p *page) table(y float64, cols []column, rows [][]string) float64 {
	width := tableWidth(cols)
	top := y

	p.fillRect(pageMargin, y-rowHeight, width, rowHeight, headerGray)
	p.setFont("Helvetica", "B", 9)
	x := pageMargin
	for _, col := range cols {
		p.text(x+cellInset, y-rowHeight+textRise, col.title)
		x += col.width
	}
	y -= rowHeight

	p.setFont("Helvetica", "", 9)
	for i, row := range rows {
		if i%2 == 1 {
			p.fillRect(pageMargin, y-rowHeight, width, rowHeight, altRowGray)
		}
		x = pageMargin
		for j, cell := range row {
			p.text(x+cellInset, y-rowHeight+textRise, cell)
			x += cols[j].width
		}
		y -= rowHeight
		p.line(pageMargin, y, pageMargin+width, y)
	}

	// Grid: outer border and column separators.
	p.strokeRect(pageMargin, y, width, top-y)
	x = pageMargin
	for _, col := range cols[:len(cols)-1] {
		x += col.width
		p.line(x, top, x, y)
	}
	return y
}

// totalsBox is right-aligned to the table edge. Height follows the row count.
func (p *page) totalsBox(y float64, cols []column, boxWidth float64, rows []totalsRow) {
	height := totalsRowHeight * float64(len(rows))
	x := pageMargin + tableWidth(cols) - boxWidth

	p.strokeRect(x, y-height, boxWidth, height)
	rowTop := y
	for _, row := range rows {
		if row.grand {
			p.fillRect(x, rowTop-totalsRowHeight, boxWidth, totalsRowHeight, headerGray)
			p.setFont("Helvetica", "B", 10)
		} else {
			p.setFont("Helvetica", "", 10)
		}
		p.text(x+cellInset, rowTop-totalsRowHeight+textRise+2, row.label)
		p.text(x+boxWidth-totalsValueInset, rowTop-totalsRowHeight+textRise+2, row.value)
		rowTop -= totalsRowHeight
		if rowTop > y-height {
			p.line(x, rowTop, x+boxWidth, rowTop)
		}
	}
}

func (p *page) notesBlock(notes string) {
	if notes == "" {
		return
	}
	y := footerTop + 60
	p.setFont("Helvetica", "B", 10)
	p.text(pageMargin, y, "Notes:")
	p.setFont("Helvetica", "", 9)
	p.text(pageMargin, y-metaStep, truncate(notes, 110))
}

func (p *page) footer(heading string, terms []string) {
	y := footerTop
	p.setFont("Helvetica", "B", 10)
	p.text(pageMargin, y, heading)
	y -= metaStep

	p.setFont("Helvetica", "", 9)
	for _, s := range terms {
		p.text(pageMargin, y, "- "+s)
		y -= metaStep
	}

	p.setFont("Helvetica", "B", 10)
	p.text(pageMargin, thankYouY, "Thank you for your business!")
}

func tableWidth(cols []column) float64 {
	var w float64
	for _, col := range cols {
		w += col.width
	}
	return w
}

func validUntil(date time.Time, days int) time.Time {
	return date.AddDate(0, 0, days)
}

func cityLine(party Party) string {
	s := party.City
	if party.State != "" {
		if s != "" {
			s += ", "
		}
		s += party.State
	}
	if party.PostalCode != "" {
		if s != "" {
			s += " - "
		}
		s += party.PostalCode
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
