package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type Renderer interface {
	Render(doc *InvoiceDocument) ([]byte, error)
}

type InvoiceLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// InvoiceDocument is the printable view of an invoice.
type InvoiceDocument struct {
	CenterName    string
	Currency      string
	InvoiceNumber string
	InvoiceType   string
	IssuedAt      time.Time
	DueDate       time.Time
	ParentName    string
	ParentEmail   string
	ChildName     string
	PeriodLabel   string
	Lines         []InvoiceLine
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
}

type FpdfRenderer struct{}

func NewFpdfRenderer() *FpdfRenderer {
	return &FpdfRenderer{}
}

func (r *FpdfRenderer) Render(doc *InvoiceDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil invoice document")
	}

	p := fpdf.New("P", "mm", "A4", "")
	tr := p.UnicodeTranslatorFromDescriptor("")
	p.SetTitle(doc.InvoiceNumber, true)
	p.AddPage()

	// Header
	p.SetFont("Helvetica", "B", 18)
	p.CellFormat(0, 10, tr(doc.CenterName), "", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 11)
	p.CellFormat(0, 6, tr("Invoice "+doc.InvoiceNumber), "", 1, "L", false, 0, "")
	p.CellFormat(0, 6, "Issued: "+doc.IssuedAt.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	p.CellFormat(0, 6, "Due: "+doc.DueDate.Format("02 Jan 2006"), "", 1, "L", false, 0, "")
	p.Ln(4)

	p.SetFont("Helvetica", "B", 11)
	p.CellFormat(0, 6, "Billed to", "", 1, "L", false, 0, "")
	p.SetFont("Helvetica", "", 11)
	p.CellFormat(0, 6, tr(doc.ParentName+" <"+doc.ParentEmail+">"), "", 1, "L", false, 0, "")
	p.CellFormat(0, 6, tr("Child: "+doc.ChildName), "", 1, "L", false, 0, "")
	p.CellFormat(0, 6, tr("Period: "+doc.PeriodLabel), "", 1, "L", false, 0, "")
	p.Ln(6)

	// Items table
	widths := []float64{95, 20, 35, 40}
	p.SetFont("Helvetica", "B", 10)
	p.SetFillColor(230, 230, 230)
	for i, h := range []string{"Description", "Qty", "Unit price", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		p.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	p.Ln(-1)

	p.SetFont("Helvetica", "", 10)
	for _, line := range doc.Lines {
		p.CellFormat(widths[0], 8, tr(line.Description), "1", 0, "L", false, 0, "")
		p.CellFormat(widths[1], 8, fmt.Sprintf("%d", line.Quantity), "1", 0, "R", false, 0, "")
		p.CellFormat(widths[2], 8, r.money(doc.Currency, line.UnitPrice), "1", 0, "R", false, 0, "")
		p.CellFormat(widths[3], 8, r.money(doc.Currency, line.TotalPrice), "1", 0, "R", false, 0, "")
		p.Ln(-1)
	}
	p.Ln(4)

	// Totals
	labelWidth := widths[0] + widths[1] + widths[2]
	for _, row := range []struct {
		label string
		value decimal.Decimal
		bold  bool
	}{
		{"Subtotal", doc.Subtotal, false},
		{"Tax", doc.TaxAmount, false},
		{"Total", doc.TotalAmount, true},
	} {
		style := ""
		if row.bold {
			style = "B"
		}
		p.SetFont("Helvetica", style, 11)
		p.CellFormat(labelWidth, 7, row.label, "", 0, "R", false, 0, "")
		p.CellFormat(widths[3], 7, r.money(doc.Currency, row.value), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", doc.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func (r *FpdfRenderer) money(currency string, amount decimal.Decimal) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}
