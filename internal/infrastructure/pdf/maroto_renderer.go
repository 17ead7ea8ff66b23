// Package pdf renders the graphical representation of an invoice with
// Maroto v2.
//
// A4 page layout:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Seller name + VAT ID  │  Invoice no. + date         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SELLER: address / phone / email                             │
//	│  BUYER: name + address                                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLE: Pos | Menge | Beschreibung | Einzelpreis | USt | Ges.│
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALS: Nettobetrag / per-rate USt / Gesamtbetrag / Skonto  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: bank account + payment terms + exemption note       │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rechnungswerk/fiscal/internal/application/export"
)

// ── Color palette ─────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 20, Green: 45, Blue: 85}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// German number formatting (1.249,40 €).
var dePrinter = message.NewPrinter(language.German)

// ── Renderer ──────────────────────────────────────────────────────────────────

// MarotoRenderer implements export.PDFRenderer using Maroto v2.
type MarotoRenderer struct{}

// NewMarotoRenderer constructs the renderer.
func NewMarotoRenderer() *MarotoRenderer { return &MarotoRenderer{} }

// RenderInvoice renders the compliance document as PDF bytes.
func (r *MarotoRenderer) RenderInvoice(_ context.Context, doc *export.ComplianceDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Rechnung "+doc.Number, true).
		WithAuthor(doc.Seller.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sellerRow(doc.Seller))
	m.AddRows(buyerRow(doc.Buyer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, pos := range doc.Positions {
		m.AddRows(positionRow(pos))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	for _, r := range totalsRows(doc) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range footerRows(doc) {
		m.AddRows(r)
	}

	rendered, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate document: %w", err)
	}
	return rendered.GetBytes(), nil
}

// ── Sections ──────────────────────────────────────────────────────────────────

// headerRow: seller name + VAT ID (left), invoice number + date (right).
func headerRow(doc *export.ComplianceDocument) core.Row {
	taxLine := ""
	if doc.Seller.VATID != "" {
		taxLine = "USt-IdNr.: " + doc.Seller.VATID
	} else if doc.Seller.TaxNumber != "" {
		taxLine = "Steuernummer: " + doc.Seller.TaxNumber
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(doc.Seller.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(taxLine, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RECHNUNG", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(doc.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Datum: "+doc.IssueDate.Format("02.01.2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func sellerRow(seller export.Party) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("RECHNUNGSSTELLER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s, %s %s   |   Tel: %s   |   E-Mail: %s",
				nonEmpty(seller.Street, "—"),
				seller.Zip, seller.City,
				nonEmpty(seller.Phone, "—"),
				nonEmpty(seller.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func buyerRow(buyer export.Party) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("RECHNUNGSEMPFÄNGER", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(buyer.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("%s, %s %s", nonEmpty(buyer.Street, "—"), buyer.Zip, buyer.City),
				props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Pos.", 1, align.Center),
		h("Menge", 1, align.Center),
		h("Beschreibung", 5, align.Left),
		h("Einzelpreis", 2, align.Right),
		h("USt.", 1, align.Center),
		h("Gesamt", 2, align.Right),
	)
}

func positionRow(pos export.Position) core.Row {
	return row.New(7).Add(
		col.New(1).Add(text.New(
			fmt.Sprintf("%d", pos.Index),
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(1).Add(text.New(
			pos.Quantity.String(),
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(5).Add(text.New(
			pos.Name,
			props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
		)),
		col.New(2).Add(text.New(
			amount(pos.UnitPrice),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
		col.New(1).Add(text.New(
			pos.RatePercent.Round(0).String()+"%",
			props.Text{Size: 8, Align: align.Center, Top: 1},
		)),
		col.New(2).Add(text.New(
			amount(pos.Total),
			props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
		)),
	)
}

// totalsRows: net total, one line per tax rate (highest first, as displayed
// on paper), grand total and the skonto offer if present.
func totalsRows(doc *export.ComplianceDocument) []core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	pair := func(l, v string) core.Row {
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(label(l)),
			col.New(3).Add(value(v)),
		)
	}

	rows := []core.Row{pair("Nettobetrag:", amount(doc.Subtotal))}

	// The display order is highest rate first, opposite of the XML table.
	for i := len(doc.TaxTable) - 1; i >= 0; i-- {
		taxRow := doc.TaxTable[i]
		rows = append(rows, pair(
			fmt.Sprintf("zzgl. %s%% USt.:", taxRow.RatePercent.Round(0).String()),
			amount(taxRow.Tax),
		))
	}

	rows = append(rows, row.New(8).Add(
		col.New(6),
		col.New(3).Add(text.New("GESAMTBETRAG:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 1,
		})),
		col.New(3).Add(text.New(amount(doc.GrandTotal), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 1,
		})),
	))

	if skonto := doc.Payment.Skonto; skonto != nil {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("Bei Zahlung bis %s gewähren wir %s%% Skonto: %s",
				skonto.DueDate.Format("02.01.2006"),
				skonto.Percent.String(),
				amount(skonto.AmountDue),
			), props.Text{Size: 8, Align: align.Right, Right: 1, Color: colorGray}),
		)))
	}

	return rows
}

// footerRows: bank account, payment terms and the VAT exemption note.
func footerRows(doc *export.ComplianceDocument) []core.Row {
	var rows []core.Row

	if doc.Payment.IBAN != "" {
		bank := fmt.Sprintf("Bankverbindung: %s   IBAN: %s", nonEmpty(doc.Payment.BankName, "—"), doc.Payment.IBAN)
		if doc.Payment.BIC != "" {
			bank += "   BIC: " + doc.Payment.BIC
		}
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(bank, props.Text{Size: 7.5, Color: colorGray, Top: 1}),
		)))
	}

	if doc.Payment.DueDate != nil {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Zahlbar ohne Abzug bis "+doc.Payment.DueDate.Format("02.01.2006")+".",
				props.Text{Size: 7.5, Color: colorGray, Top: 1}),
		)))
	}

	if doc.Note != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(doc.Note, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)))
	}

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// amount formats a monetary value with German separators, e.g. "1.249,40 €".
func amount(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return dePrinter.Sprintf("%.2f €", f)
}
