package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/fiscal/internal/domain"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/domain/finance"
	"github.com/rechnungswerk/fiscal/internal/domain/tax"
	"github.com/rechnungswerk/fiscal/pkg/einvoice"
)

// Builder assembles the compliance document model from a persisted invoice,
// its seller and its customer. The builder distinguishes recoverable gaps
// (blank optional fields, returned as warnings) from structural failures
// (missing seller name, wrong document type), which abort the build.
type Builder struct{}

// NewBuilder constructs the builder.
func NewBuilder() *Builder { return &Builder{} }

// Build produces the document model. Totals and the tax table are computed
// from the line items on every call; compliance output must never depend on
// possibly stale persisted totals.
func (b *Builder) Build(inv *entity.Invoice, seller *entity.Seller, customer *entity.Customer) (*ComplianceDocument, []Warning, error) {
	if inv == nil {
		return nil, nil, domain.ErrInvalidInput
	}
	if inv.Type != entity.DocumentTypeInvoice {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNotFiscal, inv.Type)
	}
	if seller == nil || strings.TrimSpace(seller.Name) == "" {
		return nil, nil, domain.ErrMissingSeller
	}
	if customer == nil {
		return nil, nil, domain.ErrMissingBuyer
	}
	if len(inv.Items) == 0 {
		return nil, nil, domain.ErrEmptyDocument
	}

	var warnings []Warning
	warn := func(field, message string) {
		warnings = append(warnings, Warning{Field: field, Message: message})
	}

	// The small-business status of the seller exempts the document like an
	// explicit exemption type does.
	vatExempt := inv.VATExempt() || seller.SmallBusiness
	vatFree := inv.ReverseCharge || vatExempt

	currency := inv.Currency
	if currency == "" {
		currency = einvoice.DefaultCurrency
	}

	doc := &ComplianceDocument{
		Number:    inv.Number,
		TypeCode:  einvoice.DocTypeInvoice,
		IssueDate: inv.Date,
		Currency:  currency,
		Seller:    sellerParty(seller, warn),
		Buyer:     buyerParty(customer, warn),
	}

	// Positions. The first line of the free-text description is the item
	// name, the remainder its description.
	for i, item := range inv.Items {
		name, description := splitDescription(item.Description)
		if name == "" {
			name = fmt.Sprintf("Position %d", i+1)
			warn(fmt.Sprintf("items[%d].description", i), "line item has no description")
		}
		ratePercent := tax.ToPercent(item.EffectiveRate(inv.DefaultTaxRate))
		category := tax.Classify(inv.ReverseCharge, vatExempt, ratePercent)
		if vatFree {
			// An exempt document cannot report partial non-zero rates.
			ratePercent = decimal.Zero
		}
		doc.Positions = append(doc.Positions, Position{
			Index:       i + 1,
			Name:        name,
			Description: description,
			Quantity:    item.Quantity,
			Unit:        einvoice.UnitOrDefault(item.Unit),
			UnitPrice:   item.UnitPrice,
			Total:       finance.ComputeLineTotal(item),
			Category:    category,
			RatePercent: ratePercent,
		})
	}

	// Totals and tax table.
	totals := finance.ComputeDocumentTotals(inv.Items, inv.DefaultTaxRate, inv.Skonto, inv.Date)
	doc.Subtotal = totals.Subtotal
	if vatFree {
		// Single 0% row covering the full subtotal, no tax. Skonto is
		// recomputed against the untaxed payable.
		doc.TaxAmount = decimal.Zero
		doc.GrandTotal = totals.Subtotal
		totals.Skonto = finance.ComputeSkonto(totals.Subtotal, inv.Skonto, inv.Date)
		doc.TaxTable = []TaxTableRow{{
			Category:      tax.Classify(inv.ReverseCharge, vatExempt, decimal.Zero),
			RatePercent:   decimal.Zero,
			Net:           totals.Subtotal,
			Tax:           decimal.Zero,
			ExemptionNote: exemptionNote(inv, seller),
		}}
		doc.Note = exemptionNote(inv, seller)
	} else {
		doc.TaxAmount = totals.TaxAmount
		doc.GrandTotal = totals.GrandTotal
		for _, row := range totals.Breakdown {
			percent := tax.ToPercent(row.Rate)
			doc.TaxTable = append(doc.TaxTable, TaxTableRow{
				Category:    tax.Classify(false, false, percent),
				RatePercent: percent,
				Net:         row.Net,
				Tax:         row.Tax,
			})
		}
		// The XML tax table orders ascending by rate, the opposite of the
		// display breakdown.
		sort.Slice(doc.TaxTable, func(i, j int) bool {
			return doc.TaxTable[i].RatePercent.LessThan(doc.TaxTable[j].RatePercent)
		})
	}

	// Buyer VAT identification: the document-level override wins, then the
	// customer's stored VAT number.
	if inv.ReverseCharge {
		doc.BuyerVATID = inv.BuyerVATID
		if doc.BuyerVATID == "" {
			doc.BuyerVATID = customer.VATNumber
		}
		if doc.BuyerVATID == "" {
			warn("buyer.vat_id", "reverse charge document without a buyer VAT identifier")
		}
	} else {
		doc.BuyerVATID = customer.VATNumber
	}

	doc.Payment = paymentBlock(inv, seller, totals, warn)

	return doc, warnings, nil
}

func splitDescription(text string) (name, description string) {
	parts := strings.SplitN(strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")), "\n", 2)
	name = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		description = strings.TrimSpace(parts[1])
	}
	return name, description
}

func exemptionNote(inv *entity.Invoice, seller *entity.Seller) string {
	switch {
	case inv.ReverseCharge:
		return einvoice.NoteReverseCharge
	case seller.SmallBusiness || inv.ExemptionType == entity.ExemptionSmallBusiness:
		return einvoice.NoteSmallBusiness
	default:
		return einvoice.NoteTaxFree
	}
}

func sellerParty(seller *entity.Seller, warn func(field, message string)) Party {
	for _, f := range []struct{ field, value string }{
		{"seller.street", seller.Street},
		{"seller.zip", seller.Zip},
		{"seller.city", seller.City},
		{"seller.email", seller.Email},
	} {
		if f.value == "" {
			warn(f.field, "missing, emitted blank")
		}
	}
	if seller.VATID == "" && seller.TaxNumber == "" {
		warn("seller.vat_id", "seller has neither VAT ID nor tax number")
	}
	return Party{
		Name:        seller.Name,
		Street:      seller.Street,
		Zip:         seller.Zip,
		City:        seller.City,
		CountryCode: einvoice.CountryCode(seller.Country),
		VATID:       seller.VATID,
		TaxNumber:   seller.TaxNumber,
		Email:       seller.Email,
		Phone:       seller.Phone,
		Fax:         seller.Fax,
	}
}

func buyerParty(customer *entity.Customer, warn func(field, message string)) Party {
	if customer.Name == "" {
		warn("buyer.name", "missing, emitted blank")
	}
	for _, f := range []struct{ field, value string }{
		{"buyer.street", customer.Street},
		{"buyer.zip", customer.Zip},
		{"buyer.city", customer.City},
	} {
		if f.value == "" {
			warn(f.field, "missing, emitted blank")
		}
	}
	return Party{
		Name:        customer.Name,
		Street:      customer.Street,
		Zip:         customer.Zip,
		City:        customer.City,
		CountryCode: einvoice.CountryCode(customer.Country),
		VATID:       customer.VATNumber,
		Email:       customer.Email,
		Phone:       customer.Phone,
	}
}

func paymentBlock(inv *entity.Invoice, seller *entity.Seller, totals entity.FinancialTotals, warn func(field, message string)) Payment {
	means := einvoice.PaymentMeansSEPATransfer
	if seller.IBAN == "" {
		means = einvoice.PaymentMeansTransfer
		warn("seller.iban", "no bank account configured")
	} else if seller.BIC == "" {
		warn("seller.bic", "missing, emitted blank")
	}
	return Payment{
		MeansCode: means,
		IBAN:      seller.IBAN,
		BIC:       seller.BIC,
		BankName:  seller.BankName,
		DueDate:   inv.DueDate,
		Skonto:    totals.Skonto,
	}
}
