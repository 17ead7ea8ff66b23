package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType distinguishes the numbered document kinds. Offers share the
// numbering and totals machinery with invoices but are not fiscal documents
// and cannot be exported as e-invoices.
type DocumentType string

const (
	DocumentTypeInvoice DocumentType = "invoice"
	DocumentTypeOffer   DocumentType = "offer"
)

// VAT exemption kinds. ExemptionSmallBusiness is the German §19 UStG
// Kleinunternehmer status; ExemptionTaxFree covers explicitly tax-free
// supplies (§4 UStG).
const (
	ExemptionNone          = ""
	ExemptionSmallBusiness = "small_business"
	ExemptionTaxFree       = "tax_free"
)

// Invoice is the header of an invoice or offer. Monetary fields are computed
// by the finance package and stored back here before persistence.
type Invoice struct {
	ID         string
	CompanyID  string
	CustomerID string
	Type       DocumentType
	Number     string
	Date       time.Time
	DueDate    *time.Time
	Currency   string // ISO 4217, defaults to EUR

	// DefaultTaxRate applies to every line without its own rate. It may be
	// stored as a fraction (0.19) or a percent (19); consumers normalize via
	// tax.ToPercent before comparing.
	DefaultTaxRate decimal.Decimal

	// ReverseCharge shifts VAT liability to the buyer (§13b UStG). The whole
	// document is then reported at 0% regardless of per-line rates.
	ReverseCharge bool
	// ExemptionType marks a VAT-exempt document (see Exemption* constants).
	ExemptionType string
	// BuyerVATID overrides the customer's stored VAT number on the document;
	// used for the reverse-charge buyer identification.
	BuyerVATID string

	Items  []LineItem
	Totals FinancialTotals
	Skonto *SkontoTerms

	CreatedAt time.Time
	UpdatedAt time.Time
}

// VATExempt reports whether the document must not charge VAT at all.
func (inv *Invoice) VATExempt() bool {
	return inv.ExemptionType != ExemptionNone
}

// VATFree reports whether the tax table collapses to a single 0% row
// (reverse charge or exemption).
func (inv *Invoice) VATFree() bool {
	return inv.ReverseCharge || inv.VATExempt()
}
