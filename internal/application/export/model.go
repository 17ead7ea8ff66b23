package export

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/domain/tax"
)

// Party is a seller or buyer block of the compliance document. The standard
// requires the structural elements to be present even when a field is blank,
// so missing optional data degrades to "" instead of aborting the export.
type Party struct {
	Name        string
	Street      string
	Zip         string
	City        string
	CountryCode string // ISO 3166-1 alpha-2
	VATID       string
	TaxNumber   string
	Email       string
	Phone       string
	Fax         string
}

// Payment carries the payment terms and the seller's bank account.
type Payment struct {
	MeansCode string // UNTDID 4461
	IBAN      string
	BIC       string
	BankName  string
	DueDate   *time.Time
	Skonto    *entity.SkontoResult
}

// Position is one line of the compliance document with its derived tax
// category and percent rate.
type Position struct {
	Index       int
	Name        string
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	Category    tax.Category
	RatePercent decimal.Decimal
}

// TaxTableRow is one per-rate entry of the XML tax table, ordered ascending
// by rate (the display breakdown on the PDF orders descending; the two
// consumers are independent).
type TaxTableRow struct {
	Category      tax.Category
	RatePercent   decimal.Decimal
	Net           decimal.Decimal
	Tax           decimal.Decimal
	ExemptionNote string // only set on exempt / reverse-charge rows
}

// ComplianceDocument is the assembled view model an XML serializer or PDF
// renderer consumes. It is built fresh per export and never persisted.
type ComplianceDocument struct {
	Number    string
	TypeCode  string // UNTDID 1001
	IssueDate time.Time
	Currency  string
	Note      string // document-level note (exemption wording)

	Seller     Party
	Buyer      Party
	BuyerVATID string // resolved buyer VAT identifier (reverse charge)

	Payment   Payment
	Positions []Position
	TaxTable  []TaxTableRow

	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	GrandTotal decimal.Decimal
}

// Warning is a recoverable data gap found while building: the export still
// completes, the operator should fix the source data.
type Warning struct {
	Field   string
	Message string
}

// ExportResult is the finished artifact.
type ExportResult struct {
	Bytes    []byte
	Filename string
	MIME     string
	Warnings []Warning
}
