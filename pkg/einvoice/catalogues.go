// Package einvoice contains catalogues and fixed codes for EN 16931
// electronic invoices (XRechnung, ZUGFeRD/Factur-X).
package einvoice

// =============================================================================
// UNTDID 1001 - Document type codes (BT-3)
// =============================================================================

const (
	DocTypeInvoice    = "380" // Commercial invoice
	DocTypeCreditNote = "381" // Credit note
	DocTypeCorrection = "384" // Corrected invoice
)

// =============================================================================
// Customization / profile identifiers
// =============================================================================

const (
	// XRechnung 3.0 customization for UBL invoices (BT-24).
	XRechnungCustomizationID = "urn:cen.eu:en16931:2017#compliant#urn:xeinkauf.de:kosit:xrechnung_3.0"
	// Peppol billing profile (BT-23).
	XRechnungProfileID = "urn:fdc:peppol.eu:2017:poacc:billing:01:1.0"
	// Factur-X / ZUGFeRD EN 16931 (comfort) guideline for CII documents.
	ZUGFeRDGuidelineID = "urn:cen.eu:en16931:2017"
	// Name of the XML attachment inside a ZUGFeRD PDF. Fixed by the standard.
	ZUGFeRDAttachmentName = "factur-x.xml"
)

// =============================================================================
// UNTDID 4461 - Payment means (BT-81)
// =============================================================================

const (
	PaymentMeansSEPATransfer = "58" // SEPA credit transfer
	PaymentMeansTransfer     = "30" // Credit transfer (non-SEPA)
	PaymentMeansCash         = "10"
)

// =============================================================================
// UN/ECE Recommendation 20 - Unit codes (BT-130)
// =============================================================================

const (
	UnitPiece    = "C62" // one / piece, the default
	UnitHour     = "HUR"
	UnitDay      = "DAY"
	UnitKilogram = "KGM"
	UnitLitre    = "LTR"
	UnitMetre    = "MTR"
	UnitFlatRate = "LS" // lump sum
)

// ValidUnitCodes are the unit codes accepted on line items.
var ValidUnitCodes = map[string]bool{
	UnitPiece: true, UnitHour: true, UnitDay: true,
	UnitKilogram: true, UnitLitre: true, UnitMetre: true, UnitFlatRate: true,
}

// UnitOrDefault maps an empty unit to the standard piece code.
func UnitOrDefault(unit string) string {
	if unit == "" {
		return UnitPiece
	}
	return unit
}

// =============================================================================
// VAT exemption notes (BT-120). German wording as printed on documents.
// =============================================================================

const (
	NoteSmallBusiness = "Gemäß § 19 UStG wird keine Umsatzsteuer berechnet."
	NoteReverseCharge = "Steuerschuldnerschaft des Leistungsempfängers (Reverse Charge)."
	NoteTaxFree       = "Umsatzsteuerfreie Leistung."
)

// =============================================================================
// Tax scheme
// =============================================================================

const (
	TaxSchemeVAT    = "VAT"
	DefaultCurrency = "EUR"
)
