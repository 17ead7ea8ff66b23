// Package xrechnung serializes a compliance document as an EN 16931 / UBL 2.1
// invoice conforming to the XRechnung 3.0 customization.
package xrechnung

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/fiscal/internal/application/export"
	"github.com/rechnungswerk/fiscal/pkg/einvoice"
)

// Official UBL 2.1 namespaces.
const (
	// Default namespace (UBL Invoice)
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

// Serializer emits the UBL Invoice document.
type Serializer struct{}

// NewSerializer creates the serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Serialize generates the UTF-8 XML bytes of the UBL Invoice.
func (s *Serializer) Serialize(doc *export.ComplianceDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("xrechnung: document is nil")
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "Invoice"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "xmlns"}, Value: NsInvoice},
			{Name: xml.Name{Local: "xmlns:cac"}, Value: NsCac},
			{Name: xml.Name{Local: "xmlns:cbc"}, Value: NsCbc},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	// ---- cbc: header elements, order fixed by the UBL schema
	writeCbc(enc, "CustomizationID", einvoice.XRechnungCustomizationID)
	writeCbc(enc, "ProfileID", einvoice.XRechnungProfileID)
	writeCbc(enc, "ID", doc.Number)
	writeCbc(enc, "IssueDate", doc.IssueDate.Format("2006-01-02"))
	if doc.Payment.DueDate != nil {
		writeCbc(enc, "DueDate", doc.Payment.DueDate.Format("2006-01-02"))
	}
	writeCbc(enc, "InvoiceTypeCode", doc.TypeCode)
	if doc.Note != "" {
		writeCbc(enc, "Note", doc.Note)
	}
	writeCbc(enc, "DocumentCurrencyCode", doc.Currency)
	// BT-10: without an order reference the buyer name serves as reference.
	writeCbc(enc, "BuyerReference", doc.Buyer.Name)

	// ---- cac:AccountingSupplierParty
	s.writeParty(enc, "AccountingSupplierParty", doc.Seller, doc.Seller.VATID)
	// ---- cac:AccountingCustomerParty
	s.writeParty(enc, "AccountingCustomerParty", doc.Buyer, doc.BuyerVATID)
	// ---- cac:PaymentMeans
	s.writePaymentMeans(enc, doc)
	// ---- cac:PaymentTerms
	s.writePaymentTerms(enc, doc)
	// ---- cac:TaxTotal
	s.writeTaxTotal(enc, doc)
	// ---- cac:LegalMonetaryTotal
	s.writeMonetaryTotal(enc, doc)
	// ---- cac:InvoiceLine per position
	for _, pos := range doc.Positions {
		s.writeInvoiceLine(enc, doc.Currency, pos)
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCbc(enc *xml.Encoder, local, value string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "cbc:" + local}})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "cbc:" + local}})
}

func writeCbcAmount(enc *xml.Encoder, local, value, currency string) {
	attr := []xml.Attr{}
	if currency != "" {
		attr = append(attr, xml.Attr{Name: xml.Name{Local: "currencyID"}, Value: currency})
	}
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "cbc:" + local}, Attr: attr})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "cbc:" + local}})
}

func writeCbcWithAttr(enc *xml.Encoder, local, value, attrLocal, attrValue string) {
	_ = enc.EncodeToken(xml.StartElement{
		Name: xml.Name{Local: "cbc:" + local},
		Attr: []xml.Attr{{Name: xml.Name{Local: attrLocal}, Value: attrValue}},
	})
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "cbc:" + local}})
}

func startCac(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.StartElement{Name: xml.Name{Local: "cac:" + local}})
}

func endCac(enc *xml.Encoder, local string) {
	_ = enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: "cac:" + local}})
}

// writeParty emits a supplier or customer block. Blank optional fields are
// still written as empty elements where the schema requires their parents.
func (s *Serializer) writeParty(enc *xml.Encoder, container string, party export.Party, vatID string) {
	startCac(enc, container)
	startCac(enc, "Party")

	startCac(enc, "PostalAddress")
	writeCbc(enc, "StreetName", party.Street)
	writeCbc(enc, "CityName", party.City)
	writeCbc(enc, "PostalZone", party.Zip)
	startCac(enc, "Country")
	writeCbc(enc, "IdentificationCode", party.CountryCode)
	endCac(enc, "Country")
	endCac(enc, "PostalAddress")

	if vatID != "" {
		startCac(enc, "PartyTaxScheme")
		writeCbc(enc, "CompanyID", vatID)
		startCac(enc, "TaxScheme")
		writeCbc(enc, "ID", einvoice.TaxSchemeVAT)
		endCac(enc, "TaxScheme")
		endCac(enc, "PartyTaxScheme")
	}

	startCac(enc, "PartyLegalEntity")
	writeCbc(enc, "RegistrationName", party.Name)
	if party.TaxNumber != "" {
		writeCbc(enc, "CompanyID", party.TaxNumber)
	}
	endCac(enc, "PartyLegalEntity")

	if party.Email != "" || party.Phone != "" {
		startCac(enc, "Contact")
		if party.Phone != "" {
			writeCbc(enc, "Telephone", party.Phone)
		}
		if party.Email != "" {
			writeCbc(enc, "ElectronicMail", party.Email)
		}
		endCac(enc, "Contact")
	}

	endCac(enc, "Party")
	endCac(enc, container)
}

func (s *Serializer) writePaymentMeans(enc *xml.Encoder, doc *export.ComplianceDocument) {
	startCac(enc, "PaymentMeans")
	writeCbc(enc, "PaymentMeansCode", doc.Payment.MeansCode)
	if doc.Payment.IBAN != "" {
		startCac(enc, "PayeeFinancialAccount")
		writeCbc(enc, "ID", doc.Payment.IBAN)
		if doc.Payment.BankName != "" {
			writeCbc(enc, "Name", doc.Payment.BankName)
		}
		if doc.Payment.BIC != "" {
			startCac(enc, "FinancialInstitutionBranch")
			writeCbc(enc, "ID", doc.Payment.BIC)
			endCac(enc, "FinancialInstitutionBranch")
		}
		endCac(enc, "PayeeFinancialAccount")
	}
	endCac(enc, "PaymentMeans")
}

func (s *Serializer) writePaymentTerms(enc *xml.Encoder, doc *export.ComplianceDocument) {
	skonto := doc.Payment.Skonto
	if skonto == nil && doc.Payment.DueDate == nil {
		return
	}
	startCac(enc, "PaymentTerms")
	if skonto != nil {
		writeCbc(enc, "Note", fmt.Sprintf("%s%% Skonto bei Zahlung innerhalb von %d Tagen (%s statt %s)",
			skonto.Percent.String(), skonto.Days,
			formatDecimal(skonto.AmountDue), formatDecimal(skonto.AmountDue.Add(skonto.Amount))))
	} else {
		writeCbc(enc, "Note", fmt.Sprintf("Zahlbar bis %s", doc.Payment.DueDate.Format("02.01.2006")))
	}
	endCac(enc, "PaymentTerms")
}

func (s *Serializer) writeTaxTotal(enc *xml.Encoder, doc *export.ComplianceDocument) {
	startCac(enc, "TaxTotal")
	writeCbcAmount(enc, "TaxAmount", formatDecimal(doc.TaxAmount), doc.Currency)
	for _, row := range doc.TaxTable {
		startCac(enc, "TaxSubtotal")
		writeCbcAmount(enc, "TaxableAmount", formatDecimal(row.Net), doc.Currency)
		writeCbcAmount(enc, "TaxAmount", formatDecimal(row.Tax), doc.Currency)
		startCac(enc, "TaxCategory")
		writeCbc(enc, "ID", row.Category.Code())
		writeCbc(enc, "Percent", formatPercent(row.RatePercent))
		if row.ExemptionNote != "" {
			writeCbc(enc, "TaxExemptionReason", row.ExemptionNote)
		}
		startCac(enc, "TaxScheme")
		writeCbc(enc, "ID", einvoice.TaxSchemeVAT)
		endCac(enc, "TaxScheme")
		endCac(enc, "TaxCategory")
		endCac(enc, "TaxSubtotal")
	}
	endCac(enc, "TaxTotal")
}

func (s *Serializer) writeMonetaryTotal(enc *xml.Encoder, doc *export.ComplianceDocument) {
	startCac(enc, "LegalMonetaryTotal")
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(doc.Subtotal), doc.Currency)
	writeCbcAmount(enc, "TaxExclusiveAmount", formatDecimal(doc.Subtotal), doc.Currency)
	writeCbcAmount(enc, "TaxInclusiveAmount", formatDecimal(doc.GrandTotal), doc.Currency)
	writeCbcAmount(enc, "PayableAmount", formatDecimal(doc.GrandTotal), doc.Currency)
	endCac(enc, "LegalMonetaryTotal")
}

func (s *Serializer) writeInvoiceLine(enc *xml.Encoder, currency string, pos export.Position) {
	startCac(enc, "InvoiceLine")
	writeCbc(enc, "ID", strconv.Itoa(pos.Index))
	writeCbcWithAttr(enc, "InvoicedQuantity", pos.Quantity.String(), "unitCode", pos.Unit)
	writeCbcAmount(enc, "LineExtensionAmount", formatDecimal(pos.Total), currency)

	// cac:Item
	startCac(enc, "Item")
	if pos.Description != "" {
		writeCbc(enc, "Description", pos.Description)
	}
	writeCbc(enc, "Name", pos.Name)
	startCac(enc, "ClassifiedTaxCategory")
	writeCbc(enc, "ID", pos.Category.Code())
	writeCbc(enc, "Percent", formatPercent(pos.RatePercent))
	startCac(enc, "TaxScheme")
	writeCbc(enc, "ID", einvoice.TaxSchemeVAT)
	endCac(enc, "TaxScheme")
	endCac(enc, "ClassifiedTaxCategory")
	endCac(enc, "Item")

	// cac:Price
	startCac(enc, "Price")
	writeCbcAmount(enc, "PriceAmount", formatDecimal(pos.UnitPrice), currency)
	endCac(enc, "Price")

	endCac(enc, "InvoiceLine")
}

func formatDecimal(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func formatPercent(d decimal.Decimal) string {
	return d.Round(2).String()
}
