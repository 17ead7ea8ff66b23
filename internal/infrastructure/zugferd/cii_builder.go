// Package zugferd produces the hybrid ZUGFeRD/Factur-X artifact: a
// Cross-Industry Invoice XML built from the compliance document, embedded as
// factur-x.xml into the rendered PDF.
package zugferd

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/fiscal/internal/application/export"
	"github.com/rechnungswerk/fiscal/pkg/einvoice"
)

// UN/CEFACT CII namespaces.
const (
	NsRsm = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NsRam = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NsUdt = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"

	// Format qualifier for CII dates: YYYYMMDD.
	dateFormat102 = "102"
)

// CIIBuilder serializes the compliance document as a CII CrossIndustryInvoice.
type CIIBuilder struct{}

// NewCIIBuilder creates the builder.
func NewCIIBuilder() *CIIBuilder {
	return &CIIBuilder{}
}

// Serialize generates the UTF-8 XML bytes of the CrossIndustryInvoice.
func (b *CIIBuilder) Serialize(doc *export.ComplianceDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("zugferd: document is nil")
	}

	xmlDoc := etree.NewDocument()
	xmlDoc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := xmlDoc.CreateElement("rsm:CrossIndustryInvoice")
	root.CreateAttr("xmlns:rsm", NsRsm)
	root.CreateAttr("xmlns:ram", NsRam)
	root.CreateAttr("xmlns:udt", NsUdt)

	// rsm:ExchangedDocumentContext — guideline (profile) identifier
	ctx := root.CreateElement("rsm:ExchangedDocumentContext")
	guideline := ctx.CreateElement("ram:GuidelineSpecifiedDocumentContextParameter")
	text(guideline, "ram:ID", einvoice.ZUGFeRDGuidelineID)

	// rsm:ExchangedDocument — header
	header := root.CreateElement("rsm:ExchangedDocument")
	text(header, "ram:ID", doc.Number)
	text(header, "ram:TypeCode", doc.TypeCode)
	issue := header.CreateElement("ram:IssueDateTime")
	dateTime(issue, doc.IssueDate.Format("20060102"))
	if doc.Note != "" {
		note := header.CreateElement("ram:IncludedNote")
		text(note, "ram:Content", doc.Note)
	}

	// rsm:SupplyChainTradeTransaction
	tx := root.CreateElement("rsm:SupplyChainTradeTransaction")
	for _, pos := range doc.Positions {
		b.addLineItem(tx, doc.Currency, pos)
	}
	b.addTradeAgreement(tx, doc)
	// Mandatory structural element, even without delivery details.
	tx.CreateElement("ram:ApplicableHeaderTradeDelivery")
	b.addTradeSettlement(tx, doc)

	xmlDoc.Indent(2)
	return xmlDoc.WriteToBytes()
}

func (b *CIIBuilder) addLineItem(tx *etree.Element, currency string, pos export.Position) {
	line := tx.CreateElement("ram:IncludedSupplyChainTradeLineItem")

	lineDoc := line.CreateElement("ram:AssociatedDocumentLineDocument")
	text(lineDoc, "ram:LineID", fmt.Sprintf("%d", pos.Index))

	product := line.CreateElement("ram:SpecifiedTradeProduct")
	text(product, "ram:Name", pos.Name)
	if pos.Description != "" {
		text(product, "ram:Description", pos.Description)
	}

	agreement := line.CreateElement("ram:SpecifiedLineTradeAgreement")
	price := agreement.CreateElement("ram:NetPriceProductTradePrice")
	text(price, "ram:ChargeAmount", money(pos.UnitPrice))

	delivery := line.CreateElement("ram:SpecifiedLineTradeDelivery")
	qty := delivery.CreateElement("ram:BilledQuantity")
	qty.CreateAttr("unitCode", pos.Unit)
	qty.SetText(pos.Quantity.String())

	settlement := line.CreateElement("ram:SpecifiedLineTradeSettlement")
	lineTax := settlement.CreateElement("ram:ApplicableTradeTax")
	text(lineTax, "ram:TypeCode", einvoice.TaxSchemeVAT)
	text(lineTax, "ram:CategoryCode", pos.Category.Code())
	text(lineTax, "ram:RateApplicablePercent", pos.RatePercent.Round(2).String())
	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementLineMonetarySummation")
	text(sum, "ram:LineTotalAmount", money(pos.Total))
}

func (b *CIIBuilder) addTradeAgreement(tx *etree.Element, doc *export.ComplianceDocument) {
	agreement := tx.CreateElement("ram:ApplicableHeaderTradeAgreement")
	text(agreement, "ram:BuyerReference", doc.Buyer.Name)
	b.addTradeParty(agreement, "ram:SellerTradeParty", doc.Seller, doc.Seller.VATID)
	b.addTradeParty(agreement, "ram:BuyerTradeParty", doc.Buyer, doc.BuyerVATID)
}

func (b *CIIBuilder) addTradeParty(parent *etree.Element, tag string, party export.Party, vatID string) {
	p := parent.CreateElement(tag)
	text(p, "ram:Name", party.Name)

	address := p.CreateElement("ram:PostalTradeAddress")
	text(address, "ram:PostcodeCode", party.Zip)
	text(address, "ram:LineOne", party.Street)
	text(address, "ram:CityName", party.City)
	text(address, "ram:CountryID", party.CountryCode)

	if vatID != "" {
		reg := p.CreateElement("ram:SpecifiedTaxRegistration")
		id := reg.CreateElement("ram:ID")
		id.CreateAttr("schemeID", "VA")
		id.SetText(vatID)
	} else if party.TaxNumber != "" {
		reg := p.CreateElement("ram:SpecifiedTaxRegistration")
		id := reg.CreateElement("ram:ID")
		id.CreateAttr("schemeID", "FC")
		id.SetText(party.TaxNumber)
	}
}

func (b *CIIBuilder) addTradeSettlement(tx *etree.Element, doc *export.ComplianceDocument) {
	settlement := tx.CreateElement("ram:ApplicableHeaderTradeSettlement")
	text(settlement, "ram:InvoiceCurrencyCode", doc.Currency)

	if doc.Payment.IBAN != "" {
		means := settlement.CreateElement("ram:SpecifiedTradeSettlementPaymentMeans")
		text(means, "ram:TypeCode", doc.Payment.MeansCode)
		account := means.CreateElement("ram:PayeePartyCreditorFinancialAccount")
		text(account, "ram:IBANID", doc.Payment.IBAN)
		if doc.Payment.BIC != "" {
			inst := means.CreateElement("ram:PayeeSpecifiedCreditorFinancialInstitution")
			text(inst, "ram:BICID", doc.Payment.BIC)
		}
	}

	for _, row := range doc.TaxTable {
		tradeTax := settlement.CreateElement("ram:ApplicableTradeTax")
		text(tradeTax, "ram:CalculatedAmount", money(row.Tax))
		text(tradeTax, "ram:TypeCode", einvoice.TaxSchemeVAT)
		if row.ExemptionNote != "" {
			text(tradeTax, "ram:ExemptionReason", row.ExemptionNote)
		}
		text(tradeTax, "ram:BasisAmount", money(row.Net))
		text(tradeTax, "ram:CategoryCode", row.Category.Code())
		text(tradeTax, "ram:RateApplicablePercent", row.RatePercent.Round(2).String())
	}

	terms := settlement.CreateElement("ram:SpecifiedTradePaymentTerms")
	if skonto := doc.Payment.Skonto; skonto != nil {
		text(terms, "ram:Description", fmt.Sprintf("%s%% Skonto innerhalb %d Tagen",
			skonto.Percent.String(), skonto.Days))
	}
	if doc.Payment.DueDate != nil {
		due := terms.CreateElement("ram:DueDateDateTime")
		dateTime(due, doc.Payment.DueDate.Format("20060102"))
	}

	sum := settlement.CreateElement("ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	text(sum, "ram:LineTotalAmount", money(doc.Subtotal))
	text(sum, "ram:TaxBasisTotalAmount", money(doc.Subtotal))
	taxTotal := sum.CreateElement("ram:TaxTotalAmount")
	taxTotal.CreateAttr("currencyID", doc.Currency)
	taxTotal.SetText(money(doc.TaxAmount))
	text(sum, "ram:GrandTotalAmount", money(doc.GrandTotal))
	text(sum, "ram:DuePayableAmount", money(doc.GrandTotal))
}

func text(parent *etree.Element, tag, value string) *etree.Element {
	e := parent.CreateElement(tag)
	e.SetText(value)
	return e
}

func dateTime(parent *etree.Element, yyyymmdd string) {
	e := parent.CreateElement("udt:DateTimeString")
	e.CreateAttr("format", dateFormat102)
	e.SetText(yyyymmdd)
}

func money(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}
