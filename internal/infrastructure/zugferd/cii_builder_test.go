package zugferd_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/fiscal/internal/application/export"
	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/infrastructure/zugferd"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func buildDoc(t *testing.T, mutate func(*entity.Invoice)) *export.ComplianceDocument {
	t.Helper()
	reduced := dec("0.07")
	inv := &entity.Invoice{
		Type:           entity.DocumentTypeInvoice,
		Number:         "RE-2026-0042",
		Date:           time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC),
		Currency:       "EUR",
		DefaultTaxRate: dec("0.19"),
		Items: []entity.LineItem{
			{Description: "Beratung", Quantity: dec("8"), UnitPrice: dec("120"), Unit: "HUR"},
			{Description: "Fachbuch", Quantity: dec("2"), UnitPrice: dec("50"), TaxRate: &reduced},
		},
	}
	if mutate != nil {
		mutate(inv)
	}
	seller := &entity.Seller{
		Name: "Muster & Söhne GmbH", Street: "Hauptstraße 1", Zip: "10115", City: "Berlin",
		Country: "Deutschland", VATID: "DE123456789", IBAN: "DE02120300000000202051",
		Email: "rechnung@muster.example",
	}
	customer := &entity.Customer{
		Name: "Beispiel AG", Street: "Marktplatz 5", Zip: "80331", City: "München",
		Country: "Deutschland", VATNumber: "DE987654321",
	}
	doc, _, err := export.NewBuilder().Build(inv, seller, customer)
	require.NoError(t, err)
	return doc
}

func parse(t *testing.T, raw []byte) *etree.Document {
	t.Helper()
	xmlDoc := etree.NewDocument()
	require.NoError(t, xmlDoc.ReadFromBytes(raw))
	return xmlDoc
}

func TestCIISerialize_Header(t *testing.T) {
	raw, err := zugferd.NewCIIBuilder().Serialize(buildDoc(t, nil))
	require.NoError(t, err)
	xmlDoc := parse(t, raw)

	root := xmlDoc.Root()
	assert.Equal(t, "CrossIndustryInvoice", root.Tag)
	assert.Equal(t, "rsm", root.Space)

	header := xmlDoc.FindElement("//rsm:ExchangedDocument")
	require.NotNil(t, header)
	assert.Equal(t, "RE-2026-0042", header.FindElement("ram:ID").Text())
	assert.Equal(t, "380", header.FindElement("ram:TypeCode").Text())
	assert.Equal(t, "20260210", header.FindElement("ram:IssueDateTime/udt:DateTimeString").Text())

	guideline := xmlDoc.FindElement("//ram:GuidelineSpecifiedDocumentContextParameter/ram:ID")
	assert.Equal(t, "urn:cen.eu:en16931:2017", guideline.Text())
}

func TestCIISerialize_LinesCarryCategoryAndRate(t *testing.T) {
	raw, err := zugferd.NewCIIBuilder().Serialize(buildDoc(t, nil))
	require.NoError(t, err)
	xmlDoc := parse(t, raw)

	lines := xmlDoc.FindElements("//ram:IncludedSupplyChainTradeLineItem")
	require.Len(t, lines, 2)
	first := lines[0]
	assert.Equal(t, "Beratung", first.FindElement("ram:SpecifiedTradeProduct/ram:Name").Text())
	lineTax := first.FindElement("ram:SpecifiedLineTradeSettlement/ram:ApplicableTradeTax")
	assert.Equal(t, "S", lineTax.FindElement("ram:CategoryCode").Text())
	assert.Equal(t, "19", lineTax.FindElement("ram:RateApplicablePercent").Text())
	qty := first.FindElement("ram:SpecifiedLineTradeDelivery/ram:BilledQuantity")
	assert.Equal(t, "HUR", qty.SelectAttrValue("unitCode", ""))
}

func TestCIISerialize_SettlementTotals(t *testing.T) {
	raw, err := zugferd.NewCIIBuilder().Serialize(buildDoc(t, nil))
	require.NoError(t, err)
	xmlDoc := parse(t, raw)

	taxes := xmlDoc.FindElements("//ram:ApplicableHeaderTradeSettlement/ram:ApplicableTradeTax")
	require.Len(t, taxes, 2)
	// ascending by rate
	assert.Equal(t, "7", taxes[0].FindElement("ram:RateApplicablePercent").Text())
	assert.Equal(t, "19", taxes[1].FindElement("ram:RateApplicablePercent").Text())

	sum := xmlDoc.FindElement("//ram:SpecifiedTradeSettlementHeaderMonetarySummation")
	assert.Equal(t, "1060.00", sum.FindElement("ram:LineTotalAmount").Text())
	assert.Equal(t, "189.40", sum.FindElement("ram:TaxTotalAmount").Text())
	assert.Equal(t, "EUR", sum.FindElement("ram:TaxTotalAmount").SelectAttrValue("currencyID", ""))
	assert.Equal(t, "1249.40", sum.FindElement("ram:DuePayableAmount").Text())
}

func TestCIISerialize_ReverseChargeSingleRow(t *testing.T) {
	doc := buildDoc(t, func(inv *entity.Invoice) { inv.ReverseCharge = true })
	raw, err := zugferd.NewCIIBuilder().Serialize(doc)
	require.NoError(t, err)
	xmlDoc := parse(t, raw)

	taxes := xmlDoc.FindElements("//ram:ApplicableHeaderTradeSettlement/ram:ApplicableTradeTax")
	require.Len(t, taxes, 1)
	assert.Equal(t, "AE", taxes[0].FindElement("ram:CategoryCode").Text())
	assert.Equal(t, "0", taxes[0].FindElement("ram:RateApplicablePercent").Text())
	require.NotNil(t, taxes[0].FindElement("ram:ExemptionReason"))

	// Buyer VAT registration comes from the customer's stored number.
	buyerReg := xmlDoc.FindElement("//ram:BuyerTradeParty/ram:SpecifiedTaxRegistration/ram:ID")
	require.NotNil(t, buyerReg)
	assert.Equal(t, "DE987654321", buyerReg.Text())
	assert.Equal(t, "VA", buyerReg.SelectAttrValue("schemeID", ""))
}
