package finance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rechnungswerk/fiscal/internal/domain/entity"
	"github.com/rechnungswerk/fiscal/internal/domain/finance"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func item(qty, price string) entity.LineItem {
	return entity.LineItem{Quantity: dec(qty), UnitPrice: dec(price)}
}

var issueDate = time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

func TestComputeLineTotal_NoDiscount(t *testing.T) {
	got := finance.ComputeLineTotal(item("3", "19.99"))
	assert.True(t, dec("59.97").Equal(got), "got %s", got)
}

func TestComputeLineTotal_PercentageDiscount(t *testing.T) {
	li := item("2", "100")
	li.Discount = &entity.Discount{Type: entity.DiscountPercentage, Value: dec("10")}

	assert.True(t, dec("20.00").Equal(finance.DiscountAmount(li)))
	assert.True(t, dec("180.00").Equal(finance.ComputeLineTotal(li)))
}

func TestComputeLineTotal_FixedDiscount(t *testing.T) {
	li := item("1", "200")
	li.Discount = &entity.Discount{Type: entity.DiscountFixed, Value: dec("50")}

	assert.True(t, dec("150.00").Equal(finance.ComputeLineTotal(li)))
}

// A fixed discount larger than the line base caps at the base: a line total
// is never negative.
func TestComputeLineTotal_FixedDiscountCapped(t *testing.T) {
	li := item("1", "30")
	li.Discount = &entity.Discount{Type: entity.DiscountFixed, Value: dec("50")}

	assert.True(t, dec("30").Equal(finance.DiscountAmount(li)))
	assert.True(t, finance.ComputeLineTotal(li).IsZero())
}

func TestComputeDocumentTotals_SingleRate(t *testing.T) {
	items := []entity.LineItem{item("2", "100"), item("1", "50")}
	totals := finance.ComputeDocumentTotals(items, dec("0.19"), nil, issueDate)

	assert.True(t, dec("250.00").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	require.Len(t, totals.Breakdown, 1)
	assert.True(t, dec("0.19").Equal(totals.Breakdown[0].Rate))
	assert.True(t, dec("47.50").Equal(totals.TaxAmount), "tax %s", totals.TaxAmount)
	assert.True(t, dec("297.50").Equal(totals.GrandTotal), "total %s", totals.GrandTotal)
}

// 19% and 7% lines must surface as two independent breakdown rows, standard
// rate first. Blending them into one averaged rate would be wrong.
func TestComputeDocumentTotals_MixedRates(t *testing.T) {
	reduced := dec("0.07")
	books := item("10", "10")
	books.TaxRate = &reduced
	services := item("1", "100")

	totals := finance.ComputeDocumentTotals([]entity.LineItem{books, services}, dec("0.19"), nil, issueDate)

	require.Len(t, totals.Breakdown, 2)
	assert.True(t, dec("0.19").Equal(totals.Breakdown[0].Rate), "highest rate first")
	assert.True(t, dec("100").Equal(totals.Breakdown[0].Net))
	assert.True(t, dec("19.00").Equal(totals.Breakdown[0].Tax))
	assert.True(t, dec("0.07").Equal(totals.Breakdown[1].Rate))
	assert.True(t, dec("100").Equal(totals.Breakdown[1].Net))
	assert.True(t, dec("7.00").Equal(totals.Breakdown[1].Tax))
	assert.True(t, totals.TaxAmount.Equal(totals.Breakdown[0].Tax.Add(totals.Breakdown[1].Tax)))
}

// Percent-form and fraction-form rates land in the same breakdown row.
func TestComputeDocumentTotals_DualRateRepresentation(t *testing.T) {
	asPercent := dec("19")
	a := item("1", "100")
	a.TaxRate = &asPercent
	b := item("1", "100")

	totals := finance.ComputeDocumentTotals([]entity.LineItem{a, b}, dec("0.19"), nil, issueDate)

	require.Len(t, totals.Breakdown, 1)
	assert.True(t, dec("200").Equal(totals.Breakdown[0].Net))
	assert.True(t, dec("38.00").Equal(totals.Breakdown[0].Tax))
}

func TestComputeDocumentTotals_Empty(t *testing.T) {
	totals := finance.ComputeDocumentTotals(nil, dec("0.19"), nil, issueDate)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assert.Empty(t, totals.Breakdown)
	assert.Nil(t, totals.Skonto)
}

func TestComputeDocumentTotals_Skonto(t *testing.T) {
	items := []entity.LineItem{item("1", "1000")}
	skonto := &entity.SkontoTerms{Percent: dec("2"), Days: 10}

	totals := finance.ComputeDocumentTotals(items, dec("0.19"), skonto, issueDate)

	require.NotNil(t, totals.Skonto)
	assert.True(t, dec("1190.00").Equal(totals.GrandTotal))
	assert.True(t, dec("23.80").Equal(totals.Skonto.Amount), "skonto %s", totals.Skonto.Amount)
	assert.True(t, dec("1166.20").Equal(totals.Skonto.AmountDue))
	assert.Equal(t, issueDate.AddDate(0, 0, 10), totals.Skonto.DueDate)
	// Invariant: grand total − skonto amount = amount due inside the window.
	assert.True(t, totals.GrandTotal.Sub(totals.Skonto.Amount).Equal(totals.Skonto.AmountDue))
}

func TestComputeDocumentTotals_ZeroSkontoPercentIgnored(t *testing.T) {
	totals := finance.ComputeDocumentTotals([]entity.LineItem{item("1", "100")}, dec("0.19"),
		&entity.SkontoTerms{Percent: decimal.Zero, Days: 14}, issueDate)
	assert.Nil(t, totals.Skonto)
}
