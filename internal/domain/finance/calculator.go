// Package finance computes line totals, per-rate tax breakdowns and document
// grand totals. All arithmetic uses shopspring/decimal; binary floats would
// drift by cents across long documents. Monetary results are rounded to two
// places (half up) at the point they become visible.
package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rechnungswerk/fiscal/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// toFraction normalizes a rate that may be stored as a fraction (0.19) or a
// percent (19) to the fraction form. Values above 1 are read as percent.
func toFraction(rate decimal.Decimal) decimal.Decimal {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return rate.Div(hundred)
	}
	return rate
}

// DiscountAmount returns the monetary discount of a line. Percentage
// discounts are a share of the line base, fixed discounts are capped at the
// base so a line can never go negative.
func DiscountAmount(item entity.LineItem) decimal.Decimal {
	if item.Discount == nil {
		return decimal.Zero
	}
	base := item.Quantity.Mul(item.UnitPrice)
	switch item.Discount.Type {
	case entity.DiscountPercentage:
		return base.Mul(item.Discount.Value).Div(hundred).Round(2)
	case entity.DiscountFixed:
		return decimal.Min(item.Discount.Value, base)
	default:
		return decimal.Zero
	}
}

// ComputeLineTotal returns quantity × unit price minus the discount, floored
// at zero and rounded to cents.
func ComputeLineTotal(item entity.LineItem) decimal.Decimal {
	base := item.Quantity.Mul(item.UnitPrice)
	total := base.Sub(DiscountAmount(item))
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}

// ComputeDocumentTotals aggregates the line totals into the document summary:
// subtotal, the per-rate tax breakdown ordered highest rate first, the total
// tax and the grand total. Lines without their own rate inherit documentRate.
// Rates may arrive as fractions or percents and are grouped on the fraction
// form, so 19 and 0.19 land in the same row. Mixed-rate documents produce one
// row per distinct rate; rates are never blended.
//
// When skonto terms are given the early-payment discount is computed against
// the grand total with its due date counted from issueDate.
func ComputeDocumentTotals(items []entity.LineItem, documentRate decimal.Decimal, skonto *entity.SkontoTerms, issueDate time.Time) entity.FinancialTotals {
	totals := entity.FinancialTotals{
		Subtotal:   decimal.Zero,
		TaxAmount:  decimal.Zero,
		GrandTotal: decimal.Zero,
	}

	net := make(map[string]decimal.Decimal)
	rates := make(map[string]decimal.Decimal)

	for _, item := range items {
		lineTotal := ComputeLineTotal(item)
		totals.Subtotal = totals.Subtotal.Add(lineTotal)

		rate := toFraction(item.EffectiveRate(documentRate))
		key := rate.String()
		if _, ok := rates[key]; !ok {
			rates[key] = rate
		}
		net[key] = net[key].Add(lineTotal)
	}

	keys := make([]string, 0, len(rates))
	for key := range rates {
		keys = append(keys, key)
	}
	// Highest rate first: standard-rate lines are reported before reduced and
	// zero-rate lines.
	sort.Slice(keys, func(i, j int) bool {
		return rates[keys[i]].GreaterThan(rates[keys[j]])
	})

	for _, key := range keys {
		rate := rates[key]
		tax := net[key].Mul(rate).Round(2)
		totals.Breakdown = append(totals.Breakdown, entity.TaxBreakdownRow{
			Rate: rate,
			Net:  net[key],
			Tax:  tax,
		})
		totals.TaxAmount = totals.TaxAmount.Add(tax)
	}

	totals.GrandTotal = totals.Subtotal.Add(totals.TaxAmount)

	totals.Skonto = ComputeSkonto(totals.GrandTotal, skonto, issueDate)

	return totals
}

// ComputeSkonto derives the early-payment discount on a payable total. The
// due date counts from issueDate. Returns nil without terms or with a
// non-positive percentage.
func ComputeSkonto(payable decimal.Decimal, skonto *entity.SkontoTerms, issueDate time.Time) *entity.SkontoResult {
	if skonto == nil || !skonto.Percent.IsPositive() {
		return nil
	}
	amount := payable.Mul(skonto.Percent).Div(hundred).Round(2)
	return &entity.SkontoResult{
		Percent:   skonto.Percent,
		Days:      skonto.Days,
		DueDate:   issueDate.AddDate(0, 0, skonto.Days),
		Amount:    amount,
		AmountDue: payable.Sub(amount),
	}
}
