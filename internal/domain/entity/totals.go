package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxBreakdownRow is one per-rate group of the document totals. Rate is the
// normalized fraction (0.19, not 19).
type TaxBreakdownRow struct {
	Rate decimal.Decimal
	Net  decimal.Decimal
	Tax  decimal.Decimal
}

// SkontoTerms is a German early-payment discount: pay within Days of the
// document date, deduct Percent from the grand total.
type SkontoTerms struct {
	Percent decimal.Decimal
	Days    int
}

// SkontoResult is the computed skonto on a concrete document.
type SkontoResult struct {
	Percent   decimal.Decimal
	Days      int
	DueDate   time.Time
	Amount    decimal.Decimal // grand total × percent / 100, rounded to cents
	AmountDue decimal.Decimal // grand total − amount, if paid within the window
}

// FinancialTotals is the computed money summary of a document.
// Breakdown is ordered highest rate first (display convention); the
// compliance tax table re-sorts ascending for the XML.
type FinancialTotals struct {
	Subtotal   decimal.Decimal
	Breakdown  []TaxBreakdownRow
	TaxAmount  decimal.Decimal
	GrandTotal decimal.Decimal
	Skonto     *SkontoResult
}
