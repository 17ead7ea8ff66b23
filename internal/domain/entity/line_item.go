package entity

import "github.com/shopspring/decimal"

// DiscountType for per-line discounts.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is an optional per-line reduction. Percentage values are percent
// of the line base (qty × unit price); fixed values are absolute amounts
// capped at the line base.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// LineItem is a single position of an invoice or offer. Description is free
// text; the first line doubles as the item name on compliance exports, the
// remainder as its description.
type LineItem struct {
	ID          string
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Unit        string // UN/ECE Rec 20 code, empty means C62 (piece)
	Discount    *Discount

	// TaxRate overrides the document's default rate when set. Like the
	// default it may be a fraction or a percent.
	TaxRate *decimal.Decimal
}

// EffectiveRate returns the line's own rate or the given document default.
func (li LineItem) EffectiveRate(documentRate decimal.Decimal) decimal.Decimal {
	if li.TaxRate != nil {
		return *li.TaxRate
	}
	return documentRate
}
