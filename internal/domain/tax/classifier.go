// Package tax maps effective rates and document-level VAT flags onto the
// closed EN 16931 duty/tax/fee category taxonomy (UNTDID 5305).
package tax

import "github.com/shopspring/decimal"

// Category is the EN 16931 tax category of a line. The enumeration is
// closed; unmapped values fall back to StandardRate via Code and String
// rather than failing at serialization time.
type Category int

const (
	StandardRate Category = iota
	ReducedRate
	ZeroRated
	ExemptFromTax
	ReverseCharge
)

// Code returns the UNTDID 5305 category code used in the XML tax tables.
func (c Category) Code() string {
	switch c {
	case ReducedRate:
		return "AA"
	case ZeroRated:
		return "Z"
	case ExemptFromTax:
		return "E"
	case ReverseCharge:
		return "AE"
	default:
		return "S"
	}
}

func (c Category) String() string {
	switch c {
	case StandardRate:
		return "standard_rate"
	case ReducedRate:
		return "reduced_rate"
	case ZeroRated:
		return "zero_rated"
	case ExemptFromTax:
		return "exempt_from_tax"
	case ReverseCharge:
		return "reverse_charge"
	default:
		return "standard_rate"
	}
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	// Rates arrive as computed values from fraction→percent conversion and
	// must not be compared with exact equality.
	zeroTolerance = decimal.NewFromFloat(0.00001)
	standardFloor = decimal.NewFromInt(19)
)

// ToPercent normalizes a rate that may be stored as a fraction (≤ 1.0) or
// already as a percent (> 1.0) to the percent form. Everything downstream of
// this boundary computes in percent.
func ToPercent(rate decimal.Decimal) decimal.Decimal {
	if rate.LessThanOrEqual(one) {
		return rate.Mul(hundred)
	}
	return rate
}

// Classify derives the tax category of a line. First match wins: a
// reverse-charge document forces AE on every line no matter the rate, an
// exempt document forces E, then the percent rate decides between zero,
// reduced and standard.
func Classify(reverseCharge, vatExempt bool, ratePercent decimal.Decimal) Category {
	switch {
	case reverseCharge:
		return ReverseCharge
	case vatExempt:
		return ExemptFromTax
	case ratePercent.Abs().LessThan(zeroTolerance):
		return ZeroRated
	case ratePercent.LessThan(standardFloor):
		return ReducedRate
	default:
		return StandardRate
	}
}
