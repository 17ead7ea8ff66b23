package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rechnungswerk/fiscal/internal/domain/tax"
)

func TestClassify_ReverseChargeWinsOverEverything(t *testing.T) {
	for _, rate := range []float64{0, 7, 19, 21} {
		got := tax.Classify(true, false, decimal.NewFromFloat(rate))
		assert.Equal(t, tax.ReverseCharge, got, "rate %v", rate)
	}
	// Even combined with the exempt flag.
	assert.Equal(t, tax.ReverseCharge, tax.Classify(true, true, decimal.NewFromInt(19)))
}

func TestClassify_ExemptBeforeRate(t *testing.T) {
	assert.Equal(t, tax.ExemptFromTax, tax.Classify(false, true, decimal.NewFromInt(19)))
	assert.Equal(t, tax.ExemptFromTax, tax.Classify(false, true, decimal.Zero))
}

func TestClassify_ByRate(t *testing.T) {
	cases := []struct {
		rate string
		want tax.Category
	}{
		{"0", tax.ZeroRated},
		{"0.000001", tax.ZeroRated}, // inside the float tolerance
		{"7", tax.ReducedRate},
		{"5", tax.ReducedRate},
		{"18.99", tax.ReducedRate},
		{"19", tax.StandardRate},
		{"20", tax.StandardRate},
	}
	for _, c := range cases {
		rate, _ := decimal.NewFromString(c.rate)
		assert.Equal(t, c.want, tax.Classify(false, false, rate), "rate %s", c.rate)
	}
}

// The classifier must tolerate a zero rate that arrives as the residue of a
// fraction→percent float conversion.
func TestClassify_ZeroTolerance(t *testing.T) {
	residue := decimal.NewFromFloat(0.0000001)
	assert.Equal(t, tax.ZeroRated, tax.Classify(false, false, residue))
}

func TestToPercent(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0.19", "19"},
		{"0.07", "7"},
		{"1", "100"}, // 1.0 is still read as a fraction
		{"19", "19"},
		{"7", "7"},
		{"0", "0"},
	}
	for _, c := range cases {
		in, _ := decimal.NewFromString(c.in)
		want, _ := decimal.NewFromString(c.want)
		assert.True(t, want.Equal(tax.ToPercent(in)), "ToPercent(%s) = %s, want %s", c.in, tax.ToPercent(in), c.want)
	}
}

func TestCategoryCode(t *testing.T) {
	assert.Equal(t, "S", tax.StandardRate.Code())
	assert.Equal(t, "AA", tax.ReducedRate.Code())
	assert.Equal(t, "Z", tax.ZeroRated.Code())
	assert.Equal(t, "E", tax.ExemptFromTax.Code())
	assert.Equal(t, "AE", tax.ReverseCharge.Code())
	// Unknown values fall back to the standard code instead of emitting an
	// empty element.
	assert.Equal(t, "S", tax.Category(99).Code())
}
