package dataprocessing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round rounds half to even at the given number of decimal places, the way
// the spreadsheet tooling the report replaces did. Non-finite input yields 0.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return f
}

// Duration returns the months of stock coverage, stock / average rounded to
// two places, or 0 when average is 0 or the quotient is not finite.
func Duration(stock, average float64) float64 {
	if average == 0 {
		return 0
	}
	d := stock / average
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	return Round(d, 2)
}
