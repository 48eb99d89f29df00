package queue

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DefaultPrecision is the number of significant digits kept by every
// intermediate and final result.
const DefaultPrecision = 28

// guardDigits are carried by powers and quotients ahead of the final rounding.
const guardDigits = 4

var one = decimal.New(1, 0)

// arith performs decimal arithmetic rounded half-even to a fixed number of
// significant digits. shopspring/decimal multiplies exactly and divides to a
// fixed number of decimal places, neither of which bounds the size of the
// numbers once factorials and powers of ρ get involved.
type arith struct {
	prec int32
}

// magnitude returns the position of the most significant digit of d
// relative to the decimal point: 1 for 1..9, 2 for 10..99, 0 for 0.1..0.9.
func magnitude(d decimal.Decimal) int32 {
	c := d.Coefficient()
	return int32(len(c.Abs(c).String())) + d.Exponent()
}

func (a arith) round(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return d
	}

	places := a.prec - magnitude(d)
	if places >= -d.Exponent() {
		return d
	}

	return d.RoundBank(places)
}

func (a arith) add(x, y decimal.Decimal) decimal.Decimal {
	return a.round(x.Add(y))
}

func (a arith) sub(x, y decimal.Decimal) decimal.Decimal {
	return a.round(x.Sub(y))
}

func (a arith) mul(x, y decimal.Decimal) decimal.Decimal {
	return a.round(x.Mul(y))
}

// div panics on a zero divisor.
func (a arith) div(x, y decimal.Decimal) decimal.Decimal {
	places := a.prec + guardDigits - (magnitude(x) - magnitude(y))
	return a.round(x.DivRound(y, places))
}

// pow raises x to a non-negative integer power by repeated squaring.
func (a arith) pow(x decimal.Decimal, n int) decimal.Decimal {
	wide := arith{prec: a.prec + guardDigits}

	result := one
	base := x
	for n > 0 {
		if n&1 == 1 {
			result = wide.mul(result, base)
		}
		n >>= 1
		if n > 0 {
			base = wide.mul(base, base)
		}
	}

	return a.round(result)
}

// factorial returns n! exactly.
func factorial(n int) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).MulRange(1, int64(n)), 0)
}
