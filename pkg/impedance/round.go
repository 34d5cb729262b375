package impedance

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Decimal places of the rounding steps.
const (
	NetworkPlaces      = 7
	LegPlaces          = 5
	ZeroSequencePlaces = 4
)

// Round rounds v to the given number of decimal places. Rounding works on
// the exact binary value of v, and only exact ties go to the even digit, so
// 1.234565 (stored just below the tie) rounds to 1.23456 and 0.125 to 0.12.
// A zero result keeps the sign of v.
func Round(v float64, places int32) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := exactDecimal(v).RoundBank(places).Float64()
	if f == 0 {
		return math.Copysign(0, v)
	}
	return f
}

// exactDecimal expands v into all of its decimal digits. decimal.NewFromFloat
// would start from the shortest representation instead, which hides on which
// side of a tie the stored value lies.
func exactDecimal(v float64) decimal.Decimal {
	frac, exp := math.Frexp(v)
	mant := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0)
	}
	// m * 2^-k == m * 5^k * 10^-k
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(exp))
}
