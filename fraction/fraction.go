package fraction

import (
	"fmt"
	"math/big"
	"strings"
)

// A Fraction is an arbitrary-precision rational number. The denominator is
// always positive; the sign lives on the numerator. Fractions are not
// reduced automatically.
//
// Fractions are immutable values. The zero Fraction value is not usable;
// construct one with [New], [FromInt64], [Parse] or [Zero].
type Fraction struct {
	num, den *big.Int
}

var one = big.NewInt(1)

// Zero returns the fraction 0/1.
func Zero() Fraction {
	return Fraction{num: new(big.Int), den: one}
}

// New returns num/den. The inputs are copied, so the caller may keep
// mutating them. New returns [ErrZeroDenominator] if den is zero.
func New(num, den *big.Int) (Fraction, error) {
	if den.Sign() == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	f := Fraction{num: new(big.Int).Set(num), den: new(big.Int).Set(den)}
	if f.den.Sign() < 0 {
		f.num.Neg(f.num)
		f.den.Neg(f.den)
	}
	return f, nil
}

// FromInt64 returns num/den. It panics if den is zero; use [New] when the
// denominator is not known to be valid.
func FromInt64(num, den int64) Fraction {
	f, err := New(big.NewInt(num), big.NewInt(den))
	if err != nil {
		panic("fraction(FromInt64): zero denominator")
	}
	return f
}

// Parse reads a whole number ("3"), a fraction ("6/8"), or a mixed
// fraction ("4 2/3").
func Parse(s string) (Fraction, error) {
	s = strings.TrimSpace(s)

	var whole *big.Int
	if head, rest, ok := strings.Cut(s, " "); ok {
		w, okw := new(big.Int).SetString(head, 10)
		if !okw {
			return Fraction{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		whole, s = w, strings.TrimSpace(rest)
	}

	numStr, denStr, isFrac := strings.Cut(s, "/")
	num, ok := new(big.Int).SetString(numStr, 10)
	if !ok {
		return Fraction{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	den := big.NewInt(1)
	if isFrac {
		den, ok = new(big.Int).SetString(denStr, 10)
		if !ok {
			return Fraction{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
	} else if whole != nil {
		return Fraction{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	f, err := New(num, den)
	if err != nil {
		return Fraction{}, err
	}
	if whole != nil {
		// 4 2/3 is 4 + 2/3; the sign of the whole part governs.
		w := new(big.Int).Mul(whole, f.den)
		if whole.Sign() < 0 {
			f.num.Sub(w, f.num)
		} else {
			f.num.Add(w, f.num)
		}
	}
	return f, nil
}

// MustParse is [Parse] for constant inputs; it panics on error.
func MustParse(s string) Fraction {
	f, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return f
}

// Sign returns -1, 0, or +1 depending on the sign of f.
func (f Fraction) Sign() int {
	return f.num.Sign()
}

// Reduce returns f in lowest terms.
func (f Fraction) Reduce() Fraction {
	if f.num.Sign() == 0 {
		return Zero()
	}
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(f.num), f.den)
	return Fraction{
		num: new(big.Int).Quo(f.num, g),
		den: new(big.Int).Quo(f.den, g),
	}
}

// Mul returns f × g, unreduced.
func (f Fraction) Mul(g Fraction) Fraction {
	return Fraction{
		num: new(big.Int).Mul(f.num, g.num),
		den: new(big.Int).Mul(f.den, g.den),
	}
}

// Div returns f ÷ g, unreduced. It returns [ErrDivisionByZero] if g is
// zero.
func (f Fraction) Div(g Fraction) (Fraction, error) {
	if g.num.Sign() == 0 {
		return Fraction{}, ErrDivisionByZero
	}
	r := Fraction{
		num: new(big.Int).Mul(f.num, g.den),
		den: new(big.Int).Mul(f.den, g.num),
	}
	if r.den.Sign() < 0 {
		r.num.Neg(r.num)
		r.den.Neg(r.den)
	}
	return r, nil
}

// Equal reports whether f and g denote the same rational number, reduced
// or not.
func (f Fraction) Equal(g Fraction) bool {
	a := new(big.Int).Mul(f.num, g.den)
	b := new(big.Int).Mul(g.num, f.den)
	return a.Cmp(b) == 0
}

// String formats f as written: "6/8" stays "6/8", and a denominator of
// one prints as a whole number.
func (f Fraction) String() string {
	if f.den.Cmp(one) == 0 {
		return f.num.String()
	}
	return f.num.String() + "/" + f.den.String()
}

// MixedString formats the reduced value of f as a mixed fraction:
// 5/3 prints as "1 2/3", 2/6 as "1/3", 6/2 as "3".
func (f Fraction) MixedString() string {
	r := f.Reduce()

	q, m := new(big.Int).QuoRem(r.num, r.den, new(big.Int))
	if m.Sign() == 0 {
		return q.String()
	}
	if q.Sign() == 0 {
		return r.String()
	}

	frac := new(big.Int).Abs(m).String() + "/" + r.den.String()
	return q.String() + " " + frac
}
