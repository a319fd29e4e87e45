// Package fraction implements arbitrary-precision rational numbers with
// explicit error reporting.
//
// A Fraction is an immutable numerator/denominator pair of big integers.
// Unlike math/big.Rat, construction does not reduce (an unreduced 6/8
// stays 6/8 until Reduce is called) and division by zero returns an error
// instead of panicking, so a fraction computation can fail a pipeline
// gracefully.
package fraction
