package dist

import (
	"math"
)

// Bound restricts a base distribution to [Lower, Upper]. Values outside the
// bounds score -Inf; inside, the base density is used unrenormalized (the
// only base we derive from is the improper Flat, where renormalization is
// meaningless anyway).
type Bound struct {
	Base      Dist
	BoundName string
	Lower     float64 // -Inf for unbounded below
	Upper     float64 // +Inf for unbounded above
}

// Name implements Dist
func (b Bound) Name() string { return b.BoundName }

// Params implements Dist
func (b Bound) Params() []string { return b.Base.Params() }

// Support implements Dist
func (b Bound) Support() Support {
	if b.Lower == 0 && math.IsInf(b.Upper, 1) {
		return Positive
	}
	return b.Base.Support()
}

// LogProb implements Dist
func (b Bound) LogProb(a Args, i int, x float64) float64 {
	if x < b.Lower || x > b.Upper {
		return math.Inf(-1)
	}
	return b.Base.LogProb(a, i, x)
}

// Start implements Dist
func (b Bound) Start(a Args, i int) float64 {
	s := b.Base.Start(a, i)
	if s < b.Lower || s > b.Upper {
		if math.IsInf(b.Upper, 1) {
			return b.Lower + 1
		}
		return (b.Lower + b.Upper) / 2
	}
	if s == b.Lower {
		// Keep starting points off the boundary
		s++
	}
	return s
}
