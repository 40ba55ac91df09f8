package dist

// Support describes the domain a distribution's values live on. The model
// graph uses it to pick the unconstraining transform for free variables.
type Support int

// Support constants for the domains we handle
const (
	Real Support = iota
	Positive
	UnitInterval
	Discrete
)

// Args holds named numeric arguments for a distribution. Each value is either
// length 1 (broadcast across all elements) or the full element count.
type Args map[string][]float64

// At returns the argument value for element i, broadcasting length-1 values.
// The second return is false when the argument is absent.
func (a Args) At(name string, i int) (float64, bool) {
	v, ok := a[name]
	if !ok || len(v) == 0 {
		return 0, false
	}
	if len(v) == 1 {
		return v[0], true
	}
	return v[i], true
}

// AtDefault is At with a fallback for absent arguments
func (a Args) AtDefault(name string, i int, def float64) float64 {
	v, ok := a.At(name, i)
	if !ok {
		return def
	}
	return v
}

// A Dist is a distribution kind that can score values element-wise. Shape and
// argument storage live on the graph node; a Dist is stateless.
type Dist interface {
	Name() string
	Params() []string
	LogProb(args Args, i int, x float64) float64
	Support() Support
	Start(args Args, i int) float64
}
