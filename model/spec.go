package model

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ArgValue is a prior argument: either a concrete scalar, a concrete vector,
// or a nested Prior (a hyperprior that becomes its own named variable during
// compilation). Exactly one field is meaningful; Nested wins if set, then
// Vector, then Scalar.
type ArgValue struct {
	Scalar float64
	Vector []float64
	Nested *Prior
}

// Scalar wraps a concrete scalar argument
func Scalar(v float64) ArgValue { return ArgValue{Scalar: v} }

// Vector wraps a concrete vector argument
func Vector(v []float64) ArgValue { return ArgValue{Vector: v} }

// Nested wraps a hyperprior argument
func Nested(p *Prior) ArgValue { return ArgValue{Nested: p} }

// A Prior names a distribution and its arguments. Argument values may
// themselves be priors; the nesting is a tree, so depth-first expansion
// always terminates.
type Prior struct {
	Name string
	Args map[string]ArgValue
}

// NewPrior builds a prior from a name and argument map
func NewPrior(name string, args map[string]ArgValue) *Prior {
	if args == nil {
		args = make(map[string]ArgValue)
	}
	return &Prior{Name: name, Args: args}
}

// ArgNames returns the argument names in sorted order so that compilation
// walks hyperpriors deterministically.
func (p *Prior) ArgNames() []string {
	names := make([]string, 0, len(p.Args))
	for k := range p.Args {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the prior. The compiler mutates the response
// template's args, so the spec hands it a copy.
func (p *Prior) Clone() *Prior {
	cp := &Prior{
		Name: p.Name,
		Args: make(map[string]ArgValue, len(p.Args)),
	}
	for k, v := range p.Args {
		av := ArgValue{Scalar: v.Scalar}
		if v.Vector != nil {
			av.Vector = make([]float64, len(v.Vector))
			copy(av.Vector, v.Vector)
		}
		if v.Nested != nil {
			av.Nested = v.Nested.Clone()
		}
		cp.Args[k] = av
	}
	return cp
}

// A Term is one additive piece of the linear predictor: a design matrix, a
// coefficient prior, and (for group effects) the grouping structure.
type Term struct {
	Name       string
	Data       *mat.Dense // rows = observations, cols = coefficients
	Prior      *Prior
	Random     bool      // varying (group) effect
	GroupIndex []int     // per-observation group, required when Random
	Predictor  []float64 // raw predictor column, required when Random
}

// Check returns an error if there is a problem with the term
func (t *Term) Check(nObs int) error {
	if t.Name == "" {
		return errors.Errorf("Term has no name")
	}
	if t.Data == nil {
		return errors.Errorf("Term %s has no data", t.Name)
	}
	r, c := t.Data.Dims()
	if r != nObs {
		return errors.Errorf("Term %s has %d rows but response has %d observations", t.Name, r, nObs)
	}
	if c < 1 {
		return errors.Errorf("Term %s has no design columns", t.Name)
	}
	if t.Prior == nil {
		return errors.Errorf("Term %s has no prior", t.Name)
	}

	if t.Random {
		if len(t.GroupIndex) != nObs {
			return errors.Errorf("Term %s group index length %d != %d observations",
				t.Name, len(t.GroupIndex), nObs)
		}
		if len(t.Predictor) != nObs {
			return errors.Errorf("Term %s predictor length %d != %d observations",
				t.Name, len(t.Predictor), nObs)
		}
		for i, g := range t.GroupIndex {
			if g < 0 || g >= c {
				return errors.Errorf("Term %s group index %d at row %d outside [0, %d)",
					t.Name, g, i, c)
			}
		}
	}

	return nil
}

// ResponseTerm holds the observed response
type ResponseTerm struct {
	Name string
	Data []float64
}

// A Family ties the response distribution to the linear predictor: the
// parent parameter receives the link-transformed predictor, and the prior is
// the response template.
type Family struct {
	Parent   string
	LinkName string
	LinkFunc func(float64) float64 // overrides LinkName when non-nil
	Prior    *Prior
}

// Spec is the abstract model specification the compiler consumes. Terms keep
// their declaration order so rebuilds are deterministic.
type Spec struct {
	Terms       []*Term
	Response    *ResponseTerm
	Family      *Family
	NonCentered bool
}

// Check returns an error if there is a problem with the spec
func (s *Spec) Check() error {
	if s.Response == nil || len(s.Response.Data) < 1 {
		return errors.Errorf("Spec has no response data")
	}
	if s.Family == nil {
		return errors.Errorf("Spec has no family")
	}
	if s.Family.Prior == nil {
		return errors.Errorf("Spec family has no response prior template")
	}
	if s.Family.Parent == "" {
		return errors.Errorf("Spec family has no parent parameter name")
	}

	nObs := len(s.Response.Data)
	seen := make(map[string]bool)
	for _, t := range s.Terms {
		if err := t.Check(nObs); err != nil {
			return errors.Wrapf(err, "Spec has an invalid term")
		}
		if seen[t.Name] {
			return errors.Errorf("Duplicate term name %s", t.Name)
		}
		seen[t.Name] = true
	}

	return nil
}
