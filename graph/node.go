package graph

import (
	"math"

	"github.com/chuanzhidong/bambi/dist"
)

// Kind classifies a node's role in the graph
type Kind int

// Node kinds
const (
	Stochastic        Kind = iota // free latent variable
	ObservedNode                  // likelihood term with observed data
	DeterministicNode             // derived value, no density contribution
)

// Transform names the unconstraining bijection a free variable is sampled
// under. Positive-support variables sample on the log scale, unit-interval
// variables on the logit scale.
type Transform int

// Transforms
const (
	NoTransform Transform = iota
	LogTransform
	LogitTransform
)

// TransformFor picks the transform matching a distribution's support
func TransformFor(s dist.Support) Transform {
	switch s {
	case dist.Positive:
		return LogTransform
	case dist.UnitInterval:
		return LogitTransform
	}
	return NoTransform
}

// A Node is one named random variable in the model graph
type Node struct {
	Name      string
	Kind      Kind
	Dist      dist.Dist         // nil for deterministic nodes
	Args      map[string]*Value // distribution arguments, nil for deterministic
	Shape     int               // element count
	Observed  []float64         // non-nil only for observed nodes
	Det       func(Env) []float64
	Transform Transform
}

// IsTransformed reports whether this node is sampled through an
// unconstraining transform. The non-centered reparameterization policy keys
// on this: a sigma argument referencing a transformed node is a derived
// random scale, not a raw value.
func (n *Node) IsTransformed() bool {
	return n.Transform != NoTransform
}

// constrain maps one unconstrained coordinate to the variable's scale and
// returns the value with the log-Jacobian of the map.
func (n *Node) constrain(z float64) (float64, float64) {
	switch n.Transform {
	case LogTransform:
		return math.Exp(z), z
	case LogitTransform:
		v := 1.0 / (1.0 + math.Exp(-z))
		return v, math.Log(v) + math.Log(1.0-v)
	}
	return z, 0
}

// unconstrain is the inverse of constrain, used for start values
func (n *Node) unconstrain(v float64) float64 {
	switch n.Transform {
	case LogTransform:
		if v <= 0 {
			v = 1e-8
		}
		return math.Log(v)
	case LogitTransform:
		if v <= 0 {
			v = 1e-8
		}
		if v >= 1 {
			v = 1 - 1e-8
		}
		return math.Log(v / (1.0 - v))
	}
	return v
}

// resolveArgs produces the dist.Args for this node under the environment
func (n *Node) resolveArgs(env Env) (dist.Args, error) {
	out := make(dist.Args, len(n.Args))
	for name, v := range n.Args {
		vals, err := v.Resolve(env)
		if err != nil {
			return nil, err
		}
		out[name] = vals
	}
	return out, nil
}
