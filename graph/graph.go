// Package graph holds the compiled model graph: an explicit builder object
// owned by exactly one compilation at a time. There is no ambient or global
// model state; every operation takes the graph (or an environment derived
// from it) by reference.
package graph

import (
	"math"

	"github.com/pkg/errors"

	"github.com/chuanzhidong/bambi/dist"
)

// A Graph is an insertion-ordered collection of named nodes. Hyperpriors are
// always added before the variables that consume them, so a single in-order
// walk resolves every reference.
type Graph struct {
	nodes  []*Node
	byName map[string]*Node
}

// New creates an empty graph
func New() *Graph {
	return &Graph{
		nodes:  make([]*Node, 0, 16),
		byName: make(map[string]*Node),
	}
}

// Add appends a node, rejecting duplicate names
func (g *Graph) Add(n *Node) error {
	if n.Name == "" {
		return errors.Errorf("Node has no name")
	}
	if _, ok := g.byName[n.Name]; ok {
		return errors.Errorf("Duplicate node name %s", n.Name)
	}
	if n.Shape < 1 {
		return errors.Errorf("Node %s has invalid shape %d", n.Name, n.Shape)
	}

	g.nodes = append(g.nodes, n)
	g.byName[n.Name] = n
	return nil
}

// Node returns the named node or nil
func (g *Graph) Node(name string) *Node {
	return g.byName[name]
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// FreeVars returns the free latent nodes in insertion order
func (g *Graph) FreeVars() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Kind == Stochastic {
			out = append(out, n)
		}
	}
	return out
}

// Deterministics returns the derived nodes in insertion order
func (g *Graph) Deterministics() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		if n.Kind == DeterministicNode {
			out = append(out, n)
		}
	}
	return out
}

// Dim is the total size of the unconstrained parameter vector
func (g *Graph) Dim() int {
	d := 0
	for _, n := range g.FreeVars() {
		d += n.Shape
	}
	return d
}

// Unpack maps an unconstrained vector onto an environment of constrained
// values, evaluating deterministic nodes along the way. The second return is
// the accumulated log-Jacobian of the unconstraining transforms.
func (g *Graph) Unpack(x []float64) (Env, float64, error) {
	if len(x) != g.Dim() {
		return nil, 0, errors.Errorf("Parameter vector length %d != graph dim %d", len(x), g.Dim())
	}

	env := make(Env, len(g.nodes))
	logJac := 0.0
	offset := 0

	for _, n := range g.nodes {
		switch n.Kind {
		case Stochastic:
			vals := make([]float64, n.Shape)
			for i := 0; i < n.Shape; i++ {
				v, lj := n.constrain(x[offset+i])
				vals[i] = v
				logJac += lj
			}
			env[n.Name] = vals
			offset += n.Shape

		case DeterministicNode:
			env[n.Name] = n.Det(env)
		}
	}

	return env, logJac, nil
}

// EnvFrom builds an environment from explicit free-variable values on the
// constrained scale, recomputing deterministic nodes in order.
func (g *Graph) EnvFrom(free map[string][]float64) (Env, error) {
	env := make(Env, len(g.nodes))
	for _, n := range g.nodes {
		switch n.Kind {
		case Stochastic:
			v, ok := free[n.Name]
			if !ok {
				return nil, errors.Errorf("No value supplied for free variable %s", n.Name)
			}
			if len(v) != n.Shape {
				return nil, errors.Errorf("Value for %s has %d elements, want %d",
					n.Name, len(v), n.Shape)
			}
			env[n.Name] = v

		case DeterministicNode:
			env[n.Name] = n.Det(env)
		}
	}
	return env, nil
}

// LogJoint evaluates the log joint density of the model at the given
// constrained-scale environment. No Jacobian terms: this is the density in
// the variables' own coordinates, which is what the Laplace Hessian needs.
func (g *Graph) LogJoint(env Env) float64 {
	lp := 0.0

	for _, n := range g.nodes {
		if n.Kind == DeterministicNode {
			continue
		}

		args, err := n.resolveArgs(env)
		if err != nil {
			return math.Inf(-1)
		}

		var x []float64
		if n.Kind == ObservedNode {
			x = n.Observed
		} else {
			x = env[n.Name]
		}

		for i, xi := range x {
			lp += n.Dist.LogProb(args, i, xi)
		}
		if math.IsNaN(lp) || math.IsInf(lp, -1) {
			return math.Inf(-1)
		}
	}

	return lp
}

// LogDensity is the unnormalized log posterior over the unconstrained
// parameter vector, Jacobian-corrected. Invalid inputs score -Inf so that
// samplers and optimizers reject them.
func (g *Graph) LogDensity(x []float64) float64 {
	env, logJac, err := g.Unpack(x)
	if err != nil {
		return math.Inf(-1)
	}
	return g.LogJoint(env) + logJac
}

// StartPoint builds the default unconstrained starting vector from each
// distribution's test value, resolving hyperprior references in order.
func (g *Graph) StartPoint() ([]float64, error) {
	x := make([]float64, 0, g.Dim())
	env := make(Env, len(g.nodes))

	for _, n := range g.nodes {
		switch n.Kind {
		case Stochastic:
			args, err := n.resolveArgs(env)
			if err != nil {
				return nil, errors.Wrapf(err, "Could not resolve start args for %s", n.Name)
			}
			vals := make([]float64, n.Shape)
			for i := 0; i < n.Shape; i++ {
				vals[i] = n.Dist.Start(args, i)
				x = append(x, n.unconstrain(vals[i]))
			}
			env[n.Name] = vals

		case DeterministicNode:
			env[n.Name] = n.Det(env)
		}
	}

	return x, nil
}

// Pack maps named constrained-scale start values onto the unconstrained
// vector, falling back to StartPoint values for variables not in the map.
func (g *Graph) Pack(start map[string][]float64) ([]float64, error) {
	x, err := g.StartPoint()
	if err != nil {
		return nil, err
	}

	offset := 0
	for _, n := range g.FreeVars() {
		if vals, ok := start[n.Name]; ok {
			if len(vals) != n.Shape {
				return nil, errors.Errorf("Start value for %s has %d elements, want %d",
					n.Name, len(vals), n.Shape)
			}
			for i, v := range vals {
				x[offset+i] = n.unconstrain(v)
			}
		}
		offset += n.Shape
	}

	return x, nil
}

// Check validates that every argument reference resolves and that free
// variables are continuous.
func (g *Graph) Check() error {
	for _, n := range g.nodes {
		if n.Kind == DeterministicNode {
			if n.Det == nil {
				return errors.Errorf("Deterministic node %s has no function", n.Name)
			}
			continue
		}

		if n.Dist == nil {
			return errors.Errorf("Node %s has no distribution", n.Name)
		}
		if n.Kind == Stochastic && n.Dist.Support() == dist.Discrete {
			return errors.Errorf("Node %s: discrete distribution %s is only valid with observed data",
				n.Name, n.Dist.Name())
		}
		for argName, v := range n.Args {
			if ref, ok := v.IsRef(); ok {
				if g.byName[ref] == nil {
					return errors.Errorf("Node %s arg %s references unknown node %s",
						n.Name, argName, ref)
				}
			}
		}
	}
	return nil
}
