// Package compile turns an abstract model specification into a concrete
// model graph: coefficient distributions per term, hyperprior expansion,
// optional non-centered reparameterization, and the response distribution
// attached through the family's link function.
package compile

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/chuanzhidong/bambi/dist"
	"github.com/chuanzhidong/bambi/graph"
	"github.com/chuanzhidong/bambi/model"
)

// A Backend owns one in-progress model graph. It is not safe for concurrent
// use: Reset (or Build with reset) is the only way to discard accumulated
// state and start an independent compilation.
type Backend struct {
	g        *graph.Graph
	contribs []func(graph.Env) []float64
	nObs     int
	spec     *model.Spec
}

// New creates a Backend with a fresh, empty graph
func New() *Backend {
	b := &Backend{}
	b.Reset()
	return b
}

// Reset discards the current graph and predictor state. The retained spec
// reference survives, matching the build/rebuild contract.
func (b *Backend) Reset() {
	b.g = graph.New()
	b.contribs = nil
	b.nObs = 0
}

// Graph returns the compiled model graph
func (b *Backend) Graph() *graph.Graph {
	return b.g
}

// Spec returns the specification retained by the last Build
func (b *Backend) Spec() *model.Spec {
	return b.spec
}

// Predictor evaluates the accumulated linear predictor under an environment.
// Starts from zero and folds in every term's contribution.
func (b *Backend) Predictor(env graph.Env) []float64 {
	mu := make([]float64, b.nObs)
	for _, c := range b.contribs {
		for i, v := range c(env) {
			mu[i] += v
		}
	}
	return mu
}

// buildDist resolves a distribution by name, expands hyperprior arguments
// depth-first under derived labels, applies the non-centered policy, and
// adds the resulting node to the graph. bound carries pre-resolved argument
// values (the response's linked predictor); observed marks likelihood nodes.
func (b *Backend) buildDist(
	spec *model.Spec,
	label string,
	distName string,
	shape int,
	args map[string]model.ArgValue,
	bound map[string]*graph.Value,
	observed []float64,
) (*graph.Node, error) {
	d, err := dist.Lookup(distName)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not build %s", label)
	}

	vals := make(map[string]*graph.Value, len(args)+len(bound))

	// Inspect all args in case we have hyperpriors: a nested prior becomes
	// its own named variable before it is substituted in.
	prior := model.NewPrior(distName, args)
	for _, key := range prior.ArgNames() {
		av := args[key]

		if av.Nested != nil {
			childLabel := label + "_" + key
			childShape := 1
			childArgs := av.Nested.Args
			if sv, ok := childArgs["shape"]; ok && sv.Nested == nil {
				childShape = int(sv.Scalar)
			}
			child, err := b.buildDist(spec, childLabel, av.Nested.Name, childShape, childArgs, nil, nil)
			if err != nil {
				return nil, err
			}
			vals[key] = graph.Ref(child.Name)
			continue
		}

		if key == "shape" {
			continue // consumed by the caller, not a density argument
		}

		if av.Vector != nil {
			vals[key] = graph.Vector(av.Vector)
		} else {
			vals[key] = graph.Const(av.Scalar)
		}
	}

	for key, v := range bound {
		vals[key] = v
	}

	// Non-centered parameterization for hyperpriors: when sigma is itself a
	// transformed random scale (not a raw value) and this is not a
	// likelihood term, sample a standard-normal offset and define the
	// variable as the deterministic product offset * sigma.
	if spec.NonCentered && observed == nil {
		if sigma, ok := vals["sigma"]; ok {
			if refName, isRef := sigma.IsRef(); isRef && b.g.Node(refName).IsTransformed() {
				return b.buildNonCentered(label, shape, refName)
			}
		}
	}

	n := &graph.Node{
		Name:  label,
		Dist:  d,
		Args:  vals,
		Shape: shape,
	}
	if observed != nil {
		n.Kind = graph.ObservedNode
		n.Observed = observed
		n.Shape = len(observed)
	} else {
		n.Kind = graph.Stochastic
		n.Transform = graph.TransformFor(d.Support())
	}

	if err := b.g.Add(n); err != nil {
		return nil, errors.Wrapf(err, "Could not add %s to graph", label)
	}
	return n, nil
}

// buildNonCentered adds the offset variable and the deterministic product
// node that stands in for a centered hierarchical coefficient.
func (b *Backend) buildNonCentered(label string, shape int, sigmaName string) (*graph.Node, error) {
	offset := &graph.Node{
		Name: label + "_offset",
		Kind: graph.Stochastic,
		Dist: dist.Normal{},
		Args: map[string]*graph.Value{
			"mu":    graph.Const(0),
			"sigma": graph.Const(1),
		},
		Shape: shape,
	}
	if err := b.g.Add(offset); err != nil {
		return nil, errors.Wrapf(err, "Could not add offset for %s", label)
	}

	offsetName := offset.Name
	det := &graph.Node{
		Name:  label,
		Kind:  graph.DeterministicNode,
		Shape: shape,
		Det: func(env graph.Env) []float64 {
			o := env[offsetName]
			s := env[sigmaName]
			out := make([]float64, len(o))
			for i := range o {
				si := s[0]
				if len(s) > 1 {
					si = s[i]
				}
				out[i] = o[i] * si
			}
			return out
		},
	}
	if err := b.g.Add(det); err != nil {
		return nil, errors.Wrapf(err, "Could not add %s to graph", label)
	}
	return det, nil
}

// Build compiles the model graph from the abstract specification. With reset
// true (the default posture) any prior graph is discarded first, so repeated
// builds never leak stale variables.
func (b *Backend) Build(spec *model.Spec, reset bool) error {
	if err := spec.Check(); err != nil {
		return errors.Wrapf(err, "Invalid model specification")
	}

	if reset {
		b.Reset()
	}

	b.nObs = len(spec.Response.Data)

	for _, t := range spec.Terms {
		_, nCols := t.Data.Dims()

		coef, err := b.buildDist(spec, t.Name, t.Prior.Name, nCols, t.Prior.Args, nil, nil)
		if err != nil {
			return errors.Wrapf(err, "Could not build term %s", t.Name)
		}

		coefName := coef.Name
		if t.Random {
			groups := t.GroupIndex
			pred := t.Predictor
			n := b.nObs
			b.contribs = append(b.contribs, func(env graph.Env) []float64 {
				c := env[coefName]
				out := make([]float64, n)
				for i := 0; i < n; i++ {
					out[i] = c[groups[i]] * pred[i]
				}
				return out
			})
		} else {
			data := t.Data
			b.contribs = append(b.contribs, func(env graph.Env) []float64 {
				c := env[coefName]
				var out mat.VecDense
				out.MulVec(data, mat.NewVecDense(len(c), c))
				return out.RawVector().Data
			})
		}
	}

	linkF, err := spec.Family.ResolveLink()
	if err != nil {
		return errors.Wrapf(err, "Could not resolve family link")
	}

	// Snapshot the accumulated predictor state so the compiled graph stays
	// usable after this Backend is reset or rebuilt
	contribs := append([]func(graph.Env) []float64(nil), b.contribs...)
	nObs := b.nObs
	mu := func(env graph.Env) []float64 {
		out := make([]float64, nObs)
		for _, c := range contribs {
			for i, v := range c(env) {
				out[i] += v
			}
		}
		for i, v := range out {
			out[i] = linkF(v)
		}
		return out
	}

	yPrior := spec.Family.Prior.Clone()
	boundArgs := map[string]*graph.Value{
		spec.Family.Parent: graph.Computed(mu),
	}

	_, err = b.buildDist(spec, spec.Response.Name, yPrior.Name,
		len(spec.Response.Data), yPrior.Args, boundArgs, spec.Response.Data)
	if err != nil {
		return errors.Wrapf(err, "Could not build response %s", spec.Response.Name)
	}

	if err := b.g.Check(); err != nil {
		return errors.Wrapf(err, "Compiled graph is not valid")
	}

	b.spec = spec
	return nil
}
