// Package infer drives posterior inference against a compiled model graph.
// Three strategies are supported: MCMC sampling, mean-field variational
// inference, and a Laplace (MAP + Hessian) approximation.
package infer

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/chuanzhidong/bambi/graph"
	"github.com/chuanzhidong/bambi/rand"
)

// Options select and tune an inference method. Zero values fall back to the
// documented defaults.
type Options struct {
	Method  string // mcmc | advi (variational) | laplace, case-insensitive
	Samples int    // posterior draws per chain (default 1000)
	Chains  int    // default 2
	BurnIn  int    // default 500
	Window  int    // convergence window for chain history (default 200)
	Start   map[string][]float64
	Init    string // "jitter" (default) or "map"
	NInit   int    // iteration cap for initialization and MAP optimization
}

func (o Options) withDefaults() Options {
	if o.Samples <= 0 {
		o.Samples = 1000
	}
	if o.Chains <= 0 {
		o.Chains = 2
	}
	if o.BurnIn <= 0 {
		o.BurnIn = 500
	}
	if o.Window <= 0 {
		o.Window = 200
	}
	if o.Init == "" {
		o.Init = "jitter"
	}
	if o.NInit <= 0 {
		o.NInit = 10000
	}
	return o
}

// PointEstimate is a Laplace result for one variable: posterior mode and the
// standard deviations reshaped to the variable's shape.
type PointEstimate struct {
	Mode []float64
	Std  []float64
}

// Result carries the output of one inference run. Exactly one of the three
// payload fields is set, matching Method.
type Result struct {
	Method      string
	Posterior   *InferenceData
	Variational *ADVIParams
	Laplace     map[string]PointEstimate
}

// A Runner executes inference methods against one compiled graph
type Runner struct {
	g   *graph.Graph
	gen *rand.Generator
}

// NewRunner creates a runner for the given graph
func NewRunner(g *graph.Graph, gen *rand.Generator) (*Runner, error) {
	if g == nil {
		return nil, errors.Errorf("No model graph supplied")
	}
	if g.Dim() < 1 {
		return nil, errors.Errorf("Model graph has no free variables")
	}
	if gen == nil {
		return nil, errors.Errorf("No random generator supplied")
	}
	return &Runner{g: g, gen: gen}, nil
}

// Run dispatches on the requested method. Unknown method names fail closed.
func (r *Runner) Run(opts Options) (*Result, error) {
	opts = opts.withDefaults()

	switch strings.ToLower(opts.Method) {
	case "mcmc":
		post, err := r.sample(opts)
		if err != nil {
			return nil, err
		}
		return &Result{Method: "mcmc", Posterior: post}, nil

	case "advi", "variational":
		params, err := r.advi(opts)
		if err != nil {
			return nil, err
		}
		// Interim return shape: raw variational parameters, not wrapped
		// into InferenceData
		return &Result{Method: "advi", Variational: params}, nil

	case "laplace":
		est, err := r.laplace(opts)
		if err != nil {
			return nil, err
		}
		return &Result{Method: "laplace", Laplace: est}, nil
	}

	return nil, errors.Errorf(
		"Unknown inference method %s (want mcmc, advi, or laplace)", opts.Method,
	)
}

// startVector assembles the initial unconstrained point: per-distribution
// test values, overridden by any user start values.
func (r *Runner) startVector(opts Options) ([]float64, error) {
	if len(opts.Start) > 0 {
		return r.g.Pack(opts.Start)
	}
	return r.g.StartPoint()
}
