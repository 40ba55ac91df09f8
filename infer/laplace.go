package infer

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/chuanzhidong/bambi/graph"
)

// findMAP minimizes the negative unconstrained log posterior with LBFGS,
// gradients by finite differences. maxIter caps the optimizer's major
// iterations.
func findMAP(g *graph.Graph, x0 []float64, maxIter int) ([]float64, error) {
	f := func(x []float64) float64 { return -g.LogDensity(x) }

	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, nil)
		},
	}

	settings := &optimize.Settings{MajorIterations: maxIter}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})
	if result == nil || result.X == nil {
		return nil, errors.Wrapf(err, "MAP optimization produced no point")
	}
	// Imperfect convergence still yields a usable mode; only a missing
	// result is fatal.
	if !isFinite(result.X) {
		return nil, errors.Errorf("MAP optimization diverged")
	}
	return result.X, nil
}

func isFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// laplace fits the model by Laplace approximation: MAP point, Hessian of the
// negative log joint in the variables' own coordinates, and per-variable
// standard deviations from the inverted Hessian.
func (r *Runner) laplace(opts Options) (map[string]PointEstimate, error) {
	x0, err := r.startVector(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not initialize optimizer")
	}

	xMap, err := findMAP(r.g, x0, opts.NInit)
	if err != nil {
		return nil, err
	}

	env, _, err := r.g.Unpack(xMap)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not unpack MAP point")
	}

	// Flatten the free variables on their constrained scale
	frees := r.g.FreeVars()
	spans := make([]VarSpan, len(frees))
	dim := 0
	for i, n := range frees {
		spans[i] = VarSpan{Name: n.Name, Offset: dim, Size: n.Shape}
		dim += n.Shape
	}

	theta := make([]float64, dim)
	for _, sp := range spans {
		copy(theta[sp.Offset:], env[sp.Name])
	}

	negJoint := func(th []float64) float64 {
		free := make(map[string][]float64, len(spans))
		for _, sp := range spans {
			free[sp.Name] = th[sp.Offset : sp.Offset+sp.Size]
		}
		e, err := r.g.EnvFrom(free)
		if err != nil {
			return math.Inf(1)
		}
		return -r.g.LogJoint(e)
	}

	hessian := mat.NewSymDense(dim, nil)
	fd.Hessian(hessian, negJoint, theta, nil)

	if hessianSingular(hessian) {
		return nil, errors.Errorf("Singular matrix. Use mcmc or advi method")
	}

	var cov mat.Dense
	if err := cov.Inverse(hessian); err != nil {
		// Inversion failure means no usable covariance either
		return nil, errors.Errorf("Singular matrix. Use mcmc or advi method")
	}

	stds := make([]float64, dim)
	for i := range stds {
		stds[i] = math.Sqrt(cov.At(i, i))
	}

	// Reshape the flattened standard deviations back per variable with a
	// cumulative offset walk
	out := make(map[string]PointEstimate, len(spans))
	idx0 := 0
	for _, sp := range spans {
		idx1 := idx0 + sp.Size
		mode := append([]float64(nil), env[sp.Name]...)
		out[sp.Name] = PointEstimate{
			Mode: mode,
			Std:  append([]float64(nil), stds[idx0:idx1]...),
		}
		idx0 = idx1
	}

	return out, nil
}

// hessianSingular reports whether the covariance inversion is impossible.
// The gate is exact non-invertibility only: an ill-conditioned but invertible
// Hessian (a tight likelihood next to a very wide prior) still produces a
// usable, wide covariance.
func hessianSingular(h mat.Matrix) bool {
	return mat.Det(h) == 0
}
