package infer

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
)

// VarSpan locates one variable inside the flattened variational parameter
// vectors.
type VarSpan struct {
	Name   string
	Offset int
	Size   int
}

// ADVIParams is the fitted mean-field variational posterior over the
// unconstrained parameter space: per-coordinate Gaussian means and log
// standard deviations, plus the ELBO trace from optimization.
type ADVIParams struct {
	Index    []VarSpan
	Mu       []float64
	LogSigma []float64
	ELBO     []float64
}

// Span returns the location of a named variable
func (p *ADVIParams) Span(name string) (VarSpan, error) {
	for _, sp := range p.Index {
		if sp.Name == name {
			return sp, nil
		}
	}
	return VarSpan{}, errors.Errorf("No variational parameters for variable %s", name)
}

// Mean returns the variational mean for a named variable (unconstrained
// scale)
func (p *ADVIParams) Mean(name string) ([]float64, error) {
	sp, err := p.Span(name)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), p.Mu[sp.Offset:sp.Offset+sp.Size]...), nil
}

// StdDev returns the variational standard deviation for a named variable
// (unconstrained scale)
func (p *ADVIParams) StdDev(name string) ([]float64, error) {
	sp, err := p.Span(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, sp.Size)
	for i := range out {
		out[i] = math.Exp(p.LogSigma[sp.Offset+i])
	}
	return out, nil
}

// advi runs automatic differentiation variational inference with a
// mean-field Gaussian family: reparameterized single-sample gradient
// estimates and Adam updates, maximizing the ELBO.
func (r *Runner) advi(opts Options) (*ADVIParams, error) {
	g := r.g
	d := g.Dim()

	mu, err := r.startVector(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not initialize variational parameters")
	}

	logSigma := make([]float64, d)
	for i := range logSigma {
		logSigma[i] = -1
	}

	index := make([]VarSpan, 0, len(g.FreeVars()))
	offset := 0
	for _, n := range g.FreeVars() {
		index = append(index, VarSpan{Name: n.Name, Offset: offset, Size: n.Shape})
		offset += n.Shape
	}

	const (
		lr    = 0.02
		beta1 = 0.9
		beta2 = 0.999
		eps   = 1e-8
	)

	// Adam moments over the concatenated (mu, logSigma) parameters
	m := make([]float64, 2*d)
	v := make([]float64, 2*d)

	z := make([]float64, d)
	epsN := make([]float64, d)
	grad := make([]float64, d)
	full := make([]float64, 2*d)

	elbo := make([]float64, 0, opts.NInit/100+1)

	logp := func(x []float64) float64 { return g.LogDensity(x) }

	for it := 1; it <= opts.NInit; it++ {
		for j := 0; j < d; j++ {
			epsN[j] = r.gen.NormFloat64()
			z[j] = mu[j] + math.Exp(logSigma[j])*epsN[j]
		}

		fd.Gradient(grad, logp, z, nil)
		if !isFinite(grad) {
			continue // reject the sample, keep parameters
		}

		// d ELBO/d mu = grad; d ELBO/d logSigma = grad*eps*sigma + 1
		for j := 0; j < d; j++ {
			full[j] = grad[j]
			full[d+j] = grad[j]*epsN[j]*math.Exp(logSigma[j]) + 1
		}

		bc1 := 1 - math.Pow(beta1, float64(it))
		bc2 := 1 - math.Pow(beta2, float64(it))
		for j := 0; j < 2*d; j++ {
			m[j] = beta1*m[j] + (1-beta1)*full[j]
			v[j] = beta2*v[j] + (1-beta2)*full[j]*full[j]
			step := lr * (m[j] / bc1) / (math.Sqrt(v[j]/bc2) + eps)
			if j < d {
				mu[j] += step
			} else {
				logSigma[j-d] += step
			}
		}

		if it%100 == 0 {
			ent := 0.0
			for j := 0; j < d; j++ {
				ent += logSigma[j]
			}
			ent += 0.5 * float64(d) * (1 + math.Log(2*math.Pi))
			elbo = append(elbo, logp(z)+ent)
		}
	}

	if !isFinite(mu) || !isFinite(logSigma) {
		return nil, errors.Errorf("Variational optimization diverged")
	}

	return &ADVIParams{
		Index:    index,
		Mu:       mu,
		LogSigma: logSigma,
		ELBO:     elbo,
	}, nil
}
