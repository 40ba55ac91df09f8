package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ln(2) shows up in every half distribution (folding doubles the density)
var ln2 = math.Log(2)

// Normal distribution with mu/sigma arguments
type Normal struct{}

// Name implements Dist
func (Normal) Name() string { return "Normal" }

// Params implements Dist
func (Normal) Params() []string { return []string{"mu", "sigma"} }

// Support implements Dist
func (Normal) Support() Support { return Real }

// LogProb implements Dist
func (Normal) LogProb(a Args, i int, x float64) float64 {
	n := distuv.Normal{
		Mu:    a.AtDefault("mu", i, 0),
		Sigma: a.AtDefault("sigma", i, 1),
	}
	return n.LogProb(x)
}

// Start implements Dist
func (Normal) Start(a Args, i int) float64 { return a.AtDefault("mu", i, 0) }

// HalfNormal is a Normal centered at zero and folded onto the positive reals
type HalfNormal struct{}

// Name implements Dist
func (HalfNormal) Name() string { return "HalfNormal" }

// Params implements Dist
func (HalfNormal) Params() []string { return []string{"sigma"} }

// Support implements Dist
func (HalfNormal) Support() Support { return Positive }

// LogProb implements Dist
func (HalfNormal) LogProb(a Args, i int, x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	n := distuv.Normal{Mu: 0, Sigma: a.AtDefault("sigma", i, 1)}
	return ln2 + n.LogProb(x)
}

// Start implements Dist
func (HalfNormal) Start(a Args, i int) float64 { return a.AtDefault("sigma", i, 1) }

// Cauchy with alpha (location) and beta (scale) arguments. Scored as a
// StudentsT with one degree of freedom.
type Cauchy struct{}

// Name implements Dist
func (Cauchy) Name() string { return "Cauchy" }

// Params implements Dist
func (Cauchy) Params() []string { return []string{"alpha", "beta"} }

// Support implements Dist
func (Cauchy) Support() Support { return Real }

// LogProb implements Dist
func (Cauchy) LogProb(a Args, i int, x float64) float64 {
	t := distuv.StudentsT{
		Mu:    a.AtDefault("alpha", i, 0),
		Sigma: a.AtDefault("beta", i, 1),
		Nu:    1,
	}
	return t.LogProb(x)
}

// Start implements Dist
func (Cauchy) Start(a Args, i int) float64 { return a.AtDefault("alpha", i, 0) }

// HalfCauchy is a zero-located Cauchy folded onto the positive reals
type HalfCauchy struct{}

// Name implements Dist
func (HalfCauchy) Name() string { return "HalfCauchy" }

// Params implements Dist
func (HalfCauchy) Params() []string { return []string{"beta"} }

// Support implements Dist
func (HalfCauchy) Support() Support { return Positive }

// LogProb implements Dist
func (HalfCauchy) LogProb(a Args, i int, x float64) float64 {
	if x < 0 {
		return math.Inf(-1)
	}
	t := distuv.StudentsT{Mu: 0, Sigma: a.AtDefault("beta", i, 1), Nu: 1}
	return ln2 + t.LogProb(x)
}

// Start implements Dist
func (HalfCauchy) Start(a Args, i int) float64 { return a.AtDefault("beta", i, 1) }

// StudentT with nu/mu/sigma arguments
type StudentT struct{}

// Name implements Dist
func (StudentT) Name() string { return "StudentT" }

// Params implements Dist
func (StudentT) Params() []string { return []string{"nu", "mu", "sigma"} }

// Support implements Dist
func (StudentT) Support() Support { return Real }

// LogProb implements Dist
func (StudentT) LogProb(a Args, i int, x float64) float64 {
	t := distuv.StudentsT{
		Mu:    a.AtDefault("mu", i, 0),
		Sigma: a.AtDefault("sigma", i, 1),
		Nu:    a.AtDefault("nu", i, 1),
	}
	return t.LogProb(x)
}

// Start implements Dist
func (StudentT) Start(a Args, i int) float64 { return a.AtDefault("mu", i, 0) }

// Uniform with lower/upper arguments
type Uniform struct{}

// Name implements Dist
func (Uniform) Name() string { return "Uniform" }

// Params implements Dist
func (Uniform) Params() []string { return []string{"lower", "upper"} }

// Support implements Dist
func (Uniform) Support() Support { return Real }

// LogProb implements Dist
func (Uniform) LogProb(a Args, i int, x float64) float64 {
	u := distuv.Uniform{
		Min: a.AtDefault("lower", i, 0),
		Max: a.AtDefault("upper", i, 1),
	}
	return u.LogProb(x)
}

// Start implements Dist
func (Uniform) Start(a Args, i int) float64 {
	return (a.AtDefault("lower", i, 0) + a.AtDefault("upper", i, 1)) / 2
}

// Beta with alpha/beta arguments
type Beta struct{}

// Name implements Dist
func (Beta) Name() string { return "Beta" }

// Params implements Dist
func (Beta) Params() []string { return []string{"alpha", "beta"} }

// Support implements Dist
func (Beta) Support() Support { return UnitInterval }

// LogProb implements Dist
func (Beta) LogProb(a Args, i int, x float64) float64 {
	b := distuv.Beta{
		Alpha: a.AtDefault("alpha", i, 1),
		Beta:  a.AtDefault("beta", i, 1),
	}
	return b.LogProb(x)
}

// Start implements Dist
func (Beta) Start(a Args, i int) float64 {
	al := a.AtDefault("alpha", i, 1)
	be := a.AtDefault("beta", i, 1)
	return al / (al + be)
}

// Gamma with alpha (shape) and beta (rate) arguments
type Gamma struct{}

// Name implements Dist
func (Gamma) Name() string { return "Gamma" }

// Params implements Dist
func (Gamma) Params() []string { return []string{"alpha", "beta"} }

// Support implements Dist
func (Gamma) Support() Support { return Positive }

// LogProb implements Dist
func (Gamma) LogProb(a Args, i int, x float64) float64 {
	g := distuv.Gamma{
		Alpha: a.AtDefault("alpha", i, 1),
		Beta:  a.AtDefault("beta", i, 1),
	}
	return g.LogProb(x)
}

// Start implements Dist
func (Gamma) Start(a Args, i int) float64 {
	return a.AtDefault("alpha", i, 1) / a.AtDefault("beta", i, 1)
}

// Exponential with a lam (rate) argument
type Exponential struct{}

// Name implements Dist
func (Exponential) Name() string { return "Exponential" }

// Params implements Dist
func (Exponential) Params() []string { return []string{"lam"} }

// Support implements Dist
func (Exponential) Support() Support { return Positive }

// LogProb implements Dist
func (Exponential) LogProb(a Args, i int, x float64) float64 {
	e := distuv.Exponential{Rate: a.AtDefault("lam", i, 1)}
	return e.LogProb(x)
}

// Start implements Dist
func (Exponential) Start(a Args, i int) float64 { return 1 / a.AtDefault("lam", i, 1) }

// Bernoulli with a p argument. Discrete - only valid as a likelihood.
type Bernoulli struct{}

// Name implements Dist
func (Bernoulli) Name() string { return "Bernoulli" }

// Params implements Dist
func (Bernoulli) Params() []string { return []string{"p"} }

// Support implements Dist
func (Bernoulli) Support() Support { return Discrete }

// LogProb implements Dist
func (Bernoulli) LogProb(a Args, i int, x float64) float64 {
	b := distuv.Bernoulli{P: a.AtDefault("p", i, 0.5)}
	return b.LogProb(x)
}

// Start implements Dist
func (Bernoulli) Start(a Args, i int) float64 { return a.AtDefault("p", i, 0.5) }

// Binomial with n/p arguments. Discrete - only valid as a likelihood.
type Binomial struct{}

// Name implements Dist
func (Binomial) Name() string { return "Binomial" }

// Params implements Dist
func (Binomial) Params() []string { return []string{"n", "p"} }

// Support implements Dist
func (Binomial) Support() Support { return Discrete }

// LogProb implements Dist
func (Binomial) LogProb(a Args, i int, x float64) float64 {
	b := distuv.Binomial{
		N: a.AtDefault("n", i, 1),
		P: a.AtDefault("p", i, 0.5),
	}
	return b.LogProb(x)
}

// Start implements Dist
func (Binomial) Start(a Args, i int) float64 {
	return a.AtDefault("n", i, 1) * a.AtDefault("p", i, 0.5)
}

// Poisson with a mu (mean) argument. Discrete - only valid as a likelihood.
type Poisson struct{}

// Name implements Dist
func (Poisson) Name() string { return "Poisson" }

// Params implements Dist
func (Poisson) Params() []string { return []string{"mu"} }

// Support implements Dist
func (Poisson) Support() Support { return Discrete }

// LogProb implements Dist
func (Poisson) LogProb(a Args, i int, x float64) float64 {
	p := distuv.Poisson{Lambda: a.AtDefault("mu", i, 1)}
	return p.LogProb(x)
}

// Start implements Dist
func (Poisson) Start(a Args, i int) float64 { return a.AtDefault("mu", i, 1) }

// Flat is the improper constant-density prior
type Flat struct{}

// Name implements Dist
func (Flat) Name() string { return "Flat" }

// Params implements Dist
func (Flat) Params() []string { return nil }

// Support implements Dist
func (Flat) Support() Support { return Real }

// LogProb implements Dist
func (Flat) LogProb(a Args, i int, x float64) float64 { return 0 }

// Start implements Dist
func (Flat) Start(a Args, i int) float64 { return 0 }
