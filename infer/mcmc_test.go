package infer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMCMCConjugate(t *testing.T) {
	assert := assert.New(t)

	const priorSigma = 10.0
	r := newTestRunner(t, conjugateGraph(t, priorSigma))

	res, err := r.Run(Options{
		Method:  "mcmc",
		Samples: 2000,
		Chains:  2,
		BurnIn:  1000,
	})
	assert.NoError(err)
	assert.Equal("mcmc", res.Method)
	assert.NotNil(res.Posterior)
	assert.Equal(res.Posterior.Model, r.g)

	draws, err := res.Posterior.Var("Intercept")
	assert.NoError(err)
	assert.Equal(1, draws.Shape)
	assert.Equal(2, draws.Chains)
	assert.Equal(2000, draws.N)

	wantMean, wantSD := conjugatePosterior(priorSigma)
	assert.InDelta(wantMean, draws.Mean()[0], 0.15)
	assert.InDelta(wantSD, draws.StdDev()[0], 0.15)

	// The sampler actually moved and kept a sane acceptance rate
	rate := res.Posterior.Stats.AcceptRate()
	assert.True(rate > 0.1 && rate < 0.9, "acceptance rate %f", rate)

	// Identical-posterior chains should not disagree badly
	rhat, ok := res.Posterior.Stats.RHat["Intercept"]
	assert.True(ok)
	assert.False(math.IsNaN(rhat[0]))
	assert.True(rhat[0] < 1.5, "split R-hat %f", rhat[0])
}

func TestMCMCStartValues(t *testing.T) {
	assert := assert.New(t)

	r := newTestRunner(t, conjugateGraph(t, 10))
	res, err := r.Run(Options{
		Method:  "mcmc",
		Samples: 200,
		BurnIn:  200,
		Start:   map[string][]float64{"Intercept": {2.0}},
	})
	assert.NoError(err)

	draws, err := res.Posterior.Var("Intercept")
	assert.NoError(err)
	assert.InDelta(2.0, draws.Mean()[0], 1.0)
}

func TestMCMCMapInit(t *testing.T) {
	assert := assert.New(t)

	r := newTestRunner(t, conjugateGraph(t, 10))
	res, err := r.Run(Options{
		Method:  "mcmc",
		Samples: 200,
		BurnIn:  100,
		Init:    "map",
		NInit:   500,
	})
	assert.NoError(err)
	assert.NotNil(res.Posterior)
}

func TestChainsDrawIndependently(t *testing.T) {
	assert := assert.New(t)

	r := newTestRunner(t, conjugateGraph(t, 10))
	res, err := r.Run(Options{
		Method:  "mcmc",
		Samples: 50,
		BurnIn:  50,
		Chains:  2,
	})
	assert.NoError(err)

	// Each chain runs on its own key-seeded generator, so their
	// trajectories must not coincide
	draws, err := res.Posterior.Var("Intercept")
	assert.NoError(err)
	assert.NotEqual(draws.At(0, 0)[0], draws.At(1, 0)[0])
	assert.NotEqual(draws.At(0, 49)[0], draws.At(1, 49)[0])
}

func TestVarDrawsLayout(t *testing.T) {
	assert := assert.New(t)

	d := newVarDraws("v", 2, 2, 3)
	d.set(0, 0, []float64{1, 2})
	d.set(1, 2, []float64{5, 6})

	assert.Equal([]float64{1, 2}, d.At(0, 0))
	assert.Equal([]float64{5, 6}, d.At(1, 2))
	assert.Equal([]float64{0, 0}, d.At(0, 1))

	el := d.Element(0)
	assert.Len(el, 6)
	assert.Equal(1.0, el[0])
	assert.Equal(5.0, el[5])
}
