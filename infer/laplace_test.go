package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/chuanzhidong/bambi/compile"
	"github.com/chuanzhidong/bambi/model"
)

func TestLaplaceConjugate(t *testing.T) {
	assert := assert.New(t)

	const priorSigma = 10.0
	r := newTestRunner(t, conjugateGraph(t, priorSigma))

	res, err := r.Run(Options{Method: "laplace"})
	assert.NoError(err)
	assert.Equal("laplace", res.Method)

	est, ok := res.Laplace["Intercept"]
	assert.True(ok)
	assert.Len(est.Mode, 1)
	assert.Len(est.Std, 1)

	// A Gaussian posterior makes the Laplace approximation exact
	wantMean, wantSD := conjugatePosterior(priorSigma)
	assert.InDelta(wantMean, est.Mode[0], 1e-3)
	assert.InDelta(wantSD, est.Std[0], 1e-3)
}

func TestLaplaceStart(t *testing.T) {
	assert := assert.New(t)

	const priorSigma = 10.0
	r := newTestRunner(t, conjugateGraph(t, priorSigma))

	// User start values are honored without changing the optimum
	res, err := r.Run(Options{
		Method: "laplace",
		Start:  map[string][]float64{"Intercept": {7}},
	})
	assert.NoError(err)

	wantMean, _ := conjugatePosterior(priorSigma)
	assert.InDelta(wantMean, res.Laplace["Intercept"].Mode[0], 1e-3)
}

func TestLaplaceSingular(t *testing.T) {
	assert := assert.New(t)

	// A coefficient whose predictor column is all zeros under an improper
	// Flat prior: the posterior is constant along it, so the Hessian has an
	// exactly-zero row and determinant.
	n := len(conjugateObs)

	spec := &model.Spec{
		Terms: []*model.Term{
			{
				Name:  "w",
				Data:  mat.NewDense(n, 1, make([]float64, n)),
				Prior: model.NewPrior("Flat", nil),
			},
		},
		Response: &model.ResponseTerm{Name: "y", Data: conjugateObs},
		Family: &model.Family{
			Parent:   "mu",
			LinkName: "identity",
			Prior: model.NewPrior("Normal", map[string]model.ArgValue{
				"sigma": model.Scalar(1),
			}),
		},
	}

	b := compile.New()
	assert.NoError(b.Build(spec, true))

	r := newTestRunner(t, b.Graph())
	res, err := r.Run(Options{Method: "laplace"})
	assert.Nil(res)
	assert.Error(err)
	assert.Contains(err.Error(), "Singular matrix")
	assert.Contains(err.Error(), "mcmc or advi")
}

func TestLaplaceWidePrior(t *testing.T) {
	assert := assert.New(t)

	// An informed intercept next to a coefficient whose column is all zeros
	// under a proper but very wide prior: the Hessian is badly conditioned
	// yet invertible, so the result is a wide standard deviation, not a
	// singular-matrix failure.
	n := len(conjugateObs)
	data := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		data[2*i] = 1
	}

	const wideSigma = 400.0
	spec := &model.Spec{
		Terms: []*model.Term{
			{
				Name: "x",
				Data: mat.NewDense(n, 2, data),
				Prior: model.NewPrior("Normal", map[string]model.ArgValue{
					"mu":    model.Scalar(0),
					"sigma": model.Vector([]float64{10, wideSigma}),
				}),
			},
		},
		Response: &model.ResponseTerm{Name: "y", Data: conjugateObs},
		Family: &model.Family{
			Parent:   "mu",
			LinkName: "identity",
			Prior: model.NewPrior("Normal", map[string]model.ArgValue{
				"sigma": model.Scalar(1),
			}),
		},
	}

	b := compile.New()
	assert.NoError(b.Build(spec, true))

	r := newTestRunner(t, b.Graph())
	res, err := r.Run(Options{Method: "laplace"})
	assert.NoError(err)
	assert.NotNil(res)

	est, ok := res.Laplace["x"]
	assert.True(ok)

	// The intercept matches the analytic Normal-Normal posterior
	wantMean, wantSD := conjugatePosterior(10)
	assert.InDelta(wantMean, est.Mode[0], 1e-3)
	assert.InDelta(wantSD, est.Std[0], 1e-3)

	// The uninformed coefficient keeps its prior: mode zero, prior-width sd
	assert.InDelta(0, est.Mode[1], 1e-3)
	assert.InDelta(wideSigma, est.Std[1], 25)
}

func TestHessianQuadratic(t *testing.T) {
	assert := assert.New(t)

	// f(x) = 2x0^2 + 3x1^2 + x0*x1 has a constant, known Hessian
	f := func(x []float64) float64 {
		return 2*x[0]*x[0] + 3*x[1]*x[1] + x[0]*x[1]
	}

	h := mat.NewSymDense(2, nil)
	fd.Hessian(h, f, []float64{0.3, -0.7}, nil)
	assert.InDelta(4.0, h.At(0, 0), 1e-3)
	assert.InDelta(6.0, h.At(1, 1), 1e-3)
	assert.InDelta(1.0, h.At(0, 1), 1e-3)
	assert.InDelta(1.0, h.At(1, 0), 1e-3)
}

func TestHessianSingularCheck(t *testing.T) {
	assert := assert.New(t)

	assert.True(hessianSingular(mat.NewDense(2, 2, []float64{1, 1, 1, 1})))
	assert.True(hessianSingular(mat.NewDense(2, 2, []float64{0, 0, 0, 0})))
	assert.False(hessianSingular(mat.NewDense(2, 2, []float64{2, 0, 0, 3})))

	// Ill-conditioned but invertible: not singular
	assert.False(hessianSingular(mat.NewDense(2, 2, []float64{20, 0, 0, 1e-6})))
}
