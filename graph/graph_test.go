package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chuanzhidong/bambi/dist"
)

const eps = 1e-10

func stdNormalNode(name string, shape int) *Node {
	return &Node{
		Name: name,
		Kind: Stochastic,
		Dist: dist.Normal{},
		Args: map[string]*Value{
			"mu":    Const(0),
			"sigma": Const(1),
		},
		Shape: shape,
	}
}

func TestGraphAdd(t *testing.T) {
	assert := assert.New(t)

	g := New()
	assert.NoError(g.Add(stdNormalNode("a", 2)))
	assert.Error(g.Add(stdNormalNode("a", 1))) // duplicate name
	assert.Error(g.Add(stdNormalNode("", 1)))
	assert.Error(g.Add(stdNormalNode("b", 0))) // bad shape

	assert.Equal(2, g.Dim())
	assert.NotNil(g.Node("a"))
	assert.Nil(g.Node("zzz"))
}

func TestUnpackTransform(t *testing.T) {
	assert := assert.New(t)

	g := New()
	n := &Node{
		Name:      "scale",
		Kind:      Stochastic,
		Dist:      dist.HalfNormal{},
		Args:      map[string]*Value{"sigma": Const(1)},
		Shape:     1,
		Transform: LogTransform,
	}
	assert.NoError(g.Add(n))

	z := 0.7
	env, logJac, err := g.Unpack([]float64{z})
	assert.NoError(err)
	assert.InDelta(math.Exp(z), env["scale"][0], eps)
	assert.InDelta(z, logJac, eps)

	_, _, err = g.Unpack([]float64{1, 2})
	assert.Error(err) // wrong length
}

func TestLogDensityStdNormal(t *testing.T) {
	assert := assert.New(t)

	g := New()
	assert.NoError(g.Add(stdNormalNode("a", 1)))

	lp := g.LogDensity([]float64{0})
	assert.InDelta(-0.5*math.Log(2*math.Pi), lp, eps)

	// Hyperprior reference: b ~ Normal(0, a') where a' = exp(z_a)
	g2 := New()
	sigma := &Node{
		Name:      "b_sigma",
		Kind:      Stochastic,
		Dist:      dist.HalfNormal{},
		Args:      map[string]*Value{"sigma": Const(1)},
		Shape:     1,
		Transform: LogTransform,
	}
	assert.NoError(g2.Add(sigma))
	b := stdNormalNode("b", 1)
	b.Args["sigma"] = Ref("b_sigma")
	assert.NoError(g2.Add(b))

	// At z=0, sigma'=1: density is halfnormal(1) + jacobian + stdnormal(0.5)
	want := dist.HalfNormal{}.LogProb(dist.Args{"sigma": []float64{1}}, 0, 1) +
		0 + // log-Jacobian of exp at z=0
		dist.Normal{}.LogProb(dist.Args{"sigma": []float64{1}}, 0, 0.5)
	assert.InDelta(want, g2.LogDensity([]float64{0, 0.5}), eps)
}

func TestDeterministicNode(t *testing.T) {
	assert := assert.New(t)

	g := New()
	assert.NoError(g.Add(stdNormalNode("off", 3)))
	det := &Node{
		Name:  "prod",
		Kind:  DeterministicNode,
		Shape: 3,
		Det: func(env Env) []float64 {
			o := env["off"]
			out := make([]float64, len(o))
			for i := range o {
				out[i] = o[i] * 2
			}
			return out
		},
	}
	assert.NoError(g.Add(det))

	env, _, err := g.Unpack([]float64{1, 2, 3})
	assert.NoError(err)
	assert.Equal([]float64{2, 4, 6}, env["prod"])

	assert.Len(g.Deterministics(), 1)
	assert.Len(g.FreeVars(), 1)
	assert.Equal(3, g.Dim()) // deterministic nodes add no parameters
}

func TestObservedNode(t *testing.T) {
	assert := assert.New(t)

	g := New()
	assert.NoError(g.Add(stdNormalNode("theta", 1)))
	obs := &Node{
		Name: "y",
		Kind: ObservedNode,
		Dist: dist.Normal{},
		Args: map[string]*Value{
			"mu":    Ref("theta"),
			"sigma": Const(1),
		},
		Shape:    2,
		Observed: []float64{1, -1},
	}
	assert.NoError(g.Add(obs))

	// Likelihood scored at the observations, prior at theta
	want := dist.Normal{}.LogProb(dist.Args{"sigma": []float64{1}}, 0, 0) +
		dist.Normal{}.LogProb(dist.Args{"sigma": []float64{1}}, 0, 1) +
		dist.Normal{}.LogProb(dist.Args{"sigma": []float64{1}}, 0, -1)
	assert.InDelta(want, g.LogDensity([]float64{0}), eps)
}

func TestStartPointAndPack(t *testing.T) {
	assert := assert.New(t)

	g := New()
	n := stdNormalNode("a", 1)
	n.Args["mu"] = Const(2)
	assert.NoError(g.Add(n))

	x, err := g.StartPoint()
	assert.NoError(err)
	assert.Equal([]float64{2}, x)

	x, err = g.Pack(map[string][]float64{"a": {5}})
	assert.NoError(err)
	assert.Equal([]float64{5}, x)

	_, err = g.Pack(map[string][]float64{"a": {5, 6}})
	assert.Error(err) // wrong shape
}

func TestCheckDiscreteFree(t *testing.T) {
	assert := assert.New(t)

	g := New()
	n := &Node{
		Name:  "k",
		Kind:  Stochastic,
		Dist:  dist.Poisson{},
		Args:  map[string]*Value{"mu": Const(3)},
		Shape: 1,
	}
	assert.NoError(g.Add(n))

	err := g.Check()
	assert.Error(err)
	assert.Contains(err.Error(), "observed")
}

func TestEnvFrom(t *testing.T) {
	assert := assert.New(t)

	g := New()
	assert.NoError(g.Add(stdNormalNode("a", 2)))

	env, err := g.EnvFrom(map[string][]float64{"a": {1, 2}})
	assert.NoError(err)
	assert.Equal([]float64{1, 2}, env["a"])

	_, err = g.EnvFrom(map[string][]float64{})
	assert.Error(err)
}
