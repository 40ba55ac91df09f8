package infer

import (
	"math"

	"github.com/chuanzhidong/bambi/buffer"
	"github.com/chuanzhidong/bambi/graph"
	"github.com/chuanzhidong/bambi/rand"
)

// targetAccept is the acceptance rate the per-coordinate random-walk scales
// adapt toward during burn-in.
const targetAccept = 0.44

// adaptEvery is the sweep interval between scale adjustments
const adaptEvery = 50

// A chain is one adaptive random-walk Metropolis chain over the graph's
// unconstrained parameter vector. Per-coordinate history feeds the
// convergence-window diagnostics.
type chain struct {
	g   *graph.Graph
	gen *rand.Generator

	x    []float64
	logp float64

	scales   []float64
	accepts  []int64 // per-coordinate, since last adaptation
	order    []int   // coordinate visit order, reshuffled every sweep
	sweeps   int
	accepted int64
	proposed int64

	history []*buffer.CircularFloat
}

func newChain(g *graph.Graph, gen *rand.Generator, x0 []float64, window int) *chain {
	d := len(x0)
	c := &chain{
		g:       g,
		gen:     gen,
		x:       append([]float64(nil), x0...),
		scales:  make([]float64, d),
		accepts: make([]int64, d),
		order:   make([]int, d),
		history: make([]*buffer.CircularFloat, d),
	}
	for i := range c.scales {
		c.scales[i] = 0.5
		c.order[i] = i
		c.history[i] = buffer.NewCircularFloat(window)
	}
	c.logp = g.LogDensity(c.x)
	return c
}

// sweep proposes one Metropolis update per coordinate, visiting the
// coordinates in a freshly shuffled order, and records history. adapting
// enables burn-in scale adjustment.
func (c *chain) sweep(adapting bool) {
	for i := len(c.order) - 1; i > 0; i-- {
		k := c.gen.Intn(i + 1)
		c.order[i], c.order[k] = c.order[k], c.order[i]
	}

	for _, j := range c.order {
		old := c.x[j]
		c.x[j] = old + c.scales[j]*c.gen.NormFloat64()

		newLogp := c.g.LogDensity(c.x)
		accept := false
		if newLogp >= c.logp {
			accept = true
		} else if diff := newLogp - c.logp; diff > -50 {
			accept = math.Log(c.gen.Float64()) < diff
		}

		c.proposed++
		if accept {
			c.logp = newLogp
			c.accepted++
			c.accepts[j]++
		} else {
			c.x[j] = old
		}

		c.history[j].Add(c.x[j])
	}

	c.sweeps++
	if adapting && c.sweeps%adaptEvery == 0 {
		c.adapt()
	}
}

// adapt nudges each coordinate's proposal scale toward the target
// acceptance rate.
func (c *chain) adapt() {
	for j := range c.scales {
		rate := float64(c.accepts[j]) / adaptEvery
		c.scales[j] *= math.Exp(rate - targetAccept)
		if c.scales[j] < 1e-6 {
			c.scales[j] = 1e-6
		}
		c.accepts[j] = 0
	}
}
