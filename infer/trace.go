package infer

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/chuanzhidong/bambi/graph"
)

// VarDraws stores posterior draws for one variable in chain-major order
type VarDraws struct {
	Name   string
	Shape  int
	Chains int
	N      int // draws per chain
	values []float64
}

func newVarDraws(name string, shape, chains, n int) *VarDraws {
	return &VarDraws{
		Name:   name,
		Shape:  shape,
		Chains: chains,
		N:      n,
		values: make([]float64, shape*chains*n),
	}
}

// set records one draw
func (d *VarDraws) set(chain, draw int, vals []float64) {
	copy(d.values[(chain*d.N+draw)*d.Shape:], vals)
}

// At returns one recorded draw. The returned slice aliases internal storage.
func (d *VarDraws) At(chain, draw int) []float64 {
	start := (chain*d.N + draw) * d.Shape
	return d.values[start : start+d.Shape]
}

// Element collects every draw of a single element across all chains
func (d *VarDraws) Element(i int) []float64 {
	out := make([]float64, 0, d.Chains*d.N)
	for c := 0; c < d.Chains; c++ {
		for t := 0; t < d.N; t++ {
			out = append(out, d.At(c, t)[i])
		}
	}
	return out
}

// Mean returns the posterior mean per element, pooled across chains
func (d *VarDraws) Mean() []float64 {
	out := make([]float64, d.Shape)
	for i := range out {
		out[i] = stat.Mean(d.Element(i), nil)
	}
	return out
}

// StdDev returns the posterior standard deviation per element, pooled
// across chains
func (d *VarDraws) StdDev() []float64 {
	out := make([]float64, d.Shape)
	for i := range out {
		out[i] = stat.StdDev(d.Element(i), nil)
	}
	return out
}

// SampleStats summarizes sampler behavior for diagnostics
type SampleStats struct {
	Accepted int64
	Proposed int64
	RHat     map[string][]float64 // worst split R-hat per element
}

// AcceptRate is the pooled Metropolis acceptance rate
func (s *SampleStats) AcceptRate() float64 {
	if s.Proposed == 0 {
		return 0
	}
	return float64(s.Accepted) / float64(s.Proposed)
}

// InferenceData is the posterior-draws exchange structure: draws for every
// free and deterministic variable, plus a reference to the compiled graph
// they came from.
type InferenceData struct {
	Model *graph.Graph
	Draws map[string]*VarDraws
	Stats SampleStats
}

// Var returns the draws for a named variable
func (d *InferenceData) Var(name string) (*VarDraws, error) {
	v, ok := d.Draws[name]
	if !ok {
		return nil, errors.Errorf("No posterior draws for variable %s", name)
	}
	return v, nil
}
