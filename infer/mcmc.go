package infer

import (
	"math"

	"github.com/pkg/errors"

	"github.com/chuanzhidong/bambi/rand"
)

// sample draws from the posterior with adaptive random-walk Metropolis
// chains and wraps the result in the InferenceData exchange structure.
func (r *Runner) sample(opts Options) (*InferenceData, error) {
	x0, err := r.startVector(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not initialize sampler")
	}

	if opts.Init == "map" {
		x0, err = findMAP(r.g, x0, opts.NInit)
		if err != nil {
			return nil, errors.Wrapf(err, "MAP initialization failed")
		}
	} else if opts.Init != "jitter" && opts.Init != "auto" {
		return nil, errors.Errorf("Unknown init strategy %s (want jitter, auto, or map)", opts.Init)
	}

	if lp := r.g.LogDensity(x0); math.IsInf(lp, -1) || math.IsNaN(lp) {
		return nil, errors.Errorf("Model log density is not finite at the starting point")
	}

	// Tracked variables: free latents plus deterministic products
	tracked := append(r.g.FreeVars(), r.g.Deterministics()...)
	draws := make(map[string]*VarDraws, len(tracked))
	for _, n := range tracked {
		draws[n.Name] = newVarDraws(n.Name, n.Shape, opts.Chains, opts.Samples)
	}

	stats := SampleStats{RHat: make(map[string][]float64, len(tracked))}

	chains := make([]*chain, opts.Chains)
	for ci := 0; ci < opts.Chains; ci++ {
		// Each chain runs on its own generator, key-seeded from the
		// runner's stream so chains draw independently
		cgen, err := rand.NewGeneratorSlice([]uint64{uint64(r.gen.Int63()), uint64(ci)})
		if err != nil {
			return nil, errors.Wrapf(err, "Could not seed chain %d", ci)
		}

		x := append([]float64(nil), x0...)
		if opts.Init != "map" {
			// Jitter each chain's start so chains explore independently
			for j := range x {
				x[j] += 2.0*cgen.Float64() - 1.0
			}
			if math.IsInf(r.g.LogDensity(x), -1) {
				copy(x, x0) // jitter landed outside support
			}
		}
		c := newChain(r.g, cgen, x, opts.Window)

		for i := 0; i < opts.BurnIn; i++ {
			c.sweep(true)
		}

		for i := 0; i < opts.Samples; i++ {
			c.sweep(false)

			env, _, err := r.g.Unpack(c.x)
			if err != nil {
				return nil, errors.Wrapf(err, "Could not unpack sample on chain %d", ci)
			}
			for _, n := range tracked {
				draws[n.Name].set(ci, i, env[n.Name])
			}
		}

		stats.Accepted += c.accepted
		stats.Proposed += c.proposed
		chains[ci] = c
	}

	// Worst-case split diagnostics over the free variables' history windows
	flat := worstRHat(chains)
	offset := 0
	for _, n := range r.g.FreeVars() {
		stats.RHat[n.Name] = flat[offset : offset+n.Shape]
		offset += n.Shape
	}

	return &InferenceData{
		Model: r.g,
		Draws: draws,
		Stats: stats,
	}, nil
}
