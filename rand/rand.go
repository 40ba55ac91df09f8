package rand

import (
	"math"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
)

// A Generator uses a goroutine to populate batches of random numbers from a
// Mersenne twister. It is the single source of randomness for Metropolis
// proposals, initialization jitter, and variational noise.
type Generator struct {
	ch chan int64

	// Spare deviate from the polar method (see NormFloat64)
	haveSpare bool
	spare     float64
}

// NewGenerator starts a new background PRNG based on the given seed
func NewGenerator(seed int64) (*Generator, error) {
	numChan := make(chan int64, 1024)

	go func() {
		r := mt19937.New()
		r.Seed(seed)
		for {
			numChan <- r.Int63()
		}
	}()

	g := &Generator{
		ch: numChan,
	}

	return g, nil
}

// NewGeneratorSlice starts a new background PRNG seeded from a key array
// (canonical MT19937-64 init_by_array).
func NewGeneratorSlice(seed []uint64) (*Generator, error) {
	if len(seed) < 1 {
		return nil, errors.Errorf("Can not seed generator with empty slice")
	}

	numChan := make(chan int64, 1024)

	go func() {
		r := mt19937.New()
		r.SeedFromSlice(seed)
		for {
			numChan <- r.Int63()
		}
	}()

	g := &Generator{
		ch: numChan,
	}

	return g, nil
}

// Int63 provides the same interface as Go's math/rand, but with pre-generation.
func (g *Generator) Int63() int64 {
	return <-g.ch
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Intn returns an int in [0, n) - convenience for index selection
func (g *Generator) Intn(n int) int {
	return int(g.Int63n(int64(n)))
}

// Float64 uses the commented, simpler implmentation since we don't have the
// same support requirements for users
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

// NormFloat64 returns a standard normal deviate using the Marsaglia polar
// method. The second deviate of each pair is cached for the next call.
func (g *Generator) NormFloat64() float64 {
	if g.haveSpare {
		g.haveSpare = false
		return g.spare
	}

	var u, v, s float64
	for {
		u = 2.0*g.Float64() - 1.0
		v = 2.0*g.Float64() - 1.0
		s = u*u + v*v
		if s > 0.0 && s < 1.0 {
			break
		}
	}

	mul := math.Sqrt(-2.0 * math.Log(s) / s)
	g.spare = v * mul
	g.haveSpare = true
	return u * mul
}
