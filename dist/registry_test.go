package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupBuiltin(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"Normal", "HalfNormal", "Cauchy", "StudentT", "Gamma", "Flat"} {
		d, err := Lookup(name)
		assert.NoError(err)
		assert.Equal(name, d.Name())
	}
}

func TestLookupDerived(t *testing.T) {
	assert := assert.New(t)

	d, err := Lookup("HalfFlat")
	assert.NoError(err)
	assert.Equal("HalfFlat", d.Name())
	assert.Equal(Positive, d.Support())

	// Lower-half-bounded Flat: zero density below zero, constant above
	assert.True(math.IsInf(d.LogProb(Args{}, 0, -0.001), -1))
	assert.Equal(0.0, d.LogProb(Args{}, 0, 3.5))
}

func TestLookupUnknown(t *testing.T) {
	assert := assert.New(t)

	d, err := Lookup("Nope")
	assert.Nil(d)
	assert.Error(err)
	assert.Contains(err.Error(), "Nope")
	assert.Contains(err.Error(), "builtin registry")
	assert.Contains(err.Error(), "derived table")
}
