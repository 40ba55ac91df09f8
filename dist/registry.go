package dist

import (
	"math"

	"github.com/pkg/errors"
)

// builtins is the registry of distribution kinds the runtime ships with
var builtins = map[string]Dist{
	"Normal":      Normal{},
	"HalfNormal":  HalfNormal{},
	"Cauchy":      Cauchy{},
	"HalfCauchy":  HalfCauchy{},
	"StudentT":    StudentT{},
	"Uniform":     Uniform{},
	"Beta":        Beta{},
	"Gamma":       Gamma{},
	"Exponential": Exponential{},
	"Bernoulli":   Bernoulli{},
	"Binomial":    Binomial{},
	"Poisson":     Poisson{},
	"Flat":        Flat{},
}

// derived is the local table of distributions built from the builtins
var derived = map[string]Dist{
	"HalfFlat": Bound{
		Base:      Flat{},
		BoundName: "HalfFlat",
		Lower:     0,
		Upper:     math.Inf(1),
	},
}

// Lookup resolves a distribution name: builtins first, then the local derived
// table. Fails closed with an error naming both sources.
func Lookup(name string) (Dist, error) {
	if d, ok := builtins[name]; ok {
		return d, nil
	}
	if d, ok := derived[name]; ok {
		return d, nil
	}
	return nil, errors.Errorf(
		"The Distribution %s was not found in the builtin registry or the derived table", name,
	)
}
