package model

import (
	"math"

	"github.com/pkg/errors"
)

// links is the fixed registry of inverse link functions: the named link maps
// the linear predictor back onto the response parameter's scale.
var links = map[string]func(float64) float64{
	"identity": func(x float64) float64 { return x },
	"logit":    func(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) },
	"inverse":  func(x float64) float64 { return 1.0 / x },
	"inverse_squared": func(x float64) float64 {
		return 1.0 / math.Sqrt(x)
	},
	"log": math.Exp,
}

// ResolveLink returns the family's inverse link: a supplied callable wins
// over the named registry entry.
func (f *Family) ResolveLink() (func(float64) float64, error) {
	if f.LinkFunc != nil {
		return f.LinkFunc, nil
	}

	fn, ok := links[f.LinkName]
	if !ok {
		return nil, errors.Errorf("Unknown link function %s", f.LinkName)
	}
	return fn, nil
}
