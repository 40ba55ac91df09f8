package graph

import (
	"github.com/pkg/errors"
)

// Env maps node names to their current (constrained-scale) values
type Env map[string][]float64

// valueKind tags the Value union
type valueKind int

const (
	constValue valueKind = iota
	vectorValue
	refValue
	computedValue
)

// A Value is one distribution argument slot: a concrete scalar, a concrete
// vector, a reference to another node's current value, or a function of the
// environment (the linear predictor feeding the response).
type Value struct {
	kind   valueKind
	scalar float64
	vector []float64
	ref    string
	fn     func(Env) []float64
}

// Const builds a concrete scalar value
func Const(v float64) *Value { return &Value{kind: constValue, scalar: v} }

// Vector builds a concrete vector value
func Vector(v []float64) *Value { return &Value{kind: vectorValue, vector: v} }

// Ref builds a reference to the named node's current value
func Ref(name string) *Value { return &Value{kind: refValue, ref: name} }

// Computed builds a value evaluated against the environment on every walk
func Computed(fn func(Env) []float64) *Value { return &Value{kind: computedValue, fn: fn} }

// IsRef reports whether this value references another node, and its name
func (v *Value) IsRef() (string, bool) {
	if v.kind == refValue {
		return v.ref, true
	}
	return "", false
}

// Resolve produces the numeric value under the given environment
func (v *Value) Resolve(env Env) ([]float64, error) {
	switch v.kind {
	case constValue:
		return []float64{v.scalar}, nil
	case vectorValue:
		return v.vector, nil
	case refValue:
		vals, ok := env[v.ref]
		if !ok {
			return nil, errors.Errorf("Value references unknown node %s", v.ref)
		}
		return vals, nil
	case computedValue:
		return v.fn(env), nil
	}
	return nil, errors.Errorf("Invalid value kind %d", v.kind)
}
