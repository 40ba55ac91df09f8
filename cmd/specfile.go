package cmd

import (
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/chuanzhidong/bambi/model"
)

// YAML schema for a model description file. Argument values hold exactly one
// of value/vector/prior, mirroring the ArgValue union.
type argFile struct {
	Value  *float64   `yaml:"value"`
	Vector []float64  `yaml:"vector"`
	Prior  *priorFile `yaml:"prior"`
}

type priorFile struct {
	Name string             `yaml:"name"`
	Args map[string]argFile `yaml:"args"`
}

type termFile struct {
	Name       string      `yaml:"name"`
	Data       [][]float64 `yaml:"data"`
	Prior      *priorFile  `yaml:"prior"`
	Random     bool        `yaml:"random"`
	GroupIndex []int       `yaml:"group_index"`
	Predictor  []float64   `yaml:"predictor"`
}

type specFileDoc struct {
	NonCentered bool `yaml:"noncentered"`
	Response    struct {
		Name string    `yaml:"name"`
		Data []float64 `yaml:"data"`
	} `yaml:"response"`
	Family struct {
		Parent string     `yaml:"parent"`
		Link   string     `yaml:"link"`
		Prior  *priorFile `yaml:"prior"`
	} `yaml:"family"`
	Terms []termFile `yaml:"terms"`
}

func (p *priorFile) toPrior() (*model.Prior, error) {
	if p == nil {
		return nil, errors.Errorf("Missing prior")
	}

	args := make(map[string]model.ArgValue, len(p.Args))
	for name, a := range p.Args {
		set := 0
		if a.Value != nil {
			set++
		}
		if a.Vector != nil {
			set++
		}
		if a.Prior != nil {
			set++
		}
		if set != 1 {
			return nil, errors.Errorf("Prior %s arg %s must set exactly one of value/vector/prior", p.Name, name)
		}

		switch {
		case a.Prior != nil:
			nested, err := a.Prior.toPrior()
			if err != nil {
				return nil, err
			}
			args[name] = model.Nested(nested)
		case a.Vector != nil:
			args[name] = model.Vector(a.Vector)
		default:
			args[name] = model.Scalar(*a.Value)
		}
	}

	return model.NewPrior(p.Name, args), nil
}

func (t *termFile) toTerm() (*model.Term, error) {
	if len(t.Data) < 1 || len(t.Data[0]) < 1 {
		return nil, errors.Errorf("Term %s has no data", t.Name)
	}

	rows := len(t.Data)
	cols := len(t.Data[0])
	flat := make([]float64, 0, rows*cols)
	for i, row := range t.Data {
		if len(row) != cols {
			return nil, errors.Errorf("Term %s row %d has %d columns, want %d", t.Name, i, len(row), cols)
		}
		flat = append(flat, row...)
	}

	prior, err := t.Prior.toPrior()
	if err != nil {
		return nil, errors.Wrapf(err, "Term %s has an invalid prior", t.Name)
	}

	return &model.Term{
		Name:       t.Name,
		Data:       mat.NewDense(rows, cols, flat),
		Prior:      prior,
		Random:     t.Random,
		GroupIndex: t.GroupIndex,
		Predictor:  t.Predictor,
	}, nil
}

// loadSpecFile reads, parses, and validates a model description
func loadSpecFile(filename string) (*model.Spec, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ model description from %s", filename)
	}

	var doc specFileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE model description from %s", filename)
	}

	famPrior, err := doc.Family.Prior.toPrior()
	if err != nil {
		return nil, errors.Wrapf(err, "Family has an invalid response prior")
	}

	spec := &model.Spec{
		NonCentered: doc.NonCentered,
		Response: &model.ResponseTerm{
			Name: doc.Response.Name,
			Data: doc.Response.Data,
		},
		Family: &model.Family{
			Parent:   doc.Family.Parent,
			LinkName: doc.Family.Link,
			Prior:    famPrior,
		},
	}

	for i := range doc.Terms {
		term, err := doc.Terms[i].toTerm()
		if err != nil {
			return nil, err
		}
		spec.Terms = append(spec.Terms, term)
	}

	if err := spec.Check(); err != nil {
		return nil, errors.Wrapf(err, "Parsed model description is not valid")
	}

	return spec, nil
}
