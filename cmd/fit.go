package cmd

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/chuanzhidong/bambi/compile"
	"github.com/chuanzhidong/bambi/infer"
	"github.com/chuanzhidong/bambi/rand"
)

// runFit loads a model description, compiles the graph, runs the selected
// inference method, and logs a posterior summary.
func runFit(log zerolog.Logger) error {
	spec, err := loadSpecFile(specFile)
	if err != nil {
		return err
	}

	log.Info().
		Str("model", specFile).
		Int("terms", len(spec.Terms)).
		Int("observations", len(spec.Response.Data)).
		Bool("noncentered", spec.NonCentered).
		Msg("Model description loaded")

	backend := compile.New()
	if err := backend.Build(spec, true); err != nil {
		return errors.Wrapf(err, "Could not compile model")
	}

	g := backend.Graph()
	log.Info().
		Int("nodes", len(g.Nodes())).
		Int("free", len(g.FreeVars())).
		Int("dim", g.Dim()).
		Msg("Model graph compiled")

	gen, err := rand.NewGenerator(randomSeed)
	if err != nil {
		return errors.Wrapf(err, "Could not create random generator")
	}

	runner, err := infer.NewRunner(g, gen)
	if err != nil {
		return err
	}

	result, err := runner.Run(infer.Options{
		Method:  methodName,
		Samples: sampleCount,
		Chains:  chainCount,
		BurnIn:  burnIn,
	})
	if err != nil {
		return err
	}

	switch result.Method {
	case "mcmc":
		logPosterior(log, result.Posterior)
	case "advi":
		logVariational(log, result.Variational)
	case "laplace":
		logLaplace(log, result.Laplace)
	}

	return nil
}

func logPosterior(log zerolog.Logger, post *infer.InferenceData) {
	log.Info().
		Float64("accept_rate", post.Stats.AcceptRate()).
		Msg("Sampling complete")

	for name, draws := range post.Draws {
		ev := log.Info().Str("var", name)
		ev.Floats64("mean", draws.Mean())
		ev.Floats64("sd", draws.StdDev())
		if rhat, ok := post.Stats.RHat[name]; ok {
			ev.Floats64("rhat", rhat)
		}
		ev.Msg("Posterior")
	}
}

func logVariational(log zerolog.Logger, params *infer.ADVIParams) {
	if n := len(params.ELBO); n > 0 {
		log.Info().Float64("elbo", params.ELBO[n-1]).Msg("Variational fit complete")
	}

	for _, span := range params.Index {
		mean, _ := params.Mean(span.Name)
		sd, _ := params.StdDev(span.Name)
		log.Info().
			Str("var", span.Name).
			Floats64("mean", mean).
			Floats64("sd", sd).
			Msg("Variational posterior (unconstrained scale)")
	}
}

func logLaplace(log zerolog.Logger, est map[string]infer.PointEstimate) {
	for name, pe := range est {
		log.Info().
			Str("var", name).
			Floats64("mode", pe.Mode).
			Floats64("sd", pe.Std).
			Msg("Laplace approximation")
	}
}
