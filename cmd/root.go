package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var specFile string
var methodName string
var sampleCount int
var chainCount int
var burnIn int
var randomSeed int64
var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bambi",
	Short: "Hierarchical Bayesian model compiler and inference runner",
	Long: `bambi compiles an abstract model description into a probabilistic
model graph and fits it. Among other features:

  - Fixed and varying (group) effect terms with hyperpriors
  - Non-centered reparameterization of hierarchical scales
  - MCMC, variational (ADVI), and Laplace inference
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFit(buildLogger())
	},
}

func buildLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.PersistentFlags().StringVarP(&specFile, "model", "m", "", "YAML model description to fit")
	rootCmd.PersistentFlags().StringVarP(&methodName, "method", "M", "mcmc", "Inference method (mcmc, advi, laplace)")
	rootCmd.PersistentFlags().IntVarP(&sampleCount, "samples", "n", 1000, "Posterior draws per chain (mcmc)")
	rootCmd.PersistentFlags().IntVarP(&chainCount, "chains", "c", 2, "Chain count (mcmc)")
	rootCmd.PersistentFlags().IntVarP(&burnIn, "burnin", "b", 500, "Burn-in sweeps per chain (mcmc)")
	rootCmd.PersistentFlags().Int64VarP(&randomSeed, "seed", "r", 1, "Random seed to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging (default is much more parsimonious)")

	rootCmd.MarkPersistentFlagRequired("model")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
