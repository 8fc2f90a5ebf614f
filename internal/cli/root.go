/*
Copyright 2026 The optiroute Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cli implements the optiroute command line tool.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/optiroute/optiroute/internal/config"
	"github.com/optiroute/optiroute/internal/dispatch"
	"github.com/optiroute/optiroute/internal/logging"
	"github.com/optiroute/optiroute/internal/normalize"
	"github.com/optiroute/optiroute/pkg/solver"
)

var rootCmd = &cobra.Command{
	Use:   "optiroute",
	Short: "classify optimization models and route them to a compatible solver",
	Long: `optiroute reads an optimization model, derives its problem class
(LP, IP, NLP, MILP or MINLP), picks an installed solver engine that can
take it, and reports the outcome in one uniform result shape.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var (
	fConfigPath string
	fVerbosity  int
)

func init() {
	rootCmd.PersistentFlags().StringVar(&fConfigPath, "config", "", "path to the optiroute config file")
	rootCmd.PersistentFlags().IntVarP(&fVerbosity, "verbosity", "v", 0, "log verbosity (0 = info, 1 = debug, 2 = trace)")
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// newSolver assembles a solver from the configuration and flags.
func newSolver() (*solver.Solver, *config.Config, error) {
	cfg, err := config.Load(fConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if fVerbosity > cfg.Logging.Verbosity {
		cfg.Logging.Verbosity = fVerbosity
	}

	reg, err := cfg.NewRegistry()
	if err != nil {
		return nil, nil, err
	}

	normalizer := normalize.New()
	if cfg.StatusTable != "" {
		if err := normalizer.LoadOverrides(cfg.StatusTable); err != nil {
			return nil, nil, err
		}
	}

	s := solver.New(solver.Params{
		Registry:   reg,
		Dispatcher: dispatch.New().WithMaxConcurrent(cfg.MaxConcurrentSolves),
		Normalizer: normalizer,
		Defaults:   cfg.Options(),
	})
	return s, cfg, nil
}

// commandContext returns a context carrying the configured logger.
func commandContext(cmd *cobra.Command, cfg *config.Config) context.Context {
	logger := logging.NewLogger(cfg.Logging.Verbosity, cfg.Logging.Development)
	return logging.IntoContext(cmd.Context(), logger)
}
