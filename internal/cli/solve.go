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

package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/optiroute/optiroute/internal/modelfile"
	"github.com/optiroute/optiroute/pkg/mp"
)

var solveCmd = &cobra.Command{
	Use:   "solve <model.yaml|model.json>",
	Short: "solve a model with an automatically selected engine",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

var (
	fTimeLimit time.Duration
	fTolerance float64
	fEngine    string
	fOutput    string
)

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().DurationVar(&fTimeLimit, "time-limit", 0, "wall-clock limit for the engine invocation")
	solveCmd.Flags().Float64Var(&fTolerance, "tolerance", 0, "relative optimality tolerance")
	solveCmd.Flags().StringVar(&fEngine, "engine", "", "force a specific engine instead of automatic selection")
	solveCmd.Flags().StringVarP(&fOutput, "output", "o", "text", "output format: text, json or yaml")
}

func runSolve(cmd *cobra.Command, args []string) error {
	m, err := modelfile.Load(args[0])
	if err != nil {
		return err
	}

	s, cfg, err := newSolver()
	if err != nil {
		return err
	}
	ctx := commandContext(cmd, cfg)

	result := s.Run(ctx, m, mp.Options{
		TimeLimit:       fTimeLimit,
		Tolerance:       fTolerance,
		PreferredEngine: fEngine,
	})
	return printResult(cmd, result)
}

func printResult(cmd *cobra.Command, result mp.Result) error {
	out := cmd.OutOrStdout()
	switch fOutput {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		return yaml.NewEncoder(out).Encode(result)
	case "text":
		fmt.Fprintf(out, "status:     %s\n", result.Status)
		if result.Class != "" {
			fmt.Fprintf(out, "class:      %s\n", result.Class)
		}
		if result.Engine != "" {
			fmt.Fprintf(out, "engine:     %s\n", result.Engine)
		}
		fmt.Fprintf(out, "runtime:    %s\n", result.Runtime)
		if result.Objective != nil {
			fmt.Fprintf(out, "objective:  %g\n", *result.Objective)
		}
		if len(result.Assignment) > 0 {
			names := make([]string, 0, len(result.Assignment))
			for name := range result.Assignment {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintln(out, "assignment:")
			for _, name := range names {
				fmt.Fprintf(out, "  %s = %g\n", name, result.Assignment[name])
			}
		}
		if result.Diagnostic != "" {
			fmt.Fprintf(out, "diagnostic: %s\n", result.Diagnostic)
		}
		if result.Failure != "" {
			fmt.Fprintf(out, "failure:    %s\n", result.Failure)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", fOutput)
	}
}
