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
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "list registered engines with availability and supported classes",
	Args:  cobra.NoArgs,
	RunE:  runEngines,
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

func runEngines(cmd *cobra.Command, _ []string) error {
	s, _, err := newSolver()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ENGINE\tAVAILABLE\tCLASSES\tFUNCTIONS")
	for _, name := range s.Registry().Names() {
		e, ok := s.Registry().Engine(name)
		if !ok {
			continue
		}
		caps := e.Capabilities()
		fmt.Fprintf(w, "%s\t%t\t%v\t%t\n", name, e.Available(), caps.Classes, caps.FunctionNodes)
	}
	return w.Flush()
}
