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

	"github.com/spf13/cobra"

	"github.com/optiroute/optiroute/internal/classify"
	"github.com/optiroute/optiroute/internal/modelfile"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <model.yaml|model.json>",
	Short: "derive the problem class of a model without solving it",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	m, err := modelfile.Load(args[0])
	if err != nil {
		return err
	}
	class, err := classify.Classify(m)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), class)
	return nil
}
