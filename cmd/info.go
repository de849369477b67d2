/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

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
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/wbfold/InputParameters"
	"github.com/notargets/wbfold/analysis"
	"github.com/notargets/wbfold/tessellation"
)

// InfoCmd represents the info command
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Analyze a folded shell without writing it",
	Long: `
Builds the shell described by an input parameters file and prints its dimensions, crease
lengths, convex envelope and the boundary nodes used for supports and loads.

wbfold info -I shell.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip *InputParameters.TessellationParameters
		)
		ms := &ModelShell{Verbose: viper.GetBool("verbose")}
		ms.InputFile, _ = cmd.Flags().GetString("inputParametersFile")
		if ip, err = processInput(ms, cmd); err != nil {
			return
		}
		ip.Print()
		return RunInfo(ip, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(InfoCmd)
	addShellFlags(InfoCmd)
}

func RunInfo(ip *InputParameters.TessellationParameters, w io.Writer) (err error) {
	var (
		ts *tessellation.Tessellation
		m  *tessellation.Mesh
	)
	if ts, err = ip.NewTessellation(); err != nil {
		return
	}
	if m, err = ts.Mesh(); err != nil {
		return
	}
	analysis.Analyze(m).Print(w)
	first, last := m.MarkerNodes()
	if first == nil {
		return
	}
	fmt.Fprintf(w, "Boundary Nodes:\n")
	fmt.Fprintf(w, "  First angular row: %v\n", first)
	fmt.Fprintf(w, "  Last angular row: %v\n", last)
	fmt.Fprintf(w, "  Crown: %v\n", m.CrownNodes())
	return
}
