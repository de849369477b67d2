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
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/wbfold/InputParameters"
	"github.com/notargets/wbfold/foldfile"
	"github.com/notargets/wbfold/tessellation"
	"github.com/notargets/wbfold/utils"
)

var ErrNoInputFile = errors.New("must supply an input parameters file (-I, --inputParametersFile) in YAML format")

type ModelShell struct {
	InputFile string
	OutputDir string
	Verbose   bool
}

// TessellateCmd represents the tessellate command
var TessellateCmd = &cobra.Command{
	Use:   "tessellate",
	Short: "Build a folded shell from a cell and write it as a FOLD file",
	Long: `
Builds the shell described by an input parameters file, prints its statistics and writes
the merged vertices, faces and crease lines in FOLD format.

wbfold tessellate -I shell.yaml [-o shell.fold]`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip *InputParameters.TessellationParameters
		)
		ms := &ModelShell{
			OutputDir: viper.GetString("output-dir"),
			Verbose:   viper.GetBool("verbose"),
		}
		ms.InputFile, _ = cmd.Flags().GetString("inputParametersFile")
		if ip, err = processInput(ms, cmd); err != nil {
			return
		}
		ip.Print()
		_, err = RunTessellate(ms, ip, os.Stdout, time.Now())
		return
	},
}

func init() {
	rootCmd.AddCommand(TessellateCmd)
	addShellFlags(TessellateCmd)
	TessellateCmd.Flags().StringP("outputFile", "o", "", "FOLD file to write, default is <date>-<time>-shell.fold")
	TessellateCmd.Flags().Bool("creases", false, "write valley and mountain lines into the FOLD file")
}

// addShellFlags registers the flags shared by every command that builds a shell
func addShellFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- Gamma, A, B, C\n\t- NXPlus, NPhiPlus")
	cmd.Flags().IntP("nxPlus", "x", 0, "cells along the axis, overrides NXPlus")
	cmd.Flags().IntP("nphiPlus", "p", 0, "cells around the axis, overrides NPhiPlus")
	cmd.Flags().Bool("trimX", false, "trim the half cells at both axial ends")
	cmd.Flags().Bool("trimY", false, "trim the half cells at both angular ends")
	cmd.Flags().Bool("align", false, "align the outer nodes at both axial ends")
	cmd.Flags().String("dedup", "", "node merge method: dense, parallel or kdtree")
	cmd.Flags().Int("parallelDegree", 0, "goroutines used by the parallel node merge, 0 uses every CPU")
}

func processInput(ms *ModelShell, cmd *cobra.Command) (ip *InputParameters.TessellationParameters, err error) {
	if len(ms.InputFile) == 0 {
		fmt.Printf("Example File:%s\n", InputParameters.ExampleFile)
		return nil, ErrNoInputFile
	}
	if ip, err = readInput(ms.InputFile); err != nil {
		return nil, err
	}
	if err = applyFlags(ip, cmd); err != nil {
		return nil, err
	}
	return
}

// readInput layers the input file over the defaults and the config file settings
func readInput(path string) (ip *InputParameters.TessellationParameters, err error) {
	var data []byte
	ip = InputParameters.NewTessellationParameters()
	if dd := viper.GetString("dedup"); len(dd) != 0 {
		ip.Dedup = dd
	}
	ip.ParallelDegree = viper.GetInt("parallel-degree")
	if data, err = os.ReadFile(path); err != nil {
		return nil, err
	}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return
}

// applyFlags overrides the input file with the flags given on the command line
func applyFlags(ip *InputParameters.TessellationParameters, cmd *cobra.Command) (err error) {
	fl := cmd.Flags()
	if fl.Changed("nxPlus") {
		ip.NXPlus, _ = fl.GetInt("nxPlus")
	}
	if fl.Changed("nphiPlus") {
		ip.NPhiPlus, _ = fl.GetInt("nphiPlus")
	}
	if fl.Changed("trimX") {
		ip.TrimHalfCellsAlongX, _ = fl.GetBool("trimX")
	}
	if fl.Changed("trimY") {
		ip.TrimHalfCellsAlongY, _ = fl.GetBool("trimY")
	}
	if fl.Changed("align") {
		ip.AlignOuterNodesAlongX, _ = fl.GetBool("align")
	}
	if fl.Changed("dedup") {
		ip.Dedup, _ = fl.GetString("dedup")
	}
	if fl.Changed("parallelDegree") {
		ip.ParallelDegree, _ = fl.GetInt("parallelDegree")
	}
	if fl.Lookup("outputFile") != nil && fl.Changed("outputFile") {
		ip.OutputFile, _ = fl.GetString("outputFile")
	}
	if fl.Lookup("creases") != nil && fl.Changed("creases") {
		ip.Creases, _ = fl.GetBool("creases")
	}
	return ip.Validate()
}

// outputPath places a relative output file under the configured output directory
func outputPath(ms *ModelShell, ip *InputParameters.TessellationParameters, now time.Time) (path string) {
	path = ip.OutputFile
	if len(path) == 0 {
		path = foldfile.DefaultFileName(now)
	}
	if len(ms.OutputDir) != 0 && !filepath.IsAbs(path) {
		path = filepath.Join(ms.OutputDir, path)
	}
	return
}

func RunTessellate(ms *ModelShell, ip *InputParameters.TessellationParameters, w io.Writer,
	now time.Time) (written string, err error) {
	var (
		ts *tessellation.Tessellation
		m  *tessellation.Mesh
	)
	if ts, err = ip.NewTessellation(); err != nil {
		return
	}
	start := time.Now()
	if m, err = ts.Mesh(); err != nil {
		return
	}
	if ms.Verbose {
		fmt.Fprintf(w, "Mesh built in %v, %s\n", time.Since(start), utils.GetMemUsage())
	}
	if err = m.Verify(); err != nil {
		return
	}
	m.PrintStatistics(w)
	if written, err = ts.Export(outputPath(ms, ip, now), now, ip.Creases); err != nil {
		return
	}
	fmt.Fprintf(w, "Wrote %s\n", written)
	return
}
