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

	"github.com/notargets/wbfold/InputParameters"
	"github.com/notargets/wbfold/wbcell"
)

// ExampleCmd represents the example command
var ExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print an example input parameters file",
	Long: `
Prints an input parameters file for the default waterbomb shell. With --cell the default
waterbomb cell is printed as an explicit cell file instead, ready to be edited and used
with CellType: explicit.

wbfold example > shell.yaml
wbfold example --cell > cell.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		asCell, _ := cmd.Flags().GetBool("cell")
		return RunExample(asCell, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(ExampleCmd)
	ExampleCmd.Flags().Bool("cell", false, "print the default cell as an explicit cell file")
}

func RunExample(asCell bool, w io.Writer) (err error) {
	var (
		g    *wbcell.Geometry
		data []byte
	)
	if !asCell {
		_, err = fmt.Fprint(w, InputParameters.ExampleFile)
		return
	}
	wb := wbcell.DefaultWB4P()
	if g, err = wb.Geometry(); err != nil {
		return
	}
	if data, err = wbcell.NewExplicit(wb.String(), g).Marshal(); err != nil {
		return
	}
	_, err = w.Write(data)
	return
}
