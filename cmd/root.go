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
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	stopProfile = func() {}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wbfold",
	Short: "Waterbomb folded shell generator",
	Long: `
Replicates a waterbomb unit cell over an axial by angular grid, merges the coincident
nodes and writes the resulting shell as a FOLD file.

wbfold example > shell.yaml
wbfold tessellate -I shell.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		var stop func()
		mode, _ := cmd.Flags().GetString("profile")
		if stop, err = startProfile(mode); err != nil {
			return
		}
		stopProfile = stop
		return
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		finishProfile()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := run(nil); err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
}

// run executes the command line, cobra skips the post run hooks when a command fails
func run(args []string) (err error) {
	if args != nil {
		rootCmd.SetArgs(args)
	}
	err = rootCmd.Execute()
	finishProfile()
	return
}

func finishProfile() {
	stopProfile()
	stopProfile = func() {}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wbfold.yaml)")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile into the working directory")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print the time spent building the mesh")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.SetDefault("dedup", "")
	viper.SetDefault("parallel-degree", 0)
	viper.SetDefault("output-dir", "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".wbfold")
	}
	viper.SetEnvPrefix("wbfold")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func startProfile(mode string) (stop func(), err error) {
	var opt func(*profile.Profile)
	switch strings.ToLower(mode) {
	case "":
		return func() {}, nil
	case "cpu":
		opt = profile.CPUProfile
	case "mem":
		opt = profile.MemProfile
	default:
		return nil, fmt.Errorf("unknown profile mode [%s], must be cpu or mem", mode)
	}
	p := profile.Start(opt, profile.ProfilePath("."), profile.NoShutdownHook)
	return p.Stop, nil
}
