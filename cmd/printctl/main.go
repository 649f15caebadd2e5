/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

// Command printctl is a small operator CLI over the printer
// scheduling engine: it stands up an in-memory fleet from a config
// file, runs a demo schedule, and prints status. It exists for local
// operation and smoke-testing; the façade that fronts this engine in
// production is out of scope (spec.md §1).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "printctl",
		Short: "Operate an in-memory printer scheduling engine",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a fleet config file (YAML/JSON/TOML, via viper)")

	root.AddCommand(newScheduleCmd(&cfgFile))
	root.AddCommand(newStatusCmd(&cfgFile))
	root.AddCommand(newUpdateCmd(&cfgFile))

	return root
}

func mustLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return l
}
