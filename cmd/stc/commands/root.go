// Package commands provides the CLI commands for the stc tool.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errDiagnostics makes the process exit with status 1 once the diagnostics
// have been printed.
var errDiagnostics = errors.New("type checking failed")

var rootCmd = &cobra.Command{
	Use:   "stc",
	Short: "Static type checker for Groovy-style class units",
	Long: `stc infers types for every expression of a unit, resolves each call to
its target method and reports type errors.

Usage:
  stc check unit.yaml           Check one or more units
  stc dump unit.yaml            Print the annotated tree of a unit
  stc version                   Print version`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to stc.yaml (searched upwards from the working directory by default)")
	rootCmd.PersistentFlags().StringSliceVarP(&searchPaths, "search", "s", nil, "Directories searched for imported units")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Report diagnostics at synthetic positions")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log checker progress")
}
