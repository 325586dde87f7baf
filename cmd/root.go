// Package cmd implements the dartcc CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	workRoot string
	verbose  bool

	appVersion = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "dartcc",
	Short: "dartcc — bootstrap and build the Dart SDK toolchain",
	Long: "dartcc runs declarative, conditional step pipelines that fetch and\n" +
		"build external toolchains such as the Dart SDK. Each target is an\n" +
		"ordered list of steps; completed steps are skipped on re-runs.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "dartcc.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&workRoot, "work-root", ".", "directory for target working directories")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(targetsCmd)
}

// SetVersionInfo sets the version and commit for display.
func SetVersionInfo(version, commit string) {
	appVersion = version
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("dartcc %s (commit: %s)\n", version, commit))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
