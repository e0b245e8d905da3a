// Package cmd provides the CLI entry point for gofind.
//
// gofind's expression grammar (positional starting points followed by an
// arbitrarily-ordered mix of single-dash tests, actions, and operators)
// is not something pflag's flag parser can express, so the root command
// disables cobra's own flag parsing and hands the raw argument slice to
// internal/parser directly. cobra is kept for -h/--help and
// -v/--version; the global options (-H/-L/-P, -D, -O) are parsed by
// internal/parser along with the rest of the expression. initConfig
// points viper at GOFIND_* environment variables and an optional config
// file, but no setting is read back from viper.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:                "gofind [-H|-L|-P] [-D debugopts] [-Olevel] [path...] [expression]",
	Short:              "Walk a file hierarchy and evaluate an expression against each entry",
	Version:            version,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 && (args[0] == "-h" || args[0] == "--help") {
			return cmd.Help()
		}
		if len(args) > 0 && (args[0] == "-v" || args[0] == "--version") {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		}
		return runFind(args)
	},
}

// Execute runs the root command and returns its error, if any; main.go
// maps that error to the process exit code.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig wires GOFIND_* environment variables and an optional
// ~/.gofind.yaml into viper, the way the teacher's initConfig reads
// ~/.stride.yaml.
func initConfig() {
	viper.SetEnvPrefix("gofind")
	viper.AutomaticEnv()

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gofind")
		_ = viper.ReadInConfig()
	}
}

// newLogger builds the zap logger gofind's -D debug output writes
// through, following the teacher's LogLevel-to-zap.Config mapping
// applied to gofind's -D option: any -D flag at all switches on a
// development (console, debug-level) config. All debug output then goes
// through this one logger; it does not tell the -D categories apart.
func newLogger(debugRequested bool) *zap.Logger {
	if !debugRequested {
		return zap.NewNop()
	}
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
