// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfbuild CLI.
//
// Running pdfbuild with no subcommand converts the Markdown sources to LaTeX
// and then generates the PDF, by running ./pdf-scripts/convert.sh and
// ./pdf-scripts/generate.sh in that order.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfbuild/internal/ctxlog"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command. Without a subcommand it runs the full build.
var rootCmd = &cobra.Command{
	Use:   "pdfbuild",
	Short: "Build a PDF from Markdown sources",
	Long: `pdfbuild runs the document build: it converts Markdown files to LaTeX
with pdf-scripts/convert.sh, then generates the PDF with
pdf-scripts/generate.sh. Both scripts are run as-is and their output is
passed through.

By default a failing step is reported as a warning and the build carries
on, exiting 0. Use --strict (or on_failure: abort) to stop at the first
failing step and exit non-zero.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger := ctxlog.New(cmd.ErrOrStderr(), verbose)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
	RunE: runBuild,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pdfbuild.yaml or ~/.config/pdfbuild/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log step diagnostics to stderr")

	addBuildFlags(rootCmd)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pdfbuild")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pdfbuild"))
		}
	}

	viper.SetEnvPrefix("PDFBUILD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
