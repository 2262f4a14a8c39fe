// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfbuild/internal/preflight"
	"github.com/pdiddy/pdfbuild/internal/runner"
	"github.com/pdiddy/pdfbuild/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the build scripts and their tools are installed",
	Long: `Check confirms each step script exists and is executable, and that the
programs the scripts call (pandoc and pdflatex by default, see "tools" in
the config) are on PATH. With a container runtime the tools are expected
in the image and the runtime itself is checked instead.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// lookupRunner returns the runner without requiring it to be up, so an
// unavailable runtime shows as a finding next to the script checks.
var lookupRunner = runner.Lookup

func init() {
	addBuildFlags(checkCmd)
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadBuildConfig(cmd, viper.GetViper())
	if err != nil {
		return err
	}

	in := preflight.Input{
		Steps: cfg.Steps,
		Dir:   cfg.WorkDir,
		Tools: cfg.Tools,
	}
	if cfg.Runtime != types.RuntimeHost {
		r, err := lookupRunner(cmd.Context(), cfg.Runtime, cfg.Image)
		if err != nil {
			return err
		}
		in.Runner = r
	}

	res := preflight.Check(cmd.Context(), in)
	res.Print(cmd.OutOrStdout())

	if n := len(res.Failures()); n > 0 {
		return fmt.Errorf("%d preflight check(s) failed", n)
	}
	return nil
}
