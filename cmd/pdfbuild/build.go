// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfbuild/internal/ctxlog"
	"github.com/pdiddy/pdfbuild/internal/history"
	"github.com/pdiddy/pdfbuild/internal/runner"
	"github.com/pdiddy/pdfbuild/internal/sequencer"
	"github.com/pdiddy/pdfbuild/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Convert Markdown to LaTeX, then generate the PDF",
	Long: `Build runs every configured step in order. The default steps are
pdf-scripts/convert.sh (Markdown to LaTeX) followed by
pdf-scripts/generate.sh (LaTeX to PDF). This is what pdfbuild does when
run without a subcommand.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	addBuildFlags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	return runSteps(cmd)
}

// runSteps loads the configuration and runs the named steps, or all of
// them when no names are given.
func runSteps(cmd *cobra.Command, names ...string) error {
	cfg, err := loadBuildConfig(cmd, viper.GetViper())
	if err != nil {
		return err
	}
	steps, err := selectSteps(cfg.Steps, names)
	if err != nil {
		return err
	}
	cfg.Steps = steps

	_, err = executeBuild(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	return err
}

// executeBuild runs cfg.Steps and records the run when history is enabled.
// Recording problems are reported on errw and never change the result.
func executeBuild(ctx context.Context, cfg types.BuildConfig, out, errw io.Writer) (types.RunReport, error) {
	r, err := runner.New(ctx, cfg.Runtime, cfg.Image)
	if err != nil {
		return types.RunReport{}, err
	}

	seq := &sequencer.Sequencer{
		Runner: r,
		Steps:  cfg.Steps,
		Policy: cfg.Policy,
		Dir:    cfg.WorkDir,
		Out:    out,
		Err:    errw,
	}
	report, runErr := seq.Run(ctx)

	if cfg.History.Enabled {
		// The build context may be cancelled; the record should still land.
		if id, err := recordRun(context.WithoutCancel(ctx), cfg.History, report); err != nil {
			fmt.Fprintf(errw, "warning: could not record build history: %v\n", err)
		} else {
			ctxlog.FromContext(ctx).Debug("recorded run", "id", id, "dir", cfg.History.Dir)
		}
	}

	return report, runErr
}

func recordRun(ctx context.Context, cfg types.HistoryConfig, report types.RunReport) (int64, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.Record(ctx, report)
}

// selectSteps keeps the steps whose names appear in names, in configured
// order. No names selects every step.
func selectSteps(steps []types.StepConfig, names []string) ([]types.StepConfig, error) {
	if len(names) == 0 {
		return steps, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out []types.StepConfig
	for _, s := range steps {
		if want[s.Name] {
			out = append(out, s)
			delete(want, s.Name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("no step named %s is configured", strings.Join(missing, ", "))
	}
	return out, nil
}
