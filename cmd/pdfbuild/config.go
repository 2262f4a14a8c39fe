// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfbuild/pkg/types"
)

// Config keys. Each can be set in pdfbuild.yaml or as PDFBUILD_<KEY> with
// dots replaced by underscores.
const (
	keyScriptsDir     = "scripts_dir"
	keyConvertScript  = "convert_script"
	keyGenerateScript = "generate_script"
	keySteps          = "steps"
	keyOnFailure      = "on_failure"
	keyRuntime        = "runtime"
	keyImage          = "image"
	keyTools          = "tools"
	keyWorkDir        = "work_dir"
	keyHistoryEnabled = "history.enabled"
	keyHistoryDir     = "history.dir"
)

// addBuildFlags registers the flags shared by every command that runs or
// checks build steps.
func addBuildFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("scripts-dir", "", "directory holding the build scripts (default pdf-scripts)")
	f.String("convert-script", "", "Markdown to LaTeX script name (default convert.sh)")
	f.String("generate-script", "", "LaTeX to PDF script name (default generate.sh)")
	f.Bool("strict", false, "stop at the first failing step and exit non-zero")
	f.String("on-failure", "", "what to do when a step fails: continue or abort (default continue)")
	f.String("runtime", "", "where scripts run: host, docker, podman or auto (default host)")
	f.String("image", "", "container image for docker/podman runtimes (default "+types.DefaultImage+")")
	f.StringP("work-dir", "C", "", "run the build from this directory")
	f.Bool("record", false, "record the run in the history database")
	f.String("history-dir", "", "directory for the history database (default .pdfbuild)")
}

// loadBuildConfig resolves the build configuration. Precedence is flag,
// then config file or environment, then built-in default.
func loadBuildConfig(cmd *cobra.Command, v *viper.Viper) (types.BuildConfig, error) {
	cfg := types.BuildConfig{
		Policy:  types.PolicyContinue,
		Runtime: types.RuntimeHost,
		Image:   types.DefaultImage,
		Tools:   types.DefaultTools,
		History: types.HistoryConfig{Dir: types.DefaultHistoryDir},
	}

	scriptsDir := stringSetting(cmd, v, "scripts-dir", keyScriptsDir, types.DefaultScriptsDir)
	convert := stringSetting(cmd, v, "convert-script", keyConvertScript, types.DefaultConvertScript)
	generate := stringSetting(cmd, v, "generate-script", keyGenerateScript, types.DefaultGenerateScript)
	cfg.Steps = []types.StepConfig{
		types.ConvertStep(scriptsDir, convert),
		types.GenerateStep(scriptsDir, generate),
	}

	// A custom step list replaces the default pair entirely.
	if v.IsSet(keySteps) {
		var steps []types.StepConfig
		if err := v.UnmarshalKey(keySteps, &steps); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", keySteps, err)
		}
		if len(steps) == 0 {
			return cfg, fmt.Errorf("%s is set but lists no steps", keySteps)
		}
		for i, s := range steps {
			if s.Name == "" || s.Path == "" {
				return cfg, fmt.Errorf("%s[%d]: name and path are required", keySteps, i)
			}
			if s.Start == "" {
				steps[i].Start = "Running " + s.Name + " ..."
			}
		}
		cfg.Steps = steps
	}

	cfg.Policy = types.FailurePolicy(stringSetting(cmd, v, "on-failure", keyOnFailure, string(cfg.Policy)))
	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		cfg.Policy = types.PolicyAbort
	}
	if !cfg.Policy.Valid() {
		return cfg, fmt.Errorf("unknown failure policy %q (want continue or abort)", cfg.Policy)
	}

	cfg.Runtime = types.RuntimeKind(stringSetting(cmd, v, "runtime", keyRuntime, string(cfg.Runtime)))
	cfg.Image = stringSetting(cmd, v, "image", keyImage, cfg.Image)
	cfg.WorkDir = stringSetting(cmd, v, "work-dir", keyWorkDir, "")

	if v.IsSet(keyTools) {
		cfg.Tools = v.GetStringSlice(keyTools)
	}

	cfg.History.Dir = stringSetting(cmd, v, "history-dir", keyHistoryDir, cfg.History.Dir)
	cfg.History.Enabled = v.GetBool(keyHistoryEnabled)
	if record, _ := cmd.Flags().GetBool("record"); record {
		cfg.History.Enabled = true
	}

	return cfg, nil
}

// stringSetting returns the flag value when the user set it, else the
// viper value when present, else fallback.
func stringSetting(cmd *cobra.Command, v *viper.Viper, flag, key, fallback string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	if s := v.GetString(key); s != "" {
		return s
	}
	return fallback
}
