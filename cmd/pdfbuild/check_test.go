// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfbuild/internal/runner"
	"github.com/pdiddy/pdfbuild/pkg/types"
)

type offlineRunner struct{ name string }

func (o offlineRunner) Name() string { return o.name }
func (o offlineRunner) Available(context.Context) bool { return false }
func (o offlineRunner) Run(context.Context, runner.Invocation) error {
	return runner.ErrLaunch
}

func runCheckCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "check", RunE: runCheck, SilenceUsage: true, SilenceErrors: true}
	addBuildFlags(cmd)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCheck_UnavailableRuntimeStillChecksScripts(t *testing.T) {
	orig := lookupRunner
	t.Cleanup(func() { lookupRunner = orig })

	var gotKind types.RuntimeKind
	lookupRunner = func(_ context.Context, kind types.RuntimeKind, _ string) (runner.Runner, error) {
		gotKind = kind
		return offlineRunner{name: "docker"}, nil
	}

	dir := setupProject(t, "0", "")
	out, err := runCheckCommand(t, "--runtime", "auto", "-C", dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 preflight check(s) failed")
	assert.Equal(t, types.RuntimeAuto, gotKind)
	assert.Contains(t, out, "missing  runtime docker: not installed or not running")
	assert.Contains(t, out, "ok       script  convert (./pdf-scripts/convert.sh)")
	assert.Contains(t, out, "missing  script  generate (./pdf-scripts/generate.sh): does not exist")
	assert.NotContains(t, out, "tool")
}

func TestRunCheck_Host(t *testing.T) {
	dir := setupProject(t, "0", "0")
	out, err := runCheckCommand(t, "-C", dir)

	// Tool findings depend on the machine; the scripts are always present.
	assert.Contains(t, out, "ok       script  convert (./pdf-scripts/convert.sh)")
	assert.Contains(t, out, "ok       script  generate (./pdf-scripts/generate.sh)")
	assert.NotContains(t, out, "runtime")
	if err != nil {
		assert.Contains(t, out, "missing  tool")
	}
}
