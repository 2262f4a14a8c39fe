// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sequencer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfbuild/internal/runner"
	"github.com/pdiddy/pdfbuild/pkg/types"
)

type exitStatus int

func (e exitStatus) Error() string { return "exit status " + strconv.Itoa(int(e)) }
func (e exitStatus) ExitCode() int { return int(e) }

// fakeRunner writes a marker for every invocation into the same stream as
// the status lines, so tests can check their interleaving.
type fakeRunner struct {
	fail  map[string]error // path -> error returned by Run
	calls []string
}

func (f *fakeRunner) Name() string { return "fake" }
func (f *fakeRunner) Available(context.Context) bool { return true }
func (f *fakeRunner) Run(_ context.Context, inv runner.Invocation) error {
	f.calls = append(f.calls, inv.Path)
	fmt.Fprintf(inv.Stdout, "[ran %s]\n", inv.Path)
	return f.fail[inv.Path]
}

const (
	convertPath  = "./pdf-scripts/convert.sh"
	generatePath = "./pdf-scripts/generate.sh"
)

func exitFailure(path string, code int) error {
	return fmt.Errorf("%s: %w with status %d: %w", path, runner.ErrExit, code, exitStatus(code))
}

func launchFailure(path string) error {
	return fmt.Errorf("%s: %w: %w", path, runner.ErrLaunch, errors.New("no such file or directory"))
}

const allOK = "Converting Markdown files to LaTeX ...\n" +
	"[ran ./pdf-scripts/convert.sh]\n" +
	"Done.\n\n" +
	"Generating PDF...\n" +
	"[ran ./pdf-scripts/generate.sh]\n" +
	"Done.\n\n"

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		fail       map[string]error
		policy     types.FailurePolicy
		wantOut    string
		wantCalls  []string
		wantFailed []string
		wantErr    error
		wantCodes  []int
	}{
		{
			name:      "both steps succeed",
			wantOut:   allOK,
			wantCalls: []string{convertPath, generatePath},
			wantCodes: []int{0, 0},
		},
		{
			name:       "convert fails, generate still runs",
			fail:       map[string]error{convertPath: exitFailure(convertPath, 1)},
			wantOut:    allOK,
			wantCalls:  []string{convertPath, generatePath},
			wantFailed: []string{types.StepConvert},
			wantCodes:  []int{1, 0},
		},
		{
			name:       "generate script missing",
			fail:       map[string]error{generatePath: launchFailure(generatePath)},
			wantOut:    allOK,
			wantCalls:  []string{convertPath, generatePath},
			wantFailed: []string{types.StepGenerate},
			wantCodes:  []int{0, -1},
		},
		{
			name:       "both fail under continue",
			fail:       map[string]error{convertPath: exitFailure(convertPath, 2), generatePath: exitFailure(generatePath, 3)},
			wantOut:    allOK,
			wantCalls:  []string{convertPath, generatePath},
			wantFailed: []string{types.StepConvert, types.StepGenerate},
			wantCodes:  []int{2, 3},
		},
		{
			name:   "abort stops after failing convert",
			fail:   map[string]error{convertPath: exitFailure(convertPath, 1)},
			policy: types.PolicyAbort,
			wantOut: "Converting Markdown files to LaTeX ...\n" +
				"[ran ./pdf-scripts/convert.sh]\n" +
				"Done.\n\n",
			wantCalls:  []string{convertPath},
			wantFailed: []string{types.StepConvert},
			wantErr:    ErrStepFailed,
			wantCodes:  []int{1},
		},
		{
			name:       "abort with missing generate",
			fail:       map[string]error{generatePath: launchFailure(generatePath)},
			policy:     types.PolicyAbort,
			wantOut:    allOK,
			wantCalls:  []string{convertPath, generatePath},
			wantFailed: []string{types.StepGenerate},
			wantErr:    runner.ErrLaunch,
			wantCodes:  []int{0, -1},
		},
		{
			name:      "abort with nothing failing",
			policy:    types.PolicyAbort,
			wantOut:   allOK,
			wantCalls: []string{convertPath, generatePath},
			wantCodes: []int{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{fail: tt.fail}
			var out, errOut bytes.Buffer
			s := &Sequencer{
				Runner: r,
				Steps:  types.DefaultSteps(),
				Policy: tt.policy,
				Out:    &out,
				Err:    &errOut,
			}

			report, err := s.Run(context.Background())

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantOut, out.String())
			assert.Equal(t, tt.wantCalls, r.calls)
			assert.Equal(t, tt.wantFailed, report.FailedSteps())
			assert.Equal(t, len(tt.wantFailed) > 0, report.Failed())

			var codes []int
			for _, st := range report.Steps {
				codes = append(codes, st.ExitCode)
			}
			assert.Equal(t, tt.wantCodes, codes)

			for _, name := range tt.wantFailed {
				assert.Contains(t, errOut.String(), "warning: "+name+" step failed")
			}
			if len(tt.wantFailed) == 0 {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestRun_DefaultPolicyIsContinue(t *testing.T) {
	s := &Sequencer{
		Runner: &fakeRunner{},
		Steps:  types.DefaultSteps(),
		Out:    &bytes.Buffer{},
		Err:    &bytes.Buffer{},
	}
	report, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.PolicyContinue, report.Policy)
	assert.Equal(t, "fake", report.Runtime)
	assert.False(t, report.Finished.Before(report.Started))
}

func TestRun_PassesDirAndArgs(t *testing.T) {
	var got []runner.Invocation
	r := &recordingRunner{record: func(inv runner.Invocation) { got = append(got, inv) }}
	s := &Sequencer{
		Runner: r,
		Steps:  []types.StepConfig{{Name: "convert", Start: "go", Path: "./c.sh", Args: []string{"-v"}}},
		Dir:    "/book",
		Out:    &bytes.Buffer{},
		Err:    &bytes.Buffer{},
	}
	_, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/book", got[0].Dir)
	assert.Equal(t, []string{"-v"}, got[0].Args)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRunner{}
	var out bytes.Buffer
	s := &Sequencer{Runner: r, Steps: types.DefaultSteps(), Out: &out, Err: &bytes.Buffer{}}

	report, err := s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, r.calls)
	assert.Empty(t, out.String())
	assert.Empty(t, report.Steps)
}

func TestRun_CancelDuringStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &recordingRunner{record: func(runner.Invocation) { cancel() }}

	var out bytes.Buffer
	s := &Sequencer{Runner: r, Steps: types.DefaultSteps(), Out: &out, Err: &bytes.Buffer{}}

	report, err := s.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Converting Markdown files to LaTeX ...\nDone.\n\n", out.String())
	assert.Len(t, report.Steps, 1)
}

type recordingRunner struct {
	record func(runner.Invocation)
}

func (r *recordingRunner) Name() string { return "recording" }
func (r *recordingRunner) Available(context.Context) bool { return true }
func (r *recordingRunner) Run(_ context.Context, inv runner.Invocation) error {
	r.record(inv)
	return nil
}
