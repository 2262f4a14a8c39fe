// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sequencer runs the build's external steps in a fixed order,
// bracketing each with a start line and a "Done." line.
//
// The "Done." line is printed whether or not the step succeeded. What happens
// next depends on the failure policy: PolicyContinue runs the remaining steps
// and reports success, PolicyAbort stops and returns ErrStepFailed.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pdiddy/pdfbuild/internal/ctxlog"
	"github.com/pdiddy/pdfbuild/internal/runner"
	"github.com/pdiddy/pdfbuild/pkg/types"
)

// doneLine follows every step, success or not.
const doneLine = "Done.\n\n"

// ErrStepFailed is returned under PolicyAbort when a step fails.
var ErrStepFailed = errors.New("build step failed")

// Sequencer runs Steps one after another through Runner.
type Sequencer struct {
	Runner runner.Runner
	Steps  []types.StepConfig
	Policy types.FailurePolicy

	// Dir is the working directory for every step.
	Dir string

	// Out receives status lines and the steps' own stdout. Err receives
	// warnings and the steps' stderr. Both default to the process streams.
	Out io.Writer
	Err io.Writer
}

// Run executes every step in order and returns what happened to each.
//
// Under PolicyContinue the error is nil even when steps fail; inspect
// RunReport.Failed. A cancelled context stops the build after the current
// step's "Done." line and is returned as an error.
func (s *Sequencer) Run(ctx context.Context) (types.RunReport, error) {
	out, errw := s.Out, s.Err
	if out == nil {
		out = os.Stdout
	}
	if errw == nil {
		errw = os.Stderr
	}
	policy := s.Policy
	if policy == "" {
		policy = types.PolicyContinue
	}
	log := ctxlog.FromContext(ctx)

	report := types.RunReport{
		Started: time.Now().UTC(),
		Policy:  policy,
		Runtime: s.Runner.Name(),
	}
	finish := func(err error) (types.RunReport, error) {
		report.Finished = time.Now().UTC()
		return report, err
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return finish(fmt.Errorf("build interrupted before step %s: %w", step.Name, err))
		}

		fmt.Fprintln(out, step.Start)
		log.Debug("running step", "seq", i, "name", step.Name, "path", step.Path, "runtime", s.Runner.Name())

		started := time.Now()
		err := s.Runner.Run(ctx, runner.Invocation{
			Path:   step.Path,
			Args:   step.Args,
			Dir:    s.Dir,
			Stdout: out,
			Stderr: errw,
		})
		result := types.StepResult{
			Name:     step.Name,
			Path:     step.Path,
			ExitCode: runner.ExitCode(err),
			Err:      err,
			Started:  started.UTC(),
			Duration: time.Since(started),
		}
		if err != nil {
			result.Error = err.Error()
		}
		report.Steps = append(report.Steps, result)

		fmt.Fprint(out, doneLine)

		if err == nil {
			log.Debug("step finished", "name", step.Name, "duration", result.Duration)
			continue
		}

		fmt.Fprintf(errw, "warning: %s step failed: %v\n", step.Name, err)
		log.Debug("step failed", "name", step.Name, "exit_code", result.ExitCode, "error", err)

		if policy == types.PolicyAbort {
			return finish(fmt.Errorf("%w: %s: %w", ErrStepFailed, step.Name, err))
		}
	}

	return finish(nil)
}
