// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package preflight checks that a build can start: the step scripts exist
// and are executable, and the programs they call are installed.
package preflight

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pdiddy/pdfbuild/internal/runner"
	"github.com/pdiddy/pdfbuild/pkg/types"
)

// Kind labels what a Finding is about.
type Kind string

const (
	KindScript  Kind = "script"
	KindTool    Kind = "tool"
	KindRuntime Kind = "runtime"
)

// Finding is the outcome of one check.
type Finding struct {
	Kind    Kind   `json:"kind" yaml:"kind"`
	Name    string `json:"name" yaml:"name"`
	Path    string `json:"path,omitempty" yaml:"path,omitempty"`
	OK      bool   `json:"ok" yaml:"ok"`
	Problem string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// Result collects findings in check order.
type Result struct {
	Findings []Finding `json:"findings" yaml:"findings"`
}

// OK reports whether every check passed.
func (r Result) OK() bool {
	for _, f := range r.Findings {
		if !f.OK {
			return false
		}
	}
	return true
}

// Failures returns the findings that did not pass.
func (r Result) Failures() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.OK {
			out = append(out, f)
		}
	}
	return out
}

// Print writes one line per finding.
func (r Result) Print(w io.Writer) {
	for _, f := range r.Findings {
		target := f.Name
		if f.Path != "" {
			target = fmt.Sprintf("%s (%s)", f.Name, f.Path)
		}
		if f.OK {
			fmt.Fprintf(w, "ok       %-7s %s\n", f.Kind, target)
		} else {
			fmt.Fprintf(w, "missing  %-7s %s: %s\n", f.Kind, target, f.Problem)
		}
	}
}

// Input is what Check examines.
type Input struct {
	Steps []types.StepConfig

	// Dir is the directory relative script paths resolve against.
	Dir string

	// Tools are looked up on PATH. They are skipped when Runner is a
	// container runtime, since the image supplies them.
	Tools []string

	// Runner, when set, is checked for availability.
	Runner runner.Runner
}

// system abstracts filesystem and PATH lookups for testing.
type system interface {
	Stat(name string) (fs.FileInfo, error)
	LookPath(file string) (string, error)
}

type osSystem struct{}

func (osSystem) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }
func (osSystem) LookPath(file string) (string, error) { return exec.LookPath(file) }

// Check runs every check and never stops early.
func Check(ctx context.Context, in Input) Result {
	return check(ctx, osSystem{}, in)
}

func check(ctx context.Context, sys system, in Input) Result {
	var res Result

	onHost := true
	if in.Runner != nil {
		onHost = in.Runner.Name() == string(types.RuntimeHost)
		f := Finding{Kind: KindRuntime, Name: in.Runner.Name(), OK: in.Runner.Available(ctx)}
		if !f.OK {
			f.Problem = "not installed or not running"
		}
		res.Findings = append(res.Findings, f)
	}

	for _, step := range in.Steps {
		res.Findings = append(res.Findings, checkScript(sys, in.Dir, step))
	}

	if onHost {
		for _, tool := range in.Tools {
			f := Finding{Kind: KindTool, Name: tool}
			if p, err := sys.LookPath(tool); err != nil {
				f.Problem = "not found on PATH"
			} else {
				f.Path = p
				f.OK = true
			}
			res.Findings = append(res.Findings, f)
		}
	}

	return res
}

func checkScript(sys system, dir string, step types.StepConfig) Finding {
	f := Finding{Kind: KindScript, Name: step.Name, Path: step.Path}

	path := step.Path
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}

	info, err := sys.Stat(path)
	switch {
	case err != nil:
		f.Problem = "does not exist"
	case info.IsDir():
		f.Problem = "is a directory"
	case info.Mode().Perm()&0o111 == 0:
		f.Problem = "is not executable"
	default:
		f.OK = true
	}
	return f
}
