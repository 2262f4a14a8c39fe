// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StepResult records how one step invocation ended.
type StepResult struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`

	// ExitCode is the script's exit status, or -1 when it never started.
	ExitCode int `json:"exit_code" yaml:"exit_code"`

	// Err holds the failure, if any. It is not serialized; Error carries
	// its message instead.
	Err   error  `json:"-" yaml:"-"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	Started  time.Time     `json:"started" yaml:"started"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// OK reports whether the step exited 0.
func (r StepResult) OK() bool {
	return r.Err == nil && r.Error == "" && r.ExitCode == 0
}

// RunReport is the outcome of one build.
type RunReport struct {
	ID       int64         `json:"id,omitempty" yaml:"id,omitempty"`
	Started  time.Time     `json:"started" yaml:"started"`
	Finished time.Time     `json:"finished" yaml:"finished"`
	Policy   FailurePolicy `json:"policy" yaml:"policy"`
	Runtime  string        `json:"runtime" yaml:"runtime"`
	Steps    []StepResult  `json:"steps" yaml:"steps"`
}

// Failed reports whether any step failed.
func (r RunReport) Failed() bool {
	for _, s := range r.Steps {
		if !s.OK() {
			return true
		}
	}
	return false
}

// FailedSteps returns the names of the steps that failed, in run order.
func (r RunReport) FailedSteps() []string {
	var names []string
	for _, s := range r.Steps {
		if !s.OK() {
			names = append(names, s.Name)
		}
	}
	return names
}
