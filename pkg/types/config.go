// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// FailurePolicy decides what the build does after a step fails.
type FailurePolicy string

const (
	// PolicyContinue prints "Done." and moves on to the next step. The build
	// still exits 0. This matches how the original build script behaved.
	PolicyContinue FailurePolicy = "continue"

	// PolicyAbort stops the build after the failing step and exits non-zero.
	PolicyAbort FailurePolicy = "abort"
)

// Valid reports whether p is a known policy.
func (p FailurePolicy) Valid() bool {
	return p == PolicyContinue || p == PolicyAbort
}

// RuntimeKind selects where step scripts execute.
type RuntimeKind string

const (
	RuntimeHost   RuntimeKind = "host"
	RuntimeDocker RuntimeKind = "docker"
	RuntimePodman RuntimeKind = "podman"
	// RuntimeAuto picks docker, then podman.
	RuntimeAuto RuntimeKind = "auto"
)

// StepConfig describes one external step of the build.
type StepConfig struct {
	// Name is a short identifier ("convert", "generate").
	Name string `json:"name" yaml:"name"`

	// Start is the status line printed before the step runs.
	Start string `json:"start" yaml:"start"`

	// Path is the script to execute, relative to the working directory.
	Path string `json:"path" yaml:"path"`

	// Args are passed to the script unchanged. The default steps take none.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	// Enabled turns recording on. Listing history works either way.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir holds history.db (default ".pdfbuild").
	Dir string `json:"dir" yaml:"dir"`
}

// BuildConfig groups everything the build command needs.
type BuildConfig struct {
	Steps   []StepConfig  `json:"steps" yaml:"steps"`
	Policy  FailurePolicy `json:"on_failure" yaml:"on_failure"`
	Runtime RuntimeKind   `json:"runtime" yaml:"runtime"`
	Image   string        `json:"image,omitempty" yaml:"image,omitempty"`
	History HistoryConfig `json:"history" yaml:"history"`
	Tools   []string      `json:"tools,omitempty" yaml:"tools,omitempty"`
	WorkDir string        `json:"work_dir,omitempty" yaml:"work_dir,omitempty"`
}
