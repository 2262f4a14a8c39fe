// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "path/filepath"

const (
	// DefaultScriptsDir is where the build scripts live relative to the
	// working directory.
	DefaultScriptsDir = "pdf-scripts"

	DefaultConvertScript  = "convert.sh"
	DefaultGenerateScript = "generate.sh"

	StepConvert  = "convert"
	StepGenerate = "generate"

	// DefaultImage is used by the docker and podman runtimes.
	DefaultImage = "pandoc/latex:latest"

	DefaultHistoryDir = ".pdfbuild"
)

// DefaultTools are the programs the default scripts shell out to.
var DefaultTools = []string{"pandoc", "pdflatex"}

// ConvertStep returns the Markdown-to-LaTeX step for scripts in dir.
func ConvertStep(dir, script string) StepConfig {
	return StepConfig{
		Name:  StepConvert,
		Start: "Converting Markdown files to LaTeX ...",
		Path:  scriptPath(dir, script),
	}
}

// GenerateStep returns the LaTeX-to-PDF step for scripts in dir.
func GenerateStep(dir, script string) StepConfig {
	return StepConfig{
		Name:  StepGenerate,
		Start: "Generating PDF...",
		Path:  scriptPath(dir, script),
	}
}

// DefaultSteps returns convert followed by generate, both under
// ./pdf-scripts.
func DefaultSteps() []StepConfig {
	return []StepConfig{
		ConvertStep(DefaultScriptsDir, DefaultConvertScript),
		GenerateStep(DefaultScriptsDir, DefaultGenerateScript),
	}
}

// scriptPath keeps the "./" prefix on relative paths so the script is never
// resolved through PATH.
func scriptPath(dir, script string) string {
	p := filepath.Join(dir, script)
	if filepath.IsAbs(p) {
		return p
	}
	return "./" + filepath.ToSlash(p)
}
