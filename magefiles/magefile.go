//go:build mage

// Package main contains Mage build targets for pdfbuild developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "pdfbuild"
	cmdPkg  = "./cmd/pdfbuild"

	scriptsDir = "pdf-scripts"
)

// scriptStubs are written by Init when a script does not exist yet.
var scriptStubs = map[string]string{
	"convert.sh": `#!/bin/sh
# Convert Markdown sources to LaTeX.
set -e
mkdir -p build/tex
for f in docs/*.md; do
	pandoc "$f" -o "build/tex/$(basename "${f%.md}").tex"
done
`,
	"generate.sh": `#!/bin/sh
# Typeset the converted LaTeX into a PDF.
set -e
cd build/tex
pdflatex -interaction=nonstopmode main.tex
`,
}

// Init creates pdf-scripts/ with starter convert.sh and generate.sh.
// Existing scripts are left alone.
func Init() error {
	if err := os.MkdirAll(scriptsDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", scriptsDir, err)
	}
	for name, body := range scriptStubs {
		path := filepath.Join(scriptsDir, name)
		if _, err := os.Stat(path); err == nil {
			fmt.Println("   exists:", path)
			continue
		}
		if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Println("   created:", path)
	}
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Pdf builds the CLI and runs a full document build.
func Pdf() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "build")
}

// Check builds the CLI and runs its preflight checks.
func Check() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "check")
}
