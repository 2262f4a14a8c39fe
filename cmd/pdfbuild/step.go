// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfbuild/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert Markdown files to LaTeX",
	Long: `Convert runs only the Markdown to LaTeX step (pdf-scripts/convert.sh by
default), printing the same status lines as a full build.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSteps(cmd, types.StepConvert)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the PDF from converted LaTeX",
	Long: `Generate runs only the LaTeX to PDF step (pdf-scripts/generate.sh by
default). Run convert first, or use build to do both.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSteps(cmd, types.StepGenerate)
	},
}

func init() {
	addBuildFlags(convertCmd)
	addBuildFlags(generateCmd)

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(generateCmd)
}
