// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfbuild/internal/history"
	"github.com/pdiddy/pdfbuild/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent builds",
	Long: `History lists builds recorded with --record (or history.enabled in the
config), newest first, with each step's exit status.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write recent builds to a YAML file",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

func init() {
	historyCmd.PersistentFlags().String("history-dir", "", "directory for the history database (default .pdfbuild)")
	historyCmd.PersistentFlags().Int("limit", 20, "maximum number of runs")
	historyCmd.Flags().Bool("json", false, "output as JSON")
	historyExportCmd.Flags().StringP("output", "o", "", "output file (default <history-dir>/history.yaml)")

	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyConfig(cmd *cobra.Command) types.HistoryConfig {
	return types.HistoryConfig{
		Dir: stringSetting(cmd, viper.GetViper(), "history-dir", keyHistoryDir, types.DefaultHistoryDir),
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := history.Open(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return formatHistory(cmd.OutOrStdout(), runs, jsonOutput)
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	output, _ := cmd.Flags().GetString("output")

	store, err := history.Open(historyConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.ExportYAML(cmd.Context(), output, limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported: %s\n", path)
	return nil
}

func formatHistory(w io.Writer, runs []types.RunReport, jsonOutput bool) error {
	if jsonOutput {
		if runs == nil {
			runs = []types.RunReport{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-5s  %-20s  %-8s  %-8s  %-6s  %s\n",
		"Run", "Started", "Runtime", "Policy", "Result", "Steps")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	for _, r := range runs {
		result := "ok"
		if r.Failed() {
			result = "failed"
		}
		steps := make([]string, 0, len(r.Steps))
		for _, s := range r.Steps {
			steps = append(steps, fmt.Sprintf("%s=%d", s.Name, s.ExitCode))
		}
		fmt.Fprintf(w, "%-5d  %-20s  %-8s  %-8s  %-6s  %s\n",
			r.ID, r.Started.Local().Format(time.DateTime), r.Runtime, r.Policy, result,
			strings.Join(steps, " "))
	}
	return nil
}
