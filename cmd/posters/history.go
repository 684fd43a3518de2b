package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iranrevolution2026/posters/internal/config"
	"github.com/iranrevolution2026/posters/internal/database"
	"github.com/iranrevolution2026/posters/internal/model"
	"github.com/iranrevolution2026/posters/internal/report"
)

// Digest states shown in a record's history.
const (
	digestNew       = "new"
	digestChanged   = "changed"
	digestUnchanged = "unchanged"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show previous poster runs",
		Long: `History lists the runs recorded by 'posters generate'.

Every run stores its summary and the SHA3-256 digest of each poster, so the
history shows which posters changed between two runs.

Examples:
  # List the most recent runs
  posters history

  # Show the full summary of run 12
  posters history 12

  # Show run 12 as Markdown
  posters history --markdown 12

  # Show every stored poster of one record
  posters history --record 1402`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("record", "r", "",
		"Show the stored posters of a single record id")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("json", "j", false,
		"Output the run summary in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the run summary in Markdown format")
	cmd.Flags().String("history-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	out := cmd.OutOrStdout()

	dir, err := flags.GetString("history-dir")
	if err != nil {
		return err
	}
	recordID, err := flags.GetString("record")
	if err != nil {
		return err
	}
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	// Validate arguments before opening the database.
	var runID int64
	if len(args) > 0 {
		runID, err = strconv.ParseInt(args[0], 10, 64)
		if err != nil || runID <= 0 {
			return fmt.Errorf("invalid run id %q: must be a positive number", args[0])
		}
	}

	if _, err := os.Stat(filepath.Join(dir, database.FileName)); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'posters generate' to create posters; every run is recorded.")
		return nil
	}

	db, err := database.Open(dir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	switch {
	case recordID != "":
		return printRecordHistory(ctx, out, db, recordID)
	case runID > 0:
		return printRun(ctx, out, db, runID, jsonOutput, markdownOutput)
	default:
		return printRuns(ctx, out, db, limit)
	}
}

// printRuns lists stored runs, newest first.
func printRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	fmt.Fprintf(out, "Poster runs (%d):\n\n", len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-9s  %-22s  %s\n", "ID", "Date", "Template", "Posters", "Input")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))

	for _, meta := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-9s  %-22s  %s\n",
			meta.ID,
			meta.StartedAt.Local().Format("2006-01-02 15:04:05"),
			meta.Template,
			formatRunCounts(meta),
			meta.Input,
		)
	}

	fmt.Fprintln(out, "\nUse 'posters history <id>' to see the summary of a run.")
	return nil
}

// formatRunCounts formats the counts of a run into a compact string.
func formatRunCounts(meta database.RunMetadata) string {
	parts := []string{fmt.Sprintf("%d/%d ok", meta.Succeeded, meta.Total)}
	if meta.Failed > 0 {
		parts = append(parts, fmt.Sprintf("F:%d", meta.Failed))
	}
	if meta.Canceled > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", meta.Canceled))
	}
	if meta.Placeholders > 0 {
		parts = append(parts, fmt.Sprintf("P:%d", meta.Placeholders))
	}
	return strings.Join(parts, " ")
}

// printRun writes the stored summary of one run.
func printRun(ctx context.Context, out io.Writer, db *database.HistoryDB, id int64, jsonOutput, markdownOutput bool) error {
	summary, err := db.GetRun(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get run %d: %w", id, err)
	}
	if summary == nil {
		return fmt.Errorf("run %d not found (use 'posters history' to see available runs)", id)
	}

	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewSimpleWriter(out, report.WithVerbose(true))
	}
	_, err = writer.Write(summary)
	return err
}

// printRecordHistory lists every stored poster of a record and whether it
// changed since the run before.
func printRecordHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, recordID string) error {
	entries, err := db.PosterHistory(ctx, recordID)
	if err != nil {
		return fmt.Errorf("failed to get poster history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No posters recorded for %s\n", recordID)
		return nil
	}

	fmt.Fprintf(out, "Poster history for %s (%d runs):\n\n", recordID, len(entries))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %-9s  %s\n", "Run", "Date", "Status", "Poster", "Digest")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 76))

	states := digestStates(entries)
	for i, entry := range entries {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8s  %-9s  %s\n",
			entry.RunID,
			entry.StartedAt.Local().Format("2006-01-02 15:04:05"),
			entry.Status,
			states[i],
			shortDigest(entry.Digest),
		)
	}
	return nil
}

// digestStates compares each entry with the next older one that produced a
// poster. entries are newest first.
func digestStates(entries []database.PosterEntry) []string {
	states := make([]string, len(entries))
	previous := ""
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		switch {
		case e.Status != model.StatusOK || e.Digest == "":
			states[i] = "-"
			continue
		case previous == "":
			states[i] = digestNew
		case previous == e.Digest:
			states[i] = digestUnchanged
		default:
			states[i] = digestChanged
		}
		previous = e.Digest
	}
	return states
}

// shortDigest truncates a hex digest for display.
func shortDigest(d string) string {
	if len(d) > 16 {
		return d[:16]
	}
	if d == "" {
		return "-"
	}
	return d
}
