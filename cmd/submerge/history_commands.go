package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"submerge/internal/history"
	"submerge/internal/ipc"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var statusFilters []string
	var jsonOutput bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded merges, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range statusFilters {
				if _, ok := history.ParseStatus(strings.ToLower(strings.TrimSpace(raw))); !ok {
					return fmt.Errorf("unknown status %q (valid: running, succeeded, failed)", raw)
				}
			}
			filters := make([]string, 0, len(statusFilters))
			for _, raw := range statusFilters {
				filters = append(filters, strings.ToLower(strings.TrimSpace(raw)))
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.History(limit, filters)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp.Records)
				}
				out := cmd.OutOrStdout()
				if len(resp.Records) == 0 {
					fmt.Fprintln(out, "No merges recorded")
					return nil
				}
				fmt.Fprintln(out, renderHistoryTable(resp.Records))
				return nil
			})
		},
	}
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of merges to show (0 for all)")
	historyCmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by status (repeatable)")
	historyCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")

	historyCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove finished merges from history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.HistoryClear()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d merge(s) from history\n", resp.Removed)
				return nil
			})
		},
	})

	return historyCmd
}

func renderHistoryTable(records []ipc.HistoryRecord) string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			shortMergeID(rec.ID),
			string(rec.Status),
			rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
			formatDuration(rec.Duration()),
			rec.Language,
			filepath.Base(rec.VideoPath),
			historyDetail(rec),
		})
	}
	return renderTable(
		[]string{"ID", "Status", "Started", "Duration", "Lang", "Video", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func historyDetail(rec ipc.HistoryRecord) string {
	switch rec.Status {
	case history.StatusSucceeded:
		return filepath.Base(rec.OutputPath)
	case history.StatusFailed:
		detail := rec.Message
		if rec.FailureKind != "" {
			detail = rec.FailureKind + ": " + detail
		}
		if rec.ExitCode != nil {
			detail += " (exit " + strconv.Itoa(*rec.ExitCode) + ")"
		}
		return detail
	default:
		return ""
	}
}

func historyStatsRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(stats[k])})
	}
	return rows
}

func shortMergeID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
