package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"submerge/internal/ipc"
)

func newSetCommand(ctx *commandContext) *cobra.Command {
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Capture an input in the running daemon",
	}

	setCmd.AddCommand(&cobra.Command{
		Use:   "video PATH",
		Short: "Set the video file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveInputPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetVideo(path)
				if err != nil {
					return err
				}
				printSession(cmd, resp.Session)
				return nil
			})
		},
	})

	setCmd.AddCommand(&cobra.Command{
		Use:   "subtitle PATH",
		Short: "Set the subtitle file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveInputPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetSubtitle(path)
				if err != nil {
					return err
				}
				printSession(cmd, resp.Session)
				return nil
			})
		},
	})

	setCmd.AddCommand(&cobra.Command{
		Use:   "language CODE",
		Short: "Set the track language (see `submerge languages`)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SetLanguage(args[0])
				if err != nil {
					return err
				}
				printSession(cmd, resp.Session)
				return nil
			})
		},
	})

	return setCmd
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the captured inputs and restore the default language",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Reset()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Registry reset")
				printSession(cmd, resp.Session)
				return nil
			})
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var wait bool
	var timeout time.Duration
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a merge of the captured inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Merge(wait, timeout)
				if err != nil {
					return err
				}
				if jsonOutput {
					if err := writeJSON(cmd, resp); err != nil {
						return err
					}
				} else {
					out := cmd.OutOrStdout()
					switch {
					case !wait:
						fmt.Fprintf(out, "Merge %s started\n", resp.ID)
					case !resp.Completed:
						fmt.Fprintf(out, "Merge %s still running after %s\n", resp.ID, timeout)
					case resp.Result.Succeeded:
						fmt.Fprintln(out, resp.Result.Display)
					}
				}
				if resp.Completed && resp.Result != nil && !resp.Result.Succeeded {
					return fmt.Errorf("%s", resp.Result.Display)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the merge to finish")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Maximum time to wait with --wait (0 waits until done)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the response as JSON")
	return cmd
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon readiness, inputs, and the last merge outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", statusOK, fmt.Sprintf("%s (pid %d)", yesNo(resp.Running), resp.PID), colorize))
				if resp.StartedAt != "" {
					fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, resp.StartedAt, colorize))
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, line := range dependencyLines(resp.Dependencies, colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Session", colorize) {
					fmt.Fprintln(stdout, line)
				}
				for _, line := range sessionLines(resp.Session, colorize) {
					fmt.Fprintln(stdout, line)
				}
				if last := resp.LastMerge; last != nil && resp.Session.LastOutcome == nil {
					kind := statusOK
					if !last.Succeeded {
						kind = statusError
					}
					fmt.Fprintln(stdout, renderStatusLine("Last merge", kind, last.Display, colorize))
				}

				if rows := historyStatsRows(resp.HistoryStats); len(rows) > 0 {
					fmt.Fprintln(stdout)
					for _, line := range renderSectionHeader("History", colorize) {
						fmt.Fprintln(stdout, line)
					}
					fmt.Fprintln(stdout, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the submerge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stop()
				if err != nil {
					return err
				}
				if resp.Stopped {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopping")
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Stop request sent")
				}
				return nil
			})
		},
	}
}

func printSession(cmd *cobra.Command, st ipc.SessionStatus) {
	stdout := cmd.OutOrStdout()
	for _, line := range sessionLines(st, shouldColorize(stdout)) {
		fmt.Fprintln(stdout, line)
	}
}
