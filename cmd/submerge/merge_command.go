package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"submerge/internal/history"
	"submerge/internal/ipc"
	"submerge/internal/logging"
	"submerge/internal/merge"
	"submerge/internal/registry"
	"submerge/internal/session"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var languageFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "merge VIDEO SUBTITLE",
		Short: "Merge a video and a subtitle file in one shot",
		Long: "Merge a video and a subtitle file into <video>.merged.mkv next to the video.\n" +
			"Runs mkvmerge in process; no daemon is required. The attempt is recorded in history.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			video, err := resolveInputPath(args[0])
			if err != nil {
				return err
			}
			subtitle, err := resolveInputPath(args[1])
			if err != nil {
				return err
			}

			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			sess := session.New(registry.New(cfg.Merge.DefaultLanguage), merge.NewFromConfig(cfg, logger), session.Options{
				Recorder: store,
				Logger:   logger,
			})
			defer sess.Close()

			events := []registry.Event{registry.VideoEvent(video), registry.SubtitleEvent(subtitle)}
			if code := strings.TrimSpace(languageFlag); code != "" {
				events = append(events, registry.LanguageEvent(code))
			}
			for _, ev := range events {
				if err := sess.Apply(ev); err != nil {
					return err
				}
			}

			res, err := sess.MergeNow(cmd.Context())
			if err != nil {
				return err
			}
			logger.Debug("one-shot merge finished",
				logging.String(logging.FieldMergeID, res.ID),
				logging.String("kind", string(res.Outcome.Kind)))

			if jsonOutput {
				if err := writeJSON(cmd, ipc.NewMergeResult(&res)); err != nil {
					return err
				}
			} else if res.Outcome.Succeeded() {
				fmt.Fprintln(cmd.OutOrStdout(), res.Outcome.Display())
			}
			if !res.Outcome.Succeeded() {
				return errors.New(res.Outcome.Display())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Track language code (see `submerge languages`)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the merge result as JSON")
	return cmd
}
