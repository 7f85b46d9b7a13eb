package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"submerge/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "languages",
		Short:       "List supported track language codes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := language.Supported()
			if jsonOutput {
				return writeJSON(cmd, tags)
			}
			rows := make([][]string, 0, len(tags))
			for _, tag := range tags {
				rows = append(rows, []string{tag.Code, tag.Label})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Code", "Language"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output languages as JSON")
	return cmd
}
