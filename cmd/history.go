package cmd

import (
	"fmt"

	"github.com/haloguard/haloguard-cli/internal/adapters/render/report"
	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/spf13/cobra"
)

type historyOutput struct {
	Source  domain.HistorySource      `json:"source"`
	Entries []domain.ScanHistoryEntry `json:"entries"`
}

func newHistoryCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.session.Restore(cmd.Context())
			listing := app.history.List(cmd.Context())

			if asJSON {
				entries := listing.Entries
				if entries == nil {
					entries = []domain.ScanHistoryEntry{}
				}
				return writeJSON(cmd.OutOrStdout(), historyOutput{Source: listing.Source, Entries: entries})
			}

			rendered, err := report.History(listing.Entries, listing.Source, report.Options{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render history: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
