package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the HaloGuard backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			health, err := app.client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend %s: %w", app.config.BackendURL, err)
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), health)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "backend: %s\nstatus: %s\nversion: %s\n", app.config.BackendURL, health.Status, health.Version)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
