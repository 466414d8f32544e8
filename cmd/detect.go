package cmd

import (
	"context"
	"fmt"

	"github.com/haloguard/haloguard-cli/internal/adapters/media"
	"github.com/haloguard/haloguard-cli/internal/adapters/render/report"
	"github.com/haloguard/haloguard-cli/internal/application"
	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newDetectCmd(app *app) *cobra.Command {
	var explain bool
	var asJSON bool
	var noRecord bool

	cmd := &cobra.Command{
		Use:   "detect <file>",
		Short: "Analyze an image or video for deepfake manipulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, app, args[0], application.DetectOptions{Explain: explain}, asJSON, noRecord)
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "Request an explanation and heatmap (images only)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not add the scan to history")

	return cmd
}

func runDetect(cmd *cobra.Command, app *app, path string, opts application.DetectOptions, asJSON bool, noRecord bool) error {
	file, err := media.Open(path)
	if err != nil {
		return err
	}

	app.session.Restore(cmd.Context())

	detect := func(ctx context.Context) (domain.DetectionResult, error) {
		return app.detection.Detect(ctx, file, opts)
	}

	var result domain.DetectionResult
	if asJSON {
		result, err = detect(cmd.Context())
	} else {
		result, err = runDetectProgress(cmd.Context(), cmd.ErrOrStderr(), file.Name, app.now, detect)
	}
	if err != nil {
		return fmt.Errorf("detect %s: %w", file.Name, err)
	}

	if !noRecord {
		if _, err := app.history.Record(cmd.Context(), file.Name, file.FileType(), result); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: scan not saved to history: %v\n", err)
		}
	}

	if asJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}

	rendered, err := report.Detection(result, report.Options{Now: app.now(), Filename: file.Name})
	if err != nil {
		return fmt.Errorf("render detection: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
