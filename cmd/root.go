package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hg",
		Short:         "HaloGuard CLI (hg): detect deepfakes in images, videos and live streams",
		Long:          "hg (HaloGuard CLI) signs you in to a HaloGuard backend, submits media for deepfake detection, streams live frames for real-time analysis, and keeps a local copy of your scan history.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newDetectCmd(app),
		newHistoryCmd(app),
		newStreamCmd(app),
		newHealthCmd(app),
	)

	return rootCmd
}
