package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ff1c",
		Short:         "Final Fantasy multiworld client",
		Long:          "ff1c connects a Final Fantasy (NES) emulator running the bridge script to a multiworld server, reporting checked locations and forwarding received items and messages.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	var logLevel string
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}
	app.logLevel = &logLevel

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(app),
		newNESCmd(app),
	)

	return rootCmd
}
