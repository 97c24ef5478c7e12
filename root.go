package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var stateFlag string

	ctx := newCommandContext(&configFlag, &stateFlag)

	rootCmd := &cobra.Command{
		Use:           "lms",
		Short:         "Library catalog manager",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&stateFlag, "state", "", "Catalog state file (overrides paths.state_file)")

	for _, cmd := range newBookCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range newCirculationCommands(ctx) {
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newShellCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
