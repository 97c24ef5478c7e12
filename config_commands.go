package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			encoded, err := cfg.Encode()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# Config path: %s\n", ctx.configPath)
			fmt.Fprint(out, encoded)
			return nil
		},
	}
}
