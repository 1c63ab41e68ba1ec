package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/catsite/internal/config"
	"github.com/vango-dev/catsite/internal/errors"
	"github.com/vango-dev/catsite/pkg/actions"
)

func initCmd(configPath *string) *cobra.Command {
	var (
		force       bool
		actionsFile string
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write the default configuration, and optionally the built-in
action table, so they can be edited.

Examples:
  catsite init
  catsite init --actions=actions.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !force {
				if _, err := os.Stat(*configPath); err == nil {
					return errors.New("E141").WithDetail(*configPath + " already exists").
						WithSuggestion("Use --force to overwrite it")
				}
			}

			cfg := config.Default()
			if actionsFile != "" {
				if err := os.WriteFile(actionsFile, actions.DefaultYAML(), 0o644); err != nil {
					return errors.New("E141").WithDetail(actionsFile).Wrap(err)
				}
				cfg.Actions.File = actionsFile
				success(out, "wrote %s", actionsFile)
			}
			if err := cfg.Save(*configPath); err != nil {
				return err
			}
			success(out, "wrote %s", *configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	cmd.Flags().StringVar(&actionsFile, "actions", "", "Also write the built-in action table to this file")

	return cmd
}
