package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"brainzone/pkg/config"
)

func initConfigCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a configuration file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default configuration written to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "brainzone.yaml", "where to write the configuration")
	return cmd
}
