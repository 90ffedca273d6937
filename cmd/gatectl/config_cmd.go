package main

import (
	"fmt"

	"github.com/danmuck/coherencegate/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate gate config files",
	}

	var (
		path  string
		force bool
	)
	template := &cobra.Command{
		Use:   "template",
		Short: "Print or write the default gate config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.Template())
				return err
			}
			if err := config.WriteTemplate(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote gate config template to %s\n", path)
			return nil
		},
	}
	template.Flags().StringVar(&path, "path", "", "write the template to this path instead of stdout")
	template.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	validate := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a gate config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGateConfig(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Validated gate config at %s (threshold %v)\n", args[0], cfg.Threshold)
			return nil
		},
	}

	cmd.AddCommand(template, validate)
	return cmd
}
