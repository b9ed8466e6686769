package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/commitgraph/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the configuration with defaults applied, as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.config().Encode(cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the default config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return err
				}
			}
			printKeyValue(cmd.OutOrStdout(), "config", path)
			return nil
		},
	})

	return cmd
}
