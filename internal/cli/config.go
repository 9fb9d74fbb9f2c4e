package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aiwars-hackathon/hackdash/internal/config"
	"github.com/aiwars-hackathon/hackdash/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultAt(a.configPath())
			if err != nil {
				return output.NewCLIError("cannot create config").WithCause(err.Error()).WithCode("CONFIG")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.configPath())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Print the configuration after defaults, the config file, .env and
HACKDASH_* environment overrides have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.formatter(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if f.Format() == output.FormatText {
				return config.Print(a.cfg, f.Writer())
			}
			return f.Output(a.cfg, nil)
		},
	})

	return cmd
}
