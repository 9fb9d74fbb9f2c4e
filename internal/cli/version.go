package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// VersionInfo is the machine-readable build information.
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuiltAt   string `json:"built_at" yaml:"built_at"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func newVersionCmd(a *app) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(w, Version)
				return nil
			}
			f, err := a.formatter(w)
			if err != nil {
				return err
			}
			info := VersionInfo{
				Version:   Version,
				Commit:    Commit,
				BuiltAt:   Date,
				BuiltBy:   BuiltBy,
				GoVersion: goVersion(),
				Platform:  goPlatform(),
			}
			return f.Output(info, func(w io.Writer) error {
				fmt.Fprintf(w, "hackdash version %s\n", info.Version)
				fmt.Fprintf(w, "  commit:    %s\n", info.Commit)
				fmt.Fprintf(w, "  built:     %s\n", info.BuiltAt)
				fmt.Fprintf(w, "  builder:   %s\n", info.BuiltBy)
				fmt.Fprintf(w, "  go:        %s\n", info.GoVersion)
				fmt.Fprintf(w, "  platform:  %s\n", info.Platform)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only version number")
	return cmd
}
