package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/ramltools"
)

func registerVersionCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			Writef(out, "ramltools v%s\n", ramltools.Version())
			Writef(out, "commit: %s\n", ramltools.Commit())
			Writef(out, "built: %s\n", ramltools.BuildTime())
			Writef(out, "go: %s\n", ramltools.GoVersion())
		},
	}

	parent.AddCommand(cmd)
}
