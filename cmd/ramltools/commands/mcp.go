package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/ramltools/internal/mcpserver"
)

func registerMCPCmd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Serve the ramltools tools (parse, validate, walk_resources, walk_types,
check_instance) to an MCP client over stdin and stdout. Defaults are read
from RAMLTOOLS_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return mcpserver.Run(cmd.Context())
		},
	}

	parent.AddCommand(cmd)
}
