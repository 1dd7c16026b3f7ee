package commands

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned when a document or instance does not
// pass validation. The message has already been written, so main only
// sets the exit code.
var ErrValidationFailed = errors.New("validation failed")

// NewRootCmd creates and returns the root command for the CLI.
func NewRootCmd() *cobra.Command {
	gf := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "ramltools",
		Short: "Resolve, validate and explore RAML API definitions",
		Long: `ramltools resolves RAML 0.8 and 1.0 documents: includes, traits, resource
types, security schemes and URI parameters are applied to every resource
and method, and the collected findings are reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&gf.ConfigFile, "config", "c", "", "YAML resolver config extending the allowed media types, protocols, auth schemes, response codes and methods")
	rootCmd.PersistentFlags().BoolVarP(&gf.Verbose, "verbose", "v", false, "log resolver progress to stderr")

	registerValidateCmd(rootCmd, gf)
	registerParseCmd(rootCmd, gf)
	registerTreeCmd(rootCmd, gf)
	registerTypesCmd(rootCmd, gf)
	registerCheckCmd(rootCmd, gf)
	registerMCPCmd(rootCmd)
	registerVersionCmd(rootCmd)

	return rootCmd
}
