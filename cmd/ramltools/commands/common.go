// Package commands provides the cobra command tree for the ramltools CLI.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v4"

	"github.com/erraggy/ramltools"
	"github.com/erraggy/ramltools/raml"
)

// Output format constants
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// StdinFilePath is the special file path used to indicate reading from stdin.
const StdinFilePath = "-"

// ValidateOutputFormat validates an output format and returns an error if invalid.
func ValidateOutputFormat(format string) error {
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return fmt.Errorf("invalid format '%s'. Valid formats: %s, %s, %s", format, FormatText, FormatJSON, FormatYAML)
	}
	return nil
}

// OutputStructured writes data to w in the specified format (json or yaml).
func OutputStructured(w io.Writer, data any, format string) error {
	var bytes []byte
	var err error

	switch format {
	case FormatJSON:
		bytes, err = json.MarshalIndent(data, "", "  ")
	case FormatYAML:
		bytes, err = yaml.Marshal(data)
	default:
		return fmt.Errorf("invalid format for structured output: %s", format)
	}

	if err != nil {
		return fmt.Errorf("marshaling to %s: %w", format, err)
	}

	Writef(w, "%s\n", bytes)
	return nil
}

// FormatSpecPath returns a display-friendly path for the document.
// Returns "<stdin>" if the path is StdinFilePath, otherwise returns the path as-is.
func FormatSpecPath(specPath string) string {
	if specPath == StdinFilePath {
		return "<stdin>"
	}
	return specPath
}

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil { //nolint:gosec // G705 - CLI tool, not a web server
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// OutputSpecHeader writes the common document header.
func OutputSpecHeader(w io.Writer, specPath string, result *raml.ParseResult) {
	Writef(w, "ramltools version: %s\n", ramltools.Version())
	Writef(w, "Document: %s\n", FormatSpecPath(specPath))
	Writef(w, "RAML Version: %s\n", result.Version)
	Writef(w, "Fragment: %s\n", result.Fragment)
}

// OutputSpecStats writes the common document statistics.
func OutputSpecStats(w io.Writer, result *raml.ParseResult) {
	Writef(w, "Resources: %d\n", result.Stats.PathCount)
	Writef(w, "Methods: %d\n", result.Stats.MethodCount)
	Writef(w, "Traits: %d\n", result.Stats.TraitCount)
	Writef(w, "Resource Types: %d\n", result.Stats.ResourceTypeCount)
	Writef(w, "Security Schemes: %d\n", result.Stats.SecuritySchemeCount)
	Writef(w, "Types: %d\n", result.Stats.TypeCount)
	Writef(w, "Load Time: %v\n", result.LoadTime)
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	ConfigFile string
	Verbose    bool
}

// loadDocument parses the document at specPath ("-" reads cmd's stdin).
// Findings never fail the load; callers decide how to report them.
func loadDocument(cmd *cobra.Command, gf *globalFlags, specPath string) (*raml.ParseResult, error) {
	opts := []raml.Option{raml.WithValidate(false)}
	if specPath == StdinFilePath {
		opts = append(opts, raml.WithReader(cmd.InOrStdin()), raml.WithBaseDir("."))
	} else {
		opts = append(opts, raml.WithFilePath(specPath))
	}
	if gf.ConfigFile != "" {
		opts = append(opts, raml.WithConfigFile(gf.ConfigFile))
	}
	if gf.Verbose {
		handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug})
		opts = append(opts, raml.WithLogger(raml.NewSlogAdapter(slog.New(handler))))
	}

	result, err := raml.ParseWithOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FormatSpecPath(specPath), err)
	}
	return result, nil
}
