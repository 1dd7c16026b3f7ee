package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/ramltools/raml"
)

type validateOptions struct {
	format     string
	quiet      bool
	noWarnings bool
}

// validateReport is the structured output of the validate command.
type validateReport struct {
	Valid        bool            `json:"valid"                    yaml:"valid"`
	Document     string          `json:"document"                 yaml:"document"`
	Version      string          `json:"version"                  yaml:"version"`
	ErrorCount   int             `json:"error_count"              yaml:"error_count"`
	WarningCount int             `json:"warning_count"            yaml:"warning_count"`
	Errors       []reportFinding `json:"errors,omitempty"         yaml:"errors,omitempty"`
	Warnings     []reportFinding `json:"warnings,omitempty"       yaml:"warnings,omitempty"`
}

type reportFinding struct {
	Kind    string `json:"kind"            yaml:"kind"`
	Path    string `json:"path"            yaml:"path"`
	Message string `json:"message"         yaml:"message"`
	Field   string `json:"field,omitempty" yaml:"field,omitempty"`
}

func registerValidateCmd(parent *cobra.Command, gf *globalFlags) {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <file|->",
		Short: "Validate a RAML document",
		Long: `Resolve every resource and method of a RAML document and report the
collected findings. Use '-' to read the document from stdin; includes are then
resolved against the working directory.`,
		Example: `  ramltools validate api.raml
  ramltools validate --config ramltools.yaml api.raml
  cat api.raml | ramltools validate -q -
  ramltools validate -f json api.raml | jq '.valid'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, gf, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text, json, yaml)")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only output the validation result")
	cmd.Flags().BoolVar(&opts.noWarnings, "no-warnings", false, "suppress warning messages (only show errors)")

	parent.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, gf *globalFlags, opts *validateOptions, specPath string) error {
	if err := ValidateOutputFormat(opts.format); err != nil {
		return err
	}

	result, err := loadDocument(cmd, gf, specPath)
	if err != nil {
		return err
	}
	report := newValidateReport(specPath, result, opts.noWarnings)

	out := cmd.OutOrStdout()
	if opts.format != FormatText {
		if err := OutputStructured(out, report, opts.format); err != nil {
			return err
		}
		if !report.Valid {
			return ErrValidationFailed
		}
		return nil
	}

	errOut := cmd.ErrOrStderr()
	if !opts.quiet {
		Writef(errOut, "RAML Document Validator\n")
		Writef(errOut, "=======================\n\n")
		OutputSpecHeader(errOut, specPath, result)
		OutputSpecStats(errOut, result)
		Writef(errOut, "\n")

		if len(report.Errors) > 0 {
			Writef(errOut, "Errors (%d):\n", report.ErrorCount)
			for _, e := range report.Errors {
				Writef(errOut, "  %s: %s\n", e.Path, e.Message)
			}
			Writef(errOut, "\n")
		}
		if len(report.Warnings) > 0 {
			Writef(errOut, "Warnings (%d):\n", report.WarningCount)
			for _, w := range report.Warnings {
				Writef(errOut, "  %s: %s\n", w.Path, w.Message)
			}
			Writef(errOut, "\n")
		}
	}

	if report.Valid {
		Writef(out, "✓ Validation passed\n")
		return nil
	}
	Writef(out, "✗ Validation failed: %d error(s)\n", report.ErrorCount)
	return ErrValidationFailed
}

func newValidateReport(specPath string, result *raml.ParseResult, noWarnings bool) validateReport {
	report := validateReport{
		Document: FormatSpecPath(specPath),
		Version:  result.Version,
	}
	for _, f := range result.Findings() {
		rf := reportFinding{Kind: string(f.Kind), Path: f.Path, Message: f.Message, Field: f.Field}
		if f.Severity.Blocking() {
			report.Errors = append(report.Errors, rf)
		} else if !noWarnings {
			report.Warnings = append(report.Warnings, rf)
		}
	}
	report.ErrorCount = len(report.Errors)
	report.WarningCount = len(report.Warnings)
	report.Valid = report.ErrorCount == 0
	return report
}
