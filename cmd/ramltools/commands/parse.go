package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/ramltools/raml"
)

type parseOptions struct {
	format string
}

// parseReport is the structured output of the parse command.
type parseReport struct {
	Document        string             `json:"document"                   yaml:"document"`
	RAMLVersion     string             `json:"raml_version"               yaml:"raml_version"`
	Fragment        string             `json:"fragment"                   yaml:"fragment"`
	Title           string             `json:"title,omitempty"            yaml:"title,omitempty"`
	Version         string             `json:"version,omitempty"          yaml:"version,omitempty"`
	BaseURI         string             `json:"base_uri,omitempty"         yaml:"base_uri,omitempty"`
	Protocols       []string           `json:"protocols,omitempty"        yaml:"protocols,omitempty"`
	MediaType       string             `json:"media_type,omitempty"       yaml:"media_type,omitempty"`
	SecuredBy       []string           `json:"secured_by,omitempty"       yaml:"secured_by,omitempty"`
	Traits          []string           `json:"traits,omitempty"           yaml:"traits,omitempty"`
	ResourceTypes   []string           `json:"resource_types,omitempty"   yaml:"resource_types,omitempty"`
	SecuritySchemes []string           `json:"security_schemes,omitempty" yaml:"security_schemes,omitempty"`
	Types           []string           `json:"types,omitempty"            yaml:"types,omitempty"`
	Stats           raml.DocumentStats `json:"stats" yaml:"stats"`
}

func registerParseCmd(parent *cobra.Command, gf *globalFlags) {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Summarize a resolved RAML document",
		Example: `  ramltools parse api.raml
  ramltools parse -f yaml api.raml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, gf, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatText, "Output format (text, json, yaml)")

	parent.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, gf *globalFlags, opts *parseOptions, specPath string) error {
	if err := ValidateOutputFormat(opts.format); err != nil {
		return err
	}
	result, err := loadDocument(cmd, gf, specPath)
	if err != nil {
		return err
	}
	report := newParseReport(specPath, result)

	out := cmd.OutOrStdout()
	if opts.format != FormatText {
		return OutputStructured(out, report, opts.format)
	}

	OutputSpecHeader(out, specPath, result)
	if root := result.Root; root != nil {
		Writef(out, "Title: %s\n", root.Title)
		if root.Version != "" {
			Writef(out, "Version: %s\n", root.Version)
		}
		if root.BaseURI != "" {
			Writef(out, "Base URI: %s\n", root.BaseURI)
		}
	}
	if result.DataType != nil {
		Writef(out, "Data Type: %s\n", result.DataType.Kind())
	}
	OutputSpecStats(out, result)
	Writef(out, "Findings: %d\n", len(result.Findings()))
	return nil
}

func newParseReport(specPath string, result *raml.ParseResult) parseReport {
	report := parseReport{
		Document:    FormatSpecPath(specPath),
		RAMLVersion: result.Version,
		Fragment:    string(result.Fragment),
		Stats:       result.Stats,
	}
	root := result.Root
	if root == nil {
		return report
	}
	report.Title = root.Title
	report.Version = root.Version
	report.BaseURI = root.BaseURI
	report.Protocols = root.Protocols
	report.MediaType = root.MediaType
	report.SecuredBy = root.SecuredBy
	for _, t := range root.Traits {
		report.Traits = append(report.Traits, t.Name)
	}
	seen := make(map[string]bool)
	for _, rt := range root.ResourceTypes {
		if !seen[rt.Name] {
			seen[rt.Name] = true
			report.ResourceTypes = append(report.ResourceTypes, rt.Name)
		}
	}
	for _, s := range root.SecuritySchemes {
		report.SecuritySchemes = append(report.SecuritySchemes, s.Name)
	}
	for _, dt := range root.Types {
		report.Types = append(report.Types, dt.Info().Name)
	}
	return report
}
