package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateInput struct {
	Spec       specInput `json:"spec"                  jsonschema:"The RAML document to validate"`
	NoWarnings bool      `json:"no_warnings,omitempty" jsonschema:"Suppress warnings from output"`
	Offset     int       `json:"offset,omitempty"      jsonschema:"Skip the first N errors/warnings (for pagination)"`
	Limit      int       `json:"limit,omitempty"       jsonschema:"Maximum number of errors/warnings to return (default 100). Applied independently to errors and warnings arrays."`
}

type validateIssue struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type validateOutput struct {
	Valid        bool            `json:"valid"`
	Version      string          `json:"version"`
	ErrorCount   int             `json:"error_count"`
	WarningCount int             `json:"warning_count"`
	Returned     int             `json:"returned"`
	Errors       []validateIssue `json:"errors,omitempty"`
	Warnings     []validateIssue `json:"warnings,omitempty"`
}

func handleValidate(_ context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	result, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	findings := result.Findings()
	output := validateOutput{Version: result.Version}
	for _, f := range findings {
		issue := validateIssue{
			Kind:    string(f.Kind),
			Path:    f.Path,
			Message: f.Message,
			Field:   f.Field,
		}
		if f.Severity.Blocking() {
			output.Errors = append(output.Errors, issue)
			continue
		}
		if !input.NoWarnings {
			output.Warnings = append(output.Warnings, issue)
		}
	}
	output.ErrorCount = len(output.Errors)
	output.WarningCount = len(output.Warnings)
	output.Valid = output.ErrorCount == 0

	output.Errors = paginate(output.Errors, input.Offset, input.Limit)
	output.Warnings = paginate(output.Warnings, input.Offset, input.Limit)
	output.Returned = len(output.Errors) + len(output.Warnings)

	return nil, output, nil
}
