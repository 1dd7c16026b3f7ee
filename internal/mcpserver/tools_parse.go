package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/ramltools/datatype"
)

type parseInput struct {
	Spec specInput `json:"spec" jsonschema:"The RAML document to parse"`
}

type parseSummaryDoc struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

type parseOutput struct {
	RAMLVersion         string            `json:"raml_version"`
	Fragment            string            `json:"fragment"`
	Title               string            `json:"title,omitempty"`
	Version             string            `json:"version,omitempty"`
	BaseURI             string            `json:"base_uri,omitempty"`
	Protocols           []string          `json:"protocols,omitempty"`
	MediaType           string            `json:"media_type,omitempty"`
	SecuredBy           []string          `json:"secured_by,omitempty"`
	Documentation       []parseSummaryDoc `json:"documentation,omitempty"`
	PathCount           int               `json:"path_count"`
	MethodCount         int               `json:"method_count"`
	TraitCount          int               `json:"trait_count"`
	ResourceTypeCount   int               `json:"resource_type_count"`
	SecuritySchemeCount int               `json:"security_scheme_count"`
	TypeCount           int               `json:"type_count"`
	FindingCount        int               `json:"finding_count"`
	DataTypeKind        string            `json:"datatype_kind,omitempty"`
}

func handleParse(_ context.Context, _ *mcp.CallToolRequest, input parseInput) (*mcp.CallToolResult, parseOutput, error) {
	result, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), parseOutput{}, nil
	}

	output := parseOutput{
		RAMLVersion:         result.Version,
		Fragment:            string(result.Fragment),
		PathCount:           result.Stats.PathCount,
		MethodCount:         result.Stats.MethodCount,
		TraitCount:          result.Stats.TraitCount,
		ResourceTypeCount:   result.Stats.ResourceTypeCount,
		SecuritySchemeCount: result.Stats.SecuritySchemeCount,
		TypeCount:           result.Stats.TypeCount,
		FindingCount:        result.Stats.FindingCount,
	}

	if root := result.Root; root != nil {
		output.Title = root.Title
		output.Version = root.Version
		output.BaseURI = root.BaseURI
		output.Protocols = root.Protocols
		output.MediaType = root.MediaType
		output.SecuredBy = root.SecuredBy
		output.Documentation = makeSlice[parseSummaryDoc](len(root.Documentation))
		for _, d := range root.Documentation {
			output.Documentation = append(output.Documentation, parseSummaryDoc{Title: d.Title, Content: d.Content})
		}
	}
	if result.DataType != nil {
		output.DataTypeKind = kindName(result.DataType)
	}

	return nil, output, nil
}

// kindName returns the lower-case kind of dt, e.g. "object".
func kindName(dt datatype.DataType) string {
	return dt.Kind().String()
}
