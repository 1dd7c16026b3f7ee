package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/raml"
	"github.com/erraggy/ramltools/ramlerrors"
)

type checkInstanceInput struct {
	Spec     specInput `json:"spec"           jsonschema:"The RAML document declaring the type"`
	Type     string    `json:"type,omitempty" jsonschema:"Name of a declared type. Omit when the document is a DataType fragment."`
	Instance any       `json:"instance"       jsonschema:"The JSON value to check"`
}

type checkInstanceOutput struct {
	Valid bool   `json:"valid"`
	Type  string `json:"type"`
	Kind  string `json:"kind"`
	// ResolvedType is the subtype a discriminator selected, when it differs from Type
	ResolvedType string `json:"resolved_type,omitempty"`
	Position     string `json:"position,omitempty"`
	Value        string `json:"value,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func handleCheckInstance(_ context.Context, _ *mcp.CallToolRequest, input checkInstanceInput) (*mcp.CallToolResult, checkInstanceOutput, error) {
	result, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), checkInstanceOutput{}, nil
	}

	dt, err := lookupInstanceType(result.Root, result.DataType, input.Type)
	if err != nil {
		return errResult(err), checkInstanceOutput{}, nil
	}

	output := checkInstanceOutput{
		Valid: true,
		Type:  typeName(dt),
		Kind:  dt.Kind().String(),
	}
	position := dt.Info().Name
	if position == "" {
		position = "instance"
	}
	err = datatype.Validate(dt, input.Instance, position)
	var violation *ramlerrors.DataTypeValidationError
	switch {
	case err == nil:
		if target, _ := dt.Info().Registry().Discriminate(dt, input.Instance); target != nil && target != dt {
			output.ResolvedType = typeName(target)
		}
	case errors.As(err, &violation):
		output.Valid = false
		output.Position = violation.Position
		output.Value = fmt.Sprint(violation.Value)
		output.Reason = violation.Reason
	default:
		return errResult(err), checkInstanceOutput{}, nil
	}
	return nil, output, nil
}

// lookupInstanceType picks the named type from root, or the fragment type
// when the document is a DataType fragment and no name is given.
func lookupInstanceType(root *raml.RootNode, fragment datatype.DataType, name string) (datatype.DataType, error) {
	if name == "" {
		if fragment == nil {
			return nil, errors.New("type is required unless the document is a DataType fragment")
		}
		return fragment, nil
	}
	if root == nil || root.TypeRegistry == nil {
		return nil, fmt.Errorf("document declares no types; cannot look up %q", name)
	}
	dt, ok := root.TypeRegistry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("type %q is not declared", name)
	}
	return dt, nil
}
