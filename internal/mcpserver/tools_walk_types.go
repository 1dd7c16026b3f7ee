package mcpserver

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/document"
)

type walkTypesInput struct {
	Spec    specInput `json:"spec"               jsonschema:"The RAML document to walk"`
	Name    string    `json:"name,omitempty"     jsonschema:"Filter by type name (supports * and ? glob)"`
	Kind    string    `json:"kind,omitempty"     jsonschema:"Filter by kind (object\\, array\\, string\\, number\\, integer\\, boolean\\, date\\, file\\, any)"`
	Detail  bool      `json:"detail,omitempty"   jsonschema:"Return facets and properties instead of summaries"`
	GroupBy string    `json:"group_by,omitempty" jsonschema:"Group results and return counts instead of items. Values: kind"`
	Limit   int       `json:"limit,omitempty"    jsonschema:"Maximum number of results to return (default 100)"`
	Offset  int       `json:"offset,omitempty"   jsonschema:"Skip the first N results (for pagination)"`
}

type typeSummary struct {
	Name          string   `json:"name"`
	Kind          string   `json:"kind"`
	Base          string   `json:"base,omitempty"`
	Description   string   `json:"description,omitempty"`
	PropertyCount int      `json:"property_count,omitempty"`
	Subtypes      []string `json:"subtypes,omitempty"`
}

type propertyDetail struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

type typeDetail struct {
	typeSummary
	Properties    []propertyDetail `json:"properties,omitempty"`
	Discriminator string           `json:"discriminator,omitempty"`
	Items         string           `json:"items,omitempty"`
	Pattern       string           `json:"pattern,omitempty"`
	MinLength     *int             `json:"min_length,omitempty"`
	MaxLength     *int             `json:"max_length,omitempty"`
	Minimum       *float64         `json:"minimum,omitempty"`
	Maximum       *float64         `json:"maximum,omitempty"`
	Format        string           `json:"format,omitempty"`
	Enum          []any            `json:"enum,omitempty"`
	Default       any              `json:"default,omitempty"`
	Example       any              `json:"example,omitempty"`
}

type walkTypesOutput struct {
	Total     int           `json:"total"`
	Matched   int           `json:"matched"`
	Returned  int           `json:"returned"`
	Summaries []typeSummary `json:"summaries,omitempty"`
	Types     []typeDetail  `json:"types,omitempty"`
	Groups    []groupCount  `json:"groups,omitempty"`
}

// fragmentTypeName names the type of a DataType fragment document.
const fragmentTypeName = "(fragment)"

func handleWalkTypes(_ context.Context, _ *mcp.CallToolRequest, input walkTypesInput) (*mcp.CallToolResult, any, error) {
	if err := validateGroupBy(input.GroupBy, input.Detail, []string{"kind"}); err != nil {
		return errResult(err), nil, nil
	}
	if err := validateGlobPattern(input.Name); err != nil {
		return errResult(err), nil, nil
	}

	result, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), nil, nil
	}

	var all []datatype.DataType
	var registry *datatype.Registry
	switch {
	case result.Root != nil:
		all = result.Root.Types
		registry = result.Root.TypeRegistry
	case result.DataType != nil:
		all = []datatype.DataType{result.DataType}
	default:
		return errResult(fmt.Errorf("document is a %s fragment and declares no types", result.Fragment)), nil, nil
	}

	var matched []datatype.DataType
	for _, dt := range all {
		if input.Name != "" && !matchGlobName(typeName(dt), input.Name) {
			continue
		}
		if input.Kind != "" && !strings.EqualFold(dt.Kind().String(), input.Kind) {
			continue
		}
		matched = append(matched, dt)
	}

	if input.GroupBy != "" {
		groups := groupAndSort(matched, func(dt datatype.DataType) []string {
			return []string{dt.Kind().String()}
		})
		return nil, walkTypesOutput{
			Total:    len(all),
			Matched:  len(matched),
			Returned: len(groups),
			Groups:   groups,
		}, nil
	}

	limit := input.Limit
	if input.Detail {
		limit = detailLimit(limit)
	}
	returned := paginate(matched, input.Offset, limit)

	output := walkTypesOutput{
		Total:    len(all),
		Matched:  len(matched),
		Returned: len(returned),
	}
	if input.Detail {
		output.Types = makeSlice[typeDetail](len(returned))
		for _, dt := range returned {
			output.Types = append(output.Types, newTypeDetail(dt, registry))
		}
	} else {
		output.Summaries = makeSlice[typeSummary](len(returned))
		for _, dt := range returned {
			output.Summaries = append(output.Summaries, newTypeSummary(dt, registry))
		}
	}
	return nil, output, nil
}

// matchGlobName matches a name against a case-insensitive glob pattern.
// Without glob characters it is a case-insensitive equality check.
func matchGlobName(name, pattern string) bool {
	if strings.ContainsAny(pattern, "*?") {
		matched, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(name))
		return err == nil && matched
	}
	return strings.EqualFold(name, pattern)
}

func typeName(dt datatype.DataType) string {
	if name := dt.Info().Name; name != "" {
		return name
	}
	return fragmentTypeName
}

// typeLabel describes a type reference: its declared name when it has one,
// otherwise its type expression.
func typeLabel(dt datatype.DataType) string {
	if dt == nil {
		return ""
	}
	info := dt.Info()
	switch {
	case info.Name != "":
		return info.Name
	case info.TypeName != "":
		return info.TypeName
	default:
		return dt.Kind().String()
	}
}

func newTypeSummary(dt datatype.DataType, registry *datatype.Registry) typeSummary {
	info := dt.Info()
	s := typeSummary{
		Name:        typeName(dt),
		Kind:        dt.Kind().String(),
		Base:        info.TypeName,
		Description: info.Description,
	}
	if obj, ok := dt.(*datatype.Object); ok {
		s.PropertyCount = len(obj.Properties)
	}
	if registry != nil && info.Name != "" {
		s.Subtypes = registry.Subtypes(info.Name)
	}
	return s
}

func newTypeDetail(dt datatype.DataType, registry *datatype.Registry) typeDetail {
	info := dt.Info()
	d := typeDetail{
		typeSummary: newTypeSummary(dt, registry),
		Enum:        info.Enum,
		Default:     document.ToNative(info.Default),
		Example:     document.ToNative(info.Example),
	}
	switch t := dt.(type) {
	case *datatype.Object:
		d.Discriminator = t.Discriminator
		d.Properties = makeSlice[propertyDetail](len(t.Properties))
		for _, p := range t.Properties {
			d.Properties = append(d.Properties, propertyDetail{
				Name:     p.Name,
				Type:     typeLabel(p.Type),
				Required: p.Required,
			})
		}
	case *datatype.Array:
		d.Items = typeLabel(t.Items)
	case *datatype.String:
		if t.Pattern != nil {
			d.Pattern = t.Pattern.String()
		}
		d.MinLength = nonZero(t.MinLength)
		d.MaxLength = bounded(t.MaxLength)
	case *datatype.Number:
		d.Minimum, d.Maximum, d.Format = t.Minimum, t.Maximum, t.Format
	case *datatype.Integer:
		d.Minimum, d.Maximum, d.Format = t.Minimum, t.Maximum, t.Format
	case *datatype.Date:
		d.Format = t.Variant
		if t.Format != "" {
			d.Format += " (" + t.Format + ")"
		}
	case *datatype.File:
		d.MinLength = nonZero(t.MinLength)
		d.MaxLength = bounded(t.MaxLength)
	}
	return d
}

func nonZero(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// bounded returns nil for the unbounded sentinel.
func bounded(n int) *int {
	if n == math.MaxInt {
		return nil
	}
	return &n
}
