package mcpserver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/raml"
)

type walkResourcesInput struct {
	Spec      specInput `json:"spec"                 jsonschema:"The RAML document to walk"`
	Path      string    `json:"path,omitempty"       jsonschema:"Filter by path pattern (* = one segment\\, ** = zero or more segments\\, e.g. /users/* or /users/**)"`
	Method    string    `json:"method,omitempty"     jsonschema:"Filter by HTTP method (get\\, post\\, put\\, delete\\, patch\\, etc.)"`
	Type      string    `json:"type,omitempty"       jsonschema:"Filter by assigned resource type name"`
	Trait     string    `json:"trait,omitempty"      jsonschema:"Filter by applied trait name"`
	SecuredBy string    `json:"secured_by,omitempty" jsonschema:"Filter by security scheme name"`
	Detail    bool      `json:"detail,omitempty"     jsonschema:"Return resolved parameters\\, bodies and responses instead of summaries"`
	GroupBy   string    `json:"group_by,omitempty"   jsonschema:"Group results and return counts instead of items. Values: method\\, type\\, trait\\, segment"`
	Limit     int       `json:"limit,omitempty"      jsonschema:"Maximum number of results to return (default 100)"`
	Offset    int       `json:"offset,omitempty"     jsonschema:"Skip the first N results (for pagination)"`
}

type resourceSummary struct {
	Path        string   `json:"path"`
	Method      string   `json:"method,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
	Type        string   `json:"type,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	SecuredBy   []string `json:"secured_by,omitempty"`
	Description string   `json:"description,omitempty"`
}

type paramDetail struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Repeat      bool   `json:"repeat,omitempty"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
}

type bodyDetail struct {
	MimeType   string        `json:"mime_type"`
	Type       string        `json:"type,omitempty"`
	HasSchema  bool          `json:"has_schema,omitempty"`
	Example    any           `json:"example,omitempty"`
	FormParams []paramDetail `json:"form_parameters,omitempty"`
}

type responseDetail struct {
	Code        string        `json:"code"`
	Description string        `json:"description,omitempty"`
	Headers     []paramDetail `json:"headers,omitempty"`
	Body        []bodyDetail  `json:"body,omitempty"`
}

type resourceDetail struct {
	resourceSummary
	AbsoluteURI   string           `json:"absolute_uri,omitempty"`
	Protocols     []string         `json:"protocols,omitempty"`
	BaseURIParams []paramDetail    `json:"base_uri_parameters,omitempty"`
	URIParams     []paramDetail    `json:"uri_parameters,omitempty"`
	QueryParams   []paramDetail    `json:"query_parameters,omitempty"`
	Headers       []paramDetail    `json:"headers,omitempty"`
	Body          []bodyDetail     `json:"body,omitempty"`
	Responses     []responseDetail `json:"responses,omitempty"`
}

type walkResourcesOutput struct {
	Total     int               `json:"total"`
	Matched   int               `json:"matched"`
	Returned  int               `json:"returned"`
	Summaries []resourceSummary `json:"summaries,omitempty"`
	Resources []resourceDetail  `json:"resources,omitempty"`
	Groups    []groupCount      `json:"groups,omitempty"`
}

var resourceGroupBy = []string{"method", "type", "trait", "segment"}

func handleWalkResources(_ context.Context, _ *mcp.CallToolRequest, input walkResourcesInput) (*mcp.CallToolResult, any, error) {
	if err := validateGroupBy(input.GroupBy, input.Detail, resourceGroupBy); err != nil {
		return errResult(err), nil, nil
	}
	if err := validateGlobPattern(input.Path); err != nil {
		return errResult(err), nil, nil
	}

	result, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), nil, nil
	}
	if result.Root == nil {
		return errResult(fmt.Errorf("document is a %s fragment and has no resources", result.Fragment)), nil, nil
	}

	var all []*raml.ResourceNode
	result.Root.Walk(func(res *raml.ResourceNode, _ int) raml.Action {
		all = append(all, res)
		return raml.Continue
	})

	matched := filterWalkResources(all, input)

	if input.GroupBy != "" {
		groups := groupAndSort(matched, resourceGroupKey(strings.ToLower(input.GroupBy)))
		return nil, walkResourcesOutput{
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

	output := walkResourcesOutput{
		Total:    len(all),
		Matched:  len(matched),
		Returned: len(returned),
	}
	if input.Detail {
		output.Resources = makeSlice[resourceDetail](len(returned))
		for _, res := range returned {
			output.Resources = append(output.Resources, newResourceDetail(res))
		}
	} else {
		output.Summaries = makeSlice[resourceSummary](len(returned))
		for _, res := range returned {
			output.Summaries = append(output.Summaries, newResourceSummary(res))
		}
	}
	return nil, output, nil
}

// filterWalkResources applies all resource filters and returns the matching subset.
func filterWalkResources(resources []*raml.ResourceNode, input walkResourcesInput) []*raml.ResourceNode {
	var matched []*raml.ResourceNode
	for _, res := range resources {
		if input.Path != "" && !matchWalkPath(res.Path, input.Path) {
			continue
		}
		if input.Method != "" && !strings.EqualFold(res.Method, input.Method) {
			continue
		}
		if input.Type != "" && res.TypeName != input.Type {
			continue
		}
		if input.Trait != "" && !slices.Contains(res.Is, input.Trait) {
			continue
		}
		if input.SecuredBy != "" && !slices.Contains(res.SecuredBy, input.SecuredBy) {
			continue
		}
		matched = append(matched, res)
	}
	return matched
}

func resourceGroupKey(groupBy string) func(*raml.ResourceNode) []string {
	switch groupBy {
	case "type":
		return func(res *raml.ResourceNode) []string { return []string{orNone(res.TypeName)} }
	case "trait":
		return func(res *raml.ResourceNode) []string {
			if len(res.Is) == 0 {
				return []string{"(none)"}
			}
			return res.Is
		}
	case "segment":
		return func(res *raml.ResourceNode) []string { return []string{firstSegment(res.Path)} }
	default:
		return func(res *raml.ResourceNode) []string { return []string{orNone(strings.ToUpper(res.Method))} }
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// firstSegment returns the first path segment with its leading slash.
func firstSegment(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}

// matchWalkPath checks if a resource path matches a pattern.
// * matches exactly one path segment and ** matches zero or more.
func matchWalkPath(path, pattern string) bool {
	if pattern == "" {
		return true
	}
	if !strings.Contains(pattern, "*") {
		return path == pattern
	}
	return matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/"))
}

func matchSegments(path, pattern []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "**":
			rest := pattern[1:]
			for i := 0; i <= len(path); i++ {
				if matchSegments(path[i:], rest) {
					return true
				}
			}
			return false
		case "*":
			if len(path) == 0 {
				return false
			}
		default:
			if len(path) == 0 || path[0] != pattern[0] {
				return false
			}
		}
		path, pattern = path[1:], pattern[1:]
	}
	return len(path) == 0
}

func newResourceSummary(res *raml.ResourceNode) resourceSummary {
	return resourceSummary{
		Path:        res.Path,
		Method:      strings.ToUpper(res.Method),
		DisplayName: res.DisplayName,
		Type:        res.TypeName,
		Traits:      res.Is,
		SecuredBy:   res.SecuredBy,
		Description: res.Description,
	}
}

func newResourceDetail(res *raml.ResourceNode) resourceDetail {
	d := resourceDetail{
		resourceSummary: newResourceSummary(res),
		AbsoluteURI:     res.AbsoluteURI,
		Protocols:       res.Protocols,
		BaseURIParams:   newParamDetails(res.BaseURIParams),
		URIParams:       newParamDetails(res.URIParams),
		QueryParams:     newParamDetails(res.QueryParams),
		Headers:         newParamDetails(res.Headers),
		Body:            newBodyDetails(res.Body),
	}
	d.Responses = makeSlice[responseDetail](len(res.Responses))
	for _, r := range res.Responses {
		d.Responses = append(d.Responses, responseDetail{
			Code:        r.RawCode,
			Description: r.Description,
			Headers:     newParamDetails(r.Headers),
			Body:        newBodyDetails(r.Body),
		})
	}
	return d
}

func newParamDetails(params []*raml.Param) []paramDetail {
	out := makeSlice[paramDetail](len(params))
	for _, p := range params {
		out = append(out, paramDetail{
			Name:        p.Name,
			Type:        p.Type,
			Required:    p.Required,
			Repeat:      p.Repeat,
			Description: p.Description,
			Default:     document.ToNative(p.Default),
			Enum:        p.Enum,
			Pattern:     p.Pattern,
		})
	}
	return out
}

func newBodyDetails(bodies []*raml.Body) []bodyDetail {
	out := makeSlice[bodyDetail](len(bodies))
	for _, b := range bodies {
		d := bodyDetail{
			MimeType:   b.MimeType,
			HasSchema:  b.Schema != nil,
			Example:    document.ToNative(b.Example),
			FormParams: newParamDetails(b.FormParams),
		}
		if b.DataType != nil {
			d.Type = typeLabel(b.DataType)
		}
		out = append(out, d)
	}
	return out
}
