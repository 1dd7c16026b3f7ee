package raml

import (
	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/internal/issues"
)

// Finding is one collected problem in a document.
type Finding = issues.Issue

// Attributes holds the attributes shared by every resource-bearing node.
type Attributes struct {
	// DisplayName defaults to the node's name
	DisplayName string
	// Description is the resolved description
	Description string
	// Headers are request headers
	Headers []*Param
	// Body lists request bodies, one per media type
	Body []*Body
	// Responses are sorted by ascending status code
	Responses []*Response
	// URIParams match the {tokens} of the node's path, in order
	URIParams []*Param
	// BaseURIParams match the {tokens} of the base URI, in order
	BaseURIParams []*Param
	// QueryParams are query string parameters
	QueryParams []*Param
	// FormParams are method-level form parameters (RAML 0.8)
	FormParams []*Param
	// MediaType is the resolved default media type
	MediaType string
	// Protocols are upper-case protocol names
	Protocols []string
	// Raw is the node's own source data
	Raw *document.Map

	root *RootNode
}

// Root returns the root node the node belongs to.
func (a *Attributes) Root() *RootNode { return a.root }

// Errors returns every finding collected for the node's document. The list
// is shared by all nodes of one document.
func (a *Attributes) Errors() []Finding {
	if a.root == nil {
		return nil
	}
	return a.root.findings.Items()
}

// Inheritable is implemented by nodes whose attributes can be inherited
// or applied to resources.
type Inheritable interface {
	Attrs() *Attributes
}

// Attrs returns a.
func (a *Attributes) Attrs() *Attributes { return a }

// ResourceNode is one (path, method) pair of the resource tree.
type ResourceNode struct {
	Attributes
	// Name is the path segment ("/{id}")
	Name string
	// Path is the full path from the tree root ("/widgets/{id}")
	Path string
	// AbsoluteURI is the protocol-adjusted base URI followed by Path
	AbsoluteURI string
	// Method is the lower-case HTTP method, or "" for a segment that
	// declares no method
	Method string
	// Parent is the enclosing resource (nil at the top level)
	Parent *ResourceNode
	// Children are the nested resources parented by this node
	Children []*ResourceNode
	// TypeName is the assigned resource type
	TypeName string
	// ResourceType is the assigned resource type for Method
	ResourceType *ResourceTypeNode
	// Is lists assigned trait names
	Is []string
	// Traits are the assigned traits, in Is order
	Traits []*TraitNode
	// SecuredBy lists assigned security scheme names ("null" marks
	// anonymous access)
	SecuredBy []string
	// SecuritySchemes are the assigned schemes, in SecuredBy order
	SecuritySchemes []*SecuritySchemeNode

	scalars map[string]any
}

// ResourceTypeNode is one method of a resource type template.
type ResourceTypeNode struct {
	Attributes
	// Name is the declared resource type name
	Name string
	// Method is the template method ("" for a template without methods)
	Method string
	// Optional is set for "method?" blocks, applied only when the
	// resource implements the method
	Optional bool
	// Usage documents the template
	Usage string
	// TypeName is the resource type this template extends
	TypeName string
	// Is lists trait names applied by the template
	Is []string
	// Traits are the resolved traits, in Is order
	Traits []*TraitNode
	// SecuredBy lists assigned security scheme names
	SecuredBy []string
}

// TraitNode is a reusable attribute bundle.
type TraitNode struct {
	Attributes
	// Name is the declared trait name
	Name string
	// Usage documents the trait
	Usage string
}

// SecuritySchemeNode is one declared security scheme.
type SecuritySchemeNode struct {
	Attributes
	// Name is the declared scheme name
	Name string
	// Type is the scheme type ("OAuth 2.0", "x-custom", ...)
	Type string
	// Settings holds scheme-specific settings
	Settings *document.Map
	// DescribedBy is the raw describedBy block
	DescribedBy *document.Map
}

// Documentation is one user documentation entry of the root.
type Documentation struct {
	Title   string
	Content string
}

// RootNode is a resolved API definition.
type RootNode struct {
	Attributes
	// RAMLVersion is the document's RAML version ("0.8", "1.0")
	RAMLVersion string
	// SourcePath is the file the document was read from, if any
	SourcePath string
	// Title is the API title
	Title string
	// Version is the API version
	Version string
	// BaseURI has any {version} token replaced by Version
	BaseURI string
	// Documentation entries in declaration order
	Documentation []Documentation
	// Schemas maps schema names to their (possibly included) content
	Schemas *document.Map
	// SecuredBy lists security scheme names applied by default
	SecuredBy []string
	// Resources are every resource node, depth first
	Resources []*ResourceNode
	// ResourceTypes are every (resource type, method) template
	ResourceTypes []*ResourceTypeNode
	// Traits are every declared trait
	Traits []*TraitNode
	// SecuritySchemes are every declared security scheme
	SecuritySchemes []*SecuritySchemeNode
	// Types are the declared data types (RAML 1.0), in declaration order
	Types []datatype.DataType
	// TypeRegistry resolves data type names for this document
	TypeRegistry *datatype.Registry

	findings *issues.List
}

// Trait returns the trait called name, or nil.
func (r *RootNode) Trait(name string) *TraitNode {
	for _, t := range r.Traits {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// ResourceType returns the template called name for method. A template
// without method blocks matches every method.
func (r *RootNode) ResourceType(name, method string) *ResourceTypeNode {
	var fallback *ResourceTypeNode
	for _, rt := range r.ResourceTypes {
		if rt.Name != name {
			continue
		}
		if rt.Method == method {
			return rt
		}
		if rt.Method == "" {
			fallback = rt
		}
	}
	return fallback
}

// SecurityScheme returns the scheme called name, or nil.
func (r *RootNode) SecurityScheme(name string) *SecuritySchemeNode {
	for _, s := range r.SecuritySchemes {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Resource returns the node for path and method, or nil.
func (r *RootNode) Resource(path, method string) *ResourceNode {
	for _, res := range r.Resources {
		if res.Path == path && res.Method == method {
			return res
		}
	}
	return nil
}
