package raml

import (
	"github.com/erraggy/ramltools/config"
	"github.com/erraggy/ramltools/document"
)

// Source is one place an attribute value can be inherited from.
type Source int

const (
	// SourceMethod is the current method's own block.
	SourceMethod Source = iota
	// SourceResource is the resource-level data outside any method block.
	SourceResource
	// SourceTypes is the assigned resource type, filtered to the method.
	SourceTypes
	// SourceTraits is every assigned trait, in assignment order.
	SourceTraits
	// SourceParent is the parent resource's resolved value.
	SourceParent
	// SourceRoot is the document root's top-level value.
	SourceRoot
)

var sourceNames = [...]string{
	SourceMethod:   "method",
	SourceResource: "resource",
	SourceTypes:    "types",
	SourceTraits:   "traits",
	SourceParent:   "parent",
	SourceRoot:     "root",
}

// String returns the source name.
func (s Source) String() string {
	if s < 0 || int(s) >= len(sourceNames) {
		return "unknown"
	}
	return sourceNames[s]
}

// Source orders used by the node builders.
var (
	resourceDescriptionSources = []Source{SourceMethod, SourceResource, SourceTypes, SourceTraits}
	resourceInheritedSources   = []Source{SourceMethod, SourceResource, SourceTypes, SourceTraits, SourceParent, SourceRoot}
	resourceIsSources          = []Source{SourceMethod, SourceResource, SourceTypes}
	resourceTypeSources        = []Source{SourceResource}
	templateScalarSources      = []Source{SourceMethod, SourceResource, SourceTypes, SourceTraits, SourceRoot}
)

// resolutionContext carries everything an attribute can be resolved from
// for one node.
type resolutionContext struct {
	// method is the lower-case method of the node ("" if none)
	method string
	// methodData is the node's own method block
	methodData *document.Map
	// resourceData is the resource-level data, without method blocks and
	// nested resources
	resourceData *document.Map
	// typeData is the substituted resource type data for method
	typeData *document.Map
	// traitData holds substituted trait data in assignment order
	traitData []*document.Map
	// parentScalars holds the parent's resolved scalar attributes
	parentScalars map[string]any
	// rootData is the document's top-level map
	rootData *document.Map
}

// sourceData returns the maps an attribute is looked up in for src.
func (ctx *resolutionContext) sourceData(src Source) []*document.Map {
	switch src {
	case SourceMethod:
		return []*document.Map{ctx.methodData}
	case SourceResource:
		return []*document.Map{ctx.resourceData}
	case SourceTypes:
		return []*document.Map{ctx.typeData}
	case SourceTraits:
		return ctx.traitData
	case SourceRoot:
		return []*document.Map{ctx.rootData}
	}
	return nil
}

// resolveScalar returns the first non-empty value of attr across sources,
// in order. No merging happens. A nil result means no source defines attr.
func (ctx *resolutionContext) resolveScalar(attr string, sources []Source) any {
	for _, src := range sources {
		if src == SourceParent {
			if v, ok := ctx.parentScalars[attr]; ok && !document.IsEmpty(v) {
				return document.CloneValue(v)
			}
			continue
		}
		for _, m := range ctx.sourceData(src) {
			if v, ok := m.Get(attr); ok && !document.IsEmpty(v) {
				return document.CloneValue(v)
			}
		}
	}
	return nil
}

// resolveStructural returns the deep union of attr's maps: the method block
// over the resource-level data, then the resource type and each trait
// merged underneath, so inherited entries only fill keys the resource left
// undefined. Map keys keep every entry unique; URI parameters fold their
// parent and root candidates in orderURIParams.
//
// Keys here are parameter, header, body and response names, so nothing is
// skipped; the resource type was already narrowed to ctx.method.
func (ctx *resolutionContext) resolveStructural(attr string) *document.Map {
	own := document.Merge(document.GetMap(ctx.methodData, attr), document.GetMap(ctx.resourceData, attr), document.MergeOptions{})
	inherited := append([]*document.Map{ctx.typeData}, ctx.traitData...)
	for _, src := range inherited {
		own = document.Merge(own, document.GetMap(src, attr), document.MergeOptions{})
	}
	return own
}

// methodScope keeps the blocks of methods other than method out of a
// merged resource-type template. Method blocks only live at a template's
// top level. An empty method drops every method block.
func methodScope(cfg *config.Config, method string) document.MergeOptions {
	return document.MergeOptions{
		Skip: func(key string) bool {
			name := cfg.MethodName(key)
			return name != "" && name != method
		},
	}
}

// splitResource separates a resource or template map into its
// resource-level data and its method blocks. Nested "/" resources are
// dropped from both.
func splitResource(cfg *config.Config, data *document.Map) (resource *document.Map, methods []string) {
	resource = data.Filter(func(key string, _ any) bool {
		if cfg.IsMethod(key) {
			methods = append(methods, key)
			return false
		}
		return !isResourceKey(key)
	})
	return resource, methods
}

func isResourceKey(key string) bool {
	return len(key) > 0 && key[0] == '/'
}
