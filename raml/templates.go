package raml

import (
	"strings"

	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/internal/httputil"
	"github.com/erraggy/ramltools/internal/issues"
)

// maxTypeChain bounds resource type "type:" chains.
const maxTypeChain = 16

// templateRef is one trait or resource type assignment. Args is nil for
// the bare-name form.
type templateRef struct {
	Name string
	Args *document.Map
}

// parseRefs reads "is" and "type" values: a name, a {name: args} map, or a
// list of either.
func parseRefs(v any) []templateRef {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t = strings.TrimSpace(t); t == "" {
			return nil
		}
		return []templateRef{{Name: t}}
	case *document.Map:
		var out []templateRef
		t.Range(func(name string, args any) bool {
			m, _ := args.(*document.Map)
			out = append(out, templateRef{Name: name, Args: m})
			return true
		})
		return out
	case []any:
		var out []templateRef
		for _, item := range t {
			out = append(out, parseRefs(item)...)
		}
		return out
	default:
		if s, ok := document.AsString(t); ok {
			return []templateRef{{Name: s}}
		}
		return nil
	}
}

func refNames(refs []templateRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Name)
	}
	return out
}

// expandResourceType returns the resource type ref.Name with its
// parameters substituted and its own "type:" chain merged underneath.
// It returns nil when the type is not defined.
func (b *builder) expandResourceType(ref templateRef, reserved map[string]any, chain []string, where string) (*document.Map, error) {
	def, ok := b.typeDefs.Get(ref.Name)
	if !ok {
		return nil, nil
	}
	for _, seen := range chain {
		if seen == ref.Name {
			b.findings.Errorf(issues.KindResource, where, "type", ref.Name,
				"circular resource type chain %s -> %s", strings.Join(chain, " -> "), ref.Name)
			return nil, nil
		}
	}
	if len(chain) >= maxTypeChain {
		b.findings.Errorf(issues.KindResource, where, "type", ref.Name, "resource type chain exceeds %d levels", maxTypeChain)
		return nil, nil
	}

	m, _ := def.(*document.Map)
	out, err := substituteMap(m, withArgs(reserved, ref.Args))
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = document.NewMap()
	}
	baseRefs := parseRefs(document.Get(out, "type", nil))
	out.Delete("type")
	if len(baseRefs) == 0 {
		return out, nil
	}
	if !b.typeDefs.Has(baseRefs[0].Name) {
		b.findings.Errorf(issues.KindResource, where, "type", baseRefs[0].Name,
			"resource type '%s' is assigned but not defined", baseRefs[0].Name)
		return out, nil
	}
	base, err := b.expandResourceType(baseRefs[0], reserved, append(chain, ref.Name), where)
	if err != nil {
		return nil, err
	}
	return document.Merge(out, base, document.MergeOptions{}), nil
}

// typeDataFor narrows an expanded resource type to what applies to
// method: the method block (required over optional) over the
// template's resource-level data.
func (b *builder) typeDataFor(template *document.Map, method string) *document.Map {
	if template == nil {
		return nil
	}
	scoped := document.Merge(nil, template, methodScope(b.cfg, method))
	resource, _ := splitResource(b.cfg, scoped)
	resource.Delete("usage")
	if method == "" {
		return resource
	}
	block := document.Merge(
		document.GetMap(scoped, method),
		document.GetMap(scoped, method+httputil.OptionalSuffix),
		document.MergeOptions{},
	)
	if block != nil {
		block.Delete("usage")
	}
	return document.Merge(block, resource, document.MergeOptions{})
}

// applyTraits substitutes each assigned trait, skipping repeats. Undefined
// traits are reported and skipped.
func (b *builder) applyTraits(refs []templateRef, reserved map[string]any, where string) ([]*document.Map, []string, error) {
	var data []*document.Map
	var names []string
	seen := make(map[string]bool)
	for _, ref := range refs {
		if seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		names = append(names, ref.Name)

		def, ok := b.traitDefs.Get(ref.Name)
		if !ok {
			b.findings.Errorf(issues.KindResource, where, "is", ref.Name, "trait '%s' is assigned but not defined", ref.Name)
			continue
		}
		m, _ := def.(*document.Map)
		sub, err := substituteMap(m, withArgs(reserved, ref.Args))
		if err != nil {
			return nil, nil, err
		}
		if sub != nil {
			sub.Delete("usage")
			data = append(data, sub)
		}
	}
	return data, names, nil
}

// buildTraits constructs one TraitNode per declared trait from its own
// data.
func (b *builder) buildTraits() error {
	var err error
	b.traitDefs.Range(func(name string, v any) bool {
		def, _ := v.(*document.Map)
		node := &TraitNode{Name: name, Usage: document.GetString(def, "usage", "")}
		err = b.fillAttributes(&node.Attributes, def, name, issues.FormatPath("traits", name), "")
		if err != nil {
			return false
		}
		b.root.Traits = append(b.root.Traits, node)
		b.log.Debug("built trait", "name", name)
		return true
	})
	return err
}

// buildResourceTypes constructs one ResourceTypeNode per (name, method)
// of each declared resource type. Placeholders are left in place.
func (b *builder) buildResourceTypes() error {
	var err error
	b.typeDefs.Range(func(name string, v any) bool {
		def, _ := v.(*document.Map)
		where := issues.FormatPath("resourceTypes", name)
		resourceData, methodKeys := splitResource(b.cfg, def)

		var base *document.Map
		typeRefs := parseRefs(document.Get(resourceData, "type", nil))
		if len(typeRefs) > 0 {
			if !b.typeDefs.Has(typeRefs[0].Name) {
				b.findings.Errorf(issues.KindResource, where, "type", typeRefs[0].Name,
					"resource type '%s' is assigned but not defined", typeRefs[0].Name)
			} else if base, err = b.expandResourceType(typeRefs[0], nil, []string{name}, where); err != nil {
				return false
			}
		}

		if len(methodKeys) == 0 {
			methodKeys = []string{""}
		}
		for _, key := range methodKeys {
			var node *ResourceTypeNode
			if node, err = b.buildResourceType(name, key, def, resourceData, base, where); err != nil {
				return false
			}
			if len(typeRefs) > 0 {
				node.TypeName = typeRefs[0].Name
			}
			b.root.ResourceTypes = append(b.root.ResourceTypes, node)
			b.log.Debug("built resource type", "name", name, "method", node.Method)
		}
		return true
	})
	return err
}

func (b *builder) buildResourceType(name, key string, def, resourceData, base *document.Map, where string) (*ResourceTypeNode, error) {
	method := b.cfg.MethodName(key)
	node := &ResourceTypeNode{
		Name:     name,
		Method:   method,
		Optional: key != "" && httputil.IsOptionalMethod(key),
		Usage:    document.GetString(resourceData, "usage", ""),
	}
	ctx := &resolutionContext{
		method:       method,
		resourceData: resourceData,
		typeData:     b.typeDataFor(base, method),
		rootData:     b.rootScalars,
	}
	if key != "" {
		ctx.methodData = document.GetMap(def, key)
	}

	refs := parseRefs(ctx.resolveScalar("is", resourceIsSources))
	traitData, names, err := b.applyTraits(refs, nil, issues.FormatPath(where, method))
	if err != nil {
		return nil, err
	}
	ctx.traitData = traitData
	node.Is = names
	for _, n := range names {
		if t := b.root.Trait(n); t != nil {
			node.Traits = append(node.Traits, t)
		}
	}

	a := &node.Attributes
	a.root = b.root
	a.Raw = def
	a.Description = scalarString(ctx.resolveScalar("description", templateScalarSources))
	a.DisplayName = scalarString(ctx.resolveScalar("displayName", templateScalarSources))
	if a.DisplayName == "" {
		a.DisplayName = name
	}
	a.MediaType = scalarString(ctx.resolveScalar("mediaType", templateScalarSources))
	a.Protocols = protocolList(ctx.resolveScalar("protocols", templateScalarSources))
	node.SecuredBy = securedByNames(ctx.resolveScalar("securedBy", templateScalarSources))

	if err := b.fillStructural(a, ctx, where, method); err != nil {
		return nil, err
	}
	return node, nil
}
