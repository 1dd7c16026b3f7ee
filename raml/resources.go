package raml

import (
	"slices"
	"strings"

	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/internal/httputil"
	"github.com/erraggy/ramltools/internal/issues"
)

// buildResources walks the "/" keys of data depth first. Each path segment
// yields one node per declared method, or a single methodless node when it
// declares none. Nested segments are parented by the last node emitted for
// their enclosing segment.
func (b *builder) buildResources(data *document.Map, parent *ResourceNode) error {
	var err error
	data.Range(func(key string, v any) bool {
		if !isResourceKey(key) {
			return true
		}
		sub, _ := v.(*document.Map)
		_, methodKeys := splitResource(b.cfg, sub)
		if len(methodKeys) == 0 {
			methodKeys = []string{""}
		}

		var last *ResourceNode
		for _, methodKey := range methodKeys {
			var node *ResourceNode
			if node, err = b.buildResource(key, methodKey, sub, parent); err != nil {
				return false
			}
			b.root.Resources = append(b.root.Resources, node)
			if parent != nil {
				parent.Children = append(parent.Children, node)
			}
			last = node
		}
		err = b.buildResources(sub, last)
		return err == nil
	})
	return err
}

// buildResource resolves one (segment, method) node. Its parent is fully
// resolved already.
func (b *builder) buildResource(segment, methodKey string, data *document.Map, parent *ResourceNode) (*ResourceNode, error) {
	method := b.cfg.MethodName(methodKey)
	path := segment
	if parent != nil {
		path = parent.Path + segment
	}
	node := &ResourceNode{Name: segment, Path: path, Method: method, Parent: parent}
	node.root = b.root
	node.Raw = data
	where := issues.FormatPath(path, method)
	reserved := reservedParams(path, method)

	resourceData, _ := splitResource(b.cfg, data)
	ctx := &resolutionContext{
		method:       method,
		resourceData: resourceData,
		rootData:     b.rootScalars,
	}
	if methodKey != "" {
		ctx.methodData = document.GetMap(data, methodKey)
	}
	if parent != nil {
		ctx.parentScalars = parent.scalars
	}

	// The resource type and traits come first; every other attribute can
	// be inherited from them.
	typeRefs := parseRefs(ctx.resolveScalar("type", resourceTypeSources))
	if len(typeRefs) > 1 {
		b.findings.Errorf(issues.KindResource, where, "type", refNames(typeRefs),
			"too many resource types applied to '%s'", path)
	}
	if len(typeRefs) > 0 {
		ref := typeRefs[0]
		node.TypeName = ref.Name
		if !b.typeDefs.Has(ref.Name) {
			b.findings.Errorf(issues.KindResource, where, "type", ref.Name,
				"resource type '%s' is assigned but not defined", ref.Name)
		} else {
			template, err := b.expandResourceType(ref, reserved, nil, where)
			if err != nil {
				return nil, err
			}
			ctx.typeData = b.typeDataFor(template, method)
		}
	}

	traitData, traitNames, err := b.applyTraits(parseRefs(ctx.resolveScalar("is", resourceIsSources)), reserved, where)
	if err != nil {
		return nil, err
	}
	ctx.traitData = traitData
	node.Is = traitNames

	a := &node.Attributes
	a.Description = scalarString(ctx.resolveScalar("description", resourceDescriptionSources))
	a.DisplayName = scalarString(ctx.resolveScalar("displayName", resourceDescriptionSources))
	if a.DisplayName == "" {
		a.DisplayName = segment
	}
	protocols := ctx.resolveScalar("protocols", resourceInheritedSources)
	mediaType := ctx.resolveScalar("mediaType", resourceInheritedSources)
	securedBy := ctx.resolveScalar("securedBy", resourceInheritedSources)
	a.Protocols = protocolList(protocols)
	a.MediaType = scalarString(mediaType)
	node.SecuredBy = securedByNames(securedBy)
	node.scalars = map[string]any{
		"protocols": protocols,
		"mediaType": mediaType,
		"securedBy": securedBy,
	}

	if err := b.fillStructural(a, ctx, path, method); err != nil {
		return nil, err
	}

	node.AbsoluteURI = b.absoluteURI(path, a.Protocols)

	var parentURI, parentBase []*Param
	if parent != nil {
		parentURI, parentBase = parent.URIParams, parent.BaseURIParams
	}
	a.URIParams = orderURIParams(path, URIParam, a.URIParams, parentURI, b.root.URIParams)
	a.BaseURIParams = orderURIParams(b.rawBaseURI, BaseURIParam, a.BaseURIParams, parentBase, b.root.BaseURIParams)

	for _, name := range node.SecuredBy {
		if name == nullScheme {
			continue
		}
		scheme := b.root.SecurityScheme(name)
		if scheme == nil {
			b.findings.Errorf(issues.KindSecurity, where, "securedBy", name,
				"security scheme '%s' is assigned but not defined", name)
			continue
		}
		node.SecuritySchemes = append(node.SecuritySchemes, scheme)
	}
	if node.TypeName != "" {
		node.ResourceType = b.root.ResourceType(node.TypeName, method)
	}
	for _, name := range node.Is {
		if t := b.root.Trait(name); t != nil {
			node.Traits = append(node.Traits, t)
		}
	}

	if !b.cfg.Production {
		b.log.Debug("built resource",
			"path", path,
			"method", method,
			"type", node.TypeName,
			"traits", len(node.Traits),
			"uriParams", len(a.URIParams))
	}
	return node, nil
}

// absoluteURI joins the base URI and path, switching the base URI's scheme
// to the node's first protocol when the node does not allow it.
func (b *builder) absoluteURI(path string, protocols []string) string {
	base := b.root.BaseURI
	if base != "" && len(protocols) > 0 && !slices.Contains(protocols, httputil.URIScheme(base)) {
		base = httputil.ReplaceScheme(base, protocols[0])
	}
	return strings.TrimSuffix(base, "/") + path
}
