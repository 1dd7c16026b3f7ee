package raml

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/ramltools/config"
	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/internal/httputil"
	"github.com/erraggy/ramltools/internal/issues"
)

// builder resolves one document. It is used once.
type builder struct {
	cfg      *config.Config
	version  string
	log      Logger
	data     *document.Map
	root     *RootNode
	registry *datatype.Registry
	findings *issues.List

	// rawBaseURI is the base URI as written, before {version} substitution
	rawBaseURI string
	// rootScalars holds the root values resources inherit
	rootScalars *document.Map

	traitDefs  *document.Map
	typeDefs   *document.Map
	schemeDefs *document.Map
}

func newBuilder(cfg *config.Config, log Logger, doc *document.Document) *builder {
	findings := &issues.List{}
	root := &RootNode{
		RAMLVersion:  doc.Version,
		TypeRegistry: datatype.NewRegistry(),
		findings:     findings,
	}
	root.root = root
	root.Raw = doc.Root
	return &builder{
		cfg:      cfg,
		version:  doc.Version,
		log:      log,
		data:     doc.Root,
		root:     root,
		registry: root.TypeRegistry,
		findings: findings,
	}
}

func (b *builder) is10() bool { return b.version == "1.0" }

// build resolves the whole document top-down: root attributes, then
// security schemes, traits, resource types and finally the resource tree.
func (b *builder) build() (*RootNode, error) {
	root, data := b.root, b.data

	b.traitDefs = b.namedDefinitions("traits", issues.KindResource)
	b.typeDefs = b.namedDefinitions("resourceTypes", issues.KindResource)
	b.schemeDefs = b.namedDefinitions("securitySchemes", issues.KindSecurity)
	root.Schemas = b.namedDefinitions("schemas", issues.KindRoot)

	if b.is10() {
		if err := b.registry.Declare(b.namedDefinitions("types", issues.KindDataType)); err != nil {
			return nil, err
		}
		for _, name := range b.registry.Names() {
			dt, _ := b.registry.Lookup(name)
			root.Types = append(root.Types, dt)
		}
		b.checkExamples()
	}

	root.Title = scalarString(document.Get(data, "title", nil))
	root.Version = scalarString(document.Get(data, "version", nil))
	b.rawBaseURI = scalarString(document.Get(data, "baseUri", nil))
	root.BaseURI = strings.ReplaceAll(b.rawBaseURI, "{"+versionToken+"}", root.Version)
	root.Description = scalarString(document.Get(data, "description", nil))
	root.DisplayName = root.Title
	root.MediaType = scalarString(document.Get(data, "mediaType", nil))
	root.Protocols = protocolList(document.Get(data, "protocols", nil))
	if len(root.Protocols) == 0 {
		if scheme := httputil.URIScheme(root.BaseURI); scheme != "" {
			root.Protocols = []string{scheme}
		}
	}
	root.SecuredBy = securedByNames(document.Get(data, "securedBy", nil))
	root.Documentation = b.documentation(document.Get(data, "documentation", nil))

	b.rootScalars = document.NewMap()
	if root.MediaType != "" {
		b.rootScalars.Set("mediaType", root.MediaType)
	}
	if len(root.Protocols) > 0 {
		b.rootScalars.Set("protocols", toAnyList(root.Protocols))
	}
	if sb := document.Get(data, "securedBy", nil); sb != nil {
		b.rootScalars.Set("securedBy", sb)
	}

	declaredBase, err := b.params(BaseURIParam, document.GetMap(data, "baseUriParameters"), "baseUriParameters", "")
	if err != nil {
		return nil, err
	}
	root.BaseURIParams = orderURIParams(b.rawBaseURI, BaseURIParam, declaredBase)
	if root.URIParams, err = b.params(URIParam, document.GetMap(data, "uriParameters"), "", ""); err != nil {
		return nil, err
	}

	if err := b.buildSecuritySchemes(); err != nil {
		return nil, err
	}
	if err := b.buildTraits(); err != nil {
		return nil, err
	}
	if err := b.buildResourceTypes(); err != nil {
		return nil, err
	}
	if err := b.buildResources(data, nil); err != nil {
		return nil, err
	}

	b.validateRoot(declaredBase)
	b.log.Debug("resolved document",
		"title", root.Title,
		"resources", len(root.Resources),
		"types", b.registry.Len(),
		"findings", b.findings.Len())
	return root, nil
}

// namedDefinitions normalises a declaration section. RAML 0.8 writes these
// as a list of single-entry maps, RAML 1.0 as one map; both are accepted.
func (b *builder) namedDefinitions(key string, kind issues.Kind) *document.Map {
	v, ok := b.data.Get(key)
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case *document.Map:
		return t
	case []any:
		out := document.NewMap()
		for i, item := range t {
			m, ok := item.(*document.Map)
			if !ok {
				b.findings.Errorf(kind, fmt.Sprintf("%s[%d]", key, i), key, item,
					"%s entries must be mappings, got %s", key, document.Describe(item))
				continue
			}
			m.Range(func(name string, def any) bool {
				if out.Has(name) {
					b.findings.Errorf(kind, key, name, name, "duplicate %s definition '%s'", key, name)
					return true
				}
				out.Set(name, def)
				return true
			})
		}
		return out
	default:
		b.findings.Errorf(kind, key, key, v, "'%s' must be a mapping or a list of mappings", key)
		return nil
	}
}

// documentation reads the title/content entries of the root.
func (b *builder) documentation(v any) []Documentation {
	if v == nil {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		b.findings.Errorf(issues.KindRoot, "documentation", "documentation", v, "documentation must be a list")
		return nil
	}
	out := make([]Documentation, 0, len(list))
	for i, item := range list {
		where := fmt.Sprintf("documentation[%d]", i)
		doc := Documentation{
			Title:   scalarString(document.Get(item, "title", nil)),
			Content: scalarString(document.Get(item, "content", nil)),
		}
		if doc.Title == "" {
			b.findings.Errorf(issues.KindRoot, where, "title", nil, "API Documentation requires a title.")
		}
		if doc.Content == "" {
			b.findings.Errorf(issues.KindRoot, where, "content", nil, "API Documentation requires content defined.")
		}
		out = append(out, doc)
	}
	return out
}

// checkExamples validates declared examples against their type.
func (b *builder) checkExamples() {
	for _, dt := range b.root.Types {
		info := dt.Info()
		where := issues.FormatPath("types", info.Name)
		if info.Example != nil {
			if err := datatype.Validate(dt, info.Example, info.Name); err != nil {
				b.findings.Errorf(issues.KindDataType, where, "example", info.Example, "example is invalid: %v", err)
			}
		}
		info.Examples.Range(func(name string, v any) bool {
			if m, ok := v.(*document.Map); ok && m.Has("value") {
				v = document.Get(m, "value", nil)
			}
			if err := datatype.Validate(dt, v, info.Name); err != nil {
				b.findings.Errorf(issues.KindDataType, where, "examples."+name, v, "example '%s' is invalid: %v", name, err)
			}
			return true
		})
	}
}

// validateRoot records the root-level findings.
func (b *builder) validateRoot(declaredBase []*Param) {
	root := b.root
	if root.Title == "" {
		b.findings.Errorf(issues.KindRoot, "title", "title", nil, "RAML File does not define an API title.")
	}
	if strings.Contains(b.rawBaseURI, "{"+versionToken+"}") && root.Version == "" {
		b.findings.Errorf(issues.KindRoot, "version", "version", nil, "RAML File does not define the baseUri version.")
	}
	if len(root.Resources) == 0 {
		b.findings.Errorf(issues.KindRoot, "", "resources", nil, "RAML File does not define any resources.")
	}
	for _, p := range declaredBase {
		if p.Name != versionToken && p.Default == nil {
			b.findings.Errorf(issues.KindRoot, issues.FormatPath("baseUriParameters", p.Name), "default", nil,
				"The 'default' parameter is not set for base URI parameter '%s'.", p.Name)
		}
	}
	for _, proto := range root.Protocols {
		if !b.cfg.AllowsProtocol(proto) {
			b.findings.Errorf(issues.KindRoot, "protocols", "protocols", proto,
				"'%s' not a valid protocol for a RAML-defined API.", proto)
		}
	}
	if root.MediaType != "" {
		b.checkMediaType(issues.KindRoot, "mediaType", "mediaType", root.MediaType)
	}
	for _, name := range root.SecuredBy {
		if name != nullScheme && root.SecurityScheme(name) == nil {
			b.findings.Errorf(issues.KindSecurity, "securedBy", "securedBy", name,
				"security scheme '%s' is assigned but not defined", name)
		}
	}
}

// fillAttributes resolves a from one node's own data (traits and security
// scheme descriptions).
func (b *builder) fillAttributes(a *Attributes, def *document.Map, name, where, method string) error {
	a.root = b.root
	a.Raw = def
	a.Description = scalarString(document.Get(def, "description", nil))
	a.DisplayName = document.GetString(def, "displayName", name)
	a.MediaType = scalarString(document.Get(def, "mediaType", nil))
	if a.MediaType == "" {
		a.MediaType = b.root.MediaType
	}
	a.Protocols = protocolList(document.Get(def, "protocols", nil))
	ctx := &resolutionContext{methodData: def}
	return b.fillStructural(a, ctx, where, method)
}

// fillStructural resolves the parameter, body and response attributes of a
// from ctx. URI parameters are left in declaration order.
func (b *builder) fillStructural(a *Attributes, ctx *resolutionContext, where, method string) error {
	var err error
	if a.Headers, err = b.params(HeaderParam, ctx.resolveStructural("headers"), where, method); err != nil {
		return err
	}
	if a.QueryParams, err = b.params(QueryParam, ctx.resolveStructural("queryParameters"), where, method); err != nil {
		return err
	}
	if a.FormParams, err = b.params(FormParam, ctx.resolveStructural("formParameters"), where, method); err != nil {
		return err
	}
	if a.URIParams, err = b.params(URIParam, ctx.resolveStructural("uriParameters"), where, method); err != nil {
		return err
	}
	if a.BaseURIParams, err = b.params(BaseURIParam, ctx.resolveStructural("baseUriParameters"), where, method); err != nil {
		return err
	}
	mediaType := a.MediaType
	if mediaType == "" {
		mediaType = b.root.MediaType
	}
	if a.Body, err = b.bodies(ctx.resolveStructural("body"), mediaType, where, method); err != nil {
		return err
	}
	if a.Responses, err = b.responses(ctx.resolveStructural("responses"), mediaType, where, method); err != nil {
		return err
	}
	return nil
}

// Security scheme types with required settings.
const (
	schemeOAuth1 = "OAuth 1.0"
	schemeOAuth2 = "OAuth 2.0"
)

var oauth1Settings = []string{"requestTokenUri", "authorizationUri", "tokenCredentialsUri"}

// buildSecuritySchemes constructs one SecuritySchemeNode per declared
// scheme and validates its type and settings.
func (b *builder) buildSecuritySchemes() error {
	var err error
	b.schemeDefs.Range(func(name string, v any) bool {
		def, _ := v.(*document.Map)
		where := issues.FormatPath("securitySchemes", name)
		node := &SecuritySchemeNode{
			Name:        name,
			Type:        scalarString(document.Get(def, "type", nil)),
			Settings:    document.GetMap(def, "settings"),
			DescribedBy: document.GetMap(def, "describedBy"),
		}
		if err = b.fillAttributes(&node.Attributes, node.DescribedBy, name, issues.FormatPath(where, "describedBy"), ""); err != nil {
			return false
		}
		node.Raw = def
		node.Description = scalarString(document.Get(def, "description", nil))
		node.DisplayName = document.GetString(def, "displayName", name)
		b.validateScheme(node, where)
		b.root.SecuritySchemes = append(b.root.SecuritySchemes, node)
		b.log.Debug("built security scheme", "name", name, "type", node.Type)
		return true
	})
	return err
}

func (b *builder) validateScheme(node *SecuritySchemeNode, where string) {
	switch {
	case node.Type == "":
		b.findings.Errorf(issues.KindSecurity, where, "type", nil, "security scheme '%s' does not define a type", node.Name)
		return
	case !b.cfg.AllowsAuthScheme(node.Type):
		b.findings.Errorf(issues.KindSecurity, where, "type", node.Type, "'%s' is not a valid Security Scheme type", node.Type)
		return
	}

	var required []string
	switch node.Type {
	case schemeOAuth1:
		required = oauth1Settings
	case schemeOAuth2:
		required = []string{"accessTokenUri", "authorizationGrants"}
		grants := stringList(document.Get(node.Settings, "authorizationGrants", nil))
		if slices.ContainsFunc(grants, needsAuthorizationURI) {
			required = append(required, "authorizationUri")
		}
	}
	for _, key := range required {
		if document.IsEmpty(document.Get(node.Settings, key, nil)) {
			b.findings.Errorf(issues.KindSecurity, issues.FormatPath(where, "settings"), key, nil,
				"%s security scheme '%s' requires the '%s' setting", node.Type, node.Name, key)
		}
	}
}

// needsAuthorizationURI reports whether an OAuth 2.0 grant redirects the
// user agent to the authorization server.
func needsAuthorizationURI(grant string) bool {
	switch grant {
	case "code", "token", "authorization_code", "implicit":
		return true
	}
	return false
}

// nullScheme marks anonymous access in securedBy.
const nullScheme = "null"

func scalarString(v any) string {
	if s, ok := document.AsString(v); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := scalarString(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

func protocolList(v any) []string {
	list := stringList(v)
	for i, p := range list {
		list[i] = strings.ToUpper(p)
	}
	return list
}

// securedByNames reads a securedBy value: names, null entries and
// {name: {parameters}} maps.
func securedByNames(v any) []string {
	items, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil
		}
		items = []any{v}
	}
	var out []string
	for _, item := range items {
		switch t := item.(type) {
		case nil:
			out = append(out, nullScheme)
		case *document.Map:
			out = append(out, t.Keys()...)
		default:
			if s := scalarString(t); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func toAnyList(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
