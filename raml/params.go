package raml

import (
	"slices"
	"sort"
	"strings"

	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/internal/httputil"
	"github.com/erraggy/ramltools/internal/issues"
)

// ParamKind identifies where a named parameter is carried.
type ParamKind int

const (
	URIParam ParamKind = iota
	BaseURIParam
	QueryParam
	FormParam
	HeaderParam
)

var paramKindKeys = [...]string{
	URIParam:     "uriParameters",
	BaseURIParam: "baseUriParameters",
	QueryParam:   "queryParameters",
	FormParam:    "formParameters",
	HeaderParam:  "headers",
}

// String returns the RAML attribute that declares parameters of the kind.
func (k ParamKind) String() string {
	if k < 0 || int(k) >= len(paramKindKeys) {
		return "parameters"
	}
	return paramKindKeys[k]
}

// RequiredByDefault reports the default of the required facet: true for
// URI and base URI parameters, false for every other kind.
func (k ParamKind) RequiredByDefault() bool {
	return k == URIParam || k == BaseURIParam
}

// Param is a named URI, base URI, query, form or header parameter.
type Param struct {
	Kind        ParamKind
	Name        string
	DisplayName string
	Description string
	// Type is the declared type (default "string")
	Type    string
	Default any
	Example any
	Enum    []any
	// MinLength, MaxLength, Minimum and Maximum are nil when unset
	MinLength *int
	MaxLength *int
	Minimum   *float64
	Maximum   *float64
	Pattern   string
	Repeat    bool
	Required  bool
	// Method is the owning HTTP method (headers only)
	Method string
	// DataType is the resolved type (RAML 1.0)
	DataType datatype.DataType
	// Raw is the declaration
	Raw *document.Map
}

// Body is one request or response body.
type Body struct {
	MimeType string
	// Schema is the schema payload, with named schemas resolved
	Schema any
	// Example is the declared example payload
	Example any
	// FormParams are required for, and only legal in, form-encoded bodies
	FormParams []*Param
	// DataType is the resolved body type (RAML 1.0)
	DataType datatype.DataType
	Raw      *document.Map
}

// Response is one response of a method.
type Response struct {
	// Code is the numeric status code (0 when the key is not a code)
	Code int
	// RawCode is the key as written
	RawCode     string
	Description string
	Headers     []*Param
	Body        []*Body
	Method      string
	Raw         *document.Map
}

var (
	stringFacets  = []string{"pattern", "minLength", "maxLength"}
	numericFacets = []string{"minimum", "maximum"}
)

// params builds one Param per entry of raw, in order.
func (b *builder) params(kind ParamKind, raw *document.Map, path, method string) ([]*Param, error) {
	if raw.Len() == 0 {
		return nil, nil
	}
	out := make([]*Param, 0, raw.Len())
	var err error
	raw.Range(func(key string, v any) bool {
		var p *Param
		if p, err = b.param(kind, key, v, path, method); err != nil {
			return false
		}
		out = append(out, p)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// param builds one named parameter with its kind's defaults.
func (b *builder) param(kind ParamKind, key string, v any, path, method string) (*Param, error) {
	def := paramDeclaration(v)
	name, required := key, kind.RequiredByDefault()
	if b.is10() && strings.HasSuffix(key, "?") {
		name, required = strings.TrimSuffix(key, "?"), false
	}

	p := &Param{
		Kind:        kind,
		Name:        name,
		DisplayName: document.GetString(def, "displayName", name),
		Description: document.GetString(def, "description", ""),
		Type:        document.GetString(def, "type", "string"),
		Default:     document.Get(def, "default", nil),
		Example:     document.Get(def, "example", nil),
		Enum:        document.GetList(def, "enum"),
		MinLength:   intPtr(def, "minLength"),
		MaxLength:   intPtr(def, "maxLength"),
		Minimum:     floatPtr(def, "minimum"),
		Maximum:     floatPtr(def, "maximum"),
		Pattern:     document.GetString(def, "pattern", ""),
		Repeat:      document.GetBool(def, "repeat", false),
		Required:    document.GetBool(def, "required", required),
		Raw:         def,
	}
	if kind == HeaderParam {
		p.Method = method
	}

	where := issues.FormatPath(path, method, kind.String(), name)
	effective := p.Type
	switch {
	case templatedDeclaration(def):
		return p, nil
	case b.is10():
		dt, err := b.registry.Create("", def)
		if err != nil {
			return nil, err
		}
		p.DataType = dt
		effective = dt.Kind().String()
	case !b.cfg.AllowsPrimitiveType(p.Type):
		b.findings.Errorf(issues.KindParameter, where, "type", p.Type,
			"'%s' is not a valid primitive parameter type", p.Type)
	}

	if effective != "string" {
		for _, facet := range stringFacets {
			if def.Has(facet) {
				b.findings.Errorf(issues.KindParameter, where, facet, document.Get(def, facet, nil),
					"'%s' is only valid for string parameters, not %s", facet, effective)
			}
		}
	}
	if effective != "number" && effective != "integer" {
		for _, facet := range numericFacets {
			if def.Has(facet) {
				b.findings.Errorf(issues.KindParameter, where, facet, document.Get(def, facet, nil),
					"'%s' is only valid for number or integer parameters, not %s", facet, effective)
			}
		}
	}
	return p, nil
}

// paramDeclaration normalises a parameter value. RAML 0.8 allows a list of
// alternative declarations; the first is used. A bare type name is
// shorthand for {type: name}.
func paramDeclaration(v any) *document.Map {
	switch t := v.(type) {
	case *document.Map:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(*document.Map); ok {
				return m
			}
		}
	case string:
		return document.MapOf("type", t)
	}
	return document.NewMap()
}

// bodies builds one Body per media type. A body map without media type
// keys is a single body of the default media type.
func (b *builder) bodies(raw *document.Map, mediaType, path, method string) ([]*Body, error) {
	if raw.Len() == 0 {
		return nil, nil
	}
	keyed := slices.ContainsFunc(raw.Keys(), func(k string) bool { return strings.Contains(k, "/") })
	if !keyed {
		where := issues.FormatPath(path, method, "body")
		if mediaType == "" {
			b.findings.Errorf(issues.KindParameter, where, "mediaType", nil,
				"body does not declare a media type and no default mediaType is set")
		}
		body, err := b.body(mediaType, raw, where)
		if err != nil {
			return nil, err
		}
		return []*Body{body}, nil
	}

	var out []*Body
	var err error
	raw.Range(func(mime string, v any) bool {
		def, _ := v.(*document.Map)
		var body *Body
		if body, err = b.body(mime, def, issues.FormatPath(path, method, "body", mime)); err != nil {
			return false
		}
		out = append(out, body)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// checkMediaType reports a malformed media type, or a well-formed one
// that is not in the allow-list.
func (b *builder) checkMediaType(kind issues.Kind, where, field, mt string) {
	switch {
	case !httputil.IsValidMediaType(mt):
		b.findings.Errorf(kind, where, field, mt, "Invalid MIME Type '%s'.", mt)
	case !b.cfg.AllowsMediaType(mt):
		b.findings.Errorf(kind, where, field, mt, "Unsupported MIME Type '%s'.", mt)
	}
}

func (b *builder) body(mime string, def *document.Map, where string) (*Body, error) {
	body := &Body{
		MimeType: mime,
		Schema:   b.schema(document.Get(def, "schema", nil)),
		Example:  document.Get(def, "example", nil),
		Raw:      def,
	}
	if mime != "" && !isTemplated(mime) {
		b.checkMediaType(issues.KindParameter, where, "mimeType", mime)
	}

	formParams, err := b.params(FormParam, document.GetMap(def, "formParameters"), where, "")
	if err != nil {
		return nil, err
	}
	body.FormParams = formParams

	if httputil.IsFormMediaType(mime) {
		typed := b.is10() && (def.Has("type") || def.Has("properties"))
		if !def.Has("formParameters") && !typed {
			b.findings.Errorf(issues.KindParameter, where, "formParameters", nil,
				"Form-encoded body '%s' must define formParameters", mime)
		}
		for _, key := range []string{"schema", "example"} {
			if def.Has(key) && !(b.is10() && key == "example") {
				b.findings.Errorf(issues.KindParameter, where, key, nil,
					"Form-encoded body '%s' must not define %s", mime, key)
			}
		}
	} else if def.Has("formParameters") {
		b.findings.Errorf(issues.KindParameter, where, "formParameters", nil,
			"formParameters are only valid for form-encoded bodies, not '%s'", mime)
	}

	if b.is10() {
		dt, err := b.bodyType(def)
		if err != nil {
			return nil, err
		}
		body.DataType = dt
	}
	return body, nil
}

// bodyType resolves the 1.0 data type of a body declaration. Inline JSON
// or XML schemas are not data types.
func (b *builder) bodyType(def *document.Map) (datatype.DataType, error) {
	expr := document.GetString(def, "type", "")
	if expr == "" {
		if s := document.GetString(def, "schema", ""); s != "" && b.registry.Has(s) {
			expr = s
		}
	}
	if expr == "" && !def.Has("properties") {
		return nil, nil
	}
	if looksLikeSchema(expr) || isTemplated(expr) || templatedDeclaration(def) {
		return nil, nil
	}
	decl := def.Filter(func(k string, _ any) bool { return k != "schema" && k != "formParameters" })
	if expr != "" {
		decl.Set("type", expr)
	}
	return b.registry.Create("", decl)
}

// isTemplated reports whether s still holds a <<parameter>> placeholder.
func isTemplated(s string) bool {
	return strings.Contains(s, "<<")
}

// templatedDeclaration reports whether any string in def still holds a
// placeholder.
func templatedDeclaration(v any) bool {
	switch t := v.(type) {
	case string:
		return isTemplated(t)
	case *document.Map:
		found := false
		t.Range(func(k string, val any) bool {
			found = isTemplated(k) || templatedDeclaration(val)
			return !found
		})
		return found
	case []any:
		return slices.ContainsFunc(t, templatedDeclaration)
	}
	return false
}

func looksLikeSchema(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "<")
}

// schema resolves a schema reference to the root's named schema content.
func (b *builder) schema(v any) any {
	name, ok := v.(string)
	if !ok || b.root.Schemas == nil {
		return v
	}
	if content, found := b.root.Schemas.Get(strings.TrimSpace(name)); found {
		return content
	}
	return v
}

// responses builds one Response per status code, sorted ascending.
func (b *builder) responses(raw *document.Map, mediaType, path, method string) ([]*Response, error) {
	if raw.Len() == 0 {
		return nil, nil
	}
	var out []*Response
	var err error
	raw.Range(func(key string, v any) bool {
		def, _ := v.(*document.Map)
		where := issues.FormatPath(path, method, "responses", key)
		resp := &Response{
			RawCode:     key,
			Description: document.GetString(def, "description", ""),
			Method:      method,
			Raw:         def,
		}
		code, ok := httputil.ParseStatusCode(key)
		switch {
		case isTemplated(key):
		case !ok:
			b.findings.Errorf(issues.KindParameter, where, "code", key, "'%s' not a valid HTTP response code", key)
		case !b.cfg.AllowsResponseCode(code):
			b.findings.Errorf(issues.KindParameter, where, "code", code, "'%d' not a valid HTTP response code", code)
			resp.Code = code
		default:
			resp.Code = code
		}
		if resp.Headers, err = b.params(HeaderParam, document.GetMap(def, "headers"), where, method); err != nil {
			return false
		}
		if resp.Body, err = b.bodies(document.GetMap(def, "body"), mediaType, where, ""); err != nil {
			return false
		}
		out = append(out, resp)
		return true
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func intPtr(def *document.Map, key string) *int {
	v, ok := def.Get(key)
	if !ok {
		return nil
	}
	n, ok := document.AsInt(v)
	if !ok {
		return nil
	}
	i := int(n)
	return &i
}

func floatPtr(def *document.Map, key string) *float64 {
	v, ok := def.Get(key)
	if !ok {
		return nil
	}
	f, ok := document.AsFloat(v)
	if !ok {
		return nil
	}
	return &f
}
