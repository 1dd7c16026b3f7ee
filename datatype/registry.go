package datatype

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/ramlerrors"
)

// builtins maps the built-in type names to their kinds.
var builtins = map[string]Kind{
	"any":           KindAny,
	"object":        KindObject,
	"array":         KindArray,
	"string":        KindString,
	"number":        KindNumber,
	"integer":       KindInteger,
	"boolean":       KindBoolean,
	"date-only":     KindDate,
	"time-only":     KindDate,
	"datetime-only": KindDate,
	"datetime":      KindDate,
	"date":          KindDate,
	"file":          KindFile,
}

// ownFacets describe one declaration and are not inherited from a base.
var ownFacets = []string{"displayName", "discriminatorValue", "example", "examples"}

// IsBuiltin reports whether name is a built-in type.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Registry maps type names to resolved types for one document. A Registry
// is not safe for concurrent mutation; resolved types may be validated
// concurrently.
type Registry struct {
	decls     map[string]any
	types     map[string]DataType
	order     []string
	resolving map[string]bool
	subtypes  map[string][]string
	// pending fills references to types still under construction
	pending   map[string][]func(DataType)
}

// NewRegistry returns a registry holding only the built-in kinds.
func NewRegistry() *Registry {
	return &Registry{
		decls:     make(map[string]any),
		types:     make(map[string]DataType),
		resolving: make(map[string]bool),
		subtypes:  make(map[string][]string),
		pending:   make(map[string][]func(DataType)),
	}
}

// Declare registers every entry of a types section and resolves them in
// declaration order. A name may refer to any other name of the same
// section, or one declared earlier. The first unresolvable expression is
// returned as a *ramlerrors.TypeExpressionError.
func (r *Registry) Declare(types *document.Map) error {
	if types == nil {
		return nil
	}
	var names []string
	types.Range(func(name string, def any) bool {
		if _, seen := r.decls[name]; !seen {
			names = append(names, name)
		}
		r.decls[name] = def
		return true
	})
	for _, name := range names {
		if _, err := r.resolve(name); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the declared type called name. Built-in names are not
// returned; use Create with the name as the expression for those.
func (r *Registry) Lookup(name string) (DataType, bool) {
	if r == nil {
		return nil, false
	}
	dt, ok := r.types[name]
	return dt, ok
}

// Has reports whether name is a built-in or declared type.
func (r *Registry) Has(name string) bool {
	if IsBuiltin(name) {
		return true
	}
	if r == nil {
		return false
	}
	_, ok := r.decls[name]
	return ok
}

// Names returns declared type names in declaration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of declared types.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Subtypes returns the names of types declaring name as their base, in
// declaration order.
func (r *Registry) Subtypes(name string) []string {
	return append([]string(nil), r.subtypes[name]...)
}

// resolve constructs the declared type name, constructing its bases first.
func (r *Registry) resolve(name string) (DataType, error) {
	if dt, ok := r.types[name]; ok {
		return dt, nil
	}
	def, ok := r.decls[name]
	if !ok {
		return nil, &ramlerrors.TypeExpressionError{Expression: name}
	}
	if r.resolving[name] {
		// Only a base-type chain gets here; property and items references
		// to a type under construction are deferred.
		return nil, &ramlerrors.TypeExpressionError{Name: name, Expression: name, Message: "circular type reference"}
	}
	r.resolving[name] = true
	defer delete(r.resolving, name)

	dt, err := r.Create(name, def)
	if err != nil {
		return nil, err
	}
	r.types[name] = dt
	r.order = append(r.order, name)
	for _, fill := range r.pending[name] {
		fill(dt)
	}
	delete(r.pending, name)
	return dt, nil
}

// deferredRef returns the type name def refers to when that type is still
// being constructed. Only plain references qualify: a name, or a mapping
// holding nothing but "type" and "required".
func (r *Registry) deferredRef(def any) (string, bool) {
	var expr string
	switch d := def.(type) {
	case string:
		expr = d
	case *document.Map:
		for _, key := range d.Keys() {
			if key != "type" && key != "required" {
				return "", false
			}
		}
		expr = document.GetString(d, "type", "")
	default:
		return "", false
	}
	expr = strings.TrimSpace(expr)
	return expr, r.resolving[expr]
}

// later calls fill with the type called name once it is constructed.
func (r *Registry) later(name string, fill func(DataType)) {
	r.pending[name] = append(r.pending[name], fill)
}

// Create constructs a type from a declaration. def may be a type
// expression string, a declaration map, or nil (a string type). Named
// types that are not yet registered are not added to the registry; use
// Declare for that.
func (r *Registry) Create(name string, def any) (DataType, error) {
	decl, err := normalize(def)
	if err != nil {
		return nil, &ramlerrors.TypeExpressionError{Name: name, Expression: document.Describe(def), Message: err.Error()}
	}
	expr := strings.TrimSpace(document.GetString(decl, "type", ""))
	if expr == "" {
		expr = defaultTypeExpression(decl)
	}

	switch {
	case strings.ContainsAny(expr, "|()"):
		return nil, &ramlerrors.TypeExpressionError{Name: name, Expression: expr, Message: "union and grouped expressions are not supported"}
	case strings.HasSuffix(expr, "[]"):
		decl = decl.Clone()
		decl.Set("type", "array")
		decl.Set("items", strings.TrimSpace(strings.TrimSuffix(expr, "[]")))
		return r.build(name, expr, KindArray, "array", decl)
	}

	if kind, ok := builtins[expr]; ok {
		return r.build(name, expr, kind, expr, decl)
	}
	if _, declared := r.decls[expr]; !declared {
		return nil, &ramlerrors.TypeExpressionError{Name: name, Expression: expr}
	}
	base, err := r.resolve(expr)
	if err != nil {
		return nil, err
	}
	merged := document.Merge(decl, base.Info().Raw, document.MergeOptions{})
	for _, own := range ownFacets {
		if !decl.Has(own) {
			merged.Delete(own)
		}
	}
	if name != "" && !slices.Contains(r.subtypes[expr], name) {
		r.subtypes[expr] = append(r.subtypes[expr], name)
	}
	return r.build(name, expr, base.Kind(), builtinName(base), merged)
}

// normalize turns the accepted declaration shapes into a map.
func normalize(def any) (*document.Map, error) {
	switch d := def.(type) {
	case nil:
		return document.NewMap(), nil
	case string:
		return document.MapOf("type", d), nil
	case *document.Map:
		return d, nil
	default:
		return nil, fmt.Errorf("declaration must be a type name or a mapping, got %s", document.Describe(def))
	}
}

// defaultTypeExpression infers the base for a declaration without "type".
func defaultTypeExpression(decl *document.Map) string {
	switch {
	case decl.Has("properties"):
		return "object"
	case decl.Has("items"):
		return "array"
	default:
		return "string"
	}
}

// builtinName returns the built-in name at the root of dt's ancestry.
func builtinName(dt DataType) string {
	switch t := dt.(type) {
	case *Date:
		return t.Variant
	default:
		return dt.Kind().String()
	}
}

// build constructs the variant for kind from the merged declaration.
func (r *Registry) build(name, expr string, kind Kind, builtin string, decl *document.Map) (DataType, error) {
	c := Common{
		Name:        name,
		DisplayName: document.GetString(decl, "displayName", name),
		Description: document.GetString(decl, "description", ""),
		TypeName:    expr,
		Enum:        document.GetList(decl, "enum"),
		Default:     document.Get(decl, "default", nil),
		Example:     document.Get(decl, "example", nil),
		Examples:    document.GetMap(decl, "examples"),
		Raw:         decl,
		registry:    r,
	}

	switch kind {
	case KindAny:
		return &Any{Common: c}, nil
	case KindObject:
		return r.buildObject(c, decl)
	case KindArray:
		return r.buildArray(c, decl)
	case KindString:
		return buildString(c, decl)
	case KindNumber:
		return buildNumber(c, decl), nil
	case KindInteger:
		return &Integer{Number: *buildNumber(c, decl)}, nil
	case KindBoolean:
		return &Boolean{Common: c}, nil
	case KindDate:
		return &Date{Common: c, Variant: builtin, Format: document.GetString(decl, "format", "rfc3339")}, nil
	case KindFile:
		return &File{
			Common:    c,
			FileTypes: stringList(document.GetList(decl, "fileTypes")),
			MinLength: intFacet(decl, "minLength", 0),
			MaxLength: intFacet(decl, "maxLength", math.MaxInt),
		}, nil
	}
	return nil, &ramlerrors.TypeExpressionError{Name: name, Expression: expr}
}

func (r *Registry) buildObject(c Common, decl *document.Map) (*Object, error) {
	obj := &Object{
		Common:               c,
		MinProperties:        intFacet(decl, "minProperties", -1),
		MaxProperties:        intFacet(decl, "maxProperties", -1),
		AdditionalProperties: document.GetBool(decl, "additionalProperties", true),
		Discriminator:        document.GetString(decl, "discriminator", ""),
		DiscriminatorValue:   document.GetString(decl, "discriminatorValue", c.Name),
	}
	props := document.GetMap(decl, "properties")
	var err error
	props.Range(func(key string, def any) bool {
		pname, required := key, true
		if strings.HasSuffix(key, "?") {
			pname, required = strings.TrimSuffix(key, "?"), false
		}
		if obj.Property(pname) != nil {
			return true
		}
		if m, ok := def.(*document.Map); ok {
			required = document.GetBool(m, "required", required)
		}
		if ref, deferred := r.deferredRef(def); deferred {
			p := &Property{Name: pname, Required: required}
			r.later(ref, func(dt DataType) {
				p.Type = dt
				p.Default = dt.Info().Default
			})
			obj.Properties = append(obj.Properties, p)
			return true
		}
		var pt DataType
		pt, err = r.Create("", def)
		if err != nil {
			return false
		}
		obj.Properties = append(obj.Properties, &Property{
			Name:     pname,
			Required: required,
			Default:  pt.Info().Default,
			Type:     pt,
		})
		return true
	})
	if err != nil {
		return nil, withName(err, c.Name)
	}
	return obj, nil
}

func (r *Registry) buildArray(c Common, decl *document.Map) (*Array, error) {
	arr := &Array{
		Common:      c,
		UniqueItems: document.GetBool(decl, "uniqueItems", false),
		MinItems:    intFacet(decl, "minItems", -1),
		MaxItems:    intFacet(decl, "maxItems", -1),
	}
	items, ok := decl.Get("items")
	if !ok || items == nil {
		arr.Items = &Any{Common: Common{TypeName: "any", registry: r}}
		return arr, nil
	}
	if ref, deferred := r.deferredRef(items); deferred {
		r.later(ref, func(dt DataType) { arr.Items = dt })
		return arr, nil
	}
	it, err := r.Create("", items)
	if err != nil {
		return nil, withName(err, c.Name)
	}
	arr.Items = it
	return arr, nil
}

func buildString(c Common, decl *document.Map) (*String, error) {
	s := &String{
		Common:    c,
		MinLength: intFacet(decl, "minLength", 0),
		MaxLength: intFacet(decl, "maxLength", math.MaxInt),
	}
	if p := document.GetString(decl, "pattern", ""); p != "" {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &ramlerrors.TypeExpressionError{Name: c.Name, Expression: p, Message: "invalid pattern: " + err.Error()}
		}
		s.Pattern = re
	}
	return s, nil
}

func buildNumber(c Common, decl *document.Map) *Number {
	return &Number{
		Common:     c,
		Format:     document.GetString(decl, "format", ""),
		Minimum:    floatFacet(decl, "minimum"),
		Maximum:    floatFacet(decl, "maximum"),
		MultipleOf: floatFacet(decl, "multipleOf"),
	}
}

// withName attributes an inline-type error to the enclosing named type.
func withName(err error, name string) error {
	if te, ok := err.(*ramlerrors.TypeExpressionError); ok && te.Name == "" && name != "" {
		cp := *te
		cp.Name = name
		return &cp
	}
	return err
}

func intFacet(decl *document.Map, key string, def int) int {
	v, ok := decl.Get(key)
	if !ok {
		return def
	}
	n, ok := document.AsInt(v)
	if !ok {
		return def
	}
	return int(n)
}

func floatFacet(decl *document.Map, key string) *float64 {
	v, ok := decl.Get(key)
	if !ok {
		return nil
	}
	f, ok := document.AsFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func stringList(list []any) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := document.AsString(v); ok {
			out = append(out, s)
		}
	}
	return out
}
