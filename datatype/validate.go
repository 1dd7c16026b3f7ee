package datatype

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/ramlerrors"
)

// intFormatBits maps integer formats to their width in bits.
var intFormatBits = map[string]uint{
	"int8":  8,
	"int16": 16,
	"int32": 32,
	"int":   32,
	"int64": 64,
	"long":  64,
}

// dateLayouts lists accepted layouts per date variant.
var dateLayouts = map[string][]string{
	"date-only":     {time.DateOnly},
	"time-only":     {"15:04:05.999999999", time.TimeOnly},
	"datetime-only": {"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"},
	"datetime":      {time.RFC3339Nano, time.RFC3339},
}

var rfc2616Layouts = []string{time.RFC1123, "Monday, 02-Jan-06 15:04:05 MST", time.ANSIC}

// Validate checks instance against dt. position prefixes error messages
// (e.g. "person"); nested properties and items extend it. The instance is
// checked against dt's own constraints before any nested value, and the
// first violation is returned as a *ramlerrors.DataTypeValidationError.
func Validate(dt DataType, instance any, position string) error {
	switch t := dt.(type) {
	case *Any:
		return nil
	case *Object:
		return validateObject(t, instance, position)
	case *Array:
		return validateArray(t, instance, position)
	case *String:
		return validateString(t, instance, position)
	case *Integer:
		return validateNumber(&t.Number, true, instance, position)
	case *Number:
		return validateNumber(t, false, instance, position)
	case *Boolean:
		if _, ok := instance.(bool); !ok {
			return violation(position, instance, "is not a boolean")
		}
		return checkEnum(&t.Common, instance, position)
	case *Date:
		return validateDate(t, instance, position)
	case *File:
		return validateFile(t, instance, position)
	case nil:
		return nil
	}
	return violation(position, instance, fmt.Sprintf("has unsupported type %T", dt))
}

func violation(position string, value any, reason string) error {
	return &ramlerrors.DataTypeValidationError{Position: position, Value: value, Reason: reason}
}

func join(position, name string) string {
	if position == "" {
		return name
	}
	return position + "." + name
}

// asObject accepts document maps and decoded JSON objects.
func asObject(v any) (*document.Map, bool) {
	switch t := v.(type) {
	case *document.Map:
		return t, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := document.NewMap()
		for _, k := range keys {
			m.Set(k, t[k])
		}
		return m, true
	}
	return nil, false
}

func validateObject(o *Object, instance any, position string) error {
	m, ok := asObject(instance)
	if !ok {
		return violation(position, instance, "is not an object")
	}

	if o.Discriminator != "" {
		target, err := o.registry.discriminate(o, m, position)
		if err != nil {
			return err
		}
		if target != DataType(o) {
			return Validate(target, m, position)
		}
	}

	if o.MinProperties >= 0 && m.Len() < o.MinProperties {
		return violation(position, m.Len(), fmt.Sprintf("properties are fewer than minProperties %d", o.MinProperties))
	}
	if o.MaxProperties >= 0 && m.Len() > o.MaxProperties {
		return violation(position, m.Len(), fmt.Sprintf("properties are more than maxProperties %d", o.MaxProperties))
	}
	for _, p := range o.Properties {
		if p.Required && !m.Has(p.Name) {
			return violation(position, p.Name, "should be specified")
		}
	}
	if !o.AdditionalProperties {
		for _, k := range m.Keys() {
			if o.Property(k) == nil {
				return violation(position, k, "is not a declared property")
			}
		}
	}

	for _, p := range o.Properties {
		v, present := m.Get(p.Name)
		if !present {
			if p.Default == nil {
				continue
			}
			v = p.Default
		}
		if err := Validate(p.Type, v, join(position, p.Name)); err != nil {
			return err
		}
	}
	return nil
}

func validateArray(a *Array, instance any, position string) error {
	list, ok := instance.([]any)
	if !ok {
		return violation(position, instance, "is not an array")
	}
	if a.MinItems >= 0 && len(list) < a.MinItems {
		return violation(position, len(list), fmt.Sprintf("items are fewer than minItems %d", a.MinItems))
	}
	if a.MaxItems >= 0 && len(list) > a.MaxItems {
		return violation(position, len(list), fmt.Sprintf("items are more than maxItems %d", a.MaxItems))
	}
	if a.UniqueItems {
		for i := range list {
			for j := i + 1; j < len(list); j++ {
				if reflect.DeepEqual(document.ToNative(list[i]), document.ToNative(list[j])) {
					return violation(fmt.Sprintf("%s[%d]", position, j), list[j], "duplicates an earlier item")
				}
			}
		}
	}
	for i, item := range list {
		if err := Validate(a.Items, item, fmt.Sprintf("%s[%d]", position, i)); err != nil {
			return err
		}
	}
	return nil
}

func validateString(s *String, instance any, position string) error {
	str, ok := instance.(string)
	if !ok {
		return violation(position, instance, "is not a string")
	}
	if s.Pattern != nil && !s.Pattern.MatchString(str) {
		return violation(position, str, fmt.Sprintf("does not match pattern %q", s.Pattern.String()))
	}
	n := utf8.RuneCountInString(str)
	if n < s.MinLength {
		return violation(position, str, fmt.Sprintf("is shorter than minLength %d", s.MinLength))
	}
	if n > s.MaxLength {
		return violation(position, str, fmt.Sprintf("is longer than maxLength %d", s.MaxLength))
	}
	return checkEnum(&s.Common, str, position)
}

func validateNumber(n *Number, integral bool, instance any, position string) error {
	if _, isBool := instance.(bool); isBool {
		return violation(position, instance, "is not a number")
	}
	f, ok := document.AsFloat(instance)
	if !ok {
		return violation(position, instance, "is not a number")
	}
	bits, intFormat := intFormatBits[n.Format]
	if integral || intFormat {
		i, ok := document.AsInt(instance)
		if !ok {
			return violation(position, instance, "is not an integer")
		}
		if intFormat && !fitsBits(i, bits) {
			return violation(position, instance, fmt.Sprintf("does not fit in %s", n.Format))
		}
	}
	if n.Minimum != nil && f < *n.Minimum {
		return violation(position, instance, fmt.Sprintf("is less than minimum %v", *n.Minimum))
	}
	if n.Maximum != nil && f > *n.Maximum {
		return violation(position, instance, fmt.Sprintf("is greater than maximum %v", *n.Maximum))
	}
	if n.MultipleOf != nil && *n.MultipleOf != 0 {
		i, ok := document.AsInt(instance)
		if !ok {
			return violation(position, instance, "must be an integer to check multipleOf")
		}
		if math.Mod(float64(i), *n.MultipleOf) != 0 {
			return violation(position, instance, fmt.Sprintf("is not a multiple of %v", *n.MultipleOf))
		}
	}
	return checkEnum(&n.Common, instance, position)
}

// fitsBits reports whether v is representable as a signed two's-complement
// integer of the given width.
func fitsBits(v int64, bits uint) bool {
	if bits >= 64 {
		return true
	}
	limit := int64(1) << (bits - 1)
	return v >= -limit && v < limit
}

func validateDate(d *Date, instance any, position string) error {
	if _, ok := instance.(time.Time); ok && d.Variant != "time-only" {
		return checkEnum(&d.Common, instance, position)
	}
	str, ok := instance.(string)
	if !ok {
		return violation(position, instance, "is not a "+d.Variant+" string")
	}
	var layouts []string
	switch {
	case d.Variant == "datetime" && d.Format == "rfc2616":
		layouts = rfc2616Layouts
	case d.Variant == "date":
		for _, v := range []string{"date-only", "datetime", "datetime-only", "time-only"} {
			layouts = append(layouts, dateLayouts[v]...)
		}
		layouts = append(layouts, rfc2616Layouts...)
	default:
		layouts = dateLayouts[d.Variant]
	}
	for _, layout := range layouts {
		if _, err := time.Parse(layout, str); err == nil {
			return checkEnum(&d.Common, str, position)
		}
	}
	return violation(position, str, "is not a valid "+d.Variant)
}

func validateFile(f *File, instance any, position string) error {
	var n int
	switch t := instance.(type) {
	case string:
		n = len(t)
	case []byte:
		n = len(t)
	default:
		return violation(position, instance, "is not file content")
	}
	if n < f.MinLength {
		return violation(position, n, fmt.Sprintf("bytes are fewer than minLength %d", f.MinLength))
	}
	if n > f.MaxLength {
		return violation(position, n, fmt.Sprintf("bytes are more than maxLength %d", f.MaxLength))
	}
	return nil
}

// checkEnum runs after the kind-specific checks.
func checkEnum(c *Common, value any, position string) error {
	if len(c.Enum) == 0 {
		return nil
	}
	if slices.ContainsFunc(c.Enum, func(e any) bool { return sameScalar(e, value) }) {
		return nil
	}
	return violation(position, value, fmt.Sprintf("is not one of %v", c.Enum))
}

// sameScalar compares scalars, treating every numeric representation of
// one value as equal.
func sameScalar(a, b any) bool {
	fa, okA := document.AsFloat(a)
	fb, okB := document.AsFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

// Discriminate returns the type an instance of dt represents. For an object
// type with a discriminator, the instance's discriminator property must
// name dt itself or one of its registered subtypes (directly or
// transitively); other types are returned unchanged.
func (r *Registry) Discriminate(dt DataType, instance any) (DataType, error) {
	obj, ok := dt.(*Object)
	if !ok || obj.Discriminator == "" {
		return dt, nil
	}
	m, ok := asObject(instance)
	if !ok {
		return nil, violation(obj.Name, instance, "is not an object")
	}
	return r.discriminate(obj, m, obj.Name)
}

func (r *Registry) discriminate(obj *Object, m *document.Map, position string) (DataType, error) {
	raw, present := m.Get(obj.Discriminator)
	if !present {
		return nil, violation(position, obj.Discriminator, "should be specified")
	}
	value, _ := document.AsString(raw)

	for _, candidate := range r.family(obj) {
		if co, ok := candidate.(*Object); ok && co.DiscriminatorValue == value {
			return candidate, nil
		}
	}
	return nil, violation(join(position, obj.Discriminator), raw,
		fmt.Sprintf("does not name %s or one of its subtypes", obj.Name))
}

// family returns dt followed by its transitive subtypes, breadth first.
func (r *Registry) family(dt *Object) []DataType {
	out := []DataType{dt}
	if r == nil || dt.Name == "" {
		return out
	}
	queue := []string{dt.Name}
	seen := map[string]bool{dt.Name: true}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, sub := range r.subtypes[name] {
			if seen[sub] {
				continue
			}
			seen[sub] = true
			if t, ok := r.types[sub]; ok {
				out = append(out, t)
			}
			queue = append(queue, sub)
		}
	}
	return out
}
