package datatype

import (
	"regexp"

	"github.com/erraggy/ramltools/document"
)

// Kind identifies a DataType variant.
type Kind int

const (
	KindAny Kind = iota
	KindObject
	KindArray
	KindString
	KindNumber
	KindInteger
	KindBoolean
	KindDate
	KindFile
)

var kindNames = [...]string{
	KindAny:     "any",
	KindObject:  "object",
	KindArray:   "array",
	KindString:  "string",
	KindNumber:  "number",
	KindInteger: "integer",
	KindBoolean: "boolean",
	KindDate:    "date",
	KindFile:    "file",
}

// String returns the RAML name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Scalar reports whether instances of the kind are scalar values.
func (k Kind) Scalar() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindDate, KindFile:
		return true
	}
	return false
}

// DataType is one resolved type. The set of implementations is closed.
type DataType interface {
	// Kind returns the variant tag.
	Kind() Kind
	// Info returns the facets shared by every kind.
	Info() *Common
	isDataType()
}

// Common holds the facets shared by every kind.
type Common struct {
	// Name is the declared name ("" for inline types)
	Name string
	// DisplayName defaults to Name
	DisplayName string
	// Description is the declared description
	Description string
	// TypeName is the declared base type expression (default "string")
	TypeName string
	// Enum restricts scalar instances to these values
	Enum []any
	// Default is the declared default value
	Default any
	// Example is the declared single example
	Example any
	// Examples holds named examples in declaration order
	Examples *document.Map
	// Raw is the declaration after merging every ancestor's declaration
	Raw *document.Map

	registry *Registry
}

// Info returns c.
func (c *Common) Info() *Common { return c }

// Registry returns the registry the type was constructed in.
func (c *Common) Registry() *Registry { return c.registry }

func (*Common) isDataType() {}

// Any accepts every instance.
type Any struct {
	Common
}

// Kind returns KindAny.
func (*Any) Kind() Kind { return KindAny }

// Property is one property of an object type.
type Property struct {
	// Name is the normalized property name (without a trailing "?")
	Name string
	// Required reports whether instances must carry the property
	Required bool
	// Default is used when an instance omits the property
	Default any
	// Type is the property's resolved type
	Type DataType
}

// Object is a map with named properties.
type Object struct {
	Common
	// Properties in declaration order
	Properties []*Property
	// MinProperties and MaxProperties bound the instance's key count (-1: unset)
	MinProperties int
	MaxProperties int
	// AdditionalProperties allows keys that are not declared properties
	AdditionalProperties bool
	// Discriminator names the property that selects a subtype
	Discriminator string
	// DiscriminatorValue identifies this type in the discriminator property
	DiscriminatorValue string
}

// Kind returns KindObject.
func (*Object) Kind() Kind { return KindObject }

// Property returns the property called name, or nil.
func (o *Object) Property(name string) *Property {
	for _, p := range o.Properties {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Array is a list of items of one type.
type Array struct {
	Common
	// Items is the element type (*Any when undeclared)
	Items DataType
	// UniqueItems rejects duplicate elements
	UniqueItems bool
	// MinItems and MaxItems bound the element count (-1: unset)
	MinItems int
	MaxItems int
}

// Kind returns KindArray.
func (*Array) Kind() Kind { return KindArray }

// String is a string with optional pattern and length bounds.
type String struct {
	Common
	// Pattern is the compiled pattern facet (nil: unset)
	Pattern *regexp.Regexp
	// MinLength defaults to 0
	MinLength int
	// MaxLength defaults to math.MaxInt
	MaxLength int
}

// Kind returns KindString.
func (*String) Kind() Kind { return KindString }

// Number is a numeric value.
type Number struct {
	Common
	// Format is the declared format (int8, int16, int32, int64, int, long,
	// float, double)
	Format string
	// Minimum and Maximum bound the value (nil: unset)
	Minimum *float64
	Maximum *float64
	// MultipleOf requires the value to be an exact multiple (nil: unset)
	MultipleOf *float64
}

// Kind returns KindNumber.
func (*Number) Kind() Kind { return KindNumber }

// Integer is a Number restricted to integral values.
type Integer struct {
	Number
}

// Kind returns KindInteger.
func (*Integer) Kind() Kind { return KindInteger }

// Boolean is true or false.
type Boolean struct {
	Common
}

// Kind returns KindBoolean.
func (*Boolean) Kind() Kind { return KindBoolean }

// Date is one of the date and time kinds.
type Date struct {
	Common
	// Variant is the built-in name: date-only, time-only, datetime-only,
	// datetime, or date
	Variant string
	// Format is the datetime format: rfc3339 (default) or rfc2616
	Format string
}

// Kind returns KindDate.
func (*Date) Kind() Kind { return KindDate }

// File is file content, validated by length only.
type File struct {
	Common
	// FileTypes lists accepted media types
	FileTypes []string
	// MinLength defaults to 0
	MinLength int
	// MaxLength defaults to math.MaxInt
	MaxLength int
}

// Kind returns KindFile.
func (*File) Kind() Kind { return KindFile }
