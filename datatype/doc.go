// Package datatype implements the RAML 1.0 data type system: a per-document
// Registry of named types, construction of types from their declarations
// (including nominal inheritance with structural merging of the base
// declaration), and validation of instances against a type.
//
// # Registry
//
// Every document gets its own Registry, seeded with the built-in kinds.
// Declaring a types section registers each name; bases are resolved lazily
// so a type may refer to one declared later in the same section:
//
//	reg := datatype.NewRegistry()
//	if err := reg.Declare(types); err != nil {
//	    // *ramlerrors.TypeExpressionError
//	}
//	person, _ := reg.Lookup("Person")
//	err := datatype.Validate(person, instance, "person")
//
// # Variants
//
// DataType is a closed set: *Any, *Object, *Array, *String, *Number,
// *Integer, *Boolean, *Date and *File. Each embeds Common for the facets all
// kinds share. Validate dispatches on the concrete variant and stops at the
// first violation, returning a *ramlerrors.DataTypeValidationError.
package datatype
