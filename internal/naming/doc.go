// Package naming provides case conversion and English inflection used by the
// <<parameter | !transform>> template functions of RAML traits and resource
// types.
//
// The transform registry is closed: Lookup returns false for any name not in
// Transforms, and callers treat that as a hard error.
package naming
