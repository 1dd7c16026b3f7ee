// Package document models a loaded RAML document: an ordered tree of
// *Map, []any and scalar values tagged with the RAML version and fragment
// kind from the "#%RAML" header line.
//
// Documents are produced by the loader package and are treated as
// immutable; the resolver clones before merging.
package document

// Fragment identifies the kind of RAML document.
type Fragment string

const (
	// FragmentRoot is a full API definition.
	FragmentRoot Fragment = "Root"
	// FragmentDataType is a standalone type declaration.
	FragmentDataType Fragment = "DataType"
	// FragmentLibrary bundles reusable declarations.
	FragmentLibrary Fragment = "Library"
	// FragmentExtension extends an API definition.
	FragmentExtension Fragment = "Extension"
	// FragmentOverlay overlays an API definition.
	FragmentOverlay Fragment = "Overlay"
	// FragmentAnnotationType declares one annotation type.
	FragmentAnnotationType Fragment = "AnnotationTypeDeclaration"
	// FragmentTrait declares one trait.
	FragmentTrait Fragment = "Trait"
	// FragmentResourceType declares one resource type.
	FragmentResourceType Fragment = "ResourceType"
	// FragmentSecurityScheme declares one security scheme.
	FragmentSecurityScheme Fragment = "SecurityScheme"
	// FragmentDocumentationItem declares one documentation entry.
	FragmentDocumentationItem Fragment = "DocumentationItem"
	// FragmentNamedExample declares named examples.
	FragmentNamedExample Fragment = "NamedExample"
)

var knownFragments = map[Fragment]bool{
	FragmentRoot: true, FragmentDataType: true, FragmentLibrary: true,
	FragmentExtension: true, FragmentOverlay: true, FragmentAnnotationType: true,
	FragmentTrait: true, FragmentResourceType: true, FragmentSecurityScheme: true,
	FragmentDocumentationItem: true, FragmentNamedExample: true,
}

// ParseFragment maps a header fragment name to a Fragment. An empty name is
// a Root document.
func ParseFragment(name string) (Fragment, bool) {
	if name == "" {
		return FragmentRoot, true
	}
	f := Fragment(name)
	return f, knownFragments[f]
}

// Document is the loader's output.
type Document struct {
	// Version is the RAML version from the header ("0.8", "1.0")
	Version string
	// Fragment is the document kind from the header
	Fragment Fragment
	// Root is the top-level mapping (nil when the document is not a map)
	Root *Map
	// SourcePath is the file the document was read from, if any
	SourcePath string
}

// New wraps root as a Root fragment of the given version.
func New(version string, root *Map) *Document {
	if root == nil {
		root = NewMap()
	}
	return &Document{Version: version, Fragment: FragmentRoot, Root: root}
}
