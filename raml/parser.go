// Package raml resolves a loaded RAML document into a typed object graph.
//
// The resolver builds the RootNode top-down: root attributes, security
// schemes, traits and resource types first, then the resource tree depth
// first, so every node's parent is complete before the node is built. Each
// attribute of a resource is resolved from an ordered list of sources
// (method, resource, resource type, traits, parent, root). Scalars take the
// first non-empty source; parameters, bodies and responses are deep-merged
// with the resource's own data winning.
//
// Two error channels are used. Problems that leave nothing meaningful to
// resolve (unreadable input, unsupported version, unknown type expression,
// unknown template transform) are returned immediately. Structural
// problems are collected as Findings shared by every node of the document;
// in validate mode they are returned together as a
// *ramlerrors.InvalidDocumentError after the full parse.
package raml

import (
	"github.com/erraggy/ramltools/config"
	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/ramlerrors"
)

// Parser resolves loaded RAML documents.
type Parser struct {
	// Config holds the allow-lists and the validate mode
	// If nil, config.Default() is used
	Config *config.Config
	// Logger is the structured logger for debug output
	// If nil, logging is disabled (default)
	Logger Logger
}

// New creates a new Parser instance with default settings
func New() *Parser {
	return &Parser{Config: config.Default()}
}

// log returns the configured logger, or a no-op logger if none is set.
func (p *Parser) log() Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return NopLogger{}
}

func (p *Parser) config() *config.Config {
	if p.Config != nil {
		return p.Config
	}
	return config.Default()
}

// checkVersion rejects versions outside the configured allow-list.
func (p *Parser) checkVersion(doc *document.Document) error {
	cfg := p.config()
	if !cfg.SupportsVersion(doc.Version) {
		return &ramlerrors.VersionError{Version: doc.Version, Supported: cfg.RAMLVersions}
	}
	return nil
}

// Parse resolves a Root document. Fatal problems are returned with a nil
// RootNode. When the configuration's Validate flag is set and findings were
// collected, the fully built RootNode is returned together with a
// *ramlerrors.InvalidDocumentError.
func (p *Parser) Parse(doc *document.Document) (*RootNode, error) {
	if doc == nil {
		return nil, &ramlerrors.LoadError{Message: "no document"}
	}
	if doc.Fragment != "" && doc.Fragment != document.FragmentRoot {
		return nil, &ramlerrors.FragmentError{Fragment: string(doc.Fragment), Expected: string(document.FragmentRoot)}
	}
	if err := p.checkVersion(doc); err != nil {
		return nil, err
	}

	cfg := p.config()
	log := p.log().With("source", doc.SourcePath)
	root, err := newBuilder(cfg, log, doc).build()
	if err != nil {
		return nil, err
	}
	root.SourcePath = doc.SourcePath

	if cfg.Validate {
		if errs := root.findings.Errors(); len(errs) > 0 {
			return root, &ramlerrors.InvalidDocumentError{Source: doc.SourcePath, Errors: errs}
		}
	}
	return root, nil
}

// ParseDataType resolves a standalone DataType fragment.
func (p *Parser) ParseDataType(doc *document.Document) (datatype.DataType, error) {
	if doc == nil {
		return nil, &ramlerrors.LoadError{Message: "no document"}
	}
	if doc.Fragment != document.FragmentDataType {
		return nil, &ramlerrors.FragmentError{Fragment: string(doc.Fragment), Expected: string(document.FragmentDataType)}
	}
	if err := p.checkVersion(doc); err != nil {
		return nil, err
	}
	dt, err := datatype.NewRegistry().Create("", doc.Root)
	if err != nil {
		return nil, err
	}
	p.log().Debug("resolved data type fragment", "source", doc.SourcePath, "kind", dt.Kind().String())
	return dt, nil
}

// Errors returns every finding collected for the document, in discovery
// order.
func (r *RootNode) Errors() []Finding {
	return r.findings.Items()
}

// Err returns the collected findings as a *ramlerrors.InvalidDocumentError,
// or nil when there are none.
func (r *RootNode) Err() error {
	errs := r.findings.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &ramlerrors.InvalidDocumentError{Source: r.SourcePath, Errors: errs}
}
