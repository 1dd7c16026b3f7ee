package raml

import (
	"fmt"
	"io"
	"time"

	"github.com/erraggy/ramltools/config"
	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/internal/options"
	"github.com/erraggy/ramltools/loader"
	"github.com/erraggy/ramltools/ramlerrors"
)

// Option is a function that configures a parse operation
type Option func(*parseConfig) error

// parseConfig holds configuration for a parse operation
type parseConfig struct {
	// Input source (exactly one must be set)
	filePath *string
	reader   io.Reader
	bytes    []byte
	doc      *document.Document

	// Configuration options
	cfg        *config.Config
	configFile string
	validate   *bool
	baseDir    string
	logger     Logger
}

// ParseResult contains a parsed and resolved RAML document.
type ParseResult struct {
	// SourcePath is the file the document was read from, or "bytes.raml"
	// for in-memory input
	SourcePath string
	// Version is the RAML version from the header
	Version string
	// Fragment is the document kind from the header
	Fragment document.Fragment
	// Document is the loaded document tree
	Document *document.Document
	// Root is the resolved API definition (Root fragments only)
	Root *RootNode
	// DataType is the resolved type (DataType fragments only)
	DataType datatype.DataType
	// Stats summarises Root
	Stats DocumentStats
	// LoadTime is the time taken to load and resolve the document
	LoadTime time.Duration
}

// Findings returns the collected findings of a Root document.
func (r *ParseResult) Findings() []Finding {
	if r == nil || r.Root == nil {
		return nil
	}
	return r.Root.Errors()
}

// ParseWithOptions loads and resolves a RAML document using functional
// options. Root and DataType fragments are supported.
//
// Example:
//
//	result, err := raml.ParseWithOptions(
//	    raml.WithFilePath("api.raml"),
//	    raml.WithValidate(true),
//	)
func ParseWithOptions(opts ...Option) (*ParseResult, error) {
	pc, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("raml: invalid options: %w", err)
	}

	cfg := pc.cfg
	if cfg == nil {
		if cfg, err = config.Setup(pc.configFile); err != nil {
			return nil, err
		}
	}
	if pc.validate != nil {
		cp := *cfg
		cp.Validate = *pc.validate
		cfg = &cp
	}

	start := time.Now()
	doc := pc.doc
	if doc == nil {
		l := loader.New()
		l.Logger = pc.logger
		l.BaseDir = pc.baseDir
		switch {
		case pc.filePath != nil:
			doc, err = l.Load(*pc.filePath)
		case pc.reader != nil:
			doc, err = l.LoadReader(pc.reader)
		default:
			doc, err = l.LoadBytes(pc.bytes)
		}
		if err != nil {
			return nil, err
		}
	}

	source := doc.SourcePath
	if source == "" {
		source = "bytes.raml"
	}
	result := &ParseResult{
		SourcePath: source,
		Version:    doc.Version,
		Fragment:   doc.Fragment,
		Document:   doc,
	}

	p := &Parser{Config: cfg, Logger: pc.logger}
	switch doc.Fragment {
	case document.FragmentRoot, "":
		result.Root, err = p.Parse(doc)
		result.Stats = GetDocumentStats(result.Root)
	case document.FragmentDataType:
		result.DataType, err = p.ParseDataType(doc)
	default:
		err = &ramlerrors.FragmentError{Fragment: string(doc.Fragment), Expected: "Root or DataType"}
	}
	result.LoadTime = time.Since(start)
	if err != nil && result.Root == nil {
		return nil, err
	}
	return result, err
}

// applyOptions applies option functions and validates configuration
func applyOptions(opts ...Option) (*parseConfig, error) {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if _, err := options.SingleInputSource(
		options.Source{Option: "WithFilePath", Set: cfg.filePath != nil},
		options.Source{Option: "WithReader", Set: cfg.reader != nil},
		options.Source{Option: "WithBytes", Set: cfg.bytes != nil},
		options.Source{Option: "WithDocument", Set: cfg.doc != nil},
	); err != nil {
		return nil, err
	}
	if cfg.cfg != nil && cfg.configFile != "" {
		return nil, &ramlerrors.ConfigError{Option: "config", Message: "use either WithConfig or WithConfigFile"}
	}
	return cfg, nil
}

// WithFilePath specifies a file path as the input source
func WithFilePath(path string) Option {
	return func(cfg *parseConfig) error {
		cfg.filePath = &path
		return nil
	}
}

// WithReader specifies an io.Reader as the input source
func WithReader(r io.Reader) Option {
	return func(cfg *parseConfig) error {
		if r == nil {
			return &ramlerrors.ConfigError{Option: "reader", Message: "reader cannot be nil"}
		}
		cfg.reader = r
		return nil
	}
}

// WithBytes specifies a byte slice as the input source
func WithBytes(data []byte) Option {
	return func(cfg *parseConfig) error {
		if data == nil {
			return &ramlerrors.ConfigError{Option: "bytes", Message: "bytes cannot be nil"}
		}
		cfg.bytes = data
		return nil
	}
}

// WithDocument specifies an already loaded document as the input source
func WithDocument(doc *document.Document) Option {
	return func(cfg *parseConfig) error {
		if doc == nil {
			return &ramlerrors.ConfigError{Option: "document", Message: "document cannot be nil"}
		}
		cfg.doc = doc
		return nil
	}
}

// WithConfig sets the allow-lists and modes used for resolution.
// Default: config.Default()
func WithConfig(c *config.Config) Option {
	return func(cfg *parseConfig) error {
		cfg.cfg = c
		return nil
	}
}

// WithConfigFile loads the configuration with config.Setup.
func WithConfigFile(path string) Option {
	return func(cfg *parseConfig) error {
		cfg.configFile = path
		return nil
	}
}

// WithValidate overrides the configuration's Validate flag. When enabled,
// collected findings are returned as a *ramlerrors.InvalidDocumentError.
func WithValidate(enabled bool) Option {
	return func(cfg *parseConfig) error {
		cfg.validate = &enabled
		return nil
	}
}

// WithBaseDir sets the directory !include paths are resolved against for
// reader and byte input.
func WithBaseDir(dir string) Option {
	return func(cfg *parseConfig) error {
		cfg.baseDir = dir
		return nil
	}
}

// WithLogger sets a structured logger for debug output during loading and
// resolution.
func WithLogger(l Logger) Option {
	return func(cfg *parseConfig) error {
		cfg.logger = l
		return nil
	}
}
