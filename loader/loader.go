// Package loader reads RAML text into a document.Document.
//
// It detects the "#%RAML <version> [<fragment>]" header, decodes the YAML
// body into an order-preserving tree and resolves !include tags against
// local files. The loader performs no RAML resolution; see package raml.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/ramlerrors"
)

const (
	// includeTag marks a scalar whose value is a path to splice in.
	includeTag = "!include"
	// timestampTag is the resolved tag of unquoted dates and times.
	timestampTag = "!!timestamp"

	// defaultMaxIncludeDepth bounds nested !include chains.
	defaultMaxIncludeDepth = 32
)

var headerPattern = regexp.MustCompile(`^#%RAML\s+(\d+\.\d+)(?:\s+(\S+))?\s*$`)

// Loader reads RAML documents.
type Loader struct {
	// BaseDir resolves relative !include paths when loading from bytes or a
	// reader. Load sets it to the file's directory.
	BaseDir string
	// RequireHeader rejects documents without a "#%RAML" first line.
	// Default: true
	RequireHeader bool
	// MaxIncludeDepth is the maximum nesting of !include chains.
	// Default: 32
	MaxIncludeDepth int
	// Logger is the structured logger for debug output
	// If nil, logging is disabled (default)
	Logger Logger
}

// New creates a new Loader instance with default settings
func New() *Loader {
	return &Loader{
		RequireHeader:   true,
		MaxIncludeDepth: defaultMaxIncludeDepth,
	}
}

// log returns the configured logger, or a no-op logger if none is set.
func (l *Loader) log() Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return NopLogger{}
}

// Load reads and decodes the RAML file at path.
func (l *Loader) Load(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ramlerrors.LoadError{Path: path, Message: "failed to read file", Cause: err}
	}
	saved := l.BaseDir
	l.BaseDir = filepath.Dir(path)
	defer func() { l.BaseDir = saved }()

	doc, err := l.decode(data, path)
	if err != nil {
		return nil, err
	}
	doc.SourcePath = path
	return doc, nil
}

// LoadReader reads and decodes RAML text from r.
func (l *Loader) LoadReader(r io.Reader) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ramlerrors.LoadError{Path: "reader", Message: "failed to read data", Cause: err}
	}
	return l.LoadBytes(data)
}

// LoadBytes decodes RAML text held in memory.
func (l *Loader) LoadBytes(data []byte) (*document.Document, error) {
	return l.decode(data, "bytes.raml")
}

// DecodeValue decodes a YAML or JSON value without a RAML header, such as
// an instance to check against a data type. Mappings become *document.Map.
func (l *Loader) DecodeValue(data []byte, source string) (any, error) {
	return l.decodeYAML(data, source, []string{absPath(source)})
}

// decode splits off the header and converts the YAML body.
func (l *Loader) decode(data []byte, source string) (*document.Document, error) {
	version, fragment, err := l.readHeader(data, source)
	if err != nil {
		return nil, err
	}

	value, err := l.decodeYAML(data, source, []string{absPath(source)})
	if err != nil {
		return nil, err
	}

	doc := &document.Document{Version: version, Fragment: fragment}
	switch v := value.(type) {
	case *document.Map:
		doc.Root = v
	case nil:
		doc.Root = document.NewMap()
	default:
		return nil, &ramlerrors.LoadError{
			Path:    source,
			Message: fmt.Sprintf("document body must be a mapping, got %s", document.Describe(v)),
		}
	}
	l.log().Debug("loaded RAML document",
		"source", source, "version", version, "fragment", string(fragment), "keys", doc.Root.Len())
	return doc, nil
}

// readHeader parses the "#%RAML" first line.
func (l *Loader) readHeader(data []byte, source string) (string, document.Fragment, error) {
	first, _, _ := bytes.Cut(data, []byte("\n"))
	line := strings.TrimSpace(strings.TrimPrefix(string(first), "\ufeff"))
	if !strings.HasPrefix(line, "#%RAML") {
		if l.RequireHeader {
			return "", "", &ramlerrors.LoadError{Path: source, Line: 1, Message: "missing #%RAML header"}
		}
		return "", document.FragmentRoot, nil
	}
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", &ramlerrors.LoadError{Path: source, Line: 1, Message: fmt.Sprintf("malformed header %q", line)}
	}
	fragment, ok := document.ParseFragment(m[2])
	if !ok {
		return "", "", &ramlerrors.LoadError{Path: source, Line: 1, Message: fmt.Sprintf("unknown fragment kind %q", m[2])}
	}
	return m[1], fragment, nil
}

// decodeYAML unmarshals data into a yaml.Node and converts it. stack holds
// the absolute paths of the files currently being included, outermost
// first, for cycle detection.
func (l *Loader) decodeYAML(data []byte, source string, stack []string) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &ramlerrors.LoadError{Path: source, Message: "invalid YAML", Cause: err}
	}
	if node.Kind == 0 {
		return nil, nil
	}
	return l.convert(&node, source, stack)
}

// convert turns a yaml.Node into document values, preserving mapping order.
func (l *Loader) convert(node *yaml.Node, source string, stack []string) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return l.convert(node.Content[0], source, stack)

	case yaml.AliasNode:
		return l.convert(node.Alias, source, stack)

	case yaml.MappingNode:
		m := document.NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if isMergeKey(keyNode) {
				if err := l.mergeInto(m, valNode, source, stack); err != nil {
					return nil, err
				}
				continue
			}
			v, err := l.convert(valNode, source, stack)
			if err != nil {
				return nil, err
			}
			m.Set(keyNode.Value, v)
		}
		return m, nil

	case yaml.SequenceNode:
		out := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := l.convert(child, source, stack)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil

	case yaml.ScalarNode:
		switch node.ShortTag() {
		case includeTag:
			return l.include(node, source, stack)
		case timestampTag:
			// RAML date types and string types both expect the text.
			return node.Value, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, &ramlerrors.LoadError{Path: source, Line: node.Line, Message: "invalid scalar", Cause: err}
		}
		return v, nil
	}
	return nil, &ramlerrors.LoadError{Path: source, Line: node.Line, Message: fmt.Sprintf("unsupported YAML node kind %d", node.Kind)}
}

// mergeInto applies a YAML merge key ("<<: *anchor") without overriding
// keys already present.
func (l *Loader) mergeInto(m *document.Map, valNode *yaml.Node, source string, stack []string) error {
	v, err := l.convert(valNode, source, stack)
	if err != nil {
		return err
	}
	sources := []any{v}
	if list, ok := v.([]any); ok {
		sources = list
	}
	for _, src := range sources {
		sm, ok := src.(*document.Map)
		if !ok {
			return &ramlerrors.LoadError{Path: source, Line: valNode.Line, Message: "merge key value must be a mapping"}
		}
		sm.Range(func(k string, v any) bool {
			if !m.Has(k) {
				m.Set(k, v)
			}
			return true
		})
	}
	return nil
}

// include resolves a !include scalar. RAML and YAML files are decoded as
// trees, JSON files as trees, anything else is returned as text.
func (l *Loader) include(node *yaml.Node, source string, stack []string) (any, error) {
	ref := strings.TrimSpace(node.Value)
	if ref == "" {
		return nil, &ramlerrors.LoadError{Path: source, Line: node.Line, Message: "empty !include path"}
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return nil, &ramlerrors.LoadError{Path: source, Line: node.Line, Message: fmt.Sprintf("remote !include %q is not supported", ref)}
	}

	target := ref
	if !filepath.IsAbs(target) {
		base := filepath.Dir(source)
		if len(stack) <= 1 {
			base = l.BaseDir
		}
		target = filepath.Join(base, ref)
	}
	abs := absPath(target)

	maxDepth := l.MaxIncludeDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxIncludeDepth
	}
	if len(stack) > maxDepth {
		return nil, &ramlerrors.LoadError{Path: source, Line: node.Line, Message: fmt.Sprintf("!include depth exceeds %d", maxDepth)}
	}
	for _, seen := range stack {
		if seen == abs {
			return nil, &ramlerrors.LoadError{Path: source, Line: node.Line, Message: fmt.Sprintf("circular !include of %s", ref)}
		}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, &ramlerrors.LoadError{Path: source, Line: node.Line, Message: fmt.Sprintf("cannot read !include %s", ref), Cause: err}
	}
	l.log().Debug("resolving include", "from", source, "path", target, "depth", len(stack))

	switch strings.ToLower(filepath.Ext(target)) {
	case ".raml", ".yaml", ".yml", ".json":
		return l.decodeYAML(data, target, append(stack[:len(stack):len(stack)], abs))
	default:
		return string(data), nil
	}
}

func isMergeKey(n *yaml.Node) bool {
	return n.Tag == "!!merge" || (n.Kind == yaml.ScalarNode && n.Style == 0 && n.Value == "<<")
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
