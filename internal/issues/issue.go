// Package issues provides the finding record accumulated while resolving a
// RAML document.
package issues

import (
	"fmt"
	"strings"

	"github.com/erraggy/ramltools/internal/severity"
	"github.com/erraggy/ramltools/ramlerrors"
)

// Kind classifies a finding by the part of the document it concerns.
type Kind string

const (
	// KindRoot covers root attributes (title, version, baseUri, protocols, ...).
	KindRoot Kind = "root"
	// KindParameter covers named parameters, headers, bodies and responses.
	KindParameter Kind = "parameter"
	// KindDataType covers data type declarations and their examples.
	KindDataType Kind = "datatype"
	// KindSecurity covers security scheme declarations and assignments.
	KindSecurity Kind = "security"
	// KindResource covers trait and resource type assignments on resources.
	KindResource Kind = "resource"
)

// Issue represents a single problem found while resolving a document.
type Issue struct {
	// Kind classifies the issue
	Kind Kind
	// Path locates the problem (e.g. "/users/{id}.get.queryParameters.page")
	Path string
	// Message is a human-readable description of the issue
	Message string
	// Severity indicates the severity level of the issue
	Severity severity.Severity
	// Field is the specific attribute that has the issue
	Field string
	// Value is the problematic value (optional)
	Value any
}

// String returns a formatted string representation of the issue.
// Uses different symbols based on severity level:
// - "✗" for Error or Critical severity
// - "⚠" for Warning severity
// - "ℹ" for Info severity
func (i Issue) String() string {
	var symbol string
	switch i.Severity {
	case severity.SeverityError, severity.SeverityCritical:
		symbol = "✗"
	case severity.SeverityWarning:
		symbol = "⚠"
	case severity.SeverityInfo:
		symbol = "ℹ"
	default:
		symbol = "?"
	}
	if i.Path == "" {
		return fmt.Sprintf("%s [%s] %s", symbol, i.Kind, i.Message)
	}
	return fmt.Sprintf("%s [%s] %s: %s", symbol, i.Kind, i.Path, i.Message)
}

// Err converts the issue into a *ramlerrors.ValidationError.
func (i Issue) Err() error {
	return &ramlerrors.ValidationError{
		Kind:    string(i.Kind),
		Path:    i.Path,
		Field:   i.Field,
		Value:   i.Value,
		Message: i.Message,
	}
}

// List is an append-only collection of issues shared by every node of one
// document.
type List struct {
	items []Issue
}

// Add appends an issue.
func (l *List) Add(issue Issue) {
	l.items = append(l.items, issue)
}

// Errorf appends an error-severity issue with a formatted message.
func (l *List) Errorf(kind Kind, path, field string, value any, format string, args ...any) {
	l.Add(Issue{
		Kind:     kind,
		Path:     path,
		Field:    field,
		Value:    value,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity.SeverityError,
	})
}

// Items returns a copy of the collected issues in discovery order.
func (l *List) Items() []Issue {
	if l == nil || len(l.items) == 0 {
		return nil
	}
	out := make([]Issue, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of collected issues.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Errors converts every blocking issue into an error value.
func (l *List) Errors() []error {
	if l == nil {
		return nil
	}
	var errs []error
	for _, it := range l.items {
		if it.Severity.Blocking() {
			errs = append(errs, it.Err())
		}
	}
	return errs
}

// FormatPath joins path segments with ".", skipping empty segments.
func FormatPath(segments ...string) string {
	var sb strings.Builder
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(seg)
	}
	return sb.String()
}
