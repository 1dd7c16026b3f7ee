// Package severity provides severity levels for findings collected while
// resolving a RAML document.
//
// The levels are ordered from least to most severe:
// Info < Warning < Error < Critical
package severity

// Severity indicates the severity level of a finding.
type Severity int

const (
	// SeverityError indicates a violation that makes the document invalid.
	SeverityError Severity = iota

	// SeverityWarning indicates a problem that does not invalidate the document.
	SeverityWarning

	// SeverityInfo indicates an informational notice.
	SeverityInfo

	// SeverityCritical indicates a problem that prevented part of the document
	// from being resolved at all.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Blocking reports whether findings at this level make a document invalid.
func (s Severity) Blocking() bool {
	return s == SeverityError || s == SeverityCritical
}
