// Package options holds option validation shared by the entry-point packages.
package options

import (
	"strings"

	"github.com/erraggy/ramltools/ramlerrors"
)

// Source is one candidate input of a functional-options entry point.
type Source struct {
	// Option is the name of the option that sets the source, e.g. "WithFilePath".
	Option string
	Set    bool
}

// SingleInputSource returns the option name of the only source that is set.
// It returns a *ramlerrors.ConfigError naming the candidates when no source,
// or more than one, is set.
func SingleInputSource(sources ...Source) (string, error) {
	var all, set []string
	for _, s := range sources {
		all = append(all, s.Option)
		if s.Set {
			set = append(set, s.Option)
		}
	}

	switch len(set) {
	case 1:
		return set[0], nil
	case 0:
		return "", &ramlerrors.ConfigError{
			Option:  "input",
			Message: "must specify an input source (use " + joinOr(all) + ")",
		}
	default:
		return "", &ramlerrors.ConfigError{
			Option:  "input",
			Value:   len(set),
			Message: "must specify exactly one input source (got " + strings.Join(set, ", ") + ")",
		}
	}
}

func joinOr(names []string) string {
	switch len(names) {
	case 0:
		return "an input option"
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
