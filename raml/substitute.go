package raml

import (
	"regexp"
	"strings"

	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/internal/naming"
	"github.com/erraggy/ramltools/ramlerrors"
)

// Reserved template parameters available without explicit arguments.
const (
	paramResourcePath     = "resourcePath"
	paramResourcePathName = "resourcePathName"
	paramMethodName       = "methodName"
)

// placeholderPattern matches "<< name | !fn | !fn >>".
var placeholderPattern = regexp.MustCompile(`<<\s*([^<>|\s]+)\s*((?:\|\s*![^<>|\s]+\s*)*)>>`)

var transformPattern = regexp.MustCompile(`!\s*([^<>|\s]+)`)

// substitute rewrites <<name>> placeholders in v with values from args,
// returning a copy with the same shape. Map keys are rewritten as well as
// string leaves. Placeholders naming a parameter absent from args are left
// untouched. A leaf that is exactly one placeholder without transforms
// takes the argument's value as-is, so numeric arguments stay numeric.
func substitute(v any, args map[string]any) (any, error) {
	switch t := v.(type) {
	case *document.Map:
		out := document.NewMap()
		var err error
		t.Range(func(key string, val any) bool {
			var k string
			if k, err = substituteString(key, args); err != nil {
				return false
			}
			var sv any
			if sv, err = substitute(val, args); err != nil {
				return false
			}
			out.Set(k, sv)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			sv, err := substitute(item, args)
			if err != nil {
				return nil, err
			}
			out[i] = sv
		}
		return out, nil
	case string:
		if m := placeholderPattern.FindStringSubmatch(t); m != nil && m[0] == t && m[2] == "" {
			if arg, ok := args[m[1]]; ok {
				return document.CloneValue(arg), nil
			}
			return t, nil
		}
		return substituteString(t, args)
	default:
		return v, nil
	}
}

// substituteMap is substitute for a map root.
func substituteMap(m *document.Map, args map[string]any) (*document.Map, error) {
	if m == nil {
		return nil, nil
	}
	out, err := substitute(m, args)
	if err != nil {
		return nil, err
	}
	return out.(*document.Map), nil
}

// substituteString replaces every placeholder in s in one left-to-right
// pass.
func substituteString(s string, args map[string]any) (string, error) {
	if !strings.Contains(s, "<<") {
		return s, nil
	}
	var firstErr error
	out := placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := placeholderPattern.FindStringSubmatch(match)
		arg, ok := args[m[1]]
		if !ok {
			return match
		}
		value := argString(arg)
		for _, tm := range transformPattern.FindAllStringSubmatch(m[2], -1) {
			fn, ok := naming.Lookup(tm[1])
			if !ok {
				if firstErr == nil {
					firstErr = &ramlerrors.TransformError{Transform: tm[1], Parameter: m[1]}
				}
				return match
			}
			value = fn(value)
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func argString(v any) string {
	if s, ok := document.AsString(v); ok {
		return s
	}
	if v == nil {
		return ""
	}
	return document.Describe(v)
}

// reservedParams returns the parameters every template application sees.
func reservedParams(path, method string) map[string]any {
	return map[string]any{
		paramResourcePath:     path,
		paramResourcePathName: resourcePathName(path),
		paramMethodName:       method,
	}
}

// resourcePathName is the rightmost path segment that is not a URI
// parameter: "/users/{id}" yields "users".
func resourcePathName(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if seg := segments[i]; seg != "" && !strings.Contains(seg, "{") {
			return seg
		}
	}
	return ""
}

// withArgs merges explicit template arguments over the reserved ones.
func withArgs(reserved map[string]any, args *document.Map) map[string]any {
	out := make(map[string]any, len(reserved)+args.Len())
	for k, v := range reserved {
		out[k] = v
	}
	args.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	return out
}
