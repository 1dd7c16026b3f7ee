package document

// DefaultScalarKeys are facets whose value is taken whole from the child when
// both sides of a merge define them, even if both values are maps.
var DefaultScalarKeys = map[string]bool{
	"type":        true,
	"enum":        true,
	"pattern":     true,
	"minLength":   true,
	"maxLength":   true,
	"minimum":     true,
	"maximum":     true,
	"example":     true,
	"default":     true,
	"description": true,
	"usage":       true,
	"schema":      true,
	"displayName": true,
}

// MergeOptions controls Merge.
type MergeOptions struct {
	// ScalarKeys names keys whose child value wins outright. Nil means
	// DefaultScalarKeys.
	ScalarKeys map[string]bool
	// Skip, when set, vetoes adopting a parent-only key. The resolver uses
	// it to keep sibling HTTP-method blocks of a resource type out of a
	// resource that does not implement that method.
	Skip func(key string) bool
}

// Merge returns the deep union of child and parent. Neither input is
// modified.
//
// Merge is deliberately not commutative; the child always wins:
//   - keys only in child are kept as-is
//   - keys only in parent are adopted unless opts.Skip vetoes them
//   - keys in both are merged recursively when both values are maps and the
//     key is not a scalar facet; otherwise the child's value is kept
//
// The merged map lists child keys first, in child order, followed by adopted
// parent keys in parent order.
func Merge(child, parent *Map, opts MergeOptions) *Map {
	if opts.ScalarKeys == nil {
		opts.ScalarKeys = DefaultScalarKeys
	}
	return merge(child, parent, opts, 0)
}

func merge(child, parent *Map, opts MergeOptions, depth int) *Map {
	if child == nil && parent == nil {
		return nil
	}
	if parent == nil {
		return child.Clone()
	}
	if child == nil {
		child = NewMap()
	}

	out := child.Clone()
	parent.Range(func(key string, pv any) bool {
		cv, inChild := out.Get(key)
		if !inChild || cv == nil {
			// Skip only applies at the top level, where method blocks live.
			if depth == 0 && opts.Skip != nil && opts.Skip(key) {
				return true
			}
			out.Set(key, CloneValue(pv))
			return true
		}
		if opts.ScalarKeys[key] {
			return true
		}
		cm, cok := cv.(*Map)
		pm, pok := pv.(*Map)
		if cok && pok {
			out.Set(key, merge(cm, pm, opts, depth+1))
		}
		return true
	})
	return out
}
