package raml

import "fmt"

// Action controls Walk after visiting a node.
type Action int

const (
	// Continue visits the node's children, then its siblings.
	Continue Action = iota

	// SkipChildren skips the node's children but continues with siblings.
	SkipChildren

	// Stop ends the walk immediately.
	Stop
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case Continue:
		return "Continue"
	case SkipChildren:
		return "SkipChildren"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("Action(%d)", a)
	}
}

// ResourceVisitor is called for each resource with its depth (0 for top
// level resources).
type ResourceVisitor func(res *ResourceNode, depth int) Action

// Walk visits the resource tree depth first, in declaration order.
func (r *RootNode) Walk(fn ResourceVisitor) {
	for _, res := range r.Resources {
		if res.Parent != nil {
			continue
		}
		if !walkResource(res, 0, fn) {
			return
		}
	}
}

// walkResource returns false when the walk was stopped.
func walkResource(res *ResourceNode, depth int, fn ResourceVisitor) bool {
	switch fn(res, depth) {
	case Stop:
		return false
	case SkipChildren:
		return true
	}
	for _, child := range res.Children {
		if !walkResource(child, depth+1, fn) {
			return false
		}
	}
	return true
}
