package facegraph

import (
	"regexp"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	nfSortModeNone = iota
	nfSortModeAxis
	nfSortModeDistance
)

// NodeFilter represents a chain of node filters, executed in sequence to collect the desired nodes out of a
// hierarchy. Filters are executed lazily, when one of the finishing functions (Nodes, First, ForEach, and so on)
// is called. The starting node itself is never part of the results.
//
// Each filter method returns a modified copy, so a NodeFilter can be stored and extended without affecting the
// original.
type NodeFilter struct {
	Filters        []func(*Node) bool // The filters that are currently active on the NodeFilter.
	Start          *Node              // The start (root) of the filter.
	MaxDepth       int                // How deep the filter searches below Start; a value less than zero means the entire tree.
	stopOnFiltered bool               // If a node that fails the filters should hide its children as well

	sortMode    int
	sortAxis    int
	sortTo      mgl64.Vec3
	reverseSort bool
}

// Search returns a NodeFilter over the Node's descendants.
func (node *Node) Search() NodeFilter {
	return NodeFilter{Start: node, MaxDepth: -1}
}

func (nf NodeFilter) with(filter func(*Node) bool) NodeFilter {
	nf.Filters = append(append([]func(*Node) bool(nil), nf.Filters...), filter)
	return nf
}

func (nf NodeFilter) passes(node *Node) bool {
	for _, filter := range nf.Filters {
		if !filter(node) {
			return false
		}
	}
	return true
}

// walk visits the filtered nodes depth-first, stopping early if visit returns false.
func (nf NodeFilter) walk(node *Node, depth int, visit func(*Node) bool) bool {

	passed := true
	if node != nf.Start {
		passed = nf.passes(node)
		if passed && !visit(node) {
			return false
		}
	}

	if nf.MaxDepth >= 0 && depth >= nf.MaxDepth {
		return true
	}

	if nf.stopOnFiltered && !passed {
		return true
	}

	for _, child := range node.children {
		if !nf.walk(child, depth+1, visit) {
			return false
		}
	}

	return true

}

func (nf NodeFilter) execute() []*Node {

	out := []*Node{}
	if nf.Start == nil {
		return out
	}

	nf.walk(nf.Start, -1, func(n *Node) bool {
		out = append(out, n)
		return true
	})

	switch nf.sortMode {
	case nfSortModeAxis:
		sort.SliceStable(out, func(i, j int) bool {
			if nf.reverseSort {
				return out[i].WorldPosition()[nf.sortAxis] > out[j].WorldPosition()[nf.sortAxis]
			}
			return out[i].WorldPosition()[nf.sortAxis] < out[j].WorldPosition()[nf.sortAxis]
		})
	case nfSortModeDistance:
		dist := func(n *Node) float64 {
			d := n.WorldPosition().Sub(nf.sortTo)
			return d.Dot(d)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if nf.reverseSort {
				return dist(out[i]) > dist(out[j])
			}
			return dist(out[i]) < dist(out[j])
		})
	default:
		if nf.reverseSort {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
	}

	return out

}

// ByFunc filters the selection by the provided function, which returns whether a Node should be included.
func (nf NodeFilter) ByFunc(filterFunc func(node *Node) bool) NodeFilter {
	return nf.with(filterFunc)
}

// ByName filters the selection to Nodes whose names are wholly equal to the provided name.
func (nf NodeFilter) ByName(name string) NodeFilter {
	return nf.with(func(node *Node) bool { return node.name == name })
}

// ByRegex filters the selection to Nodes whose names match the regular expression. If the expression doesn't
// compile, nothing passes.
func (nf NodeFilter) ByRegex(regexString string) NodeFilter {
	re, err := regexp.Compile(regexString)
	return nf.with(func(node *Node) bool {
		return err == nil && re.MatchString(node.name)
	})
}

// ByType filters the selection to Nodes whose type is, or extends, the provided NodeType.
func (nf NodeFilter) ByType(nodeType NodeType) NodeFilter {
	return nf.with(func(node *Node) bool { return node.nodeType.Is(nodeType) })
}

// ByProps filters the selection to Nodes that have all of the named properties.
func (nf NodeFilter) ByProps(propNames ...string) NodeFilter {
	return nf.with(func(node *Node) bool {
		return node.props != nil && node.props.Has(propNames...)
	})
}

// ByProp filters the selection to Nodes that have the named property set to the given value.
func (nf NodeFilter) ByProp(propName string, propValue any) NodeFilter {
	return nf.with(func(node *Node) bool {
		return node.props != nil && node.props.Has(propName) && node.props.Get(propName).Value == propValue
	})
}

// WithDrawables filters the selection to Nodes carrying at least one Drawable.
func (nf NodeFilter) WithDrawables() NodeFilter {
	return nf.with(func(node *Node) bool { return len(node.drawables) > 0 })
}

// Not filters out the given Nodes.
func (nf NodeFilter) Not(others ...*Node) NodeFilter {
	return nf.with(func(node *Node) bool {
		for _, other := range others {
			if node == other {
				return false
			}
		}
		return true
	})
}

// StopOnFiltered makes a Node that fails the filters hide its children as well.
func (nf NodeFilter) StopOnFiltered() NodeFilter {
	nf.stopOnFiltered = true
	return nf
}

// SetMaxDepth sets how far below the starting Node the search goes; 0 means direct children only.
func (nf NodeFilter) SetMaxDepth(depth int) NodeFilter {
	nf.MaxDepth = depth
	return nf
}

// SortByAxis sorts the results by world position along the given axis (0 for X, 1 for Y, 2 for Z).
// Sorts do not combine.
func (nf NodeFilter) SortByAxis(axis int) NodeFilter {
	nf.sortMode = nfSortModeAxis
	nf.sortAxis = axis
	return nf
}

// SortByDistance sorts the results by their world distance to the given point, nearest first.
// Sorts do not combine.
func (nf NodeFilter) SortByDistance(to mgl64.Vec3) NodeFilter {
	nf.sortMode = nfSortModeDistance
	nf.sortTo = to
	return nf
}

// SortReverse reverses the order of the results.
func (nf NodeFilter) SortReverse() NodeFilter {
	nf.reverseSort = !nf.reverseSort
	return nf
}

// ForEach calls the function on each filtered Node in hierarchy order, stopping if it returns false. It
// ignores any sorting.
func (nf NodeFilter) ForEach(callback func(node *Node) bool) {
	if nf.Start != nil {
		nf.walk(nf.Start, -1, callback)
	}
}

// Nodes returns the filtered Nodes.
func (nf NodeFilter) Nodes() []*Node {
	return nf.execute()
}

// First returns the first filtered Node, or nil if there are none.
func (nf NodeFilter) First() *Node {
	if nf.sortMode != nfSortModeNone || nf.reverseSort {
		out := nf.execute()
		if len(out) == 0 {
			return nil
		}
		return out[0]
	}
	var result *Node
	nf.ForEach(func(node *Node) bool { result = node; return false })
	return result
}

// Last returns the last filtered Node, or nil if there are none.
func (nf NodeFilter) Last() *Node {
	out := nf.execute()
	if len(out) == 0 {
		return nil
	}
	return out[len(out)-1]
}

// Count returns the number of filtered Nodes.
func (nf NodeFilter) Count() int {
	count := 0
	nf.ForEach(func(*Node) bool { count++; return true })
	return count
}

// IsEmpty returns true if no Node passes the filters.
func (nf NodeFilter) IsEmpty() bool {
	return nf.First() == nil
}

// Contains returns if the provided Node passes the filters.
func (nf NodeFilter) Contains(node *Node) bool {
	found := false
	nf.ForEach(func(n *Node) bool {
		found = n == node
		return !found
	})
	return found
}

// Drawables returns every Drawable carried by the filtered Nodes, in order.
func (nf NodeFilter) Drawables() []*Drawable {
	out := []*Drawable{}
	for _, n := range nf.execute() {
		out = append(out, n.drawables...)
	}
	return out
}

// Lights returns the Lights attached to the filtered Nodes.
func (nf NodeFilter) Lights() []*Light {
	out := []*Light{}
	for _, n := range nf.execute() {
		if n.light != nil {
			out = append(out, n.light)
		}
	}
	return out
}
