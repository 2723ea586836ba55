package ir

// ---------- Preloads ----------

// PreloadEntry is one node of the plain (non-join) preload tree: an
// association name with optional nested preloads.
type PreloadEntry struct {
	Field    string
	Children []PreloadEntry
}

// AssocNode is one node of the resolved join-based preload overlay. Parent
// is the index of the parent node in the forest's arena, or -1 for roots.
// Preloads holds plain (non-join) preloads nested under this association.
type AssocNode struct {
	Field    string
	Binding  int
	Parent   int
	Children []int
	Preloads []PreloadEntry
}

// AssocForest stores join-based preloads as a flat arena with parent/child
// relationships expressed as indices. Roots lists top-level nodes in call
// order.
type AssocForest struct {
	Nodes []AssocNode
	Roots []int
}

// Empty reports whether the forest has no nodes.
func (f AssocForest) Empty() bool {
	return len(f.Nodes) == 0
}

// Add appends a node under parent (-1 for a root) and returns the new
// forest plus the node's index. The receiver is not modified.
func (f AssocForest) Add(field string, binding, parent int) (AssocForest, int) {
	ix := len(f.Nodes)
	nodes := make([]AssocNode, ix, ix+1)
	copy(nodes, f.Nodes)
	for i := range nodes {
		nodes[i].Children = append([]int(nil), nodes[i].Children...)
	}
	nodes = append(nodes, AssocNode{Field: field, Binding: binding, Parent: parent})

	next := AssocForest{Nodes: nodes, Roots: append([]int(nil), f.Roots...)}
	if parent < 0 {
		next.Roots = append(next.Roots, ix)
	} else {
		next.Nodes[parent].Children = append(next.Nodes[parent].Children, ix)
	}
	return next, ix
}

// Walk visits every node depth-first in declaration order. Depth is 0 for
// roots.
func (f AssocForest) Walk(fn func(ix int, node AssocNode, depth int)) {
	var visit func(ix, depth int)
	visit = func(ix, depth int) {
		fn(ix, f.Nodes[ix], depth)
		for _, c := range f.Nodes[ix].Children {
			visit(c, depth+1)
		}
	}
	for _, r := range f.Roots {
		visit(r, 0)
	}
}
