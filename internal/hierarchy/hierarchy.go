// Package hierarchy derives the solid/hole nesting tree from a set of
// unioned polygons. Per the "parent/child polygon cycles" design note, the
// tree is stored in an arena (a flat slice of Node, addressed by integer
// NodeID) instead of shared/weak pointers, so there is no cyclic ownership.
package hierarchy

import (
	"github.com/piwi3910/camcore/internal/boolean"
	"github.com/piwi3910/camcore/internal/geometry"
)

// NodeID indexes into a Tree's Nodes slice. The zero value is not a valid
// node; roots are listed separately in Tree.Roots.
type NodeID int

// Node is one entry in the polygon hierarchy arena.
type Node struct {
	Polygon  geometry.Polygon2D
	Parent   NodeID // 0 means "no parent"; valid ids start at 1
	Children []NodeID
	Level    int  // root nodes are level 0
	IsHole   bool // is_hole == (level % 2 == 1)
}

// Tree is the arena holding every node plus the list of top-level roots.
type Tree struct {
	Nodes []Node // Nodes[0] is unused so NodeID zero means "none"
	Roots []NodeID
}

// Node returns the node for id (ids are 1-based).
func (t *Tree) Node(id NodeID) *Node {
	return &t.Nodes[id]
}

// Build unions the input polygons and walks the resulting Clipper2 polytree
// into the arena representation. Empty polygons are skipped per spec.md §4.5.
func Build(polygons []geometry.Polygon2D) (*Tree, error) {
	var nonEmpty []geometry.Polygon2D
	for _, p := range polygons {
		if len(p) >= 3 {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return &Tree{Nodes: make([]Node, 1)}, nil
	}

	root, err := boolean.BuildTree(nonEmpty)
	if err != nil {
		return nil, err
	}

	t := &Tree{Nodes: make([]Node, 1)} // index 0 reserved
	// Clipper2's PolyTree64 root is a container with no polygon of its own;
	// its direct children are the level-0 solids.
	children := root.Children
	for _, c := range children {
		id := t.addSubtree(c, 0, 0)
		t.Roots = append(t.Roots, id)
	}
	return t, nil
}

func (t *Tree) addSubtree(n *boolean.TreeNode, level int, parent NodeID) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, Node{
		Polygon: n.Polygon,
		Parent:  parent,
		Level:   level,
		IsHole:  level%2 == 1,
	})
	for _, child := range n.Children {
		childID := t.addSubtree(child, level+1, id)
		t.Nodes[id].Children = append(t.Nodes[id].Children, childID)
	}
	return id
}

// Solids returns every node at an even tree depth (outer boundaries and
// islands), in arena order.
func (t *Tree) Solids() []NodeID {
	var out []NodeID
	for i := 1; i < len(t.Nodes); i++ {
		if !t.Nodes[i].IsHole {
			out = append(out, NodeID(i))
		}
	}
	return out
}

// Holes returns every node at an odd tree depth.
func (t *Tree) Holes() []NodeID {
	var out []NodeID
	for i := 1; i < len(t.Nodes); i++ {
		if t.Nodes[i].IsHole {
			out = append(out, NodeID(i))
		}
	}
	return out
}
