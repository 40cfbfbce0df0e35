package internal

import (
	"slices"
	"strings"

	"github.com/dmitrymomot/xmlpo/pkg/markup"
	"github.com/dmitrymomot/xmlpo/pkg/taxonomy"
)

type class uint8

const (
	classAutoFinal class = 1 << iota
	classFinal
	classWorth
	classWorthAttr
	classPreserve
)

// classes holds the classification of every node of one tree, indexed by
// NodeID. It is computed once before traversal; nodes allocated later by a
// merge have no class bits set.
type classes []class

func (c classes) has(id markup.NodeID, bit class) bool {
	return int(id) < len(c) && c[id]&bit != 0
}

func (c classes) final(id markup.NodeID) bool     { return c.has(id, classFinal) }
func (c classes) worth(id markup.NodeID) bool     { return c.has(id, classWorth) }
func (c classes) worthAttr(id markup.NodeID) bool { return c.has(id, classWorthAttr) }
func (c classes) preserve(id markup.NodeID) bool  { return c.has(id, classPreserve) }

// classify computes the class bits of every node reachable from the
// document node of tree.
func classify(tree *markup.Tree, tx *taxonomy.Taxonomy, automatic bool) classes {
	c := make(classes, tree.Len())

	var order []markup.NodeID
	tree.Walk(tree.Document(), func(id markup.NodeID) bool {
		order = append(order, id)
		return true
	})

	ignored := func(id markup.NodeID) bool {
		n := tree.Node(id)
		return n.Kind == markup.ElementNode && tx.IsIgnored(n.Name.String())
	}

	// Bottom-up: children are classified before their parent.
	for _, id := range slices.Backward(order) {
		n := tree.Node(id)
		if autoFinal(tree, id, ignored(id)) {
			c[id] |= classAutoFinal
		}
		if !automatic && n.Kind == markup.ElementNode && declaredFinal(tree, c, id, tx) {
			c[id] |= classFinal
		}
	}

	// Top-down: ancestors are classified before their descendants.
	nearestFinal := make([]markup.NodeID, tree.Len())
	autoAncestor := make([]bool, tree.Len())
	space := make([]int8, tree.Len())
	for _, id := range order {
		n := tree.Node(id)
		parent := n.Parent()

		nearestFinal[id] = markup.Nil
		space[id] = -1
		if parent != markup.Nil {
			if c.final(parent) {
				nearestFinal[id] = parent
			} else {
				nearestFinal[id] = nearestFinal[parent]
			}
			autoAncestor[id] = autoAncestor[parent] || c.has(parent, classAutoFinal)
			space[id] = space[parent]
		}

		if automatic && c.has(id, classAutoFinal) && !autoAncestor[id] {
			c[id] |= classFinal
		}

		if n.Kind != markup.ElementNode {
			continue
		}
		// A preserving tag affects its whole subtree unless a descendant
		// resets xml:space.
		if tx.IsSpacePreserve(n.Name.String()) {
			space[id] = 1
		}
		if a, ok := tree.Attr(id, "xml:space"); ok {
			switch tree.AttrValue(a) {
			case "preserve":
				space[id] = 1
			case "default":
				space[id] = 0
			}
		}
		if space[id] == 1 || tx.IsSpacePreserve(n.Name.String()) {
			c[id] |= classPreserve
		}

		anc := nearestFinal[id]
		outputs := (c.final(id) && !ignored(id)) ||
			anc == markup.Nil ||
			ignored(anc) ||
			!c.worth(anc)
		if outputs {
			c[id] |= classWorthAttr
			if c.has(id, classAutoFinal) {
				c[id] |= classWorth
			}
		}
	}
	return c
}

// autoFinal reports whether id is non-blank text or has a non-blank text
// child.
func autoFinal(tree *markup.Tree, id markup.NodeID, ignored bool) bool {
	if ignored {
		return false
	}
	n := tree.Node(id)
	if n.Kind == markup.TextNode {
		return strings.TrimSpace(n.Data) != ""
	}
	for child := range tree.Children(id) {
		cn := tree.Node(child)
		if cn.Kind == markup.TextNode && strings.TrimSpace(cn.Data) != "" {
			return true
		}
	}
	return false
}

// declaredFinal reports whether element id is listed as final or all of
// its significant children are final.
func declaredFinal(tree *markup.Tree, c classes, id markup.NodeID, tx *taxonomy.Taxonomy) bool {
	n := tree.Node(id)
	if tx.IsFinal(n.Name.String()) {
		return true
	}
	if n.FirstChild() == markup.Nil {
		return false
	}
	for child := range tree.Children(id) {
		kind := tree.Node(child).Kind
		if tree.IsBlank(child) || kind == markup.CommentNode {
			continue
		}
		if !c.final(child) {
			return false
		}
	}
	return true
}
