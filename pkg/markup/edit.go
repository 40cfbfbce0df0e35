package markup

import "slices"

// DetachChildren unlinks every child of id.
func (t *Tree) DetachChildren(id NodeID) {
	for c := range t.Children(id) {
		t.Detach(c)
	}
}

// ImportChildren copies the children of srcParent in src, with their
// subtrees, to the end of dst's children. A leading imported text node is
// merged into a trailing text child of dst.
func (t *Tree) ImportChildren(dst NodeID, src *Tree, srcParent NodeID) {
	type item struct {
		src    NodeID
		parent NodeID
	}

	var stack []item
	push := func(from, to NodeID) {
		for c := src.nodes[from].lastChild; c != Nil; c = src.nodes[c].prev {
			stack = append(stack, item{src: c, parent: to})
		}
	}
	push(srcParent, dst)

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sn := src.nodes[it.src]

		if sn.Kind == TextNode {
			if last := t.nodes[it.parent].lastChild; last != Nil && t.nodes[last].Kind == TextNode {
				t.nodes[last].Data += sn.Data
				continue
			}
		}

		id := t.alloc(Node{
			Name:        sn.Name,
			Attrs:       cloneAttrs(sn.Attrs),
			Data:        sn.Data,
			Line:        sn.Line,
			Kind:        sn.Kind,
			SelfClosing: sn.SelfClosing,
		})
		t.AppendChild(it.parent, id)
		push(it.src, id)
	}
}

func cloneAttrs(attrs []Attr) []Attr {
	if attrs == nil {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i, a := range attrs {
		out[i] = Attr{Name: a.Name, Parts: slices.Clone(a.Parts)}
	}
	return out
}

// SetAttrParts replaces or appends the attribute qname of element id.
func (t *Tree) SetAttrParts(id NodeID, qname string, parts []AttrPart) {
	n := &t.nodes[id]
	for i := range n.Attrs {
		if n.Attrs[i].Name.String() == qname {
			n.Attrs[i].Parts = parts
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: parseName(qname), Parts: parts})
}

// SetAttr sets attribute qname of element id to a literal value.
func (t *Tree) SetAttr(id NodeID, qname, value string) {
	t.SetAttrParts(id, qname, []AttrPart{{Text: value}})
}

// SetLang sets xml:lang on element id.
func (t *Tree) SetLang(id NodeID, lang string) {
	t.SetAttr(id, "xml:lang", lang)
}

// SetText replaces the children of id with a single text node.
func (t *Tree) SetText(id NodeID, text string) {
	t.DetachChildren(id)
	t.AppendText(id, text)
}

// AppendText appends a text node to parent.
func (t *Tree) AppendText(parent NodeID, text string) NodeID {
	c := t.alloc(Node{Kind: TextNode, Data: text})
	t.AppendChild(parent, c)
	return c
}

// AppendElement appends an empty element named qname to parent.
func (t *Tree) AppendElement(parent NodeID, qname string) NodeID {
	c := t.alloc(Node{Kind: ElementNode, Name: parseName(qname), Line: t.nodes[parent].Line})
	t.AppendChild(parent, c)
	return c
}

// InsertBefore links the detached node child immediately before ref.
func (t *Tree) InsertBefore(ref, child NodeID) {
	r := &t.nodes[ref]
	c := &t.nodes[child]
	c.parent = r.parent
	c.next = ref
	c.prev = r.prev
	if r.prev != Nil {
		t.nodes[r.prev].next = child
	} else if r.parent != Nil {
		t.nodes[r.parent].firstChild = child
	}
	r.prev = child
}

// NewElement allocates a detached element.
func (t *Tree) NewElement(qname string) NodeID {
	return t.alloc(Node{Kind: ElementNode, Name: parseName(qname)})
}

func parseName(qname string) Name {
	for i := 0; i < len(qname); i++ {
		if qname[i] == ':' {
			return Name{Space: qname[:i], Local: qname[i+1:]}
		}
	}
	return Name{Local: qname}
}
