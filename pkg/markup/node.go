package markup

import (
	"iter"
	"strings"
)

// NodeID addresses a node inside its Tree.
type NodeID int32

// Nil is the NodeID of a missing node.
const Nil NodeID = -1

// Kind identifies the type of a node.
type Kind uint8

const (
	DocumentNode Kind = iota + 1
	ElementNode
	TextNode
	CommentNode
	EntityRefNode
	ProcInstNode
	DocTypeNode
)

func (k Kind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case EntityRefNode:
		return "entity_ref"
	case ProcInstNode:
		return "pi"
	case DocTypeNode:
		return "dtd"
	default:
		return "unknown"
	}
}

// Name is a possibly prefixed XML name. Prefixes are kept as written;
// namespace URIs are never resolved.
type Name struct {
	Space string
	Local string
}

func (n Name) String() string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// AttrPart is one piece of an attribute value: either literal text or a
// reference to a general entity.
type AttrPart struct {
	Text   string
	Entity string
}

// Attr is an element attribute. The value is kept as parts so entity
// references survive a round trip.
type Attr struct {
	Name  Name
	Parts []AttrPart
}

// Node is a single arena slot.
type Node struct {
	// Name of an element, the entity of a reference, or the target of a
	// processing instruction (in Local).
	Name  Name
	Attrs []Attr

	// Data holds text content, comment bodies, processing instruction bodies
	// and the raw body of a DOCTYPE declaration.
	Data string

	Line int
	Kind Kind

	// SelfClosing records that an element was written as <name/>.
	SelfClosing bool

	parent     NodeID
	firstChild NodeID
	lastChild  NodeID
	prev       NodeID
	next       NodeID
}

func (n *Node) Parent() NodeID      { return n.parent }
func (n *Node) FirstChild() NodeID  { return n.firstChild }
func (n *Node) LastChild() NodeID   { return n.lastChild }
func (n *Node) PrevSibling() NodeID { return n.prev }
func (n *Node) NextSibling() NodeID { return n.next }

// Tree is a parsed document. It is not safe for concurrent mutation.
type Tree struct {
	// Entities holds the general entities declared in the internal subset.
	Entities map[string]*Entity

	// Path is the file the tree was parsed from, if any.
	Path string

	// Encoding is the encoding named by the XML declaration. Content is
	// always held as UTF-8.
	Encoding string

	nodes   []Node
	doc     NodeID
	recoded bool
}

func newTree() *Tree {
	t := &Tree{Entities: make(map[string]*Entity)}
	t.doc = t.alloc(Node{Kind: DocumentNode})
	return t
}

// NewDocument returns an empty tree holding only a document node.
func NewDocument() *Tree {
	return newTree()
}

func (t *Tree) alloc(n Node) NodeID {
	n.parent, n.firstChild, n.lastChild, n.prev, n.next = Nil, Nil, Nil, Nil, Nil
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// Len returns the number of arena slots, including detached nodes.
// It bounds every NodeID of the tree and sizes side tables.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node stored at id. The pointer is invalidated by any
// call that allocates nodes.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Valid reports whether id addresses a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Document returns the document node.
func (t *Tree) Document() NodeID {
	return t.doc
}

// Root returns the document element, or Nil when there is none.
func (t *Tree) Root() NodeID {
	for c := range t.Children(t.doc) {
		if t.nodes[c].Kind == ElementNode {
			return c
		}
	}
	return Nil
}

// Children iterates the direct children of id in document order. The next
// sibling is read before yielding, so the yielded node may be detached.
func (t *Tree) Children(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		for c := t.nodes[id].firstChild; c != Nil; {
			next := t.nodes[c].next
			if !yield(c) {
				return
			}
			c = next
		}
	}
}

// Descendants iterates id and all nodes below it in document order.
func (t *Tree) Descendants(id NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		t.Walk(id, func(n NodeID) bool {
			return yield(n)
		})
	}
}

// Walk visits id and its subtree in document order without recursion.
// Returning false from fn skips the children of the visited node.
func (t *Tree) Walk(id NodeID, fn func(NodeID) bool) {
	n := id
	for {
		descend := fn(n)
		if descend && t.nodes[n].firstChild != Nil {
			n = t.nodes[n].firstChild
			continue
		}
		for {
			if n == id {
				return
			}
			if next := t.nodes[n].next; next != Nil {
				n = next
				break
			}
			n = t.nodes[n].parent
		}
	}
}

// AppendChild links child as the last child of parent. The child must be
// detached.
func (t *Tree) AppendChild(parent, child NodeID) {
	c := &t.nodes[child]
	c.parent = parent
	c.next = Nil
	c.prev = t.nodes[parent].lastChild
	if c.prev != Nil {
		t.nodes[c.prev].next = child
	} else {
		t.nodes[parent].firstChild = child
	}
	t.nodes[parent].lastChild = child
}

// Detach unlinks id from its parent and siblings. The subtree below id stays
// intact.
func (t *Tree) Detach(id NodeID) {
	n := &t.nodes[id]
	if n.prev != Nil {
		t.nodes[n.prev].next = n.next
	} else if n.parent != Nil {
		t.nodes[n.parent].firstChild = n.next
	}
	if n.next != Nil {
		t.nodes[n.next].prev = n.prev
	} else if n.parent != Nil {
		t.nodes[n.parent].lastChild = n.prev
	}
	n.parent, n.prev, n.next = Nil, Nil, Nil
}

// IsBlank reports whether id is a text node made only of XML whitespace.
func (t *Tree) IsBlank(id NodeID) bool {
	n := &t.nodes[id]
	if n.Kind != TextNode {
		return false
	}
	return strings.Trim(n.Data, " \t\r\n") == ""
}

// Attr returns the attribute of element id whose qualified name is qname.
func (t *Tree) Attr(id NodeID, qname string) (Attr, bool) {
	for _, a := range t.nodes[id].Attrs {
		if a.Name.String() == qname {
			return a, true
		}
	}
	return Attr{}, false
}

// AttrValue returns the value of a with internal entity references
// replaced by their replacement text. Unknown and external references are
// kept in their "&name;" form.
func (t *Tree) AttrValue(a Attr) string {
	var sb strings.Builder
	t.writeAttrValue(&sb, a.Parts, true, false, 0)
	return sb.String()
}

// SpacePreserve reports the xml:space setting in effect for id: 1 for
// "preserve", 0 for "default" and -1 when no ancestor sets it.
func (t *Tree) SpacePreserve(id NodeID) int {
	for n := id; n != Nil; n = t.nodes[n].parent {
		if t.nodes[n].Kind != ElementNode {
			continue
		}
		if a, ok := t.Attr(n, "xml:space"); ok {
			switch t.AttrValue(a) {
			case "preserve":
				return 1
			case "default":
				return 0
			}
		}
	}
	return -1
}
