package markup

import (
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\r", "&#13;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)

	declEncodingPattern = regexp.MustCompile(`encoding\s*=\s*["'][^"']*["']`)
	charRefPattern      = regexp.MustCompile(`&(#[0-9]+|#x[0-9A-Fa-f]+|[^\s&;#<>"'=]+);`)
)

// EscapeText escapes s for use as element content.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// EscapeAttr escapes s for use inside a double-quoted attribute value.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// WriteTo serializes the whole document.
func (t *Tree) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	t.write(&sb, t.doc)
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Bytes serializes the whole document.
func (t *Tree) Bytes() []byte {
	var sb strings.Builder
	t.write(&sb, t.doc)
	return []byte(sb.String())
}

// String serializes id and its subtree.
func (t *Tree) String(id NodeID) string {
	var sb strings.Builder
	t.write(&sb, id)
	return sb.String()
}

// InnerString serializes the children of id.
func (t *Tree) InnerString(id NodeID) string {
	var sb strings.Builder
	for c := range t.Children(id) {
		t.write(&sb, c)
	}
	return sb.String()
}

// TextContent concatenates the text below id. Internal entity references
// contribute their replacement text.
func (t *Tree) TextContent(id NodeID) string {
	var sb strings.Builder
	t.Walk(id, func(n NodeID) bool {
		node := &t.nodes[n]
		switch node.Kind {
		case TextNode:
			sb.WriteString(node.Data)
		case EntityRefNode:
			sb.WriteString(t.expandText("&"+node.Name.Local+";", 0))
		case CommentNode, ProcInstNode, DocTypeNode:
			return false
		}
		return true
	})
	return sb.String()
}

// StartTag returns the element name followed by its serialized attributes,
// without angle brackets. With expandEntities internal entity references
// in attribute values are written as their replacement text.
func (t *Tree) StartTag(id NodeID, expandEntities bool) string {
	n := &t.nodes[id]
	var sb strings.Builder
	sb.WriteString(n.Name.String())
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name.String())
		sb.WriteString(`="`)
		t.writeAttrValue(&sb, a.Parts, false, expandEntities, 0)
		sb.WriteByte('"')
	}
	return sb.String()
}

// writeAttrValue writes attribute parts. With decoded the plain value is
// produced; otherwise text is escaped for a start tag and, when expand is
// set, internal entities are written as their raw replacement text.
func (t *Tree) writeAttrValue(sb *strings.Builder, parts []AttrPart, decoded, expand bool, depth int) {
	for _, p := range parts {
		if p.Entity == "" {
			if decoded {
				sb.WriteString(p.Text)
			} else {
				sb.WriteString(EscapeAttr(p.Text))
			}
			continue
		}
		ent, ok := t.Entities[p.Entity]
		switch {
		case ok && ent.Kind == InternalEntity && decoded:
			sb.WriteString(t.expandText(ent.Value, depth+1))
		case ok && ent.Kind == InternalEntity && expand:
			sb.WriteString(ent.Value)
		default:
			sb.WriteString("&" + p.Entity + ";")
		}
	}
}

// expandText decodes references in raw replacement text. Unknown and
// external entities stay in reference form.
func (t *Tree) expandText(s string, depth int) string {
	if depth > defaultMaxEntityDepth {
		return s
	}
	return charRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[1 : len(ref)-1]
		if strings.HasPrefix(name, "#") {
			var (
				v   uint64
				err error
			)
			if strings.HasPrefix(name, "#x") {
				v, err = strconv.ParseUint(name[2:], 16, 32)
			} else {
				v, err = strconv.ParseUint(name[1:], 10, 32)
			}
			if err != nil {
				return ref
			}
			return string(rune(v))
		}
		if r, ok := predefinedEntities[name]; ok {
			return r
		}
		if ent, ok := t.Entities[name]; ok && ent.Kind == InternalEntity {
			return t.expandText(ent.Value, depth+1)
		}
		return ref
	})
}

func (t *Tree) write(sb *strings.Builder, id NodeID) {
	type item struct {
		id    NodeID
		close bool
	}
	stack := []item{{id: id}}
	pushChildren := func(n NodeID) {
		for c := t.nodes[n].lastChild; c != Nil; c = t.nodes[c].prev {
			stack = append(stack, item{id: c})
		}
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[it.id]

		if it.close {
			sb.WriteString("</")
			sb.WriteString(n.Name.String())
			sb.WriteByte('>')
			continue
		}

		switch n.Kind {
		case DocumentNode:
			pushChildren(it.id)
		case ElementNode:
			sb.WriteByte('<')
			sb.WriteString(t.StartTag(it.id, false))
			if n.firstChild == Nil {
				if n.SelfClosing {
					sb.WriteString("/>")
				} else {
					sb.WriteString("></")
					sb.WriteString(n.Name.String())
					sb.WriteByte('>')
				}
				continue
			}
			sb.WriteByte('>')
			stack = append(stack, item{id: it.id, close: true})
			pushChildren(it.id)
		case TextNode:
			sb.WriteString(EscapeText(n.Data))
		case CommentNode:
			sb.WriteString("<!--")
			sb.WriteString(n.Data)
			sb.WriteString("-->")
		case EntityRefNode:
			sb.WriteByte('&')
			sb.WriteString(n.Name.Local)
			sb.WriteByte(';')
		case ProcInstNode:
			sb.WriteString("<?")
			sb.WriteString(n.Name.Local)
			data := n.Data
			if n.Name.Local == "xml" && t.recoded {
				data = declEncodingPattern.ReplaceAllString(data, `encoding="UTF-8"`)
			}
			if data != "" {
				sb.WriteByte(' ')
				sb.WriteString(data)
			}
			sb.WriteString("?>")
		case DocTypeNode:
			sb.WriteString("<!")
			sb.WriteString(n.Data)
			sb.WriteByte('>')
		}
	}
}
