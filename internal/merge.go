package internal

import (
	"errors"
	"slices"
	"strings"

	"github.com/dmitrymomot/xmlpo/pkg/markup"
)

// splice replaces the children of id with text parsed as markup. When the
// text does not parse, the element keeps its content and a diagnostic is
// recorded. An empty translation leaves the element untouched.
func (s *pass) splice(id markup.NodeID, start, text string) {
	line := s.tree.Node(id).Line
	frag, err := markup.ParseFragment(start, text, s.tree.Entities)
	if err != nil {
		s.diagnose(DiagnosticMerge, line, text, errors.Join(ErrUntranslatable, err))
		return
	}
	root := frag.Root()
	if frag.Node(root).FirstChild() == markup.Nil {
		return
	}
	s.tree.DetachChildren(id)
	s.tree.ImportChildren(id, frag, root)
}

// attributes extracts or translates the treated attributes of element id.
func (s *pass) attributes(id markup.NodeID) {
	tx := s.p.taxonomy
	if !tx.HasAttributes() || !s.cls.worthAttr(id) {
		return
	}

	n := s.tree.Node(id)
	line := n.Line
	elem := n.Name.String()
	attrs := slices.Clone(n.Attrs)

	for _, a := range attrs {
		if !tx.IsTreated(a.Name.Local) {
			continue
		}
		key := s.key(attrText(a), false, line)

		if s.mode == modeExtract {
			loc := s.location(id)
			loc.Tag = elem + ":" + a.Name.String()
			s.store.Add(key, loc, "", false)
			continue
		}

		translation, ok := s.translate(key)
		if !ok {
			continue
		}
		if s.p.filter != nil {
			translation = s.p.filter(translation)
		}
		parts, err := s.attrParts(translation)
		if err != nil {
			s.diagnose(DiagnosticMerge, line, translation, errors.Join(ErrUntranslatable, err))
			continue
		}
		s.tree.SetAttrParts(id, a.Name.String(), parts)
	}
}

// attrText renders an attribute value as unit text: literal text is
// escaped as element content and entity references are kept.
func attrText(a markup.Attr) string {
	var sb strings.Builder
	for _, p := range a.Parts {
		if p.Entity != "" {
			sb.WriteString("&" + p.Entity + ";")
			continue
		}
		sb.WriteString(markup.EscapeText(p.Text))
	}
	return sb.String()
}

// attrParts parses a translated attribute value back into parts.
func (s *pass) attrParts(text string) ([]markup.AttrPart, error) {
	frag, err := markup.ParseFragment("attr", text, s.tree.Entities)
	if err != nil {
		return nil, err
	}

	var parts []markup.AttrPart
	for c := range frag.Children(frag.Root()) {
		n := frag.Node(c)
		switch n.Kind {
		case markup.EntityRefNode:
			parts = append(parts, markup.AttrPart{Entity: n.Name.Local})
		case markup.TextNode:
			parts = append(parts, markup.AttrPart{Text: n.Data})
		case markup.ElementNode:
			parts = append(parts, markup.AttrPart{Text: frag.TextContent(c)})
		}
	}
	if len(parts) == 0 {
		parts = []markup.AttrPart{{}}
	}
	return parts, nil
}
