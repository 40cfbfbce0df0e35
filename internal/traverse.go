package internal

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
	"github.com/dmitrymomot/xmlpo/pkg/markup"
)

type mode uint8

const (
	modeExtract mode = iota + 1
	modeMerge
)

// placeholder is a final child of a unit, replaced in the unit text by
// <placeholder-N/> where N is its 1-based position in the table.
type placeholder struct {
	start       string
	content     string
	end         string
	translation string
	changed     bool
}

// frame is one element being processed. Elements that start a new unit own
// their placeholder table; inline elements share the table of the unit
// they belong to.
type frame struct {
	node    markup.NodeID
	next    markup.NodeID
	table   *[]placeholder
	out     strings.Builder
	tag     string
	restart bool
	discard bool
}

// pass is one traversal of one document.
type pass struct {
	ctx      context.Context
	p        *Processor
	tree     *markup.Tree
	report   *Report
	store    *catalog.Store
	lookup   catalog.Lookup
	cls      classes
	entities map[string]string
	path     string
	mode     mode
}

func (p *Processor) newPass(ctx context.Context, tree *markup.Tree, m mode, report *Report) *pass {
	return &pass{
		ctx:      ctx,
		p:        p,
		tree:     tree,
		report:   report,
		store:    report.Store,
		lookup:   p.lookup,
		cls:      classify(tree, p.taxonomy, p.automatic),
		entities: make(map[string]string),
		path:     tree.Path,
		mode:     m,
	}
}

// run processes every top-level element of the document.
func (s *pass) run() error {
	root := s.tree.Root()
	if root == markup.Nil {
		return documentError(ErrParseDocument, s.path, ErrNoRootElement)
	}
	for child := range s.tree.Children(s.tree.Document()) {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		if s.tree.Node(child).Kind == markup.ElementNode {
			s.unit(child)
		}
	}
	return nil
}

func (s *pass) open(id markup.NodeID, parent *frame) *frame {
	n := s.tree.Node(id)
	f := &frame{
		node: id,
		next: n.FirstChild(),
		tag:  s.tree.StartTag(id, !s.p.keepEntities),
	}
	switch {
	case parent == nil:
		f.restart = true
		f.table = new([]placeholder)
		f.discard = !s.cls.final(id) && !s.cls.worth(id)
	case s.isPlaceholder(id):
		f.restart = true
		f.table = new([]placeholder)
	default:
		f.table = parent.table
		f.discard = parent.discard
	}
	s.attributes(id)
	return f
}

func (s *pass) isPlaceholder(id markup.NodeID) bool {
	return s.tree.Node(id).Kind == markup.ElementNode && (s.cls.final(id) || s.cls.worth(id))
}

// unit processes the element root and its subtree.
func (s *pass) unit(root markup.NodeID) {
	stack := []*frame{s.open(root, nil)}
	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if child := f.next; child != markup.Nil {
			f.next = s.tree.Node(child).NextSibling()
			if s.tree.Node(child).Kind == markup.ElementNode {
				stack = append(stack, s.open(child, f))
			} else if !f.discard {
				f.out.WriteString(s.inline(child))
			}
			continue
		}

		stack = stack[:len(stack)-1]
		ph := s.close(f)
		if len(stack) == 0 {
			return
		}
		parent := stack[len(stack)-1]
		if f.restart {
			*parent.table = append(*parent.table, ph)
			if !parent.discard {
				parent.out.WriteString("<placeholder-" + strconv.Itoa(len(*parent.table)) + "/>")
			}
		} else if !parent.discard {
			parent.out.WriteString(element(f.tag, ph.content, ph.end))
		}
	}
}

// close finishes an element once all of its children are processed.
func (s *pass) close(f *frame) placeholder {
	n := s.tree.Node(f.node)
	ph := placeholder{
		content: f.out.String(),
		end:     n.Name.String(),
		start:   f.tag,
	}
	if !f.restart || f.discard {
		return ph
	}

	line := n.Line
	worth := s.cls.worth(f.node)
	preserve := s.cls.preserve(f.node)

	if s.mode == modeExtract {
		ph.translation = ph.content
		if worth {
			key := s.key(ph.content, preserve, line)
			s.store.Add(key, s.location(f.node), s.comment(f.node), preserve)
		}
		return ph
	}

	translation, found := s.translate(s.key(ph.content, preserve, line))
	if found {
		if s.p.filter != nil {
			translation = s.p.filter(translation)
		}
		if s.p.taxonomy != nil && s.p.taxonomy.BackslashEscapes {
			translation = catalog.EscapeMarkupBackslashes(translation)
		}
	} else {
		translation = ph.content
		if worth && s.p.markUntranslated {
			s.tree.SetLang(f.node, "C")
		}
	}
	ph.start = s.tree.StartTag(f.node, !s.p.keepEntities)

	changed := found
	for i, child := range *f.table {
		changed = changed || child.changed
		token := "<placeholder-" + strconv.Itoa(i+1) + "/>"
		translation = strings.ReplaceAll(translation, token, element(child.start, child.translation, child.end))
	}
	ph.translation = translation
	ph.changed = changed

	if worth && changed {
		s.splice(f.node, ph.start, translation)
	}
	return ph
}

// element renders an element in unit text. Empty elements are written
// self-closing.
func element(start, content, end string) string {
	if content == "" {
		return "<" + start + "/>"
	}
	return "<" + start + ">" + content + "</" + end + ">"
}

// inline renders a non-element child inside unit text. Comments and
// declarations are dropped.
func (s *pass) inline(id markup.NodeID) string {
	n := s.tree.Node(id)
	switch n.Kind {
	case markup.TextNode:
		return markup.EscapeText(n.Data)
	case markup.EntityRefNode:
		return s.entity(id)
	case markup.ProcInstNode:
		return s.tree.String(id)
	default:
		return ""
	}
}

// entity renders a reference. Internal entities are expanded unless
// entities are kept; undeclared, external and unparsed entities stay
// references.
func (s *pass) entity(id markup.NodeID) string {
	n := s.tree.Node(id)
	name := n.Name.Local
	ref := "&" + name + ";"

	ent, ok := s.tree.Entities[name]
	if s.p.keepEntities || !ok || ent.External() {
		return ref
	}
	if text, ok := s.entities[name]; ok {
		return text
	}

	frag, err := markup.ParseFragment("norm", ref, s.tree.Entities, markup.WithEntityExpansion())
	if err != nil {
		s.diagnose(DiagnosticEntity, n.Line, ref, errors.Join(ErrEntity, err))
		s.entities[name] = ref
		return ref
	}
	text := frag.InnerString(frag.Root())
	s.entities[name] = text
	return text
}

// key returns the catalog key of unit text.
func (s *pass) key(text string, preserve bool, line int) string {
	if s.p.taxonomy != nil && s.p.taxonomy.BackslashEscapes {
		text = catalog.UnescapeBackslashes(text)
	}
	if preserve {
		return text
	}
	key, err := normalize(text, s.tree.Entities, s.p.taxonomy, !s.p.keepEntities)
	if err != nil {
		s.diagnose(DiagnosticNormalize, line, text, errors.Join(ErrNormalize, err))
	}
	return key
}

// translate looks key up. A translation equal to its key counts as
// missing.
func (s *pass) translate(key string) (string, bool) {
	if s.lookup == nil || strings.TrimSpace(key) == "" {
		return "", false
	}
	t, ok := s.lookup.Lookup(key)
	if !ok || t == "" || t == key {
		return "", false
	}
	return t, true
}

func (s *pass) location(id markup.NodeID) catalog.Location {
	n := s.tree.Node(id)
	tag := n.Name.String()
	if s.p.taxonomy != nil && s.p.taxonomy.ReferenceAttribute != "" {
		if a, ok := s.tree.Attr(id, s.p.taxonomy.ReferenceAttribute); ok {
			if v := s.tree.AttrValue(a); v != "" {
				tag = v
			}
		}
	}
	return catalog.Location{File: s.path, Line: n.Line, Tag: tag}
}

// comment returns the comment immediately preceding id, skipping
// whitespace.
func (s *pass) comment(id markup.NodeID) string {
	for c := s.tree.Node(id).PrevSibling(); c != markup.Nil; c = s.tree.Node(c).PrevSibling() {
		n := s.tree.Node(c)
		switch {
		case n.Kind == markup.TextNode && strings.TrimSpace(n.Data) == "":
			continue
		case n.Kind == markup.CommentNode:
			return strings.TrimSpace(n.Data)
		}
		return ""
	}
	return ""
}

func (s *pass) diagnose(kind DiagnosticKind, line int, text string, err error) {
	d := Diagnostic{Kind: kind, Document: s.path, Line: line, Text: text, Err: err}
	s.report.Diagnostics = append(s.report.Diagnostics, d)
	s.p.log.WarnContext(s.ctx, "xmlpo diagnostic",
		slog.String("kind", kind.String()),
		slog.Int("line", line),
		slog.String("text", text),
		slog.String("error", err.Error()),
	)
}
