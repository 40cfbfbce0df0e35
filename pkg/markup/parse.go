package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/net/html/charset"
)

// References are smuggled through encoding/xml as noncharacter-delimited
// names so they can be rebuilt as EntityRef nodes.
const (
	refOpen  = "\uFDD0"
	refClose = "\uFDD1"

	defaultMaxEntityDepth = 16
)

var (
	refPattern      = regexp.MustCompile(`&([^\s&;#<>"'=]+);`)
	encodingPattern = regexp.MustCompile(`^\s*<\?xml[^>]*?encoding\s*=\s*["']([A-Za-z0-9._:\-]+)["']`)
	textDeclPattern = regexp.MustCompile(`^\s*<\?xml[^>]*\?>`)
)

type parseConfig struct {
	resolver fs.FS
	path     string
	maxDepth int
	expand   bool
}

// ParseOption configures Parse and ParseFragment.
type ParseOption func(*parseConfig)

// WithPath records the source path on the tree and in syntax errors.
func WithPath(p string) ParseOption {
	return func(c *parseConfig) {
		c.path = p
	}
}

// WithEntityExpansion replaces references to internal entities, and to
// external entities the resolver can read, by their parsed content.
// References that cannot be resolved stay EntityRef nodes.
func WithEntityExpansion() ParseOption {
	return func(c *parseConfig) {
		c.expand = true
	}
}

// WithResolver sets the file system SYSTEM identifiers of external
// entities are read from during expansion.
func WithResolver(fsys fs.FS) ParseOption {
	return func(c *parseConfig) {
		c.resolver = fsys
	}
}

// WithMaxEntityDepth bounds nested entity expansion. Default: 16.
func WithMaxEntityDepth(n int) ParseOption {
	return func(c *parseConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

func newParseConfig(opts []ParseOption) *parseConfig {
	cfg := &parseConfig{maxDepth: defaultMaxEntityDepth}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Parse reads a whole XML document.
func Parse(r io.Reader, opts ...ParseOption) (*Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("markup: read document: %w", err)
	}
	return ParseBytes(src, opts...)
}

// ParseString parses a document held in a string.
func ParseString(s string, opts ...ParseOption) (*Tree, error) {
	return ParseBytes([]byte(s), opts...)
}

// ParseBytes parses a document held in memory.
func ParseBytes(src []byte, opts ...ParseOption) (*Tree, error) {
	cfg := newParseConfig(opts)

	utf8src, enc, recoded, err := toUTF8(src)
	if err != nil {
		return nil, &SyntaxError{Err: err, Path: cfg.path, Line: 1}
	}

	b := newBuilder(cfg, true, 0)
	b.tree.Path = cfg.path
	b.tree.Encoding = enc
	b.tree.recoded = recoded
	if err := b.run(utf8src); err != nil {
		return nil, err
	}
	return b.tree, nil
}

// ParseFragment parses content wrapped in a synthetic element. startTag is
// the element name optionally followed by serialized attributes, as
// returned by Tree.StartTag. References resolve against entities. The
// wrapper element is the Root of the returned tree.
func ParseFragment(startTag, content string, entities map[string]*Entity, opts ...ParseOption) (*Tree, error) {
	return parseFragment(newParseConfig(opts), startTag, content, entities, 0)
}

func parseFragment(cfg *parseConfig, startTag, content string, entities map[string]*Entity, depth int) (*Tree, error) {
	name := startTag
	if i := strings.IndexFunc(startTag, unicode.IsSpace); i >= 0 {
		name = startTag[:i]
	}

	b := newBuilder(cfg, false, depth)
	for k, v := range entities {
		b.tree.Entities[k] = v
	}
	src := "<" + startTag + ">" + content + "</" + name + ">"
	if err := b.run([]byte(src)); err != nil {
		return nil, err
	}
	return b.tree, nil
}

type builder struct {
	cfg      *parseConfig
	tree     *Tree
	stack    []NodeID
	lines    []int
	depth    int
	document bool
}

func newBuilder(cfg *parseConfig, document bool, depth int) *builder {
	return &builder{
		cfg:      cfg,
		tree:     newTree(),
		depth:    depth,
		document: document,
	}
}

func (b *builder) run(src []byte) error {
	for i, c := range src {
		if c == '\n' {
			b.lines = append(b.lines, i)
		}
	}

	d := xml.NewDecoder(bytes.NewReader(src))
	d.Strict = true
	d.Entity = referenceMap(src)
	// Input is already UTF-8; the declaration may still name another charset.
	d.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) {
		return in, nil
	}

	doc := b.tree.doc
	b.stack = append(b.stack[:0], doc)
	sawRoot := false

	for {
		off := d.InputOffset()
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return b.syntaxError(err, off)
		}

		parent := b.stack[len(b.stack)-1]
		line := b.lineAt(off)

		switch tok := tok.(type) {
		case xml.StartElement:
			if parent == doc {
				if sawRoot {
					return b.errorAt(ErrExtraContent, off)
				}
				sawRoot = true
			}
			attrs, err := b.attrs(tok.Attr)
			if err != nil {
				return b.errorAt(err, off)
			}
			end := d.InputOffset()
			id := b.tree.alloc(Node{
				Kind:        ElementNode,
				Name:        Name{Space: tok.Name.Space, Local: tok.Name.Local},
				Attrs:       attrs,
				Line:        line,
				SelfClosing: bytes.HasSuffix(src[off:end], []byte("/>")),
			})
			b.tree.AppendChild(parent, id)
			b.stack = append(b.stack, id)

		case xml.EndElement:
			closing := Name{Space: tok.Name.Space, Local: tok.Name.Local}
			if parent == doc {
				return b.errorAt(fmt.Errorf("%w: unexpected </%s>", ErrMismatchedTag, closing), off)
			}
			if open := b.tree.nodes[parent].Name; open != closing {
				return b.errorAt(fmt.Errorf("%w: <%s> closed by </%s>", ErrMismatchedTag, open, closing), off)
			}
			b.stack = b.stack[:len(b.stack)-1]

		case xml.CharData:
			data := string(tok)
			if parent == doc && strings.TrimSpace(data) != "" {
				return b.errorAt(ErrExtraContent, off)
			}
			if err := b.text(parent, data, line); err != nil {
				return b.errorAt(err, off)
			}

		case xml.Comment:
			b.appendNode(parent, Node{Kind: CommentNode, Data: string(tok), Line: line})

		case xml.ProcInst:
			b.appendNode(parent, Node{Kind: ProcInstNode, Name: Name{Local: tok.Target}, Data: string(tok.Inst), Line: line})

		case xml.Directive:
			body := string(tok)
			if strings.HasPrefix(body, "DOCTYPE") {
				parseEntityDecls(body, b.tree.Entities)
			}
			b.appendNode(parent, Node{Kind: DocTypeNode, Data: body, Line: line})
		}
	}

	if len(b.stack) > 1 {
		open := b.tree.nodes[b.stack[len(b.stack)-1]].Name
		return b.errorAt(fmt.Errorf("%w: <%s>", ErrUnclosed, open), int64(len(src)))
	}
	if !sawRoot {
		return b.errorAt(ErrNoRoot, int64(len(src)))
	}
	return nil
}

func (b *builder) appendNode(parent NodeID, n Node) NodeID {
	id := b.tree.alloc(n)
	b.tree.AppendChild(parent, id)
	return id
}

// appendText merges with a preceding text sibling so adjacent character
// data always forms one node.
func (b *builder) appendText(parent NodeID, data string, line int) {
	if last := b.tree.nodes[parent].lastChild; last != Nil && b.tree.nodes[last].Kind == TextNode {
		b.tree.nodes[last].Data += data
		return
	}
	b.appendNode(parent, Node{Kind: TextNode, Data: data, Line: line})
}

func (b *builder) text(parent NodeID, data string, line int) error {
	for data != "" {
		i := strings.Index(data, refOpen)
		if i < 0 {
			b.appendText(parent, data, line)
			return nil
		}
		if i > 0 {
			b.appendText(parent, data[:i], line)
		}
		rest := data[i+len(refOpen):]
		j := strings.Index(rest, refClose)
		if j < 0 {
			b.appendText(parent, data[i:], line)
			return nil
		}
		if err := b.reference(parent, rest[:j], line); err != nil {
			return err
		}
		data = rest[j+len(refClose):]
	}
	return nil
}

func (b *builder) reference(parent NodeID, name string, line int) error {
	if b.cfg.expand {
		value, ok, err := b.replacement(name)
		if err != nil {
			return err
		}
		if ok {
			frag, err := parseFragment(b.cfg, "entity", value, b.tree.Entities, b.depth+1)
			if err != nil {
				return fmt.Errorf("expanding &%s;: %w", name, err)
			}
			b.tree.ImportChildren(parent, frag, frag.Root())
			return nil
		}
	}
	b.appendNode(parent, Node{Kind: EntityRefNode, Name: Name{Local: name}, Line: line})
	return nil
}

// replacement returns the replacement text of an entity when it can be
// expanded at parse time.
func (b *builder) replacement(name string) (string, bool, error) {
	ent, ok := b.tree.Entities[name]
	if !ok {
		return "", false, nil
	}
	if b.depth >= b.cfg.maxDepth {
		return "", false, fmt.Errorf("%w: &%s;", ErrEntityDepth, name)
	}
	switch ent.Kind {
	case InternalEntity:
		return ent.Value, true, nil
	case ExternalParsedEntity:
		if b.cfg.resolver == nil || ent.SystemID == "" {
			return "", false, nil
		}
		data, err := fs.ReadFile(b.cfg.resolver, path.Clean(ent.SystemID))
		if err != nil {
			return "", false, nil
		}
		data, _, _, err = toUTF8(data)
		if err != nil {
			return "", false, nil
		}
		return textDeclPattern.ReplaceAllString(string(data), ""), true, nil
	default:
		return "", false, nil
	}
}

func (b *builder) attrs(in []xml.Attr) ([]Attr, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]Attr, 0, len(in))
	for _, a := range in {
		parts, err := b.attrParts(a.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, Attr{
			Name:  Name{Space: a.Name.Space, Local: a.Name.Local},
			Parts: parts,
		})
	}
	return out, nil
}

func (b *builder) attrParts(value string) ([]AttrPart, error) {
	var parts []AttrPart
	appendText := func(s string) {
		if s == "" {
			return
		}
		if n := len(parts); n > 0 && parts[n-1].Entity == "" {
			parts[n-1].Text += s
			return
		}
		parts = append(parts, AttrPart{Text: s})
	}

	for value != "" {
		i := strings.Index(value, refOpen)
		if i < 0 {
			appendText(value)
			break
		}
		appendText(value[:i])
		rest := value[i+len(refOpen):]
		j := strings.Index(rest, refClose)
		if j < 0 {
			appendText(value[i:])
			break
		}
		name := rest[:j]
		value = rest[j+len(refClose):]

		if b.cfg.expand {
			if ent, ok := b.tree.Entities[name]; ok && ent.Kind == InternalEntity {
				if b.depth >= b.cfg.maxDepth {
					return nil, fmt.Errorf("%w: &%s;", ErrEntityDepth, name)
				}
				frag, err := parseFragment(b.cfg, "entity", ent.Value, b.tree.Entities, b.depth+1)
				if err != nil {
					return nil, fmt.Errorf("expanding &%s;: %w", name, err)
				}
				appendText(frag.TextContent(frag.Root()))
				continue
			}
		}
		parts = append(parts, AttrPart{Entity: name})
	}
	if len(parts) == 0 {
		parts = []AttrPart{{}}
	}
	return parts, nil
}

func (b *builder) lineAt(off int64) int {
	return sort.SearchInts(b.lines, int(off)) + 1
}

func (b *builder) errorAt(err error, off int64) error {
	return &SyntaxError{Err: err, Path: b.cfg.path, Line: b.lineAt(off)}
}

func (b *builder) syntaxError(err error, off int64) error {
	var xerr *xml.SyntaxError
	if errors.As(err, &xerr) {
		return &SyntaxError{Err: errors.New(xerr.Msg), Path: b.cfg.path, Line: xerr.Line}
	}
	return b.errorAt(err, off)
}

// referenceMap maps every non-predefined entity name referenced in src to
// its delimited placeholder.
func referenceMap(src []byte) map[string]string {
	m := make(map[string]string)
	for _, match := range refPattern.FindAllSubmatch(src, -1) {
		name := string(match[1])
		if _, ok := predefinedEntities[name]; ok {
			continue
		}
		m[name] = refOpen + name + refClose
	}
	return m
}

// toUTF8 converts src to UTF-8 according to its byte order mark or XML
// declaration.
func toUTF8(src []byte) ([]byte, string, bool, error) {
	label := ""
	switch {
	case bytes.HasPrefix(src, []byte{0xEF, 0xBB, 0xBF}):
		src = src[3:]
	case bytes.HasPrefix(src, []byte{0xFE, 0xFF}):
		label, src = "utf-16be", src[2:]
	case bytes.HasPrefix(src, []byte{0xFF, 0xFE}):
		label, src = "utf-16le", src[2:]
	}

	declared := ""
	if label == "" {
		if m := encodingPattern.FindSubmatch(src); m != nil {
			declared = string(m[1])
			label = declared
		}
	}

	switch strings.ToLower(label) {
	case "", "utf-8", "utf8":
		return src, declared, false, nil
	}

	r, err := charset.NewReaderLabel(label, bytes.NewReader(src))
	if err != nil {
		return nil, declared, false, errors.Join(ErrCharset, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, declared, false, errors.Join(ErrCharset, err)
	}
	if declared == "" {
		if m := encodingPattern.FindSubmatch(out); m != nil {
			declared = string(m[1])
		}
	}
	return out, declared, true, nil
}
