package markup_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/xmlpo/pkg/markup"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE book [
<!ENTITY prod "Widget">
<!ENTITY legal SYSTEM "legal.xml">
]>
<book lang="en"><title>Hello &prod; world</title><!-- note --><para/><empty></empty><?pi data?></book>
`

func firstElement(t *testing.T, tree *markup.Tree, parent markup.NodeID, name string) markup.NodeID {
	t.Helper()
	for c := range tree.Children(parent) {
		n := tree.Node(c)
		if n.Kind == markup.ElementNode && n.Name.Local == name {
			return c
		}
	}
	t.Fatalf("element %q not found", name)
	return markup.Nil
}

func TestParseRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{name: "document with doctype and entities", src: sampleDoc},
		{name: "escaped text", src: `<a>x &amp; y &lt; z</a>`},
		{name: "namespaced names", src: `<d:doc xmlns:d="urn:d"><d:p d:id="1">t</d:p></d:doc>`},
		{name: "whitespace outside root", src: "\n<a>\n  <b/>\n</a>\n\n"},
		{name: "attribute entities", src: `<!DOCTYPE a [<!ENTITY e "E">]><a t="&e; and &e;"/>`},
		{name: "undeclared entity", src: `<a>see &unknown;</a>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tree, err := markup.ParseString(tt.src)
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = tree.WriteTo(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.src, buf.String())
		})
	}
}

func TestParseNormalizations(t *testing.T) {
	t.Parallel()

	t.Run("single quotes become double quotes", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(`<a b='x "y"'/>`)
		require.NoError(t, err)
		assert.Equal(t, `<a b="x &quot;y&quot;"/>`, string(tree.Bytes()))
	})

	t.Run("greater-than in text is escaped", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(`<a>1 > 0</a>`)
		require.NoError(t, err)
		assert.Equal(t, `<a>1 &gt; 0</a>`, string(tree.Bytes()))
	})

	t.Run("character references become characters", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(`<a>&#233;&#x41;</a>`)
		require.NoError(t, err)
		assert.Equal(t, `<a>éA</a>`, string(tree.Bytes()))
	})
}

func TestParseEntities(t *testing.T) {
	t.Parallel()

	t.Run("keeps references as nodes", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(sampleDoc)
		require.NoError(t, err)

		require.Contains(t, tree.Entities, "prod")
		assert.Equal(t, markup.InternalEntity, tree.Entities["prod"].Kind)
		assert.Equal(t, "Widget", tree.Entities["prod"].Value)
		assert.True(t, tree.Entities["legal"].External())
		assert.Equal(t, "legal.xml", tree.Entities["legal"].SystemID)

		title := firstElement(t, tree, tree.Root(), "title")
		var kinds []markup.Kind
		for c := range tree.Children(title) {
			kinds = append(kinds, tree.Node(c).Kind)
		}
		assert.Equal(t, []markup.Kind{markup.TextNode, markup.EntityRefNode, markup.TextNode}, kinds)
		assert.Equal(t, "Hello Widget world", tree.TextContent(title))
	})

	t.Run("expands internal entities", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(sampleDoc, markup.WithEntityExpansion())
		require.NoError(t, err)

		title := firstElement(t, tree, tree.Root(), "title")
		assert.Equal(t, "Hello Widget world", tree.InnerString(title))
		assert.Equal(t, markup.Nil, tree.Node(tree.Node(title).FirstChild()).NextSibling())
	})

	t.Run("expands external entities through the resolver", func(t *testing.T) {
		t.Parallel()
		fsys := fstest.MapFS{
			"legal.xml": {Data: []byte(`<?xml version="1.0"?><b>All rights</b> reserved`)},
		}
		src := `<!DOCTYPE a [<!ENTITY legal SYSTEM "legal.xml">]><a>&legal;</a>`
		tree, err := markup.ParseString(src, markup.WithEntityExpansion(), markup.WithResolver(fsys))
		require.NoError(t, err)
		assert.Equal(t, "<b>All rights</b> reserved", tree.InnerString(tree.Root()))
	})

	t.Run("keeps external entities without resolver", func(t *testing.T) {
		t.Parallel()
		src := `<!DOCTYPE a [<!ENTITY legal SYSTEM "legal.xml">]><a>&legal;</a>`
		tree, err := markup.ParseString(src, markup.WithEntityExpansion())
		require.NoError(t, err)
		assert.Equal(t, "&legal;", tree.InnerString(tree.Root()))
	})

	t.Run("rejects recursive entities", func(t *testing.T) {
		t.Parallel()
		src := `<!DOCTYPE a [<!ENTITY x "&y;"><!ENTITY y "&x;">]><a>&x;</a>`
		_, err := markup.ParseString(src, markup.WithEntityExpansion())
		require.ErrorIs(t, err, markup.ErrEntityDepth)
	})

	t.Run("attribute values", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(`<!DOCTYPE a [<!ENTITY e "Widget">]><a title="&e; x"/>`)
		require.NoError(t, err)

		root := tree.Root()
		a, ok := tree.Attr(root, "title")
		require.True(t, ok)
		assert.Equal(t, []markup.AttrPart{{Entity: "e"}, {Text: " x"}}, a.Parts)
		assert.Equal(t, "Widget x", tree.AttrValue(a))
		assert.Equal(t, `a title="&e; x"`, tree.StartTag(root, false))
		assert.Equal(t, `a title="Widget x"`, tree.StartTag(root, true))
	})
}

func TestParseLines(t *testing.T) {
	t.Parallel()

	tree, err := markup.ParseString("<a>\n<b/>\n\n<c/></a>", markup.WithPath("doc.xml"))
	require.NoError(t, err)
	assert.Equal(t, "doc.xml", tree.Path)

	root := tree.Root()
	assert.Equal(t, 1, tree.Node(root).Line)
	assert.Equal(t, 2, tree.Node(firstElement(t, tree, root, "b")).Line)
	assert.Equal(t, 4, tree.Node(firstElement(t, tree, root, "c")).Line)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "mismatched tag", src: "<a><b></a>", want: markup.ErrMismatchedTag},
		{name: "unclosed element", src: "<a><b></b>", want: markup.ErrUnclosed},
		{name: "empty input", src: "", want: markup.ErrNoRoot},
		{name: "two roots", src: "<a/><b/>", want: markup.ErrExtraContent},
		{name: "text after root", src: "<a/>junk", want: markup.ErrExtraContent},
		{name: "bare ampersand", src: "<a>&</a>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := markup.ParseString(tt.src, markup.WithPath("bad.xml"))
			require.Error(t, err)

			var serr *markup.SyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, "bad.xml", serr.Path)
			assert.True(t, strings.HasPrefix(err.Error(), "bad.xml:"))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestParseCharset(t *testing.T) {
	t.Parallel()

	t.Run("decodes legacy encodings", func(t *testing.T) {
		t.Parallel()
		src := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><a>caf\xe9</a>")
		tree, err := markup.ParseBytes(src)
		require.NoError(t, err)
		assert.Equal(t, "ISO-8859-1", tree.Encoding)
		assert.Equal(t, "café", tree.TextContent(tree.Root()))
		assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?><a>café</a>`, string(tree.Bytes()))
	})

	t.Run("strips utf-8 byte order mark", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseBytes([]byte("\xEF\xBB\xBF<a>x</a>"))
		require.NoError(t, err)
		assert.Equal(t, "<a>x</a>", string(tree.Bytes()))
	})

	t.Run("rejects unknown encodings", func(t *testing.T) {
		t.Parallel()
		_, err := markup.ParseString(`<?xml version="1.0" encoding="x-no-such"?><a/>`)
		require.ErrorIs(t, err, markup.ErrCharset)
	})
}

func TestParseFragment(t *testing.T) {
	t.Parallel()

	entities := map[string]*markup.Entity{
		"prod": {Name: "prod", Value: "Widget", Kind: markup.InternalEntity},
	}

	t.Run("wraps content in the start tag", func(t *testing.T) {
		t.Parallel()
		frag, err := markup.ParseFragment(`p lang="en"`, "a <b>c</b> &prod;", entities)
		require.NoError(t, err)

		root := frag.Root()
		assert.Equal(t, "p", frag.Node(root).Name.Local)
		assert.Equal(t, "a <b>c</b> &prod;", frag.InnerString(root))
		assert.Equal(t, `<p lang="en">a <b>c</b> &prod;</p>`, frag.String(root))
	})

	t.Run("expands with a borrowed entity table", func(t *testing.T) {
		t.Parallel()
		frag, err := markup.ParseFragment("norm", "a &prod;", entities, markup.WithEntityExpansion())
		require.NoError(t, err)
		assert.Equal(t, "a Widget", frag.InnerString(frag.Root()))
	})

	t.Run("reports malformed content", func(t *testing.T) {
		t.Parallel()
		_, err := markup.ParseFragment("p", "a <b>c", nil)
		require.Error(t, err)
	})
}

func TestTreeEdit(t *testing.T) {
	t.Parallel()

	tree, err := markup.ParseString(`<doc><p>old <b>text</b></p></doc>`)
	require.NoError(t, err)
	p := firstElement(t, tree, tree.Root(), "p")

	frag, err := markup.ParseFragment("p", "new <i>words</i> here", nil)
	require.NoError(t, err)

	tree.DetachChildren(p)
	tree.ImportChildren(p, frag, frag.Root())
	tree.SetLang(p, "de")
	assert.Equal(t, `<doc><p xml:lang="de">new <i>words</i> here</p></doc>`, string(tree.Bytes()))

	tree.SetText(p, "a < b")
	note := tree.AppendElement(tree.Root(), "note")
	tree.AppendText(note, "x")
	tree.SetAttr(note, "role", `"q"`)
	assert.Equal(t, `<doc><p xml:lang="de">a &lt; b</p><note role="&quot;q&quot;">x</note></doc>`, string(tree.Bytes()))

	first := tree.NewElement("first")
	tree.InsertBefore(p, first)
	assert.Equal(t, `<doc><first></first><p xml:lang="de">a &lt; b</p><note role="&quot;q&quot;">x</note></doc>`, string(tree.Bytes()))
}

func TestTreeWalk(t *testing.T) {
	t.Parallel()

	tree, err := markup.ParseString(`<a><b><c/></b><d/></a>`)
	require.NoError(t, err)

	var names []string
	for id := range tree.Descendants(tree.Root()) {
		names = append(names, tree.Node(id).Name.Local)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)

	names = names[:0]
	tree.Walk(tree.Root(), func(id markup.NodeID) bool {
		names = append(names, tree.Node(id).Name.Local)
		return tree.Node(id).Name.Local != "b"
	})
	assert.Equal(t, []string{"a", "b", "d"}, names)
}

func TestSpacePreserve(t *testing.T) {
	t.Parallel()

	tree, err := markup.ParseString(`<a xml:space="preserve"><b><c xml:space="default"/></b></a>`)
	require.NoError(t, err)

	root := tree.Root()
	b := firstElement(t, tree, root, "b")
	c := firstElement(t, tree, b, "c")
	assert.Equal(t, 1, tree.SpacePreserve(root))
	assert.Equal(t, 1, tree.SpacePreserve(b))
	assert.Equal(t, 0, tree.SpacePreserve(c))

	plain, err := markup.ParseString(`<a/>`)
	require.NoError(t, err)
	assert.Equal(t, -1, plain.SpacePreserve(plain.Root()))
}

func TestDeepNesting(t *testing.T) {
	t.Parallel()

	const depth = 5000
	src := strings.Repeat("<n>", depth) + "x" + strings.Repeat("</n>", depth)
	tree, err := markup.ParseString(src)
	require.NoError(t, err)
	assert.Equal(t, src, string(tree.Bytes()))
}
