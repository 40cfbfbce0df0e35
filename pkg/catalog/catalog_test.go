package catalog_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
)

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("deduplicates and keeps order", func(t *testing.T) {
		t.Parallel()
		s := catalog.NewStore()
		require.True(t, s.Add("Hello", catalog.Location{File: "a.xml", Line: 1, Tag: "para"}, "", false))
		require.True(t, s.Add("World", catalog.Location{File: "a.xml", Line: 2, Tag: "para"}, "first", false))
		require.True(t, s.Add("Hello", catalog.Location{File: "b.xml", Line: 7, Tag: "title"}, "late", true))
		require.False(t, s.Add(" \n\t", catalog.Location{File: "b.xml", Line: 8}, "", false))

		units := s.Units()
		require.Len(t, units, 2)
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, "Hello", units[0].Text)
		assert.Equal(t, "World", units[1].Text)
		assert.Equal(t, []catalog.Location{
			{File: "a.xml", Line: 1, Tag: "para"},
			{File: "b.xml", Line: 7, Tag: "title"},
		}, units[0].Locations)
		assert.Equal(t, "late", units[0].Comment)
		assert.True(t, units[0].Preserve)
		assert.Equal(t, "first", units[1].Comment)

		u, ok := s.Get("World")
		require.True(t, ok)
		assert.Equal(t, "World", u.Text)
		_, ok = s.Get("missing")
		assert.False(t, ok)
	})

	t.Run("first comment wins", func(t *testing.T) {
		t.Parallel()
		s := catalog.NewStore()
		s.Add("x", catalog.Location{File: "a", Line: 1}, "one", false)
		s.Add("x", catalog.Location{File: "a", Line: 2}, "two", false)
		u, _ := s.Get("x")
		assert.Equal(t, "one", u.Comment)
	})

	t.Run("positional reuse", func(t *testing.T) {
		t.Parallel()
		s := catalog.NewStore()
		loc := catalog.Location{File: "en.xml"}
		s.Add("One", loc, "", false)
		s.Add("Two", loc, "", false)
		s.Add("One", loc, "", false)
		s.Add("Same", loc, "", false)

		s.BeginReuse()
		require.True(t, s.Reusing())
		s.Add("Eins", catalog.Location{File: "de.xml"}, "", false)
		s.AddReuse("Zwei")
		s.AddReuse("Einz")
		s.AddReuse("Same")
		s.AddReuse("overflow")

		units := s.Units()
		require.Len(t, units, 3)
		assert.Equal(t, "Eins", units[0].Translation)
		assert.Equal(t, "Zwei", units[1].Translation)
		assert.Empty(t, units[2].Translation)
		assert.Len(t, units[0].Locations, 2)
	})
}

func TestLocationString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a.xml:3(para)", catalog.Location{File: "a.xml", Line: 3, Tag: "para"}.String())
	assert.Equal(t, "a.xml:0", catalog.Location{File: "a.xml"}.String())
}

func TestWritePO(t *testing.T) {
	t.Parallel()

	s := catalog.NewStore()
	s.Add("Hello \"world\"", catalog.Location{File: "a.xml", Line: 3, Tag: "para"}, "Greeting\nsecond line", false)
	s.Add("Hello \"world\"", catalog.Location{File: "b.xml", Line: 4, Tag: "para"}, "", false)
	s.Add("line one\n  line two", catalog.Location{File: "a.xml", Line: 9, Tag: "screen"}, "", true)

	var buf bytes.Buffer
	created := time.Date(2024, 5, 6, 7, 8, 0, 0, time.UTC)
	require.NoError(t, catalog.WritePO(&buf, s, catalog.Header{Created: created, Language: "de"}))

	want := `msgid ""
msgstr ""
"Project-Id-Version: PACKAGE VERSION\n"
"POT-Creation-Date: 2024-05-06 07:08+0000\n"
"PO-Revision-Date: YEAR-MO-DA HO:MI+ZONE\n"
"Last-Translator: FULL NAME <EMAIL@ADDRESS>\n"
"Language-Team: LANGUAGE <LL@li.org>\n"
"Language: de\n"
"MIME-Version: 1.0\n"
"Content-Type: text/plain; charset=UTF-8\n"
"Content-Transfer-Encoding: 8bit\n"

#. Greeting
#. second line
#: a.xml:3(para) b.xml:4(para)
msgid "Hello \"world\""
msgstr ""

#: a.xml:9(screen)
#, no-wrap
msgid ""
"line one\n"
"  line two"
msgstr ""

`
	assert.Equal(t, want, buf.String())

	c, err := catalog.ReadPO(&buf)
	require.NoError(t, err)
	assert.Equal(t, "de", c.Language)
	assert.Equal(t, 0, c.Len())
}

func TestReadPO(t *testing.T) {
	t.Parallel()

	const po = `# translator comment
msgid ""
msgstr ""
"Language: fr\n"

#: a.xml:1(para)
msgid "Hello"
msgstr "Bonjour"

msgid ""
"multi "
"line"
msgstr "multi ligne"

#, fuzzy
msgid "Fuzzy"
msgstr "Flou"

msgid "Empty"
msgstr ""

msgctxt "menu"
msgid "File"
msgstr "Fichier"

msgid "apple"
msgid_plural "apples"
msgstr[0] "pomme"
msgstr[1] "pommes"
#~ msgid "Old"
#~ msgstr "Vieux"
msgid "Tab\there"
msgstr "Tab\tici"`

	c, err := catalog.ReadPO(strings.NewReader(po))
	require.NoError(t, err)
	assert.Equal(t, "fr", c.Language)

	tests := []struct {
		name string
		id   string
		want string
		ok   bool
	}{
		{name: "simple", id: "Hello", want: "Bonjour", ok: true},
		{name: "continuation lines", id: "multi line", want: "multi ligne", ok: true},
		{name: "fuzzy skipped", id: "Fuzzy"},
		{name: "untranslated skipped", id: "Empty"},
		{name: "context skipped", id: "File"},
		{name: "plural first form", id: "apple", want: "pomme", ok: true},
		{name: "obsolete skipped", id: "Old"},
		{name: "escapes", id: "Tab\there", want: "Tab\tici", ok: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := c.Lookup(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = catalog.ReadPO(strings.NewReader("msgid Hello\n"))
	require.ErrorIs(t, err, catalog.ErrInvalidPO)
	_, err = catalog.ReadPO(strings.NewReader("garbage\n"))
	require.ErrorIs(t, err, catalog.ErrInvalidPO)
}

func TestMO(t *testing.T) {
	t.Parallel()

	src := catalog.NewCatalog()
	src.Set("Hello", "Hallo")
	src.Set("<placeholder-1/> world", "<placeholder-1/> Welt")
	src.Set("ignored", "")

	var buf bytes.Buffer
	require.NoError(t, catalog.WriteMO(&buf, src))

	c, err := catalog.ReadMO(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	got, ok := c.Lookup("<placeholder-1/> world")
	require.True(t, ok)
	assert.Equal(t, "<placeholder-1/> Welt", got)

	var ids []string
	for id := range c.All() {
		ids = append(ids, id)
	}
	assert.Equal(t, []string{"<placeholder-1/> world", "Hello"}, ids)

	_, err = catalog.ParseMO([]byte("short"))
	require.ErrorIs(t, err, catalog.ErrInvalidMO)
	_, err = catalog.ParseMO(make([]byte, 40))
	require.ErrorIs(t, err, catalog.ErrInvalidMO)
}

func TestLookups(t *testing.T) {
	t.Parallel()

	m := catalog.MapLookup{"a": "A"}
	f := catalog.LookupFunc(func(s string) (string, bool) {
		if s == "b" {
			return "B", true
		}
		return "", false
	})
	chain := catalog.Chain(nil, m, f)

	got, ok := chain.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, "A", got)
	got, ok = chain.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "B", got)
	_, ok = chain.Lookup("c")
	assert.False(t, ok)
}

func TestEscapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		po   string
	}{
		{name: "quotes", in: `say "hi"`, po: `say \"hi\"`},
		{name: "backslash", in: `a\b`, po: `a\\b`},
		{name: "control", in: "a\nb\tc", po: `a\nb\tc`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.po, catalog.EscapePO(tt.in))
			assert.Equal(t, tt.in, catalog.UnescapePO(tt.po))
		})
	}

	assert.Equal(t, `it\'s \"x\"`, catalog.EscapeBackslashes(`it's "x"`))
	assert.Equal(t, `Hallo <xliff:g id="user">%s</xliff:g>, it\'s <b/>\"x\"`,
		catalog.EscapeMarkupBackslashes(`Hallo <xliff:g id="user">%s</xliff:g>, it's <b/>"x"`))
	assert.Equal(t, `it's "x"`, catalog.UnescapeBackslashes(`it\'s \"x\"`))
}
