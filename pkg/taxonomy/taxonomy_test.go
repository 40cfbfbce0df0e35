package taxonomy_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/xmlpo/pkg/markup"
	"github.com/dmitrymomot/xmlpo/pkg/taxonomy"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	require.NoError(t, taxonomy.BuiltinError())
	assert.Equal(t, []string{"android", "docbook", "xhtml"}, taxonomy.Formats())

	t.Run("docbook", func(t *testing.T) {
		t.Parallel()
		tx, ok := taxonomy.Lookup("docbook")
		require.True(t, ok)
		assert.True(t, tx.IsFinal("para"))
		assert.True(t, tx.IsIgnored("itemizedlist"))
		assert.True(t, tx.IsSpacePreserve("screen"))
		assert.False(t, tx.IsFinal("emphasis"))
		assert.Equal(t, taxonomy.DocBookCredits, tx.StringForTranslators)
		assert.False(t, tx.HasAttributes())
	})

	t.Run("android", func(t *testing.T) {
		t.Parallel()
		tx, ok := taxonomy.Lookup("ANDROID")
		require.True(t, ok)
		assert.True(t, tx.BackslashEscapes)
		assert.Equal(t, "name", tx.ReferenceAttribute)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		tx, ok := taxonomy.Lookup("nope")
		assert.False(t, ok)
		assert.Nil(t, tx)
		assert.Panics(t, func() { taxonomy.MustLookup("nope") })
	})

	t.Run("returns independent copies", func(t *testing.T) {
		t.Parallel()
		a := taxonomy.MustLookup("xhtml")
		a.FinalTags[0] = "changed"
		b := taxonomy.MustLookup("xhtml")
		assert.NotEqual(t, "changed", b.FinalTags[0])
	})
}

func TestNilTaxonomy(t *testing.T) {
	t.Parallel()

	var tx *taxonomy.Taxonomy
	assert.False(t, tx.IsFinal("para"))
	assert.False(t, tx.IsIgnored("para"))
	assert.False(t, tx.IsTreated("alt"))
	assert.False(t, tx.IsSpacePreserve("pre"))
	assert.NotNil(t, tx.Hooks())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{
			name: "valid",
			src:  "name: custom\nfinal_tags: [p, 'd:note']\ntreated_attributes: [alt]\n",
		},
		{
			name:    "missing name",
			src:     "final_tags: [p]\n",
			wantErr: taxonomy.ErrInvalid,
		},
		{
			name:    "bad tag name",
			src:     "name: x\nfinal_tags: ['1p']\n",
			wantErr: taxonomy.ErrInvalid,
		},
		{
			name:    "comment without string",
			src:     "name: x\ncomment_for_translators: hi\n",
			wantErr: taxonomy.ErrInvalid,
		},
		{
			name:    "unknown hooks",
			src:     "name: x\nhooks: fancy\n",
			wantErr: taxonomy.ErrInvalid,
		},
		{
			name:    "unknown field",
			src:     "name: x\nfinals: [p]\n",
			wantErr: taxonomy.ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tx, err := taxonomy.Load(strings.NewReader(tt.src))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tx.IsFinal("d:note"))
			assert.True(t, tx.IsTreated("alt"))
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	name := filepath.Join(dir, "fmt.yaml")
	require.NoError(t, os.WriteFile(name, []byte("name: file\nfinal_tags: [msg]\n"), 0o600))

	tx, err := taxonomy.LoadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "file", tx.Name)

	_, err = taxonomy.LoadFile(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, taxonomy.ErrRead)
}

func TestIsXMLName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"p", "d:note", "_x", "a-b.c1"} {
		assert.True(t, taxonomy.IsXMLName(name), name)
	}
	for _, name := range []string{"", "1a", "-a", "a b", "a>"} {
		assert.False(t, taxonomy.IsXMLName(name), name)
	}
}

func TestHooks(t *testing.T) {
	t.Parallel()

	const src = `<article><articleinfo><title>T</title><copyright><year>2001</year><holder>Author</holder></copyright><author>A</author></articleinfo><para>x</para></article>`

	t.Run("docbook adds translator copyright", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(src)
		require.NoError(t, err)

		hooks := taxonomy.MustLookup("docbook").Hooks()
		hooks.PreProcess(tree)
		hooks.PostProcess(tree, "de", "Jan Novak <jan@example.com>, 2024\nEva, 2023, 2024")

		want := `<article lang="de"><articleinfo><title>T</title>` +
			`<copyright><year>2001</year><holder>Author</holder></copyright>` +
			`<copyright><year>2024</year><holder>Jan Novak (jan@example.com)</holder></copyright>` +
			`<copyright><year>2023, 2024</year><holder>Eva</holder></copyright>` +
			`<author>A</author></articleinfo><para>x</para></article>`
		assert.Equal(t, want, string(tree.Bytes()))
	})

	t.Run("docbook skips untranslated credits", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(src)
		require.NoError(t, err)

		taxonomy.MustLookup("docbook").Hooks().PostProcess(tree, "fr", taxonomy.DocBookCredits)
		assert.Equal(t, strings.Replace(src, "<article>", `<article lang="fr">`, 1), string(tree.Bytes()))
	})

	t.Run("default hooks only set the language", func(t *testing.T) {
		t.Parallel()
		tree, err := markup.ParseString(`<html><body/></html>`)
		require.NoError(t, err)

		taxonomy.MustLookup("xhtml").Hooks().PostProcess(tree, "pl", "ignored")
		assert.Equal(t, `<html lang="pl"><body/></html>`, string(tree.Bytes()))
	})
}
