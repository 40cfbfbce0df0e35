package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/xmlpo"
	"github.com/dmitrymomot/xmlpo/pkg/catalog"
)

const article = `<article><para>Hello</para><para>Bye</para></article>`

const germanPO = `msgid ""
msgstr "Content-Type: text/plain; charset=UTF-8\n"

msgid "Hello"
msgstr "Hallo"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), err
}

func TestRunExtract(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeFile(t, dir, "article.xml", article)
	out := filepath.Join(dir, "article.pot")

	stdout, err := runCmd(t, "-o", out, "-project", "demo", doc)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Project-Id-Version: demo\n"`)
	assert.Contains(t, string(data), "msgid \"Hello\"\n")
	assert.Contains(t, string(data), "msgid \"Bye\"\n")
	assert.Contains(t, string(data), "msgid \"translator-credits\"\n")
}

func TestRunMerge(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeFile(t, dir, "article.xml", article)
	po := writeFile(t, dir, "de.po", germanPO)

	t.Run("po", func(t *testing.T) {
		t.Parallel()
		stdout, err := runCmd(t, "-p", po, doc)
		require.NoError(t, err)
		assert.Contains(t, stdout, `lang="de"`)
		assert.Contains(t, stdout, "<para>Hallo</para><para>Bye</para>")
	})

	t.Run("mo", func(t *testing.T) {
		t.Parallel()
		cat, err := catalog.ReadPO(bytes.NewBufferString(germanPO))
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, catalog.WriteMO(&buf, cat))
		mo := writeFile(t, t.TempDir(), "de.mo", buf.String())

		stdout, err := runCmd(t, "-t", mo, "-mark-untranslated", doc)
		require.NoError(t, err)
		assert.Contains(t, stdout, "<para>Hallo</para>")
		assert.Contains(t, stdout, `<para xml:lang="C">Bye</para>`)
	})

	t.Run("sanitized with entities", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		doc := writeFile(t, dir, "entity.xml", `<!DOCTYPE article [<!ENTITY app "Widget">]>`+
			`<article><para>Open &app; now</para></article>`)
		po := writeFile(t, dir, "de.po", "msgid \"\"\nmsgstr \"\"\n\n"+
			"msgid \"Open &app; now\"\nmsgstr \"<b>Öffne</b> &app; jetzt\"\n")

		stdout, err := runCmd(t, "-k", "-sanitize", "-p", po, doc)
		require.NoError(t, err)
		assert.Contains(t, stdout, "<para>Öffne &app; jetzt</para>")
	})

	t.Run("compiles po", func(t *testing.T) {
		t.Parallel()
		mo := filepath.Join(t.TempDir(), "de.mo")
		_, err := runCmd(t, "-p", po, "-save-mo", mo, doc)
		require.NoError(t, err)

		f, err := os.Open(mo)
		require.NoError(t, err)
		defer f.Close()
		cat, err := catalog.ReadMO(f)
		require.NoError(t, err)
		got, ok := cat.Lookup("Hello")
		require.True(t, ok)
		assert.Equal(t, "Hallo", got)
	})

	t.Run("one document only", func(t *testing.T) {
		t.Parallel()
		_, err := runCmd(t, "-p", po, doc, doc)
		require.ErrorIs(t, err, errMergeOneFile)
	})

	t.Run("reuse rejected", func(t *testing.T) {
		t.Parallel()
		_, err := runCmd(t, "-p", po, "-r", doc, doc)
		require.ErrorIs(t, err, errReuseInMerge)
	})
}

func TestRunTranslationMemory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeFile(t, dir, "article.xml", article)
	po := writeFile(t, dir, "de.po", germanPO)
	db := filepath.Join(dir, "tm.db")

	_, err := runCmd(t, "-p", po, "-tm", db, "-tm-import", doc)
	require.NoError(t, err)

	empty := writeFile(t, t.TempDir(), "de.po", "msgid \"\"\nmsgstr \"\"\n")
	stdout, err := runCmd(t, "-p", empty, "-tm", db, doc)
	require.NoError(t, err)
	assert.Contains(t, stdout, "<para>Hallo</para>")
	assert.Contains(t, stdout, "<para>Bye</para>")
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	_, err := runCmd(t)
	require.ErrorIs(t, err, errNoInput)

	_, err = runCmd(t, filepath.Join(t.TempDir(), "missing.xml"))
	require.ErrorIs(t, err, xmlpo.ErrReadDocument)

	_, err = runCmd(t, "-l", "!!", "doc.xml")
	require.ErrorIs(t, err, xmlpo.ErrInvalidLang)

	_, err = runCmd(t, "-log-level", "loud", "doc.xml")
	require.ErrorIs(t, err, errConfig)
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	stdout, err := runCmd(t, "-version")
	require.NoError(t, err)
	assert.Equal(t, "xmlpo dev\n", stdout)
}
