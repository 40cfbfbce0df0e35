package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
		require.NoError(t, cfg.validate())
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "xmlpo.yaml", `
format: android
language: pt-BR
mark_untranslated: true
memory:
  sqlite: tm.db
sanitize:
  enabled: true
  inline: [b, i]
`)
		cfg, err := loadConfig(path)
		require.NoError(t, err)
		require.NoError(t, cfg.validate())
		assert.Equal(t, "android", cfg.Format)
		assert.Equal(t, "-", cfg.Output)
		assert.True(t, cfg.MarkUntranslated)
		assert.Equal(t, "tm.db", cfg.Memory.SQLite)
		assert.Equal(t, []string{"b", "i"}, cfg.Sanitize.Inline)
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()
		cfg, err := loadConfig(writeFile(t, t.TempDir(), "xmlpo.yaml", ""))
		require.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		_, err := loadConfig(writeFile(t, t.TempDir(), "xmlpo.yaml", "formatt: docbook\n"))
		require.ErrorIs(t, err, errConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml"))
		require.ErrorIs(t, err, errConfig)
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config) {}},
		{name: "both catalogs", mutate: func(c *config) { c.PO, c.MO = "de.po", "de.mo" }, wantErr: true},
		{name: "both memories", mutate: func(c *config) { c.Memory.SQLite, c.Memory.Redis = "tm.db", "redis://localhost" }, wantErr: true},
		{name: "bad redis url", mutate: func(c *config) { c.Memory.Redis = "not a url" }, wantErr: true},
		{name: "bad log level", mutate: func(c *config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "negative concurrency", mutate: func(c *config) { c.Concurrency = -1 }, wantErr: true},
		{name: "empty inline element", mutate: func(c *config) { c.Sanitize.Inline = []string{""} }, wantErr: true},
		{name: "compiled catalog without po", mutate: func(c *config) { c.SaveMO = "de.mo" }, wantErr: true},
		{name: "compiled catalog", mutate: func(c *config) { c.PO, c.SaveMO = "de.po", "de.mo" }},
		{name: "no output", mutate: func(c *config) { c.Output = "" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr {
				require.ErrorIs(t, err, errConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "xmlpo.yaml", "format: nosuchformat\nlog_level: error\n")
	doc := writeFile(t, dir, "doc.xml", `<doc><p>One</p></doc>`)

	stdout, err := runCmd(t, "-config", cfgPath, "-m", "xhtml", doc)
	require.NoError(t, err)
	assert.Contains(t, stdout, "msgid \"One\"\n")
}

func TestTargetLanguage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config
		want string
	}{
		{name: "explicit", cfg: config{Language: "pt_br"}, want: "pt-BR"},
		{name: "from po", cfg: config{PO: "po/de.po"}, want: "de"},
		{name: "from mo", cfg: config{MO: "cs.mo"}, want: "cs"},
		{name: "none", cfg: config{}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := targetLanguage(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
