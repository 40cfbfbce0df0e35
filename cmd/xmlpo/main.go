// Command xmlpo extracts translatable text from XML documents into a PO
// catalog and merges translations back.
//
// Usage:
//
//	xmlpo -o book.pot chapter1.xml chapter2.xml   # extract a catalog
//	xmlpo -p de.po chapter1.xml > chapter1.de.xml # merge a PO catalog
//	xmlpo -t de.mo -o chapter1.de.xml chapter1.xml
//	xmlpo -p de.po -save-mo de.mo -o chapter2.de.xml chapter2.xml
//	xmlpo -r chapter1.de.xml -o de.po chapter1.xml # recover a catalog
//	xmlpo -config xmlpo.yaml chapter1.xml
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/xmlpo"
	"github.com/dmitrymomot/xmlpo/pkg/catalog"
	"github.com/dmitrymomot/xmlpo/pkg/logger"
	"github.com/dmitrymomot/xmlpo/pkg/sanitizer"
	"github.com/dmitrymomot/xmlpo/pkg/taxonomy"
	"github.com/dmitrymomot/xmlpo/pkg/tm"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := 0
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		code = 1
	}
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("xmlpo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: xmlpo [flags] XMLFILE...")
		fs.PrintDefaults()
	}

	var f config
	configPath := fs.String("config", "", "path to YAML config file")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.BoolVar(&f.AutomaticTags, "a", false, "decide automatically which tags are final")
	fs.BoolVar(&f.KeepEntities, "k", false, "do not expand entities")
	fs.BoolVar(&f.ExpandAllEntities, "e", false, "expand all entities, including SYSTEM ones")
	fs.StringVar(&f.Format, "m", "docbook", "built-in tag taxonomy: "+strings.Join(taxonomy.Formats(), ", "))
	fs.StringVar(&f.Taxonomy, "taxonomy", "", "YAML tag taxonomy file, overrides -m")
	fs.StringVar(&f.Output, "o", "-", "output file, - for stdout")
	fs.StringVar(&f.PO, "p", "", "PO catalog to merge")
	fs.StringVar(&f.MO, "t", "", "MO catalog to merge")
	fs.StringVar(&f.SaveMO, "save-mo", "", "also write the -p catalog compiled to MO")
	fs.StringVar(&f.Reuse, "r", "", "translated document with the same structure to take translations from")
	fs.StringVar(&f.Language, "l", "", "target language, defaults to the catalog file name")
	fs.BoolVar(&f.MarkUntranslated, "mark-untranslated", false, `set xml:lang="C" on untranslated elements`)
	fs.StringVar(&f.Project, "project", "", "Project-Id-Version of extracted catalogs")
	fs.StringVar(&f.Memory.SQLite, "tm", "", "SQLite translation memory consulted after the catalog")
	fs.StringVar(&f.Memory.Redis, "redis", "", "Redis URL of a shared translation memory")
	fs.BoolVar(&f.Memory.Import, "tm-import", false, "store the catalog's translations in the translation memory")
	fs.BoolVar(&f.Sanitize.Enabled, "sanitize", false, "strip unexpected markup from translations")
	fs.IntVar(&f.Concurrency, "j", 0, "documents parsed at once")
	fs.StringVar(&f.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, "xmlpo", version)
		return nil
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(fl *flag.Flag) { overlay(&cfg, f, fl.Name) })
	if err := cfg.validate(); err != nil {
		return err
	}

	docs := fs.Args()
	switch {
	case len(docs) == 0:
		return errNoInput
	case cfg.merging() && len(docs) > 1:
		return errMergeOneFile
	case cfg.merging() && cfg.Reuse != "":
		return errReuseInMerge
	}

	if cfg.Language, err = targetLanguage(cfg); err != nil {
		return err
	}

	log, flush, err := newLogger(stderr, cfg)
	if err != nil {
		return err
	}
	defer flush(2 * time.Second)

	opts, cleanup, err := processorOptions(ctx, cfg, log)
	defer cleanup()
	if err != nil {
		log.ErrorContext(ctx, "setup failed", slog.String("error", err.Error()))
		return err
	}

	p, err := xmlpo.New(opts...)
	if err != nil {
		return err
	}

	var (
		buf    bytes.Buffer
		report *xmlpo.Report
	)
	if cfg.merging() {
		report, err = p.Merge(ctx, docs[0], &buf)
	} else {
		report, err = p.ExtractReuse(ctx, cfg.Reuse, docs...)
		if err == nil {
			err = p.WriteCatalog(&buf, report)
		}
	}
	if err != nil {
		log.ErrorContext(ctx, "run failed", slog.String("error", err.Error()))
		return err
	}
	if n := len(report.Diagnostics); n > 0 {
		log.WarnContext(ctx, "run finished with diagnostics",
			slog.String("run_id", report.RunID),
			slog.Int("diagnostics", n))
	}

	return writeOutput(cfg.Output, stdout, buf.Bytes())
}

// overlay copies the flag called name from f to cfg.
func overlay(cfg *config, f config, name string) {
	switch name {
	case "a":
		cfg.AutomaticTags = f.AutomaticTags
	case "k":
		cfg.KeepEntities = f.KeepEntities
	case "e":
		cfg.ExpandAllEntities = f.ExpandAllEntities
	case "m":
		cfg.Format = f.Format
	case "taxonomy":
		cfg.Taxonomy = f.Taxonomy
	case "o":
		cfg.Output = f.Output
	case "p":
		cfg.PO, cfg.MO = f.PO, ""
	case "t":
		cfg.MO, cfg.PO = f.MO, ""
	case "save-mo":
		cfg.SaveMO = f.SaveMO
	case "r":
		cfg.Reuse = f.Reuse
	case "l":
		cfg.Language = f.Language
	case "mark-untranslated":
		cfg.MarkUntranslated = f.MarkUntranslated
	case "project":
		cfg.Project = f.Project
	case "tm":
		cfg.Memory.SQLite, cfg.Memory.Redis = f.Memory.SQLite, ""
	case "redis":
		cfg.Memory.Redis, cfg.Memory.SQLite = f.Memory.Redis, ""
	case "tm-import":
		cfg.Memory.Import = f.Memory.Import
	case "sanitize":
		cfg.Sanitize.Enabled = f.Sanitize.Enabled
	case "j":
		cfg.Concurrency = f.Concurrency
	case "log-level":
		cfg.LogLevel = f.LogLevel
	}
}

// targetLanguage canonicalizes the configured language. Without one, the
// base name of the catalog is used when it is a valid tag.
func targetLanguage(cfg config) (string, error) {
	if cfg.Language != "" {
		tag, err := language.Parse(cfg.Language)
		if err != nil {
			return "", errors.Join(xmlpo.ErrInvalidLang, err)
		}
		return tag.String(), nil
	}
	name := cfg.PO
	if name == "" {
		name = cfg.MO
	}
	if name == "" {
		return "", nil
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	tag, err := language.Parse(base)
	if err != nil {
		return "", nil
	}
	return tag.String(), nil
}

func newLogger(w io.Writer, cfg config) (*slog.Logger, func(time.Duration), error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, errors.Join(errConfig, err)
	}
	sc := cfg.Sentry
	if sc.DSN == "" {
		sc.DSN = os.Getenv("SENTRY_DSN")
	}
	sc.MinLevel = level
	log, flush := logger.NewWithSentry(w, level, sc, logger.DocumentExtractor, logger.RunExtractor)
	return log, flush, nil
}

// processorOptions translates cfg into processor options. The returned
// cleanup releases opened translation memories and is never nil.
func processorOptions(ctx context.Context, cfg config, log *slog.Logger) ([]xmlpo.Option, func(), error) {
	cleanup := func() {}
	opts := []xmlpo.Option{
		xmlpo.WithLogger(log),
		xmlpo.WithLanguage(cfg.Language),
		xmlpo.WithProject(cfg.Project),
		xmlpo.WithParseConcurrency(cfg.Concurrency),
	}

	tx, err := loadTaxonomy(ctx, cfg, log)
	if err != nil {
		return nil, cleanup, err
	}
	opts = append(opts, xmlpo.WithTaxonomy(tx))

	if cfg.AutomaticTags {
		opts = append(opts, xmlpo.WithAutomaticTags())
	}
	if cfg.KeepEntities {
		opts = append(opts, xmlpo.WithKeepEntities())
	}
	if cfg.ExpandAllEntities {
		opts = append(opts, xmlpo.WithExpandAllEntities(nil))
	}
	if cfg.MarkUntranslated {
		opts = append(opts, xmlpo.WithMarkUntranslated())
	}
	if cfg.Sanitize.Enabled {
		opts = append(opts, xmlpo.WithTranslationFilter(sanitizer.Markup(sanitizer.TranslationPolicy(cfg.Sanitize.Inline...))))
	}

	cat, err := readCatalog(cfg)
	if err != nil {
		return nil, cleanup, err
	}
	if cat != nil {
		opts = append(opts, xmlpo.WithLookup(cat))
	}
	if cfg.SaveMO != "" && cat != nil {
		if err := writeMO(cfg.SaveMO, cat); err != nil {
			return nil, cleanup, err
		}
		log.DebugContext(ctx, "catalog compiled", slog.String("path", cfg.SaveMO), slog.Int("entries", cat.Len()))
	}

	mem, err := openMemory(ctx, cfg, log)
	if err != nil || mem == nil {
		return opts, cleanup, err
	}
	cleanup = func() {
		if err := mem.Close(); err != nil {
			log.WarnContext(ctx, "failed to close translation memory", slog.String("error", err.Error()))
		}
	}
	if cfg.Language == "" {
		return nil, cleanup, errLanguageMissing
	}

	if cfg.Memory.Import && cat != nil {
		n, err := tm.Import(ctx, mem, cfg.Language, cat)
		if err != nil {
			return nil, cleanup, err
		}
		log.InfoContext(ctx, "catalog imported into translation memory",
			slog.String("lang", cfg.Language),
			slog.Int("entries", n))
	}
	if cfg.merging() {
		opts = append(opts, xmlpo.WithLookup(tm.Lookup(ctx, mem, cfg.Language, log)))
	}
	return opts, cleanup, nil
}

// loadTaxonomy returns nil for an unknown format, which makes the
// processor classify elements automatically.
func loadTaxonomy(ctx context.Context, cfg config, log *slog.Logger) (*taxonomy.Taxonomy, error) {
	if cfg.Taxonomy != "" {
		return taxonomy.LoadFile(cfg.Taxonomy)
	}
	tx, ok := taxonomy.Lookup(cfg.Format)
	if !ok {
		log.WarnContext(ctx, "unknown format, classifying tags automatically", slog.String("format", cfg.Format))
		return nil, nil
	}
	return tx, nil
}

func readCatalog(cfg config) (*catalog.Catalog, error) {
	name, read := cfg.PO, catalog.ReadPO
	if cfg.MO != "" {
		name, read = cfg.MO, catalog.ReadMO
	}
	if name == "" {
		return nil, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cat, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cat, nil
}

func writeMO(name string, cat *catalog.Catalog) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	return errors.Join(catalog.WriteMO(f, cat), f.Close())
}

func openMemory(ctx context.Context, cfg config, log *slog.Logger) (tm.Memory, error) {
	switch {
	case cfg.Memory.SQLite != "":
		return tm.OpenSQLite(ctx, cfg.Memory.SQLite, tm.WithLogger(log))
	case cfg.Memory.Redis != "":
		opts := []tm.Option{tm.WithLogger(log)}
		if cfg.Memory.Prefix != "" {
			opts = append(opts, tm.WithPrefix(cfg.Memory.Prefix))
		}
		return tm.OpenRedis(ctx, cfg.Memory.Redis, opts...)
	default:
		return nil, nil
	}
}

// writeOutput writes data to stdout for "-" and to the named file
// otherwise. Nothing is written when a run fails.
func writeOutput(name string, stdout io.Writer, data []byte) error {
	if name == "-" {
		_, err := stdout.Write(data)
		return err
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	_, werr := f.Write(data)
	return errors.Join(werr, f.Close())
}
