package internal

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
	"github.com/dmitrymomot/xmlpo/pkg/logger"
	"github.com/dmitrymomot/xmlpo/pkg/markup"
	"github.com/dmitrymomot/xmlpo/pkg/taxonomy"
)

const defaultParseConcurrency = 4

// Processor extracts translatable units from documents and merges
// translations back. It holds configuration only; every run gets its own
// state, so one Processor may serve concurrent runs.
type Processor struct {
	taxonomy    *taxonomy.Taxonomy
	hooks       taxonomy.Hooks
	lookup      catalog.Lookup
	lookups     []catalog.Lookup
	filter      func(string) string
	log         *slog.Logger
	now         func() time.Time
	resolver    fs.FS
	fsys        fs.FS
	lang        string
	project     string
	parallelism int

	automatic        bool
	keepEntities     bool
	expandAll        bool
	markUntranslated bool
}

// New creates a processor with the given options.
// Without a taxonomy, elements are classified automatically.
//
// Example:
//
//	p, err := xmlpo.New(
//	    xmlpo.WithTaxonomy(taxonomy.MustLookup("docbook")),
//	    xmlpo.WithLanguage("pt-BR"),
//	)
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		log:         logger.NewNope(),
		now:         time.Now,
		parallelism: defaultParseConcurrency,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.lang != "" {
		tag, err := language.Parse(p.lang)
		if err != nil {
			return nil, errors.Join(ErrInvalidLang, err)
		}
		p.lang = tag.String()
	}
	if p.taxonomy == nil {
		p.automatic = true
	}
	p.hooks = p.taxonomy.Hooks()

	switch len(p.lookups) {
	case 0:
	case 1:
		p.lookup = p.lookups[0]
	default:
		p.lookup = catalog.Chain(p.lookups...)
	}
	return p, nil
}

// Language returns the canonical target language, if one was set.
func (p *Processor) Language() string {
	return p.lang
}

func (p *Processor) newReport() *Report {
	return &Report{RunID: uuid.NewString()}
}

// Extract collects the units of the documents at paths into one store.
// Documents are parsed concurrently and traversed in the order given.
func (p *Processor) Extract(ctx context.Context, paths ...string) (*Report, error) {
	return p.ExtractReuse(ctx, "", paths...)
}

// ExtractReuse works like Extract and additionally takes the translations
// of the units from reusePath, an already translated copy of the same
// documents. Translations are matched by the order in which units are
// visited, not by their text.
func (p *Processor) ExtractReuse(ctx context.Context, reusePath string, paths ...string) (*Report, error) {
	if len(paths) == 0 {
		return nil, ErrNoDocuments
	}
	all := slices.Clone(paths)
	if reusePath != "" {
		all = append(all, reusePath)
	}

	report := p.newReport()
	ctx = logger.WithRunID(ctx, report.RunID)

	trees, err := p.parseAll(ctx, all)
	if err != nil {
		return nil, err
	}
	var reuse *markup.Tree
	if reusePath != "" {
		reuse = trees[len(trees)-1]
		trees = trees[:len(trees)-1]
	}
	if err := p.extract(ctx, report, trees, reuse); err != nil {
		return nil, err
	}
	return report, nil
}

// ExtractTrees collects the units of already parsed documents. Each tree's
// Path is used in catalog references.
func (p *Processor) ExtractTrees(ctx context.Context, trees ...*markup.Tree) (*Report, error) {
	if len(trees) == 0 {
		return nil, ErrNoDocuments
	}
	report := p.newReport()
	ctx = logger.WithRunID(ctx, report.RunID)
	if err := p.extract(ctx, report, trees, nil); err != nil {
		return nil, err
	}
	return report, nil
}

func (p *Processor) extract(ctx context.Context, report *Report, trees []*markup.Tree, reuse *markup.Tree) error {
	store := catalog.NewStore()
	report.Store = store

	for _, tree := range trees {
		p.hooks.PreProcess(tree)
		if err := p.traverse(ctx, tree, modeExtract, report); err != nil {
			return err
		}
	}

	if tx := p.taxonomy; tx != nil && tx.StringForTranslators != "" {
		loc := catalog.Location{File: trees[len(trees)-1].Path}
		store.Add(tx.StringForTranslators, loc, tx.CommentForTranslators, false)
	}

	if reuse != nil {
		store.BeginReuse()
		if err := p.traverse(ctx, reuse, modeExtract, report); err != nil {
			return err
		}
	}

	p.log.InfoContext(ctx, "extraction finished",
		slog.Int("documents", len(report.Documents)),
		slog.Int("units", store.Len()),
		slog.Int("diagnostics", len(report.Diagnostics)),
	)
	return nil
}

// Merge translates the document at path and writes the result to w. The
// translations come from the lookups given to New.
func (p *Processor) Merge(ctx context.Context, path string, w io.Writer) (*Report, error) {
	report := p.newReport()
	ctx = logger.WithRunID(ctx, report.RunID)

	trees, err := p.parseAll(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	tree := trees[0]
	if err := p.merge(ctx, report, tree); err != nil {
		return nil, err
	}
	if _, err := tree.WriteTo(w); err != nil {
		return nil, errors.Join(ErrWriteDocument, err)
	}
	return report, nil
}

// MergeTree translates tree in place.
func (p *Processor) MergeTree(ctx context.Context, tree *markup.Tree) (*Report, error) {
	report := p.newReport()
	ctx = logger.WithRunID(ctx, report.RunID)
	if err := p.merge(ctx, report, tree); err != nil {
		return nil, err
	}
	return report, nil
}

func (p *Processor) merge(ctx context.Context, report *Report, tree *markup.Tree) error {
	p.hooks.PreProcess(tree)
	if err := p.traverse(ctx, tree, modeMerge, report); err != nil {
		return err
	}

	var credits string
	if tx := p.taxonomy; tx != nil && tx.StringForTranslators != "" && p.lookup != nil {
		if t, ok := p.lookup.Lookup(tx.StringForTranslators); ok && t != tx.StringForTranslators {
			credits = t
		}
	}
	p.hooks.PostProcess(tree, p.lang, credits)

	p.log.InfoContext(logger.WithDocument(ctx, tree.Path), "merge finished",
		slog.String("lang", p.lang),
		slog.Int("diagnostics", len(report.Diagnostics)),
	)
	return nil
}

func (p *Processor) traverse(ctx context.Context, tree *markup.Tree, m mode, report *Report) error {
	ctx = logger.WithDocument(ctx, tree.Path)
	report.Documents = append(report.Documents, tree.Path)
	p.log.DebugContext(ctx, "processing document")
	return p.newPass(ctx, tree, m, report).run()
}

// WriteCatalog writes the units of report as a PO catalog.
func (p *Processor) WriteCatalog(w io.Writer, report *Report) error {
	if report == nil || report.Store == nil {
		return ErrNoDocuments
	}
	return catalog.WritePO(w, report.Store, catalog.Header{
		Project:  p.project,
		Language: p.lang,
		Created:  p.now(),
	})
}

// parseAll parses documents concurrently. The result is in input order.
func (p *Processor) parseAll(ctx context.Context, paths []string) ([]*markup.Tree, error) {
	trees := make([]*markup.Tree, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, name := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := p.parse(name)
			if err != nil {
				return err
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return trees, nil
}

func (p *Processor) parse(name string) (*markup.Tree, error) {
	var (
		data []byte
		err  error
	)
	if p.fsys != nil {
		data, err = fs.ReadFile(p.fsys, name)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, documentError(ErrReadDocument, name, err)
	}

	opts := []markup.ParseOption{markup.WithPath(name)}
	if p.expandAll {
		opts = append(opts, markup.WithEntityExpansion(), markup.WithResolver(p.entityResolver(name)))
	}
	tree, err := markup.ParseBytes(data, opts...)
	if err != nil {
		return nil, documentError(ErrParseDocument, name, err)
	}
	return tree, nil
}

// entityResolver returns the file system external entities of the
// document at name are read from: the resolver given to
// WithExpandAllEntities, or the directory of the document.
func (p *Processor) entityResolver(name string) fs.FS {
	if p.resolver != nil {
		return p.resolver
	}
	if p.fsys != nil {
		sub, err := fs.Sub(p.fsys, path.Dir(name))
		if err != nil {
			return nil
		}
		return sub
	}
	return os.DirFS(filepath.Dir(name))
}
