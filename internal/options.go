package internal

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
	"github.com/dmitrymomot/xmlpo/pkg/taxonomy"
)

// Option configures a Processor.
type Option func(*Processor)

// WithTaxonomy sets the tag taxonomy used for classification.
// Without a taxonomy, elements are classified automatically.
//
// Example:
//
//	xmlpo.New(
//	    xmlpo.WithTaxonomy(taxonomy.MustLookup("docbook")),
//	)
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return func(p *Processor) {
		p.taxonomy = t
	}
}

// WithAutomaticTags classifies elements by their content instead of the
// taxonomy's final tags. Ignored tags still apply.
func WithAutomaticTags() Option {
	return func(p *Processor) {
		p.automatic = true
	}
}

// WithKeepEntities keeps references to internal entities in unit text
// instead of expanding them.
func WithKeepEntities() Option {
	return func(p *Processor) {
		p.keepEntities = true
	}
}

// WithExpandAllEntities expands every entity while parsing, including
// external ones. SYSTEM identifiers are read from fsys; with a nil fsys
// they are resolved against the directory of each document.
//
// Example:
//
//	xmlpo.New(
//	    xmlpo.WithExpandAllEntities(os.DirFS("docs")),
//	)
func WithExpandAllEntities(fsys fs.FS) Option {
	return func(p *Processor) {
		p.expandAll = true
		p.resolver = fsys
	}
}

// WithMarkUntranslated sets xml:lang="C" on elements left untranslated by
// a merge.
func WithMarkUntranslated() Option {
	return func(p *Processor) {
		p.markUntranslated = true
	}
}

// WithLanguage sets the target language passed to the taxonomy hooks.
// The tag is validated and canonicalized by New.
func WithLanguage(lang string) Option {
	return func(p *Processor) {
		p.lang = lang
	}
}

// WithLogger sets the logger. Default: a logger discarding all output.
func WithLogger(log *slog.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.log = log
		}
	}
}

// WithLookup sets the translation source used by Merge. Several sources
// are tried in order.
func WithLookup(lookups ...catalog.Lookup) Option {
	return func(p *Processor) {
		p.lookups = append(p.lookups, lookups...)
	}
}

// WithTranslationFilter sets a function applied to every translation found
// during a merge before it is spliced into the document.
func WithTranslationFilter(fn func(string) string) Option {
	return func(p *Processor) {
		p.filter = fn
	}
}

// WithClock sets the time source for the catalog creation date.
// Default: time.Now
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithParseConcurrency bounds how many documents are parsed at once.
// Default: 4
func WithParseConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// WithFS reads documents from fsys instead of the operating system.
// Paths must then be valid fs.FS paths.
func WithFS(fsys fs.FS) Option {
	return func(p *Processor) {
		p.fsys = fsys
	}
}

// WithProject sets the Project-Id-Version written to catalog headers.
func WithProject(name string) Option {
	return func(p *Processor) {
		p.project = name
	}
}
