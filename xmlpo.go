package xmlpo

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/dmitrymomot/xmlpo/internal"
	"github.com/dmitrymomot/xmlpo/pkg/catalog"
	"github.com/dmitrymomot/xmlpo/pkg/taxonomy"
)

// Type aliases - public API
type (
	// Processor extracts translatable units and merges translations back.
	Processor = internal.Processor

	// Option configures a Processor.
	Option = internal.Option

	// Report is the result of an extraction or merge run.
	Report = internal.Report

	// Diagnostic is a non-fatal problem recorded during a run.
	Diagnostic = internal.Diagnostic

	// DiagnosticKind classifies a Diagnostic.
	DiagnosticKind = internal.DiagnosticKind
)

// Diagnostic kinds
const (
	DiagnosticNormalize = internal.DiagnosticNormalize
	DiagnosticMerge     = internal.DiagnosticMerge
	DiagnosticEntity    = internal.DiagnosticEntity
)

// Errors
var (
	ErrNoDocuments    = internal.ErrNoDocuments
	ErrReadDocument   = internal.ErrReadDocument
	ErrParseDocument  = internal.ErrParseDocument
	ErrWriteDocument  = internal.ErrWriteDocument
	ErrNoRootElement  = internal.ErrNoRootElement
	ErrInvalidLang    = internal.ErrInvalidLang
	ErrUntranslatable = internal.ErrUntranslatable
	ErrNormalize      = internal.ErrNormalize
	ErrEntity         = internal.ErrEntity
)

// New creates a processor with the given options.
func New(opts ...Option) (*Processor, error) {
	return internal.New(opts...)
}

// WithTaxonomy sets the tag taxonomy used for classification.
// Without a taxonomy, elements are classified automatically.
func WithTaxonomy(t *taxonomy.Taxonomy) Option {
	return internal.WithTaxonomy(t)
}

// WithFormat selects a built-in taxonomy by name.
// An unknown name leaves classification automatic.
//
// Example:
//
//	p, err := xmlpo.New(xmlpo.WithFormat("docbook"))
func WithFormat(name string) Option {
	t, _ := taxonomy.Lookup(name)
	return internal.WithTaxonomy(t)
}

// WithAutomaticTags classifies elements by their content.
func WithAutomaticTags() Option {
	return internal.WithAutomaticTags()
}

// WithKeepEntities keeps internal entity references in unit text.
func WithKeepEntities() Option {
	return internal.WithKeepEntities()
}

// WithExpandAllEntities expands every entity while parsing.
// External entities are read from fsys, or from the document directory
// when fsys is nil.
func WithExpandAllEntities(fsys fs.FS) Option {
	return internal.WithExpandAllEntities(fsys)
}

// WithMarkUntranslated sets xml:lang="C" on untranslated elements.
func WithMarkUntranslated() Option {
	return internal.WithMarkUntranslated()
}

// WithLanguage sets the target language.
func WithLanguage(lang string) Option {
	return internal.WithLanguage(lang)
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return internal.WithLogger(log)
}

// WithLookup adds translation sources used by merges.
func WithLookup(lookups ...catalog.Lookup) Option {
	return internal.WithLookup(lookups...)
}

// WithTranslationFilter sets a function applied to every translation.
func WithTranslationFilter(fn func(string) string) Option {
	return internal.WithTranslationFilter(fn)
}

// WithClock sets the time source for catalog headers.
func WithClock(now func() time.Time) Option {
	return internal.WithClock(now)
}

// WithParseConcurrency bounds how many documents are parsed at once.
func WithParseConcurrency(n int) Option {
	return internal.WithParseConcurrency(n)
}

// WithFS reads documents from fsys.
func WithFS(fsys fs.FS) Option {
	return internal.WithFS(fsys)
}

// WithProject sets the project name written to catalog headers.
func WithProject(name string) Option {
	return internal.WithProject(name)
}
