package internal

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrymomot/xmlpo/pkg/catalog"
)

var (
	ErrNoDocuments    = errors.New("xmlpo: no documents given")
	ErrReadDocument   = errors.New("xmlpo: cannot read document")
	ErrParseDocument  = errors.New("xmlpo: cannot parse document")
	ErrWriteDocument  = errors.New("xmlpo: cannot write document")
	ErrNoRootElement  = errors.New("xmlpo: document has no root element")
	ErrInvalidLang    = errors.New("xmlpo: invalid language tag")
	ErrUntranslatable = errors.New("xmlpo: translation is not well-formed markup")
	ErrNormalize      = errors.New("xmlpo: text is not well-formed markup")
	ErrEntity         = errors.New("xmlpo: entity cannot be expanded")
)

// DiagnosticKind classifies a Diagnostic.
type DiagnosticKind uint8

const (
	// DiagnosticNormalize means unit text could not be parsed for
	// normalization; the raw text was used as key.
	DiagnosticNormalize DiagnosticKind = iota + 1
	// DiagnosticMerge means a translation could not be parsed; the element
	// kept its original content.
	DiagnosticMerge
	// DiagnosticEntity means an entity reference could not be expanded and
	// was kept in reference form.
	DiagnosticEntity
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticNormalize:
		return "normalize"
	case DiagnosticMerge:
		return "merge"
	case DiagnosticEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal problem found while processing a document.
// Processing continues after a diagnostic is recorded.
type Diagnostic struct {
	// Err is the underlying error.
	Err error

	// Document is the path of the document.
	Document string

	// Text is the unit text or translation involved.
	Text string

	// Line is the source line of the element involved.
	Line int

	Kind DiagnosticKind
}

func (d Diagnostic) Error() string {
	return d.Document + ":" + strconv.Itoa(d.Line) + ": " + d.Kind.String() + ": " + d.Err.Error()
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Report is the result of a run.
type Report struct {
	// Store holds the extracted units. It is nil for merge runs.
	Store *catalog.Store

	// Diagnostics lists non-fatal problems in the order they were found.
	Diagnostics []Diagnostic

	// Documents lists the processed paths in traversal order.
	Documents []string

	// RunID identifies the run in logs.
	RunID string
}

// Err joins all diagnostics into one error, or returns nil.
func (r *Report) Err() error {
	if r == nil || len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return errors.Join(errs...)
}

func documentError(sentinel error, path string, err error) error {
	return errors.Join(sentinel, fmt.Errorf("%s: %w", path, err))
}
