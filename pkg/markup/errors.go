package markup

import (
	"errors"
	"fmt"
)

var (
	ErrNoRoot        = errors.New("markup: document has no root element")
	ErrExtraContent  = errors.New("markup: content after the root element")
	ErrUnclosed      = errors.New("markup: unclosed element")
	ErrMismatchedTag = errors.New("markup: mismatched end tag")
	ErrEntityDepth   = errors.New("markup: entity expansion nested too deeply")
	ErrCharset       = errors.New("markup: unsupported document encoding")
)

// SyntaxError reports a malformed document together with the line it was
// detected on.
type SyntaxError struct {
	Err  error
	Path string
	Line int
}

func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
