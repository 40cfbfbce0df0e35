package catalog

import (
	"iter"
	"maps"
	"slices"
)

// Lookup supplies translations keyed by normalized unit text.
type Lookup interface {
	Lookup(text string) (string, bool)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(text string) (string, bool)

func (f LookupFunc) Lookup(text string) (string, bool) {
	return f(text)
}

// MapLookup is an in-memory Lookup.
type MapLookup map[string]string

func (m MapLookup) Lookup(text string) (string, bool) {
	s, ok := m[text]
	return s, ok
}

// Chain consults each lookup in turn and returns the first hit.
func Chain(lookups ...Lookup) Lookup {
	return LookupFunc(func(text string) (string, bool) {
		for _, l := range lookups {
			if l == nil {
				continue
			}
			if s, ok := l.Lookup(text); ok {
				return s, true
			}
		}
		return "", false
	})
}

// Catalog is a compiled set of translations.
type Catalog struct {
	// Language is taken from the "Language" header field, if present.
	Language string
	// Header holds the raw header entry.
	Header string

	entries map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]string)}
}

// Set stores a translation. Empty translations are ignored.
func (c *Catalog) Set(id, str string) {
	if id == "" || str == "" {
		return
	}
	c.entries[id] = str
}

func (c *Catalog) Lookup(text string) (string, bool) {
	s, ok := c.entries[text]
	return s, ok
}

// Len returns the number of translations.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// All iterates translations ordered by source text.
func (c *Catalog) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, id := range slices.Sorted(maps.Keys(c.entries)) {
			if !yield(id, c.entries[id]) {
				return
			}
		}
	}
}

func (c *Catalog) setHeader(header string) {
	c.Header = header
	c.Language = headerField(header, "Language")
}
