package catalog

import (
	"strconv"
	"strings"
)

// Location is one place a unit was found.
type Location struct {
	File string
	Line int
	// Tag names the element, or "element:attribute" for attribute units.
	Tag string
}

// String formats the location as a PO reference.
func (l Location) String() string {
	s := l.File + ":" + strconv.Itoa(l.Line)
	if l.Tag != "" {
		s += "(" + l.Tag + ")"
	}
	return s
}

// Unit is one catalog entry.
type Unit struct {
	// Text is the normalized source text and the catalog key.
	Text      string
	Locations []Location
	// Comment is the first translator comment seen for the unit.
	Comment string
	// Preserve marks units whose whitespace is significant.
	Preserve bool
	// Translation is only set by positional reuse.
	Translation string
}

// Store is an insertion-ordered set of units. It is not safe for concurrent
// use.
type Store struct {
	units  []*Unit
	index  map[string]int
	visits []int

	reusing bool
	cursor  int
	filled  []bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Add records a visit of text at loc. Blank text is ignored and reported
// as false. Revisiting a key appends the location, keeps the first
// non-empty comment and ORs the whitespace flag.
func (s *Store) Add(text string, loc Location, comment string, preserve bool) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if s.reusing {
		s.AddReuse(text)
		return true
	}

	i, ok := s.index[text]
	if !ok {
		i = len(s.units)
		s.index[text] = i
		s.units = append(s.units, &Unit{Text: text})
		s.filled = append(s.filled, false)
	}
	u := s.units[i]
	u.Locations = append(u.Locations, loc)
	if u.Comment == "" {
		u.Comment = comment
	}
	u.Preserve = u.Preserve || preserve
	s.visits = append(s.visits, i)
	return true
}

// BeginReuse switches the store to positional mode: from now on every
// visit supplies the translation of the unit recorded at the same visit
// position, regardless of its text.
func (s *Store) BeginReuse() {
	s.reusing = true
	s.cursor = 0
}

// Reusing reports whether BeginReuse was called.
func (s *Store) Reusing() bool {
	return s.reusing
}

// AddReuse consumes the next visit position. The first translation offered
// for a unit wins; a translation identical to the key is kept empty.
func (s *Store) AddReuse(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	k := s.cursor
	s.cursor++
	if k >= len(s.visits) {
		return
	}
	i := s.visits[k]
	if s.filled[i] {
		return
	}
	s.filled[i] = true
	if text != s.units[i].Text {
		s.units[i].Translation = text
	}
}

// Len returns the number of distinct units.
func (s *Store) Len() int {
	return len(s.units)
}

// Units returns copies of the units in first-seen order.
func (s *Store) Units() []Unit {
	out := make([]Unit, len(s.units))
	for i, u := range s.units {
		out[i] = *u
		out[i].Locations = append([]Location(nil), u.Locations...)
	}
	return out
}

// Get returns the unit keyed by text.
func (s *Store) Get(text string) (Unit, bool) {
	i, ok := s.index[text]
	if !ok {
		return Unit{}, false
	}
	u := *s.units[i]
	u.Locations = append([]Location(nil), u.Locations...)
	return u, true
}
