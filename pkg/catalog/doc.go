// Package catalog holds translation units and reads and writes the gettext
// catalogs they are exchanged through.
//
// A Store collects units in first-seen order. Units are keyed by their
// normalized text, so visiting the same text twice adds a location to the
// existing unit instead of creating a new one:
//
//	store := catalog.NewStore()
//	store.Add("Hello", catalog.Location{File: "a.xml", Line: 3, Tag: "para"}, "", false)
//	store.Add("Hello", catalog.Location{File: "b.xml", Line: 9, Tag: "para"}, "", false)
//	err := catalog.WritePO(w, store, catalog.Header{Created: time.Now()})
//
// On the merge side a Lookup maps unit text to its translation. ReadPO and
// ReadMO build a Catalog, which implements Lookup, from PO text or a compiled
// MO file. Untranslated, fuzzy and context-qualified entries are skipped,
// matching what msgfmt compiles.
package catalog
