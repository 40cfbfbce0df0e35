// Package xmlpo extracts translatable text from XML documents into gettext
// PO catalogs and merges translations back into the documents.
//
// A document is split into units: elements whose content is translated as
// a whole. Nested units are replaced in their parent's text by
// <placeholder-N/> tokens, so every message a translator sees is a flat
// string of inline markup.
//
// # Quick Start
//
// Extract a catalog from DocBook sources:
//
//	p, err := xmlpo.New(
//	    xmlpo.WithFormat("docbook"),
//	    xmlpo.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//
//	report, err := p.Extract(ctx, "guide.xml", "faq.xml")
//	if err != nil {
//	    return err
//	}
//	return p.WriteCatalog(os.Stdout, report)
//
// Merge a compiled catalog back:
//
//	f, err := os.Open("de.mo")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	cat, err := catalog.ReadMO(f)
//	if err != nil {
//	    return err
//	}
//
//	p, err := xmlpo.New(
//	    xmlpo.WithFormat("docbook"),
//	    xmlpo.WithLanguage("de"),
//	    xmlpo.WithLookup(cat),
//	)
//	if err != nil {
//	    return err
//	}
//	report, err := p.Merge(ctx, "guide.xml", os.Stdout)
//
// # Classification
//
// A taxonomy names the final tags (translated as one unit), the ignored
// tags (never a unit of their own), the attributes carrying text and the
// tags preserving whitespace. Built-in taxonomies are docbook, android and
// xhtml; see package taxonomy. Without a taxonomy, or with
// [WithAutomaticTags], the outermost element holding text directly becomes
// a unit.
//
// # Diagnostics
//
// Problems local to one unit, such as a translation that is not well-formed
// markup, do not stop a run. They are logged and listed in
// [Report.Diagnostics]; [Report.Err] joins them into one error.
//
// # Translation Sources
//
// Merges accept any [catalog.Lookup]: a PO or MO catalog, a map, or a
// translation memory from package tm. Several lookups are tried in order.
package xmlpo
