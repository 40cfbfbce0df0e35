// Package internal provides the core engine for the xmlpo module.
//
// This package is internal and should not be used directly. Import
// "github.com/dmitrymomot/xmlpo" instead, which re-exports the public API.
//
// # Core Types
//
//   - Processor: Drives extraction and merge runs over parsed documents
//   - Option: Functional option configuring a Processor
//   - Report: Result of a run: the unit store, diagnostics and the run id
//   - Diagnostic: A non-fatal problem found while processing a document
//
// # Classification
//
// Every element of a document is classified before it is traversed. An
// element is final when its whole subtree is translated as one unit: either
// its name is listed in the taxonomy's final tags, or all of its non-blank
// children are final themselves. In automatic mode an element is final
// when it has a non-blank text child and no ancestor does.
//
// An element is worth outputting when it carries text of its own and no
// final ancestor already emits a unit containing it. Final children of a
// unit are replaced by numbered placeholders:
//
//	<para>Hello <b>world</b>!</para>
//
// yields the unit "Hello <placeholder-1/>!" when b is final, and the unit
// "world" for the b element itself.
//
// # Extraction
//
//	p := internal.New(internal.WithTaxonomy(taxonomy.MustLookup("docbook")))
//	report, err := p.Extract(ctx, "chapter1.xml", "chapter2.xml")
//	if err != nil {
//	    return err
//	}
//	err = p.WriteCatalog(os.Stdout, report)
//
// Documents are parsed concurrently and traversed in input order, so the
// catalog is deterministic.
//
// # Merge
//
//	po, _ := catalog.ReadPO(f)
//	p := internal.New(internal.WithLookup(po), internal.WithLanguage("de"))
//	report, err := p.Merge(ctx, "chapter1.xml", os.Stdout)
//
// A translation that does not parse as markup leaves the original content
// of its element in place and is recorded as a Diagnostic.
package internal
