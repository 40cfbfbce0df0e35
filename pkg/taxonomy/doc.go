// Package taxonomy describes how a document format maps onto translation
// units: which elements are atomic units (final), which are ignored, which
// attributes carry translatable text and which elements keep their
// whitespace.
//
// Built-in formats are embedded YAML documents:
//
//	tx, ok := taxonomy.Lookup("docbook")
//	if !ok {
//		// fall back to automatic classification
//	}
//
// Custom formats are loaded with LoadFile or Load and validated with
// go-playground/validator before use.
//
// A taxonomy also selects the hooks run around a document: PreProcess before
// extraction and PostProcess after a merge, which sets the document language
// and, for DocBook, records translator credits.
package taxonomy
