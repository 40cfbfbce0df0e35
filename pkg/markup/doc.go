// Package markup provides the XML document tree used by the extraction and
// merge engine.
//
// Documents are parsed into an arena: every node lives in a single slice owned
// by its Tree and is addressed by a NodeID. Parent, child and sibling links are
// indices into that slice, so walking up or down the tree never chases live
// pointers and side tables (classification caches, annotations) can be plain
// slices indexed by NodeID.
//
// # Parsing
//
//	tree, err := markup.Parse(r, markup.WithPath("guide.xml"))
//	if err != nil {
//		return err
//	}
//
// Entity references are kept as EntityRef nodes unless WithEntityExpansion is
// given. Declarations from the internal DTD subset are available through
// Tree.Entities, and each Entity reports whether it is an internal value or an
// external (SYSTEM/PUBLIC) entity. Documents that declare a legacy encoding
// are decoded to UTF-8 through golang.org/x/net/html/charset before parsing.
//
// # Fragments
//
// ParseFragment parses a piece of markup wrapped in a synthetic start tag,
// resolving references against an entity table captured from another
// document:
//
//	frag, err := markup.ParseFragment("norm", text, tree.Entities)
//	inner := frag.InnerString(frag.Root())
//
// # Serialization
//
// WriteTo reproduces the document byte for byte for untouched content, with a
// few declared normalizations: attribute values are always double-quoted,
// CDATA sections become escaped text, character references become characters
// and '>' in text is written as "&gt;". Parsing and serialization both use
// explicit stacks, so nesting depth is bounded by memory rather than by the
// goroutine stack.
package markup
