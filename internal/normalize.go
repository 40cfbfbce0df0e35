package internal

import (
	"regexp"
	"strings"

	"github.com/dmitrymomot/xmlpo/pkg/markup"
	"github.com/dmitrymomot/xmlpo/pkg/taxonomy"
)

var whitespaceRun = regexp.MustCompile(`[ \t\n\r\f\v]+`)

// normalize turns unit text into its catalog key. The text is parsed as
// markup against entities; whitespace runs in text collapse to one space,
// blank text nodes are dropped and one leading and one trailing space are
// removed. Elements that preserve space are left untouched.
//
// With expand, internal entity references are replaced by their content and
// every blank text node is dropped. Without it, a blank text node survives
// when it separates two non-blank siblings.
func normalize(text string, entities map[string]*markup.Entity, tx *taxonomy.Taxonomy, expand bool) (string, error) {
	var opts []markup.ParseOption
	if expand {
		opts = append(opts, markup.WithEntityExpansion())
	}
	frag, err := markup.ParseFragment("norm", text, entities, opts...)
	if err != nil {
		return text, err
	}
	root := frag.Root()

	frag.Walk(root, func(id markup.NodeID) bool {
		n := frag.Node(id)
		switch n.Kind {
		case markup.ElementNode:
			return id == root || !(frag.SpacePreserve(id) == 1 || tx.IsSpacePreserve(n.Name.String()))
		case markup.TextNode:
			if !frag.IsBlank(id) {
				n.Data = whitespaceRun.ReplaceAllString(n.Data, " ")
				return false
			}
			prev, next := n.PrevSibling(), n.NextSibling()
			between := prev != markup.Nil && !frag.IsBlank(prev) && next != markup.Nil && !frag.IsBlank(next)
			if expand || !between {
				n.Data = ""
			}
		}
		return false
	})

	out := frag.InnerString(root)
	out = strings.TrimPrefix(out, " ")
	return strings.TrimSuffix(out, " "), nil
}
