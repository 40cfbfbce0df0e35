package taxonomy

import (
	"regexp"
	"strings"

	"github.com/dmitrymomot/xmlpo/pkg/markup"
)

// Hooks run once per document around a run. PreProcess sees the source
// document before extraction; PostProcess sees the merged document together
// with the target language and the translation of StringForTranslators.
type Hooks interface {
	PreProcess(tree *markup.Tree)
	PostProcess(tree *markup.Tree, lang, translatedHeader string)
}

type nopHooks struct{}

func (nopHooks) PreProcess(*markup.Tree)                   {}
func (nopHooks) PostProcess(*markup.Tree, string, string) {}

// languageHooks records the target language on the root element.
type languageHooks struct {
	attr string
}

func (languageHooks) PreProcess(*markup.Tree) {}

func (h languageHooks) PostProcess(tree *markup.Tree, lang, _ string) {
	root := tree.Root()
	if h.attr == "" || lang == "" || root == markup.Nil {
		return
	}
	tree.SetAttr(root, h.attr, lang)
}

var creditPattern = regexp.MustCompile(`^([^<,]+?)\s*(?:<([^>,]+)>)?\s*,\s*(.*)$`)

var infoElements = []string{"info", "articleinfo", "bookinfo", "setinfo", "chapterinfo", "prefaceinfo", "sectioninfo"}

// docbookHooks adds a copyright entry per translator to the document info
// element. Translators are listed one per line as "Name <email>, years".
type docbookHooks struct {
	languageHooks
}

func (h docbookHooks) PostProcess(tree *markup.Tree, lang, translatedHeader string) {
	h.languageHooks.PostProcess(tree, lang, translatedHeader)

	root := tree.Root()
	if root == markup.Nil || strings.TrimSpace(translatedHeader) == "" || translatedHeader == DocBookCredits {
		return
	}
	info := findChild(tree, root, infoElements...)
	if info == markup.Nil {
		return
	}

	for line := range strings.SplitSeq(translatedHeader, "\n") {
		m := creditPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		name, email, years := strings.TrimSpace(m[1]), m[2], strings.TrimSpace(m[3])

		holder := name
		if email != "" {
			holder += " (" + email + ")"
		}

		cp := tree.NewElement("copyright")
		if years != "" {
			tree.AppendText(tree.AppendElement(cp, "year"), years)
		}
		tree.AppendText(tree.AppendElement(cp, "holder"), holder)

		last := lastChild(tree, info, "copyright")
		if last != markup.Nil && tree.Node(last).NextSibling() != markup.Nil {
			tree.InsertBefore(tree.Node(last).NextSibling(), cp)
		} else {
			tree.AppendChild(info, cp)
		}
	}
}

func findChild(tree *markup.Tree, parent markup.NodeID, names ...string) markup.NodeID {
	for c := range tree.Children(parent) {
		n := tree.Node(c)
		if n.Kind != markup.ElementNode {
			continue
		}
		for _, name := range names {
			if n.Name.Local == name {
				return c
			}
		}
	}
	return markup.Nil
}

func lastChild(tree *markup.Tree, parent markup.NodeID, name string) markup.NodeID {
	last := markup.Nil
	for c := range tree.Children(parent) {
		if n := tree.Node(c); n.Kind == markup.ElementNode && n.Name.Local == name {
			last = c
		}
	}
	return last
}
