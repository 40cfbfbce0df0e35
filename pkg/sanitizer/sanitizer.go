package sanitizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	placeholderElement = regexp.MustCompile(`^placeholder-\d+$`)

	entityRef = regexp.MustCompile(`&([A-Za-z_:][\w.:-]*);`)
	tagName   = regexp.MustCompile(`<(/?)([A-Za-z_:][\w.:-]*)`)
	token     = regexp.MustCompile("\uE000(\\d+)\uE001")
)

// XML predefined entities mean the same in HTML and survive sanitizing.
var predefined = map[string]bool{"amp": true, "lt": true, "gt": true, "quot": true, "apos": true}

// TranslationPolicy allows placeholder tokens and the given inline
// elements, without attributes. Everything else is stripped to its text.
func TranslationPolicy(inline ...string) *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElementsMatching(placeholderElement)
	p.AllowNoAttrs().OnElementsMatching(placeholderElement)
	if len(inline) > 0 {
		names := make([]string, len(inline))
		for i, name := range inline {
			names[i] = strings.ToLower(name)
		}
		p.AllowElements(names...)
		p.AllowNoAttrs().OnElements(names...)
	}
	return p
}

// Markup returns a translation filter applying policy. A nil policy
// yields TranslationPolicy with no inline elements.
//
// The policy works on HTML, so entity references and the case of element
// names are protected: references are swapped for private-use tokens
// before sanitizing and restored afterwards, and element names are
// restored to the spelling used in the translation.
func Markup(policy *bluemonday.Policy) func(string) string {
	if policy == nil {
		policy = TranslationPolicy()
	}
	return func(s string) string {
		var refs []string
		s = entityRef.ReplaceAllStringFunc(s, func(ref string) string {
			if predefined[ref[1:len(ref)-1]] {
				return ref
			}
			refs = append(refs, ref)
			return "\uE000" + strconv.Itoa(len(refs)-1) + "\uE001"
		})

		names := make(map[string]string)
		for _, m := range tagName.FindAllStringSubmatch(s, -1) {
			lower := strings.ToLower(m[2])
			if _, ok := names[lower]; !ok {
				names[lower] = m[2]
			}
		}

		out := policy.Sanitize(s)

		out = tagName.ReplaceAllStringFunc(out, func(tag string) string {
			m := tagName.FindStringSubmatch(tag)
			if name, ok := names[m[2]]; ok {
				return "<" + m[1] + name
			}
			return tag
		})
		return token.ReplaceAllStringFunc(out, func(tok string) string {
			i, err := strconv.Atoi(token.FindStringSubmatch(tok)[1])
			if err != nil || i >= len(refs) {
				return tok
			}
			return refs[i]
		})
	}
}
