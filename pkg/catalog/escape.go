package catalog

import (
	"regexp"
	"strings"
)

var (
	backslashUnescaper = strings.NewReplacer(`\"`, `"`, `\'`, `'`)
	backslashEscaper   = strings.NewReplacer(`"`, `\"`, `'`, `\'`)

	markupTag = regexp.MustCompile(`<[^>]*>`)
)

// UnescapeBackslashes removes the \' and \" escapes used by Android string
// resources.
func UnescapeBackslashes(s string) string {
	return backslashUnescaper.Replace(s)
}

// EscapeBackslashes adds \' and \" escapes for Android string resources.
func EscapeBackslashes(s string) string {
	return backslashEscaper.Replace(s)
}

// EscapeMarkupBackslashes works like EscapeBackslashes on the text of a
// markup string. Tags, including their quoted attribute values, are
// copied unchanged.
func EscapeMarkupBackslashes(s string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range markupTag.FindAllStringIndex(s, -1) {
		sb.WriteString(backslashEscaper.Replace(s[last:loc[0]]))
		sb.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(backslashEscaper.Replace(s[last:]))
	return sb.String()
}
