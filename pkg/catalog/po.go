package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const poDateLayout = "2006-01-02 15:04-0700"

// Header is the metadata written in the header entry of a PO file.
type Header struct {
	// Project defaults to "PACKAGE VERSION".
	Project string
	// Language is written as the Language field when set.
	Language string
	Created  time.Time
}

func (h Header) entry() string {
	project := h.Project
	if project == "" {
		project = "PACKAGE VERSION"
	}
	var sb strings.Builder
	sb.WriteString("Project-Id-Version: " + project + "\n")
	sb.WriteString("POT-Creation-Date: " + h.Created.Format(poDateLayout) + "\n")
	sb.WriteString("PO-Revision-Date: YEAR-MO-DA HO:MI+ZONE\n")
	sb.WriteString("Last-Translator: FULL NAME <EMAIL@ADDRESS>\n")
	sb.WriteString("Language-Team: LANGUAGE <LL@li.org>\n")
	if h.Language != "" {
		sb.WriteString("Language: " + h.Language + "\n")
	}
	sb.WriteString("MIME-Version: 1.0\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\n")
	sb.WriteString("Content-Transfer-Encoding: 8bit\n")
	return sb.String()
}

// WritePO writes the units of store as a PO catalog.
func WritePO(w io.Writer, store *Store, h Header) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("msgid \"\"\n")
	writeField(bw, "msgstr", h.entry(), true)
	bw.WriteByte('\n')

	for _, u := range store.Units() {
		if u.Comment != "" {
			for line := range strings.SplitSeq(u.Comment, "\n") {
				bw.WriteString("#. " + line + "\n")
			}
		}
		refs := make([]string, len(u.Locations))
		for i, loc := range u.Locations {
			refs[i] = loc.String()
		}
		bw.WriteString("#: " + strings.Join(refs, " ") + "\n")
		if u.Preserve {
			bw.WriteString("#, no-wrap\n")
		}
		writeField(bw, "msgid", u.Text, false)
		writeField(bw, "msgstr", u.Translation, false)
		bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return errors.Join(ErrWriteCatalog, err)
	}
	return nil
}

// writeField writes a keyword and its quoted value, one physical line per
// embedded newline when the value spans lines.
func writeField(bw *bufio.Writer, keyword, value string, forceSplit bool) {
	lines := strings.SplitAfter(value, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) <= 1 && !forceSplit {
		bw.WriteString(keyword + " \"" + EscapePO(value) + "\"\n")
		return
	}
	bw.WriteString(keyword + " \"\"\n")
	for _, line := range lines {
		bw.WriteString("\"" + EscapePO(line) + "\"\n")
	}
}

var poEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// EscapePO escapes s for a quoted PO string.
func EscapePO(s string) string {
	return poEscaper.Replace(s)
}

// UnescapePO reverses EscapePO. Unknown escapes are kept verbatim.
func UnescapePO(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '"', '\\':
			sb.WriteByte(s[i])
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

type poEntry struct {
	id, str  string
	hasID    bool
	hasStr   bool
	context  bool
	fuzzy    bool
	obsolete bool
}

// ReadPO parses PO text into a catalog.
func ReadPO(r io.Reader) (*Catalog, error) {
	c := NewCatalog()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		e      poEntry
		target *string
		lineNo int
	)
	flush := func() {
		switch {
		case !e.hasID, e.obsolete, e.context:
		case e.id == "":
			c.setHeader(e.str)
		case !e.fuzzy:
			c.Set(e.id, e.str)
		}
		e = poEntry{}
		target = nil
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#~"):
			if e.hasStr {
				flush()
			}
			e.obsolete = true
			e.hasID = true
		case strings.HasPrefix(line, "#"):
			if e.hasStr {
				flush()
			}
			if strings.HasPrefix(line, "#,") && strings.Contains(line, "fuzzy") {
				e.fuzzy = true
			}
		case strings.HasPrefix(line, "msgctxt"):
			if e.hasStr || e.obsolete {
				flush()
			}
			e.context = true
			target = nil
		case strings.HasPrefix(line, "msgid_plural"):
			target = nil
		case strings.HasPrefix(line, "msgid"):
			if e.hasStr || e.obsolete {
				flush()
			}
			v, err := quoted(strings.TrimPrefix(line, "msgid"))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidPO, lineNo, err)
			}
			e.id, e.hasID = v, true
			target = &e.id
		case strings.HasPrefix(line, "msgstr[0]"), strings.HasPrefix(line, "msgstr "):
			rest := strings.TrimPrefix(strings.TrimPrefix(line, "msgstr[0]"), "msgstr")
			v, err := quoted(rest)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidPO, lineNo, err)
			}
			e.str, e.hasStr = v, true
			target = &e.str
		case strings.HasPrefix(line, "msgstr["):
			target = nil
		case strings.HasPrefix(line, `"`):
			v, err := quoted(line)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidPO, lineNo, err)
			}
			if target != nil {
				*target += v
			}
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected %q", ErrInvalidPO, lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Join(ErrReadCatalog, err)
	}
	flush()
	return c, nil
}

func quoted(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("expected quoted string, got %q", s)
	}
	return UnescapePO(s[1 : len(s)-1]), nil
}

// headerField extracts a "Name: value" line from a header entry.
func headerField(header, name string) string {
	for line := range strings.SplitSeq(header, "\n") {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
