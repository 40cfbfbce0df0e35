package markup

import (
	"strings"
	"unicode"
)

// EntityKind classifies a general entity declaration.
type EntityKind uint8

const (
	// InternalEntity has its replacement text in the declaration.
	InternalEntity EntityKind = iota + 1
	// ExternalParsedEntity is a SYSTEM or PUBLIC entity whose replacement
	// text lives in another file.
	ExternalParsedEntity
	// ExternalUnparsedEntity carries an NDATA notation and never expands.
	ExternalUnparsedEntity
)

// Entity is a general entity declared in a document's internal subset.
type Entity struct {
	Name     string
	Value    string
	SystemID string
	PublicID string
	Notation string
	Kind     EntityKind
}

// External reports whether the entity's replacement text is not part of
// the declaration.
func (e *Entity) External() bool {
	return e.Kind != InternalEntity
}

var predefinedEntities = map[string]string{
	"lt":   "<",
	"gt":   ">",
	"amp":  "&",
	"apos": "'",
	"quot": `"`,
}

// parseEntityDecls collects general entity declarations from the body of a
// DOCTYPE directive. Parameter entities are skipped. The first declaration
// of a name wins, as in XML.
func parseEntityDecls(body string, into map[string]*Entity) {
	const marker = "<!ENTITY"
	for {
		i := strings.Index(body, marker)
		if i < 0 {
			return
		}
		body = body[i+len(marker):]
		ent, rest, ok := parseEntityDecl(body)
		body = rest
		if !ok || ent == nil {
			continue
		}
		if _, exists := into[ent.Name]; !exists {
			into[ent.Name] = ent
		}
	}
}

func parseEntityDecl(s string) (*Entity, string, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	parameter := false
	if strings.HasPrefix(s, "%") {
		parameter = true
		s = strings.TrimLeftFunc(s[1:], unicode.IsSpace)
	}

	name, s := scanName(s)
	if name == "" {
		return nil, s, false
	}
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	ent := &Entity{Name: name}
	var ok bool
	switch {
	case strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "'"):
		ent.Kind = InternalEntity
		if ent.Value, s, ok = scanQuoted(s); !ok {
			return nil, s, false
		}
	case strings.HasPrefix(s, "SYSTEM"):
		ent.Kind = ExternalParsedEntity
		s = strings.TrimLeftFunc(s[len("SYSTEM"):], unicode.IsSpace)
		if ent.SystemID, s, ok = scanQuoted(s); !ok {
			return nil, s, false
		}
	case strings.HasPrefix(s, "PUBLIC"):
		ent.Kind = ExternalParsedEntity
		s = strings.TrimLeftFunc(s[len("PUBLIC"):], unicode.IsSpace)
		if ent.PublicID, s, ok = scanQuoted(s); !ok {
			return nil, s, false
		}
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if ent.SystemID, s, ok = scanQuoted(s); !ok {
			return nil, s, false
		}
	default:
		return nil, s, false
	}

	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if ent.Kind == ExternalParsedEntity && strings.HasPrefix(s, "NDATA") {
		ent.Kind = ExternalUnparsedEntity
		ent.Notation, s = scanName(strings.TrimLeftFunc(s[len("NDATA"):], unicode.IsSpace))
	}
	if end := strings.IndexByte(s, '>'); end >= 0 {
		s = s[end+1:]
	}
	if parameter {
		return nil, s, true
	}
	return ent, s, true
}

func scanName(s string) (string, string) {
	end := strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '>' || r == '"' || r == '\''
	})
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

func scanQuoted(s string) (string, string, bool) {
	if s == "" {
		return "", s, false
	}
	q := s[0]
	end := strings.IndexByte(s[1:], q)
	if end < 0 {
		return "", s, false
	}
	return s[1 : end+1], s[end+2:], true
}
