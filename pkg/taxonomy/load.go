package taxonomy

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DocBookCredits is the string-for-translators of the docbook format.
const DocBookCredits = "translator-credits"

//go:embed formats/*.yaml
var formatFS embed.FS

var (
	validate = newValidator()

	builtinOnce sync.Once
	builtin     map[string]*Taxonomy
	builtinErr  error
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("xmlname", func(fl validator.FieldLevel) bool {
		return IsXMLName(fl.Field().String())
	})
	return v
}

// IsXMLName reports whether s is a possibly prefixed XML name.
func IsXMLName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || r == '_' || r == ':':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func loadBuiltin() {
	builtin = make(map[string]*Taxonomy)
	entries, err := formatFS.ReadDir("formats")
	if err != nil {
		builtinErr = err
		return
	}
	for _, e := range entries {
		data, err := formatFS.ReadFile(path.Join("formats", e.Name()))
		if err != nil {
			builtinErr = errors.Join(builtinErr, err)
			continue
		}
		t, err := Load(bytes.NewReader(data))
		if err != nil {
			builtinErr = errors.Join(builtinErr, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		builtin[t.Name] = t
	}
}

// Lookup returns a copy of the built-in taxonomy for format. The second
// result is false when no such format exists; callers fall back to
// automatic classification.
func Lookup(format string) (*Taxonomy, bool) {
	builtinOnce.Do(loadBuiltin)
	t, ok := builtin[strings.ToLower(format)]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// MustLookup is like Lookup but panics for unknown formats.
func MustLookup(format string) *Taxonomy {
	t, ok := Lookup(format)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnknownFormat, format))
	}
	return t
}

// Formats lists the built-in format names in sorted order.
func Formats() []string {
	builtinOnce.Do(loadBuiltin)
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// BuiltinError reports a problem with the embedded formats, if any.
func BuiltinError() error {
	builtinOnce.Do(loadBuiltin)
	return builtinErr
}

// Load decodes and validates a YAML taxonomy.
func Load(r io.Reader) (*Taxonomy, error) {
	var t Taxonomy
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads a taxonomy from a YAML file.
func LoadFile(name string) (*Taxonomy, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Join(ErrRead, err)
	}
	defer f.Close()
	return Load(f)
}

// Validate checks the taxonomy and prepares it for use.
func (t *Taxonomy) Validate() error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
		}
		return errors.Join(ErrInvalid, err)
	}
	t.index()
	return nil
}
