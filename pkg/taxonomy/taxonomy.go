package taxonomy

import "slices"

// Hook set names accepted in the hooks field.
const (
	HooksDefault = "default"
	HooksDocBook = "docbook"
)

// Taxonomy is the tag classification of one document format. It is
// constant for the duration of a run.
type Taxonomy struct {
	Name string `yaml:"name" validate:"required"`

	FinalTags         []string `yaml:"final_tags" validate:"dive,xmlname"`
	IgnoredTags       []string `yaml:"ignored_tags" validate:"dive,xmlname"`
	TreatedAttributes []string `yaml:"treated_attributes" validate:"dive,xmlname"`
	SpacePreserveTags []string `yaml:"space_preserve_tags" validate:"dive,xmlname"`

	// StringForTranslators is appended to every catalog after all document
	// units. Its translation is handed to PostProcess.
	StringForTranslators  string `yaml:"string_for_translators"`
	CommentForTranslators string `yaml:"comment_for_translators" validate:"excluded_without=StringForTranslators"`

	// LanguageAttribute is set on the root element to the target language
	// after a merge.
	LanguageAttribute string `yaml:"language_attribute" validate:"omitempty,xmlname"`

	// ReferenceAttribute names the attribute whose value identifies a unit
	// in catalog references instead of the element name.
	ReferenceAttribute string `yaml:"reference_attribute" validate:"omitempty,xmlname"`

	// BackslashEscapes enables \' and \" escaping of unit text, as used by
	// Android string resources.
	BackslashEscapes bool `yaml:"backslash_escapes"`

	HookSet string `yaml:"hooks" validate:"omitempty,oneof=default docbook"`

	final, ignored, treated, preserve map[string]struct{}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// index builds the lookup sets. It is called once a taxonomy is validated.
func (t *Taxonomy) index() {
	t.final = toSet(t.FinalTags)
	t.ignored = toSet(t.IgnoredTags)
	t.treated = toSet(t.TreatedAttributes)
	t.preserve = toSet(t.SpacePreserveTags)
}

func member(set map[string]struct{}, list []string, name string) bool {
	if set != nil {
		_, ok := set[name]
		return ok
	}
	return slices.Contains(list, name)
}

// IsFinal reports whether elements named name are atomic units. A nil
// taxonomy has no final tags.
func (t *Taxonomy) IsFinal(name string) bool {
	return t != nil && member(t.final, t.FinalTags, name)
}

// IsIgnored reports whether elements named name never form units by
// themselves.
func (t *Taxonomy) IsIgnored(name string) bool {
	return t != nil && member(t.ignored, t.IgnoredTags, name)
}

// IsTreated reports whether attributes named name carry translatable text.
func (t *Taxonomy) IsTreated(name string) bool {
	return t != nil && member(t.treated, t.TreatedAttributes, name)
}

// IsSpacePreserve reports whether elements named name keep their
// whitespace.
func (t *Taxonomy) IsSpacePreserve(name string) bool {
	return t != nil && member(t.preserve, t.SpacePreserveTags, name)
}

// HasAttributes reports whether any attribute is translatable.
func (t *Taxonomy) HasAttributes() bool {
	return t != nil && len(t.TreatedAttributes) > 0
}

// Clone returns a deep copy that can be modified independently.
func (t *Taxonomy) Clone() *Taxonomy {
	c := *t
	c.FinalTags = slices.Clone(t.FinalTags)
	c.IgnoredTags = slices.Clone(t.IgnoredTags)
	c.TreatedAttributes = slices.Clone(t.TreatedAttributes)
	c.SpacePreserveTags = slices.Clone(t.SpacePreserveTags)
	c.index()
	return &c
}

// Hooks returns the document hooks selected by HookSet.
func (t *Taxonomy) Hooks() Hooks {
	if t == nil {
		return nopHooks{}
	}
	base := languageHooks{attr: t.LanguageAttribute}
	if t.HookSet == HooksDocBook {
		return docbookHooks{languageHooks: base}
	}
	return base
}
