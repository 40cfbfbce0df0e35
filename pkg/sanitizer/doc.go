// Package sanitizer cleans translated unit text before it is merged back
// into a document.
//
// Translations come from outside the build and may carry markup the source
// never had. A filter built with Markup runs every translation through a
// bluemonday policy that always keeps placeholder tokens, so nested units
// still resolve:
//
//	filter := sanitizer.Markup(sanitizer.TranslationPolicy("emphasis", "literal"))
//	p := xmlpo.New(xmlpo.WithTranslationFilter(filter))
package sanitizer
