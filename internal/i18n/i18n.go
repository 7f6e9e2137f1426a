// Package i18n formats user-facing messages in the configured language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Translator formats message keys. Keys are English format strings and act
// as the fallback when no translation exists.
type Translator struct {
	printer *message.Printer
	tag     language.Tag
}

// New returns a translator for lang, falling back to English for unknown tags.
func New(lang string) *Translator {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Translator{printer: message.NewPrinter(tag), tag: tag}
}

// T formats key with args.
func (t *Translator) T(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}

// Language returns the translator's language tag.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// Register adds a translation of key for lang.
func Register(lang language.Tag, key, translation string) error {
	return message.SetString(lang, key, translation)
}
