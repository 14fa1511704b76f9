package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-specform/pkg/form"
)

// Translation keys looked up by LocalizeForm.
const (
	noticeKeyPrefix    = "specform.notice."
	groupKeyPrefix     = "specform.group."
	attributeKeyPrefix = "specform.attribute."
	summaryKey         = "specform.group.summary"
)

// ErrMissingTranslator is passed to the missing handler when no translator is
// configured.
var ErrMissingTranslator = errors.New("render: translator is nil")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler chooses the text used when a key cannot be
// translated. fallback is the untranslated text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

func missingTranslationDefault(_, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// LocalizeForm translates the notice, group names, group summaries and
// attribute labels of described in place. Keys are
// specform.notice.<state>, specform.group.<name>, specform.group.summary (with
// the attribute count as argument) and specform.attribute.<key>. It is a
// no-op without a translator.
func LocalizeForm(described *form.DescribedForm, opts RenderOptions) {
	if described == nil || opts.Translator == nil {
		return
	}

	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	tr := func(key, fallback string, args ...any) string {
		return translate(opts.Locale, key, fallback, opts.Translator, onMissing, args...)
	}

	if described.Notice != "" {
		described.Notice = tr(noticeKeyPrefix+string(described.State), described.Notice)
	}

	groups := make([]form.Section, len(described.Groups))
	for i, section := range described.Groups {
		if section.Name != "" {
			section.Name = tr(groupKeyPrefix+section.Name, section.Name)
		}
		section.Summary = tr(summaryKey, section.Summary, section.Count)

		fields := make([]form.Field, len(section.Fields))
		for j, field := range section.Fields {
			field.Label = tr(attributeKeyPrefix+field.Key, field.Label)
			fields[j] = field
		}
		section.Fields = fields
		groups[i] = section
	}
	if described.Groups != nil {
		described.Groups = groups
	}
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler, args ...any) string {
	if t == nil {
		return onMissing(locale, key, fallback, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key, args...)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, fallback, err)
}
