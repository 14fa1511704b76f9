package render

import theme "github.com/goliatone/go-theme"

// DefaultPersistedFieldID matches the id hosts give the specifications field.
const DefaultPersistedFieldID = "id_specifications"

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the form description.
type RenderOptions struct {
	// CategoryID is echoed on the container so client scripts can tell which
	// category the fields belong to.
	CategoryID string
	// PersistedField, when set, asks the renderer to emit the specifications
	// field itself. Its visibility follows DescribedForm.RawFieldVisible.
	PersistedField *PersistedField
	// Theme carries resolved go-theme configuration; renderers expose its CSS
	// variables on the form container.
	Theme *theme.RendererConfig
	// HiddenFields are emitted as hidden inputs, e.g. a CSRF token for the
	// sync endpoint.
	HiddenFields map[string]string

	// Locale, Translator and OnMissing drive LocalizeForm.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// PersistedField describes the host's serialized specifications field.
type PersistedField struct {
	ID    string
	Name  string
	Value string
}
