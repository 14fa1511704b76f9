package tui

import "github.com/goliatone/go-specform/pkg/values"

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits the serialized specifications document.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatPrettyText emits one "key: value" line per attribute.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ClearToken is the answer that empties a field.
const ClearToken = "-"

// Theme captures optional prefixes applied to printed messages.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithPolicy sets how Render treats persisted keys that have no prompt.
func WithPolicy(policy values.Policy) Option {
	return func(r *Renderer) {
		r.policy = policy
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
