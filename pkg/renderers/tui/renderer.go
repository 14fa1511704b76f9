// Package tui edits the attribute form from a terminal. Each attribute is
// prompted in display order, pre-filled with its current value.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/render"
	"github.com/goliatone/go-specform/pkg/values"
)

// Editor is the slice of the form controller the interactive flow drives.
type Editor interface {
	Form() form.DescribedForm
	EditField(key, value string) (string, error)
	Toggle(index int) (bool, error)
	Sync() (string, error)
}

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	policy       values.Policy
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		policy:       values.PreserveOffSchema,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render prompts every field of described and returns the resulting value
// map. Persisted values passed through opts are merged under the renderer's
// policy.
func (r *Renderer) Render(ctx context.Context, described form.DescribedForm, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	described = described.Clone()
	render.LocalizeForm(&described, opts)

	if described.Notice != "" {
		if err := r.info(ctx, described.Notice); err != nil {
			return nil, err
		}
	}

	var collected []values.FieldValue
	for _, section := range described.Groups {
		if err := r.info(ctx, sectionHeader(section)); err != nil {
			return nil, err
		}
		for _, field := range section.Fields {
			value := field.Value
			if section.Expanded {
				answer, err := r.promptField(ctx, field)
				if err != nil {
					return nil, err
				}
				value = answer
			}
			collected = append(collected, values.FieldValue{Key: field.Key, Value: value})
		}
	}

	previous := values.Document{}
	if opts.PersistedField != nil {
		if doc, err := values.ParseDocument(opts.PersistedField.Value); err == nil {
			previous = doc
		}
	}
	return r.serialize(values.Merge(previous, collected, r.policy)), nil
}

// Edit walks the editor's form, feeding every changed answer back through
// EditField, and returns the serialized document after the final sync.
// Collapsed sections can be expanded on request; declined ones are skipped.
func (r *Renderer) Edit(ctx context.Context, editor Editor) (string, error) {
	if editor == nil {
		return "", errors.New("tui: editor is required")
	}

	described := editor.Form()
	if len(described.Groups) == 0 {
		if described.Notice != "" {
			_ = r.info(ctx, described.Notice)
		}
		return "", ErrNoFields
	}

	for _, section := range described.Groups {
		if err := r.info(ctx, sectionHeader(section)); err != nil {
			return "", err
		}
		if !section.Expanded {
			expand, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: r.theme.PromptPrefix + "Edit this group?",
			})
			if err != nil {
				return "", err
			}
			if !expand {
				continue
			}
			if _, err := editor.Toggle(section.Index); err != nil {
				return "", err
			}
		}

		for _, field := range section.Fields {
			answer, err := r.promptField(ctx, field)
			if err != nil {
				return "", err
			}
			if answer == field.Value {
				continue
			}
			if _, err := editor.EditField(field.Key, answer); err != nil {
				return "", fmt.Errorf("tui: edit %q: %w", field.Key, err)
			}
		}
	}

	return editor.Sync()
}

// EditRaw prompts for the whole specifications document. It is the fallback
// when no schema exists for the category.
func (r *Renderer) EditRaw(ctx context.Context, current string) (string, error) {
	answer, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: r.theme.PromptPrefix + "Specifications (JSON object)",
		Default: current,
		Validator: func(text string) error {
			if strings.TrimSpace(text) == "" {
				return nil
			}
			_, err := values.ParseDocument(text)
			return err
		},
	})
	if err != nil {
		return "", err
	}
	doc, err := values.ParseDocument(answer)
	if err != nil {
		return "", err
	}
	return doc.Serialize(), nil
}

func (r *Renderer) promptField(ctx context.Context, field form.Field) (string, error) {
	message := r.theme.PromptPrefix + field.Label
	help := fmt.Sprintf("key %q; enter %s to clear", field.Key, ClearToken)

	var (
		answer string
		err    error
	)
	if strings.Contains(field.Value, "\n") {
		answer, err = r.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: field.Value, Help: help})
	} else {
		answer, err = r.driver.Input(ctx, InputConfig{Message: message, Default: field.Value, Help: help})
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(answer) == ClearToken {
		return "", nil
	}
	return answer, nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) serialize(doc values.Document) []byte {
	if r.outputFormat != OutputFormatPrettyText {
		return []byte(doc.Serialize())
	}
	m := doc.Values()
	var b strings.Builder
	for _, key := range m.Keys() {
		fmt.Fprintf(&b, "%s: %s\n", key, m[key])
	}
	return []byte(b.String())
}

func sectionHeader(section form.Section) string {
	marker := "▼"
	if !section.Expanded {
		marker = "▲"
	}
	if section.Name == "" {
		return fmt.Sprintf("(%s) %s", section.Summary, marker)
	}
	return fmt.Sprintf("%s (%s) %s", section.Name, section.Summary, marker)
}
