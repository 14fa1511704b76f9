// Package html renders a described attribute form as an HTML fragment using
// the pongo2 template engine.
package html

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/render"
	rendertemplate "github.com/goliatone/go-specform/pkg/render/template"
	"github.com/goliatone/go-specform/pkg/render/template/gotemplate"
)

// DefaultContainerID is the id of the attribute form region.
const DefaultContainerID = "dynamic-specs-container"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	containerID      string
}

// WithTemplatesFS supplies an alternate template bundle. It must contain
// templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithContainerID overrides the id of the form region.
func WithContainerID(id string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			cfg.containerID = trimmed
		}
	}
}

type Renderer struct {
	templates   rendertemplate.TemplateRenderer
	containerID string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), containerID: DefaultContainerID}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, containerID: cfg.containerID}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, described form.DescribedForm, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}

	described = described.Clone()
	render.LocalizeForm(&described, opts)

	result, err := r.templates.RenderTemplate(TemplateName, buildView(r.containerID, described, opts))
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(result), nil
}
