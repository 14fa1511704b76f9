// Package specform renders a category-dependent attribute form and keeps it
// in sync with a serialized "specifications" field. The root package wires the
// fetcher, controller and renderers for the common cases.
package specform

import (
	"context"
	"fmt"

	"github.com/goliatone/go-specform/pkg/controller"
	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/render"
	"github.com/goliatone/go-specform/pkg/renderers/html"
	"github.com/goliatone/go-specform/pkg/renderers/tui"
	"github.com/goliatone/go-specform/pkg/schema"
	"github.com/goliatone/go-specform/pkg/values"
)

// Schema aliases schema.Schema.
type Schema = schema.Schema

// ValueMap aliases values.ValueMap.
type ValueMap = values.ValueMap

// DescribedForm aliases form.DescribedForm.
type DescribedForm = form.DescribedForm

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// NewFetcher returns an HTTP schema fetcher.
func NewFetcher(options ...fetcher.Option) *fetcher.HTTPFetcher {
	return fetcher.New(options...)
}

// NewController binds a fetcher to the host's persisted field.
func NewController(f fetcher.Fetcher, field controller.Field, options ...controller.Option) (*controller.Controller, error) {
	return controller.New(f, field, options...)
}

// NewRegistry returns a registry holding the HTML renderer (default) and the
// terminal renderer.
func NewRegistry(htmlOptions []html.Option, tuiOptions ...tui.Option) (*render.Registry, error) {
	htmlRenderer, err := html.New(htmlOptions...)
	if err != nil {
		return nil, fmt.Errorf("specform: html renderer: %w", err)
	}
	return render.NewRegistry(htmlRenderer, tui.New(tuiOptions...))
}

// Request describes a one-shot render.
type Request struct {
	CategoryID     string
	Specifications string
	Renderer       string
	Options        RenderOptions
}

// Result is the rendered form and the persisted value after the render.
type Result struct {
	Output         []byte
	ContentType    string
	Specifications string
	State          controller.FormState
}

// Render fetches the schema for req.CategoryID, builds the form over
// req.Specifications and renders it with the named renderer. A fetch failure
// renders the error state rather than failing the call.
func Render(ctx context.Context, f fetcher.Fetcher, registry *render.Registry, req Request, options ...controller.Option) (Result, error) {
	if registry == nil {
		return Result{}, fmt.Errorf("specform: registry is nil")
	}
	renderer, err := registry.Resolve(req.Renderer)
	if err != nil {
		return Result{}, err
	}

	field := controller.NewMemoryField(req.Specifications)
	c, err := controller.New(f, field, options...)
	if err != nil {
		return Result{}, err
	}
	_ = c.SelectCategory(ctx, req.CategoryID)

	opts := req.Options
	opts.CategoryID = req.CategoryID
	if opts.PersistedField != nil {
		persisted := *opts.PersistedField
		persisted.Value = field.Value()
		opts.PersistedField = &persisted
	}

	out, err := renderer.Render(ctx, c.Form(), opts)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Output:         out,
		ContentType:    renderer.ContentType(),
		Specifications: field.Value(),
		State:          c.State(),
	}, nil
}
