package specform

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specform/pkg/controller"
	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/render"
	"github.com/goliatone/go-specform/pkg/schema"
	"github.com/goliatone/go-specform/pkg/testsupport"
	"github.com/goliatone/go-specform/pkg/values"
)

func phonesFetcher() fetcher.Fetcher {
	return testsupport.StaticFetcher{
		"phones": {{Name: "General", Attributes: []schema.AttributeDefinition{{Key: "color", Label: "Colour"}}}},
	}
}

func TestNewRegistry_DefaultsToHTML(t *testing.T) {
	registry, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if diff := cmp.Diff([]string{"html", "tui"}, registry.List()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
	r, err := registry.Resolve("")
	if err != nil || r.Name() != "html" {
		t.Fatalf("expected html default, got %v %v", r, err)
	}
}

func TestRender_HTML(t *testing.T) {
	registry, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	result, err := Render(context.Background(), phonesFetcher(), registry, Request{
		CategoryID:     "phones",
		Specifications: `{"color": "red", "legacy": "kept"}`,
		Options:        RenderOptions{PersistedField: &render.PersistedField{}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.State.Phase != controller.PhaseRendered {
		t.Fatalf("unexpected phase %q", result.State.Phase)
	}
	if !strings.Contains(string(result.Output), `data-key="color" rows="2">red</textarea>`) {
		t.Fatalf("expected prefilled field\n%s", result.Output)
	}
	want := values.Serialize(values.ValueMap{"color": "red", "legacy": "kept"})
	if result.Specifications != want {
		t.Fatalf("unexpected specifications\nwant: %q\n got: %q", want, result.Specifications)
	}
	if !strings.Contains(string(result.Output), `id="id_specifications"`) {
		t.Fatalf("expected persisted field in output")
	}
}

func TestRender_FetchFailureRendersErrorState(t *testing.T) {
	registry, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}

	result, err := Render(context.Background(), phonesFetcher(), registry, Request{CategoryID: "ghost", Specifications: "raw text"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.State.Phase != controller.PhaseError || result.Specifications != "raw text" {
		t.Fatalf("unexpected result %+v", result.State)
	}
	if !errors.Is(result.State.Err, fetcher.ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", result.State.Err)
	}
}

func TestRender_UnknownRenderer(t *testing.T) {
	registry, err := NewRegistry(nil)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	_, err = Render(context.Background(), phonesFetcher(), registry, Request{Renderer: "pdf"})
	if !errors.Is(err, render.ErrRendererNotFound) {
		t.Fatalf("expected ErrRendererNotFound, got %v", err)
	}
}

func TestEmbeddedAssets(t *testing.T) {
	if _, err := fs.Stat(EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("template missing: %v", err)
	}
	if _, err := fs.Stat(AssetsFS(), "specform.css"); err != nil {
		t.Fatalf("stylesheet missing: %v", err)
	}
	doc, err := Contract()
	if err != nil {
		t.Fatalf("contract: %v", err)
	}
	if doc.Components.Schemas[schema.ContractSchemaName] == nil {
		t.Fatalf("contract missing %s", schema.ContractSchemaName)
	}
}
