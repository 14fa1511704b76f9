package render

import (
	"context"

	"github.com/goliatone/go-specform/pkg/form"
)

// Renderer converts a described attribute form into a byte representation
// (an HTML fragment, a terminal session transcript, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form form.DescribedForm, options RenderOptions) ([]byte, error)
}
