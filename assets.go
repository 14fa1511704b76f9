package specform

import (
	"io/fs"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-specform/pkg/renderers/html"
	"github.com/goliatone/go-specform/pkg/schema"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy
// or extend them without importing the renderer package.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// AssetsFS exposes the bundled stylesheet.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(specform.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return html.AssetsFS()
}

// Contract returns the parsed OpenAPI contract of the lookup endpoint.
func Contract() (*openapi3.T, error) {
	return schema.Contract()
}
