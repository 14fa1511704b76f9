// Package template defines the template engine seam the HTML renderer relies
// on, so hosts can swap the bundled pongo2 engine for their own.
package template
