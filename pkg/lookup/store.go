package lookup

import (
	"context"
	"errors"

	"github.com/goliatone/go-specform/pkg/schema"
)

// ErrCategoryNotFound is returned for unknown category ids.
var ErrCategoryNotFound = errors.New("lookup: category not found")

// Category is one node of the category tree. An empty ParentID marks a root.
type Category struct {
	ID       string `json:"id" yaml:"id"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Name     string `json:"name" yaml:"name"`
}

// Attribute attaches one attribute definition to a category.
type Attribute struct {
	CategoryID string `json:"category_id" yaml:"-"`
	Group      string `json:"group_name" yaml:"group"`
	Key        string `json:"key" yaml:"key"`
	Label      string `json:"label" yaml:"label"`
	SortOrder  int    `json:"sort_order" yaml:"sort_order"`
}

// Store resolves the grouped schema for a category.
type Store interface {
	AttributesFor(ctx context.Context, categoryID string) (schema.Schema, error)
}

// Writer persists catalogue entries.
type Writer interface {
	PutCategory(ctx context.Context, category Category) error
	PutAttribute(ctx context.Context, attribute Attribute) error
}

// group folds attributes, ordered root ancestor first, into a schema. Groups
// keep the position of their first attribute. A key defined again further
// down the tree keeps its position and takes the later label and group.
func group(attrs []Attribute) schema.Schema {
	type slot struct {
		group string
		def   schema.AttributeDefinition
	}

	order := make([]string, 0, len(attrs))
	byKey := make(map[string]*slot, len(attrs))
	for _, attr := range attrs {
		if existing, ok := byKey[attr.Key]; ok {
			existing.group = attr.Group
			existing.def.Label = attr.Label
			continue
		}
		byKey[attr.Key] = &slot{group: attr.Group, def: schema.AttributeDefinition{Key: attr.Key, Label: attr.Label}}
		order = append(order, attr.Key)
	}

	out := schema.Schema{}
	index := make(map[string]int)
	for _, key := range order {
		s := byKey[key]
		gi, ok := index[s.group]
		if !ok {
			gi = len(out)
			index[s.group] = gi
			out = append(out, schema.AttributeGroup{Name: s.group})
		}
		out[gi].Attributes = append(out[gi].Attributes, s.def)
	}
	return out
}
