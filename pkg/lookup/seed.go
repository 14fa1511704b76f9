package lookup

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Seed is a YAML catalogue. Children inherit their parent's id.
type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
}

// SeedCategory is one category with its own attributes and subtree.
type SeedCategory struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Attributes []Attribute    `yaml:"attributes"`
	Children   []SeedCategory `yaml:"children"`
}

// LoadSeed decodes a catalogue from r.
func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("lookup: decode seed: %w", err)
	}
	return seed, nil
}

// Apply writes every category and attribute to w. Attributes without an
// explicit sort_order keep their position in the file.
func (s Seed) Apply(ctx context.Context, w Writer) error {
	for _, category := range s.Categories {
		if err := applyCategory(ctx, w, "", category); err != nil {
			return err
		}
	}
	return nil
}

func applyCategory(ctx context.Context, w Writer, parentID string, category SeedCategory) error {
	if err := w.PutCategory(ctx, Category{ID: category.ID, ParentID: parentID, Name: category.Name}); err != nil {
		return err
	}
	for i, attr := range category.Attributes {
		attr.CategoryID = category.ID
		if attr.SortOrder == 0 {
			attr.SortOrder = i + 1
		}
		if err := w.PutAttribute(ctx, attr); err != nil {
			return err
		}
	}
	for _, child := range category.Children {
		if err := applyCategory(ctx, w, category.ID, child); err != nil {
			return err
		}
	}
	return nil
}
