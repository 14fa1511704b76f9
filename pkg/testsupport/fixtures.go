// Package testsupport holds fixtures shared by the package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/schema"
	"github.com/goliatone/go-specform/pkg/values"
)

// Group builds an attribute group whose labels equal their keys.
func Group(name string, keys ...string) schema.AttributeGroup {
	g := schema.AttributeGroup{Name: name}
	for _, key := range keys {
		g.Attributes = append(g.Attributes, schema.AttributeDefinition{Key: key, Label: key})
	}
	return g
}

// StaticFetcher serves fixed schemas by category id. Unknown ids fail with a
// 404 status failure.
type StaticFetcher map[string]schema.Schema

var _ fetcher.Fetcher = StaticFetcher(nil)

func (s StaticFetcher) FetchSchema(_ context.Context, categoryID string) (schema.Schema, error) {
	groups, ok := s[categoryID]
	if !ok {
		return nil, &fetcher.FetchError{
			CategoryID: categoryID,
			Kind:       fetcher.FailureStatus,
			Status:     http.StatusNotFound,
			Err:        errors.New("category not found"),
		}
	}
	return groups.Clone(), nil
}

// LoadSchema decodes a lookup payload fixture.
func LoadSchema(path string) (schema.Schema, error) {
	if path == "" {
		return nil, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read schema: %w", err)
	}
	return schema.Decode(data)
}

// MustLoadSchema is LoadSchema for tests.
func MustLoadSchema(t *testing.T, path string) schema.Schema {
	t.Helper()
	groups, err := LoadSchema(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return groups
}

// MustParseValues parses a persisted specifications document.
func MustParseValues(t *testing.T, raw string) values.ValueMap {
	t.Helper()
	parsed, err := values.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return parsed
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustDecodeGolden reads a JSON golden file into out.
func MustDecodeGolden(t *testing.T, path string, out any) {
	t.Helper()
	if err := json.Unmarshal(MustReadGolden(t, path), out); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
}

// WriteMaybeGolden writes value as indented JSON when UPDATE_GOLDENS is set.
// It reports whether the golden was written so the test can stop early.
func WriteMaybeGolden(t *testing.T, path string, value any) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
