package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/schema"
)

const catalogueYAML = `
categories:
  - id: electronics
    name: Electronics
    attributes:
      - {group: General, key: brand, label: Brand}
      - {group: General, key: warranty, label: Warranty}
    children:
      - id: phones
        name: Phones
        attributes:
          - {group: Screen, key: size, label: Screen size}
          - {group: General, key: warranty, label: Warranty (months)}
          - {group: Power, key: battery, label: Battery}
  - id: books
    name: Books
`

func newSeededStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	store, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	seed, err := LoadSeed(strings.NewReader(catalogueYAML))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if err := seed.Apply(ctx, store); err != nil {
		t.Fatalf("apply seed: %v", err)
	}
	return store
}

func TestSQLiteStore_AttributesForWalksAncestors(t *testing.T) {
	store := newSeededStore(t)

	got, err := store.AttributesFor(context.Background(), "phones")
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}

	want := schema.Schema{
		{Name: "General", Attributes: []schema.AttributeDefinition{
			{Key: "brand", Label: "Brand"},
			{Key: "warranty", Label: "Warranty (months)"},
		}},
		{Name: "Screen", Attributes: []schema.AttributeDefinition{
			{Key: "size", Label: "Screen size"},
		}},
		{Name: "Power", Attributes: []schema.AttributeDefinition{
			{Key: "battery", Label: "Battery"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_CategoryWithoutAttributes(t *testing.T) {
	store := newSeededStore(t)

	got, err := store.AttributesFor(context.Background(), "books")
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty schema, got %v", got)
	}
}

func TestSQLiteStore_UnknownCategory(t *testing.T) {
	store := newSeededStore(t)

	if _, err := store.AttributesFor(context.Background(), "nope"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestSQLiteStore_LineageStopsOnCycle(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	if err := store.PutCategory(ctx, Category{ID: "electronics", ParentID: "phones", Name: "Electronics"}); err != nil {
		t.Fatalf("put category: %v", err)
	}

	lineage, err := store.Lineage(ctx, "phones")
	if err != nil {
		t.Fatalf("lineage: %v", err)
	}
	if diff := cmp.Diff([]string{"electronics", "phones"}, lineage); diff != "" {
		t.Fatalf("lineage mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStore_PutAttributeDefaultsLabel(t *testing.T) {
	store := newSeededStore(t)
	ctx := context.Background()

	if err := store.PutAttribute(ctx, Attribute{CategoryID: "books", Key: " isbn ", SortOrder: 1}); err != nil {
		t.Fatalf("put attribute: %v", err)
	}
	if err := store.PutAttribute(ctx, Attribute{CategoryID: "books", Key: ""}); err == nil {
		t.Fatalf("expected error for empty key")
	}

	got, err := store.AttributesFor(ctx, "books")
	if err != nil {
		t.Fatalf("attributes: %v", err)
	}
	want := schema.Schema{{Attributes: []schema.AttributeDefinition{{Key: "isbn", Label: "isbn"}}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}

	categories, err := store.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 3 || categories[0].ID != "books" {
		t.Fatalf("unexpected categories %+v", categories)
	}
}

func TestLoadSeed_RejectsUnknownFields(t *testing.T) {
	if _, err := LoadSeed(strings.NewReader("categorys: []\n")); err == nil {
		t.Fatalf("expected error for unknown field")
	}
	seed, err := LoadSeed(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty seed: %v", err)
	}
	if len(seed.Categories) != 0 {
		t.Fatalf("expected no categories")
	}
}

func newTestHandler(t *testing.T, options ...HandlerOption) (*httptest.Server, *Handler) {
	t.Helper()
	options = append([]HandlerOption{WithRegistry(prometheus.NewRegistry())}, options...)
	handler, err := NewHandler(newSeededStore(t), options...)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)
	return server, handler
}

func TestHandler_ServesContractCompliantPayload(t *testing.T) {
	server, handler := newTestHandler(t)

	f := fetcher.New(fetcher.WithEndpoint(server.URL+"/api/category-attributes"), fetcher.WithContractValidation(true))
	got, err := f.FetchSchema(context.Background(), "phones")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Len() != 4 || got[0].Name != "General" {
		t.Fatalf("unexpected schema %+v", got)
	}

	if count := testutil.ToFloat64(handler.metrics.requests.WithLabelValues("200")); count != 1 {
		t.Fatalf("expected one 200 request, got %v", count)
	}
}

func TestHandler_EmptyGroupsEncodeAsList(t *testing.T) {
	server, _ := newTestHandler(t)

	resp, err := http.Get(server.URL + "/api/category-attributes/books/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"groups":[]}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestHandler_UnknownCategory(t *testing.T) {
	server, handler := newTestHandler(t)

	f := fetcher.New(fetcher.WithEndpoint(server.URL + "/api/category-attributes"))
	_, err := f.FetchSchema(context.Background(), "missing")

	var fetchErr *fetcher.FetchError
	if !errors.As(err, &fetchErr) || fetchErr.Kind != fetcher.FailureStatus || fetchErr.Status != http.StatusNotFound {
		t.Fatalf("expected 404 fetch error, got %v", err)
	}
	if count := testutil.ToFloat64(handler.metrics.requests.WithLabelValues("404")); count != 1 {
		t.Fatalf("expected one 404 request, got %v", count)
	}
}

func TestHandler_LegacyPayload(t *testing.T) {
	server, _ := newTestHandler(t, WithLegacyPayload(true))

	resp, err := http.Get(server.URL + "/api/category-attributes/electronics/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var payload schema.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []schema.AttributeDefinition{{Key: "brand", Label: "Brand"}, {Key: "warranty", Label: "Warranty"}}
	if diff := cmp.Diff(want, payload.Attributes); diff != "" {
		t.Fatalf("legacy attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_Contract(t *testing.T) {
	server, _ := newTestHandler(t)

	resp, err := http.Get(server.URL + ContractRoute)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.Header.Get("Content-Type") != "application/yaml" {
		t.Fatalf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}
	if string(body) != string(schema.ContractDocument()) {
		t.Fatalf("contract body mismatch")
	}
}

func TestNewHandler_RequiresStore(t *testing.T) {
	if _, err := NewHandler(nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
