package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-specform/pkg/controller"
	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/lookup"
	"github.com/goliatone/go-specform/pkg/values"
)

const seedYAML = `
categories:
  - id: phones
    name: Phones
    attributes:
      - {group: General, key: color, label: Colour}
      - {group: Screen, key: size, label: Size}
  - id: misc
    name: Misc
`

func newTestServer(t *testing.T, options ...Option) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	store, err := lookup.OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	seed, err := lookup.LoadSeed(strings.NewReader(seedYAML))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	if err := seed.Apply(ctx, store); err != nil {
		t.Fatalf("apply seed: %v", err)
	}

	srv, err := New(store, options...)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, rawURL string) (int, string) {
	t.Helper()
	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("get %s: %v", rawURL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRenderForm_PrefillsFromPersistedValue(t *testing.T) {
	ts := newTestServer(t)

	query := url.Values{
		"category":       {"phones"},
		"specifications": {`{"color":"black","legacy":"kept"}`},
	}
	status, body := get(t, ts.URL+FormRoute+"?"+query.Encode())
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	for _, want := range []string{
		`id="dynamic-specs-container"`,
		`data-key="color" rows="2">black</textarea>`,
		`General (1 attributes)`,
		`id="id_specifications"`,
		`&#34;legacy&#34;`,
	} {
		if !strings.Contains(body, want) && !strings.Contains(body, strings.ReplaceAll(want, "&#34;", "&quot;")) {
			t.Fatalf("expected body to contain %q\n%s", want, body)
		}
	}
}

func TestRenderForm_CarriesRecordVersion(t *testing.T) {
	ts := newTestServer(t)

	_, body := get(t, ts.URL+FormRoute+"?category=phones&version=12")
	if !strings.Contains(body, `<input type="hidden" name="version" value="12">`) {
		t.Fatalf("expected version hidden input\n%s", body)
	}

	_, body = get(t, ts.URL+FormRoute+"?category=phones")
	if strings.Contains(body, `name="version"`) {
		t.Fatalf("unexpected version input without a version\n%s", body)
	}
}

func TestRenderForm_UnknownCategoryShowsError(t *testing.T) {
	ts := newTestServer(t)

	status, body := get(t, ts.URL+FormRoute+"?category=ghost&specifications=not-json")
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if !strings.Contains(body, `data-state="error"`) {
		t.Fatalf("expected error state\n%s", body)
	}
	if !strings.Contains(body, ">not-json</textarea>") {
		t.Fatalf("expected persisted value untouched\n%s", body)
	}
}

func TestRenderForm_EmptySchemaExposesRawField(t *testing.T) {
	ts := newTestServer(t)

	_, body := get(t, ts.URL+FormRoute+"?category=misc")
	if !strings.Contains(body, `data-state="empty"`) {
		t.Fatalf("expected empty state\n%s", body)
	}
	if strings.Contains(body, `rows="10" hidden`) {
		t.Fatalf("expected visible persisted field\n%s", body)
	}
}

func postSync(t *testing.T, ts *httptest.Server, req SyncRequest) SyncResponse {
	t.Helper()
	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+SyncRoute, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	var out SyncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestSync_AppliesEditsAndPreservesOffSchema(t *testing.T) {
	ts := newTestServer(t)

	out := postSync(t, ts, SyncRequest{
		CategoryID:     "phones",
		Specifications: `{"color":"black","legacy":"kept"}`,
		Edits:          map[string]string{"size": " 6.1in ", "color": "", "bogus": "x"},
	})

	if out.State != controller.PhaseRendered {
		t.Fatalf("unexpected state %q", out.State)
	}
	got, err := values.Parse(out.Specifications)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff(values.ValueMap{"size": "6.1in", "legacy": "kept"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bogus"}, out.Unknown); diff != "" {
		t.Fatalf("unknown keys mismatch (-want +got):\n%s", diff)
	}
}

func TestSync_EchoesVersion(t *testing.T) {
	ts := newTestServer(t)

	out := postSync(t, ts, SyncRequest{
		CategoryID: "phones",
		Edits:      map[string]string{"color": "red"},
		Version:    "12",
	})
	if out.Version != "12" {
		t.Fatalf("expected version echoed, got %q", out.Version)
	}
}

func TestSync_DropPolicy(t *testing.T) {
	ts := newTestServer(t, WithPolicy(values.DropOffSchema))

	out := postSync(t, ts, SyncRequest{
		CategoryID:     "phones",
		Specifications: `{"color":"black","legacy":"gone"}`,
		Edits:          map[string]string{"size": "6in"},
	})
	want := "{\n    \"color\": \"black\",\n    \"size\": \"6in\"\n}"
	if out.Specifications != want {
		t.Fatalf("unexpected document\nwant: %q\n got: %q", want, out.Specifications)
	}
}

func TestSync_BadBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+SyncRoute, "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestLookupRoutesAndDefaultEndpoint(t *testing.T) {
	ts := newTestServer(t)

	f := fetcher.New(fetcher.WithEndpoint(ts.URL + fetcher.DefaultEndpoint))
	groups, err := f.FetchSchema(context.Background(), "phones")
	if err != nil {
		t.Fatalf("fetch via default endpoint: %v", err)
	}
	if groups.Len() != 2 {
		t.Fatalf("unexpected schema %+v", groups)
	}

	status, _ := get(t, ts.URL+lookup.ContractRoute)
	if status != http.StatusOK {
		t.Fatalf("contract status %d", status)
	}
}

func TestAssetsAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	ts := newTestServer(t, WithMetrics(registry))

	status, body := get(t, ts.URL+"/assets/specform.css")
	if status != http.StatusOK || !strings.Contains(body, ".specform") {
		t.Fatalf("unexpected stylesheet response %d", status)
	}

	get(t, ts.URL+"/api/category-attributes/phones/")
	status, body = get(t, ts.URL+MetricsPath)
	if status != http.StatusOK {
		t.Fatalf("metrics status %d", status)
	}
	if !strings.Contains(body, `specform_lookup_requests_total{status="200"} 1`) {
		t.Fatalf("expected lookup counter in metrics\n%s", body)
	}
}

func TestNew_RequiresStore(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
