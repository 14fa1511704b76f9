package form_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/schema"
	"github.com/goliatone/go-specform/pkg/testsupport"
	"github.com/goliatone/go-specform/pkg/values"
)

func TestDescribe_PrefillsMatchingKeysOnly(t *testing.T) {
	groups := schema.Schema{
		{Name: "Appearance", Attributes: []schema.AttributeDefinition{{Key: "color", Label: "Color"}}},
		{Name: "Shipping", Attributes: []schema.AttributeDefinition{{Key: "weight", Label: "Weight"}}},
	}
	current := values.ValueMap{"color": "red", "size": "L"}

	got := form.Describe(groups, current, form.Messages{})

	want := form.DescribedForm{
		State: form.StateRendered,
		Groups: []form.Section{
			{Index: 0, Name: "Appearance", Count: 1, Summary: "1 attributes", Expanded: true, Fields: []form.Field{
				{ID: "spec-0-0", Key: "color", Label: "Color", Value: "red"},
			}},
			{Index: 1, Name: "Shipping", Count: 1, Summary: "1 attributes", Expanded: true, Fields: []form.Field{
				{ID: "spec-1-0", Key: "weight", Label: "Weight", Value: ""},
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("form mismatch (-want +got):\n%s", diff)
	}
	if current["size"] != "L" {
		t.Fatalf("describe must not touch the value map")
	}
}

func TestDescribe_EmptySchemaExposesRawField(t *testing.T) {
	got := form.Describe(nil, values.ValueMap{"color": "red"}, form.Messages{Empty: "nothing here"})
	if got.State != form.StateEmpty || !got.RawFieldVisible {
		t.Fatalf("expected empty state with raw field visible, got %+v", got)
	}
	if len(got.Groups) != 0 {
		t.Fatalf("empty schema must not render sections")
	}
	if got.Notice != "nothing here" {
		t.Fatalf("unexpected notice %q", got.Notice)
	}
}

func TestDescribe_RoundTripThroughCollect(t *testing.T) {
	current := values.ValueMap{"ram": "8GB", "screen": "6.5 inch", "color": "Blue"}
	groups := schema.Schema{
		{Name: "Hardware", Attributes: []schema.AttributeDefinition{{Key: "ram", Label: "RAM"}, {Key: "screen", Label: "Screen"}}},
		{Name: "Look", Attributes: []schema.AttributeDefinition{{Key: "color", Label: "Color"}}},
	}

	described := form.Describe(groups, current, form.DefaultMessages())
	if diff := cmp.Diff(current, values.Collect(described.FieldValues())); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStateHelpers(t *testing.T) {
	if got := form.Loading(form.Messages{}); got.State != form.StateLoading || got.Notice == "" {
		t.Fatalf("unexpected loading form %+v", got)
	}
	if got := form.Failed(form.Messages{Error: "boom"}, true); got.State != form.StateError || got.Notice != "boom" || !got.RawFieldVisible {
		t.Fatalf("unexpected failed form %+v", got)
	}
	if got := form.Idle(false); got.State != form.StateIdle || got.RawFieldVisible {
		t.Fatalf("unexpected idle form %+v", got)
	}
}

func TestDescribedForm_CloneIsDeep(t *testing.T) {
	described := form.Describe(schema.Schema{
		{Name: "g", Attributes: []schema.AttributeDefinition{{Key: "k", Label: "K"}}},
	}, nil, form.Messages{})
	clone := described.Clone()
	clone.Groups[0].Fields[0].Value = "changed"
	clone.Groups[0].Expanded = false
	if described.Groups[0].Fields[0].Value != "" || !described.Groups[0].Expanded {
		t.Fatalf("clone shares storage with source")
	}
}

func TestDescribe_Golden(t *testing.T) {
	groups := testsupport.MustLoadSchema(t, filepath.Join("testdata", "phones.json"))
	current := testsupport.MustParseValues(t, `{"brand":"Acme","screen":"6.1 in","colour":"black"}`)

	got := form.Describe(groups, current, form.Messages{})

	goldenPath := filepath.Join("testdata", "phones_described.golden.json")
	if testsupport.WriteMaybeGolden(t, goldenPath, got) {
		return
	}
	var want form.DescribedForm
	testsupport.MustDecodeGolden(t, goldenPath, &want)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("described form mismatch (-want +got):\n%s", diff)
	}
}
