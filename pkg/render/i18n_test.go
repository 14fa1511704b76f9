package render_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/render"
	"github.com/goliatone/go-specform/pkg/schema"
)

type mapTranslator map[string]string

func (m mapTranslator) Translate(locale, key string, args ...any) (string, error) {
	msg, ok := m[locale+":"+key]
	if !ok {
		return "", errors.New("missing")
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...), nil
	}
	return msg, nil
}

func TestLocalizeForm(t *testing.T) {
	groups := schema.Schema{{Name: "General", Attributes: []schema.AttributeDefinition{
		{Key: "color", Label: "Colour"},
		{Key: "weight", Label: "Weight"},
	}}}
	original := form.Describe(groups, nil, form.DefaultMessages())
	described := original.Clone()

	render.LocalizeForm(&described, render.RenderOptions{
		Locale: "es",
		Translator: mapTranslator{
			"es:specform.group.General":   "General ES",
			"es:specform.group.summary":   "%d atributos",
			"es:specform.attribute.color": "Color",
		},
	})

	want := original.Clone()
	want.Groups[0].Name = "General ES"
	want.Groups[0].Summary = "2 atributos"
	want.Groups[0].Fields[0].Label = "Color"
	if diff := cmp.Diff(want, described); diff != "" {
		t.Fatalf("localized form mismatch (-want +got):\n%s", diff)
	}
	if original.Groups[0].Fields[0].Label != "Colour" {
		t.Fatalf("localization leaked into the source form")
	}
}

func TestLocalizeForm_NoticeAndMissingHandler(t *testing.T) {
	described := form.Loading(form.DefaultMessages())

	var missing []string
	render.LocalizeForm(&described, render.RenderOptions{
		Locale:     "fr",
		Translator: mapTranslator{},
		OnMissing: func(locale, key, fallback string, _ error) string {
			missing = append(missing, locale+":"+key)
			return "[" + fallback + "]"
		},
	})

	if described.Notice != "["+form.DefaultMessages().Loading+"]" {
		t.Fatalf("unexpected notice %q", described.Notice)
	}
	if diff := cmp.Diff([]string{"fr:specform.notice.loading"}, missing); diff != "" {
		t.Fatalf("missing keys mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalizeForm_NoTranslator(t *testing.T) {
	described := form.Failed(form.DefaultMessages(), false)
	render.LocalizeForm(&described, render.RenderOptions{})
	if described.Notice != form.DefaultMessages().Error {
		t.Fatalf("expected untouched notice, got %q", described.Notice)
	}
}
