// Package form turns a grouped attribute schema and a value map into a
// presentation-neutral description of the attribute form. Describe is a pure
// function; renderers decide how the description is drawn.
package form

import (
	"fmt"

	"github.com/goliatone/go-specform/pkg/schema"
	"github.com/goliatone/go-specform/pkg/values"
)

// State is the phase a described form represents.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateEmpty    State = "empty"
	StateError    State = "error"
	StateRendered State = "rendered"
)

// Messages holds the user-facing notices.
type Messages struct {
	Loading string `json:"loading"`
	Empty   string `json:"empty"`
	Error   string `json:"error"`
	// Attributes formats a group's attribute count, e.g. "%d attributes".
	Attributes string `json:"attributes"`
}

// DefaultMessages returns the built-in English notices.
func DefaultMessages() Messages {
	return Messages{
		Loading:    "Loading attributes...",
		Empty:      "No specific attributes are defined for this category.",
		Error:      "Failed to load attributes.",
		Attributes: "%d attributes",
	}
}

func (m Messages) withDefaults() Messages {
	def := DefaultMessages()
	if m.Loading == "" {
		m.Loading = def.Loading
	}
	if m.Empty == "" {
		m.Empty = def.Empty
	}
	if m.Error == "" {
		m.Error = def.Error
	}
	if m.Attributes == "" {
		m.Attributes = def.Attributes
	}
	return m
}

// Field is one labelled text entry.
type Field struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Section is one collapsible group.
type Section struct {
	Index    int     `json:"index"`
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Summary  string  `json:"summary"`
	Expanded bool    `json:"expanded"`
	Fields   []Field `json:"fields"`
}

// DescribedForm is the full description of the attribute form region.
type DescribedForm struct {
	State           State     `json:"state"`
	Groups          []Section `json:"groups"`
	Notice          string    `json:"notice,omitempty"`
	RawFieldVisible bool      `json:"raw_field_visible"`
}

// Describe builds the form for groups, pre-filling each field from current by
// key. An empty schema yields the placeholder with the raw field exposed.
func Describe(groups schema.Schema, current values.ValueMap, messages Messages) DescribedForm {
	messages = messages.withDefaults()
	if groups.Empty() {
		return DescribedForm{
			State:           StateEmpty,
			Notice:          messages.Empty,
			RawFieldVisible: true,
		}
	}

	sections := make([]Section, 0, len(groups))
	for gi, group := range groups {
		fields := make([]Field, 0, len(group.Attributes))
		for ai, attr := range group.Attributes {
			fields = append(fields, Field{
				ID:    FieldID(gi, ai),
				Key:   attr.Key,
				Label: attr.Label,
				Value: current[attr.Key],
			})
		}
		sections = append(sections, Section{
			Index:    gi,
			Name:     group.Name,
			Count:    len(group.Attributes),
			Summary:  fmt.Sprintf(messages.Attributes, len(group.Attributes)),
			Expanded: true,
			Fields:   fields,
		})
	}

	return DescribedForm{State: StateRendered, Groups: sections}
}

// Loading describes the region while a fetch is pending.
func Loading(messages Messages) DescribedForm {
	return DescribedForm{State: StateLoading, Notice: messages.withDefaults().Loading}
}

// Failed describes the region after a fetch failure. rawVisible carries the
// persisted field's visibility over unchanged.
func Failed(messages Messages, rawVisible bool) DescribedForm {
	return DescribedForm{State: StateError, Notice: messages.withDefaults().Error, RawFieldVisible: rawVisible}
}

// Idle describes the cleared region shown when no category is selected.
func Idle(rawVisible bool) DescribedForm {
	return DescribedForm{State: StateIdle, RawFieldVisible: rawVisible}
}

// FieldID returns the DOM-safe id for attribute ai of group gi.
func FieldID(gi, ai int) string {
	return fmt.Sprintf("spec-%d-%d", gi, ai)
}

// FieldValues lists the raw contents of every field in display order.
func (f DescribedForm) FieldValues() []values.FieldValue {
	var out []values.FieldValue
	for _, section := range f.Groups {
		for _, field := range section.Fields {
			out = append(out, values.FieldValue{Key: field.Key, Value: field.Value})
		}
	}
	return out
}

// Clone returns a deep copy.
func (f DescribedForm) Clone() DescribedForm {
	out := f
	if f.Groups != nil {
		out.Groups = make([]Section, len(f.Groups))
		for i, section := range f.Groups {
			section.Fields = append([]Field(nil), section.Fields...)
			out.Groups[i] = section
		}
	}
	return out
}
