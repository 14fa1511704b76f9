package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload is returned when a lookup payload is not a JSON object
// in the expected shape.
var ErrMalformedPayload = errors.New("schema: malformed payload")

// AttributeDefinition is a single labelled text attribute.
type AttributeDefinition struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// AttributeGroup is a named, ordered collection of attributes.
type AttributeGroup struct {
	Name       string                `json:"group_name"`
	Attributes []AttributeDefinition `json:"attributes"`
}

// Schema is the ordered group sequence for one category.
type Schema []AttributeGroup

// Empty reports whether the category defines no groups at all.
func (s Schema) Empty() bool {
	return len(s) == 0
}

// Keys returns the set of attribute keys present in the schema.
func (s Schema) Keys() map[string]struct{} {
	keys := make(map[string]struct{})
	for _, group := range s {
		for _, attr := range group.Attributes {
			keys[attr.Key] = struct{}{}
		}
	}
	return keys
}

// Len returns the total number of attributes across all groups.
func (s Schema) Len() int {
	total := 0
	for _, group := range s {
		total += len(group.Attributes)
	}
	return total
}

// Clone returns a deep copy so callers can hand schemas across goroutines.
func (s Schema) Clone() Schema {
	if s == nil {
		return nil
	}
	out := make(Schema, len(s))
	for i, group := range s {
		out[i] = AttributeGroup{
			Name:       group.Name,
			Attributes: append([]AttributeDefinition(nil), group.Attributes...),
		}
	}
	return out
}

// Payload is the wire shape of a lookup response. Attributes carries the
// legacy flat form that predates grouping; only older clients read it.
type Payload struct {
	Groups     []AttributeGroup      `json:"groups"`
	Attributes []AttributeDefinition `json:"attributes,omitempty"`
}

// NewPayload wraps a schema for encoding. A nil schema encodes as an empty
// group list rather than null.
func NewPayload(s Schema) Payload {
	groups := []AttributeGroup(s)
	if groups == nil {
		groups = []AttributeGroup{}
	}
	for i := range groups {
		if groups[i].Attributes == nil {
			groups[i].Attributes = []AttributeDefinition{}
		}
	}
	return Payload{Groups: groups}
}

// Decode parses a lookup payload into a Schema. Missing, null or empty groups
// yield an empty schema; a flat attributes list is never read.
func Decode(data []byte) (Schema, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedPayload
	}

	var payload Payload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return normalize(payload.Groups), nil
}

func normalize(groups []AttributeGroup) Schema {
	out := make(Schema, 0, len(groups))
	for _, group := range groups {
		attrs := make([]AttributeDefinition, 0, len(group.Attributes))
		for _, attr := range group.Attributes {
			key := strings.TrimSpace(attr.Key)
			if key == "" {
				continue
			}
			label := strings.TrimSpace(attr.Label)
			if label == "" {
				label = key
			}
			attrs = append(attrs, AttributeDefinition{Key: key, Label: label})
		}
		out = append(out, AttributeGroup{
			Name:       strings.TrimSpace(group.Name),
			Attributes: attrs,
		})
	}
	return out
}
