// Package values holds the ValueMap: the attribute key to text mapping that is
// serialized into the persisted specifications field.
package values

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnparseable marks persisted content that is not a JSON object.
var ErrUnparseable = errors.New("values: persisted field is not a structured object")

// Indent is the indentation used when serializing a ValueMap.
const Indent = "    "

// ValueMap maps attribute keys to non-empty trimmed values.
type ValueMap map[string]string

// FieldValue is the raw content of one rendered field.
type FieldValue struct {
	Key   string
	Value string
}

// Policy controls what happens to stored keys that the current schema does
// not render.
type Policy int

const (
	// PreserveOffSchema keeps keys that are not rendered untouched.
	PreserveOffSchema Policy = iota
	// DropOffSchema rebuilds the map strictly from rendered fields.
	DropOffSchema
)

func (p Policy) String() string {
	switch p {
	case DropOffSchema:
		return "drop"
	default:
		return "preserve"
	}
}

// ParsePolicy maps "preserve"/"drop" to a Policy.
func ParsePolicy(raw string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "preserve":
		return PreserveOffSchema, nil
	case "drop":
		return DropOffSchema, nil
	default:
		return PreserveOffSchema, fmt.Errorf("values: unknown policy %q", raw)
	}
}

// Document is a persisted object with every entry kept as raw JSON, so
// entries no field renders are written back exactly as stored.
type Document map[string]json.RawMessage

// ParseDocument decodes persisted content into its raw entries. Blank content
// is an empty document.
func ParseDocument(raw string) (Document, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Document{}, nil
	}

	decoder := json.NewDecoder(strings.NewReader(trimmed))
	var doc Document
	if err := decoder.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if decoder.More() {
		return Document{}, fmt.Errorf("%w: trailing content", ErrUnparseable)
	}
	if doc == nil {
		// the literal null
		return Document{}, ErrUnparseable
	}
	return doc, nil
}

// Values converts every entry to its trimmed text. Null and blank entries are
// omitted; numbers and bools keep their literal text and nested values become
// compact JSON.
func (d Document) Values() ValueMap {
	out := make(ValueMap, len(d))
	for key, entry := range d {
		text, ok := stringify(entry)
		if !ok {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out[key] = text
	}
	return out
}

// Serialize renders the document as indented JSON with sorted keys. HTML
// characters are left unescaped so values round-trip verbatim.
func (d Document) Serialize() string {
	if len(d) == 0 {
		return "{}"
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", Indent)
	if err := encoder.Encode(map[string]json.RawMessage(d)); err != nil {
		return "{}"
	}
	return strings.TrimRight(buf.String(), "\n")
}

// DocumentOf encodes every value of m as a JSON string entry.
func DocumentOf(m ValueMap) Document {
	out := make(Document, len(m))
	for key, value := range m {
		out[key] = quote(value)
	}
	return out
}

// Parse decodes persisted content into text values. Blank content is an empty
// map.
func Parse(raw string) (ValueMap, error) {
	doc, err := ParseDocument(raw)
	if err != nil {
		return ValueMap{}, err
	}
	return doc.Values(), nil
}

// ParseLenient is Parse with failures mapped to an empty map.
func ParseLenient(raw string) ValueMap {
	out, err := Parse(raw)
	if err != nil {
		return ValueMap{}
	}
	return out
}

func stringify(entry json.RawMessage) (string, bool) {
	decoder := json.NewDecoder(bytes.NewReader(entry))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return "", false
	}
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, entry); err != nil {
			return "", false
		}
		return buf.String(), true
	}
}

func quote(value string) json.RawMessage {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(value); err != nil {
		return json.RawMessage(`""`)
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Serialize renders the map as indented JSON with sorted keys.
func Serialize(m ValueMap) string {
	return DocumentOf(m).Serialize()
}

// Collect builds a ValueMap from rendered fields. Values are trimmed and empty
// ones omitted; when a key repeats, the last non-empty value wins.
func Collect(fields []FieldValue) ValueMap {
	out := make(ValueMap, len(fields))
	for _, field := range fields {
		value := strings.TrimSpace(field.Value)
		if field.Key == "" || value == "" {
			continue
		}
		out[field.Key] = value
	}
	return out
}

// Merge combines the stored document with the values collected from the
// rendered fields according to policy. Rendered keys are written as text;
// under PreserveOffSchema every other stored entry is kept byte for byte.
func Merge(previous Document, rendered []FieldValue, policy Policy) Document {
	collected := DocumentOf(Collect(rendered))
	if policy == DropOffSchema {
		return collected
	}

	renderedKeys := make(map[string]struct{}, len(rendered))
	for _, field := range rendered {
		renderedKeys[field.Key] = struct{}{}
	}

	out := make(Document, len(previous)+len(collected))
	for key, entry := range previous {
		if _, shown := renderedKeys[key]; shown {
			continue
		}
		out[key] = entry
	}
	for key, entry := range collected {
		out[key] = entry
	}
	return out
}

// Keys returns the keys of m in sorted order.
func (m ValueMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
