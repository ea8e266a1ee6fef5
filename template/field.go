// Package template implements the ACML field-tree / document / patch /
// report data family of spec.md §3-§4.5: typed templates, the per-node
// validation engine, and slash-path patch application.
package template

import (
	"strings"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
)

// Value is a dynamic ACML value: nil, bool, float64, string, []Value, or
// map[string]Value. Per spec.md §9's "Polymorphic field tree" note, this
// repository uses the fixed variant mapping rather than reflection over
// arbitrary Go types. Value is an alias for interface{}, not a defined
// type, so it decodes directly from encoding/json's native
// map[string]interface{}/[]interface{} representation with no
// conversion step.
type Value = interface{}

// Kind is a field's declared type tag.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindText
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBoolean:
		return "Boolean"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// Field is one node of a template's body tree, per spec.md §3 "Template /
// field tree": {name, optional list of condition expressions}, plus
// kind-specific children.
type Field struct {
	Name       string
	Kind       Kind
	Conditions []*Condition

	// Item is the uniform item field a List validates every element
	// against, if any.
	Item *Field
	// Items is the positional sequence of per-index fields a List
	// validates against, if any.
	Items []*Field

	// Entry is the uniform entry field a Map validates every value
	// against, if any.
	Entry *Field
	// Entries maps a key to the field that key's value validates
	// against, if any.
	Entries map[string]*Field
}

// NewField builds a leaf or composite field. Use the With* helpers to
// attach children and conditions.
func NewField(name string, kind Kind) *Field {
	return &Field{Name: name, Kind: kind}
}

// WithConditions attaches condition expressions and returns the receiver,
// for fluent template construction.
func (f *Field) WithConditions(conds ...*Condition) *Field {
	f.Conditions = append(f.Conditions, conds...)
	return f
}

// WithItem sets a List field's uniform item field.
func (f *Field) WithItem(item *Field) *Field {
	f.Item = item
	return f
}

// WithItems sets a List field's positional item sequence.
func (f *Field) WithItems(items ...*Field) *Field {
	f.Items = items
	return f
}

// WithEntry sets a Map field's uniform entry field.
func (f *Field) WithEntry(entry *Field) *Field {
	f.Entry = entry
	return f
}

// WithEntries sets a Map field's per-key entry fields.
func (f *Field) WithEntries(entries map[string]*Field) *Field {
	f.Entries = entries
	return f
}

// Template is {fully-qualified name, body}, per spec.md §3.
type Template struct {
	Name string
	Body *Field
}

// ValidateName enforces the "name does not end with a dot" invariant
// shared by templates and documents.
func ValidateName(name string) error {
	if strings.HasSuffix(name, ".") {
		return &errors.ValidationError{Field: "name", Value: name, Message: "must not end with a dot"}
	}
	return nil
}

func valueLength(v Value) int {
	switch t := v.(type) {
	case []Value:
		return len(t)
	case map[string]Value:
		return len(t)
	case string:
		return len(t)
	default:
		return 0
	}
}
