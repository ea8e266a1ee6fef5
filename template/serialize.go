package template

import "encoding/json"

// Documents and templates are persisted as their canonical JSON encoding
// (spec.md §6 "Persisted state": "raw byte values (the serialized
// entity, typically JSON)"). A document's body is already a JSON-native
// Value, so it round-trips through encoding/json directly; a template's
// Field tree carries compiled conditions that must be re-compiled on
// decode, so it goes through an intermediate wire shape.

type documentWire struct {
	Name     string `json:"name"`
	Template string `json:"template,omitempty"`
	Body     Value  `json:"body"`
}

// EncodeDocument returns d's canonical JSON encoding.
func EncodeDocument(d Document) ([]byte, error) {
	return json.Marshal(documentWire{Name: d.Name, Template: d.Template, Body: d.Body})
}

// DecodeDocument parses a document previously written by EncodeDocument.
func DecodeDocument(data []byte) (Document, error) {
	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return Document{}, err
	}
	return Document{Name: w.Name, Body: w.Body, Template: w.Template}, nil
}

type fieldWire struct {
	Name       string                `json:"name,omitempty"`
	Kind       string                `json:"kind"`
	Conditions []string              `json:"conditions,omitempty"`
	Item       *fieldWire            `json:"item,omitempty"`
	Items      []*fieldWire          `json:"items,omitempty"`
	Entry      *fieldWire            `json:"entry,omitempty"`
	Entries    map[string]*fieldWire `json:"entries,omitempty"`
}

type templateWire struct {
	Name string     `json:"name"`
	Body *fieldWire `json:"body"`
}

// EncodeTemplate returns t's canonical JSON encoding.
func EncodeTemplate(t *Template) ([]byte, error) {
	return json.Marshal(templateWire{Name: t.Name, Body: fieldToWire(t.Body)})
}

// DecodeTemplate parses a template previously written by EncodeTemplate,
// recompiling every condition expression.
func DecodeTemplate(data []byte) (*Template, error) {
	var w templateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	body, err := wireToField(w.Body)
	if err != nil {
		return nil, err
	}
	return &Template{Name: w.Name, Body: body}, nil
}

func fieldToWire(f *Field) *fieldWire {
	if f == nil {
		return nil
	}
	w := &fieldWire{Name: f.Name, Kind: f.Kind.String()}
	for _, c := range f.Conditions {
		w.Conditions = append(w.Conditions, c.Source)
	}
	w.Item = fieldToWire(f.Item)
	for _, item := range f.Items {
		w.Items = append(w.Items, fieldToWire(item))
	}
	w.Entry = fieldToWire(f.Entry)
	if len(f.Entries) > 0 {
		w.Entries = make(map[string]*fieldWire, len(f.Entries))
		for k, v := range f.Entries {
			w.Entries[k] = fieldToWire(v)
		}
	}
	return w
}

func wireToField(w *fieldWire) (*Field, error) {
	if w == nil {
		return nil, nil
	}
	kind, err := kindFromString(w.Kind)
	if err != nil {
		return nil, err
	}
	f := &Field{Name: w.Name, Kind: kind}
	for _, src := range w.Conditions {
		cond, err := CompileCondition(src)
		if err != nil {
			return nil, err
		}
		f.Conditions = append(f.Conditions, cond)
	}
	if f.Item, err = wireToField(w.Item); err != nil {
		return nil, err
	}
	for _, item := range w.Items {
		child, err := wireToField(item)
		if err != nil {
			return nil, err
		}
		f.Items = append(f.Items, child)
	}
	if f.Entry, err = wireToField(w.Entry); err != nil {
		return nil, err
	}
	if len(w.Entries) > 0 {
		f.Entries = make(map[string]*Field, len(w.Entries))
		for k, v := range w.Entries {
			child, err := wireToField(v)
			if err != nil {
				return nil, err
			}
			f.Entries[k] = child
		}
	}
	return f, nil
}

func kindFromString(s string) (Kind, error) {
	switch s {
	case "Null":
		return KindNull, nil
	case "Boolean":
		return KindBoolean, nil
	case "Number":
		return KindNumber, nil
	case "Text":
		return KindText, nil
	case "List":
		return KindList, nil
	case "Map":
		return KindMap, nil
	default:
		return 0, &unknownKindError{s}
	}
}

type unknownKindError struct{ kind string }

func (e *unknownKindError) Error() string { return "unknown field kind " + e.kind }
