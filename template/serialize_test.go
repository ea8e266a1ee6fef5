package template

import "testing"

func TestDocumentRoundTrip(t *testing.T) {
	d := Document{
		Name:     "alice",
		Template: "person",
		Body: map[string]Value{
			"age":  float64(30),
			"tags": []Value{"a", "b"},
		},
	}

	data, err := EncodeDocument(d)
	if err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}
	got, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument: %v", err)
	}
	if got.Name != d.Name || got.Template != d.Template {
		t.Fatalf("got = %+v, want %+v", got, d)
	}
	body := got.Body.(map[string]Value)
	if body["age"] != float64(30) {
		t.Fatalf("age = %v, want 30", body["age"])
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	cond, err := CompileCondition("entity >= 0")
	if err != nil {
		t.Fatalf("CompileCondition: %v", err)
	}
	tmpl := &Template{
		Name: "person",
		Body: NewField("", KindMap).WithEntries(map[string]*Field{
			"age": NewField("age", KindNumber).WithConditions(cond),
		}),
	}

	data, err := EncodeTemplate(tmpl)
	if err != nil {
		t.Fatalf("EncodeTemplate: %v", err)
	}
	got, err := DecodeTemplate(data)
	if err != nil {
		t.Fatalf("DecodeTemplate: %v", err)
	}
	if got.Name != tmpl.Name {
		t.Fatalf("Name = %q, want %q", got.Name, tmpl.Name)
	}
	ageField := got.Body.Entries["age"]
	if ageField == nil || ageField.Kind != KindNumber {
		t.Fatalf("decoded age field = %+v", ageField)
	}
	if len(ageField.Conditions) != 1 || ageField.Conditions[0].Source != "entity >= 0" {
		t.Fatalf("decoded conditions = %+v", ageField.Conditions)
	}

	registry := MapRegistry{got.Name: got}
	report := Validate(registry, Document{Name: "d", Template: "person", Body: map[string]Value{"age": float64(5)}})
	if !report.Sound() {
		t.Fatalf("expected sound report after round-trip, got %+v", report.Violations)
	}
}
