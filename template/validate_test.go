package template

import "testing"

func rangeCondition(t *testing.T, src string) *Condition {
	t.Helper()
	c, err := CompileCondition(src)
	if err != nil {
		t.Fatalf("CompileCondition(%q): %v", src, err)
	}
	return c
}

// personTemplate builds {name: Text, age: Number[0,150], tags: List<Text>}.
func personTemplate(t *testing.T) *Template {
	return &Template{
		Name: "person",
		Body: NewField("", KindMap).WithEntries(map[string]*Field{
			"name": NewField("name", KindText),
			"age":  NewField("age", KindNumber).WithConditions(rangeCondition(t, "entity >= 0 && entity <= 150")),
			"tags": NewField("tags", KindList).WithItem(NewField("tag", KindText)),
		}),
	}
}

// TestValidatorSoundness exercises spec.md §8's "Validator soundness": a
// body that structurally matches the template and satisfies every
// condition yields zero violations.
func TestValidatorSoundness(t *testing.T) {
	tmpl := personTemplate(t)
	registry := MapRegistry{tmpl.Name: tmpl}

	doc := Document{
		Name:     "alice",
		Template: "person",
		Body: map[string]Value{
			"name": "Alice",
			"age":  float64(30),
			"tags": []Value{"admin", "eu"},
		},
	}

	report := Validate(registry, doc)
	if !report.Sound() {
		t.Fatalf("expected a sound report, got violations: %+v", report.Violations)
	}
}

func TestValidatorUnknownTemplate(t *testing.T) {
	report := Validate(MapRegistry{}, Document{Name: "d", Template: "missing"})
	if report.Sound() {
		t.Fatal("expected a violation for an unresolved template")
	}
	if report.Violations[0].Condition != "template != undefined" {
		t.Fatalf("Violations[0] = %+v, want template != undefined", report.Violations[0])
	}
}

func TestValidatorConditionViolation(t *testing.T) {
	tmpl := personTemplate(t)
	registry := MapRegistry{tmpl.Name: tmpl}

	doc := Document{
		Name:     "bob",
		Template: "person",
		Body: map[string]Value{
			"name": "Bob",
			"age":  float64(200),
			"tags": []Value{},
		},
	}

	report := Validate(registry, doc)
	if report.Sound() {
		t.Fatal("expected the out-of-range age to violate its condition")
	}
	found := false
	for _, v := range report.Violations {
		if v.Path == ".age" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a violation at .age, got %+v", report.Violations)
	}
}

func TestValidatorTypeMismatch(t *testing.T) {
	tmpl := personTemplate(t)
	registry := MapRegistry{tmpl.Name: tmpl}

	doc := Document{
		Name:     "carol",
		Template: "person",
		Body: map[string]Value{
			"name": float64(1),
			"age":  float64(10),
			"tags": []Value{},
		},
	}

	report := Validate(registry, doc)
	if report.Sound() {
		t.Fatal("expected a type-mismatch violation at .name")
	}
}

func TestValidatorListElementsCheckedAgainstItemAndPositional(t *testing.T) {
	tmpl := &Template{
		Name: "seq",
		Body: NewField("", KindList).
			WithItem(NewField("item", KindNumber)).
			WithItems(
				NewField("first", KindNumber).WithConditions(rangeCondition(t, "entity == 1")),
			),
	}
	registry := MapRegistry{tmpl.Name: tmpl}

	doc := Document{Name: "d", Template: "seq", Body: []Value{float64(1), float64(2)}}
	report := Validate(registry, doc)
	if !report.Sound() {
		t.Fatalf("expected a sound report, got %+v", report.Violations)
	}

	bad := Document{Name: "d2", Template: "seq", Body: []Value{float64(9), float64(2)}}
	report = Validate(registry, bad)
	if report.Sound() {
		t.Fatal("expected the positional condition on index 0 to fail")
	}
	if report.Violations[0].Path != "[0]" {
		t.Fatalf("Violations[0].Path = %q, want [0]", report.Violations[0].Path)
	}
}
