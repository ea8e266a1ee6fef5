package template

import (
	"fmt"
	"math"
)

// Validate runs the validation engine of spec.md §4.5 against document d,
// looking up its declared template in registry.
func Validate(registry Registry, d Document) Report {
	report := Report{Document: d.Name, Template: d.Template}

	tmpl, ok := registry.Lookup(d.Template)
	if !ok {
		report.Violations = []Violation{{Path: "", Condition: "template != undefined"}}
		return report
	}

	report.Violations = validateField(tmpl.Body, d.Body, "", nil)
	return report
}

// validateField validates value against field, returning every violation
// gathered at this node and below. path is the violation path already
// accumulated for value's position in the document body; indexOrKey is
// value's own index (int) or key (string) within its enclosing
// list/map, or nil at the document root.
func validateField(field *Field, value Value, path string, indexOrKey interface{}) []Violation {
	var violations []Violation

	length := valueLength(value)

	for _, cond := range field.Conditions {
		ok, err := cond.Eval(value, indexOrKey, length)
		if err != nil {
			violations = append(violations, Violation{Condition: cond.Source, Path: path, Err: err})
			continue
		}
		if !ok {
			violations = append(violations, Violation{Condition: cond.Source, Path: path})
		}
	}

	switch field.Kind {
	case KindNull:
		if value != nil {
			violations = append(violations, typeViolation(field.Kind, path))
		}
	case KindBoolean:
		if _, ok := value.(bool); !ok {
			violations = append(violations, typeViolation(field.Kind, path))
		}
	case KindNumber:
		if f, ok := value.(float64); !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			violations = append(violations, typeViolation(field.Kind, path))
		}
	case KindText:
		if _, ok := value.(string); !ok {
			violations = append(violations, typeViolation(field.Kind, path))
		}
	case KindList:
		list, ok := value.([]Value)
		if !ok {
			violations = append(violations, typeViolation(field.Kind, path))
			break
		}
		for i, elem := range list {
			childPath := fmt.Sprintf("%s[%d]", path, i)
			if field.Item != nil {
				violations = append(violations, validateField(field.Item, elem, childPath, i)...)
			}
			if i < len(field.Items) && field.Items[i] != nil {
				violations = append(violations, validateField(field.Items[i], elem, childPath, i)...)
			}
		}
	case KindMap:
		m, ok := value.(map[string]Value)
		if !ok {
			violations = append(violations, typeViolation(field.Kind, path))
			break
		}
		for key, v := range m {
			childPath := path + "." + key
			if field.Entry != nil {
				violations = append(violations, validateField(field.Entry, v, childPath, key)...)
			}
			if entryField, ok := field.Entries[key]; ok {
				violations = append(violations, validateField(entryField, v, childPath, key)...)
			}
		}
	}

	return violations
}

func typeViolation(k Kind, path string) Violation {
	return Violation{Condition: "type == " + k.String(), Path: path}
}
