package template

import (
	"fmt"
	"strconv"
	"strings"
)

// Patch is {document name, slash-delimited path into body, optional data
// replacement}, per spec.md §3. HasData records whether data was given
// (a given null is still data). Apply does not consult it: a patch
// without data sets its target to nil.
type Patch struct {
	Name    string
	Path    string
	Data    Value
	HasData bool
}

// ErrMismatchedName is returned by Apply when a patch's document name
// does not match the document it is applied to.
type ErrMismatchedName struct {
	PatchName    string
	DocumentName string
}

func (e *ErrMismatchedName) Error() string {
	return fmt.Sprintf("patch for %q applied to document %q", e.PatchName, e.DocumentName)
}

// Apply applies p to doc in place, per spec.md §4.5 "Patch application".
func Apply(doc *Document, p Patch) error {
	if doc.Name != p.Name {
		return &ErrMismatchedName{PatchName: p.Name, DocumentName: doc.Name}
	}

	segments := splitPath(p.Path)
	body, err := applyAt(doc.Body, segments, p.Data)
	if err != nil {
		return err
	}
	doc.Body = body
	return nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// applyAt descends node by segments, replacing the terminal value with
// data and returning the (possibly re-typed) node. Each intermediate
// segment coerces node into a list (all-digits segment) or a map
// (otherwise), replacing it wholesale if it was some other shape.
func applyAt(node Value, segments []string, data Value) (Value, error) {
	if len(segments) == 0 {
		return data, nil
	}

	seg := segments[0]
	rest := segments[1:]

	if isAllDigits(seg) {
		index, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("invalid list index segment %q", seg)
		}
		list, ok := node.([]Value)
		if !ok {
			list = nil
		}
		for len(list) <= index {
			list = append(list, nil)
		}
		child, err := applyAt(list[index], rest, data)
		if err != nil {
			return nil, err
		}
		list[index] = child
		return list, nil
	}

	m, ok := node.(map[string]Value)
	if !ok {
		m = map[string]Value{}
	}
	child, err := applyAt(m[seg], rest, data)
	if err != nil {
		return nil, err
	}
	m[seg] = child
	return m, nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
