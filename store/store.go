// Package store composes the directory and template packages into the
// document/template persistence layer spec.md §4.5 describes as "the
// store service": template-validated documents backed by a bbolt
// directory, keyed under the reserved `.d`/`.t` prefixes spec.md §6
// names as convention.
package store

import (
	"fmt"

	"github.com/arrowhead-f/go-configuration-core/directory"
	"github.com/arrowhead-f/go-configuration-core/template"
)

// DocumentPrefix and TemplatePrefix are the reserved bucket prefixes
// spec.md §6 names by convention; the directory itself stays
// namespace-agnostic.
const (
	DocumentPrefix = ".d."
	TemplatePrefix = ".t."
)

// Store is the document/template persistence and validation layer.
type Store struct {
	root directory.Directory
}

// New wraps an open directory.
func New(root directory.Directory) *Store {
	return &Store{root: root}
}

// PutTemplate stores t, replacing any template of the same name.
func (s *Store) PutTemplate(t *template.Template) error {
	if err := template.ValidateName(t.Name); err != nil {
		return err
	}
	data, err := template.EncodeTemplate(t)
	if err != nil {
		return err
	}
	return s.root.Write(func(w directory.Writer) error {
		return w.Add(directory.Entry{Key: TemplatePrefix + t.Name, Value: data})
	})
}

// GetTemplate returns the template named name, if any.
func (s *Store) GetTemplate(name string) (*template.Template, bool, error) {
	var (
		t     *template.Template
		found bool
	)
	err := s.root.Read(func(r directory.Reader) error {
		entries, err := r.List(TemplatePrefix + name)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		t, err = template.DecodeTemplate(entries[0].Value)
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return t, found, err
}

// registryFrom loads every stored template into an in-memory lookup table,
// for use within a single transaction's extent.
func registryFrom(r directory.Reader) (template.MapRegistry, error) {
	entries, err := r.List(TemplatePrefix)
	if err != nil {
		return nil, err
	}
	registry := make(template.MapRegistry, len(entries))
	for _, e := range entries {
		t, err := template.DecodeTemplate(e.Value)
		if err != nil {
			return nil, fmt.Errorf("decode template %q: %w", e.Key, err)
		}
		registry[t.Name] = t
	}
	return registry, nil
}

// PutDocument validates d against its declared template and, if sound,
// persists it. A document that fails validation is not written; its
// report is returned alongside a nil error, per spec.md §7 treating a
// violation list as a first-class result rather than an error.
func (s *Store) PutDocument(d template.Document) (template.Report, error) {
	if err := template.ValidateName(d.Name); err != nil {
		return template.Report{}, err
	}

	var report template.Report
	err := s.root.Write(func(w directory.Writer) error {
		registry, err := registryFrom(w)
		if err != nil {
			return err
		}
		report = template.Validate(registry, d)
		if !report.Sound() {
			return nil
		}
		data, err := template.EncodeDocument(d)
		if err != nil {
			return err
		}
		return w.Add(directory.Entry{Key: DocumentPrefix + d.Name, Value: data})
	})
	return report, err
}

// GetDocument returns the document named name, if any.
func (s *Store) GetDocument(name string) (template.Document, bool, error) {
	var (
		d     template.Document
		found bool
	)
	err := s.root.Read(func(r directory.Reader) error {
		entries, err := r.List(DocumentPrefix + name)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		d, err = template.DecodeDocument(entries[0].Value)
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return d, found, err
}

// ApplyPatches runs spec.md §4.5's "PATCH flow (as composed from the
// store service)": read the documents named by each patch, apply the
// patch, validate the mutated set, and write back only if the aggregate
// violation count across the whole batch is zero.
func (s *Store) ApplyPatches(patches []template.Patch) ([]template.Report, error) {
	var reports []template.Report

	err := s.root.Write(func(w directory.Writer) error {
		registry, err := registryFrom(w)
		if err != nil {
			return err
		}

		var mutated []template.Document
		for _, p := range patches {
			entries, err := w.List(DocumentPrefix + p.Name)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				reports = append(reports, template.Report{
					Document:   p.Name,
					Violations: []template.Violation{{Condition: fmt.Sprintf("DocumentExists(%q)", p.Name)}},
				})
				continue
			}
			doc, err := template.DecodeDocument(entries[0].Value)
			if err != nil {
				return err
			}
			if err := template.Apply(&doc, p); err != nil {
				return err
			}
			mutated = append(mutated, doc)
		}

		total := 0
		for _, r := range reports {
			total += len(r.Violations)
		}
		var validated []template.Report
		for _, doc := range mutated {
			report := template.Validate(registry, doc)
			validated = append(validated, report)
			total += len(report.Violations)
		}
		reports = append(reports, validated...)

		if total != 0 {
			return nil
		}
		for _, doc := range mutated {
			data, err := template.EncodeDocument(doc)
			if err != nil {
				return err
			}
			if err := w.Add(directory.Entry{Key: DocumentPrefix + doc.Name, Value: data}); err != nil {
				return err
			}
		}
		return nil
	})

	return reports, err
}
