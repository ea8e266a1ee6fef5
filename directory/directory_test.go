package directory

import (
	"path/filepath"
	"strings"
	"testing"
)

func openTestDirectory(t *testing.T) Directory {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

// TestListScenario exercises spec.md §8 scenario 5: values at .t.a, .t.b,
// .t.a.x; list([".t.a"]) returns exactly that key; list([".t."]) returns
// all three in lexical order.
func TestListScenario(t *testing.T) {
	d := openTestDirectory(t)

	err := d.Write(func(w Writer) error {
		return w.Add(
			Entry{Key: ".t.a", Value: []byte("a")},
			Entry{Key: ".t.b", Value: []byte("b")},
			Entry{Key: ".t.a.x", Value: []byte("ax")},
		)
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	var exact []Entry
	err = d.Read(func(r Reader) error {
		var err error
		exact, err = r.List(".t.a")
		return err
	})
	if err != nil {
		t.Fatalf("List exact: %v", err)
	}
	if len(exact) != 1 || exact[0].Key != ".t.a" {
		t.Fatalf("List(\".t.a\") = %+v, want exactly [.t.a]", exact)
	}

	var prefix []Entry
	err = d.Read(func(r Reader) error {
		var err error
		prefix, err = r.List(".t.")
		return err
	})
	if err != nil {
		t.Fatalf("List prefix: %v", err)
	}
	wantOrder := []string{".t.a", ".t.a.x", ".t.b"}
	if len(prefix) != len(wantOrder) {
		t.Fatalf("List(\".t.\") = %+v, want %v", prefix, wantOrder)
	}
	for i, key := range wantOrder {
		if prefix[i].Key != key {
			t.Errorf("entry[%d].Key = %q, want %q", i, prefix[i].Key, key)
		}
	}
}

// TestFolderExclusion exercises spec.md §8's "Folder exclusion": add never
// succeeds with a key ending in '.'.
func TestFolderExclusion(t *testing.T) {
	d := openTestDirectory(t)

	err := d.Write(func(w Writer) error {
		return w.Add(Entry{Key: ".t.", Value: []byte("x")})
	})
	if err == nil {
		t.Fatal("expected error adding a folder path")
	}

	err = d.Read(func(r Reader) error {
		entries, err := r.List(".t.")
		if err != nil {
			return err
		}
		if len(entries) != 0 {
			t.Errorf("folder add should not have written anything, got %+v", entries)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
}

// TestAddRejectsWholeCallOnOneBadKey ensures a single folder key in a
// multi-entry Add call rejects the whole call, writing nothing.
func TestAddRejectsWholeCallOnOneBadKey(t *testing.T) {
	d := openTestDirectory(t)

	err := d.Write(func(w Writer) error {
		return w.Add(
			Entry{Key: ".ok.a", Value: []byte("1")},
			Entry{Key: ".bad.", Value: []byte("2")},
		)
	})
	if err == nil {
		t.Fatal("expected error")
	}

	err = d.Read(func(r Reader) error {
		entries, err := r.List("")
		if err != nil {
			return err
		}
		if len(entries) != 0 {
			t.Errorf("call should have written nothing, got %+v", entries)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
}

// TestRemove exercises remove using the same matching rule as List.
func TestRemove(t *testing.T) {
	d := openTestDirectory(t)

	d.Write(func(w Writer) error {
		return w.Add(
			Entry{Key: ".t.a", Value: []byte("a")},
			Entry{Key: ".t.b", Value: []byte("b")},
		)
	})

	err := d.Write(func(w Writer) error {
		return w.Remove(".t.a")
	})
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}

	var remaining []Entry
	d.Read(func(r Reader) error {
		var err error
		remaining, err = r.List("")
		return err
	})
	if len(remaining) != 1 || remaining[0].Key != ".t.b" {
		t.Fatalf("remaining = %+v, want only .t.b", remaining)
	}
}

// TestEnterView exercises view composition: Enter scopes every path under
// a prefix and strips it back off returned keys.
func TestEnterView(t *testing.T) {
	d := openTestDirectory(t)
	docs := d.Enter(".d")

	err := docs.Write(func(w Writer) error {
		return w.Add(Entry{Key: ".config", Value: []byte("v1")})
	})
	if err != nil {
		t.Fatalf("Add via view: %v", err)
	}

	var viewEntries []Entry
	docs.Read(func(r Reader) error {
		var err error
		viewEntries, err = r.List("")
		return err
	})
	if len(viewEntries) != 1 || viewEntries[0].Key != ".config" {
		t.Fatalf("view-relative List = %+v, want [.config]", viewEntries)
	}

	var rootEntries []Entry
	d.Read(func(r Reader) error {
		var err error
		rootEntries, err = r.List("")
		return err
	})
	if len(rootEntries) != 1 || rootEntries[0].Key != ".d.config" {
		t.Fatalf("root List = %+v, want [.d.config]", rootEntries)
	}
}

// TestTransformViewIdentity exercises spec.md §8's "Transform view
// identity": write(x); read() yields r(w(x)) = x.
func TestTransformViewIdentity(t *testing.T) {
	d := openTestDirectory(t)
	upper := d.Map(
		func(v []byte) ([]byte, error) { return []byte(strings.ToLower(string(v))), nil },
		func(v []byte) ([]byte, error) { return []byte(strings.ToUpper(string(v))), nil },
	)

	err := upper.Write(func(w Writer) error {
		return w.Add(Entry{Key: ".k", Value: []byte("Hello")})
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	var stored []Entry
	d.Read(func(r Reader) error {
		var err error
		stored, err = r.List(".k")
		return err
	})
	if len(stored) != 1 || string(stored[0].Value) != "HELLO" {
		t.Fatalf("underlying stored value = %+v, want HELLO", stored)
	}

	var viaView []Entry
	upper.Read(func(r Reader) error {
		var err error
		viaView, err = r.List(".k")
		return err
	})
	if len(viaView) != 1 || string(viaView[0].Value) != "hello" {
		t.Fatalf("transformed read = %+v, want hello", viaView)
	}
}

// TestCloseViewIsNoop verifies closing a view does not close the root.
func TestCloseViewIsNoop(t *testing.T) {
	d := openTestDirectory(t)
	v := d.Enter(".x")
	if err := v.Close(); err != nil {
		t.Fatalf("view Close: %v", err)
	}
	if err := d.Read(func(r Reader) error { _, err := r.List(""); return err }); err != nil {
		t.Fatalf("root still usable after view Close: %v", err)
	}
}
