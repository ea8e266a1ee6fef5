package template

import "testing"

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindNull: "Null", KindBoolean: "Boolean", KindNumber: "Number",
		KindText: "Text", KindList: "List", KindMap: "Map",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestValidateNameRejectsTrailingDot(t *testing.T) {
	if err := ValidateName("ok-name"); err != nil {
		t.Fatalf("ValidateName(ok-name): %v", err)
	}
	if err := ValidateName("bad."); err == nil {
		t.Fatal("expected an error for a name ending in a dot")
	}
}

func TestFieldBuilders(t *testing.T) {
	item := NewField("item", KindNumber)
	f := NewField("list", KindList).WithItem(item)
	if f.Item != item {
		t.Fatal("WithItem did not attach the item field")
	}

	entry := NewField("entry", KindText)
	m := NewField("map", KindMap).WithEntry(entry).WithEntries(map[string]*Field{"k": entry})
	if m.Entry != entry || m.Entries["k"] != entry {
		t.Fatal("WithEntry/WithEntries did not attach correctly")
	}
}
