package dnssd

import (
	"testing"
)

// TestTXTRoundTrip exercises spec.md §8's "TXT attribute round-trip"
// property: parseTXT(writeTXT(A)) = A after key lower-casing.
func TestTXTRoundTrip(t *testing.T) {
	attrs := map[string]string{
		"Path":    "/",
		"version": "1",
		"note":    "has=equals and `backtick`",
	}

	rdata := WriteTXT(attrs)
	got := ParseTXT(rdata)

	want := map[string]string{
		"path":    "/",
		"version": "1",
		"note":    "has=equals and `backtick`",
	}
	if len(got) != len(want) {
		t.Fatalf("got %d attrs, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("attr %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestParseTXTDiscardsEntriesWithoutEquals(t *testing.T) {
	rdata := WriteTXT(nil)
	rdata.Strings = append(rdata.Strings, []byte("noequalshere"))
	got := ParseTXT(rdata)
	if _, ok := got["noequalshere"]; ok {
		t.Fatalf("entry without '=' should be discarded")
	}
}

func TestSplitIdentifier(t *testing.T) {
	name, typ := splitIdentifier("printer-1._http._tcp.example.org.")
	if name != "printer-1" || typ != "_http._tcp" {
		t.Errorf("got name=%q type=%q", name, typ)
	}
}

func TestIntermediateTypeSuffixes(t *testing.T) {
	got := intermediateTypeSuffixes("_printer._sub._http._tcp")
	want := []string{"_sub._http._tcp", "_http._tcp"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suffix[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
