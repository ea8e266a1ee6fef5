// Package directory implements the hierarchical, path-indexed key/value
// store of spec.md §4.5 on top of a single-writer memory-mapped engine
// (go.etcd.io/bbolt): explicit read/write transactions, lexical range
// scans, and a transform ("map") view layer.
package directory

import "strings"

// Normalize canonicalizes path to begin with a dot, per spec.md §3's
// "paths are always normalized to begin with a dot". The empty path
// normalizes to the empty string, which spec.md §4.5 treats specially as
// "matches all keys" rather than as a one-character root.
func Normalize(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, ".") {
		return path
	}
	return "." + path
}

// IsFolder reports whether path is a partial qualification (a prefix /
// "folder"), i.e. ends with a dot.
func IsFolder(path string) bool {
	return path != "" && strings.HasSuffix(path, ".")
}

// Join concatenates a view's prefix with a relative path "by a joining
// dot" per spec.md §3: the prefix's trailing dot (if any) is dropped so
// the two normalized paths fuse into one, rather than doubling the dot.
// An empty rel yields the prefix in folder form (with a trailing dot), so
// it matches every key under the prefix.
func Join(prefix, rel string) string {
	prefix = Normalize(prefix)
	rel = Normalize(rel)
	if prefix == "" {
		return rel
	}
	if rel == "" {
		return strings.TrimSuffix(prefix, ".") + "."
	}
	return strings.TrimSuffix(prefix, ".") + rel
}

// matchAll reports whether paths, per spec.md §4.5, represents "match
// every key": either no paths were given, or the single path given is "".
func matchAll(paths []string) bool {
	if len(paths) == 0 {
		return true
	}
	return len(paths) == 1 && paths[0] == ""
}
