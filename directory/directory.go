package directory

import (
	"sort"

	bolt "go.etcd.io/bbolt"

	"github.com/arrowhead-f/go-configuration-core/internal/errors"
)

// DefaultMapSize is the "configurable map size (default 2 GiB)" spec.md §6
// names; bbolt treats it as an InitialMmapSize hint, not a hard cap — it
// grows the mapping as needed.
const DefaultMapSize = 2 << 30

// DefaultBucket is the name of the directory's single named sub-database,
// per spec.md §6 "exactly one named sub-database".
var DefaultBucket = []byte("directory")

// Entry is one stored key/value pair.
type Entry struct {
	Key   string
	Value []byte
}

// Reader is the set of operations available inside a read transaction.
type Reader interface {
	// List returns, in lexical key order, every stored entry matched by
	// any of paths, per spec.md §4.5.
	List(paths ...string) ([]Entry, error)
}

// Writer is the set of operations available inside a read/write
// transaction: everything Reader offers, plus mutation.
type Writer interface {
	Reader
	// Add inserts or replaces entries. Every key must be fully qualified
	// (not end in a dot); otherwise the whole call fails and nothing is
	// written.
	Add(entries ...Entry) error
	// Remove deletes every entry matched by any of paths, using the same
	// matching rule as List.
	Remove(paths ...string) error
}

// Directory is the path-indexed key/value store contract of spec.md §4.5:
// enter/map compose views, read/write run a function inside a transaction,
// close releases resources.
type Directory interface {
	// Enter returns a view scoped to path, prepended to every operation's
	// paths.
	Enter(path string) Directory
	// Map returns a view whose List results pass through read and whose
	// Add inputs pass through write before reaching the wrapped directory.
	// Remove is untouched by either transform.
	Map(read, write TransformFunc) Directory
	// Read runs fn inside a read-only transaction; fn's writes (if any
	// leak through a Writer type assertion) are never committed.
	Read(fn func(Reader) error) error
	// Write runs fn inside a read/write transaction; the transaction
	// commits iff fn returns nil, otherwise it aborts.
	Write(fn func(Writer) error) error
	// Close releases the directory's resources. Closing a view closes
	// nothing; only closing the root actually tears down the engine.
	Close() error
}

// Option configures Open.
type Option func(*openConfig)

type openConfig struct {
	mapSize int
	bucket  []byte
}

// WithMapSize overrides the initial mmap size hint (default DefaultMapSize).
func WithMapSize(n int) Option {
	return func(c *openConfig) { c.mapSize = n }
}

// WithBucket overrides the sub-database bucket name (default DefaultBucket).
func WithBucket(name string) Option {
	return func(c *openConfig) { c.bucket = []byte(name) }
}

// root is the Directory backed directly by a bbolt database file.
type root struct {
	db     *bolt.DB
	bucket []byte
}

// Open creates or opens the memory-mapped key/value database at path and
// ensures its single named bucket exists, per spec.md §6 "Persisted
// state".
func Open(path string, opts ...Option) (Directory, error) {
	cfg := openConfig{mapSize: DefaultMapSize, bucket: DefaultBucket}
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{InitialMmapSize: cfg.mapSize})
	if err != nil {
		return nil, &errors.DirectoryError{Op: "open", Err: err}
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cfg.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, &errors.DirectoryError{Op: "create bucket", Err: err}
	}

	return &root{db: db, bucket: cfg.bucket}, nil
}

func (r *root) Enter(path string) Directory { return enter(r, path) }

func (r *root) Map(read, write TransformFunc) Directory { return mapView(r, read, write) }

func (r *root) Read(fn func(Reader) error) error {
	err := r.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		return fn(&txReader{bucket: b})
	})
	if err != nil {
		return &errors.DirectoryError{Op: "read transaction", Err: err}
	}
	return nil
}

func (r *root) Write(fn func(Writer) error) error {
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(r.bucket)
		return fn(&txWriter{txReader: txReader{bucket: b}})
	})
	if err != nil {
		return &errors.DirectoryError{Op: "write transaction", Err: err}
	}
	return nil
}

func (r *root) Close() error {
	if err := r.db.Close(); err != nil {
		return &errors.DirectoryError{Op: "close", Err: err}
	}
	return nil
}

// txReader implements Reader directly against a bbolt bucket within one
// transaction's extent.
type txReader struct {
	bucket *bolt.Bucket
}

func (t *txReader) List(paths ...string) ([]Entry, error) {
	normalized := normalizeAll(paths)

	var entries []Entry
	if matchAll(normalized) {
		c := t.bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			entries = append(entries, Entry{Key: string(k), Value: cloneBytes(v)})
		}
		return entries, nil
	}

	seen := make(map[string]struct{})
	for _, p := range normalized {
		if IsFolder(p) {
			c := t.bucket.Cursor()
			prefix := []byte(p)
			for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
				key := string(k)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				entries = append(entries, Entry{Key: key, Value: cloneBytes(v)})
			}
		} else {
			if _, dup := seen[p]; dup {
				continue
			}
			v := t.bucket.Get([]byte(p))
			if v == nil {
				continue
			}
			seen[p] = struct{}{}
			entries = append(entries, Entry{Key: p, Value: cloneBytes(v)})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// txWriter implements Writer against a bbolt bucket within one write
// transaction's extent.
type txWriter struct {
	txReader
}

func (t *txWriter) Add(entries ...Entry) error {
	for _, e := range entries {
		key := Normalize(e.Key)
		if IsFolder(key) {
			return &errors.DirectoryError{Op: "add", Path: e.Key, Err: errors.ErrPathNotFullyQualified}
		}
	}
	for _, e := range entries {
		key := Normalize(e.Key)
		if err := t.bucket.Put([]byte(key), e.Value); err != nil {
			return &errors.DirectoryError{Op: "add", Path: e.Key, Err: err}
		}
	}
	return nil
}

func (t *txWriter) Remove(paths ...string) error {
	normalized := normalizeAll(paths)

	var toDelete [][]byte
	if matchAll(normalized) {
		c := t.bucket.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			toDelete = append(toDelete, cloneBytes(k))
		}
	} else {
		seen := make(map[string]struct{})
		for _, p := range normalized {
			if IsFolder(p) {
				c := t.bucket.Cursor()
				prefix := []byte(p)
				for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
					key := string(k)
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
					toDelete = append(toDelete, cloneBytes(k))
				}
			} else {
				if t.bucket.Get([]byte(p)) == nil {
					continue
				}
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				toDelete = append(toDelete, []byte(p))
			}
		}
	}

	for _, k := range toDelete {
		if err := t.bucket.Delete(k); err != nil {
			return &errors.DirectoryError{Op: "remove", Path: string(k), Err: err}
		}
	}
	return nil
}

func normalizeAll(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = Normalize(p)
	}
	return out
}

func hasPrefix(key, prefix []byte) bool {
	if len(key) < len(prefix) {
		return false
	}
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
