package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
)

// Store is a best-effort byte cache. A failed Set is silently dropped and a miss
// means the caller recomputes.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(keys ...string)
}

// Fragment keys for sidebar views.
const (
	KeyTags           = "tags"
	KeyLinks          = "links"
	KeyArchives       = "archives"
	KeyLatestComments = "latest_comments"
)

// Key builds the cache key for a derived field of an entity, e.g. post:12:comments.
func Key(entity string, id uint, field string) string {
	return fmt.Sprintf("%s:%d:%s", entity, id, field)
}

// ArchivesKey is the key of the archive month list as of now. The list grows
// with the calendar, so each month gets its own entry.
func ArchivesKey(now time.Time) string {
	return KeyArchives + ":" + now.UTC().Format("2006-01")
}

// PageKey is the key under which PageMiddleware stores a rendered response.
func PageKey(path string) string {
	return "page:" + path
}

// Fetch reads key from the store, or computes, stores and returns the value.
// Values are stored as JSON.
func Fetch[T any](store Store, key string, compute func() (T, error)) (T, error) {
	if store != nil {
		if raw, ok := store.Get(key); ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return v, nil
			}
		}
	}

	v, err := compute()
	if err != nil {
		return v, err
	}

	if store != nil {
		if raw, err := json.Marshal(v); err == nil {
			store.Set(key, raw)
		}
	}
	return v, nil
}

// FileStore keeps each entry in its own file under root, named by the xxHash of
// the key and grouped in a directory per key prefix.
type FileStore struct {
	root   string
	maxAge time.Duration
}

// NewFileStore creates a store under root. Entries older than maxAge read as a
// miss; a zero maxAge never expires.
func NewFileStore(root string, maxAge time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &FileStore{root: root, maxAge: maxAge}, nil
}

// Path returns the cache file path for key.
func (s *FileStore) Path(key string) string {
	bucket := "misc"
	if i := strings.IndexByte(key, ':'); i > 0 {
		bucket = key[:i]
	}
	return filepath.Join(s.root, bucket, generateHash(key)+".cache")
}

// generateHash generates an xxHash hash for the given string
func generateHash(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

func (s *FileStore) Get(key string) ([]byte, bool) {
	path := s.Path(key)

	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	if s.maxAge > 0 && time.Since(info.ModTime()) > s.maxAge {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return content, true
}

func (s *FileStore) Set(key string, value []byte) {
	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	os.WriteFile(path, value, 0644)
}

func (s *FileStore) Delete(keys ...string) {
	for _, key := range keys {
		os.Remove(s.Path(key))
	}
}

// Clear removes every cache file.
func (s *FileStore) Clear() error {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// ClearOld removes cache files older than maxAge.
func (s *FileStore) ClearOld(maxAge time.Duration) error {
	return filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() || !strings.HasSuffix(path, ".cache") {
			return nil
		}

		if time.Since(info.ModTime()) > maxAge {
			os.Remove(path)
		}
		return nil
	})
}

// MemoryStore is an in-process store for setups without a cache directory.
type MemoryStore struct {
	c *ristretto.Cache[string, []byte]
}

func NewMemoryStore(maxBytes int64) (*MemoryStore, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     maxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryStore{c: c}, nil
}

func (m *MemoryStore) Get(key string) ([]byte, bool) {
	return m.c.Get(key)
}

func (m *MemoryStore) Set(key string, value []byte) {
	m.c.Set(key, value, int64(len(value)))
	// make the write visible to the next Get
	m.c.Wait()
}

func (m *MemoryStore) Delete(keys ...string) {
	for _, key := range keys {
		m.c.Del(key)
	}
}

func (m *MemoryStore) Close() {
	m.c.Close()
}

// Observed reports every lookup on the wrapped store to observe.
type Observed struct {
	Store
	observe func(hit bool)
}

func NewObserved(store Store, observe func(hit bool)) *Observed {
	return &Observed{Store: store, observe: observe}
}

func (o *Observed) Get(key string) ([]byte, bool) {
	v, ok := o.Store.Get(key)
	if o.observe != nil {
		o.observe(ok)
	}
	return v, ok
}

// InvalidatePosts drops the fragments derived from the set of posts and the
// cached pages at paths. Latest comments carry post titles and URLs.
func InvalidatePosts(s Store, paths ...string) {
	if s == nil {
		return
	}
	keys := []string{KeyTags, ArchivesKey(time.Now()), KeyLatestComments}
	for _, path := range paths {
		keys = append(keys, PageKey(path))
	}
	s.Delete(keys...)
}

// InvalidateComments drops the fragments derived from the comments of a post.
func InvalidateComments(s Store, postID uint, path string) {
	if s == nil {
		return
	}
	s.Delete(KeyLatestComments, Key("post", postID, "comments"), PageKey(path))
}

func InvalidateLinks(s Store) {
	if s != nil {
		s.Delete(KeyLinks)
	}
}
