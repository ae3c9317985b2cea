// Package cache provides a namespaced, persistent key/value cache with
// per-entry TTL, backed by a bbolt database file.
//
// The cache is deliberately forgiving: if the storage substrate cannot be
// opened, the store is created in a disabled state and every operation
// degrades to a no-op. Callers never see an error from caching — a cache
// that cannot write is indistinguishable from a cache miss.
package cache

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DefaultTTL is the freshness window applied when callers have no specific
// requirement. Pass it explicitly to Set; a ttl <= 0 writes an entry that is
// already expired.
const DefaultTTL = 5 * time.Minute

// defaultNamespace prefixes every key so the store can share a database file
// with unrelated buckets or namespaces without collisions.
const defaultNamespace = "itinerary_cache"

var bucketName = []byte("cache")

// entry is the stored value layout. Timestamps are Unix milliseconds.
// A value that fails to decode into this shape is treated as absent
// and removed.
type entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	ExpiresAt int64           `json:"expires_at"`
}

// Options configures a Store.
type Options struct {
	// Namespace is the key prefix isolating this store's entries.
	// Defaults to "itinerary_cache".
	Namespace string
	// Logger receives warnings for degraded operation. Defaults to slog.Default().
	Logger *slog.Logger
}

// Store is a TTL cache over a bbolt file. It is safe for concurrent use.
// A nil-db (disabled) Store is valid: all operations are no-ops.
type Store struct {
	db     *bolt.DB
	prefix string
	logger *slog.Logger
}

// Open initializes or opens a Store at the given path.
//
// Open never returns an error for a caller to handle: when the substrate is
// unavailable (locked file, unwritable directory) it logs a warning and
// returns a disabled store, matching the error-handling contract that caching
// failures are silent.
func Open(path string, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ns := opts.Namespace
	if ns == "" {
		ns = defaultNamespace
	}
	s := &Store{prefix: ns + "_", logger: logger}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		logger.Warn("cache storage unavailable, caching disabled", "path", path, "error", err)
		return s
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		logger.Warn("cache bucket init failed, caching disabled", "path", path, "error", err)
		return s
	}

	s.db = db
	return s
}

// Enabled reports whether the storage substrate is usable.
// A disabled store answers every Get with a miss and drops every Set.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

// Close closes the underlying database. Safe on a disabled store.
func (s *Store) Close() error {
	if !s.Enabled() {
		return nil
	}
	return s.db.Close()
}

// Set stores data under key with the given freshness window.
// A ttl <= 0 produces an already-expired entry. Returns false — without
// propagating an error — when the store is disabled, the value cannot be
// encoded, or the write fails.
func (s *Store) Set(key string, data any, ttl time.Duration) bool {
	if !s.Enabled() {
		return false
	}

	raw, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("cache set: encode failed", "key", key, "error", err)
		return false
	}

	now := time.Now()
	buf, err := json.Marshal(entry{
		Data:      raw,
		Timestamp: now.UnixMilli(),
		ExpiresAt: now.Add(ttl).UnixMilli(),
	})
	if err != nil {
		s.logger.Warn("cache set: encode failed", "key", key, "error", err)
		return false
	}

	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(s.namespaced(key), buf)
	}); err != nil {
		s.logger.Warn("cache set: write failed", "key", key, "error", err)
		return false
	}
	return true
}

// Get decodes the stored value into out if the entry is present and fresh.
// An expired entry is a miss but is left in place so a later GetStale can
// still serve it; CleanupExpired is the only path that removes expired rows.
// A corrupt entry is removed and reported as a miss.
func (s *Store) Get(key string, out any) bool {
	return s.get(key, out, false)
}

// GetStale is Get without the freshness check: an expired entry is still
// returned. Used for degraded fallback reads when a live fetch has failed.
// Corrupt entries are still removed and reported as misses.
func (s *Store) GetStale(key string, out any) bool {
	return s.get(key, out, true)
}

func (s *Store) get(key string, out any, allowStale bool) bool {
	e, ok := s.load(key)
	if !ok {
		return false
	}
	if !allowStale && time.Now().UnixMilli() > e.ExpiresAt {
		return false
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		s.logger.Warn("cache get: decode failed, dropping entry", "key", key, "error", err)
		s.Remove(key)
		return false
	}
	return true
}

// Remove deletes the entry for key. Idempotent; no-op on a disabled store.
func (s *Store) Remove(key string) {
	if !s.Enabled() {
		return
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(s.namespaced(key))
	}); err != nil {
		s.logger.Warn("cache remove failed", "key", key, "error", err)
	}
}

// Clear deletes every entry in this store's namespace, leaving foreign
// namespaces in the same bucket untouched.
func (s *Store) Clear() {
	if !s.Enabled() {
		return
	}
	prefix := []byte(s.prefix)
	if err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		s.logger.Warn("cache clear failed", "error", err)
	}
}

// IsExpired reports whether the entry for key is absent or past its
// expiry time.
func (s *Store) IsExpired(key string) bool {
	e, ok := s.load(key)
	if !ok {
		return true
	}
	return time.Now().UnixMilli() > e.ExpiresAt
}

// Info describes a cache entry's age for diagnostics.
type Info struct {
	Timestamp time.Time
	ExpiresAt time.Time
	Age       time.Duration
}

// Info returns write-time/expiry metadata for key, or ok=false when absent.
func (s *Store) Info(key string) (Info, bool) {
	e, ok := s.load(key)
	if !ok {
		return Info{}, false
	}
	ts := time.UnixMilli(e.Timestamp)
	return Info{
		Timestamp: ts,
		ExpiresAt: time.UnixMilli(e.ExpiresAt),
		Age:       time.Since(ts),
	}, true
}

// CleanupExpired scans the namespace and removes every expired entry,
// returning the count removed. Invoked opportunistically; the freshness check
// in Get keeps correctness independent of when cleanup runs.
func (s *Store) CleanupExpired() int {
	if !s.Enabled() {
		return 0
	}

	now := time.Now().UnixMilli()
	prefix := []byte(s.prefix)
	cleaned := 0
	if err := s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketName).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var e entry
			if err := json.Unmarshal(v, &e); err == nil && now <= e.ExpiresAt {
				continue
			}
			// Expired or corrupt — both count as removable.
			if err := c.Delete(); err != nil {
				return err
			}
			cleaned++
		}
		return nil
	}); err != nil {
		s.logger.Warn("cache cleanup failed", "error", err)
	}
	return cleaned
}

// load reads and decodes the raw entry for key. Corrupt entries are removed.
func (s *Store) load(key string) (entry, bool) {
	if !s.Enabled() {
		return entry{}, false
	}

	var raw []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketName).Get(s.namespaced(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	}); err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
		return entry{}, false
	}
	if raw == nil {
		return entry{}, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		s.logger.Warn("cache entry corrupt, dropping", "key", key, "error", err)
		s.Remove(key)
		return entry{}, false
	}
	return e, true
}

func (s *Store) namespaced(key string) []byte {
	return []byte(s.prefix + key)
}
