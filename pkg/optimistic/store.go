// Package optimistic is a keyed cache of versioned snapshots supporting optimistic mutations:
// a mutation is applied locally right away, then committed with the server's answer or
// rolled back to the snapshot taken before it was applied.
package optimistic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// DefaultCacheSize bounds the store memory. A single entry may use up to 1/1024 of it.
const DefaultCacheSize = 64 * 1024 * 1024

// Entry is a cached value with the version of the write that produced it.
// Versions grow monotonically across the whole store.
type Entry[T any] struct {
	Version uint64 `json:"version"`
	Value   T      `json:"value"`
}

// RollbackHook is notified after a mutation on key was rolled back because of cause.
type RollbackHook func(key string, cause error)

// Store maps keys to versioned snapshots of T. Values are held encoded, so every read
// returns a deep copy.
type Store[T any] struct {
	cache      *freecache.Cache
	ttlSeconds int
	seq        atomic.Uint64

	mu          sync.Mutex
	keyLocks    map[string]*sync.Mutex
	fetches     map[string]map[uint64]context.CancelFunc
	nextFetchID uint64
	onRollback  RollbackHook
}

type Option func(*options)

type options struct {
	cacheSize  int
	ttlSeconds int
}

// WithCacheSize sets the cache size in bytes.
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// WithTTL sets the expiry of cached entries, in seconds. Zero means no expiry.
func WithTTL(seconds int) Option {
	return func(o *options) {
		o.ttlSeconds = seconds
	}
}

func NewStore[T any](opts ...Option) *Store[T] {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[T]{
		cache:      freecache.NewCache(o.cacheSize),
		ttlSeconds: o.ttlSeconds,
		keyLocks:   make(map[string]*sync.Mutex),
		fetches:    make(map[string]map[uint64]context.CancelFunc),
	}
}

// OnRollback sets the hook notified of rollbacks. It runs on the goroutine settling the
// mutation, after the store is updated.
func (s *Store[T]) OnRollback(hook RollbackHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRollback = hook
}

func (s *Store[T]) rollbackHook() RollbackHook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onRollback
}

func (s *Store[T]) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.keyLocks[key]
	if !ok {
		l = &sync.Mutex{}
		s.keyLocks[key] = l
	}
	return l
}

// Get returns a copy of the entry for key.
func (s *Store[T]) Get(key string) (Entry[T], bool) {
	raw, ok := s.getRaw(key)
	if !ok {
		return Entry[T]{}, false
	}
	entry, err := decode[T](raw)
	if err != nil {
		log.Errorf("optimistic store: decode %s: %s", key, err)
		s.cache.Del([]byte(key))
		return Entry[T]{}, false
	}
	return entry, true
}

// Set stores value under key and returns the version written.
func (s *Store[T]) Set(key string, value T) (uint64, error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	return s.write(key, value)
}

// Invalidate drops the entry for key, so the next Fetch goes to the source.
func (s *Store[T]) Invalidate(key string) {
	s.cache.Del([]byte(key))
}

// Fetch returns the cached value for key, or loads it with fetchFn and caches it.
// While fetchFn runs, a mutation on key cancels the fetch; a cancelled fetch never writes,
// and Fetch then returns the value cached by the mutation if there is one.
func (s *Store[T]) Fetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (T, error)) (T, error) {
	if entry, ok := s.Get(key); ok {
		return entry.Value, nil
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	fetchID := s.registerFetch(key, cancel)
	defer func() {
		s.unregisterFetch(key, fetchID)
		cancel()
	}()

	value, err := fetchFn(fetchCtx)

	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if fetchCtx.Err() != nil && ctx.Err() == nil {
		// cancelled by a mutation on key
		if entry, ok := s.Get(key); ok {
			return entry.Value, nil
		}
		var zero T
		return zero, fmt.Errorf("fetch %s: %w", key, context.Canceled)
	}
	if err != nil {
		var zero T
		return zero, err
	}

	if _, err := s.write(key, value); err != nil {
		log.Errorf("optimistic store: cache fetched %s: %s", key, err)
	}
	return value, nil
}

func (s *Store[T]) registerFetch(key string, cancel context.CancelFunc) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextFetchID++
	if s.fetches[key] == nil {
		s.fetches[key] = make(map[uint64]context.CancelFunc)
	}
	s.fetches[key][s.nextFetchID] = cancel
	return s.nextFetchID
}

func (s *Store[T]) unregisterFetch(key string, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fetches[key], id)
	if len(s.fetches[key]) == 0 {
		delete(s.fetches, key)
	}
}

// cancelFetches cancels the in-flight fetches of key.
func (s *Store[T]) cancelFetches(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cancel := range s.fetches[key] {
		cancel()
	}
}

// Begin starts a mutation on key: in-flight fetches of key are cancelled, the current
// entry is captured as the snapshot, then transform is applied to a copy and written.
// If key is not cached, transform is skipped and the mutation proceeds without a local write.
// A transform error aborts the mutation and leaves the entry untouched.
func (s *Store[T]) Begin(key string, transform func(T) (T, error)) (*Mutation[T], error) {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	s.cancelFetches(key)

	m := &Mutation[T]{
		store: s,
		key:   key,
	}
	m.state.Store(int32(Optimistic))

	raw, ok := s.getRaw(key)
	if !ok {
		return m, nil
	}
	m.snapshot = raw
	m.hasSnapshot = true

	current, err := decode[T](raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if transform == nil {
		return m, nil
	}

	next, err := transform(current.Value)
	if err != nil {
		return nil, err
	}
	version, err := s.write(key, next)
	if err != nil {
		return nil, err
	}
	m.version = version

	return m, nil
}

// write stores value with a new version. Callers hold the key lock.
func (s *Store[T]) write(key string, value T) (uint64, error) {
	version := s.seq.Add(1)
	raw, err := json.Marshal(Entry[T]{Version: version, Value: value})
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.cache.Set([]byte(key), raw, s.ttlSeconds); err != nil {
		if errors.Is(err, freecache.ErrLargeEntry) {
			return 0, fmt.Errorf("entry %s of %d bytes exceeds the cache entry limit: %w", key, len(raw), err)
		}
		return 0, fmt.Errorf("cache %s: %w", key, err)
	}
	return version, nil
}

// restore puts back the raw snapshot bytes unchanged, version included, so an earlier
// mutation whose write the snapshot holds can still roll back. Callers hold the key lock.
func (s *Store[T]) restore(key string, raw []byte) error {
	if err := s.cache.Set([]byte(key), raw, s.ttlSeconds); err != nil {
		return fmt.Errorf("restore %s: %w", key, err)
	}
	return nil
}

func (s *Store[T]) getRaw(key string) ([]byte, bool) {
	raw, err := s.cache.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("optimistic store: get %s: %s", key, err)
		}
		return nil, false
	}
	return raw, true
}

func (s *Store[T]) currentVersion(key string) (uint64, bool) {
	entry, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	return entry.Version, true
}

func decode[T any](raw []byte) (Entry[T], error) {
	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		return Entry[T]{}, err
	}
	return entry, nil
}
