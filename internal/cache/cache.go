// Package cache provides a session-scoped, content-addressed cache for
// synthesized audio, keyed by sanitized text, voice persona, and language.
//
// The cache exists to avoid redundant paid synthesis calls: within a session
// the producer runs at most once per unique key, even under concurrent
// requests for the same key.
package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/sanitize"
)

// DefaultCapacity bounds the cache when no explicit capacity is configured.
// Sessions are user-interaction bounded, so a small window is enough to
// absorb repeat listens without unbounded growth in a long-lived session.
const DefaultCapacity = 64

// keyFieldSeparator keeps tuple fields from running into each other when
// hashed, so ("ab", "c") and ("a", "bc") produce distinct keys.
const keyFieldSeparator = "\x00"

// errFlightResultType guards the type assertion on single-flight results.
// The flight only ever returns []byte, so seeing this error means a cache
// bug, not bad input.
var errFlightResultType = errors.New("synthesis flight returned an unexpected result type")

// Producer generates the audio for a cache miss. It is invoked at most once
// per key for any set of concurrent callers.
type Producer func(ctx context.Context) ([]byte, error)

// Key is the deterministic identity of one synthesis request.
type Key string

// KeyFor computes the cache key for an already-sanitized text, voice, and
// language tuple. Identical tuples always map to the same key.
func KeyFor(sanitizedText string, voice core.Voice, language core.Language) Key {
	digest := sha256.New()
	digest.Write([]byte(sanitizedText))
	digest.Write([]byte(keyFieldSeparator))
	digest.Write([]byte(voice))
	digest.Write([]byte(keyFieldSeparator))
	digest.Write([]byte(language))

	return Key(hex.EncodeToString(digest.Sum(nil)))
}

// entry is one cached render. Entries are immutable after insertion; a
// changed render for the same key can only appear by eviction and re-miss.
type entry struct {
	key       Key
	audio     []byte
	createdAt time.Time
}

// SynthesisCache is an LRU cache over synthesized audio with per-key
// single-flight miss handling. Safe for concurrent use.
type SynthesisCache struct {
	sanitizer *sanitize.Sanitizer
	capacity  int

	group singleflight.Group

	mu      sync.Mutex
	entries map[Key]*list.Element
	order   *list.List
}

// New creates a cache bounded to the given capacity. A capacity below one
// falls back to DefaultCapacity.
func New(sanitizer *sanitize.Sanitizer, capacity int) *SynthesisCache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &SynthesisCache{
		sanitizer: sanitizer,
		capacity:  capacity,
		group:     singleflight.Group{},
		mu:        sync.Mutex{},
		entries:   make(map[Key]*list.Element),
		order:     list.New(),
	}
}

// GetOrCreate returns the cached audio for the request, invoking produce on
// a miss. The key is computed over the sanitized request text, so requests
// differing only in markup share a render.
//
// Concurrent calls for the same key are collapsed into a single producer
// invocation; every caller receives the same bytes or the same error. A
// failed producer caches nothing, so the next call for the key tries again.
func (c *SynthesisCache) GetOrCreate(
	ctx context.Context,
	req core.SynthesisRequest,
	produce Producer,
) ([]byte, error) {
	key := KeyFor(c.sanitizer.Sanitize(req.Text), req.Voice, req.Language)

	if audio, ok := c.lookup(key); ok {
		return audio, nil
	}

	result, err, _ := c.group.Do(string(key), func() (any, error) {
		// A concurrent flight may have populated the entry between the
		// fast-path lookup and this call.
		if audio, ok := c.lookup(key); ok {
			return audio, nil
		}

		audio, produceErr := produce(ctx)
		if produceErr != nil {
			return nil, produceErr
		}

		c.insert(key, audio)

		return audio, nil
	})
	if err != nil {
		return nil, err
	}

	audio, ok := result.([]byte)
	if !ok {
		return nil, errFlightResultType
	}

	return audio, nil
}

// Len returns the number of cached renders.
func (c *SynthesisCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// Clear drops every cached render.
func (c *SynthesisCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[Key]*list.Element)
	c.order.Init()
}

func (c *SynthesisCache) lookup(key Key) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	c.order.MoveToFront(element)

	cached, ok := element.Value.(*entry)
	if !ok {
		return nil, false
	}

	return cached.audio, true
}

func (c *SynthesisCache) insert(key Key, audio []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		// Another flight won the race; keep the existing immutable entry.
		c.order.MoveToFront(element)

		return
	}

	c.entries[key] = c.order.PushFront(&entry{
		key:       key,
		audio:     audio,
		createdAt: time.Now(),
	})

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}

		c.order.Remove(oldest)

		evicted, ok := oldest.Value.(*entry)
		if ok {
			delete(c.entries, evicted.key)
		}
	}
}
