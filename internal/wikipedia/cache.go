package wikipedia

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/pfrederiksen/legislator-ages/internal/logger"
)

// DefaultCacheTTL is how long a lookup stays fresh.
const DefaultCacheTTL = 7 * 24 * time.Hour

const (
	kindSummary   = "summary"
	kindBirthDate = "birth_date"
)

// Entry is one cached lookup. Failures that will not change on retry
// (missing page, disambiguation, missing field) are cached too.
type Entry struct {
	Value    string    `json:"value,omitempty"`
	Err      string    `json:"err,omitempty"`
	CachedAt time.Time `json:"cached_at"`
}

// Cache holds page lookups keyed by kind and normalized title.
type Cache struct {
	mu      sync.Mutex
	Entries map[string]*Entry `json:"entries"`
	TTL     time.Duration     `json:"-"` // not serialized
	now     func() time.Time
}

// NewCache creates an empty cache with DefaultCacheTTL.
func NewCache() *Cache {
	return &Cache{
		Entries: make(map[string]*Entry),
		TTL:     DefaultCacheTTL,
		now:     time.Now,
	}
}

func (c *Cache) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

// Get returns a fresh entry, or nil if it is missing or expired.
func (c *Cache) Get(kind, title string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(kind, title)
	e, ok := c.Entries[key]
	if !ok {
		return nil
	}
	if c.clock().Sub(e.CachedAt) > c.ttl() {
		delete(c.Entries, key)
		return nil
	}
	return e
}

// Set stores a lookup result.
func (c *Cache) Set(kind, title, value string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Entries == nil {
		c.Entries = make(map[string]*Entry)
	}
	e := &Entry{Value: value, CachedAt: c.clock()}
	if err != nil {
		e.Err = errorKind(err)
	}
	c.Entries[cacheKey(kind, title)] = e
}

// CleanExpired removes expired entries and returns how many were dropped.
func (c *Cache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.clock()
	for key, e := range c.Entries {
		if now.Sub(e.CachedAt) > c.ttl() {
			delete(c.Entries, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Entries)
}

func (c *Cache) ttl() time.Duration {
	if c.TTL <= 0 {
		return DefaultCacheTTL
	}
	return c.TTL
}

func cacheKey(kind, title string) string {
	return kind + "|" + strings.ToLower(strings.TrimSpace(title))
}

var cacheableErrors = []error{ErrPageNotFound, ErrDisambiguation, ErrFieldMissing}

func cacheable(err error) bool {
	for _, target := range cacheableErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func errorKind(err error) string {
	for _, target := range cacheableErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func (e *Entry) result(title string) (string, error) {
	if e.Err == "" {
		return e.Value, nil
	}
	for _, target := range cacheableErrors {
		if e.Err == target.Error() {
			return "", &cachedError{kind: target, title: title}
		}
	}
	return "", errors.New(e.Err)
}

type cachedError struct {
	kind  error
	title string
}

func (e *cachedError) Error() string { return e.kind.Error() + ": " + e.title + " (cached)" }
func (e *cachedError) Unwrap() error { return e.kind }

// Pages is the lookup surface shared by Client and CachedClient.
type Pages interface {
	Summary(ctx context.Context, title string) (string, error)
	BirthDate(ctx context.Context, title string) (string, error)
}

// CachedClient answers lookups from a Cache before calling Pages.
type CachedClient struct {
	Pages Pages
	Cache *Cache
}

// NewCachedClient wraps pages with cache. A nil cache gets a fresh one.
func NewCachedClient(pages Pages, cache *Cache) *CachedClient {
	if cache == nil {
		cache = NewCache()
	}
	return &CachedClient{Pages: pages, Cache: cache}
}

// Summary implements Pages.
func (c *CachedClient) Summary(ctx context.Context, title string) (string, error) {
	return c.lookup(ctx, kindSummary, title, c.Pages.Summary)
}

// BirthDate implements Pages.
func (c *CachedClient) BirthDate(ctx context.Context, title string) (string, error) {
	return c.lookup(ctx, kindBirthDate, title, c.Pages.BirthDate)
}

func (c *CachedClient) lookup(ctx context.Context, kind, title string, fetch func(context.Context, string) (string, error)) (string, error) {
	if e := c.Cache.Get(kind, title); e != nil {
		logger.IncrCounter("wikipedia.cache.hit")
		return e.result(title)
	}
	logger.IncrCounter("wikipedia.cache.miss")

	value, err := fetch(ctx, title)
	if err == nil || cacheable(err) {
		c.Cache.Set(kind, title, value, err)
	}
	return value, err
}
