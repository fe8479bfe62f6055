package memory

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Kaybarax/todo-list-turborepo-sub002/internal/core/port"
)

// Cache keeps entries in process memory with a per-entry TTL.
type Cache struct {
	store *cache.Cache
}

func New(cleanupInterval time.Duration) *Cache {
	return &Cache{store: cache.New(cache.NoExpiration, cleanupInterval)}
}

var _ port.Cache = (*Cache)(nil)

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found := c.store.Get(key)
	if !found {
		return nil, false, nil
	}

	return value.([]byte), true, nil
}

// Set stores a copy of value. A zero ttl keeps the entry until it is deleted.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	c.store.Set(key, append([]byte(nil), value...), ttl)

	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.store.Delete(key)

	return nil
}

func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	re, err := globToRegexp(pattern)
	if err != nil {
		return err
	}

	for key := range c.store.Items() {
		if re.MatchString(key) {
			c.store.Delete(key)
		}
	}

	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return nil
}

func (c *Cache) Close() error {
	c.store.Flush()

	return nil
}

// globToRegexp compiles a redis-style glob where * matches any run of
// characters and ? matches exactly one.
func globToRegexp(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder

	b.WriteString("^")

	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString("$")

	return regexp.Compile(b.String())
}
