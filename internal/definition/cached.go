package definition

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/redis"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKeyPrefix = "definition:"
	notFoundMarker = "-"
)

// Cached stores lookups in Redis, including misses, so repeated activation
// of an undefined term does not reach the source. Redis failures degrade to
// calling the source directly.
type Cached struct {
	next   Provider
	client *pkgredis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

func NewCached(next Provider, client *pkgredis.Client, ttl time.Duration) *Cached {
	return &Cached{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "definition-cache"),
	}
}

func (c *Cached) Lookup(ctx context.Context, term string) (*Definition, error) {
	key := cacheKey(term)
	if d, err, ok := c.get(ctx, key, term); ok {
		return d, err
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		d, err := c.next.Lookup(ctx, term)
		switch {
		case err == nil:
			c.set(ctx, key, d)
		case errors.Is(err, apperrors.ErrDefinitionNotFound):
			c.setMissing(ctx, key)
		}
		return d, err
	})
	if err != nil {
		return nil, err
	}
	d := *v.(*Definition)
	return &d, nil
}

// Invalidate drops every cached definition.
func (c *Cached) Invalidate(ctx context.Context) (int64, error) {
	return c.client.FlushByPattern(ctx, cacheKeyPrefix+"*")
}

func (c *Cached) get(ctx context.Context, key, term string) (*Definition, error, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return nil, nil, false
	}
	if data == notFoundMarker {
		return nil, apperrors.DefinitionNotFound(term), true
	}
	var d Definition
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, nil, false
	}
	return &d, nil, true
}

func (c *Cached) set(ctx context.Context, key string, d *Definition) {
	data, err := json.Marshal(d)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *Cached) setMissing(ctx context.Context, key string) {
	if err := c.client.Set(ctx, key, notFoundMarker, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Terms may contain any characters, including glob metacharacters, so keys
// are hashed.
func cacheKey(term string) string {
	sum := sha256.Sum256([]byte(term))
	return cacheKeyPrefix + hex.EncodeToString(sum[:16])
}
