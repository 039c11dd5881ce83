// Package cache stores built section documents in Redis, keyed by the
// inputs that fully determine them, and coalesces concurrent builds of the
// same section.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/document"
	pkgredis "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/redis"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "document:"

type DocumentCache struct {
	client *pkgredis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(client *pkgredis.Client, ttl time.Duration) *DocumentCache {
	return &DocumentCache{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "document-cache"),
	}
}

// Key identifies the document a builder produces for section. Documents are
// a pure function of the matcher strategy, the vocabulary, and the section.
func Key(b *annotator.Builder, section annotator.Section) string {
	h := sha256.New()
	writeField(h, string(b.Kind()))
	writeField(h, b.Vocabulary().Fingerprint())
	writeField(h, section.ID)
	writeField(h, section.Text)
	return fmt.Sprintf("%s%x", keyPrefix, h.Sum(nil)[:16])
}

// writeField length-prefixes s so adjacent fields cannot collide.
func writeField(h interface{ Write([]byte) (int, error) }, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}

func (c *DocumentCache) Get(ctx context.Context, key string) (*document.Document, bool) {
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var doc document.Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key, "section", doc.SectionID)
	return &doc, true
}

func (c *DocumentCache) Set(ctx context.Context, key string, doc *document.Document) {
	data, err := json.Marshal(doc)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrBuild returns the cached document for section or builds and stores
// it. The boolean reports a cache hit. Building never fails, so errors only
// come from a cancelled context.
func (c *DocumentCache) GetOrBuild(ctx context.Context, b *annotator.Builder, section annotator.Section) (*document.Document, bool, error) {
	key := Key(b, section)
	if doc, ok := c.Get(ctx, key); ok {
		return doc, true, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc := b.Build(section)
		c.Set(ctx, key, doc)
		return doc, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*document.Document), false, nil
}

// GetOrBuildAll resolves every section through the cache, at most
// b.Concurrency() at a time, preserving input order. hit is true only when
// every section came from the cache.
func (c *DocumentCache) GetOrBuildAll(ctx context.Context, b *annotator.Builder, sections []annotator.Section) ([]*document.Document, bool, error) {
	docs := make([]*document.Document, len(sections))
	hits := make([]bool, len(sections))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Concurrency())
	for i, s := range sections {
		g.Go(func() error {
			doc, ok, err := c.GetOrBuild(ctx, b, s)
			if err != nil {
				return fmt.Errorf("section %q: %w", s.ID, err)
			}
			docs[i], hits[i] = doc, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	hit := len(sections) > 0
	for _, ok := range hits {
		hit = hit && ok
	}
	return docs, hit, nil
}

func (c *DocumentCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *DocumentCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
