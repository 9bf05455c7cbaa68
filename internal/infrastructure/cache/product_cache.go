// Package cache keeps a Redis read-through copy of the public catalog.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
	"golang.org/x/sync/singleflight"
)

const (
	allProductsKey = "products:all"
	notFoundMarker = "notfound"
	notFoundTTL    = time.Minute
)

// ProductReader is the uncached source of catalog reads.
type ProductReader interface {
	List(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id int64) (entity.Product, error)
}

// ProductCache serves catalog reads from Redis and falls back to the store when
// Redis misses or fails. Cart and checkout never read through it.
type ProductCache struct {
	next  ProductReader
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group
}

func NewProductCache(next ProductReader, rdb *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{next: next, rdb: rdb, ttl: ttl}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *ProductCache) GetByID(ctx context.Context, id int64) (entity.Product, error) {
	key := productKey(id)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return entity.Product{}, apperr.NotFoundf("product %d not found", id)
		}
		var p entity.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return p, nil
		}
		log.Warnw("discarding undecodable cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		log.Warnw("redis get failed, reading from store", "key", key, "error", err)
	}

	// the flight is shared, so one caller going away must not fail the rest
	v, err, _ := c.group.Do(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		p, err := c.next.GetByID(ctx, id)
		if apperr.KindOf(err) == apperr.NotFound {
			c.set(ctx, key, notFoundMarker, notFoundTTL)
			return nil, err
		}
		if err != nil {
			return nil, err
		}
		c.setJSON(ctx, key, p)
		return p, nil
	})
	if err != nil {
		return entity.Product{}, err
	}
	return v.(entity.Product), nil
}

func (c *ProductCache) List(ctx context.Context) ([]entity.Product, error) {
	data, err := c.rdb.Get(ctx, allProductsKey).Bytes()
	switch {
	case err == nil:
		var products []entity.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		log.Warnw("discarding undecodable cache entry", "key", allProductsKey)
	case errors.Is(err, redis.Nil):
	default:
		log.Warnw("redis get failed, reading from store", "key", allProductsKey, "error", err)
	}

	v, err, _ := c.group.Do(allProductsKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		products, err := c.next.List(ctx)
		if err != nil {
			return nil, err
		}
		c.setJSON(ctx, allProductsKey, products)
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]entity.Product), nil
}

// Invalidate drops the listing and the given products. Failures are logged only;
// entries expire after the ttl anyway.
func (c *ProductCache) Invalidate(ctx context.Context, productIDs ...int64) {
	keys := make([]string, 0, len(productIDs)+1)
	keys = append(keys, allProductsKey)
	for _, id := range productIDs {
		keys = append(keys, productKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warnw("redis invalidation failed", "keys", keys, "error", err)
	}
}

func (c *ProductCache) setJSON(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warnw("cannot encode cache entry", "key", key, "error", err)
		return
	}
	c.set(ctx, key, data, c.ttl)
}

func (c *ProductCache) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := c.rdb.Set(ctx, key, v, ttl).Err(); err != nil {
		log.Warnw("redis set failed", "key", key, "error", err)
	}
}
