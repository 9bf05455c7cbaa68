package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/domain/apperr"
	"github.com/wichananm65/storefront/internal/domain/entity"
)

// memoryRedis answers GET/SET/DEL from a map through a process hook, so the
// client never opens a connection.
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string
	down bool
}

func (m *memoryRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (m *memoryRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (m *memoryRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.down {
			err := errors.New("connection refused")
			cmd.SetErr(err)
			return err
		}

		args := cmd.Args()
		switch cmd.Name() {
		case "get":
			v, ok := m.data[fmt.Sprint(args[1])]
			if !ok {
				cmd.SetErr(redis.Nil)
				return redis.Nil
			}
			cmd.(*redis.StringCmd).SetVal(v)
		case "set":
			var v string
			switch raw := args[2].(type) {
			case []byte:
				v = string(raw)
			default:
				v = fmt.Sprint(raw)
			}
			m.data[fmt.Sprint(args[1])] = v
			cmd.(*redis.StatusCmd).SetVal("OK")
		case "del":
			n := 0
			for _, k := range args[1:] {
				if _, ok := m.data[fmt.Sprint(k)]; ok {
					delete(m.data, fmt.Sprint(k))
					n++
				}
			}
			cmd.(*redis.IntCmd).SetVal(int64(n))
		}
		return nil
	}
}

type countingReader struct {
	mu       sync.Mutex
	products map[int64]entity.Product
	gets     int
	lists    int
}

func (r *countingReader) GetByID(ctx context.Context, id int64) (entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	p, ok := r.products[id]
	if !ok {
		return entity.Product{}, apperr.NotFoundf("product %d not found", id)
	}
	return p, nil
}

func (r *countingReader) List(ctx context.Context) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func newTestCache(t *testing.T) (*ProductCache, *countingReader, *memoryRedis) {
	t.Helper()
	mem := &memoryRedis{data: map[string]string{}}
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	rdb.AddHook(mem)
	t.Cleanup(func() { _ = rdb.Close() })

	reader := &countingReader{products: map[int64]entity.Product{
		1: {ID: 1, Name: "Bowl", Price: decimal.NewFromInt(120), Stock: 4},
	}}
	return NewProductCache(reader, rdb, time.Minute), reader, mem
}

func TestGetByIDReadsThrough(t *testing.T) {
	c, reader, mem := newTestCache(t)
	ctx := context.Background()

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bowl", p.Name)
	assert.Contains(t, mem.data, "product:1")

	p, err = c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(120).Equal(p.Price))
	assert.Equal(t, 1, reader.gets)
}

func TestGetByIDCachesMisses(t *testing.T) {
	c, reader, mem := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetByID(ctx, 9)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, notFoundMarker, mem.data["product:9"])

	_, err = c.GetByID(ctx, 9)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Equal(t, 1, reader.gets)
}

func TestInvalidateDropsEntries(t *testing.T) {
	c, reader, mem := newTestCache(t)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)
	_, err = c.GetByID(ctx, 1)
	require.NoError(t, err)

	c.Invalidate(ctx, 1)
	assert.NotContains(t, mem.data, allProductsKey)
	assert.NotContains(t, mem.data, "product:1")

	_, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, reader.lists)
}

func TestFallsBackWhenRedisIsDown(t *testing.T) {
	c, reader, mem := newTestCache(t)
	mem.down = true
	ctx := context.Background()

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	products, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 1, reader.gets)
	assert.Equal(t, 1, reader.lists)

	// must not panic or block
	c.Invalidate(ctx, 1)
}

// ctxCheckingReader fails the way a database driver does when the context it
// was handed is already done.
type ctxCheckingReader struct{ *countingReader }

func (r ctxCheckingReader) GetByID(ctx context.Context, id int64) (entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return entity.Product{}, err
	}
	return r.countingReader.GetByID(ctx, id)
}

func (r ctxCheckingReader) List(ctx context.Context) ([]entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.countingReader.List(ctx)
}

func TestLoadSurvivesCallerCancellation(t *testing.T) {
	c, reader, mem := newTestCache(t)
	c.next = ctxCheckingReader{reader}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p, err := c.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Bowl", p.Name)
	assert.Contains(t, mem.data, "product:1")

	products, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}
