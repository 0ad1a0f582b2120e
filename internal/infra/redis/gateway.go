package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-catalog-service/internal/domain"
)

const snapshotKey = "catalog:snapshot"

// Backend is the gateway this cache decorates (file, Postgres, ...).
type Backend interface {
	Load(ctx context.Context) ([]domain.Subject, error)
	Save(ctx context.Context, subjects []domain.Subject) error
}

// Gateway caches the marshaled catalog snapshot under a single Redis key
// with TTL and falls back to the backend on a miss. Saves write through:
// the backend is the source of durability, the cache is refreshed only
// after it succeeds.
type Gateway struct {
	client  *redis.Client
	backend Backend
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

func NewGateway(client *redis.Client, backend Backend, ttl time.Duration) *Gateway {
	return &Gateway{
		client:  client,
		backend: backend,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *Gateway) Load(ctx context.Context) ([]domain.Subject, error) {
	if subjects, ok := g.cached(ctx); ok {
		return subjects, nil
	}

	result, err, _ := g.sf.Do(snapshotKey, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if subjects, ok := g.cached(ctx); ok {
			return subjects, nil
		}
		subjects, err := g.backend.Load(ctx)
		if err != nil {
			return nil, err
		}
		g.fill(ctx, subjects)
		return subjects, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Subject), nil
}

func (g *Gateway) Save(ctx context.Context, subjects []domain.Subject) error {
	if err := g.backend.Save(ctx, subjects); err != nil {
		return err
	}
	g.fill(ctx, subjects)
	return nil
}

func (g *Gateway) cached(ctx context.Context) ([]domain.Subject, bool) {
	raw, err := g.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		return nil, false
	}
	var subjects []domain.Subject
	if err := json.Unmarshal(raw, &subjects); err != nil {
		return nil, false
	}
	return subjects, true
}

// fill is best-effort; a cache write failure never fails the operation.
func (g *Gateway) fill(ctx context.Context, subjects []domain.Subject) {
	data, err := json.Marshal(subjects)
	if err != nil {
		return
	}
	_ = g.client.Set(ctx, snapshotKey, data, g.ttlWithJitter()).Err()
}

func (g *Gateway) ttlWithJitter() time.Duration {
	if g.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(g.ttl) / 10
	return g.ttl + time.Duration(g.rnd.Int63n(jitterMax+1))
}

// Invalidate drops the cached snapshot so the next load hits the backend.
func (g *Gateway) Invalidate(ctx context.Context) error {
	if err := g.client.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	return nil
}
