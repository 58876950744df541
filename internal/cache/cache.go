// Package cache keeps recently loaded circuits close to the API. Circuits
// never change after they are saved, so entries expire only by TTL.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/metrics"
	"github.com/isdelr/circuitgen-be/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// CircuitCache stores circuits by id. Lookups never fail: a backend error
// counts as a miss.
type CircuitCache interface {
	Get(ctx context.Context, id string) (models.Circuit, bool)
	Set(ctx context.Context, circuit models.Circuit)
}

// Noop is used when no cache backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (models.Circuit, bool) { return models.Circuit{}, false }
func (Noop) Set(context.Context, models.Circuit)                {}

const keyPrefix = "circuit:"

// RedisCache stores circuits as JSON strings in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache over an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// entry mirrors models.Circuit including the owner column, which the API
// representation hides.
type entry struct {
	ID          string         `json:"id"`
	UserID      *int64         `json:"user_id"`
	Query       string         `json:"query"`
	DiagramData datatypes.JSON `json:"diagram_data"`
	Code        string         `json:"code"`
	BOM         datatypes.JSON `json:"bom"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Get returns the cached circuit for id, if any.
func (c *RedisCache) Get(ctx context.Context, id string) (models.Circuit, bool) {
	data, err := c.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("circuit_id", id).Msg("Cache read failed")
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return models.Circuit{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		log.Warn().Err(err).Str("circuit_id", id).Msg("Discarding undecodable cache entry")
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return models.Circuit{}, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return models.Circuit{
		ID:          e.ID,
		UserID:      e.UserID,
		Query:       e.Query,
		DiagramData: e.DiagramData,
		Code:        e.Code,
		BOM:         e.BOM,
		CreatedAt:   e.CreatedAt,
	}, true
}

// Set stores circuit until the TTL elapses.
func (c *RedisCache) Set(ctx context.Context, circuit models.Circuit) {
	data, err := json.Marshal(entry{
		ID:          circuit.ID,
		UserID:      circuit.UserID,
		Query:       circuit.Query,
		DiagramData: circuit.DiagramData,
		Code:        circuit.Code,
		BOM:         circuit.BOM,
		CreatedAt:   circuit.CreatedAt,
	})
	if err != nil {
		log.Warn().Err(err).Str("circuit_id", circuit.ID).Msg("Cache encode failed")
		return
	}
	if err := c.client.Set(ctx, keyPrefix+circuit.ID, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("circuit_id", circuit.ID).Msg("Cache write failed")
	}
}
