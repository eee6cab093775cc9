// Package cache implementa la caché del resumen del dashboard sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ports"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

var _ ports.SummaryCache = (*RedisSummaryCache)(nil)

const (
	keyPrefix = "stock-ledger:summary:"
	genKey    = keyPrefix + "gen"
)

// RedisSummaryCache guarda cada resumen como JSON bajo keyPrefix+generación+alcance con TTL.
// Invalidate solo hace INCR del contador; las generaciones viejas expiran por TTL. El TTL
// también acota el desfase si una invalidación se pierde.
type RedisSummaryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient abre el cliente y verifica la conexión.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// NewRedisSummaryCache construye la caché.
func NewRedisSummaryCache(rdb *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{rdb: rdb, ttl: ttl}
}

// Generation lee el contador; si no existe la generación es 0.
func (c *RedisSummaryCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generación: %w", err)
	}
	return gen, nil
}

func (c *RedisSummaryCache) Get(ctx context.Context, gen int64, key string) (*dto.SummaryDTO, bool, error) {
	raw, err := c.rdb.Get(ctx, entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var s dto.SummaryDTO
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false, fmt.Errorf("decodificar resumen cacheado: %w", err)
	}
	return &s, true, nil
}

func (c *RedisSummaryCache) Set(ctx context.Context, gen int64, key string, summary *dto.SummaryDTO) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("codificar resumen: %w", err)
	}
	if err := c.rdb.Set(ctx, entryKey(gen, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate avanza la generación. Es atómico: un Set en curso con la generación anterior ya
// no será leído.
func (c *RedisSummaryCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Incr(ctx, genKey).Err(); err != nil {
		return fmt.Errorf("redis incr generación: %w", err)
	}
	return nil
}

func entryKey(gen int64, key string) string {
	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}
