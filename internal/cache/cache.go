package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nugrahasurya/greenflights/internal/models"
)

// Cache stores complete search responses keyed by a fingerprint of the
// search parameters. Read-before-fetch, write-after-fetch.
type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool)
	Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool) {
	data, err := c.client.Get(ctx, Fingerprint(req)).Bytes()
	if err != nil {
		return nil, false
	}

	var resp models.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false
	}

	return &resp, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, Fingerprint(req), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Fingerprint hashes the fields that identify a search. View shaping options
// (sort, filters) are excluded: they are applied after the cache.
func Fingerprint(req models.SearchRequest) string {
	keyData := struct {
		Origin      string
		Destination string
		Departure   string
		Arrival     string
		Adults      int
		CabinClass  string
	}{
		Origin:      req.LocationDeparture,
		Destination: req.LocationArrival,
		Departure:   req.Departure,
		Arrival:     req.Arrival,
		Adults:      req.Adults,
		CabinClass:  req.CabinClass,
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(hash[:])
}
