package main

import (
	"log"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nugrahasurya/greenflights/internal/cache"
	"github.com/nugrahasurya/greenflights/internal/emissions"
	"github.com/nugrahasurya/greenflights/internal/handler"
	"github.com/nugrahasurya/greenflights/internal/orchestrator"
	"github.com/nugrahasurya/greenflights/internal/providers"
	"github.com/nugrahasurya/greenflights/internal/ratelimit"
)

type Config struct {
	Port         string
	CacheEnabled bool
	CacheBackend string
	CacheTTL     time.Duration
	RedisHost    string
	RedisPort    string

	AmadeusBaseURL   string
	AmadeusAPIKey    string
	AmadeusAPISecret string

	DuffelBaseURL  string
	DuffelAPIToken string

	EmissionsBaseURL string
	EmissionsAPIKey  string
}

func main() {
	cfg := loadConfig()
	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	rateLimiter := ratelimit.NewUpstreamLimiterWithDefaults()
	rateLimiter.SetUpstreamLimit("amadeus", 10, 20)
	rateLimiter.SetUpstreamLimit("duffel", 5, 10)
	rateLimiter.SetUpstreamLimit("emissions", 10, 20)

	primary := providers.NewAmadeusProvider(providers.AmadeusConfig{
		BaseURL:   cfg.AmadeusBaseURL,
		APIKey:    cfg.AmadeusAPIKey,
		APISecret: cfg.AmadeusAPISecret,
	}, rateLimiter)

	secondary := providers.NewDuffelProvider(providers.DuffelConfig{
		BaseURL:  cfg.DuffelBaseURL,
		APIToken: cfg.DuffelAPIToken,
	}, rateLimiter)

	chain := providers.NewChain(primary, secondary)

	emissionsClient := emissions.NewClient(emissions.ClientConfig{
		BaseURL: cfg.EmissionsBaseURL,
		APIKey:  cfg.EmissionsAPIKey,
	}, rateLimiter)
	enricher := emissions.NewEnricher(emissionsClient)

	searchCache := buildCache(cfg)

	orch := orchestrator.New(chain, enricher, searchCache)
	searchHandler := handler.NewSearchHandler(orch)

	e.POST("/date", searchHandler.Search)
	e.GET("/airport-search", searchHandler.AirportSearch)
	e.GET("/health", handler.HealthHandler)

	log.Printf("Starting flight emissions server on port %s", cfg.Port)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func buildCache(cfg Config) cache.Cache {
	if !cfg.CacheEnabled {
		log.Println("Cache disabled")
		return cache.NewNoOpCache()
	}

	if cfg.CacheBackend == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
			TTL:  cfg.CacheTTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Redis cache enabled (host: %s:%s, TTL: %v)", cfg.RedisHost, cfg.RedisPort, cfg.CacheTTL)
		return redisCache
	}

	log.Printf("In-memory cache enabled (TTL: %v)", cfg.CacheTTL)
	return cache.NewMemoryCache(cfg.CacheTTL)
}

func loadConfig() Config {
	return Config{
		Port:         getEnv("PORT", "8080"),
		CacheEnabled: getEnvBool("CACHE_ENABLED", true),
		CacheBackend: getEnv("CACHE_BACKEND", "memory"),
		CacheTTL:     getEnvDuration("CACHE_TTL", 10*time.Minute),
		RedisHost:    getEnv("REDIS_HOST", "localhost"),
		RedisPort:    getEnv("REDIS_PORT", "6379"),

		AmadeusBaseURL:   getEnv("AMADEUS_BASE_URL", "https://test.api.amadeus.com"),
		AmadeusAPIKey:    getEnv("AMADEUS_API_KEY", ""),
		AmadeusAPISecret: getEnv("AMADEUS_API_SECRET", ""),

		DuffelBaseURL:  getEnv("DUFFEL_BASE_URL", "https://api.duffel.com"),
		DuffelAPIToken: getEnv("DUFFEL_API_TOKEN", ""),

		EmissionsBaseURL: getEnv("EMISSIONS_BASE_URL", "https://travelimpactmodel.googleapis.com/v1"),
		EmissionsAPIKey:  getEnv("EMISSIONS_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}
