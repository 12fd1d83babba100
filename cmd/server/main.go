package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/skylinkhq/flightsearch/internal/cache"
	"github.com/skylinkhq/flightsearch/internal/connection"
	"github.com/skylinkhq/flightsearch/internal/criteria"
	"github.com/skylinkhq/flightsearch/internal/enrichment"
	"github.com/skylinkhq/flightsearch/internal/handler"
	"github.com/skylinkhq/flightsearch/internal/repository"
	"github.com/skylinkhq/flightsearch/internal/search"
)

type config struct {
	Port              string
	AppEnv            string
	FixturePath       string
	CacheEnabled      bool
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	EnrichmentBaseURL string
	EnrichmentRPS     float64
	EnrichmentBurst   int
	RelaxedConnection bool
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()

	logger := newLogger(cfg.AppEnv)

	repo := repository.NewMemory()
	if cfg.FixturePath != "" {
		if err := repo.LoadFile(cfg.FixturePath); err != nil {
			logger.Fatal().Err(err).Str("path", cfg.FixturePath).Msg("failed to load flight fixture")
		}
	}

	policy := connection.DefaultPolicy()
	if cfg.RelaxedConnection {
		policy = connection.RelaxedPolicy()
	}
	finder := connection.NewFinder(repo, policy, logger)

	var enricher *enrichment.Client
	if cfg.EnrichmentBaseURL != "" {
		enrichCfg := enrichment.DefaultConfig()
		if cfg.EnrichmentRPS > 0 {
			enrichCfg.RequestsPerSecond = cfg.EnrichmentRPS
		}
		if cfg.EnrichmentBurst > 0 {
			enrichCfg.Burst = cfg.EnrichmentBurst
		}
		provider := enrichment.NewHTTPProvider(cfg.EnrichmentBaseURL, nil)
		enricher = enrichment.NewClient(provider, enrichCfg, logger)
		logger.Info().Str("base_url", cfg.EnrichmentBaseURL).Msg("enrichment enabled")
	} else {
		logger.Info().Msg("enrichment disabled")
	}

	var store cache.Store
	if cfg.CacheEnabled {
		redisStore, err := cache.NewRedisStore(cache.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store = redisStore
		logger.Info().Str("host", cfg.RedisHost).Str("port", cfg.RedisPort).Msg("redis cache enabled")
	} else {
		store = cache.NewNoOpStore()
		logger.Info().Msg("cache disabled")
	}
	resultCache := cache.New(store, cache.DefaultTTLPolicy(), logger)

	searcher := search.New(repo, repo, finder, enricher, resultCache, criteria.DefaultRules(), logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	handler.NewSearchHandler(searcher, logger).Register(e)

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting flight search server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger(env string) zerolog.Logger {
	level := zerolog.DebugLevel
	if env == "production" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

func loadConfig() config {
	return config{
		Port:              getEnv("PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "development"),
		FixturePath:       getEnv("FLIGHT_FIXTURE_PATH", ""),
		CacheEnabled:      getEnvBool("CACHE_ENABLED", true),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		EnrichmentBaseURL: getEnv("ENRICHMENT_BASE_URL", ""),
		EnrichmentRPS:     getEnvFloat("ENRICHMENT_RPS", 0),
		EnrichmentBurst:   getEnvInt("ENRICHMENT_BURST", 0),
		RelaxedConnection: getEnvBool("RELAXED_CONNECTION_WINDOW", false),
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

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}
