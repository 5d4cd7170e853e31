// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package main contains cache main function to start the cache service.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/absmach/mgcache"
	"github.com/absmach/mgcache/api"
	"github.com/absmach/mgcache/cache"
	"github.com/absmach/mgcache/cache/middleware"
	cacheredis "github.com/absmach/mgcache/cache/redis"
	"github.com/absmach/mgcache/codec"
	redisclient "github.com/absmach/mgcache/internal/clients/redis"
	"github.com/absmach/mgcache/internal/env"
	mglog "github.com/absmach/mgcache/logger"
	jaegerclient "github.com/absmach/mgcache/pkg/jaeger"
	"github.com/absmach/mgcache/pkg/prometheus"
	"github.com/absmach/mgcache/pkg/server"
	"github.com/absmach/mgcache/pkg/server/http"
	"github.com/absmach/mgcache/pkg/uuid"
	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	svcName        = "cache"
	envFileKey     = "MG_CACHE_ENV_FILE"
	envPrefixRedis = "MG_CACHE_REDIS_"
	envPrefixHTTP  = "MG_CACHE_HTTP_"
	defSvcHTTPPort = "9030"

	// Running instances are recorded under this prefix until shutdown. A
	// single colon keeps the keys out of the "<region>::" key space.
	instanceKeyPrefix = "mgcache:instances:"
)

type config struct {
	LogLevel       string        `env:"MG_CACHE_LOG_LEVEL"       envDefault:"info"`
	InstanceID     string        `env:"MG_CACHE_INSTANCE_ID"     envDefault:""`
	TTL            time.Duration `env:"MG_CACHE_TTL"             envDefault:"3m"`
	Regions        []string      `env:"MG_CACHE_REGIONS"         envDefault:"" envSeparator:","`
	DynamicRegions bool          `env:"MG_CACHE_DYNAMIC_REGIONS" envDefault:"true"`
	CacheNulls     bool          `env:"MG_CACHE_NULL_VALUES"     envDefault:"false"`
	JaegerURL      url.URL       `env:"MG_JAEGER_URL"            envDefault:"http://localhost:4318/v1/traces"`
	TraceRatio     float64       `env:"MG_JAEGER_TRACE_RATIO"    envDefault:"1.0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if file := os.Getenv(envFileKey); file != "" {
		if err := mgcache.LoadEnvFile(file); err != nil {
			log.Fatalf("failed to load %s environment file %s: %s", svcName, file, err)
		}
	}

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load %s configuration : %s", svcName, err)
	}

	logger, err := mglog.New(os.Stdout, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %s", err)
	}

	var exitCode int
	defer mglog.ExitWithError(&exitCode)

	if cfg.InstanceID == "" {
		if cfg.InstanceID, err = uuid.New().ID(); err != nil {
			logger.Error(fmt.Sprintf("failed to generate instanceID: %s", err))
			exitCode = 1
			return
		}
	}

	tp, err := jaegerclient.NewProvider(ctx, svcName, &cfg.JaegerURL, cfg.InstanceID, cfg.TraceRatio)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to init Jaeger: %s", err))
		exitCode = 1
		return
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error(fmt.Sprintf("error shutting down tracer provider: %s", err))
		}
	}()
	tracer := tp.Tracer(svcName)

	redisConfig := redisclient.Config{}
	if err := env.Parse(&redisConfig, env.Options{Prefix: envPrefixRedis}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s Redis configuration : %s", svcName, err))
		exitCode = 1
		return
	}
	client, err := redisclient.Connect(ctx, redisConfig)
	if err != nil {
		logger.Error(err.Error())
		exitCode = 1
		return
	}
	logger.Info("Successfully connected to Redis server", slog.String("url", redactURL(redisConfig.URL)))

	serializer := codec.New(codec.NewRegistry())

	manager, err := newManager(client, serializer, cfg, logger, tracer)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to create cache manager: %s", err))
		exitCode = 1
		return
	}
	defer manager.Close()
	logger.Info("Cache manager ready",
		slog.String("ttl", manager.Defaults().TTL.String()),
		slog.Any("regions", manager.Names()),
		slog.Bool("dynamic_regions", cfg.DynamicRegions),
	)

	template := cacheredis.NewTemplate(client, serializer)
	instanceKey := instanceKeyPrefix + cfg.InstanceID
	instance := map[string]any{
		"service":    svcName,
		"version":    mgcache.Version,
		"started_at": time.Now().UTC(),
	}
	if err := template.Set(ctx, instanceKey, instance, 0); err != nil {
		logger.Error(fmt.Sprintf("failed to register %s instance: %s", svcName, err))
		exitCode = 1
		return
	}
	defer func() {
		if _, err := template.Delete(context.Background(), instanceKey); err != nil {
			logger.Error(fmt.Sprintf("failed to deregister %s instance: %s", svcName, err))
		}
	}()

	httpServerConfig := server.Config{Port: defSvcHTTPPort}
	if err := env.Parse(&httpServerConfig, env.Options{Prefix: envPrefixHTTP}); err != nil {
		logger.Error(fmt.Sprintf("failed to load %s HTTP server configuration : %s", svcName, err.Error()))
		exitCode = 1
		return
	}

	hs := http.NewServer(ctx, cancel, svcName, httpServerConfig, api.MakeHandler(svcName, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service terminated: %s", svcName, err))
	}
}

func newManager(client *redis.Client, serializer cache.Serializer, cfg config, logger *slog.Logger, tracer trace.Tracer) (*cache.Manager, error) {
	store := cacheredis.NewStore(client)
	store = middleware.LoggingMiddleware(store, logger)
	counter, latency := prometheus.MakeMetrics(svcName, "redis_store")
	lookups := prometheus.MakeLookupMetrics(svcName, "redis_store")
	store = middleware.MetricsMiddleware(store, counter, latency, lookups)
	store = middleware.TracingMiddleware(store, tracer)

	defaults := cache.DefaultConfig(serializer).WithTTL(cfg.TTL)
	if cfg.CacheNulls {
		defaults = defaults.WithNullValues()
	}

	var regions []string
	for _, name := range cfg.Regions {
		if name = strings.TrimSpace(name); name != "" {
			regions = append(regions, name)
		}
	}

	return cache.NewManager(store, defaults,
		cache.WithRegions(regions...),
		cache.WithDynamicRegions(cfg.DynamicRegions),
	)
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	return u.Redacted()
}
