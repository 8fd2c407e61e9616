package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"registro/internal/contact/adapters"
	"registro/internal/contact/admission"
	"registro/internal/contact/countcache"
	"registro/internal/contact/handler"
	contactmetrics "registro/internal/contact/metrics"
	"registro/internal/contact/service"
	"registro/internal/contact/store"
	"registro/internal/platform/config"
	"registro/internal/platform/database"
	"registro/internal/platform/dynamo"
	"registro/internal/platform/health"
	"registro/internal/platform/httpserver"
	"registro/internal/platform/kafka/producer"
	"registro/internal/platform/logger"
	"registro/internal/platform/metrics"
	"registro/internal/platform/redis"
	httptransport "registro/internal/transport/http"
	"registro/pkg/platform/middleware/metadata"
	"registro/pkg/platform/middleware/ratelimit"
	"registro/pkg/platform/middleware/request"
	"registro/pkg/platform/privacy"
	"registro/pkg/requestcontext"
)

const (
	poolStatsInterval = 15 * time.Second
	producerFlush     = 5 * time.Second
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("registro stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	log.Info("initializing registro",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"store_backend", cfg.Store.Backend,
		"table", cfg.Store.TableName,
		"max_records", cfg.Registration.MaxRecords,
		"cache_ttl", cfg.Registration.CacheTTL,
		"admission_mode", cfg.Registration.AdmissionMode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry(health.Version)
	healthHandler := health.New(health.Info{
		TableName:  cfg.Store.TableName,
		Region:     cfg.Store.Region,
		MaxRecords: cfg.Registration.MaxRecords,
	}, cfg.Environment)

	g, gctx := errgroup.WithContext(ctx)

	backend, closeStore, err := openStore(ctx, cfg, log, reg, healthHandler, g, gctx)
	if err != nil {
		return err
	}
	defer closeStore()
	contactStore := store.NewTraced(backend, cfg.Store.Backend)

	contactMetrics := contactmetrics.New(reg)
	contactMetrics.SetMaxRecords(cfg.Registration.MaxRecords)

	mode, err := admission.ParseMode(cfg.Registration.AdmissionMode)
	if err != nil {
		return err
	}
	cacheOpts := []countcache.Option{countcache.WithObserver(contactMetrics)}
	if mode == admission.ModeStrict {
		cacheOpts = append(cacheOpts, countcache.WithConservativeRefresh())
	}
	cache := countcache.New(contactStore, cfg.Registration.CacheTTL, cacheOpts...)
	if n, err := cache.ForceRefresh(ctx, time.Now()); err != nil {
		log.Warn("initial count refresh failed; starting from zero", "error", err)
	} else {
		log.Info("record count loaded", "count", n)
	}

	admitter := admission.New(cache, mode, log)

	publisher, closePublisher, err := openPublisher(cfg, log, healthHandler)
	if err != nil {
		return err
	}
	defer closePublisher()

	svc := service.New(contactStore, admitter, cache, cfg.Registration.MaxRecords,
		service.WithLogger(log),
		service.WithMetrics(contactMetrics),
		service.WithPublisher(publisher),
	)

	handlerOpts := []handler.Option{handler.WithErrorDetails(!cfg.IsProduction())}
	if cfg.RateLimit.RPS > 0 {
		limiter := ratelimit.NewStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		g.Go(func() error { return limiter.Run(gctx) })
		handlerOpts = append(handlerOpts, handler.WithRegisterMiddleware(
			ratelimit.Middleware(limiter, func(r *http.Request) {
				log.WarnContext(r.Context(), "registration rate limited",
					"client", privacy.AnonymizeIP(requestcontext.ClientIP(r.Context())),
					"request_id", requestcontext.RequestID(r.Context()),
				)
			}),
		))
	}
	contactHandler := handler.New(svc, log, handlerOpts...)

	trusted, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	router := httptransport.NewRouter(httptransport.Config{
		CORSOrigins:    cfg.CORSOrigin,
		StaticDir:      cfg.StaticDir,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		TrustedProxies: trusted,
	}, httptransport.Deps{
		Logger:   log,
		Registry: reg,
		Metrics:  request.NewMetrics(reg),
		Health:   healthHandler,
		Modules:  []httptransport.RouteRegistrar{contactHandler},
	})

	srv := httpserver.New(cfg.Addr, router, httpserver.DefaultConfig().ForRequestTimeout(cfg.RequestTimeout))
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		return srv.Run(gctx)
	})

	err = g.Wait()
	log.Info("server stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// openStore connects the configured backend, registers its readiness check
// and starts any background loops it needs on g.
func openStore(ctx context.Context, cfg config.Server, log *slog.Logger, reg prometheus.Registerer,
	hh *health.Handler, g *errgroup.Group, gctx context.Context,
) (store.Store, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendDynamoDB:
		client, err := dynamo.New(ctx, dynamo.Config{Region: cfg.Store.Region, Endpoint: cfg.Store.Endpoint})
		if err != nil {
			return nil, noop, err
		}
		if cfg.Store.Endpoint != "" {
			if err := store.EnsureDynamoTable(ctx, client, cfg.Store.TableName); err != nil {
				return nil, noop, err
			}
		}
		hh.RegisterCheck("dynamodb", dynamo.TableCheck(client, cfg.Store.TableName))
		return store.NewDynamo(client, cfg.Store.TableName), noop, nil

	case config.BackendPostgres:
		pool, err := database.New(ctx, database.DefaultConfig(cfg.Database.URL), reg)
		if err != nil {
			return nil, noop, err
		}
		pg := store.NewPostgres(pool.DB(), cfg.Store.TableName)
		if err := pg.EnsureSchema(ctx); err != nil {
			_ = pool.Close()
			return nil, noop, err
		}
		hh.RegisterCheck("postgres", pool.Health)
		return pg, func() {
			if err := pool.Close(); err != nil {
				log.Error("failed to close database pool", "error", err)
			}
		}, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, redis.DefaultConfig(cfg.Redis.URL), reg)
		if err != nil {
			return nil, noop, err
		}
		hh.RegisterCheck("redis", client.Health)
		g.Go(func() error { return client.RunPoolStats(gctx, poolStatsInterval) })
		return store.NewRedis(client, cfg.Store.TableName), func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", "error", err)
			}
		}, nil

	default:
		log.Warn("using in-memory store; records are lost on restart")
		return store.NewInMemory(), noop, nil
	}
}

// openPublisher returns a Kafka-backed publisher when brokers are configured
// and a no-op one otherwise.
func openPublisher(cfg config.Server, log *slog.Logger, hh *health.Handler) (service.Publisher, func(), error) {
	if cfg.Kafka.Brokers == "" {
		return adapters.NoopPublisher{}, func() {}, nil
	}
	prod, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
	if err != nil {
		return nil, func() {}, fmt.Errorf("create kafka producer: %w", err)
	}
	hh.RegisterCheck("kafka", prod.Health)
	log.Info("publishing registration events", "topic", cfg.Kafka.Topic)
	return adapters.NewEventPublisher(prod, cfg.Kafka.Topic), func() {
		if err := prod.Close(producerFlush); err != nil {
			log.Error("failed to flush kafka producer", "error", err)
		}
	}, nil
}
