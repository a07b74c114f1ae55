package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"cafe-delivery-service/internal/cache"
	"cafe-delivery-service/internal/config"
	"cafe-delivery-service/internal/http/handlers"
	"cafe-delivery-service/internal/http/middleware"
	"cafe-delivery-service/internal/http/middleware/ratelimit"
	"cafe-delivery-service/internal/http/pprofserver"
	"cafe-delivery-service/internal/http/router"
	"cafe-delivery-service/internal/logx"
	"cafe-delivery-service/internal/metrics"
	"cafe-delivery-service/internal/repository"
	"cafe-delivery-service/internal/service/delivery"
	"cafe-delivery-service/internal/service/notify"
	"cafe-delivery-service/internal/transport/kafka"
)

type (
	dbConnectFunc    func(context.Context, logx.Logger, string, int, time.Duration) (*pgxpool.Pool, error)
	redisConnectFunc func(context.Context, config.Redis) (*redis.Client, error)
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect    dbConnectFunc
	redisConnect redisConnectFunc
	loadConfig   func() (*config.Config, error)
	logFatalf    func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect:    connectDbWithRetry,
		redisConnect: connectRedis,
		loadConfig:   config.Load,
		logFatalf:    log.Fatalf,
	}
}

// WithDBConnect sets the database connection function
func (b *ContainerBuilder) WithDBConnect(fn dbConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithRedisConnect sets the redis connection function
func (b *ContainerBuilder) WithRedisConnect(fn redisConnectFunc) *ContainerBuilder {
	if fn != nil {
		b.redisConnect = fn
	}
	return b
}

// WithConfig replaces flag and environment loading
func (b *ContainerBuilder) WithConfig(fn func() (*config.Config, error)) *ContainerBuilder {
	if fn != nil {
		b.loadConfig = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds the API container
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

// MustBuildWorker builds the worker container
func (b *ContainerBuilder) MustBuildWorker(ctx context.Context) *dig.Container {
	container, err := b.buildWorker(ctx)
	if err != nil {
		b.logFatalf("failed to build worker container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container, err := b.buildShared(ctx, serviceAPI)
	if err != nil {
		return nil, err
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) buildWorker(ctx context.Context) (*dig.Container, error) {
	container, err := b.buildShared(ctx, serviceWorker)
	if err != nil {
		return nil, err
	}
	if err := registerWorker(container); err != nil {
		return nil, fmt.Errorf("worker: %w", err)
	}
	return container, nil
}

func (b *ContainerBuilder) buildShared(ctx context.Context, service string) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx, service, b.loadConfig); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerCache(container, b.redisConnect); err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	if err := registerMetrics(container); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := registerNotify(container); err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	if err := registerDomainServices(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerDebugServer(container); err != nil {
		return nil, fmt.Errorf("debug server: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds the API container with production defaults
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

// MustBuildWorkerContainer builds the worker container with production defaults
func MustBuildWorkerContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuildWorker(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

const (
	serviceAPI    = "service-delivery"
	serviceWorker = "service-delivery-worker"
)

func registerCore(container *dig.Container, ctx context.Context, service string, load func() (*config.Config, error)) error {
	return provideAll(container,
		func() context.Context { return ctx },
		load,
		func(cfg *config.Config) logx.Logger { return NewLogger(cfg, service) },
		newRegistry,
		func(reg *prometheus.Registry) prometheus.Registerer { return reg },
		func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
	)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func registerDb(container *dig.Container, dbConnect dbConnectFunc) error {
	providerDB := func(ctx context.Context, cfg *config.Config, logger logx.Logger) (*pgxpool.Pool, error) {
		return dbConnect(ctx, logger, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB, repository.NewDeliveryRepo)
}

// registerCache provides a nil *redis.Client and a no-op cache when Redis is
// not configured.
func registerCache(container *dig.Container, redisConnect redisConnectFunc) error {
	clientProvider := func(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
		if !cfg.Redis.Enabled() {
			return nil, nil
		}
		return redisConnect(ctx, cfg.Redis)
	}
	cacheProvider := func(cfg *config.Config, rdb *redis.Client, logger logx.Logger) delivery.DetailsCache {
		if rdb == nil {
			logger.Info("redis not configured, delivery cache disabled")
			return cache.Nop{}
		}
		return cache.NewDeliveryCache(rdb, cfg.Redis.TTL, logger)
	}
	return provideAll(container, clientProvider, cacheProvider)
}

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	HTTP                   *metrics.HTTP
	Delivery               *metrics.Delivery
}

func provideMetrics(reg prometheus.Registerer) (metricsOut, error) {
	rl := metrics.NewRateLimitExceededTotal()
	if err := reg.Register(rl); err != nil {
		return metricsOut{}, fmt.Errorf("register rate_limit_exceeded_total: %w", err)
	}
	httpMetrics, err := metrics.NewHTTP(reg)
	if err != nil {
		return metricsOut{}, fmt.Errorf("register http metrics: %w", err)
	}
	deliveryMetrics, err := metrics.NewDelivery(reg)
	if err != nil {
		return metricsOut{}, fmt.Errorf("register delivery metrics: %w", err)
	}
	return metricsOut{
		RateLimitExceededTotal: rl,
		HTTP:                   httpMetrics,
		Delivery:               deliveryMetrics,
	}, nil
}

func registerMetrics(container *dig.Container) error {
	return provideAll(container, provideMetrics)
}

// registerNotify publishes intents to Kafka when brokers are configured and
// to the log otherwise.
func registerNotify(container *dig.Container) error {
	producerProvider := func(cfg *config.Config) (*kafka.Producer, error) {
		if !cfg.Kafka.Enabled() {
			return nil, nil
		}
		return kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationsTopic)
	}
	publisherProvider := func(p *kafka.Producer, logger logx.Logger) delivery.IntentPublisher {
		var sink notify.Sink = notify.NewLogSink(logger)
		if p != nil {
			sink = p
		}
		return notify.NewDispatcher(sink, logger)
	}
	return provideAll(container, producerProvider, publisherProvider)
}

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		func(
			cfg *config.Config,
			repo *repository.DeliveryRepo,
			detailsCache delivery.DetailsCache,
			publisher delivery.IntentPublisher,
			m *metrics.Delivery,
			logger logx.Logger,
		) *delivery.Service {
			return delivery.NewDeliveryService(repo, detailsCache, publisher, m, cfg.Delivery.OperationTimeout, logger).
				WithLocation(cfg.Delivery.Location)
		},
	)
}

type debugServerOut struct {
	dig.Out

	Server *http.Server `name:"pprof_server"`
}

func registerDebugServer(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config, g prometheus.Gatherer) debugServerOut {
			if !cfg.Pprof.Enabled {
				return debugServerOut{}
			}
			return debugServerOut{Server: &http.Server{
				Addr:              cfg.Pprof.Addr,
				Handler:           pprofserver.Handler(pprofserver.Config{User: cfg.Pprof.User, Pass: cfg.Pprof.Pass}, g),
				ReadHeaderTimeout: 5 * time.Second,
			}}
		},
	)
}

type routerIn struct {
	dig.In

	Base      *handlers.Handlers
	Delivery  *handlers.DeliveryHandler
	Logger    logx.Logger
	HTTP      *metrics.HTTP
	RateLimit *ratelimit.Middleware
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}
	routerProvider := func(in routerIn) http.Handler {
		return router.New(in.Base, in.Delivery,
			middleware.Observability(in.Logger, in.HTTP),
			in.RateLimit.Handler(),
		)
	}
	return provideAll(container,
		handlers.New,
		handlers.NewDeliveryUsecase,
		handlers.NewDeliveryHandler,
		newRateLimitClock,
		newRateLimiter,
		newRateLimitMiddleware,
		routerProvider,
		serverProvider,
	)
}
