package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"cafe-delivery-service/internal/logx"
	"cafe-delivery-service/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// MustRun starts the API using the provided DI container and blocks until
// the container context is cancelled.
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

type apiIn struct {
	dig.In

	Ctx      context.Context
	Logger   logx.Logger
	Server   *http.Server
	Debug    *http.Server `name:"pprof_server" optional:"true"`
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Producer *kafka.Producer
}

func run(container *dig.Container) error {
	return container.Invoke(serveAPI)
}

func serveAPI(in apiIn) error {
	defer closeResources(in.Logger, in.Pool, in.Redis, in.Producer)

	if in.Pool != nil {
		if err := migrate(in.Ctx, in.Pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	servers := []*http.Server{in.Server}
	if in.Debug != nil {
		servers = append(servers, in.Debug)
	}

	g, ctx := errgroup.WithContext(in.Ctx)
	for _, srv := range servers {
		g.Go(func() error { return listen(srv, in.Logger) })
	}
	g.Go(func() error {
		<-ctx.Done()
		in.Logger.Info("shutting down")
		shutdown(in.Logger, shutdownTimeout, servers...)
		return nil
	})
	return g.Wait()
}

func listen(srv *http.Server, logger logx.Logger) error {
	logger.Info("listening", logx.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return nil
}

func shutdown(logger logx.Logger, timeout time.Duration, servers ...*http.Server) {
	shCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shCtx); err != nil {
			logger.Warn("graceful shutdown error", logx.String("addr", srv.Addr), logx.Err(err))
		}
	}
}

func closeResources(logger logx.Logger, pool *pgxpool.Pool, rdb *redis.Client, producer *kafka.Producer) {
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka producer close error", logx.Err(err))
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", logx.Err(err))
		}
	}
	if pool != nil {
		pool.Close()
	}
	_ = logger.Sync()
}
