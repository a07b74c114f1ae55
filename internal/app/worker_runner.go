package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"cafe-delivery-service/internal/config"
	"cafe-delivery-service/internal/logx"
	"cafe-delivery-service/internal/service/delivery"
	"cafe-delivery-service/internal/service/orders"
	"cafe-delivery-service/internal/transport/kafka"
)

func registerWorker(container *dig.Container) error {
	return provideAll(container,
		func(svc *delivery.Service, logger logx.Logger) *orders.Processor {
			return orders.NewProcessor(svc, logger)
		},
		func(cfg *config.Config, p *orders.Processor, logger logx.Logger) (*kafka.Consumer, error) {
			k := cfg.Kafka
			return kafka.NewConsumer(logger, k.Brokers, k.GroupID, k.OrdersTopic, makeOrdersKafka(p, orderEventTimeout))
		},
		func(ctx context.Context, cfg *config.Config, svc *delivery.Service, logger logx.Logger) (gocron.Scheduler, error) {
			return newScheduler(ctx, cfg, svc, logger)
		},
	)
}

// WorkerRunner runs the order event consumer and the periodic jobs
type WorkerRunner struct {
	runFn func(*dig.Container) error
}

// NewWorkerRunner returns a new WorkerRunner
func NewWorkerRunner() *WorkerRunner {
	return &WorkerRunner{runFn: runWorker}
}

// MustRun runs the worker using the provided DI container and panics on failure
func (r *WorkerRunner) MustRun(container *dig.Container) {
	err := r.runFn(container)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	panic(err)
}

type workerIn struct {
	dig.In

	Ctx       context.Context
	Logger    logx.Logger
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Producer  *kafka.Producer
	Consumer  *kafka.Consumer
	Scheduler gocron.Scheduler
	Debug     *http.Server `name:"pprof_server" optional:"true"`
}

func runWorker(container *dig.Container) error {
	return container.Invoke(workerRun)
}

func workerRun(in workerIn) error {
	if in.Scheduler == nil {
		return fmt.Errorf("scheduler is nil: worker container misconfigured")
	}
	defer closeWorker(in)

	if in.Pool != nil {
		if err := migrate(in.Ctx, in.Pool); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(in.Ctx)
	if in.Consumer != nil {
		g.Go(func() error {
			err := in.Consumer.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		in.Logger.Warn("kafka not configured, order events are not consumed")
	}
	if in.Debug != nil {
		g.Go(func() error { return listen(in.Debug, in.Logger) })
	}
	g.Go(func() error {
		<-ctx.Done()
		if in.Debug != nil {
			shutdown(in.Logger, shutdownTimeout, in.Debug)
		}
		return nil
	})

	in.Scheduler.Start()
	in.Logger.Info("service-delivery-worker started")
	return g.Wait()
}

func closeWorker(in workerIn) {
	if err := in.Scheduler.Shutdown(); err != nil {
		in.Logger.Error("scheduler shutdown error", logx.Err(err))
	}
	if err := in.Consumer.Close(); err != nil {
		in.Logger.Error("kafka close error", logx.Err(err))
	}
	closeResources(in.Logger, in.Pool, in.Redis, in.Producer)
}
