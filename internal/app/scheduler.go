package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"cafe-delivery-service/internal/config"
	"cafe-delivery-service/internal/logx"
)

type periodicService interface {
	SweepOverdue(ctx context.Context) (int64, error)
	RelayIntents(ctx context.Context, limit int) (int, error)
}

type jobs struct {
	svc        periodicService
	logger     logx.Logger
	relayBatch int
}

func (j *jobs) sweepOverdue(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := j.svc.SweepOverdue(ctx); err != nil {
		j.logger.Error("overdue sweep failed", logx.Err(err))
	}
}

func (j *jobs) relayIntents(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := j.svc.RelayIntents(ctx, j.relayBatch)
	if err != nil {
		j.logger.Error("intent relay failed", logx.Err(err))
		return
	}
	if n > 0 {
		j.logger.Info("intents relayed", logx.Int("count", n))
	}
}

// newScheduler registers the periodic worker jobs. The scheduler is not
// started. Jobs run one at a time and a late run is rescheduled, not queued.
func newScheduler(ctx context.Context, cfg *config.Config, svc periodicService, logger logx.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}
	j := &jobs{svc: svc, logger: logger, relayBatch: cfg.Delivery.IntentRelayBatch}

	defs := []struct {
		name  string
		every time.Duration
		run   func(context.Context)
	}{
		{"overdue-sweep", cfg.Delivery.OverdueSweepInterval, j.sweepOverdue},
		{"intent-relay", cfg.Delivery.IntentRelayInterval, j.relayIntents},
	}
	for _, d := range defs {
		run := d.run
		_, err := s.NewJob(
			gocron.DurationJob(d.every),
			gocron.NewTask(func() { run(ctx) }),
			gocron.WithName(d.name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("schedule %s: %w", d.name, err)
		}
	}
	return s, nil
}
