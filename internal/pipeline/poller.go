package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/robfig/cron/v3"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Run keeps the cache warm: it retries the first refresh with exponential
// backoff until it succeeds, then refreshes on the cron schedule until ctx
// is cancelled. An empty schedule only performs the warm-up.
func (p *Pipeline) Run(ctx context.Context, schedule string) error {
	var scheduler *cron.Cron
	if schedule != "" {
		cronLogger := cron.PrintfLogger(slog.NewLogLogger(p.logger.Handler(), slog.LevelDebug))
		scheduler = cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		)
		if _, err := scheduler.AddFunc(schedule, func() { p.tick(ctx) }); err != nil {
			return fmt.Errorf("parse poll schedule %q: %w", schedule, err)
		}
	}

	p.logger.Info("poller started", "schedule", schedule)
	p.metrics.PollerRunning.Set(1)
	defer p.metrics.PollerRunning.Set(0)

	if !p.warmUp(ctx) {
		p.logger.Info("poller stopping", "reason", ctx.Err())
		return nil
	}

	if scheduler == nil {
		<-ctx.Done()
		p.logger.Info("poller stopping", "reason", ctx.Err())
		return nil
	}

	scheduler.Start()
	<-ctx.Done()
	p.logger.Info("poller stopping", "reason", ctx.Err())
	<-scheduler.Stop().Done()
	return nil
}

func (p *Pipeline) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.RunOnce(ctx); err != nil {
		p.logger.Warn("scheduled refresh failed", "error", err)
	}
}

// warmUp runs RunOnce until the cache holds an entry. Publish failures are
// left to the scheduled cycles. Returns false if ctx ended first.
func (p *Pipeline) warmUp(ctx context.Context) bool {
	backoff := initialBackoff
	for {
		err := p.RunOnce(ctx)
		if err == nil {
			return true
		}
		if _, ok := p.source.Peek(); ok {
			p.logger.Warn("initial publish failed", "error", err)
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Warn("initial refresh failed, retrying", "error", err, "backoff", backoff)
		if !retry.SleepWithContext(ctx, backoff) {
			return false
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}
