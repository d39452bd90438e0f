package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"crowdfund-scraper/internal/config"
	"crowdfund-scraper/internal/observability"
)

type Job func(ctx context.Context) error

// Schedule запускает job согласно scheduler.mode:
//   - oneshot - один раз, ошибка job возвращается вызывающему;
//   - interval - сразу и затем каждые interval_s секунд;
//   - cron - по выражению cron_expr.
//
// В периодических режимах ошибки job только логируются, а Schedule блокируется
// до отмены ctx. Прогоны не перекрываются: пока идёт один, следующий пропускается.
func Schedule(ctx context.Context, cfg config.SchedulerConfig, job Job, logger *observability.Logger) error {
	var schedule string
	runNow := false

	switch cfg.Mode {
	case "", "oneshot":
		return job(ctx)
	case "interval":
		schedule = fmt.Sprintf("@every %ds", cfg.IntervalS)
		runNow = true
	case "cron":
		schedule = cfg.CronExpr
	default:
		return fmt.Errorf("unknown scheduler mode %q", cfg.Mode)
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	wrapped := func() {
		if err := job(ctx); err != nil {
			logger.Error("Scheduled run failed", "error", err.Error())
		}
	}

	entryID, err := c.AddFunc(schedule, wrapped)
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	// первый прогон идёт мимо cron, и Stop() его не ждёт: ждём сами
	var first sync.WaitGroup
	if runNow {
		// через WrappedJob, чтобы первый прогон тоже не перекрывался со следующим
		first.Go(c.Entry(entryID).WrappedJob.Run)
	}

	c.Start()
	logger.Info("Scheduler started", "mode", cfg.Mode, "schedule", schedule)

	<-ctx.Done()
	logger.Info("Scheduler stopping, waiting for the running job")
	<-c.Stop().Done()
	first.Wait()
	return nil
}
