package workers

import (
	"clinic-desk/contract"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*SchedulerWorker)(nil)

// SchedulerWorker drives the registration desk: one Tick per polling interval.
// It finishes on its own once the desk reports a completed drain.
type SchedulerWorker struct {
	log       *slog.Logger
	scheduler contract.Scheduler
	interval  time.Duration
}

func NewSchedulerWorker(log *slog.Logger, scheduler contract.Scheduler, interval time.Duration) *SchedulerWorker {
	return &SchedulerWorker{log: log, scheduler: scheduler, interval: interval}
}

func (w *SchedulerWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping scheduler")
			return ctx.Err()
		case <-ticker.C:
			if w.scheduler.Tick(ctx) {
				w.log.Info("Waiting room drained, scheduler done")
				return nil
			}
		}
	}
}
