package workers

import (
	"clinic-desk/contract"
	"clinic-desk/domain"
	"clinic-desk/observability"
	"context"
	"log/slog"
	"time"
)

var _ contract.Worker = (*MonitoringWorker)(nil)

type SnapshotProvider func() domain.StatusSnapshot

// MonitoringWorker periodically refreshes the desk stats and logs them.
type MonitoringWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	snapshot   SnapshotProvider
	interval   time.Duration
}

func NewMonitoringWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	snapshot SnapshotProvider, interval time.Duration) *MonitoringWorker {
	return &MonitoringWorker{log: log, monitoring: monitoring, snapshot: snapshot, interval: interval}
}

func (w *MonitoringWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping monitoring")
			return nil
		case <-ticker.C:
			stats := w.monitoring.Refresh(w.snapshot())
			w.log.Debug("📊 Desk stats",
				"waiting", stats.Waiting,
				"occupied", stats.Occupied,
				"capacity", stats.Capacity,
				"admitted", stats.Admitted,
				"discharged", stats.Discharged,
				"races", stats.CapacityRaces,
				"rss_mb", stats.RSSMb,
				"cpu", stats.CPUPercent,
			)
		}
	}
}
