package sink

import (
	"clinic-desk/domain"
	"clinic-desk/domain/event"
	"context"
	"log/slog"
)

// LogSink writes every desk event as a structured log line.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) LogSink {
	return LogSink{log: log}
}

func (l LogSink) Consume(ctx context.Context, e event.DeskEvent) error {
	switch evt := e.(type) {
	case event.StatusChanged:
		l.log.InfoContext(ctx, "Status changed",
			"cause", evt.Cause,
			"patient", evt.Patient.Name,
			"room", evt.Room,
			"occupancy", evt.Snapshot.Occupancy(),
			"capacity", evt.Snapshot.Capacity(),
			"waiting", domain.PatientNames(evt.Snapshot.Waiting),
		)
	case event.PatientDischarged:
		l.log.InfoContext(ctx, "Patient discharged",
			"patient", evt.Visit.Patient.Name,
			"room", evt.Visit.Room,
			"duration", evt.Visit.Duration(),
		)
	default:
		l.log.DebugContext(ctx, "Unknown event", "type", e.Type())
	}
	return nil
}
