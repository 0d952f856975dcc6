package sink

import (
	"clinic-desk/domain/event"
	"clinic-desk/repositories"
	"context"
	"fmt"
	"log/slog"
)

// Journal persists the desk history: every screen snapshot and every completed visit.
type Journal struct {
	visits    repositories.IVisitRepository
	snapshots repositories.ISnapshotRepository
	log       *slog.Logger
}

func NewJournal(visits repositories.IVisitRepository, snapshots repositories.ISnapshotRepository, log *slog.Logger) Journal {
	return Journal{visits: visits, snapshots: snapshots, log: log}
}

func (j Journal) Consume(_ context.Context, e event.DeskEvent) error {
	switch evt := e.(type) {
	case event.StatusChanged:
		return j.snapshots.StoreSnapshot(evt.Snapshot)
	case event.PatientDischarged:
		return j.visits.StoreVisit(evt.Visit)
	default:
		j.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}
