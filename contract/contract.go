//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"clinic-desk/domain"
	"clinic-desk/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// It only feeds logs, workers don't carry a name of their own.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives the events published by the registration desk.
// A status reporter is an EventSink handling event.StatusChanged.
type EventSink interface {
	Consume(ctx context.Context, e event.DeskEvent) error
}

// Scheduler is driven by the scheduling loop, one Tick per polling interval.
// Tick reports true once a requested drain has completed.
type Scheduler interface {
	Tick(ctx context.Context) bool
}

type IDispatcher interface {
	Start(ctx context.Context) error
	Register(patient domain.Patient) bool
	Stop() error
	Snapshot() domain.StatusSnapshot
}
