package workers

import (
	"clinic-desk/contract"
	"clinic-desk/domain/event"
	"clinic-desk/errors"
	"context"
	"fmt"
	"log/slog"
	"time"
)

var _ contract.Worker = (*EventFanout)(nil)

// EventFanout delivers desk events to every sink, one event at a time.
//
// Delivery is best-effort: a sink that fails, panics or exceeds sinkTimeout
// is logged and skipped, it never holds back the registration desk.
// Sinks see events in publication order.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DeskEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events <-chan event.DeskEvent,
	sinks []contract.EventSink, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, events: events, sinks: sinks, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.flush(ctx)
			w.log.Debug("Context done, stopping event fanout")
			return nil
		}
	}
}

// flush delivers what is still buffered so the last snapshots aren't lost on shutdown.
func (w *EventFanout) flush(ctx context.Context) {
	for {
		select {
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		default:
			return
		}
	}
}

// Fanout hands evt to each sink in turn.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DeskEvent) {
	for _, sink := range w.sinks {
		if err := w.consume(ctx, sink, evt); err != nil {
			w.log.Error("Sink failed", "sink", fmt.Sprintf("%T", sink), "event", evt.Type(), "error", err)
		}
	}
}

// consume bounds a single delivery by sinkTimeout. Shutdown doesn't cut a
// delivery short, the timeout alone does.
func (w *EventFanout) consume(ctx context.Context, sink contract.EventSink, evt event.DeskEvent) error {
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.sinkTimeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("%w: sink: %v", errors.ErrWorkerPanic, r)
			}
		}()
		result <- sink.Consume(sinkCtx, evt)
	}()

	select {
	case err := <-result:
		return err
	case <-sinkCtx.Done():
		return sinkCtx.Err()
	}
}
