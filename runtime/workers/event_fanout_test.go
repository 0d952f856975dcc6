package workers

import (
	"clinic-desk/contract"
	"clinic-desk/domain"
	"clinic-desk/domain/event"
	"clinic-desk/mocks"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func statusChanged(cause event.Cause) event.StatusChanged {
	return event.StatusChanged{
		Cause:    cause,
		Snapshot: domain.StatusSnapshot{Department: "CT", At: time.Now()},
	}
}

func TestEventFanout_Fanout(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	sink1 := mocks.NewMockEventSink(ctrl)
	sink2 := mocks.NewMockEventSink(ctrl)

	evt := statusChanged(event.CauseRegistered)

	// Given two sinks, the first one failing
	sink1.EXPECT().Consume(gomock.Any(), evt).Return(errors.New("display unreachable")).Times(1)
	sink2.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout := NewEventFanout(log, nil, []contract.EventSink{sink1, sink2}, time.Second)

	// When an event is fanned out
	// Then both sinks are called despite the first failure
	fanout.Fanout(context.Background(), evt)
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	slow := mocks.NewMockEventSink(ctrl)
	fast := mocks.NewMockEventSink(ctrl)

	// Given a sink never returning before its deadline
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ event.DeskEvent) error {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return ctx.Err()
		}).Times(1)
	fast.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	fanout := NewEventFanout(log, nil, []contract.EventSink{slow, fast}, 20*time.Millisecond)

	// When an event is fanned out
	start := time.Now()
	fanout.Fanout(context.Background(), statusChanged(event.CauseAdmitted))

	// Then the slow sink only costs its timeout
	req.Less(time.Since(start), 60*time.Millisecond)
	// And waiting for the slow goroutine to finish before the controller checks calls
	time.Sleep(80 * time.Millisecond)
}

func TestEventFanout_SinkPanic(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	broken := mocks.NewMockEventSink(ctrl)
	healthy := mocks.NewMockEventSink(ctrl)

	broken.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, event.DeskEvent) error { panic("boom") }).Times(1)
	healthy.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	fanout := NewEventFanout(log, nil, []contract.EventSink{broken, healthy}, time.Second)

	fanout.Fanout(context.Background(), statusChanged(event.CauseDischarged))
}

func TestEventFanout_FlushesOnCancel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockEventSink(ctrl)

	// Given three buffered events and an already cancelled context
	events := make(chan event.DeskEvent, 3)
	events <- statusChanged(event.CauseRegistered)
	events <- statusChanged(event.CauseAdmitted)
	events <- statusChanged(event.CauseDischarged)

	var causes []event.Cause
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e event.DeskEvent) error {
			causes = append(causes, e.(event.StatusChanged).Cause)
			return nil
		}).Times(3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When the fanout runs
	err := NewEventFanout(log, events, []contract.EventSink{sink}, time.Second).Run(ctx)

	// Then every buffered event reached the sink, in order
	req.NoError(err)
	req.Equal([]event.Cause{event.CauseRegistered, event.CauseAdmitted, event.CauseDischarged}, causes)
}
