package workers

import (
	"clinic-desk/mocks"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)

	var calls atomic.Int32
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			calls.Add(1)
			panic("boom")
		}).
		AnyTimes()

	var restarts atomic.Int32
	sup := NewSupervisor(log, 20*time.Millisecond).
		OnRestart(func(string) { restarts.Add(1) })

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(ctx)
		close(done)
	}()

	// Waiting for panics and restarts
	<-done

	req.GreaterOrEqual(calls.Load(), int32(2))
	req.GreaterOrEqual(restarts.Load(), int32(1))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)

	// Given a worker running only once
	workerMock.EXPECT().
		Run(gomock.Any()).
		Return(nil).
		Times(1)

	sup := NewSupervisor(log, time.Second)

	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Then supervisor detected a success and stopped
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_Stop(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	workerMock := mocks.NewMockWorker(ctrl)

	started := make(chan struct{})
	// Given a worker blocking until cancellation
	workerMock.EXPECT().
		Run(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}).
		Times(1)

	sup := NewSupervisor(log, time.Second)
	done := make(chan struct{})
	go func() {
		sup.Add(workerMock).Run(context.Background())
		close(done)
	}()
	<-started

	// When the supervisor is stopped
	sup.Stop()

	// Then Run returns without restarting the worker
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have returned after Stop")
	}
}

func TestSupervisor_SchedulerRecoversFromPanickingTick(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	scheduler := mocks.NewMockScheduler(ctrl)

	// Given a desk whose first tick panics and which is drained at the next one
	gomock.InOrder(
		scheduler.EXPECT().Tick(gomock.Any()).DoAndReturn(func(context.Context) bool {
			panic("room lock poisoned")
		}).Times(1),
		scheduler.EXPECT().Tick(gomock.Any()).Return(true).Times(1),
	)

	var restarts atomic.Int32
	sup := NewSupervisor(log, 5*time.Millisecond).
		OnRestart(func(string) { restarts.Add(1) })

	done := make(chan struct{})
	go func() {
		sup.Add(NewSchedulerWorker(log, scheduler, time.Millisecond)).Run(context.Background())
		close(done)
	}()

	// Then the scheduler is restarted once and finishes the drain
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Supervisor should have returned once the drain completed")
	}
	req.Equal(int32(1), restarts.Load())
}
