package workers

import (
	"clinic-desk/contract"
	"clinic-desk/errors"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultRestartInterval = 200 * time.Millisecond

// Supervisor owns a context and a cancel function.
// It runs each worker in its own goroutine, recovers panics,
// restarts crashed workers and waits for all of them on shutdown.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	wg              *sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
	onRestart       func(workerName string)
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{wg: &sync.WaitGroup{}, log: log, restartInterval: restartInterval}
}

// OnRestart registers a callback invoked each time a crashed worker is restarted.
func (s *Supervisor) OnRestart(fn func(workerName string)) *Supervisor {
	s.onRestart = fn
	return s
}

// Run starts every registered worker and blocks until all of them returned.
// Cancelling the parent ctx or calling Stop stops the children only.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	workers := append([]contract.Worker(nil), s.workers...)
	s.mu.Unlock()
	defer cancel()

	for _, worker := range workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs a worker under supervision.
// A panic or an error restarts the worker after restartInterval,
// a nil return means the worker is done and is never restarted.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Debug("Stopping worker", "name", workerName)
				return
			}

			err := s.runSafely(ctx, worker)
			if err == nil {
				s.log.Debug("Worker finished", "name", workerName)
				return
			}

			if ctx.Err() != nil {
				s.log.Debug("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
			if s.onRestart != nil {
				s.onRestart(workerName)
			}
		}
	}()
}

func (s *Supervisor) runSafely(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels every supervised worker. Run returns once they are all done.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
