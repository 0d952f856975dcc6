// Package runtime runs the registration desk: it owns the waiting queue,
// drives admissions into the department rooms and coordinates shutdown.
// Business rules on rooms and patients live in domain.
package runtime

import (
	"clinic-desk/contract"
	"clinic-desk/domain"
	"clinic-desk/domain/event"
	"clinic-desk/errors"
	"clinic-desk/observability"
	"clinic-desk/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	_ contract.IDispatcher = (*Dispatcher)(nil)
	_ contract.Scheduler   = (*Dispatcher)(nil)
)

type Options struct {
	PollInterval    time.Duration
	SinkTimeout     time.Duration
	RestartInterval time.Duration
	MetricInterval  time.Duration
	BufferSize      int
}

func DefaultOptions() Options {
	return Options{
		PollInterval:    time.Second,
		SinkTimeout:     time.Second,
		RestartInterval: 200 * time.Millisecond,
		MetricInterval:  5 * time.Second,
		BufferSize:      256,
	}
}

// Dispatcher is the registration desk of one department.
//
// Lock order: mu, then the department, then the waiting queue, then a single room.
// Treatment timers only take their room lock and call back into the
// dispatcher after releasing it.
type Dispatcher struct {
	mu         sync.Mutex
	log        *slog.Logger
	department *domain.Department
	queue      *domain.WaitingQueue
	monitoring *observability.MonitoringManager
	sinks      []contract.EventSink
	opts       Options
	allocate   func() *domain.Room

	state  State
	active map[domain.PatientID]struct{} // waiting or in treatment
	events chan event.DeskEvent

	cancel    context.CancelFunc
	drained   chan struct{}
	drainOnce *sync.Once
	done      chan struct{}
}

// withDefaults replaces every non-positive field by its DefaultOptions value.
func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.PollInterval <= 0 {
		o.PollInterval = defaults.PollInterval
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = defaults.SinkTimeout
	}
	if o.RestartInterval <= 0 {
		o.RestartInterval = defaults.RestartInterval
	}
	if o.MetricInterval <= 0 {
		o.MetricInterval = defaults.MetricInterval
	}
	if o.BufferSize <= 0 {
		o.BufferSize = defaults.BufferSize
	}
	return o
}

func NewDispatcher(log *slog.Logger, department *domain.Department,
	monitoring *observability.MonitoringManager, opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		log:        log,
		department: department,
		queue:      domain.NewWaitingQueue(),
		monitoring: monitoring,
		opts:       opts,
		state:      Stopped,
		active:     make(map[domain.PatientID]struct{}),
		events:     make(chan event.DeskEvent, opts.BufferSize),
	}
	d.allocate = department.AllocateRoom
	department.OnDischarge(d.onDischarge)
	return d
}

// Add registers sinks receiving every desk event. Sinks added while running
// are picked up at the next Start.
func (d *Dispatcher) Add(sinks ...contract.EventSink) *Dispatcher {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, sinks...)
	return d
}

// Start opens registration and launches the supervised background workers.
// ctx only carries values: the workers are stopped by Stop, never by ctx.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Stopped {
		return fmt.Errorf("%w: desk is %s", errors.ErrAlreadyRunning, d.state)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sup := workers.NewSupervisor(d.log, d.opts.RestartInterval).
		OnRestart(func(string) { d.monitoring.IncrWorkerRestarts() })
	sup.Add(
		workers.NewSchedulerWorker(d.log, d, d.opts.PollInterval),
		workers.NewEventFanout(d.log, d.events, append([]contract.EventSink(nil), d.sinks...), d.opts.SinkTimeout),
		workers.NewMonitoringWorker(d.log, d.monitoring, d.Snapshot, d.opts.MetricInterval),
		workers.NewChannelCapacityWorker(d.log,
			[]workers.NamedChannel{{Name: "desk_events", Channel: d.events}},
			d.opts.BufferSize/10, d.opts.MetricInterval),
	)

	d.state = Running
	d.cancel = cancel
	d.drained = make(chan struct{})
	d.drainOnce = &sync.Once{}
	d.done = make(chan struct{})

	done := d.done
	go func() {
		defer close(done)
		sup.Run(runCtx)
	}()

	d.log.Info("Registration desk open",
		"department", d.department.Name(),
		"rooms", len(d.department.Rooms()),
		"capacity", d.department.Capacity())
	return nil
}

// Register puts the patient at the tail of the waiting queue.
// It returns false when the desk isn't running or the patient is already
// waiting or in treatment.
func (d *Dispatcher) Register(patient domain.Patient) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != Running {
		d.monitoring.IncrRejected()
		d.log.Warn("Registration rejected", "patient", patient.Name, "state", d.state,
			"error", errors.ErrRejectedRegistration)
		return false
	}
	if _, ok := d.active[patient.ID]; ok {
		d.monitoring.IncrRejected()
		d.log.Warn("Registration rejected", "patient", patient.Name,
			"error", errors.ErrDuplicatePatient)
		return false
	}

	d.queue.Enqueue(patient)
	d.active[patient.ID] = struct{}{}
	d.monitoring.IncrRegistered()
	d.log.Debug("Patient registered", "patient", patient.Name, "waiting", d.queue.Len())
	d.publish(event.StatusChanged{
		Cause:    event.CauseRegistered,
		Patient:  patient,
		Snapshot: d.snapshotLocked(),
	})
	return true
}

// Tick runs one scheduling iteration: it admits waiting patients in arrival
// order as long as a room has a free slot. It reports true once a drain
// was requested and nobody is left waiting or in treatment.
func (d *Dispatcher) Tick(_ context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for !d.queue.IsEmpty() {
		room := d.allocate()
		if room == nil {
			break
		}
		patient, ok := d.queue.DequeueIfMatch(room.Admit)
		if !ok {
			// The head stays where it is, the next tick tries again.
			d.monitoring.IncrCapacityRaces()
			d.log.Debug("Admission lost", "room", room.Name(), "error", errors.ErrCapacityRace)
			break
		}
		d.monitoring.IncrAdmitted()
		d.log.Debug("Patient admitted", "patient", patient.Name, "room", room.Name())
		d.publish(event.StatusChanged{
			Cause:    event.CauseAdmitted,
			Patient:  patient,
			Room:     room.Name(),
			Snapshot: d.snapshotLocked(),
		})
	}

	if d.state == Draining && d.drainedLocked() {
		d.drainOnce.Do(func() { close(d.drained) })
		return true
	}
	return false
}

func (d *Dispatcher) drainedLocked() bool {
	return len(d.active) == 0 && d.queue.IsEmpty() && d.department.AllIdle()
}

// Stop closes registration and blocks until every queued patient has been
// treated. Treatments in progress are never interrupted.
func (d *Dispatcher) Stop() error {
	d.mu.Lock()
	if d.state != Running {
		state := d.state
		d.mu.Unlock()
		return fmt.Errorf("%w: desk is %s", errors.ErrNotRunning, state)
	}
	d.state = Draining
	drained, done, cancel := d.drained, d.done, d.cancel
	waiting := d.queue.Len()
	d.mu.Unlock()

	d.log.Info("Registration closed, draining", "waiting", waiting)
	<-drained

	cancel()
	<-done

	d.mu.Lock()
	d.state = Stopped
	d.cancel = nil
	d.mu.Unlock()
	d.log.Info("Registration desk stopped", "department", d.department.Name())
	return nil
}

func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Dispatcher) Snapshot() domain.StatusSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

// Stats refreshes and returns the desk statistics.
func (d *Dispatcher) Stats() observability.DeskStats {
	return d.monitoring.Refresh(d.Snapshot())
}

func (d *Dispatcher) snapshotLocked() domain.StatusSnapshot {
	return domain.StatusSnapshot{
		Department: d.department.Name(),
		Rooms:      d.department.Statuses(),
		Waiting:    d.queue.Snapshot(),
		At:         time.Now().UTC(),
	}
}

// onDischarge runs on the treatment timer goroutine, without any room lock held.
func (d *Dispatcher) onDischarge(visit domain.Visit) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.active, visit.Patient.ID)
	d.monitoring.ObserveVisit(visit)
	d.log.Debug("Patient discharged", "patient", visit.Patient.Name, "room", visit.Room,
		"treatment", visit.Duration())
	d.publish(event.PatientDischarged{Visit: visit})
	d.publish(event.StatusChanged{
		Cause:    event.CauseDischarged,
		Patient:  visit.Patient,
		Room:     visit.Room,
		Snapshot: d.snapshotLocked(),
	})
}

// publish never blocks: a full buffer drops the event.
func (d *Dispatcher) publish(e event.DeskEvent) {
	select {
	case d.events <- e:
	default:
		d.monitoring.IncrLostEvents()
		d.log.Debug("Event buffer full, desk event lost", "type", e.Type())
	}
}
