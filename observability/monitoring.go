package observability

import (
	"clinic-desk/domain"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// DeskStats aggregates the counters and gauges of one registration desk.
type DeskStats struct {
	// --- COUNTERS ---
	Registered     uint64
	Rejected       uint64
	Admitted       uint64
	Discharged     uint64
	CapacityRaces  uint64
	WorkerRestarts uint64
	LostEvents     uint64

	// --- GAUGES ---
	Waiting          int
	Occupied         int
	Capacity         int
	AverageTreatment time.Duration

	// --- SYSTEM METRICS ---
	AllocMemMb uint64
	NumGC      uint32
	RSSMb      uint64
	CPUPercent float64
	UpdatedAt  time.Time
}

// MonitoringManager collects desk telemetry.
// Counters are atomic so the hot paths never wait on mu.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats DeskStats
	proc        *process.Process

	registered     atomic.Uint64
	rejected       atomic.Uint64
	admitted       atomic.Uint64
	discharged     atomic.Uint64
	capacityRaces  atomic.Uint64
	workerRestarts atomic.Uint64
	lostEvents     atomic.Uint64
	treatmentNanos atomic.Int64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Debug("Process stats unavailable", "err", err)
		p = nil
	}
	return &MonitoringManager{log: log, proc: p}
}

func (mm *MonitoringManager) IncrRegistered()     { mm.registered.Add(1) }
func (mm *MonitoringManager) IncrRejected()       { mm.rejected.Add(1) }
func (mm *MonitoringManager) IncrAdmitted()       { mm.admitted.Add(1) }
func (mm *MonitoringManager) IncrCapacityRaces()  { mm.capacityRaces.Add(1) }
func (mm *MonitoringManager) IncrWorkerRestarts() { mm.workerRestarts.Add(1) }
func (mm *MonitoringManager) IncrLostEvents()     { mm.lostEvents.Add(1) }

// ObserveVisit counts a discharge and its treatment time.
func (mm *MonitoringManager) ObserveVisit(v domain.Visit) {
	mm.discharged.Add(1)
	mm.treatmentNanos.Add(int64(v.Duration()))
}

// Refresh recomputes the latest stats from the counters, the given snapshot
// and the process itself.
func (mm *MonitoringManager) Refresh(snapshot domain.StatusSnapshot) DeskStats {
	stats := DeskStats{
		Registered:     mm.registered.Load(),
		Rejected:       mm.rejected.Load(),
		Admitted:       mm.admitted.Load(),
		Discharged:     mm.discharged.Load(),
		CapacityRaces:  mm.capacityRaces.Load(),
		WorkerRestarts: mm.workerRestarts.Load(),
		LostEvents:     mm.lostEvents.Load(),
		Waiting:        len(snapshot.Waiting),
		Occupied:       snapshot.Occupancy(),
		Capacity:       snapshot.Capacity(),
		UpdatedAt:      time.Now().UTC(),
	}
	if stats.Discharged > 0 {
		stats.AverageTreatment = time.Duration(mm.treatmentNanos.Load() / int64(stats.Discharged))
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.AllocMemMb = m.Alloc / 1024 / 1024
	stats.NumGC = m.NumGC

	if mm.proc != nil {
		if memInfo, err := mm.proc.MemoryInfo(); err == nil {
			stats.RSSMb = memInfo.RSS / 1024 / 1024
		}
		if cpu, err := mm.proc.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
	}

	mm.mu.Lock()
	mm.latestStats = stats
	mm.mu.Unlock()
	return stats
}

func (mm *MonitoringManager) GetLatest() DeskStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}
