package domain

import (
	"clinic-desk/errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// DefaultMaxTreatment bounds the random treatment duration of a room.
const DefaultMaxTreatment = 20 * time.Second

// TreatmentDuration decides how long one occupant stays in a room.
type TreatmentDuration func() time.Duration

// RandomTreatment draws a duration uniformly from [0, max).
func RandomTreatment(max time.Duration) TreatmentDuration {
	return func() time.Duration {
		if max <= 0 {
			return 0
		}
		return rand.N(max)
	}
}

// FixedTreatment always returns d.
func FixedTreatment(d time.Duration) TreatmentDuration {
	return func() time.Duration { return d }
}

type RoomOption func(*Room)

func WithTreatment(treatment TreatmentDuration) RoomOption {
	return func(r *Room) {
		if treatment != nil {
			r.treatment = treatment
		}
	}
}

type occupant struct {
	seq        uint64
	patient    Patient
	admittedAt time.Time
}

// Room treats up to capacity patients at the same time.
// Every read or write of the occupant set goes through mu,
// including the release performed by the treatment timer.
type Room struct {
	mu        sync.Mutex
	name      string
	capacity  int
	occupants []occupant
	admitted  uint64 // admission counter, identifies an occupant
	treatment TreatmentDuration
	owner     *Department
}

func NewRoom(name string, capacity int, opts ...RoomOption) (*Room, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", errors.ErrInvalidRoom)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: capacity of %s must be at least 1, got %d",
			errors.ErrInvalidRoom, name, capacity)
	}
	r := &Room{
		name:      name,
		capacity:  capacity,
		treatment: RandomTreatment(DefaultMaxTreatment),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Room) Name() string  { return r.name }
func (r *Room) Capacity() int { return r.capacity }

// Admit takes the patient in if a slot is free and schedules the end of its treatment.
// It never blocks on the treatment itself.
func (r *Room) Admit(p Patient) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.occupants) >= r.capacity {
		return false
	}
	r.admitted++
	occ := occupant{seq: r.admitted, patient: p, admittedAt: time.Now().UTC()}
	r.occupants = append(r.occupants, occ)
	// The timer goroutine waits on mu, so the release can't overtake this admission.
	time.AfterFunc(r.treatment(), func() { r.discharge(occ) })
	return true
}

// discharge frees the slot held by occ and notifies the owning department.
func (r *Room) discharge(occ occupant) {
	r.mu.Lock()
	idx := slices.IndexFunc(r.occupants, func(o occupant) bool {
		return o.seq == occ.seq
	})
	if idx >= 0 {
		r.occupants = slices.Delete(r.occupants, idx, idx+1)
	}
	owner := r.owner
	r.mu.Unlock()

	if idx < 0 || owner == nil {
		return
	}
	owner.notifyDischarge(Visit{
		Room:         r.name,
		Patient:      occ.patient,
		AdmittedAt:   occ.admittedAt,
		DischargedAt: time.Now().UTC(),
	})
}

func (r *Room) HasCapacity() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.occupants) < r.capacity
}

func (r *Room) IsIdle() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.occupants) == 0
}

// Occupants returns the patients in treatment, oldest admission first.
func (r *Room) Occupants() []Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Patient, 0, len(r.occupants))
	for _, o := range r.occupants {
		res = append(res, o.patient)
	}
	return res
}

func (r *Room) Status() RoomStatus {
	return RoomStatus{
		Name:      r.name,
		Capacity:  r.capacity,
		Occupants: r.Occupants(),
	}
}

// attach binds the room to d for good. A room removed from d keeps
// reporting the discharges of its last occupants to d.
func (r *Room) attach(d *Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner != nil && r.owner != d {
		return fmt.Errorf("%w: %s is owned by %s", errors.ErrRoomAlreadyOwned, r.name, r.owner.name)
	}
	r.owner = d
	return nil
}
