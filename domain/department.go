package domain

import (
	"clinic-desk/errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Department owns an ordered list of rooms.
// Insertion order is also the allocation search order.
type Department struct {
	mu    sync.RWMutex
	name  string
	rooms []*Room
	hooks []DischargeHook
}

func NewDepartment(name string) *Department {
	return &Department{name: name}
}

func (d *Department) Name() string { return d.name }

// AddRoom appends room to the department. A room belongs to one department only.
func (d *Department) AddRoom(room *Room) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if lo.Contains(d.rooms, room) {
		return fmt.Errorf("%w: %s already in %s", errors.ErrRoomAlreadyOwned, room.name, d.name)
	}
	if err := room.attach(d); err != nil {
		return err
	}
	d.rooms = append(d.rooms, room)
	return nil
}

// RemoveRoom takes room out of the allocation order. Patients already in
// treatment there are still discharged through d.
func (d *Department) RemoveRoom(room *Room) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !lo.Contains(d.rooms, room) {
		return false
	}
	d.rooms = lo.Without(d.rooms, room)
	return true
}

// AllocateRoom returns the lowest-index room with a free slot, or nil.
func (d *Department) AllocateRoom() *Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := lo.Find(d.rooms, (*Room).HasCapacity)
	if !ok {
		return nil
	}
	return room
}

func (d *Department) AllIdle() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return lo.EveryBy(d.rooms, (*Room).IsIdle)
}

func (d *Department) Rooms() []*Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]*Room(nil), d.rooms...)
}

// Capacity is the number of patients the department can treat at once.
func (d *Department) Capacity() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return lo.SumBy(d.rooms, (*Room).Capacity)
}

// OnDischarge registers a hook called after every discharge in any room of d.
func (d *Department) OnDischarge(hook DischargeHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, hook)
}

func (d *Department) notifyDischarge(visit Visit) {
	d.mu.RLock()
	hooks := append([]DischargeHook(nil), d.hooks...)
	d.mu.RUnlock()

	visit.Department = d.name
	for _, hook := range hooks {
		hook(visit)
	}
}

// Statuses lists every room with its current occupants, in search order.
func (d *Department) Statuses() []RoomStatus {
	return lo.Map(d.Rooms(), func(r *Room, _ int) RoomStatus {
		return r.Status()
	})
}
