package domain

import (
	"sync"

	"github.com/samber/lo"
)

// WaitingQueue keeps registered patients in arrival order.
// Each operation is a single critical section.
type WaitingQueue struct {
	mu       sync.Mutex
	patients []Patient
}

func NewWaitingQueue() *WaitingQueue {
	return &WaitingQueue{}
}

func (q *WaitingQueue) Enqueue(p Patient) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.patients = append(q.patients, p)
}

// DequeueIfMatch offers the head of the queue to admit while the queue is locked.
// The head is removed only if admit accepted it, so a patient never leaves
// the queue without being handed to a room.
func (q *WaitingQueue) DequeueIfMatch(admit func(Patient) bool) (Patient, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.patients) == 0 {
		return Patient{}, false
	}
	head := q.patients[0]
	if !admit(head) {
		return Patient{}, false
	}
	q.patients[0] = Patient{}
	q.patients = q.patients[1:]
	return head, true
}

// Snapshot returns a copy of the waiting patients, head first.
func (q *WaitingQueue) Snapshot() []Patient {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Patient(nil), q.patients...)
}

func (q *WaitingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.patients)
}

func (q *WaitingQueue) IsEmpty() bool {
	return q.Len() == 0
}

func (q *WaitingQueue) Contains(id PatientID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return lo.ContainsBy(q.patients, func(p Patient) bool { return p.ID == id })
}
