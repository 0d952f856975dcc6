package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWaitingQueue_FIFO(t *testing.T) {
	req := require.New(t)
	q := NewWaitingQueue()
	req.True(q.IsEmpty())

	q.Enqueue(mustPatient(t, "alice"))
	q.Enqueue(mustPatient(t, "bob"))
	q.Enqueue(mustPatient(t, "carol"))
	req.Equal(3, q.Len())
	req.True(q.Contains("bob"))
	req.False(q.Contains("dave"))

	accept := func(Patient) bool { return true }
	for _, name := range []string{"alice", "bob", "carol"} {
		p, ok := q.DequeueIfMatch(accept)
		req.True(ok)
		req.Equal(PatientID(name), p.ID)
	}
	_, ok := q.DequeueIfMatch(accept)
	req.False(ok)
	req.True(q.IsEmpty())
}

func TestWaitingQueue_DequeueIfMatch_RefusedKeepsHead(t *testing.T) {
	req := require.New(t)
	q := NewWaitingQueue()
	q.Enqueue(mustPatient(t, "alice"))
	q.Enqueue(mustPatient(t, "bob"))

	// Given a room that fills up before the admission
	var offered []PatientID
	refuse := func(p Patient) bool {
		offered = append(offered, p.ID)
		return false
	}

	// When the head is offered
	_, ok := q.DequeueIfMatch(refuse)

	// Then only the head was offered and the queue is unchanged
	req.False(ok)
	req.Equal([]PatientID{"alice"}, offered)
	req.Equal([]Patient{mustPatient(t, "alice"), mustPatient(t, "bob")}, q.Snapshot())
}

func TestWaitingQueue_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	q := NewWaitingQueue()
	q.Enqueue(mustPatient(t, "alice"))

	snapshot := q.Snapshot()
	snapshot[0] = mustPatient(t, "mallory")

	req.Equal([]Patient{mustPatient(t, "alice")}, q.Snapshot())
}
