package sink

import (
	"bytes"
	"clinic-desk/domain"
	"clinic-desk/domain/event"
	"clinic-desk/mocks"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	alice = domain.Patient{ID: "1", Name: "alice"}
	bob   = domain.Patient{ID: "2", Name: "bob"}
	clara = domain.Patient{ID: "3", Name: "clara"}
)

func statusChanged() event.StatusChanged {
	return event.StatusChanged{
		Cause:   event.CauseAdmitted,
		Patient: bob,
		Room:    "room_2",
		Snapshot: domain.StatusSnapshot{
			Department: "CT",
			Rooms: []domain.RoomStatus{
				{Name: "room_1", Capacity: 1, Occupants: []domain.Patient{alice}},
				{Name: "room_2", Capacity: 2, Occupants: []domain.Patient{bob}},
			},
			Waiting: []domain.Patient{clara},
			At:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func discharged() event.PatientDischarged {
	at := time.Date(2026, 3, 1, 9, 0, 5, 0, time.UTC)
	return event.PatientDischarged{Visit: domain.Visit{
		Department:   "CT",
		Room:         "room_1",
		Patient:      alice,
		AdmittedAt:   at.Add(-5 * time.Second),
		DischargedAt: at,
	}}
}

func Test_Board_Renders_Rooms_And_Waiting_List(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	board := NewBoard(&out)

	err := board.Consume(context.Background(), statusChanged())

	req.NoError(err)
	screen := out.String()
	req.Contains(screen, "CT")
	req.Contains(screen, "room_1")
	req.Contains(screen, "[alice]")
	req.Contains(screen, "[bob]")
	req.Contains(screen, "Waiting (1): [clara]")
}

func Test_Board_Ignores_Discharge_Events(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	board := NewBoard(&out)

	req.NoError(board.Consume(context.Background(), discharged()))
	req.Empty(out.String())
}

func Test_Board_Throttled_Skips_Screens(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	// One screen per hour, the second one is dropped
	board := NewBoard(&out, WithMaxRefreshRate(1.0/3600))

	req.NoError(board.Consume(context.Background(), statusChanged()))
	first := out.Len()
	req.NoError(board.Consume(context.Background(), statusChanged()))

	req.Positive(first)
	req.Equal(first, out.Len())
}

func Test_LogSink_Never_Fails(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	sink := NewLogSink(log)

	req.NoError(sink.Consume(context.Background(), statusChanged()))
	req.NoError(sink.Consume(context.Background(), discharged()))
	req.Contains(out.String(), "Status changed")
	req.Contains(out.String(), "Patient discharged")
}

func Test_Journal_Routes_Events_To_Repositories(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	visits := mocks.NewMockIVisitRepository(ctrl)
	snapshots := mocks.NewMockISnapshotRepository(ctrl)
	journal := NewJournal(visits, snapshots, slog.Default())

	status := statusChanged()
	visit := discharged()
	snapshots.EXPECT().StoreSnapshot(status.Snapshot).Return(nil).Times(1)
	visits.EXPECT().StoreVisit(visit.Visit).Return(nil).Times(1)

	req.NoError(journal.Consume(context.Background(), status))
	req.NoError(journal.Consume(context.Background(), visit))
}

func Test_Journal_Propagates_Storage_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	visits := mocks.NewMockIVisitRepository(ctrl)
	snapshots := mocks.NewMockISnapshotRepository(ctrl)
	journal := NewJournal(visits, snapshots, slog.Default())

	boom := errors.New("disk full")
	snapshots.EXPECT().StoreSnapshot(gomock.Any()).Return(boom)

	req.ErrorIs(journal.Consume(context.Background(), statusChanged()), boom)
}

type fakeRedis struct {
	published map[string][]byte
	stored    map[string][]byte
	ttl       time.Duration
	err       error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{published: map[string][]byte{}, stored: map[string][]byte{}}
}

func (f *fakeRedis) Publish(_ context.Context, channel string, message interface{}) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.published[channel] = message.([]byte)
	return redis.NewIntResult(1, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.stored[key] = value.([]byte)
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func Test_RedisPublisher_Publishes_And_Stores_Latest(t *testing.T) {
	req := require.New(t)
	rdb := newFakeRedis()
	publisher := NewRedisPublisher(rdb, WithPrefix("hospital:"), WithTTL(time.Minute))

	req.NoError(publisher.Consume(context.Background(), statusChanged()))

	payload, ok := rdb.published["hospital:CT:status"]
	req.True(ok)
	req.Equal(payload, rdb.stored["hospital:CT:latest"])
	req.Equal(time.Minute, rdb.ttl)

	var decoded statusPayload
	req.NoError(json.Unmarshal(payload, &decoded))
	req.Equal("CT", decoded.Department)
	req.Equal("admitted", decoded.Cause)
	req.Len(decoded.Rooms, 2)
	req.Equal("alice", decoded.Rooms[0].Occupants[0].Name)
	req.Equal([]patientPayload{{ID: "3", Name: "clara"}}, decoded.Waiting)
}

func Test_RedisPublisher_Ignores_Discharges(t *testing.T) {
	req := require.New(t)
	rdb := newFakeRedis()
	publisher := NewRedisPublisher(rdb)

	req.NoError(publisher.Consume(context.Background(), discharged()))
	req.Empty(rdb.published)
	req.Empty(rdb.stored)
}

func Test_RedisPublisher_Publish_Failure(t *testing.T) {
	req := require.New(t)
	rdb := newFakeRedis()
	rdb.err = errors.New("connection refused")
	publisher := NewRedisPublisher(rdb)

	err := publisher.Consume(context.Background(), statusChanged())

	req.ErrorIs(err, rdb.err)
	req.Empty(rdb.stored)
}
