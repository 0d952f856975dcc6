package repositories

import (
	"clinic-desk/domain"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ ISnapshotRepository = SnapshotRepository{}

type SnapshotRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSnapshotRepository(db *badger.DB, log *slog.Logger) SnapshotRepository {
	return SnapshotRepository{db: db, log: log}
}

// StoreSnapshot appends a snapshot under "status:{department}:{at_padded}:{uuid}".
// The uuid keeps two snapshots taken at the same nanosecond apart.
func (r SnapshotRepository) StoreSnapshot(snapshot domain.StatusSnapshot) error {
	key := fmt.Sprintf("status:%s:%019d:%s",
		snapshot.Department,
		snapshot.At.UnixNano(),
		uuid.NewString(),
	)
	value, err := structpb.NewStruct(fromSnapshot(snapshot))
	if err != nil {
		return err
	}
	bytes, err := proto.Marshal(value)
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// Latest returns the most recent snapshot of a department.
func (r SnapshotRepository) Latest(department string) (domain.StatusSnapshot, bool, error) {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("status:%s:", department))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk back.
		it.Seek(append(append([]byte(nil), prefix...), []byte("9999999999999999999")...))
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		var err error
		raw, err = it.Item().ValueCopy(nil)
		return err
	})
	if err != nil || raw == nil {
		return domain.StatusSnapshot{}, false, err
	}
	snapshot, err := toSnapshot(raw)
	if err != nil {
		return domain.StatusSnapshot{}, false, err
	}
	return snapshot, true, nil
}

func fromPatients(patients []domain.Patient) []any {
	return lo.Map(patients, func(p domain.Patient, _ int) any {
		return map[string]any{"id": string(p.ID), "name": p.Name}
	})
}

func fromSnapshot(snapshot domain.StatusSnapshot) map[string]any {
	return map[string]any{
		"department": snapshot.Department,
		"at":         snapshot.At.Format(time.RFC3339Nano),
		"waiting":    fromPatients(snapshot.Waiting),
		"rooms": lo.Map(snapshot.Rooms, func(room domain.RoomStatus, _ int) any {
			return map[string]any{
				"name":      room.Name,
				"capacity":  room.Capacity,
				"occupants": fromPatients(room.Occupants),
			}
		}),
	}
}

func toPatients(list *structpb.ListValue) []domain.Patient {
	return lo.Map(list.GetValues(), func(v *structpb.Value, _ int) domain.Patient {
		fields := v.GetStructValue().GetFields()
		return domain.Patient{
			ID:   domain.PatientID(fields["id"].GetStringValue()),
			Name: fields["name"].GetStringValue(),
		}
	})
}

func toSnapshot(value []byte) (domain.StatusSnapshot, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(value, &s); err != nil {
		return domain.StatusSnapshot{}, err
	}
	fields := s.GetFields()
	at, err := time.Parse(time.RFC3339Nano, fields["at"].GetStringValue())
	if err != nil {
		return domain.StatusSnapshot{}, err
	}
	return domain.StatusSnapshot{
		Department: fields["department"].GetStringValue(),
		At:         at,
		Waiting:    toPatients(fields["waiting"].GetListValue()),
		Rooms: lo.Map(fields["rooms"].GetListValue().GetValues(), func(v *structpb.Value, _ int) domain.RoomStatus {
			room := v.GetStructValue().GetFields()
			return domain.RoomStatus{
				Name:      room["name"].GetStringValue(),
				Capacity:  int(room["capacity"].GetNumberValue()),
				Occupants: toPatients(room["occupants"].GetListValue()),
			}
		}),
	}, nil
}
