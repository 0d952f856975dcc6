package repositories

import (
	"clinic-desk/domain"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

var _ IVisitRepository = VisitRepository{}

type VisitRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewVisitRepository(db *badger.DB, log *slog.Logger) VisitRepository {
	return VisitRepository{db: db, log: log}
}

// StoreVisit persists a completed treatment.
// The key is formatted as "visit:{department}:{discharged_at_padded}:{patient_id}" so that
// a prefix scan returns the visits of a department in discharge order.
func (r VisitRepository) StoreVisit(visit domain.Visit) error {
	key := fmt.Sprintf("visit:%s:%019d:%s",
		visit.Department,
		visit.DischargedAt.UnixNano(),
		visit.Patient.ID,
	)
	value, err := structpb.NewStruct(map[string]any{
		"department":    visit.Department,
		"room":          visit.Room,
		"patient_id":    string(visit.Patient.ID),
		"patient_name":  visit.Patient.Name,
		"admitted_at":   visit.AdmittedAt.Format(time.RFC3339Nano),
		"discharged_at": visit.DischargedAt.Format(time.RFC3339Nano),
	})
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

// GetVisits returns up to limit visits of a department, oldest discharge first.
// A limit <= 0 returns them all.
func (r VisitRepository) GetVisits(department string, limit int) ([]domain.Visit, error) {
	var visits []domain.Visit
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("visit:%s:", department))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(visits) == limit {
				r.log.Debug(fmt.Sprintf("Maximum of %d visits reached", limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				visit, err := toVisit(value)
				if err != nil {
					return err
				}
				visits = append(visits, visit)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return visits, nil
}

func toVisit(value []byte) (domain.Visit, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(value, &s); err != nil {
		return domain.Visit{}, err
	}
	fields := s.GetFields()
	admittedAt, err := time.Parse(time.RFC3339Nano, fields["admitted_at"].GetStringValue())
	if err != nil {
		return domain.Visit{}, err
	}
	dischargedAt, err := time.Parse(time.RFC3339Nano, fields["discharged_at"].GetStringValue())
	if err != nil {
		return domain.Visit{}, err
	}
	return domain.Visit{
		Department: fields["department"].GetStringValue(),
		Room:       fields["room"].GetStringValue(),
		Patient: domain.Patient{
			ID:   domain.PatientID(fields["patient_id"].GetStringValue()),
			Name: fields["patient_name"].GetStringValue(),
		},
		AdmittedAt:   admittedAt,
		DischargedAt: dischargedAt,
	}, nil
}
