//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_repository.go -package=mocks
package repositories

import (
	"clinic-desk/domain"
)

// IVisitRepository keeps the journal of completed treatments.
type IVisitRepository interface {
	StoreVisit(visit domain.Visit) error
	GetVisits(department string, limit int) ([]domain.Visit, error)
}

// ISnapshotRepository keeps the history of screen snapshots.
type ISnapshotRepository interface {
	StoreSnapshot(snapshot domain.StatusSnapshot) error
	Latest(department string) (domain.StatusSnapshot, bool, error)
}
