package event

import (
	"clinic-desk/domain"
	"time"
)

type Type string

const (
	StatusChangedType     Type = "STATUS_CHANGED"
	PatientDischargedType Type = "PATIENT_DISCHARGED"
)

// DeskEvent is anything the registration desk publishes to its sinks.
type DeskEvent interface {
	Type() Type
	OccurredAt() time.Time
}

// Cause tells which desk operation produced a status change.
type Cause string

const (
	CauseRegistered Cause = "registered"
	CauseAdmitted   Cause = "admitted"
	CauseDischarged Cause = "discharged"
)

// StatusChanged carries the screen content right after an enqueue,
// an admission or a discharge.
type StatusChanged struct {
	Cause    Cause
	Patient  domain.Patient
	Room     string
	Snapshot domain.StatusSnapshot
}

func (e StatusChanged) Type() Type            { return StatusChangedType }
func (e StatusChanged) OccurredAt() time.Time { return e.Snapshot.At }

type PatientDischarged struct {
	Visit domain.Visit
}

func (e PatientDischarged) Type() Type            { return PatientDischargedType }
func (e PatientDischarged) OccurredAt() time.Time { return e.Visit.DischargedAt }
