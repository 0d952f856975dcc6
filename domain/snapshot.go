package domain

import (
	"time"

	"github.com/samber/lo"
)

type RoomStatus struct {
	Name      string
	Capacity  int
	Occupants []Patient
}

// StatusSnapshot is what the waiting-room screen shows at a given instant.
type StatusSnapshot struct {
	Department string
	Rooms      []RoomStatus
	Waiting    []Patient
	At         time.Time
}

// Occupancy is the number of patients currently in treatment.
func (s StatusSnapshot) Occupancy() int {
	return lo.SumBy(s.Rooms, func(r RoomStatus) int { return len(r.Occupants) })
}

func (s StatusSnapshot) Capacity() int {
	return lo.SumBy(s.Rooms, func(r RoomStatus) int { return r.Capacity })
}

func (s StatusSnapshot) WaitingIDs() []PatientID {
	return patientIDs(s.Waiting)
}

func (r RoomStatus) OccupantIDs() []PatientID {
	return patientIDs(r.Occupants)
}

func patientIDs(patients []Patient) []PatientID {
	return lo.Map(patients, func(p Patient, _ int) PatientID { return p.ID })
}

func PatientNames(patients []Patient) []string {
	return lo.Map(patients, func(p Patient, _ int) string { return p.Name })
}
