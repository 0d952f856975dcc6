package domain

import "time"

// Visit is the record of one completed treatment.
type Visit struct {
	Department   string
	Room         string
	Patient      Patient
	AdmittedAt   time.Time
	DischargedAt time.Time
}

func (v Visit) Duration() time.Duration {
	return v.DischargedAt.Sub(v.AdmittedAt)
}

// DischargeHook is called once per discharged patient, outside any room lock.
type DischargeHook func(Visit)
