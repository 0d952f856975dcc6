// Package domain contains core concepts of the registration desk.
// This file defines Patient identities and their validation rules.
// Patients are immutable once created.
package domain

import (
	"clinic-desk/errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type PatientID string

// Patient is the identity handed over from the registration desk to a room.
type Patient struct {
	ID   PatientID `validate:"required"`
	Name string    `validate:"required,max=128"`
}

// NewPatient creates a patient with a fresh identifier.
func NewPatient(name string) (Patient, error) {
	return NewPatientWithID(PatientID(uuid.NewString()), name)
}

func NewPatientWithID(id PatientID, name string) (Patient, error) {
	p := Patient{ID: id, Name: name}
	if err := validate.Struct(p); err != nil {
		return Patient{}, fmt.Errorf("%w: %v", errors.ErrInvalidPatient, err)
	}
	return p, nil
}

func (p Patient) String() string {
	return p.Name
}
