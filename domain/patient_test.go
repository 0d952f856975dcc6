package domain

import (
	"clinic-desk/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPatient(t *testing.T) {
	req := require.New(t)

	p, err := NewPatient("patient_1")
	req.NoError(err)
	req.NotEmpty(p.ID)
	req.Equal("patient_1", p.Name)

	other, err := NewPatient("patient_1")
	req.NoError(err)
	req.NotEqual(p.ID, other.ID)
}

func TestNewPatient_Invalid(t *testing.T) {
	req := require.New(t)

	_, err := NewPatient("")
	req.ErrorIs(err, errors.ErrInvalidPatient)

	_, err = NewPatient(strings.Repeat("x", 129))
	req.ErrorIs(err, errors.ErrInvalidPatient)

	_, err = NewPatientWithID("", "alice")
	req.ErrorIs(err, errors.ErrInvalidPatient)
}
