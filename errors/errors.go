package errors

import "fmt"

var (
	ErrWorkerPanic          = fmt.Errorf("worker panic")
	ErrAlreadyRunning       = fmt.Errorf("registration desk already running")
	ErrNotRunning           = fmt.Errorf("registration desk not running")
	ErrRejectedRegistration = fmt.Errorf("registration rejected")
	ErrDuplicatePatient     = fmt.Errorf("patient already waiting or in treatment")
	ErrCapacityRace         = fmt.Errorf("room filled up before admission")
	ErrInvalidPatient       = fmt.Errorf("invalid patient")
	ErrInvalidRoom          = fmt.Errorf("invalid room")
	ErrRoomAlreadyOwned     = fmt.Errorf("room already belongs to a department")
)
