package deconfliction

import "errors"

var (
	// ErrCapacityExceeded indicates the registry already holds the maximum
	// number of missions.
	ErrCapacityExceeded = errors.New("maximum number of missions exceeded")

	// ErrDuplicateID indicates a mission with the same id is already registered.
	ErrDuplicateID = errors.New("duplicate mission id")

	// ErrNilMission indicates a nil mission was passed to the engine.
	ErrNilMission = errors.New("nil mission")
)
