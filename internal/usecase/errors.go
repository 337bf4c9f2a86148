package usecase

import (
	"errors"
	"fmt"
)

// Error kinds returned by the use cases. Callers map them to client-facing statuses.
var (
	ErrResourceNotFound        = errors.New("resource not found")
	ErrMaxDistanceExceeded     = errors.New("the maximum distance allowed has been exceeded")
	ErrMaxCheckInsPerDay       = errors.New("max number of check-ins per day reached")
	ErrLateValidation          = errors.New("check-in validation time limit exceeded (20 minutes)")
	ErrCheckInAlreadyValidated = errors.New("check-in has already been validated")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrDuplicateUser           = errors.New("e-mail already exists")
)

// DistanceError reports a check-in attempted outside the geofence. It matches
// ErrMaxDistanceExceeded with errors.Is.
type DistanceError struct {
	DistanceKm float64
}

func (e *DistanceError) Error() string {
	return fmt.Sprintf("%s: %.3f km", ErrMaxDistanceExceeded.Error(), e.DistanceKm)
}

func (e *DistanceError) Is(target error) bool {
	return target == ErrMaxDistanceExceeded
}
