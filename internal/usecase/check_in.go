package usecase

import (
	"context"
	"errors"
	"time"

	"gym-checkin-backend/internal/geo"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

// MaxCheckInDistanceKm is the geofence radius around a gym.
const MaxCheckInDistanceKm = 0.1

type CheckInRequest struct {
	GymID         string
	UserID        string
	UserLatitude  float64
	UserLongitude float64
}

// CheckInUseCase registers a user's presence at a gym.
type CheckInUseCase struct {
	gyms     store.GymRepository
	checkIns store.CheckInRepository
	location *time.Location
	now      Clock
}

func NewCheckInUseCase(gyms store.GymRepository, checkIns store.CheckInRepository, location *time.Location) *CheckInUseCase {
	if location == nil {
		location = time.Local
	}
	return &CheckInUseCase{
		gyms:     gyms,
		checkIns: checkIns,
		location: location,
		now:      time.Now,
	}
}

// Execute checks the geofence and the one-per-day rule before persisting.
// The daily lookup is only a fast path: concurrent requests are settled by the
// repository's unique (user, day) constraint, reported as ErrMaxCheckInsPerDay too.
func (uc *CheckInUseCase) Execute(ctx context.Context, req CheckInRequest) (*model.CheckIn, error) {
	gym, err := uc.gyms.FindByID(ctx, req.GymID)
	if err != nil {
		return nil, err
	}
	if gym == nil {
		return nil, ErrResourceNotFound
	}

	distance := geo.DistanceKm(
		geo.Coordinate{Latitude: req.UserLatitude, Longitude: req.UserLongitude},
		geo.Coordinate{Latitude: gym.Latitude, Longitude: gym.Longitude},
	)
	if distance > MaxCheckInDistanceKm {
		return nil, &DistanceError{DistanceKm: distance}
	}

	now := uc.now().In(uc.location)
	sameDay, err := uc.checkIns.FindByUserIDOnDate(ctx, req.UserID, now)
	if err != nil {
		return nil, err
	}
	if sameDay != nil {
		return nil, ErrMaxCheckInsPerDay
	}

	checkIn := &model.CheckIn{
		UserID:    req.UserID,
		GymID:     gym.ID,
		CreatedAt: now,
	}
	if err := uc.checkIns.Create(ctx, checkIn); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrMaxCheckInsPerDay
		}
		return nil, err
	}
	return checkIn, nil
}
