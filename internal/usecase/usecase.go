// Package usecase holds the application operations of the gym check-in service.
// Every use case receives its repositories at construction and reports business
// rule violations as the error kinds declared in errors.go.
package usecase

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"gym-checkin-backend/internal/store"
)

// Clock returns the current instant.
type Clock func() time.Time

// Options tunes the use cases built by New.
type Options struct {
	// Location decides calendar day boundaries. Defaults to time.Local.
	Location *time.Location
	// Now defaults to time.Now.
	Now Clock
	// HashCost is the bcrypt cost. Defaults to bcrypt.DefaultCost.
	HashCost int
}

// UseCases bundles every operation exposed to the transport layer.
type UseCases struct {
	Register        *RegisterUseCase
	Authenticate    *AuthenticateUseCase
	GetUserProfile  *GetUserProfileUseCase
	CreateGym       *CreateGymUseCase
	SearchGyms      *SearchGymsUseCase
	FetchNearbyGyms *FetchNearbyGymsUseCase
	CheckIn         *CheckInUseCase
	ValidateCheckIn *ValidateCheckInUseCase
	CheckInHistory  *FetchUserCheckInsHistoryUseCase
	GetUserMetrics  *GetUserMetricsUseCase
}

// New wires every use case against the repositories of s.
func New(s store.Store, opts Options) *UseCases {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}

	register := NewRegisterUseCase(s.Users())
	register.hashCost = opts.HashCost

	checkIn := NewCheckInUseCase(s.Gyms(), s.CheckIns(), opts.Location)
	checkIn.now = opts.Now

	validate := NewValidateCheckInUseCase(s.CheckIns())
	validate.now = opts.Now

	return &UseCases{
		Register:        register,
		Authenticate:    NewAuthenticateUseCase(s.Users()),
		GetUserProfile:  NewGetUserProfileUseCase(s.Users()),
		CreateGym:       NewCreateGymUseCase(s.Gyms()),
		SearchGyms:      NewSearchGymsUseCase(s.Gyms()),
		FetchNearbyGyms: NewFetchNearbyGymsUseCase(s.Gyms()),
		CheckIn:         checkIn,
		ValidateCheckIn: validate,
		CheckInHistory:  NewFetchUserCheckInsHistoryUseCase(s.CheckIns()),
		GetUserMetrics:  NewGetUserMetricsUseCase(s.CheckIns()),
	}
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
