package usecase

import (
	"context"

	"gym-checkin-backend/internal/geo"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

// NearbyRadiusKm bounds the nearby gyms query.
const NearbyRadiusKm = 10.0

type CreateGymRequest struct {
	Title       string
	Description *string
	Phone       *string
	Latitude    float64
	Longitude   float64
}

type CreateGymUseCase struct {
	gyms store.GymRepository
}

func NewCreateGymUseCase(gyms store.GymRepository) *CreateGymUseCase {
	return &CreateGymUseCase{gyms: gyms}
}

func (uc *CreateGymUseCase) Execute(ctx context.Context, req CreateGymRequest) (*model.Gym, error) {
	gym := &model.Gym{
		Title:       req.Title,
		Description: req.Description,
		Phone:       req.Phone,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if err := uc.gyms.Create(ctx, gym); err != nil {
		return nil, err
	}
	return gym, nil
}

type SearchGymsUseCase struct {
	gyms store.GymRepository
}

func NewSearchGymsUseCase(gyms store.GymRepository) *SearchGymsUseCase {
	return &SearchGymsUseCase{gyms: gyms}
}

// Execute matches query case-insensitively against gym titles, store.PageSize per page.
func (uc *SearchGymsUseCase) Execute(ctx context.Context, query string, page int) ([]model.Gym, error) {
	return uc.gyms.SearchByTitle(ctx, query, normalizePage(page))
}

type FetchNearbyGymsUseCase struct {
	gyms store.GymRepository
}

func NewFetchNearbyGymsUseCase(gyms store.GymRepository) *FetchNearbyGymsUseCase {
	return &FetchNearbyGymsUseCase{gyms: gyms}
}

// Execute returns the gyms within NearbyRadiusKm of the user.
func (uc *FetchNearbyGymsUseCase) Execute(ctx context.Context, user geo.Coordinate) ([]model.Gym, error) {
	return uc.gyms.FindManyNearby(ctx, user, NearbyRadiusKm)
}
