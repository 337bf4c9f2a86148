package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"gym-checkin-backend/internal/geo"
	"gym-checkin-backend/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type gormGyms struct {
	db *gorm.DB
}

func (r *gormGyms) Create(ctx context.Context, gym *model.Gym) error {
	normalizeGym(gym)
	if err := r.db.WithContext(ctx).Create(gym).Error; err != nil {
		return fmt.Errorf("failed to create gym: %w", translateError(err))
	}
	return nil
}

func (r *gormGyms) FindByID(ctx context.Context, id string) (*model.Gym, error) {
	var gym model.Gym
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&gym).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gym %s: %w", id, err)
	}
	normalizeGym(&gym)
	return &gym, nil
}

// SearchByTitle matches query as a case-insensitive substring of the title.
func (r *gormGyms) SearchByTitle(ctx context.Context, query string, page int) ([]model.Gym, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	var gyms []model.Gym
	err := r.db.WithContext(ctx).
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern).
		Order("created_at ASC").
		Order("id ASC").
		Limit(PageSize).
		Offset(offset(page)).
		Find(&gyms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search gyms: %w", err)
	}
	for i := range gyms {
		normalizeGym(&gyms[i])
	}
	return gyms, nil
}

// FindManyNearby narrows candidates with a bounding box in SQL and keeps the
// ones whose great-circle distance is within radiusKm, closest first.
func (r *gormGyms) FindManyNearby(ctx context.Context, point geo.Coordinate, radiusKm float64) ([]model.Gym, error) {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(point, radiusKm)

	var candidates []model.Gym
	err := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat).
		Where("longitude BETWEEN ? AND ?", minLng, maxLng).
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch nearby gyms: %w", err)
	}

	return filterNearby(candidates, point, radiusKm), nil
}

func filterNearby(gyms []model.Gym, point geo.Coordinate, radiusKm float64) []model.Gym {
	type scored struct {
		gym      model.Gym
		distance float64
	}

	matches := make([]scored, 0, len(gyms))
	for _, gym := range gyms {
		normalizeGym(&gym)
		d := geo.DistanceKm(point, geo.Coordinate{Latitude: gym.Latitude, Longitude: gym.Longitude})
		if d <= radiusKm {
			matches = append(matches, scored{gym: gym, distance: d})
		}
	}
	slices.SortStableFunc(matches, func(a, b scored) int {
		switch {
		case a.distance < b.distance:
			return -1
		case a.distance > b.distance:
			return 1
		}
		return 0
	})

	out := make([]model.Gym, len(matches))
	for i, m := range matches {
		out[i] = m.gym
	}
	return out
}
