package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gym-checkin-backend/internal/model"
)

type gormCheckIns struct {
	db *gorm.DB
}

// Create derives the calendar day from CreatedAt in its own location and stores
// timestamps in UTC.
func (r *gormCheckIns) Create(ctx context.Context, checkIn *model.CheckIn) error {
	if checkIn.CreatedAt.IsZero() {
		checkIn.CreatedAt = time.Now()
	}
	checkIn.Day = model.DayOf(checkIn.CreatedAt)
	checkIn.CreatedAt = checkIn.CreatedAt.UTC()

	if err := r.db.WithContext(ctx).Create(checkIn).Error; err != nil {
		return fmt.Errorf("failed to create check-in: %w", translateError(err))
	}
	return nil
}

func (r *gormCheckIns) FindByID(ctx context.Context, id string) (*model.CheckIn, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *gormCheckIns) FindByUserIDOnDate(ctx context.Context, userID string, date time.Time) (*model.CheckIn, error) {
	return r.findOne(ctx, "user_id = ? AND day = ?", userID, model.DayOf(date))
}

// Update persists the validation timestamp, the only mutable column. The write is
// conditional on validated_at still being NULL, so concurrent validations cannot
// overwrite each other.
func (r *gormCheckIns) Update(ctx context.Context, checkIn *model.CheckIn) error {
	var validatedAt *time.Time
	if checkIn.ValidatedAt != nil {
		v := checkIn.ValidatedAt.UTC()
		validatedAt = &v
	}

	result := r.db.WithContext(ctx).
		Model(&model.CheckIn{}).
		Where("id = ? AND validated_at IS NULL", checkIn.ID).
		Update("validated_at", validatedAt)
	if result.Error != nil {
		return fmt.Errorf("failed to update check-in %s: %w", checkIn.ID, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.CheckIn{}).Where("id = ?", checkIn.ID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up check-in %s: %w", checkIn.ID, err)
	}
	if count == 0 {
		return fmt.Errorf("failed to update check-in %s: %w", checkIn.ID, ErrNotFound)
	}
	return fmt.Errorf("failed to update check-in %s: %w", checkIn.ID, ErrAlreadyValidated)
}

func (r *gormCheckIns) FindManyByUserID(ctx context.Context, userID string, page int) ([]model.CheckIn, error) {
	var checkIns []model.CheckIn
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(PageSize).
		Offset(offset(page)).
		Find(&checkIns).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins of user %s: %w", userID, err)
	}
	return checkIns, nil
}

func (r *gormCheckIns) CountByUserID(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CheckIn{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins of user %s: %w", userID, err)
	}
	return count, nil
}

func (r *gormCheckIns) findOne(ctx context.Context, query string, args ...any) (*model.CheckIn, error) {
	var checkIn model.CheckIn
	err := r.db.WithContext(ctx).Where(query, args...).First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-in: %w", err)
	}
	return &checkIn, nil
}
