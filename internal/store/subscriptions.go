package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gym-checkin-backend/internal/model"
)

type gormSubscriptions struct {
	db *gorm.DB
}

// Upsert creates the subscription or refreshes the keys of an endpoint the same
// user registered before. An endpoint owned by another user is left untouched and
// reported as ErrDuplicate.
func (r *gormSubscriptions) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "push_subscriptions.user_id = excluded.user_id"},
		}},
	}).Create(sub)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert push subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to upsert push subscription: %w", ErrDuplicate)
	}
	return nil
}

func (r *gormSubscriptions) FindByUserID(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch push subscriptions of user %s: %w", userID, err)
	}
	return subs, nil
}

func (r *gormSubscriptions) Delete(ctx context.Context, userID, endpoint string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}
