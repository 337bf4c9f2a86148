package usecase

import (
	"context"
	"errors"
	"time"

	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

// ValidationWindow is how long after creation a check-in can still be validated.
const ValidationWindow = 20 * time.Minute

// ValidateCheckInUseCase confirms a check-in on behalf of an administrator.
type ValidateCheckInUseCase struct {
	checkIns store.CheckInRepository
	now      Clock
}

func NewValidateCheckInUseCase(checkIns store.CheckInRepository) *ValidateCheckInUseCase {
	return &ValidateCheckInUseCase{checkIns: checkIns, now: time.Now}
}

// Execute sets validated_at once. A check-in already validated fails with
// ErrCheckInAlreadyValidated, one older than ValidationWindow with ErrLateValidation;
// both leave the record untouched.
func (uc *ValidateCheckInUseCase) Execute(ctx context.Context, checkInID string) (*model.CheckIn, error) {
	checkIn, err := uc.checkIns.FindByID(ctx, checkInID)
	if err != nil {
		return nil, err
	}
	if checkIn == nil {
		return nil, ErrResourceNotFound
	}
	if checkIn.ValidatedAt != nil {
		return nil, ErrCheckInAlreadyValidated
	}

	now := uc.now()
	if now.Sub(checkIn.CreatedAt) > ValidationWindow {
		return nil, ErrLateValidation
	}

	// The repository refuses to overwrite a validation that landed after the read above.
	checkIn.ValidatedAt = &now
	if err := uc.checkIns.Update(ctx, checkIn); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyValidated):
			return nil, ErrCheckInAlreadyValidated
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return checkIn, nil
}
