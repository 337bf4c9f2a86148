package usecase

import (
	"context"

	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

type FetchUserCheckInsHistoryUseCase struct {
	checkIns store.CheckInRepository
}

func NewFetchUserCheckInsHistoryUseCase(checkIns store.CheckInRepository) *FetchUserCheckInsHistoryUseCase {
	return &FetchUserCheckInsHistoryUseCase{checkIns: checkIns}
}

// Execute returns one page of the user's check-ins, newest first. Pages below 1 read page 1.
func (uc *FetchUserCheckInsHistoryUseCase) Execute(ctx context.Context, userID string, page int) ([]model.CheckIn, error) {
	return uc.checkIns.FindManyByUserID(ctx, userID, normalizePage(page))
}

type GetUserMetricsUseCase struct {
	checkIns store.CheckInRepository
}

func NewGetUserMetricsUseCase(checkIns store.CheckInRepository) *GetUserMetricsUseCase {
	return &GetUserMetricsUseCase{checkIns: checkIns}
}

// Execute counts every check-in of the user.
func (uc *GetUserMetricsUseCase) Execute(ctx context.Context, userID string) (int64, error) {
	return uc.checkIns.CountByUserID(ctx, userID)
}
