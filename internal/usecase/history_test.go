package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

func seedCheckIns(t *testing.T, s store.Store, userID string, n int) {
	t.Helper()
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		c := &model.CheckIn{UserID: userID, GymID: fmt.Sprintf("gym-%02d", i), CreatedAt: start.AddDate(0, 0, i)}
		require.NoError(t, s.CheckIns().Create(context.Background(), c))
	}
}

func TestFetchUserCheckInsHistoryUseCase(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seedCheckIns(t, s, "user-01", 22)
	seedCheckIns(t, s, "user-02", 1)

	uc := NewFetchUserCheckInsHistoryUseCase(s.CheckIns())

	first, err := uc.Execute(ctx, "user-01", 1)
	require.NoError(t, err)
	assert.Len(t, first, store.PageSize)
	assert.Equal(t, "gym-22", first[0].GymID)

	second, err := uc.Execute(ctx, "user-01", 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "gym-02", second[0].GymID)
	assert.Equal(t, "gym-01", second[1].GymID)

	clamped, err := uc.Execute(ctx, "user-01", 0)
	require.NoError(t, err)
	assert.Equal(t, first, clamped)
}

func TestGetUserMetricsUseCase(t *testing.T) {
	s := store.NewMemoryStore()
	seedCheckIns(t, s, "user-01", 2)

	uc := NewGetUserMetricsUseCase(s.CheckIns())

	count, err := uc.Execute(context.Background(), "user-01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = uc.Execute(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNew_SharesClockAndLocation(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	ucs := New(s, Options{Location: time.UTC, Now: func() time.Time { return now }})

	gym, err := ucs.CreateGym.Execute(ctx, CreateGymRequest{Title: "JavaScript Gym", Latitude: -22.2348294, Longitude: -54.8181412})
	require.NoError(t, err)

	checkIn, err := ucs.CheckIn.Execute(ctx, CheckInRequest{GymID: gym.ID, UserID: "user-01", UserLatitude: -22.2348294, UserLongitude: -54.8181412})
	require.NoError(t, err)
	assert.True(t, checkIn.CreatedAt.Equal(now))

	validated, err := ucs.ValidateCheckIn.Execute(ctx, checkIn.ID)
	require.NoError(t, err)
	assert.True(t, validated.ValidatedAt.Equal(now))
}
