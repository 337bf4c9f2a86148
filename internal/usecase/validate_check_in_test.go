package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

func TestValidateCheckInUseCase(t *testing.T) {
	createdAt := time.Date(2026, 1, 1, 13, 40, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		elapsed     time.Duration
		validated   bool
		checkInID   string
		expectedErr error
	}{
		{name: "within the window", elapsed: 19 * time.Minute},
		{name: "exactly at the limit", elapsed: ValidationWindow},
		{name: "after the window", elapsed: 21 * time.Minute, expectedErr: ErrLateValidation},
		{name: "already validated", elapsed: 5 * time.Minute, validated: true, expectedErr: ErrCheckInAlreadyValidated},
		{name: "unknown check-in", checkInID: "missing", expectedErr: ErrResourceNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			s := store.NewMemoryStore()

			checkIn := &model.CheckIn{UserID: "user-01", GymID: "gym-01", CreatedAt: createdAt}
			if tc.validated {
				firstValidation := createdAt.Add(time.Minute)
				checkIn.ValidatedAt = &firstValidation
			}
			require.NoError(t, s.CheckIns().Create(ctx, checkIn))

			uc := NewValidateCheckInUseCase(s.CheckIns())
			uc.now = func() time.Time { return createdAt.Add(tc.elapsed) }

			id := checkIn.ID
			if tc.checkInID != "" {
				id = tc.checkInID
			}
			validated, err := uc.Execute(ctx, id)

			stored, findErr := s.CheckIns().FindByID(ctx, checkIn.ID)
			require.NoError(t, findErr)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, validated)
				assert.Equal(t, checkIn.ValidatedAt, stored.ValidatedAt)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, validated.ValidatedAt)
			assert.True(t, validated.ValidatedAt.Equal(createdAt.Add(tc.elapsed)))
			require.NotNil(t, stored.ValidatedAt)
			assert.True(t, stored.ValidatedAt.Equal(*validated.ValidatedAt))
		})
	}
}

func TestValidateCheckInUseCase_SecondCallFails(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	createdAt := time.Date(2026, 1, 1, 13, 40, 0, 0, time.UTC)

	checkIn := &model.CheckIn{UserID: "user-01", GymID: "gym-01", CreatedAt: createdAt}
	require.NoError(t, s.CheckIns().Create(ctx, checkIn))

	uc := NewValidateCheckInUseCase(s.CheckIns())
	uc.now = func() time.Time { return createdAt.Add(2 * time.Minute) }
	first, err := uc.Execute(ctx, checkIn.ID)
	require.NoError(t, err)

	uc.now = func() time.Time { return createdAt.Add(4 * time.Minute) }
	_, err = uc.Execute(ctx, checkIn.ID)
	assert.ErrorIs(t, err, ErrCheckInAlreadyValidated)

	stored, _ := s.CheckIns().FindByID(ctx, checkIn.ID)
	assert.True(t, stored.ValidatedAt.Equal(*first.ValidatedAt))
}

// staleCheckIns keeps serving the check-in as it was before any validation, as if
// two administrators read it before either wrote.
type staleCheckIns struct {
	store.CheckInRepository
	snapshot model.CheckIn
}

func (r staleCheckIns) FindByID(ctx context.Context, id string) (*model.CheckIn, error) {
	c := r.snapshot
	return &c, nil
}

func TestValidateCheckInUseCase_ConditionalWriteBackstop(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	createdAt := time.Date(2026, 1, 1, 13, 40, 0, 0, time.UTC)

	checkIn := &model.CheckIn{UserID: "user-01", GymID: "gym-01", CreatedAt: createdAt}
	require.NoError(t, s.CheckIns().Create(ctx, checkIn))

	uc := NewValidateCheckInUseCase(staleCheckIns{CheckInRepository: s.CheckIns(), snapshot: *checkIn})
	uc.now = func() time.Time { return createdAt.Add(2 * time.Minute) }
	_, err := uc.Execute(ctx, checkIn.ID)
	require.NoError(t, err)

	uc.now = func() time.Time { return createdAt.Add(4 * time.Minute) }
	_, err = uc.Execute(ctx, checkIn.ID)
	assert.ErrorIs(t, err, ErrCheckInAlreadyValidated)

	stored, err := s.CheckIns().FindByID(ctx, checkIn.ID)
	require.NoError(t, err)
	assert.True(t, stored.ValidatedAt.Equal(createdAt.Add(2*time.Minute)), "the first validation is kept")
}

func TestValidateCheckInUseCase_ConcurrentValidations(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	createdAt := time.Date(2026, 1, 1, 13, 40, 0, 0, time.UTC)

	checkIn := &model.CheckIn{UserID: "user-01", GymID: "gym-01", CreatedAt: createdAt}
	require.NoError(t, s.CheckIns().Create(ctx, checkIn))

	uc := NewValidateCheckInUseCase(staleCheckIns{CheckInRepository: s.CheckIns(), snapshot: *checkIn})
	uc.now = func() time.Time { return createdAt.Add(time.Minute) }

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(ctx, checkIn.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrCheckInAlreadyValidated)
	}
	assert.Equal(t, 1, succeeded)
}
