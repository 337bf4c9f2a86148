package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

func newRegister(users store.UserRepository) *RegisterUseCase {
	uc := NewRegisterUseCase(users)
	uc.hashCost = bcrypt.MinCost
	return uc
}

func TestRegisterUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password", func(t *testing.T) {
		s := store.NewMemoryStore()

		user, err := newRegister(s.Users()).Execute(ctx, RegisterRequest{Name: "John Doe", Email: "johndoe@example.com", Password: "123456"})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, model.RoleMember, user.Role)
		assert.NotEqual(t, "123456", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("123456")))
	})

	t.Run("rejects a used email", func(t *testing.T) {
		s := store.NewMemoryStore()
		uc := newRegister(s.Users())
		req := RegisterRequest{Name: "John Doe", Email: "johndoe@example.com", Password: "123456"}

		_, err := uc.Execute(ctx, req)
		require.NoError(t, err)

		_, err = uc.Execute(ctx, req)
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})

	t.Run("unique constraint maps to a duplicate user", func(t *testing.T) {
		s := store.NewMemoryStore()
		require.NoError(t, s.Users().Create(ctx, &model.User{Email: "johndoe@example.com"}))

		_, err := newRegister(blindUsers{s.Users()}).Execute(ctx, RegisterRequest{Email: "johndoe@example.com", Password: "123456"})
		assert.ErrorIs(t, err, ErrDuplicateUser)
	})
}

// blindUsers hides existing users from email lookups.
type blindUsers struct {
	store.UserRepository
}

func (blindUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}

func TestAuthenticateUseCase(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	registered, err := newRegister(s.Users()).Execute(ctx, RegisterRequest{Name: "John Doe", Email: "johndoe@example.com", Password: "123456"})
	require.NoError(t, err)

	uc := NewAuthenticateUseCase(s.Users())

	testCases := []struct {
		name        string
		req         AuthenticateRequest
		expectedErr error
	}{
		{name: "valid credentials", req: AuthenticateRequest{Email: "johndoe@example.com", Password: "123456"}},
		{name: "unknown email", req: AuthenticateRequest{Email: "nobody@example.com", Password: "123456"}, expectedErr: ErrInvalidCredentials},
		{name: "wrong password", req: AuthenticateRequest{Email: "johndoe@example.com", Password: "654321"}, expectedErr: ErrInvalidCredentials},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := uc.Execute(ctx, tc.req)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, registered.ID, user.ID)
		})
	}
}

func TestGetUserProfileUseCase(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	registered, err := newRegister(s.Users()).Execute(ctx, RegisterRequest{Name: "John Doe", Email: "johndoe@example.com", Password: "123456"})
	require.NoError(t, err)

	uc := NewGetUserProfileUseCase(s.Users())

	user, err := uc.Execute(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", user.Name)

	_, err = uc.Execute(ctx, "missing")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}
