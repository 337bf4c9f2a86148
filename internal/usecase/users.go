package usecase

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

type RegisterRequest struct {
	Name     string
	Email    string
	Password string
}

// RegisterUseCase creates member accounts.
type RegisterUseCase struct {
	users    store.UserRepository
	hashCost int
}

func NewRegisterUseCase(users store.UserRepository) *RegisterUseCase {
	return &RegisterUseCase{users: users, hashCost: bcrypt.DefaultCost}
}

// Execute fails with ErrDuplicateUser when the email is taken.
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*model.User, error) {
	existing, err := uc.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), uc.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleMember,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

type AuthenticateRequest struct {
	Email    string
	Password string
}

// AuthenticateUseCase checks credentials.
type AuthenticateUseCase struct {
	users store.UserRepository
}

func NewAuthenticateUseCase(users store.UserRepository) *AuthenticateUseCase {
	return &AuthenticateUseCase{users: users}
}

// Execute returns ErrInvalidCredentials for an unknown email or a wrong password.
func (uc *AuthenticateUseCase) Execute(ctx context.Context, req AuthenticateRequest) (*model.User, error) {
	user, err := uc.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

type GetUserProfileUseCase struct {
	users store.UserRepository
}

func NewGetUserProfileUseCase(users store.UserRepository) *GetUserProfileUseCase {
	return &GetUserProfileUseCase{users: users}
}

func (uc *GetUserProfileUseCase) Execute(ctx context.Context, userID string) (*model.User, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrResourceNotFound
	}
	return user, nil
}
