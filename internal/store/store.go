package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"gym-checkin-backend/internal/geo"
	"gym-checkin-backend/internal/model"
)

// PageSize is the number of records returned per page by paginated queries.
const PageSize = 20

var (
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned when a write targets a record that does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyValidated is returned when a check-in already carries a validation time.
	ErrAlreadyValidated = errors.New("check-in already validated")
)

// UserRepository persists users. Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// GymRepository persists gyms. Coordinates are returned rounded to the column precision.
type GymRepository interface {
	Create(ctx context.Context, gym *model.Gym) error
	FindByID(ctx context.Context, id string) (*model.Gym, error)
	SearchByTitle(ctx context.Context, query string, page int) ([]model.Gym, error)
	FindManyNearby(ctx context.Context, point geo.Coordinate, radiusKm float64) ([]model.Gym, error)
}

// CheckInRepository persists check-ins. At most one check-in exists per user and
// calendar day; Create reports a second one as ErrDuplicate. Update only sets
// validated_at on a check-in that has none and reports ErrAlreadyValidated otherwise.
type CheckInRepository interface {
	Create(ctx context.Context, checkIn *model.CheckIn) error
	FindByID(ctx context.Context, id string) (*model.CheckIn, error)
	FindByUserIDOnDate(ctx context.Context, userID string, date time.Time) (*model.CheckIn, error)
	Update(ctx context.Context, checkIn *model.CheckIn) error
	FindManyByUserID(ctx context.Context, userID string, page int) ([]model.CheckIn, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

// SubscriptionRepository persists web push subscriptions of users.
type SubscriptionRepository interface {
	Upsert(ctx context.Context, sub *model.PushSubscription) error
	FindByUserID(ctx context.Context, userID string) ([]model.PushSubscription, error)
	Delete(ctx context.Context, userID, endpoint string) error
}

// Store groups the repositories of one backing database.
type Store interface {
	Users() UserRepository
	Gyms() GymRepository
	CheckIns() CheckInRepository
	Subscriptions() SubscriptionRepository
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return &gormUsers{db: s.db} }
func (s *gormStore) Gyms() GymRepository                   { return &gormGyms{db: s.db} }
func (s *gormStore) CheckIns() CheckInRepository           { return &gormCheckIns{db: s.db} }
func (s *gormStore) Subscriptions() SubscriptionRepository { return &gormSubscriptions{db: s.db} }

func offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func normalizeGym(g *model.Gym) {
	g.Latitude = geo.Round8(g.Latitude)
	g.Longitude = geo.Round8(g.Longitude)
}
