package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gym-checkin-backend/internal/geo"
	"gym-checkin-backend/internal/model"
)

// memoryStore keeps every record in process memory. It mirrors the unique
// constraints of the database schema and is safe for concurrent use.
type memoryStore struct {
	users         *memoryUsers
	gyms          *memoryGyms
	checkIns      *memoryCheckIns
	subscriptions *memorySubscriptions
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		users:         &memoryUsers{},
		gyms:          &memoryGyms{},
		checkIns:      &memoryCheckIns{},
		subscriptions: &memorySubscriptions{byEndpoint: make(map[string]model.PushSubscription)},
	}
}

func (s *memoryStore) Users() UserRepository                 { return s.users }
func (s *memoryStore) Gyms() GymRepository                   { return s.gyms }
func (s *memoryStore) CheckIns() CheckInRepository           { return s.checkIns }
func (s *memoryStore) Subscriptions() SubscriptionRepository { return s.subscriptions }

func pageBounds(items int, page int) (from, to int) {
	from = offset(page)
	if from > items {
		from = items
	}
	to = from + PageSize
	if to > items {
		to = items
	}
	return from, to
}

type memoryUsers struct {
	mu    sync.RWMutex
	items []model.User
}

func (r *memoryUsers) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.items {
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = model.RoleMember
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.items = append(r.items, *user)
	return nil
}

func (r *memoryUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.ID == id }), nil
}

func (r *memoryUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email }), nil
}

func (r *memoryUsers) find(match func(model.User) bool) *model.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if match(u) {
			found := u
			return &found
		}
	}
	return nil
}

type memoryGyms struct {
	mu    sync.RWMutex
	items []model.Gym
}

func (r *memoryGyms) Create(ctx context.Context, gym *model.Gym) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gym.ID == "" {
		gym.ID = uuid.NewString()
	}
	if gym.CreatedAt.IsZero() {
		gym.CreatedAt = time.Now()
	}
	normalizeGym(gym)
	r.items = append(r.items, *gym)
	return nil
}

func (r *memoryGyms) FindByID(ctx context.Context, id string) (*model.Gym, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, g := range r.items {
		if g.ID == id {
			found := g
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryGyms) SearchByTitle(ctx context.Context, query string, p int) ([]model.Gym, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	var matches []model.Gym
	for _, g := range r.items {
		if strings.Contains(strings.ToLower(g.Title), needle) {
			matches = append(matches, g)
		}
	}
	from, to := pageBounds(len(matches), p)
	return matches[from:to], nil
}

func (r *memoryGyms) FindManyNearby(ctx context.Context, point geo.Coordinate, radiusKm float64) ([]model.Gym, error) {
	r.mu.RLock()
	all := make([]model.Gym, len(r.items))
	copy(all, r.items)
	r.mu.RUnlock()

	return filterNearby(all, point, radiusKm), nil
}

type memoryCheckIns struct {
	mu    sync.RWMutex
	items []model.CheckIn
}

func (r *memoryCheckIns) Create(ctx context.Context, checkIn *model.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if checkIn.CreatedAt.IsZero() {
		checkIn.CreatedAt = time.Now()
	}
	checkIn.Day = model.DayOf(checkIn.CreatedAt)
	for _, c := range r.items {
		if c.UserID == checkIn.UserID && c.Day == checkIn.Day {
			return fmt.Errorf("failed to create check-in: %w", ErrDuplicate)
		}
	}
	if checkIn.ID == "" {
		checkIn.ID = uuid.NewString()
	}
	r.items = append(r.items, *checkIn)
	return nil
}

func (r *memoryCheckIns) FindByID(ctx context.Context, id string) (*model.CheckIn, error) {
	return r.find(func(c model.CheckIn) bool { return c.ID == id }), nil
}

func (r *memoryCheckIns) FindByUserIDOnDate(ctx context.Context, userID string, date time.Time) (*model.CheckIn, error) {
	day := model.DayOf(date)
	return r.find(func(c model.CheckIn) bool { return c.UserID == userID && c.Day == day }), nil
}

func (r *memoryCheckIns) Update(ctx context.Context, checkIn *model.CheckIn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.items {
		if r.items[i].ID == checkIn.ID {
			if r.items[i].ValidatedAt != nil {
				return fmt.Errorf("failed to update check-in %s: %w", checkIn.ID, ErrAlreadyValidated)
			}
			r.items[i].ValidatedAt = checkIn.ValidatedAt
			return nil
		}
	}
	return fmt.Errorf("failed to update check-in %s: %w", checkIn.ID, ErrNotFound)
}

// FindManyByUserID returns the newest check-ins first; among equal timestamps the
// later insert comes first.
func (r *memoryCheckIns) FindManyByUserID(ctx context.Context, userID string, p int) ([]model.CheckIn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var mine []model.CheckIn
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].UserID == userID {
			mine = append(mine, r.items[i])
		}
	}
	// insertion sort keeps the reverse-insertion order for ties
	for i := 1; i < len(mine); i++ {
		for j := i; j > 0 && mine[j].CreatedAt.After(mine[j-1].CreatedAt); j-- {
			mine[j], mine[j-1] = mine[j-1], mine[j]
		}
	}
	from, to := pageBounds(len(mine), p)
	return mine[from:to], nil
}

func (r *memoryCheckIns) CountByUserID(ctx context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, c := range r.items {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memoryCheckIns) find(match func(model.CheckIn) bool) *model.CheckIn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.items {
		if match(c) {
			found := c
			return &found
		}
	}
	return nil
}

type memorySubscriptions struct {
	mu         sync.RWMutex
	byEndpoint map[string]model.PushSubscription
}

func (r *memorySubscriptions) Upsert(ctx context.Context, sub *model.PushSubscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byEndpoint[sub.Endpoint]; ok {
		if existing.UserID != sub.UserID {
			return fmt.Errorf("failed to upsert push subscription: %w", ErrDuplicate)
		}
		sub.CreatedAt = existing.CreatedAt
	} else if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}
	r.byEndpoint[sub.Endpoint] = *sub
	return nil
}

func (r *memorySubscriptions) FindByUserID(ctx context.Context, userID string) ([]model.PushSubscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var subs []model.PushSubscription
	for _, s := range r.byEndpoint {
		if s.UserID == userID {
			subs = append(subs, s)
		}
	}
	return subs, nil
}

func (r *memorySubscriptions) Delete(ctx context.Context, userID, endpoint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byEndpoint[endpoint]; ok && s.UserID == userID {
		delete(r.byEndpoint, endpoint)
	}
	return nil
}
