package api

import (
	"context"
	"log"
	"os"

	"github.com/SherClockHolmes/webpush-go"

	"gym-checkin-backend/config"
	"gym-checkin-backend/internal/auth"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/mw"
	"gym-checkin-backend/internal/store"
	"gym-checkin-backend/internal/usecase"
)

// Notifier receives check-ins right after they are validated.
type Notifier interface {
	Dispatch(ctx context.Context, checkIn model.CheckIn) error
}

// Options carries the dependencies of the HTTP layer.
type Options struct {
	Server        config.ServerConfig
	CookieSecure  bool
	UseCases      *usecase.UseCases
	Subscriptions store.SubscriptionRepository
	Tokens        *auth.TokenService
	Notifier      Notifier
	Webpush       *webpush.Options
	Logger        *log.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	uc            *usecase.UseCases
	subscriptions store.SubscriptionRepository
	tokens        *auth.TokenService
	notifier      Notifier
	webpush       *webpush.Options
	gymCache      *mw.ResponseCache
	cookieSecure  bool
	logger        *log.Logger
}

// NewHandler creates a new API handler. gymCache may be nil.
func NewHandler(opts Options, gymCache *mw.ResponseCache) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "api ", log.LstdFlags)
	}
	return &Handler{
		uc:            opts.UseCases,
		subscriptions: opts.Subscriptions,
		tokens:        opts.Tokens,
		notifier:      opts.Notifier,
		webpush:       opts.Webpush,
		gymCache:      gymCache,
		cookieSecure:  opts.CookieSecure,
		logger:        logger,
	}
}
