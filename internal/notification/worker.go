package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Message is the JSON payload delivered to the browser.
type Message struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	CheckInID string `json:"check_in_id"`
}

// WorkerPool tells members that their check-in was validated.
type WorkerPool struct {
	size          int
	jobs          chan model.CheckIn
	subscriptions store.SubscriptionRepository
	gyms          store.GymRepository
	webpush       *webpush.Options
	sender        NotificationSender
	logger        *log.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, logger *log.Logger) *WorkerPool {
	return &WorkerPool{
		size:          size,
		jobs:          make(chan model.CheckIn, size*16),
		subscriptions: s.Subscriptions(),
		gyms:          s.Gyms(),
		webpush:       webpushOptions,
		sender:        &WebPushSender{},
		logger:        logger,
	}
}

// Start launches the worker goroutines. They stop when ctx is cancelled.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Printf("notification worker %d started", id)
	for {
		select {
		case checkIn := <-wp.jobs:
			wp.notifyValidated(ctx, checkIn)
		case <-ctx.Done():
			wp.logger.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a validated check-in. It gives up when ctx is done before
// a slot frees up.
func (wp *WorkerPool) Dispatch(ctx context.Context, checkIn model.CheckIn) error {
	select {
	case wp.jobs <- checkIn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (wp *WorkerPool) notifyValidated(ctx context.Context, checkIn model.CheckIn) {
	subs, err := wp.subscriptions.FindByUserID(ctx, checkIn.UserID)
	if err != nil {
		wp.logger.Printf("failed to fetch subscriptions of user %s: %v", checkIn.UserID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	gymLabel := "the gym"
	gym, err := wp.gyms.FindByID(ctx, checkIn.GymID)
	if err != nil {
		wp.logger.Printf("failed to fetch gym %s: %v", checkIn.GymID, err)
	} else if gym != nil {
		gymLabel = gym.Title
	}

	payload, err := json.Marshal(Message{
		Title:     "Check-in validated",
		Body:      fmt.Sprintf("Your check-in at %s was validated.", gymLabel),
		CheckInID: checkIn.ID,
	})
	if err != nil {
		wp.logger.Printf("failed to encode notification for check-in %s: %v", checkIn.ID, err)
		return
	}

	for _, sub := range subs {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Printf("failed to send notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		wp.logger.Printf("subscription %s is expired, deleting", sub.Endpoint)
		if err := wp.subscriptions.Delete(ctx, sub.UserID, sub.Endpoint); err != nil {
			wp.logger.Printf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
