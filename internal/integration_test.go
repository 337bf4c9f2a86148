package internal

import (
	"bytes"
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"gym-checkin-backend/config"
	"gym-checkin-backend/internal/api"
	"gym-checkin-backend/internal/auth"
	"gym-checkin-backend/internal/db"
	"gym-checkin-backend/internal/notification"
	"gym-checkin-backend/internal/store"
	"gym-checkin-backend/internal/usecase"
)

type client struct {
	t      *testing.T
	router *gin.Engine
}

func (c client) call(method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c client) login(email, password string) (string, *http.Cookie) {
	c.t.Helper()
	w := c.call(http.MethodPost, "/sessions", "", map[string]string{"email": email, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "refreshToken" {
			return body.Token, cookie
		}
	}
	c.t.Fatal("no refresh cookie in sign-in response")
	return "", nil
}

// browserKeys returns the p256dh and auth values a browser would send with its subscription.
func browserKeys(t *testing.T) (string, string) {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)
	return base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()), base64.RawURLEncoding.EncodeToString(secret)
}

// TestCheckInLifecycle runs a member from sign-up to a validated check-in against
// SQLite, ending with the push notification hitting the subscription endpoint.
func TestCheckInLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Test Setup ---
	gormDB, err := db.Init(&config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	appStore := store.NewGormStore(gormDB)
	created, err := db.SeedAdmin(ctx, appStore.Users(), config.AdminConfig{
		Name: "Administrator", Email: "admin@example.com", Password: "admin123",
	})
	require.NoError(t, err)
	require.True(t, created)

	pushed := make(chan *http.Request, 1)
	pushServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushed <- r
		w.WriteHeader(http.StatusCreated)
	}))
	defer pushServer.Close()

	vapidPrivate, vapidPublic, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	webpushOptions := &webpush.Options{
		VAPIDPublicKey:  vapidPublic,
		VAPIDPrivateKey: vapidPrivate,
		Subscriber:      "admin@example.com",
		TTL:             60,
	}
	pool := notification.NewWorkerPool(1, appStore, webpushOptions, log.New(io.Discard, "", 0))
	pool.Start(ctx)

	sessions, err := auth.NewSessionStore(ctx, config.SessionConfig{Backend: "memory"})
	require.NoError(t, err)

	router := api.NewRouter(api.Options{
		Server: config.ServerConfig{RateLimitPerSec: 100, RateLimitBurst: 100, CacheTTLSeconds: 60},
		UseCases: usecase.New(appStore, usecase.Options{
			Location: time.UTC,
			HashCost: bcrypt.MinCost,
		}),
		Subscriptions: appStore.Subscriptions(),
		Tokens: auth.NewTokenService(config.JWTConfig{
			Secret:     "integration-secret",
			Issuer:     "gym-checkin-backend",
			AccessTTL:  10 * time.Minute,
			RefreshTTL: time.Hour,
		}, sessions),
		Notifier: pool,
		Webpush:  webpushOptions,
		Logger:   log.New(io.Discard, "", 0),
	})
	c := client{t: t, router: router}

	// --- Member signs up and in ---
	w := c.call(http.MethodPost, "/users", "", map[string]string{
		"name": "John Doe", "email": "johndoe@example.com", "password": "123456",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	member, memberRefresh := c.login("johndoe@example.com", "123456")
	admin, _ := c.login("admin@example.com", "admin123")

	p256dh, authSecret := browserKeys(t)
	w = c.call(http.MethodPut, "/me/push-subscriptions", member, map[string]string{
		"endpoint": pushServer.URL + "/subscription", "p256dh": p256dh, "auth": authSecret,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// --- Admin registers a gym ---
	w = c.call(http.MethodPost, "/gyms", admin, map[string]any{
		"title": "JavaScript Gym", "latitude": -27.2092052, "longitude": -49.6401091,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var gymResp struct {
		Gym struct {
			ID string `json:"id"`
		} `json:"gym"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &gymResp))

	w = c.call(http.MethodGet, "/gyms/nearby?latitude=-27.2092052&longitude=-49.6401091", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), gymResp.Gym.ID)

	// --- Member checks in ---
	here := map[string]float64{"latitude": -27.2092052, "longitude": -49.6401091}
	w = c.call(http.MethodPost, "/gyms/"+gymResp.Gym.ID+"/check-ins", member, here)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var checkInResp struct {
		CheckIn struct {
			ID string `json:"id"`
		} `json:"checkIn"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkInResp))

	w = c.call(http.MethodPost, "/gyms/"+gymResp.Gym.ID+"/check-ins", member, here)
	assert.Equal(t, http.StatusBadRequest, w.Code, "second check-in on the same day")

	w = c.call(http.MethodGet, "/check-ins/metrics", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"checkInsCount":1}`, w.Body.String())

	// --- Admin validates; the member's browser is notified ---
	w = c.call(http.MethodPatch, "/check-ins/"+checkInResp.CheckIn.ID+"/validate", admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	select {
	case r := <-pushed:
		assert.Equal(t, "/subscription", r.URL.Path)
		assert.Equal(t, "aes128gcm", r.Header.Get("Content-Encoding"))
		assert.Contains(t, r.Header.Get("Authorization"), "vapid")
	case <-time.After(5 * time.Second):
		t.Fatal("validation notification was not pushed")
	}

	stored, err := appStore.CheckIns().FindByID(ctx, checkInResp.CheckIn.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotNil(t, stored.ValidatedAt)

	w = c.call(http.MethodGet, "/check-ins/history", member, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), checkInResp.CheckIn.ID)

	// --- The refresh cookie keeps the session alive ---
	w = c.call(http.MethodPatch, "/token/refresh", "", nil, memberRefresh)
	assert.Equal(t, http.StatusOK, w.Code)
}
