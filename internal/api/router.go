package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"gym-checkin-backend/internal/auth"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(opts Options) *gin.Engine {
	useRequestFieldNames()

	r := gin.Default()

	if len(opts.Server.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Per-client token bucket; idle buckets are dropped after ten minutes.
	if opts.Server.RateLimitPerSec > 0 {
		limiter := mw.NewRateLimiter(rate.Limit(opts.Server.RateLimitPerSec), opts.Server.RateLimitBurst, 10*time.Minute)
		r.Use(limiter.Middleware(mw.ClientIP))
	}

	var gymCache *mw.ResponseCache
	var cacheGyms gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.Server.CacheTTLSeconds > 0 {
		gymCache = mw.NewResponseCache(time.Duration(opts.Server.CacheTTLSeconds) * time.Second)
		cacheGyms = gymCache.Middleware()
	}

	handler := NewHandler(opts, gymCache)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/push/vapid-public-key", handler.VAPIDPublicKey)

	r.POST("/users", handler.Register)
	r.POST("/sessions", handler.Authenticate)
	r.DELETE("/sessions", handler.Logout)
	r.PATCH("/token/refresh", handler.RefreshToken)

	authed := r.Group("/")
	authed.Use(auth.Authenticate(opts.Tokens))
	adminOnly := auth.RequireRole(model.RoleAdmin)
	{
		authed.GET("/me", handler.Profile)
		authed.PUT("/me/push-subscriptions", handler.PutSubscription)
		authed.DELETE("/me/push-subscriptions", handler.DeleteSubscription)

		authed.GET("/gyms/search", cacheGyms, handler.SearchGyms)
		authed.GET("/gyms/nearby", cacheGyms, handler.NearbyGyms)
		authed.POST("/gyms", adminOnly, handler.CreateGym)
		authed.POST("/gyms/:gymId/check-ins", handler.CreateCheckIn)

		authed.GET("/check-ins/history", handler.CheckInHistory)
		authed.GET("/check-ins/metrics", handler.CheckInMetrics)
		authed.PATCH("/check-ins/:checkInId/validate", adminOnly, handler.ValidateCheckIn)
	}

	return r
}
