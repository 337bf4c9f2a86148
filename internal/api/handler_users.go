package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gym-checkin-backend/internal/auth"
	"gym-checkin-backend/internal/usecase"
)

const refreshCookie = "refreshToken"

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register creates a member account.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	user, err := h.uc.Register.Execute(c.Request.Context(), usecase.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type authenticateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Authenticate signs a user in. The access token goes in the body, the refresh
// token in an httpOnly cookie.
func (h *Handler) Authenticate(c *gin.Context) {
	var req authenticateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	user, err := h.uc.Authenticate.Execute(c.Request.Context(), usecase.AuthenticateRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	pair, err := h.tokens.Issue(c.Request.Context(), user.ID, user.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	c.JSON(http.StatusOK, gin.H{"token": pair.AccessToken})
}

// RefreshToken trades the refresh cookie for a new token pair.
func (h *Handler) RefreshToken(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookie)
	if err != nil || refresh == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	pair, _, err := h.tokens.Refresh(c.Request.Context(), refresh)
	if errors.Is(err, auth.ErrInvalidToken) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	c.JSON(http.StatusOK, gin.H{"token": pair.AccessToken})
}

// Logout revokes the refresh session, if any, and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if refresh, err := c.Cookie(refreshCookie); err == nil && refresh != "" {
		if err := h.tokens.Revoke(c.Request.Context(), refresh); err != nil {
			h.respondError(c, err)
			return
		}
	}

	h.setRefreshCookie(c, "", time.Time{})
	c.Status(http.StatusNoContent)
}

// Profile returns the authenticated user.
func (h *Handler) Profile(c *gin.Context) {
	user, err := h.uc.GetUserProfile.Execute(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// setRefreshCookie writes the refresh cookie. A zero expiry deletes it.
func (h *Handler) setRefreshCookie(c *gin.Context, value string, expires time.Time) {
	maxAge := -1
	if !expires.IsZero() {
		maxAge = int(time.Until(expires).Seconds())
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", h.cookieSecure, true)
}
