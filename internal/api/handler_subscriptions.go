package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gym-checkin-backend/internal/auth"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/store"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription stores a browser push subscription for the caller. Endpoints
// registered by another user are refused.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	subscription := model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   auth.UserID(c),
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	err := h.subscriptions.Upsert(c.Request.Context(), &subscription)
	if errors.Is(err, store.ErrDuplicate) {
		err = errSubscriptionTaken
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	if err := h.subscriptions.Delete(c.Request.Context(), auth.UserID(c), req.Endpoint); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
