package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gym-checkin-backend/internal/auth"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/usecase"
)

// dispatchTimeout bounds how long a validation waits for a free notification slot.
const dispatchTimeout = 2 * time.Second

type gymURI struct {
	GymID string `uri:"gymId" binding:"required,uuid"`
}

type checkInBody struct {
	Latitude  *float64 `json:"latitude" binding:"required,latitude"`
	Longitude *float64 `json:"longitude" binding:"required,longitude"`
}

// CreateCheckIn checks the caller in at a gym.
func (h *Handler) CreateCheckIn(c *gin.Context) {
	var uri gymURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondInvalid(c, err)
		return
	}
	var body checkInBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondInvalid(c, err)
		return
	}

	checkIn, err := h.uc.CheckIn.Execute(c.Request.Context(), usecase.CheckInRequest{
		GymID:         uri.GymID,
		UserID:        auth.UserID(c),
		UserLatitude:  *body.Latitude,
		UserLongitude: *body.Longitude,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"checkIn": checkIn})
}

type checkInURI struct {
	CheckInID string `uri:"checkInId" binding:"required,uuid"`
}

// ValidateCheckIn confirms a check-in. Admin only.
func (h *Handler) ValidateCheckIn(c *gin.Context) {
	var uri checkInURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondInvalid(c, err)
		return
	}

	checkIn, err := h.uc.ValidateCheckIn.Execute(c.Request.Context(), uri.CheckInID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.notifyValidated(c.Request.Context(), *checkIn)
	c.Status(http.StatusNoContent)
}

// notifyValidated hands the check-in to the notifier. Failures only get logged;
// the validation itself already succeeded.
func (h *Handler) notifyValidated(ctx context.Context, checkIn model.CheckIn) {
	if h.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
	defer cancel()

	if err := h.notifier.Dispatch(ctx, checkIn); err != nil {
		h.logger.Printf("failed to queue notification for check-in %s: %v", checkIn.ID, err)
	}
}

type pageQuery struct {
	Page int `form:"page,default=1" binding:"min=1"`
}

// CheckInHistory lists the caller's check-ins, newest first.
func (h *Handler) CheckInHistory(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, err)
		return
	}

	checkIns, err := h.uc.CheckInHistory.Execute(c.Request.Context(), auth.UserID(c), q.Page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if checkIns == nil {
		checkIns = []model.CheckIn{}
	}

	c.JSON(http.StatusOK, gin.H{"checkIns": checkIns})
}

// CheckInMetrics returns how many check-ins the caller has made.
func (h *Handler) CheckInMetrics(c *gin.Context) {
	count, err := h.uc.GetUserMetrics.Execute(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"checkInsCount": count})
}
