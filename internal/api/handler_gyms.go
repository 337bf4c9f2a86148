package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gym-checkin-backend/internal/geo"
	"gym-checkin-backend/internal/model"
	"gym-checkin-backend/internal/usecase"
)

type createGymRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description *string  `json:"description"`
	Phone       *string  `json:"phone"`
	Latitude    *float64 `json:"latitude" binding:"required,latitude"`
	Longitude   *float64 `json:"longitude" binding:"required,longitude"`
}

// CreateGym registers a gym. Admin only.
func (h *Handler) CreateGym(c *gin.Context) {
	var req createGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	gym, err := h.uc.CreateGym.Execute(c.Request.Context(), usecase.CreateGymRequest{
		Title:       req.Title,
		Description: req.Description,
		Phone:       req.Phone,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	if h.gymCache != nil {
		h.gymCache.Invalidate()
	}
	c.JSON(http.StatusCreated, gin.H{"gym": gym})
}

type searchGymsQuery struct {
	Query string `form:"q" binding:"required"`
	Page  int    `form:"page,default=1" binding:"min=1"`
}

// SearchGyms lists gyms whose title contains q, twenty per page.
func (h *Handler) SearchGyms(c *gin.Context) {
	var q searchGymsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, err)
		return
	}

	gyms, err := h.uc.SearchGyms.Execute(c.Request.Context(), q.Query, q.Page)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if gyms == nil {
		gyms = []model.Gym{}
	}

	c.JSON(http.StatusOK, gin.H{"gyms": gyms})
}

type nearbyGymsQuery struct {
	Latitude  *float64 `form:"latitude" binding:"required,latitude"`
	Longitude *float64 `form:"longitude" binding:"required,longitude"`
}

// NearbyGyms lists gyms within ten kilometres of the caller.
func (h *Handler) NearbyGyms(c *gin.Context) {
	var q nearbyGymsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondInvalid(c, err)
		return
	}

	gyms, err := h.uc.FetchNearbyGyms.Execute(c.Request.Context(), geo.Coordinate{
		Latitude:  *q.Latitude,
		Longitude: *q.Longitude,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if gyms == nil {
		gyms = []model.Gym{}
	}

	c.JSON(http.StatusOK, gin.H{"gyms": gyms})
}
