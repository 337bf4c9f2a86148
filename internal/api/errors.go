package api

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"gym-checkin-backend/internal/usecase"
)

var (
	errPushDisabled      = errors.New("push notifications are not configured")
	errSubscriptionTaken = errors.New("push subscription belongs to another user")
)

var errorStatuses = []struct {
	err    error
	status int
}{
	{usecase.ErrResourceNotFound, http.StatusNotFound},
	{usecase.ErrDuplicateUser, http.StatusConflict},
	{usecase.ErrInvalidCredentials, http.StatusBadRequest},
	{usecase.ErrMaxDistanceExceeded, http.StatusBadRequest},
	{usecase.ErrMaxCheckInsPerDay, http.StatusBadRequest},
	{usecase.ErrLateValidation, http.StatusBadRequest},
	{usecase.ErrCheckInAlreadyValidated, http.StatusConflict},
	{errSubscriptionTaken, http.StatusConflict},
	{errPushDisabled, http.StatusServiceUnavailable},
}

// respondError maps use case error kinds to statuses. Anything else is logged and hidden.
func (h *Handler) respondError(c *gin.Context, err error) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": e.err.Error()})
			return
		}
	}

	h.logger.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// respondInvalid reports a request that failed binding.
func respondInvalid(c *gin.Context, err error) {
	issues := map[string]string{}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			issues[fe.Field()] = fe.Tag()
		}
	} else {
		issues["request"] = err.Error()
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "validation error", "issues": issues})
}

var registerFieldNames sync.Once

// useRequestFieldNames makes validation issues name fields as clients send them.
func useRequestFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form", "uri"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}
