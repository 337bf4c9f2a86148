package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// VAPIDPublicKey hands browsers the application server key they subscribe with.
// It answers 503 while validation notifications are disabled.
func (h *Handler) VAPIDPublicKey(c *gin.Context) {
	if !h.pushEnabled() {
		h.respondError(c, errPushDisabled)
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}

func (h *Handler) pushEnabled() bool {
	return h.webpush != nil && h.webpush.VAPIDPublicKey != ""
}
