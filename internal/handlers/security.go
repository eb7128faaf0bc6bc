package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/models"
)

// SecurityListReservations backs the site security dashboard: RTO pending and
// completed lists for the current location, including the locker OTP codes
// security staff read out at the door.
func (h HandlerSet) SecurityListReservations(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := models.ParseReservationStatus(c.DefaultQuery("status", string(models.StatusRTOPending)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if status != models.StatusRTOPending && status != models.StatusRTOCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be RTOPending or RTOCompleted"})
		return
	}

	items, err := h.reservations.ForLocation(upstreamCtx(c, sess), sess.LocationID, status)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageReservations(c, items))
}
