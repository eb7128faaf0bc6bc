package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/models"
)

func (h HandlerSet) Profile(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":             sess.User,
		"available_credit": sess.User.AvailableCredit(),
	})
}

// UpdateProfile submits the client-mutable fields to podcore and, once the
// server confirms, writes the returned record back into the session so the
// next profile render matches field-for-field. Phone and locker codes are not
// accepted here at all.
func (h HandlerSet) UpdateProfile(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var patch models.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	updated, err := h.podcore.UpdateUser(upstreamCtx(c, sess), sess.User.ID, patch)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	if err := h.sessions.SetUser(c.Request.Context(), sess.ID, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":             updated,
		"available_credit": updated.AvailableCredit(),
	})
}
