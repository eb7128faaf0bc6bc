package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LookupPod resolves a pod identifier from an entry URL without touching any
// session, so the landing page can show the location before login.
func (h HandlerSet) LookupPod(c *gin.Context) {
	podName := c.Query("pod_name")
	if podName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pod_name required"})
		return
	}

	pod, err := h.podcore.GetPod(c.Request.Context(), podName)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}
	loc, err := h.podcore.GetLocation(c.Request.Context(), pod.LocationID)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pod": pod, "location": loc})
}

type resolvePodRequest struct {
	PodName string `json:"pod_name" binding:"required"`
}

// ResolvePod exchanges the entry URL's pod identifier for a location id and
// caches it on the session; every later "current location" reservation query
// reads it from there.
func (h HandlerSet) ResolvePod(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req resolvePodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolved, err := h.resolver.Resolve(upstreamCtx(c, sess), sess.ID, req.PodName)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, resolved)
}

func (h HandlerSet) ListLocations(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	locations, err := h.podcore.UserLocations(upstreamCtx(c, sess), sess.User.ID)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// LocationPrompt reports whether the "save this location to your account"
// popup should be offered for the session's current location.
func (h HandlerSet) LocationPrompt(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prompt":        h.resolver.ShouldPrompt(c.Request.Context(), sess),
		"location_id":   sess.LocationID,
		"location_name": sess.LocationName,
	})
}

type ackPromptRequest struct {
	Accept bool `json:"accept"`
}

// AckLocationPrompt closes the popup. Accepting also creates the
// user-location association upstream; either way the prompt is marked shown
// and never offered again for this pair.
func (h HandlerSet) AckLocationPrompt(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req ackPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Accept {
		if err := h.resolver.Associate(c.Request.Context(), sess); err != nil {
			h.sendUpstreamError(c, err)
			return
		}
	}
	if err := h.resolver.AckPrompt(c.Request.Context(), sess); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AssociateLocation(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if sess.LocationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no location resolved"})
		return
	}

	if err := h.resolver.Associate(c.Request.Context(), sess); err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
