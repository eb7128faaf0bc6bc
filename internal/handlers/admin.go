package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/models"
)

// AdminListUsers lists the current location's users with the shared search
// contract, matching on name, phone, email and flat number.
func (h HandlerSet) AdminListUsers(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if sess.LocationID == "" {
		c.JSON(http.StatusOK, gin.H{"users": []models.User{}})
		return
	}

	users, err := h.podcore.LocationUsers(upstreamCtx(c, sess), sess.LocationID)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	if query := strings.ToLower(strings.TrimSpace(c.Query("q"))); query != "" {
		matched := make([]models.User, 0, len(users))
		for _, u := range users {
			if strings.Contains(strings.ToLower(u.Name), query) ||
				strings.Contains(u.Phone, query) ||
				strings.Contains(strings.ToLower(u.Email), query) ||
				strings.Contains(strings.ToLower(u.FlatNo), query) {
				matched = append(matched, u)
			}
		}
		users = matched
	}
	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

type registerUserRequest struct {
	Name    string `json:"user_name" binding:"required"`
	Email   string `json:"user_email"`
	Phone   string `json:"user_phone" binding:"required"`
	Address string `json:"user_address"`
	FlatNo  string `json:"user_flatno"`
	Role    string `json:"user_type"`
}

func (h HandlerSet) AdminRegisterUser(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleCustomer
	}

	created, err := h.podcore.RegisterUser(upstreamCtx(c, sess), models.NewUser{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		FlatNo:     req.FlatNo,
		Role:       role,
		LocationID: sess.LocationID,
	})
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": created})
}

func (h HandlerSet) AdminUpdateUser(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
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

	updated, err := h.podcore.UpdateUser(upstreamCtx(c, sess), userID, patch)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": updated})
}

func (h HandlerSet) AdminRemoveUser(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	if userID == sess.User.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove yourself"})
		return
	}

	if err := h.podcore.RemoveUser(upstreamCtx(c, sess), userID); err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AdminListPods(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if sess.LocationID == "" {
		c.JSON(http.StatusOK, gin.H{"pods": []models.Pod{}})
		return
	}

	pods, err := h.podcore.LocationPods(upstreamCtx(c, sess), sess.LocationID)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}
	if pods == nil {
		pods = []models.Pod{}
	}

	c.JSON(http.StatusOK, gin.H{"pods": pods})
}

// AdminListReservations serves the admin dashboard's reservation and history
// tabs: all of the location's reservations in one status, searched and paged
// in memory.
func (h HandlerSet) AdminListReservations(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := models.ParseReservationStatus(c.DefaultQuery("status", string(models.StatusPickupPending)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.reservations.ForLocation(upstreamCtx(c, sess), sess.LocationID, status)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageReservations(c, items))
}
