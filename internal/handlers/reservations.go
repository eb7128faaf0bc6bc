package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/models"
	"podgate/api/internal/podcore"
	"podgate/api/internal/reservations"
)

// CustomerDashboard returns the four status lists in one payload. With no
// location resolved it short-circuits to empty lists and a contextual note,
// never an error.
func (h HandlerSet) CustomerDashboard(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dash, err := h.reservations.Dashboard(upstreamCtx(c, sess), sess.User.Phone, sess.LocationID)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	resp := gin.H{"dashboard": dash}
	if sess.LocationID == "" {
		resp["notice"] = "No location selected. Scan a pod to get started."
	}
	c.JSON(http.StatusOK, resp)
}

// ListReservations serves one status tab with in-memory search and paging.
// The whole status-filtered set is fetched each time; q narrows it by
// case-insensitive substring over name, phone, AWB and pod name.
func (h HandlerSet) ListReservations(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status, err := models.ParseReservationStatus(c.DefaultQuery("status", string(models.StatusDropPending)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, err := h.reservations.ForUser(upstreamCtx(c, sess), sess.User.Phone, sess.LocationID, status)
	if err != nil {
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, pageReservations(c, items))
}

type createReservationRequest struct {
	AWBNumber      string `json:"awb_number" binding:"required"`
	ExecutivePhone string `json:"executive_phone" binding:"required"`
	Description    string `json:"package_description"`
}

func (h HandlerSet) CreateReservation(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if sess.LocationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No location selected. Please select a location first."})
		return
	}

	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.reservations.Create(upstreamCtx(c, sess), models.NewReservation{
		UserID:         sess.User.ID,
		LocationID:     sess.LocationID,
		AWBNumber:      req.AWBNumber,
		ExecutivePhone: req.ExecutivePhone,
		Description:    req.Description,
	})
	if err != nil {
		if errors.Is(err, reservations.ErrNoFreeDoor) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.sendUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reservation": created})
}

// pageReservations applies the shared q/page/per_page query contract.
func pageReservations(c *gin.Context, items []models.Reservation) reservations.PageResult {
	query := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(reservations.DefaultPageSize)))

	filtered := reservations.Filter(items, query)
	if query != "" && c.Query("page") == "" {
		page = 1
	}
	return reservations.Paginate(filtered, page, perPage)
}

// sendUpstreamError turns a podcore failure into a user-facing message. The
// originating action stays as it was; the user retries manually.
func (h HandlerSet) sendUpstreamError(c *gin.Context, err error) {
	var upstream *podcore.Error
	if errors.As(err, &upstream) {
		h.log.Warn().Err(err).Str("op", upstream.Op).Msg("upstream call failed")
		status := http.StatusBadGateway
		switch upstream.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			status = upstream.Status
		case http.StatusNotFound:
			status = http.StatusNotFound
		}
		message := upstream.Message
		if message == "" {
			message = "Something went wrong. Please try again."
		}
		c.JSON(status, gin.H{"error": message})
		return
	}

	h.log.Error().Err(err).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
