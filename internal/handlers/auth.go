package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/auth"
	"podgate/api/internal/middleware"
	"podgate/api/internal/phone"
	"podgate/api/internal/podcore"
	"podgate/api/internal/security"
)

type otpRequest struct {
	Phone string `json:"phone" binding:"required"`
}

func (h HandlerSet) GenerateOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.StartLogin(c.Request.Context(), req.Phone)
	if err != nil {
		h.sendAuthError(c, "generate otp", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "OTP sent to " + result.MaskedPhone,
		"masked_phone": result.MaskedPhone,
		"resend_after": int(result.ResendAfter.Seconds()),
	})
}

func (h HandlerSet) ResendOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.Resend(c.Request.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, auth.ErrResendTooSoon) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			return
		}
		h.sendAuthError(c, "resend otp", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "OTP re-sent to " + result.MaskedPhone,
		"masked_phone": result.MaskedPhone,
		"resend_after": int(result.ResendAfter.Seconds()),
	})
}

type validateOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

func (h HandlerSet) ValidateOTP(c *gin.Context) {
	var req validateOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.auth.VerifyOTP(c.Request.Context(), req.Phone, req.OTP)
	if err != nil {
		h.sendAuthError(c, "validate otp", err)
		return
	}

	if result.Token == "" {
		// Validated upstream but the role is unrecognized: no session.
		c.JSON(http.StatusOK, gin.H{"redirect": result.Redirect})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    result.Token,
		"user":     result.User,
		"redirect": result.Redirect,
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sess.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	claimsVal, _ := c.Get(middleware.ContextClaims)
	claims, _ := claimsVal.(security.SessionClaims)

	c.JSON(http.StatusOK, gin.H{
		"user":             sess.User,
		"role":             sess.User.Role,
		"location_id":      sess.LocationID,
		"location_name":    sess.LocationName,
		"pod_name":         sess.PodName,
		"available_credit": sess.User.AvailableCredit(),
		"session_id":       claims.SessionID,
	})
}

// sendAuthError maps login failures onto statuses: input rules are 400,
// upstream rejections keep the upstream's word, everything else is 502.
func (h HandlerSet) sendAuthError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, phone.ErrInvalid), errors.Is(err, auth.ErrOTPLength):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrNoFlow), errors.Is(err, auth.ErrFlowState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		var upstream *podcore.Error
		if errors.As(err, &upstream) {
			h.log.Warn().Err(err).Str("op", op).Msg("upstream auth call failed")
			message := upstream.Message
			if message == "" {
				message = "Failed to " + op + ". Please try again."
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}
		h.log.Error().Err(err).Str("op", op).Msg("auth failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to " + op + ". Please try again."})
	}
}
