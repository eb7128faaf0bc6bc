package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"podgate/api/internal/auth"
	"podgate/api/internal/config"
	"podgate/api/internal/location"
	"podgate/api/internal/middleware"
	"podgate/api/internal/models"
	"podgate/api/internal/podcore"
	"podgate/api/internal/reservations"
	"podgate/api/internal/session"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	cache        *redis.Client
	podcore      *podcore.Client
	sessions     *session.Store
	auth         *auth.Service
	resolver     *location.Resolver
	reservations *reservations.Service
}

func NewHandlerSet(log zerolog.Logger, cache *redis.Client, client *podcore.Client, cfg *config.AppConfig) HandlerSet {
	sessions := session.NewStore(cache, cfg.Auth.SessionTTL)
	authService := auth.NewService(client, sessions, cache, cfg.Auth, log)
	resolver := location.NewResolver(client, sessions, log)
	reservationService := reservations.NewService(client, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		cache:        cache,
		podcore:      client,
		sessions:     sessions,
		auth:         authService,
		resolver:     resolver,
		reservations: reservationService,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		authGroup := v1.Group("/auth")
		authGroup.POST("/otp/generate", h.GenerateOTP)
		authGroup.POST("/otp/resend", h.ResendOTP)
		authGroup.POST("/otp/validate", h.ValidateOTP)

		// Pod lookup on an entry URL happens before login.
		v1.GET("/context/pod", h.LookupPod)

		protected := v1.Group("")
		protected.Use(middleware.Auth(h.cfg, h.sessions))

		protected.POST("/auth/logout", h.Logout)
		protected.GET("/auth/me", h.Me)

		protected.POST("/context/pod", h.ResolvePod)

		protected.GET("/locations", h.ListLocations)
		protected.POST("/locations/associate", h.AssociateLocation)
		protected.GET("/locations/prompt", h.LocationPrompt)
		protected.POST("/locations/prompt/ack", h.AckLocationPrompt)

		protected.GET("/profile", h.Profile)
		protected.PATCH("/profile", h.UpdateProfile)

		customer := protected.Group("", middleware.RequireRoles(models.UserRoleCustomer))
		customer.GET("/dashboard", h.CustomerDashboard)
		customer.GET("/reservations", h.ListReservations)
		customer.POST("/reservations", h.CreateReservation)

		admin := protected.Group("/admin", middleware.RequireRoles(models.UserRoleSiteAdmin))
		admin.GET("/users", h.AdminListUsers)
		admin.POST("/users", h.AdminRegisterUser)
		admin.PATCH("/users/:id", h.AdminUpdateUser)
		admin.DELETE("/users/:id", h.AdminRemoveUser)
		admin.GET("/pods", h.AdminListPods)
		admin.GET("/reservations", h.AdminListReservations)

		security := protected.Group("/security", middleware.RequireRoles(models.UserRoleSiteSecurity))
		security.GET("/reservations", h.SecurityListReservations)
	}
}

// currentSession pulls the session placed by the auth middleware.
func currentSession(c *gin.Context) (models.Session, bool) {
	sessVal, exists := c.Get(middleware.ContextSession)
	if !exists {
		return models.Session{}, false
	}
	sess, ok := sessVal.(models.Session)
	return sess, ok
}

// upstreamCtx scopes the request context to the session's podcore token so
// outbound calls carry it instead of the static service token.
func upstreamCtx(c *gin.Context, sess models.Session) context.Context {
	return podcore.WithToken(c.Request.Context(), sess.AccessToken)
}
