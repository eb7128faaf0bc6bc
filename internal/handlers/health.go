package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"podgate/api/internal/jobs"
)

type healthResponse struct {
	Status      string `json:"status"`
	Cache       string `json:"cache"`
	Upstream    string `json:"upstream"`
	Environment string `json:"environment"`
}

// Health reports redis directly and the upstream via the scheduler's cached
// probe, so a hung podcore never hangs the health check itself.
func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cacheStatus := "ok"
	if err := h.cache.Ping(ctx).Err(); err != nil {
		cacheStatus = "error"
		h.log.Error().Err(err).Msg("redis ping failed")
	}

	upstream, err := h.cache.Get(ctx, jobs.UpstreamHealthKey).Result()
	if err != nil || upstream == "" {
		upstream = "unknown"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Cache:       cacheStatus,
		Upstream:    upstream,
		Environment: h.cfg.Environment,
	})
}
