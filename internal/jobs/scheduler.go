package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"podgate/api/internal/podcore"
)

// UpstreamHealthKey caches the last podcore probe result for /healthz.
const UpstreamHealthKey = "health:podcore"

// promptFlagMaxAge caps orphaned prompt flags. Logout clears a user's flags,
// but a session that simply expires leaves them behind; the sweep puts a
// ceiling on how long.
const promptFlagMaxAge = 90 * 24 * time.Hour

type Scheduler struct {
	cron    *cron.Cron
	cache   *redis.Client
	podcore *podcore.Client
	log     zerolog.Logger
}

func NewScheduler(cache *redis.Client, client *podcore.Client, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:    c,
		cache:   cache,
		podcore: client,
		log:     log,
	}
}

func (s *Scheduler) Start() error {
	if s.cache == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 */1 * * * *", s.probeUpstream); err != nil { // every minute
		return err
	}
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.sweepPromptFlags); err != nil {
		return err
	}

	s.cron.Start()
	s.probeUpstream()
	return nil
}

// Stop waits for running jobs to finish, up to five seconds.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) probeUpstream() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	status := "ok"
	if err := s.podcore.Ping(ctx); err != nil {
		status = "error"
		s.log.Warn().Err(err).Msg("podcore probe failed")
	}

	if err := s.cache.Set(ctx, UpstreamHealthKey, status, 5*time.Minute).Err(); err != nil {
		s.log.Error().Err(err).Msg("cache upstream health failed")
	}
}

func (s *Scheduler) sweepPromptFlags() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	swept := 0
	iter := s.cache.Scan(ctx, 0, "prompt_shown:*", 200).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ttl, err := s.cache.TTL(ctx, key).Result()
		if err != nil {
			continue
		}
		if ttl < 0 {
			if err := s.cache.Expire(ctx, key, promptFlagMaxAge).Err(); err == nil {
				swept++
			}
		}
	}
	if err := iter.Err(); err != nil {
		s.log.Error().Err(err).Msg("prompt flag sweep failed")
		return
	}
	if swept > 0 {
		s.log.Info().Int("flags", swept).Msg("capped orphaned prompt flags")
	}
}
