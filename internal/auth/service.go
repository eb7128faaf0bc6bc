package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"podgate/api/internal/config"
	"podgate/api/internal/ids"
	"podgate/api/internal/models"
	"podgate/api/internal/phone"
	"podgate/api/internal/podcore"
	"podgate/api/internal/security"
	"podgate/api/internal/session"
)

var ErrNoFlow = errors.New("no login in progress for that phone")

// Service drives the phone -> OTP login against podcore. Flow state lives in
// redis keyed by phone so the sequence survives across stateless requests;
// flows expire on their own TTL.
type Service struct {
	podcore  *podcore.Client
	sessions *session.Store
	redis    *redis.Client
	cfg      config.AuthConfig
	log      zerolog.Logger

	now func() time.Time
}

func NewService(client *podcore.Client, sessions *session.Store, redisClient *redis.Client, cfg config.AuthConfig, log zerolog.Logger) *Service {
	return &Service{
		podcore:  client,
		sessions: sessions,
		redis:    redisClient,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func flowKey(phoneNumber string) string {
	return "login_flow:" + phoneNumber
}

type StartResult struct {
	MaskedPhone string        `json:"masked_phone"`
	ResendAfter time.Duration `json:"resend_after"`
}

// StartLogin normalizes the phone, asks podcore to send a code, and opens a
// flow. Re-invoking for the same phone is allowed and simply restarts the
// countdown, so a duplicate "Get OTP" tap never errors.
func (s *Service) StartLogin(ctx context.Context, rawPhone string) (StartResult, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return StartResult{}, err
	}

	if err := s.podcore.GenerateOTP(ctx, normalized); err != nil {
		return StartResult{}, err
	}

	flow, err := Begin(ids.New(), normalized, s.now(), s.cfg.ResendCooldown)
	if err != nil {
		return StartResult{}, err
	}
	if err := s.saveFlow(ctx, flow); err != nil {
		return StartResult{}, err
	}

	s.log.Info().Str("phone", phone.Mask(normalized)).Msg("otp sent")
	return StartResult{
		MaskedPhone: phone.Mask(normalized),
		ResendAfter: s.cfg.ResendCooldown,
	}, nil
}

// Resend re-triggers OTP generation for an open flow. Gated by the countdown:
// before it reaches zero the call is rejected without touching podcore.
func (s *Service) Resend(ctx context.Context, rawPhone string) (StartResult, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return StartResult{}, err
	}

	flow, err := s.loadFlow(ctx, normalized)
	if err != nil {
		return StartResult{}, err
	}

	flow, err = flow.Resend(s.now(), s.cfg.ResendCooldown)
	if err != nil {
		return StartResult{}, err
	}

	if err := s.podcore.GenerateOTP(ctx, normalized); err != nil {
		return StartResult{}, err
	}
	if err := s.saveFlow(ctx, flow); err != nil {
		return StartResult{}, err
	}

	return StartResult{
		MaskedPhone: phone.Mask(normalized),
		ResendAfter: s.cfg.ResendCooldown,
	}, nil
}

type VerifyResult struct {
	Token    string      `json:"token"`
	User     models.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// VerifyOTP validates the code with podcore, persists the session, and mints
// the podgate session token. A rejected code leaves the flow untouched so the
// user can retry; a user with an unrecognized role is routed back to login
// with no session created.
func (s *Service) VerifyOTP(ctx context.Context, rawPhone, code string) (VerifyResult, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return VerifyResult{}, err
	}
	if err := ValidateOTP(code); err != nil {
		return VerifyResult{}, err
	}

	flow, err := s.loadFlow(ctx, normalized)
	if err != nil {
		return VerifyResult{}, err
	}
	if flow.State != StateAwaitingOTP {
		return VerifyResult{}, ErrFlowState
	}

	user, accessToken, err := s.podcore.ValidateOTP(ctx, normalized, code)
	if err != nil {
		// Flow stays as it was; the code can be retried or resent.
		if saveErr := s.saveFlow(ctx, flow.RecordAttempt()); saveErr != nil {
			s.log.Warn().Err(saveErr).Msg("record otp attempt failed")
		}
		return VerifyResult{}, err
	}

	redirect, roleKnown := RouteForRole(user.Role)
	flow, err = flow.Complete(roleKnown)
	if err != nil {
		return VerifyResult{}, err
	}
	s.dropFlow(ctx, normalized)

	if !roleKnown {
		s.log.Warn().Str("role", string(user.Role)).Int64("user_id", user.ID).Msg("unrecognized role")
		return VerifyResult{Redirect: redirect, User: user}, nil
	}

	now := s.now()
	sess := models.Session{
		ID:          ids.New(),
		User:        user,
		AccessToken: accessToken,
		CreatedAt:   now,
		LastSeenAt:  now,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return VerifyResult{}, fmt.Errorf("persist session: %w", err)
	}

	token, err := security.GenerateSessionToken(s.cfg.JWTSecret, sess.ID, user.ID, string(user.Role), s.cfg.SessionTTL)
	if err != nil {
		return VerifyResult{}, err
	}

	s.log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("login completed")
	return VerifyResult{
		Token:    token,
		User:     user,
		Redirect: redirect,
	}, nil
}

// Logout clears the session and all of its user's cached flags.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Clear(ctx, sessionID)
}

func (s *Service) saveFlow(ctx context.Context, flow Flow) error {
	payload, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("marshal flow: %w", err)
	}
	return s.redis.Set(ctx, flowKey(flow.Phone), payload, s.cfg.FlowTTL).Err()
}

func (s *Service) loadFlow(ctx context.Context, phoneNumber string) (Flow, error) {
	raw, err := s.redis.Get(ctx, flowKey(phoneNumber)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Flow{}, ErrNoFlow
		}
		return Flow{}, err
	}
	var flow Flow
	if err := json.Unmarshal(raw, &flow); err != nil {
		return Flow{}, fmt.Errorf("unmarshal flow: %w", err)
	}
	return flow, nil
}

func (s *Service) dropFlow(ctx context.Context, phoneNumber string) {
	if err := s.redis.Del(ctx, flowKey(phoneNumber)).Err(); err != nil {
		s.log.Warn().Err(err).Msg("drop login flow failed")
	}
}
