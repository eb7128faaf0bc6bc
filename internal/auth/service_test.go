package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podgate/api/internal/config"
	"podgate/api/internal/phone"
	"podgate/api/internal/podcore"
	"podgate/api/internal/security"
	"podgate/api/internal/session"
)

// parseTestToken extracts the session id minted with the test secret.
func parseTestToken(token string) (string, error) {
	claims, err := security.ParseSessionToken(token, "test-secret")
	if err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

const validateSuccess = `{
	"status": "success",
	"access_token": "upstream-token",
	"records": [{
		"id": 42,
		"user_name": "Asha Rao",
		"user_phone": "9876543210",
		"user_type": "%s"
	}]
}`

func newTestService(t *testing.T, upstream http.HandlerFunc) (*Service, *session.Store) {
	t.Helper()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.AuthConfig{
		JWTSecret:      "test-secret",
		SessionTTL:     time.Hour,
		FlowTTL:        10 * time.Minute,
		ResendCooldown: 30 * time.Second,
	}

	client := podcore.NewClient(config.PodcoreConfig{
		BaseURL:        srv.URL,
		ServiceToken:   "service-token",
		RequestTimeout: 5 * time.Second,
	}, zerolog.Nop())

	sessions := session.NewStore(redisClient, cfg.SessionTTL)
	return NewService(client, sessions, redisClient, cfg, zerolog.Nop()), sessions
}

func otpUpstream(t *testing.T, role string, acceptOTP string) (http.HandlerFunc, *int32) {
	var generateCalls int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/otp/generate_otp/":
			atomic.AddInt32(&generateCalls, 1)
			w.Write([]byte(`{"status":"success","user_otp":"123456"}`))
		case "/otp/validate_otp/":
			if r.URL.Query().Get("otp_text") != acceptOTP {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"status":"error","message":"Invalid OTP"}`))
				return
			}
			fmt.Fprintf(w, validateSuccess, role)
		default:
			t.Errorf("unexpected upstream path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
	return handler, &generateCalls
}

func TestStartLogin(t *testing.T) {
	handler, calls := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	result, err := svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "******3210", result.MaskedPhone)
	assert.Equal(t, 30*time.Second, result.ResendAfter)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestStartLoginRejectsShortPhone(t *testing.T) {
	handler, calls := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	_, err := svc.StartLogin(context.Background(), "12345")
	assert.ErrorIs(t, err, phone.ErrInvalid)
	// Validation happens before any network call.
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestStartLoginTwiceRestartsCountdown(t *testing.T) {
	handler, calls := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	_, err := svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)
	_, err = svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestResendGate(t *testing.T) {
	handler, calls := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	base := time.Now()
	svc.now = func() time.Time { return base }

	_, err := svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)

	// Inside the countdown: rejected without touching podcore.
	_, err = svc.Resend(context.Background(), "9876543210")
	assert.ErrorIs(t, err, ErrResendTooSoon)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	// Countdown elapsed: resend goes through and restarts the clock.
	svc.now = func() time.Time { return base.Add(30 * time.Second) }
	result, err := svc.Resend(context.Background(), "9876543210")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, result.ResendAfter)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestResendWithoutFlow(t *testing.T) {
	handler, _ := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	_, err := svc.Resend(context.Background(), "9876543210")
	assert.ErrorIs(t, err, ErrNoFlow)
}

func TestVerifyOTPCustomer(t *testing.T) {
	handler, _ := otpUpstream(t, "Customer", "123456")
	svc, sessions := newTestService(t, handler)

	_, err := svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)

	result, err := svc.VerifyOTP(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "/customer-dashboard", result.Redirect)
	assert.Equal(t, int64(42), result.User.ID)

	// The returned user record is persisted in the session store.
	sessionID, err := parseTestToken(result.Token)
	require.NoError(t, err)
	sess, err := sessions.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", sess.AccessToken)
	assert.Equal(t, "Asha Rao", sess.User.Name)
}

func TestVerifyOTPRedirectsByRole(t *testing.T) {
	tests := []struct {
		role     string
		redirect string
	}{
		{"Customer", "/customer-dashboard"},
		{"SiteAdmin", "/site-admin-dashboard"},
		{"SiteSecurity", "/site-security-dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			handler, _ := otpUpstream(t, tt.role, "123456")
			svc, _ := newTestService(t, handler)

			_, err := svc.StartLogin(context.Background(), "9876543210")
			require.NoError(t, err)

			result, err := svc.VerifyOTP(context.Background(), "9876543210", "123456")
			require.NoError(t, err)
			assert.Equal(t, tt.redirect, result.Redirect)
			assert.NotEmpty(t, result.Token)
		})
	}
}

func TestVerifyOTPUnrecognizedRole(t *testing.T) {
	handler, _ := otpUpstream(t, "Courier", "123456")
	svc, _ := newTestService(t, handler)

	_, err := svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)

	result, err := svc.VerifyOTP(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.Empty(t, result.Token)
	assert.Equal(t, "/login", result.Redirect)
}

func TestVerifyOTPWrongCodeKeepsFlow(t *testing.T) {
	handler, _ := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	_, err := svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)

	_, err = svc.VerifyOTP(context.Background(), "9876543210", "654321")
	require.Error(t, err)

	// The flow survives the rejection: the right code still works.
	result, err := svc.VerifyOTP(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestVerifyOTPValidatesFormatFirst(t *testing.T) {
	handler, _ := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	_, err := svc.StartLogin(context.Background(), "9876543210")
	require.NoError(t, err)

	_, err = svc.VerifyOTP(context.Background(), "9876543210", "12345")
	assert.ErrorIs(t, err, ErrOTPLength)
	_, err = svc.VerifyOTP(context.Background(), "9876543210", "12345a")
	assert.ErrorIs(t, err, ErrOTPLength)
}

func TestVerifyOTPWithoutFlow(t *testing.T) {
	handler, _ := otpUpstream(t, "Customer", "123456")
	svc, _ := newTestService(t, handler)

	_, err := svc.VerifyOTP(context.Background(), "9876543210", "123456")
	assert.ErrorIs(t, err, ErrNoFlow)
}
