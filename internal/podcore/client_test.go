package podcore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podgate/api/internal/config"
	"podgate/api/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.PodcoreConfig{
		BaseURL:        srv.URL,
		ServiceToken:   "service-token",
		RequestTimeout: 5 * time.Second,
	}, zerolog.Nop())
}

func TestBearerFallsBackToServiceToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, client.GenerateOTP(context.Background(), "9876543210"))
	assert.Equal(t, "Bearer service-token", gotAuth)
}

func TestBearerPrefersSessionToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"status":"success"}`))
	})

	ctx := WithToken(context.Background(), "user-token")
	require.NoError(t, client.GenerateOTP(ctx, "9876543210"))
	assert.Equal(t, "Bearer user-token", gotAuth)
}

func TestGenerateOTPQuery(t *testing.T) {
	var gotPath, gotPhone string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPhone = r.URL.Query().Get("user_phone")
		w.Write([]byte(`{"status":"success","user_otp":"123456"}`))
	})

	require.NoError(t, client.GenerateOTP(context.Background(), "9876543210"))
	assert.Equal(t, "/otp/generate_otp/", gotPath)
	assert.Equal(t, "9876543210", gotPhone)
}

func TestValidateOTPParsesUserAndToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123456", r.URL.Query().Get("otp_text"))
		w.Write([]byte(`{
			"status": "success",
			"access_token": "issued-token",
			"records": [{
				"id": 42,
				"user_name": "Asha Rao",
				"user_phone": "9876543210",
				"user_type": "Customer",
				"user_credit_limit": "500",
				"user_credit_used": "120"
			}]
		}`))
	})

	user, token, err := client.ValidateOTP(context.Background(), "9876543210", "123456")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, models.UserRoleCustomer, user.Role)
	assert.InDelta(t, 380.0, user.AvailableCredit(), 0.001)
}

func TestNonSuccessStatusCarriesOperation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":"error","message":"token expired"}`))
	})

	_, _, err := client.ValidateOTP(context.Background(), "9876543210", "123456")
	require.Error(t, err)

	var upstream *Error
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "validate_otp", upstream.Op)
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Equal(t, "token expired", upstream.Message)
}

func TestRejectedEnvelopeIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"phone not registered"}`))
	})

	err := client.GenerateOTP(context.Background(), "9876543210")
	var upstream *Error
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "phone not registered", upstream.Message)
}

func TestReservationsQueryShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "9876543210", q.Get("phone_num"))
		assert.Equal(t, "LOC-001", q.Get("location_id"))
		assert.Equal(t, "DropPending", q.Get("reservation_status"))
		w.Write([]byte(`{"status":"success","records":[{"id":"r1","reservation_status":"DropPending","pod_name":"POD-A1"}]}`))
	})

	items, err := client.Reservations(context.Background(), "9876543210", "LOC-001", models.StatusDropPending)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "r1", items[0].ID)
	assert.Equal(t, models.StatusDropPending, items[0].Status)
}

func TestFreeDoorAvailable(t *testing.T) {
	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "available", r.URL.Query().Get("pod_status"))
		w.Write([]byte(`{"status":"success","records":[]}`))
	})
	free, err := empty.FreeDoorAvailable(context.Background(), "LOC-001")
	require.NoError(t, err)
	assert.False(t, free)

	occupied := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","records":[{"id":"p1","pod_name":"POD-A1","status":"available"}]}`))
	})
	free, err = occupied.FreeDoorAvailable(context.Background(), "LOC-001")
	require.NoError(t, err)
	assert.True(t, free)
}

func TestUpdateUserPatchPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/users/42", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"status":"success","records":[{"id":42,"user_name":"New Name"}]}`))
	})

	name := "New Name"
	user, err := client.UpdateUser(context.Background(), 42, models.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
}
