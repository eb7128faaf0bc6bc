package podcore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"podgate/api/internal/config"
	"podgate/api/internal/models"
)

// Error reports a failed upstream call. Op names the remote operation so the
// handler layer can log and surface something more useful than a bare status.
type Error struct {
	Op      string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("podcore: %s failed (%d): %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("podcore: %s failed (%d)", e.Op, e.Status)
}

// Client wraps the podcore REST API, one method per remote operation. Calls
// are fire-once: no retry, no backoff; a failure is reported to the caller,
// who decides whether to re-invoke (OTP resend) or abort.
type Client struct {
	baseURL      string
	serviceToken string
	http         *http.Client
	log          zerolog.Logger
}

func NewClient(cfg config.PodcoreConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		http:         &http.Client{Timeout: cfg.RequestTimeout},
		log:          log,
	}
}

type tokenKey struct{}

// WithToken scopes a request context to a session's upstream access token.
// Calls made without one fall back to the static service token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) bearer(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token
	}
	return c.serviceToken
}

// envelope is podcore's response shape. Older endpoints report status as a
// string, newer ones as a boolean success flag; both are honoured.
type envelope struct {
	Status      string          `json:"status"`
	Success     bool            `json:"success"`
	Message     string          `json:"message"`
	Records     json.RawMessage `json:"records"`
	AccessToken string          `json:"access_token"`
}

func (e envelope) ok() bool {
	return e.Success || e.Status == "success"
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (envelope, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, fmt.Errorf("%s: read response: %w", op, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope{}, fmt.Errorf("%s: decode response: %w", op, err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn().Str("op", op).Int("status", resp.StatusCode).Msg("podcore call failed")
		return envelope{}, &Error{Op: op, Status: resp.StatusCode, Message: env.Message}
	}
	if !env.ok() {
		return envelope{}, &Error{Op: op, Status: resp.StatusCode, Message: env.Message}
	}

	return env, nil
}

func records[T any](op string, env envelope) ([]T, error) {
	if len(env.Records) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(env.Records, &out); err != nil {
		return nil, fmt.Errorf("%s: decode records: %w", op, err)
	}
	return out, nil
}

func firstRecord[T any](op string, env envelope) (T, error) {
	var zero T
	items, err := records[T](op, env)
	if err != nil {
		return zero, err
	}
	if len(items) == 0 {
		return zero, &Error{Op: op, Status: http.StatusOK, Message: "empty record set"}
	}
	return items[0], nil
}

// Ping checks reachability of the upstream. Any HTTP response counts as
// reachable; only a transport failure is reported.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	resp.Body.Close()
	return nil
}

// GenerateOTP asks podcore to send a login code to the phone. The code itself
// travels over SMS; the response body is deliberately ignored beyond the
// success check.
func (c *Client) GenerateOTP(ctx context.Context, userPhone string) error {
	q := url.Values{"user_phone": {userPhone}}
	_, err := c.do(ctx, "generate_otp", http.MethodGet, "otp/generate_otp/", q, nil)
	return err
}

// ValidateOTP exchanges phone+code for the user record and an upstream access
// token.
func (c *Client) ValidateOTP(ctx context.Context, userPhone, otp string) (models.User, string, error) {
	q := url.Values{
		"user_phone": {userPhone},
		"otp_text":   {otp},
	}
	env, err := c.do(ctx, "validate_otp", http.MethodGet, "otp/validate_otp/", q, nil)
	if err != nil {
		return models.User{}, "", err
	}
	user, err := firstRecord[models.User]("validate_otp", env)
	if err != nil {
		return models.User{}, "", err
	}
	return user, env.AccessToken, nil
}

func (c *Client) GetPod(ctx context.Context, podName string) (models.Pod, error) {
	q := url.Values{"pod_name": {podName}}
	env, err := c.do(ctx, "get_pod", http.MethodGet, "pods/", q, nil)
	if err != nil {
		return models.Pod{}, err
	}
	return firstRecord[models.Pod]("get_pod", env)
}

func (c *Client) GetLocation(ctx context.Context, locationID string) (models.Location, error) {
	q := url.Values{"record_id": {locationID}}
	env, err := c.do(ctx, "get_location", http.MethodGet, "locations/", q, nil)
	if err != nil {
		return models.Location{}, err
	}
	return firstRecord[models.Location]("get_location", env)
}

func (c *Client) UserLocations(ctx context.Context, userID int64) ([]models.Location, error) {
	q := url.Values{"user_id": {fmt.Sprintf("%d", userID)}}
	env, err := c.do(ctx, "user_locations", http.MethodGet, "users/locations/", q, nil)
	if err != nil {
		return nil, err
	}
	return records[models.Location]("user_locations", env)
}

func (c *Client) AddUserLocation(ctx context.Context, userID int64, locationID string) error {
	body := map[string]any{
		"user_id":     userID,
		"location_id": locationID,
	}
	_, err := c.do(ctx, "add_user_location", http.MethodPost, "users/locations/", nil, body)
	return err
}

// Reservations fetches the full status-filtered set for one user at one
// location. Podcore exposes no pagination here; filtering and paging happen
// in memory on our side.
func (c *Client) Reservations(ctx context.Context, userPhone, locationID string, status models.ReservationStatus) ([]models.Reservation, error) {
	q := url.Values{
		"phone_num":          {userPhone},
		"location_id":        {locationID},
		"reservation_status": {string(status)},
	}
	env, err := c.do(ctx, "reservations", http.MethodGet, "reservations/", q, nil)
	if err != nil {
		return nil, err
	}
	return records[models.Reservation]("reservations", env)
}

func (c *Client) CreateReservation(ctx context.Context, input models.NewReservation) (models.Reservation, error) {
	env, err := c.do(ctx, "create_reservation", http.MethodPost, "reservations/", nil, input)
	if err != nil {
		return models.Reservation{}, err
	}
	return firstRecord[models.Reservation]("create_reservation", env)
}

func (c *Client) RegisterUser(ctx context.Context, input models.NewUser) (models.User, error) {
	env, err := c.do(ctx, "register_user", http.MethodPost, "users/", nil, input)
	if err != nil {
		return models.User{}, err
	}
	return firstRecord[models.User]("register_user", env)
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, patch models.UserPatch) (models.User, error) {
	path := fmt.Sprintf("users/%d", userID)
	env, err := c.do(ctx, "update_user", http.MethodPatch, path, nil, patch)
	if err != nil {
		return models.User{}, err
	}
	return firstRecord[models.User]("update_user", env)
}

func (c *Client) RemoveUser(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("users/%d", userID)
	_, err := c.do(ctx, "remove_user", http.MethodDelete, path, nil, nil)
	return err
}

func (c *Client) LocationUsers(ctx context.Context, locationID string) ([]models.User, error) {
	q := url.Values{"location_id": {locationID}}
	env, err := c.do(ctx, "location_users", http.MethodGet, "users/", q, nil)
	if err != nil {
		return nil, err
	}
	return records[models.User]("location_users", env)
}

func (c *Client) LocationPods(ctx context.Context, locationID string) ([]models.Pod, error) {
	q := url.Values{"location_id": {locationID}}
	env, err := c.do(ctx, "location_pods", http.MethodGet, "pods/", q, nil)
	if err != nil {
		return nil, err
	}
	return records[models.Pod]("location_pods", env)
}

func (c *Client) LocationReservations(ctx context.Context, locationID string, status models.ReservationStatus) ([]models.Reservation, error) {
	q := url.Values{
		"location_id":        {locationID},
		"reservation_status": {string(status)},
	}
	env, err := c.do(ctx, "location_reservations", http.MethodGet, "reservations/", q, nil)
	if err != nil {
		return nil, err
	}
	return records[models.Reservation]("location_reservations", env)
}

// FreeDoorAvailable reports whether the location has at least one available
// pod door, the precondition for creating a reservation.
func (c *Client) FreeDoorAvailable(ctx context.Context, locationID string) (bool, error) {
	q := url.Values{
		"location_id": {locationID},
		"pod_status":  {string(models.PodStatusAvailable)},
	}
	env, err := c.do(ctx, "free_door", http.MethodGet, "pods/", q, nil)
	if err != nil {
		return false, err
	}
	pods, err := records[models.Pod]("free_door", env)
	if err != nil {
		return false, err
	}
	return len(pods) > 0, nil
}
