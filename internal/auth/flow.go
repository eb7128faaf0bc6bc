package auth

import (
	"errors"
	"time"

	"podgate/api/internal/phone"
)

// State is the login flow position. The machine is Phone -> AwaitingOTP ->
// Authenticated, with Failed as the terminal for an unrecognized role. A
// rejected OTP is not a state change: the flow stays in AwaitingOTP and the
// caller may retry.
type State string

const (
	StatePhone         State = "phone"
	StateAwaitingOTP   State = "awaiting_otp"
	StateAuthenticated State = "authenticated"
	StateFailed        State = "failed"
)

var (
	ErrOTPLength     = errors.New("enter the 6-digit code sent to your phone")
	ErrResendTooSoon = errors.New("wait for the countdown before resending")
	ErrFlowState     = errors.New("login flow is not awaiting a code")
)

// Flow is one phone number's progress through login. It is a plain value;
// transitions are pure functions of (flow, clock) so every edge case is
// testable without redis or HTTP.
type Flow struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Phone     string    `json:"phone"`
	ResendAt  time.Time `json:"resend_at"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// Begin validates the raw phone input and returns a flow in AwaitingOTP with
// the resend countdown started. Applied only after the OTP-generation call
// succeeded; a failed call leaves no flow behind.
func Begin(id, rawPhone string, now time.Time, cooldown time.Duration) (Flow, error) {
	normalized, err := phone.Normalize(rawPhone)
	if err != nil {
		return Flow{}, err
	}
	return Flow{
		ID:        id,
		State:     StateAwaitingOTP,
		Phone:     normalized,
		ResendAt:  now.Add(cooldown),
		CreatedAt: now,
	}, nil
}

// CanResend reports whether the countdown has elapsed.
func (f Flow) CanResend(now time.Time) bool {
	return f.State == StateAwaitingOTP && !now.Before(f.ResendAt)
}

// Resend restarts the countdown. Invalid before the countdown reaches zero.
func (f Flow) Resend(now time.Time, cooldown time.Duration) (Flow, error) {
	if f.State != StateAwaitingOTP {
		return f, ErrFlowState
	}
	if now.Before(f.ResendAt) {
		return f, ErrResendTooSoon
	}
	f.ResendAt = now.Add(cooldown)
	return f, nil
}

// RecordAttempt counts a submitted code, accepted or not.
func (f Flow) RecordAttempt() Flow {
	f.Attempts++
	return f
}

// Complete moves the flow to its terminal state for the validated role.
// An unrecognized role terminates in Failed and the caller routes back to
// the phone step.
func (f Flow) Complete(roleKnown bool) (Flow, error) {
	if f.State != StateAwaitingOTP {
		return f, ErrFlowState
	}
	if roleKnown {
		f.State = StateAuthenticated
	} else {
		f.State = StateFailed
	}
	return f, nil
}

// ValidateOTP enforces the exactly-six-digits input rule before any network
// call is made.
func ValidateOTP(code string) error {
	if len(code) != 6 {
		return ErrOTPLength
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return ErrOTPLength
		}
	}
	return nil
}
