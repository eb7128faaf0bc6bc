package location

import (
	"context"

	"github.com/rs/zerolog"

	"podgate/api/internal/models"
	"podgate/api/internal/podcore"
	"podgate/api/internal/session"
)

// Resolver turns the pod identifier carried on an entry URL into the session's
// location context, and decides when to offer "add this location to your
// account".
type Resolver struct {
	podcore  *podcore.Client
	sessions *session.Store
	log      zerolog.Logger
}

func NewResolver(client *podcore.Client, sessions *session.Store, log zerolog.Logger) *Resolver {
	return &Resolver{podcore: client, sessions: sessions, log: log}
}

type Resolved struct {
	Pod      models.Pod      `json:"pod"`
	Location models.Location `json:"location"`
}

// Resolve chains pod -> location and persists both onto the session. Each step
// depends on the previous one, so the calls are sequential; any failure leaves
// the session's location context unchanged and the caller degrades to an
// empty-result view.
func (r *Resolver) Resolve(ctx context.Context, sessionID, podName string) (Resolved, error) {
	pod, err := r.podcore.GetPod(ctx, podName)
	if err != nil {
		return Resolved{}, err
	}

	loc, err := r.podcore.GetLocation(ctx, pod.LocationID)
	if err != nil {
		return Resolved{}, err
	}

	if err := r.sessions.SetLocation(ctx, sessionID, loc.ID, loc.Name, pod.Name); err != nil {
		return Resolved{}, err
	}

	r.log.Debug().Str("pod", pod.Name).Str("location_id", loc.ID).Msg("location resolved")
	return Resolved{Pod: pod, Location: loc}, nil
}

// ShouldPrompt reports whether the user lacks a saved association with the
// current location and has not yet been offered one. Errors from the lookup
// suppress the prompt rather than surfacing; the popup is best-effort.
func (r *Resolver) ShouldPrompt(ctx context.Context, sess models.Session) bool {
	if sess.LocationID == "" {
		return false
	}

	shown, err := r.sessions.PromptShown(ctx, sess.User.ID, sess.LocationID)
	if err != nil || shown {
		return false
	}

	locations, err := r.podcore.UserLocations(podcore.WithToken(ctx, sess.AccessToken), sess.User.ID)
	if err != nil {
		r.log.Debug().Err(err).Msg("user locations lookup failed")
		return false
	}
	for _, loc := range locations {
		if loc.ID == sess.LocationID {
			return false
		}
	}
	return true
}

// AckPrompt marks the prompt shown for this user-location pair so it is never
// offered again, whether or not the user accepted.
func (r *Resolver) AckPrompt(ctx context.Context, sess models.Session) error {
	if sess.LocationID == "" {
		return nil
	}
	return r.sessions.MarkPromptShown(ctx, sess.User.ID, sess.LocationID)
}

// Associate saves the current location to the user's account upstream.
func (r *Resolver) Associate(ctx context.Context, sess models.Session) error {
	if sess.LocationID == "" {
		return nil
	}
	return r.podcore.AddUserLocation(podcore.WithToken(ctx, sess.AccessToken), sess.User.ID, sess.LocationID)
}
