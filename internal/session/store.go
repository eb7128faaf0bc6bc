package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"podgate/api/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Store keeps the authenticated browser context in redis: user record,
// upstream access token, resolved location, and the per-(user,location)
// "new location prompt shown" flags. Every write is synchronous; a Save that
// returns nil is durable. There is no local check of upstream token expiry;
// a dead token surfaces as a failed podcore call on next use.
type Store struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{redis: client, ttl: ttl}
}

func sessionKey(id string) string {
	return "session:" + id
}

func promptKey(userID int64, locationID string) string {
	return fmt.Sprintf("prompt_shown:%d:%s", userID, locationID)
}

func userPromptPattern(userID int64) string {
	return fmt.Sprintf("prompt_shown:%d:*", userID)
}

func (s *Store) Save(ctx context.Context, sess models.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.redis.Set(ctx, sessionKey(sess.ID), payload, s.ttl).Err()
}

func (s *Store) Get(ctx context.Context, id string) (models.Session, error) {
	raw, err := s.redis.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrNotFound
		}
		return models.Session{}, err
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return models.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return sess, nil
}

// Touch refreshes the session TTL and last-seen timestamp.
func (s *Store) Touch(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.LastSeenAt = time.Now()
	return s.Save(ctx, sess)
}

// SetLocation records the resolved location context on the session.
func (s *Store) SetLocation(ctx context.Context, id, locationID, locationName, podName string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.LocationID = locationID
	sess.LocationName = locationName
	sess.PodName = podName
	return s.Save(ctx, sess)
}

// SetUser replaces the cached user record, keeping the rest of the session.
// Called after a confirmed profile update so the next render reflects it.
func (s *Store) SetUser(ctx context.Context, id string, user models.User) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.User = user
	return s.Save(ctx, sess)
}

// Clear removes the session and every prompt flag belonging to its user.
// Logout is a broad reset: unrelated cached flags go with it.
func (s *Store) Clear(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	keys := []string{sessionKey(id)}
	iter := s.redis.Scan(ctx, 0, userPromptPattern(sess.User.ID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	return s.redis.Del(ctx, keys...).Err()
}

// MarkPromptShown remembers that the "new location detected" prompt was shown
// to this user for this location, so it is offered at most once per pair.
func (s *Store) MarkPromptShown(ctx context.Context, userID int64, locationID string) error {
	return s.redis.Set(ctx, promptKey(userID, locationID), "1", 0).Err()
}

func (s *Store) PromptShown(ctx context.Context, userID int64, locationID string) (bool, error) {
	n, err := s.redis.Exists(ctx, promptKey(userID, locationID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
