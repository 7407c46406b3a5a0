package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const SessionPrefix = "session:"

var ErrSessionNotFound = errors.New("session not found")

// Session is what the store keeps per logged-in browser.
type Session struct {
	AccountID uint      `json:"account_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps login sessions in redis with a sliding TTL.
type SessionStore struct {
	helper *CacheHelper
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		helper: NewCacheHelper(client, SessionPrefix),
		ttl:    ttl,
	}
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create starts a session and returns its opaque id.
func (s *SessionStore) Create(ctx context.Context, accountID uint) (string, error) {
	id := uuid.NewString()
	sess := Session{AccountID: accountID, CreatedAt: time.Now().UTC()}
	if err := s.helper.Set(ctx, id, sess, s.ttl); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// Get loads a session and extends its lifetime.
func (s *SessionStore) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	var sess Session
	if err := s.helper.Get(ctx, id, &sess); err != nil {
		if errors.Is(err, ErrCacheNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if err := s.helper.Expire(ctx, id, s.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to extend session", "error", err)
	}
	return &sess, nil
}

// Delete ends a session. Unknown ids are not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.helper.Delete(ctx, id)
}
