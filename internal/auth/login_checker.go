package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// UserIDForToken resolves the user owning the session for the given token.
func (c *LoginChecker) UserIDForToken(ctx context.Context, token string) (string, error) {
	session, err := c.redisClient.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if len(session) == 0 {
		return "", ErrSessionNotFound
	}

	userID := session[fieldUserID]
	if userID == "" {
		return "", ErrSessionNotFound
	}

	createdAtUnix, err := strconv.ParseInt(session[fieldCreatedAt], 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse session created at: %w", err)
	}

	if time.Since(time.Unix(createdAtUnix, 0)) > c.ttl {
		return "", ErrSessionExpired
	}

	return userID, nil
}
