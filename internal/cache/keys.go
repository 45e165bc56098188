package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	QuestionKeyPrefix    = "question:%d"
	UnreadCountKeyPrefix = "notifications:unread:%d"
	UserKeyPrefix        = "user:%d"
	UserStatusKeyPrefix  = "user:%d:status"
	BlacklistKeyPrefix   = "blacklist:%s"
)

const (
	QuestionTTL    = 2 * time.Minute
	UnreadCountTTL = time.Minute
	UserTTL        = 5 * time.Minute
	UserStatusTTL  = time.Minute
)

func QuestionKey(questionID uint) string {
	return fmt.Sprintf(QuestionKeyPrefix, questionID)
}

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadCountKeyPrefix, userID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserStatusKey(userID uint) string {
	return fmt.Sprintf(UserStatusKeyPrefix, userID)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateQuestion(ctx context.Context, questionID uint) {
	Invalidate(ctx, QuestionKey(questionID))
}

func InvalidateUnreadCount(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadCountKey(userID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID), UserStatusKey(userID))
}

// RevokeToken blacklists a token id until its natural expiry.
func RevokeToken(ctx context.Context, jti string, until time.Time) error {
	if client == nil || jti == "" {
		return nil
	}
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return client.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether jti was blacklisted. Redis errors fail open.
func IsRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, BlacklistKey(jti)).Result()
	return err == nil && n > 0
}
