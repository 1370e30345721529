package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix = "user:%d"
	postKeyPrefix = "post:%d"
	statsKey      = "stats:engagement"
)

// TTLs per entity. Posts are invalidated on every counter mutation, so a
// longer TTL is safe.
const (
	UserTTL  = 5 * time.Minute
	PostTTL  = 30 * time.Minute
	StatsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

func StatsKey() string {
	return statsKey
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

func InvalidateStats(ctx context.Context) {
	Invalidate(ctx, statsKey)
}
