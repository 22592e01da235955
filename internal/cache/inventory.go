package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	PostListKeyPrefix = "posts:%s"
	AdminStatsKey     = "admin:stats"
)

// PostListPageSize is the feed page size served through the cache.
// Only the first page at this size is cached; other pages hit the
// database directly.
const PostListPageSize = 20

const (
	UserTTL       = 5 * time.Minute
	PostTTL       = 10 * time.Minute
	PostListTTL   = 1 * time.Minute
	AdminStatsTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func PostListKey(kind string) string {
	return fmt.Sprintf(PostListKeyPrefix, kind)
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
	Invalidate(ctx, PostListKey("LOST"))
	Invalidate(ctx, PostListKey("FOUND"))
	Invalidate(ctx, AdminStatsKey)
}
