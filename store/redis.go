package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	. "github.com/wrenhq/wren/utils/log"
)

// unreadCacheTTL bounds staleness if an invalidation is ever missed.
const unreadCacheTTL = 10 * time.Minute

// NewRedisClient builds a client from the REDIS_* environment. Returns nil
// when REDIS_HOST is unset so the store runs cache-less in development.
func NewRedisClient() *redis.Client {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
}

func unreadKey(viewerID string) string {
	return "unread_count_" + viewerID
}

// cachedUnreadCount returns (count, true) on a cache hit. Cache errors are
// logged and treated as misses, the counter is always recomputable.
func (s *MongoStore) cachedUnreadCount(ctx context.Context, viewerID string) (int64, bool) {
	if s.redis == nil {
		return 0, false
	}
	val, err := s.redis.Get(ctx, unreadKey(viewerID)).Result()
	if err != nil {
		if err != redis.Nil {
			Log.Warn("unread cache read failed: ", err)
		}
		return 0, false
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (s *MongoStore) setUnreadCount(ctx context.Context, viewerID string, count int64) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Set(ctx, unreadKey(viewerID), count, unreadCacheTTL).Err(); err != nil {
		Log.Warn("unread cache write failed: ", err)
	}
}

// invalidateUnreadCount drops the cached counter after any write that can
// change it (message sent to the viewer, conversation opened).
func (s *MongoStore) invalidateUnreadCount(ctx context.Context, viewerID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, unreadKey(viewerID)).Err(); err != nil {
		Log.Warn("unread cache invalidation failed: ", err)
	}
}
