package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"clinic-engage/internal/config"
)

// Rdb is nil when Redis is unreachable; callers must treat cache
// operations as best effort.
var Rdb *redis.Client

// InitRedis connects to Redis and pings it. A failed connection is
// logged and leaves Rdb nil so the rest of the app keeps working.
func InitRedis(cfg *config.Config) {
	var client *redis.Client

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Invalid REDIS_URL, running without cache: %v", err)
			return
		}
		client = redis.NewClient(opt)
	} else {
		db, _ := strconv.Atoi(cfg.RedisDB)
		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       db,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
		return
	}

	Rdb = client
	log.Println("Redis connected")
}

func unreadKey(waID string) string {
	return "unread:" + waID
}

// IncrUnread bumps the unread counter for a conversation.
func IncrUnread(ctx context.Context, waID string) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Incr(ctx, unreadKey(waID)).Err(); err != nil {
		log.Printf("Failed to incr unread for %s: %v", waID, err)
	}
}

// ResetUnread clears the unread counter, used when an agent opens the chat.
func ResetUnread(ctx context.Context, waID string) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Del(ctx, unreadKey(waID)).Err(); err != nil {
		log.Printf("Failed to reset unread for %s: %v", waID, err)
	}
}

// GetUnread returns the unread counter, 0 when missing or cache is down.
func GetUnread(ctx context.Context, waID string) int64 {
	if Rdb == nil {
		return 0
	}
	n, err := Rdb.Get(ctx, unreadKey(waID)).Int64()
	if err != nil {
		return 0
	}
	return n
}

const zohoTokenKey = "zoho:access_token"

// SetZohoToken mirrors the CRM access token so restarts and sibling
// processes reuse it instead of burning a refresh grant.
func SetZohoToken(ctx context.Context, token string, ttl time.Duration) {
	if Rdb == nil || ttl <= 0 {
		return
	}
	if err := Rdb.Set(ctx, zohoTokenKey, token, ttl).Err(); err != nil {
		log.Printf("Failed to mirror zoho token: %v", err)
	}
}

// GetZohoToken returns the mirrored token and its remaining lifetime.
func GetZohoToken(ctx context.Context) (string, time.Duration, bool) {
	if Rdb == nil {
		return "", 0, false
	}
	token, err := Rdb.Get(ctx, zohoTokenKey).Result()
	if err != nil || token == "" {
		return "", 0, false
	}
	ttl, err := Rdb.TTL(ctx, zohoTokenKey).Result()
	if err != nil || ttl <= 0 {
		return "", 0, false
	}
	return token, ttl, true
}

// DeleteZohoToken drops the mirror after the CRM rejects the token.
func DeleteZohoToken(ctx context.Context) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Del(ctx, zohoTokenKey).Err(); err != nil {
		log.Printf("Failed to drop zoho token mirror: %v", err)
	}
}
