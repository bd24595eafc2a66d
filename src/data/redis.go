package data

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

const streamApplications = "charbot.applications"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishApplicationEvent appends an application lifecycle event (submitted,
// approved, rejected) to the shared stream for external consumers.
func PublishApplicationEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamApplications,
		Values: payload,
	}).Result()
	return err
}
