package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

// InvalidateDashboardCache drops the cached dashboard pages that render
// reservation state. Failures are logged only; a stale page must not block
// the mutation that triggered the invalidation.
func InvalidateDashboardCache(reservationIds ...uint) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	keys := []string{
		"page:/dashboard/reservations",
		"page:/dashboard/reservations/calendar",
		"page:/dashboard/reservations/list",
	}
	for _, id := range reservationIds {
		keys = append(keys, fmt.Sprintf("page:/dashboard/reservations/%d", id))
	}
	if err := rd.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("[redis] Error invalidating dashboard cache: %s\n", err.Error())
	}
}
