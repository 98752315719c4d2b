package database

import (
	"context"
	"time"

	"contenthub/internal/config"
	"contenthub/pkg/log"

	"github.com/go-redis/redis/v8"
)

// RDB backs the token blacklist, the setting cache and the Kafka retry counters.
var RDB *redis.Client

// InitRedis connects to Redis and exits if the server does not answer a ping.
func InitRedis(cfg config.RedisConfig) {
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := RDB.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", err)
	}

	log.Info("Redis client connected successfully")
}
