package database

import (
	"context"
	"fmt"

	"announcehub/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient 创建一个连接到指定库的Redis客户端
func NewRedisClient(cfg config.RedisConfig, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       db,
	})

	// 验证连接
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis db %d: %w", db, err)
	}

	return client, nil
}
