package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// secretKey 未配置密钥时在redis中保存的key
const secretKey = "secret_key"

// LoadOrCreateSecret 返回签名密钥
//
// 优先使用配置的密钥；否则读取redis中已保存的密钥，不存在时生成一个。
// 多个实例同时启动时通过SETNX保证使用同一个密钥。
func LoadOrCreateSecret(ctx context.Context, client *redis.Client, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	if err := client.SetNX(ctx, secretKey, hex.EncodeToString(buf), 0).Err(); err != nil {
		return "", fmt.Errorf("store secret: %w", err)
	}

	secret, err := client.Get(ctx, secretKey).Result()
	if err != nil {
		return "", fmt.Errorf("load secret: %w", err)
	}
	return secret, nil
}
