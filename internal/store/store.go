package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound key不存在或已过期
var ErrNotFound = errors.New("store: key not found")

// KeepTTL 写入时保留key原有的过期时间
const KeepTTL time.Duration = -1

// Store 以字符串为key的文档集合
type Store interface {
	// Get 读取单个key，不存在时返回ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// GetMany 批量读取，不存在的key对应nil
	GetMany(ctx context.Context, keys []string) ([][]byte, error)
	// Set 写入，ttl为0表示永不过期，KeepTTL表示保留原过期时间
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX 仅当key不存在时写入，返回是否写入成功
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	// Keys 按glob模式枚举key
	Keys(ctx context.Context, pattern string) ([]string, error)
	Delete(ctx context.Context, keys ...string) error
}
