package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"announcehub/internal/metrics"
	"announcehub/internal/model"
	"announcehub/internal/repository"
	"announcehub/internal/store"
	"announcehub/pkg/logger"
)

// 缓存key
const (
	keyRaw         = "raw"
	keyAll         = "all"
	keyTagCount    = "tag_count"
	keyTagSearchPx = "tags:"
)

// Source 缓存的数据来源，返回按id排序的全部公告
type Source interface {
	Raw(ctx context.Context) ([]model.Announcement, error)
}

// AnnouncementCache 公告读缓存
//
// 所有视图都由同一份原始列表计算，原始列表本身也被缓存，
// 缓存有效期内的读取不会再次扫描公告存储。
type AnnouncementCache struct {
	store  store.Store
	source Source
	ttl    time.Duration
	logger *logger.Logger

	// 每次InvalidateAll加一，加载期间被清空过的结果不写回缓存
	generation atomic.Uint64
}

// NewAnnouncementCache 创建公告缓存实例
func NewAnnouncementCache(s store.Store, source Source, ttl time.Duration, logger *logger.Logger) *AnnouncementCache {
	return &AnnouncementCache{store: s, source: source, ttl: ttl, logger: logger}
}

// getOrLoad 读取缓存，未命中时加载并写入。缓存存储故障不影响读取结果
func getOrLoad[T any](ctx context.Context, c *AnnouncementCache, view, key string, load func(context.Context) (T, error)) (T, error) {
	generation := c.generation.Load()
	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			metrics.RecordCacheHit(view)
			return v, nil
		}
		c.logger.Warn("缓存数据无法解析，重新加载", "key", key)
	case !errors.Is(err, store.ErrNotFound):
		metrics.RecordCacheError("get")
		c.logger.Warn("读取缓存失败，直接查询公告存储", "key", key, err)
	}
	metrics.RecordCacheMiss(view)

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if c.generation.Load() != generation {
		c.logger.Debug("加载期间缓存已失效，不写回", "key", key)
		return v, nil
	}
	if data, err := json.Marshal(v); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			metrics.RecordCacheError("set")
			c.logger.Warn("写入缓存失败", "key", key, err)
		}
	}
	return v, nil
}

func (c *AnnouncementCache) raw(ctx context.Context) ([]model.Announcement, error) {
	return getOrLoad(ctx, c, "raw", keyRaw, c.source.Raw)
}

// ListAll 获取全部公告，带前后ID
func (c *AnnouncementCache) ListAll(ctx context.Context) ([]model.LinkedAnnouncement, error) {
	return getOrLoad(ctx, c, "all", keyAll, func(ctx context.Context) ([]model.LinkedAnnouncement, error) {
		list, err := c.raw(ctx)
		if err != nil {
			return nil, err
		}
		return repository.LinkNeighbors(list), nil
	})
}

// SearchByTags 按标签筛选，缓存key由排序去重后的标签生成
func (c *AnnouncementCache) SearchByTags(ctx context.Context, tags []string) ([]model.LinkedAnnouncement, error) {
	query := repository.SearchTags(tags)
	if len(query) == 0 {
		return c.ListAll(ctx)
	}
	encoded, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encode tag query: %w", err)
	}

	return getOrLoad(ctx, c, "tags", keyTagSearchPx+string(encoded), func(ctx context.Context) ([]model.LinkedAnnouncement, error) {
		list, err := c.raw(ctx)
		if err != nil {
			return nil, err
		}
		return repository.LinkNeighbors(repository.FilterByTags(list, query)), nil
	})
}

// TagCounts 标签统计
func (c *AnnouncementCache) TagCounts(ctx context.Context) (map[string]int, error) {
	return getOrLoad(ctx, c, "tag_count", keyTagCount, func(ctx context.Context) (map[string]int, error) {
		list, err := c.raw(ctx)
		if err != nil {
			return nil, err
		}
		return repository.CountTags(list), nil
	})
}

// Announcement 从缓存的公告列表中取单条公告，带前后ID
func (c *AnnouncementCache) Announcement(ctx context.Context, id int) (*model.LinkedAnnouncement, error) {
	list, err := c.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: announcement %d", repository.ErrNotFound, id)
}

// InvalidateAll 清空缓存命名空间下的全部key
func (c *AnnouncementCache) InvalidateAll(ctx context.Context) error {
	c.generation.Add(1)
	keys, err := c.store.Keys(ctx, "*")
	if err != nil {
		return fmt.Errorf("list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.store.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete cache keys: %w", err)
	}
	c.logger.Debug("公告缓存已清空", "keys", len(keys))
	return nil
}
