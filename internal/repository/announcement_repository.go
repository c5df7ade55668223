package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"k8s.io/apimachinery/pkg/util/sets"

	"announcehub/internal/model"
	"announcehub/internal/store"
	"announcehub/pkg/idalloc"
	"announcehub/pkg/logger"
)

const (
	announcementKeyPrefix = "announcement:"
	// 并发创建时id可能被抢占，重新分配的次数上限
	maxClaimAttempts = 3
)

// AnnouncementRepository 公告存储库
type AnnouncementRepository struct {
	store   store.Store
	builder *contentBuilder
	logger  *logger.Logger
}

// NewAnnouncementRepository 创建公告存储库实例
func NewAnnouncementRepository(s store.Store, maxTags int, logger *logger.Logger) *AnnouncementRepository {
	return &AnnouncementRepository{
		store:   s,
		builder: &contentBuilder{maxTags: maxTags, logger: logger, now: time.Now},
		logger:  logger,
	}
}

func announcementKey(id int) string {
	return announcementKeyPrefix + strconv.Itoa(id)
}

// parseAnnouncementKey 解析key中的公告id，支持带后缀的旧格式key
func parseAnnouncementKey(key string) (id int, canonical bool, ok bool) {
	rest, found := strings.CutPrefix(key, announcementKeyPrefix)
	if !found {
		return 0, false, false
	}
	idPart, _, hasSuffix := strings.Cut(rest, ":")
	id, err := strconv.Atoi(idPart)
	if err != nil || id < 0 {
		return 0, false, false
	}
	return id, !hasSuffix, true
}

// Create 创建公告，返回分配的id
func (r *AnnouncementRepository) Create(ctx context.Context, input model.Fields) (int, error) {
	if err := r.builder.checkRequired(input); err != nil {
		return 0, err
	}
	content, ttl, err := r.buildAnnouncement(input, nil)
	if err != nil {
		return 0, err
	}

	record := model.Announcement{Content: content, PublishedAt: r.builder.timestamp()}
	for attempt := 1; attempt <= maxClaimAttempts; attempt++ {
		used, err := r.usedIDs(ctx)
		if err != nil {
			return 0, err
		}
		record.ID = idalloc.Next(used)

		data, err := json.Marshal(record)
		if err != nil {
			return 0, fmt.Errorf("marshal announcement: %w", err)
		}
		claimed, err := r.store.SetNX(ctx, announcementKey(record.ID), data, ttl)
		if err != nil {
			return 0, upstreamError("claim announcement id", err)
		}
		if claimed {
			r.logger.Info("公告已创建", "id", record.ID, "title", record.Title)
			return record.ID, nil
		}
		r.logger.Warn("公告id已被占用，重新分配", "id", record.ID, "attempt", attempt)
	}
	return 0, fmt.Errorf("%w: could not claim an announcement id after %d attempts", ErrConflict, maxClaimAttempts)
}

// Update 整体替换公告内容，未提供或类型错误的字段沿用旧值
func (r *AnnouncementRepository) Update(ctx context.Context, id int, input model.Fields) error {
	origin, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	content, ttl, err := r.buildAnnouncement(input, origin.Content.Fields())
	if err != nil {
		return err
	}

	record := model.Announcement{ID: id, Content: content, PublishedAt: r.builder.timestamp()}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal announcement: %w", err)
	}
	if err := r.store.Set(ctx, announcementKey(id), data, ttl); err != nil {
		return upstreamError("update announcement", err)
	}
	return nil
}

// buildAnnouncement 公告的过期时间必须在未来，剩余时间作为key的TTL
func (r *AnnouncementRepository) buildAnnouncement(input, origin model.Fields) (model.Content, time.Duration, error) {
	content, ttl, err := r.builder.build(input, origin)
	if err != nil {
		return model.Content{}, 0, err
	}
	if content.ExpireTime != nil && ttl <= 0 {
		return model.Content{}, 0, validationError("expireTime %s is not in the future", *content.ExpireTime)
	}
	return content, ttl, nil
}

// Delete 删除公告
//
// 同一id对应多个key时说明存储中存在其他写入方留下的记录，非强制删除时拒绝。
func (r *AnnouncementRepository) Delete(ctx context.Context, id int, force bool) error {
	keys, err := r.keysForID(ctx, id)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: announcement %d", ErrNotFound, id)
	}
	if len(keys) > 1 && !force {
		return fmt.Errorf("%w: announcement %d has %d records, use force to delete all", ErrConflict, id, len(keys))
	}
	if err := r.store.Delete(ctx, keys...); err != nil {
		return upstreamError("delete announcement", err)
	}
	r.logger.Info("公告已删除", "id", id, "keys", len(keys))
	return nil
}

func (r *AnnouncementRepository) keysForID(ctx context.Context, id int) ([]string, error) {
	var keys []string
	key := announcementKey(id)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return nil, upstreamError("lookup announcement", err)
	}
	if exists {
		keys = append(keys, key)
	}
	suffixed, err := r.store.Keys(ctx, key+":*")
	if err != nil {
		return nil, upstreamError("lookup announcement", err)
	}
	return append(keys, suffixed...), nil
}

// GetByID 根据ID获取公告，不含前后ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int) (*model.Announcement, error) {
	data, err := r.store.Get(ctx, announcementKey(id))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: announcement %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, upstreamError("get announcement", err)
	}
	var a model.Announcement
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, upstreamError("decode announcement", err)
	}
	return &a, nil
}

func (r *AnnouncementRepository) usedIDs(ctx context.Context) ([]int, error) {
	keys, err := r.store.Keys(ctx, announcementKeyPrefix+"*")
	if err != nil {
		return nil, upstreamError("list announcement keys", err)
	}
	ids := make([]int, 0, len(keys))
	for _, k := range keys {
		if id, _, ok := parseAnnouncementKey(k); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Raw 读取全部公告，按id升序，不计算前后ID
func (r *AnnouncementRepository) Raw(ctx context.Context) ([]model.Announcement, error) {
	keys, err := r.store.Keys(ctx, announcementKeyPrefix+"*")
	if err != nil {
		return nil, upstreamError("list announcement keys", err)
	}
	canonical := keys[:0]
	for _, k := range keys {
		if _, ok, _ := parseAnnouncementKey(k); ok {
			canonical = append(canonical, k)
		}
	}
	if len(canonical) == 0 {
		return []model.Announcement{}, nil
	}

	values, err := r.store.GetMany(ctx, canonical)
	if err != nil {
		return nil, upstreamError("read announcements", err)
	}
	list := make([]model.Announcement, 0, len(values))
	for i, data := range values {
		// 枚举和读取之间过期的key
		if data == nil {
			continue
		}
		var a model.Announcement
		if err := json.Unmarshal(data, &a); err != nil {
			r.logger.Warn("跳过无法解析的公告", "key", canonical[i], err)
			continue
		}
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// ListAll 获取全部公告，按id升序并带前后ID
func (r *AnnouncementRepository) ListAll(ctx context.Context) ([]model.LinkedAnnouncement, error) {
	list, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return LinkNeighbors(list), nil
}

// SearchByTags 按标签筛选公告，前后ID相对筛选结果计算
func (r *AnnouncementRepository) SearchByTags(ctx context.Context, tags []string) ([]model.LinkedAnnouncement, error) {
	list, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return LinkNeighbors(FilterByTags(list, tags)), nil
}

// TagCounts 统计每个标签的公告数量
func (r *AnnouncementRepository) TagCounts(ctx context.Context) (map[string]int, error) {
	list, err := r.Raw(ctx)
	if err != nil {
		return nil, err
	}
	return CountTags(list), nil
}

// LinkNeighbors 为已排序的公告计算前后ID
func LinkNeighbors(list []model.Announcement) []model.LinkedAnnouncement {
	linked := make([]model.LinkedAnnouncement, len(list))
	for i := range list {
		linked[i].Announcement = list[i]
		if i > 0 {
			last := list[i-1].ID
			linked[i].LastID = &last
		}
		if i < len(list)-1 {
			next := list[i+1].ID
			linked[i].NextID = &next
		}
	}
	return linked
}

// SearchTags 按存储标签的规则规范化查询标签，返回排序后的集合
func SearchTags(tags []string) []string {
	return sets.List(sets.New(model.NormalizeTags(tags, -1)...))
}

// FilterByTags 标签筛选
//
// 没有标签时返回全部；一个标签时返回包含该标签的公告；
// 多个标签时返回不包含其中任何一个标签的公告。
func FilterByTags(list []model.Announcement, tags []string) []model.Announcement {
	query := SearchTags(tags)
	out := make([]model.Announcement, 0, len(list))
	switch len(query) {
	case 0:
		out = append(out, list...)
	case 1:
		for i := range list {
			if list[i].HasTag(query[0]) {
				out = append(out, list[i])
			}
		}
	default:
		for i := range list {
			if !hasAnyTag(&list[i], query) {
				out = append(out, list[i])
			}
		}
	}
	return out
}

func hasAnyTag(a *model.Announcement, tags []string) bool {
	for _, t := range tags {
		if a.HasTag(t) {
			return true
		}
	}
	return false
}

// CountTags 统计标签出现次数
func CountTags(list []model.Announcement) map[string]int {
	counts := make(map[string]int)
	for i := range list {
		for _, t := range list[i].Tag {
			counts[t]++
		}
	}
	return counts
}
