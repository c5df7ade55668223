package service

import (
	"context"

	"announcehub/internal/cache"
	"announcehub/internal/model"
	"announcehub/internal/repository"
	"announcehub/pkg/logger"
)

// AnnouncementService 公告服务
//
// 读取走缓存，写入走仓库并在成功后清空缓存。
type AnnouncementService struct {
	announcementRepo *repository.AnnouncementRepository
	cache            *cache.AnnouncementCache
	languageTags     map[string][]string
	logger           *logger.Logger
}

// NewAnnouncementService 创建公告服务实例
func NewAnnouncementService(announcementRepo *repository.AnnouncementRepository, cache *cache.AnnouncementCache, languageTags map[string][]string, logger *logger.Logger) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		cache:            cache,
		languageTags:     languageTags,
		logger:           logger,
	}
}

// GetAnnouncements 获取公告列表，tags和lang都为空时返回全部
func (s *AnnouncementService) GetAnnouncements(ctx context.Context, tags []string, lang string) ([]model.LinkedAnnouncement, error) {
	query := append([]string{}, tags...)
	if tag, ok := s.LanguageTag(lang); ok {
		query = append(query, tag)
	}
	if len(query) == 0 {
		return s.cache.ListAll(ctx)
	}
	return s.cache.SearchByTags(ctx, query)
}

// LanguageTag 将lang参数映射为语言标签，例如zh-tw映射为zh
func (s *AnnouncementService) LanguageTag(lang string) (string, bool) {
	if lang == "" {
		return "", false
	}
	for tag, aliases := range s.languageTags {
		for _, alias := range aliases {
			if alias == lang {
				return tag, true
			}
		}
	}
	return "", false
}

// GetAnnouncementByID 根据ID获取公告详情，带前后公告ID
func (s *AnnouncementService) GetAnnouncementByID(ctx context.Context, id int) (*model.LinkedAnnouncement, error) {
	return s.cache.Announcement(ctx, id)
}

// GetTagCounts 获取各标签的公告数量
func (s *AnnouncementService) GetTagCounts(ctx context.Context) (map[string]int, error) {
	return s.cache.TagCounts(ctx)
}

// InvalidateCache 使缓存失效，失败只记录日志
func (s *AnnouncementService) InvalidateCache(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Error("清空公告缓存失败", err)
	}
}

// Create 创建公告，同时作为申请通过后的发布入口
func (s *AnnouncementService) Create(ctx context.Context, input model.Fields) (int, error) {
	id, err := s.announcementRepo.Create(ctx, input)
	if err != nil {
		return 0, err
	}
	s.InvalidateCache(ctx)
	s.logger.Info("公告已创建", "id", id)
	return id, nil
}

// Update 更新公告
func (s *AnnouncementService) Update(ctx context.Context, id int, input model.Fields) error {
	if err := s.announcementRepo.Update(ctx, id, input); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	s.logger.Info("公告已更新", "id", id)
	return nil
}

// Delete 删除公告
func (s *AnnouncementService) Delete(ctx context.Context, id int, force bool) error {
	if err := s.announcementRepo.Delete(ctx, id, force); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	s.logger.Info("公告已删除", "id", id, "force", force)
	return nil
}
