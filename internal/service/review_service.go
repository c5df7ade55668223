package service

import (
	"context"
	"fmt"

	"announcehub/internal/auth"
	"announcehub/internal/model"
	"announcehub/internal/repository"
	"announcehub/pkg/logger"
)

// ReviewNotifier 审核流程通知
type ReviewNotifier interface {
	ApplicationSubmitted(app model.Application)
	ApplicationReviewed(app model.Application, announcementID int)
}

// Actor 发起请求的用户
type Actor struct {
	Username string
	Level    int
	FCM      string
}

// IsEditor 是否有审核权限
func (a Actor) IsEditor() bool {
	return a.Level >= auth.LevelEditor
}

// ReviewService 申请审核服务
type ReviewService struct {
	applicationRepo  *repository.ApplicationRepository
	notifier         ReviewNotifier
	allowOwnerModify bool
	logger           *logger.Logger
}

// NewReviewService 创建审核服务实例
func NewReviewService(applicationRepo *repository.ApplicationRepository, notifier ReviewNotifier, allowOwnerModify bool, logger *logger.Logger) *ReviewService {
	return &ReviewService{
		applicationRepo:  applicationRepo,
		notifier:         notifier,
		allowOwnerModify: allowOwnerModify,
		logger:           logger,
	}
}

// Submit 提交申请
func (s *ReviewService) Submit(ctx context.Context, actor Actor, input model.Fields) (string, error) {
	id, err := s.applicationRepo.Create(ctx, actor.Username, actor.FCM, input)
	if err != nil {
		return "", err
	}
	s.logger.Info("收到新申请", "application_id", id, "applicant", actor.Username)

	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn("读取新申请失败，跳过通知", "application_id", id, err)
		return id, nil
	}
	s.notifier.ApplicationSubmitted(*app)
	return id, nil
}

// ListAll 获取全部申请
func (s *ReviewService) ListAll(ctx context.Context) ([]model.Application, error) {
	return s.applicationRepo.ListAll(ctx)
}

// ListByUser 获取某个用户的申请，只有本人或审核员可以查看
func (s *ReviewService) ListByUser(ctx context.Context, actor Actor, username string) ([]model.Application, error) {
	if actor.Username != username && !actor.IsEditor() {
		return nil, ErrForbidden
	}
	return s.applicationRepo.ListByUser(ctx, username)
}

// Get 获取申请详情，只有申请人或审核员可以查看
func (s *ReviewService) Get(ctx context.Context, actor Actor, id string) (*model.Application, error) {
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Applicant != actor.Username && !actor.IsEditor() {
		return nil, ErrForbidden
	}
	return app, nil
}

// checkModify 审核员总是可以修改，申请人需要开启ALLOW_APPLICATION_OWNER_MODIFY
func (s *ReviewService) checkModify(ctx context.Context, actor Actor, id string) error {
	if actor.IsEditor() {
		return nil
	}
	app, err := s.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.allowOwnerModify || app.Applicant != actor.Username {
		return ErrForbidden
	}
	return nil
}

// Update 修改申请，修改后需要重新审核
func (s *ReviewService) Update(ctx context.Context, actor Actor, id string, input model.Fields) (*model.Application, error) {
	if err := s.checkModify(ctx, actor, id); err != nil {
		return nil, err
	}
	app, err := s.applicationRepo.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("申请已修改", "application_id", id, "by", actor.Username)
	return app, nil
}

// Delete 删除申请
func (s *ReviewService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.checkModify(ctx, actor, id); err != nil {
		return err
	}
	if err := s.applicationRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("申请已删除", "application_id", id, "by", actor.Username)
	return nil
}

// Approve 通过申请并发布为公告
func (s *ReviewService) Approve(ctx context.Context, actor Actor, id, description string) (int, error) {
	announcementID, app, err := s.applicationRepo.Approve(ctx, id, description)
	if err != nil {
		return 0, fmt.Errorf("approve application %s: %w", id, err)
	}
	s.logger.Info("申请已通过", "application_id", id, "announcement_id", announcementID, "by", actor.Username)
	s.notifier.ApplicationReviewed(*app, announcementID)
	return announcementID, nil
}

// Reject 拒绝申请
func (s *ReviewService) Reject(ctx context.Context, actor Actor, id, description string) (*model.Application, error) {
	app, err := s.applicationRepo.Reject(ctx, id, description)
	if err != nil {
		return nil, fmt.Errorf("reject application %s: %w", id, err)
	}
	s.logger.Info("申请已拒绝", "application_id", id, "by", actor.Username)
	s.notifier.ApplicationReviewed(*app, 0)
	return app, nil
}
