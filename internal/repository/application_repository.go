package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"k8s.io/apimachinery/pkg/util/rand"

	"announcehub/internal/model"
	"announcehub/internal/store"
	"announcehub/pkg/logger"
)

const (
	applicationKeyPrefix = "application:"
	applicationIDLength  = 16
)

// AnnouncementPublisher 审核通过后发布公告
type AnnouncementPublisher interface {
	Create(ctx context.Context, input model.Fields) (int, error)
}

// ApplicationRepository 公告申请存储库
type ApplicationRepository struct {
	store       store.Store
	publisher   AnnouncementPublisher
	builder     *contentBuilder
	approvedTTL time.Duration
	logger      *logger.Logger
}

// NewApplicationRepository 创建申请存储库实例
func NewApplicationRepository(s store.Store, publisher AnnouncementPublisher, maxTags int, approvedTTL time.Duration, logger *logger.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		store:       s,
		publisher:   publisher,
		builder:     &contentBuilder{maxTags: maxTags, logger: logger, now: time.Now},
		approvedTTL: approvedTTL,
		logger:      logger,
	}
}

func applicationKey(username, id string) string {
	return applicationKeyPrefix + username + ":" + id
}

// validApplicationID 申请id只包含字母和数字，避免作为匹配模式时产生歧义
func validApplicationID(id string) bool {
	if id == "" {
		return false
	}
	for _, c := range id {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// ListByUser 获取用户的全部申请
func (r *ApplicationRepository) ListByUser(ctx context.Context, username string) ([]model.Application, error) {
	apps, err := r.list(ctx, applicationKeyPrefix+store.EscapePattern(username)+":*")
	if err != nil {
		return nil, err
	}
	// 用户名中含有冒号时模式可能匹配到其他用户
	owned := apps[:0]
	for _, a := range apps {
		if a.Applicant == username {
			owned = append(owned, a)
		}
	}
	return owned, nil
}

// ListAll 获取全部申请
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]model.Application, error) {
	return r.list(ctx, applicationKeyPrefix+"*")
}

func (r *ApplicationRepository) list(ctx context.Context, pattern string) ([]model.Application, error) {
	keys, err := r.store.Keys(ctx, pattern)
	if err != nil {
		return nil, upstreamError("list application keys", err)
	}
	apps := make([]model.Application, 0, len(keys))
	if len(keys) == 0 {
		return apps, nil
	}

	values, err := r.store.GetMany(ctx, keys)
	if err != nil {
		return nil, upstreamError("read applications", err)
	}
	for i, data := range values {
		if data == nil {
			continue
		}
		var a model.Application
		if err := json.Unmarshal(data, &a); err != nil {
			r.logger.Warn("跳过无法解析的申请", "key", keys[i], err)
			continue
		}
		apps = append(apps, a)
	}
	return apps, nil
}

// Create 提交申请，返回申请id
func (r *ApplicationRepository) Create(ctx context.Context, username, fcmToken string, input model.Fields) (string, error) {
	if err := r.builder.checkRequired(input); err != nil {
		return "", err
	}
	content, _, err := r.builder.build(input, nil)
	if err != nil {
		return "", err
	}

	app := model.Application{
		Content:     content,
		Applicant:   username,
		PublishedAt: r.builder.timestamp(),
	}
	if fcmToken != "" {
		app.FCM = &fcmToken
	}

	for attempt := 1; attempt <= maxClaimAttempts; attempt++ {
		app.ApplicationID = rand.String(applicationIDLength)
		data, err := json.Marshal(app)
		if err != nil {
			return "", fmt.Errorf("marshal application: %w", err)
		}
		claimed, err := r.store.SetNX(ctx, applicationKey(username, app.ApplicationID), data, 0)
		if err != nil {
			return "", upstreamError("create application", err)
		}
		if claimed {
			r.logger.Info("申请已提交", "id", app.ApplicationID, "applicant", username)
			return app.ApplicationID, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate an application id", ErrConflict)
}

// GetByID 根据申请id获取申请
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*model.Application, error) {
	app, _, err := r.find(ctx, id)
	return app, err
}

func (r *ApplicationRepository) find(ctx context.Context, id string) (*model.Application, string, error) {
	if !validApplicationID(id) {
		return nil, "", fmt.Errorf("%w: application %q", ErrNotFound, id)
	}
	keys, err := r.store.Keys(ctx, applicationKeyPrefix+"*:"+id)
	if err != nil {
		return nil, "", upstreamError("lookup application", err)
	}
	if len(keys) == 0 {
		return nil, "", fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	if len(keys) > 1 {
		r.logger.Warn("申请id对应多条记录", "id", id, "keys", keys)
	}

	data, err := r.store.Get(ctx, keys[0])
	if errors.Is(err, store.ErrNotFound) {
		return nil, "", fmt.Errorf("%w: application %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, "", upstreamError("get application", err)
	}
	var app model.Application
	if err := json.Unmarshal(data, &app); err != nil {
		return nil, "", upstreamError("decode application", err)
	}
	return &app, keys[0], nil
}

func (r *ApplicationRepository) save(ctx context.Context, key string, app *model.Application, ttl time.Duration) error {
	data, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("marshal application: %w", err)
	}
	if err := r.store.Set(ctx, key, data, ttl); err != nil {
		return upstreamError("save application", err)
	}
	return nil
}

// Update 修改申请内容，修改后需要重新审核。已通过的申请不可修改
func (r *ApplicationRepository) Update(ctx context.Context, id string, input model.Fields) (*model.Application, error) {
	app, key, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.IsApproved() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyApproved, id)
	}

	content, _, err := r.builder.build(input, app.Content.Fields())
	if err != nil {
		return nil, err
	}
	description := model.NeedReviewDescription
	app.Content = content
	app.PublishedAt = r.builder.timestamp()
	app.ReviewStatus = nil
	app.ReviewDescription = &description

	if err := r.save(ctx, key, app, store.KeepTTL); err != nil {
		return nil, err
	}
	return app, nil
}

// Delete 删除申请
func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	_, key, err := r.find(ctx, id)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, key); err != nil {
		return upstreamError("delete application", err)
	}
	return nil
}

// Approve 通过申请并发布为公告，返回公告id
//
// 发布失败时申请保持不变；发布成功后申请记录在approvedTTL后过期。
func (r *ApplicationRepository) Approve(ctx context.Context, id, description string) (int, *model.Application, error) {
	app, key, err := r.find(ctx, id)
	if err != nil {
		return 0, nil, err
	}
	if app.IsApproved() {
		return 0, nil, fmt.Errorf("%w: %s", ErrAlreadyApproved, id)
	}

	announcementID, err := r.publisher.Create(ctx, app.Content.Fields())
	if err != nil {
		return 0, nil, fmt.Errorf("publish application %s: %w", id, err)
	}

	approved := true
	app.ReviewStatus = &approved
	app.ReviewDescription = optionalDescription(description)
	if err := r.save(ctx, key, app, r.approvedTTL); err != nil {
		r.logger.Error("公告已发布但申请状态保存失败", "id", id, "announcement", announcementID, err)
		return announcementID, nil, err
	}
	return announcementID, app, nil
}

// Reject 拒绝申请，不改变过期时间
func (r *ApplicationRepository) Reject(ctx context.Context, id, description string) (*model.Application, error) {
	app, key, err := r.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.IsApproved() {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyApproved, id)
	}

	rejected := false
	app.ReviewStatus = &rejected
	app.ReviewDescription = optionalDescription(description)
	if err := r.save(ctx, key, app, store.KeepTTL); err != nil {
		return nil, err
	}
	return app, nil
}

func optionalDescription(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
