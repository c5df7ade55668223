package repository

import (
	"strings"
	"time"

	"announcehub/internal/model"
	"announcehub/pkg/logger"
	"announcehub/pkg/militime"
)

// contentBuilder 按字段表把请求字段构造成内容，公告和申请共用
type contentBuilder struct {
	maxTags int
	logger  *logger.Logger
	now     func() time.Time
}

func (b *contentBuilder) checkRequired(input model.Fields) error {
	if missing := model.MissingRequired(input); len(missing) > 0 {
		return validationError("missing required field: %s", strings.Join(missing, ", "))
	}
	return nil
}

// build 解析字段、规范化标签和过期时间
//
// 返回的时长是过期时间距离现在的剩余时间，没有过期时间时为0。
func (b *contentBuilder) build(input, origin model.Fields) (model.Content, time.Duration, error) {
	fields := model.Resolve(input, origin, func(field string, value any) {
		b.logger.Warn("字段类型不匹配，已忽略输入值", "field", field, "value", value)
	})

	content := model.ContentFromFields(fields)
	if content.Title == "" {
		return model.Content{}, 0, validationError("title must not be empty")
	}
	content.Tag = model.NormalizeTags(content.Tag, b.maxTags)

	if content.ExpireTime == nil || *content.ExpireTime == "" {
		content.ExpireTime = nil
		return content, 0, nil
	}

	normalized, at, err := militime.Normalize(*content.ExpireTime)
	if err != nil {
		return model.Content{}, 0, validationError("expireTime: %v", err)
	}
	content.ExpireTime = &normalized

	return content, at.Sub(b.now()).Truncate(time.Second), nil
}

func (b *contentBuilder) timestamp() string {
	return militime.Format(b.now())
}
