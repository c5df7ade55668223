package model

// Content 公告与申请共有的内容字段
type Content struct {
	Title       string   `json:"title"`
	Weight      int      `json:"weight"`
	URL         *string  `json:"url"`
	ImgURL      *string  `json:"imgUrl"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	ExpireTime  *string  `json:"expireTime"`
	Tag         []string `json:"tag"`
}

// Announcement 已发布的公告，按ID存储
type Announcement struct {
	ID int `json:"id"`
	Content
	PublishedAt string `json:"publishedAt"`
}

// LinkedAnnouncement 带有前后ID的公告，前后ID只在读取时计算，不存储
type LinkedAnnouncement struct {
	Announcement
	NextID *int `json:"nextId"`
	LastID *int `json:"lastId"`
}

// HasTag 判断公告是否包含标签
func (a *Announcement) HasTag(tag string) bool {
	for _, t := range a.Tag {
		if t == tag {
			return true
		}
	}
	return false
}

// ContentFromFields 从Resolve的结果构造内容，值的类型已经过校验
func ContentFromFields(f Fields) Content {
	c := Content{
		URL:         optionalString(f["url"]),
		ImgURL:      optionalString(f["imgUrl"]),
		Description: optionalString(f["description"]),
		Location:    optionalString(f["location"]),
		ExpireTime:  optionalString(f["expireTime"]),
		Tag:         []string{},
	}
	if s, ok := f["title"].(string); ok {
		c.Title = s
	}
	if n, ok := f["weight"].(int); ok {
		c.Weight = n
	}
	if tags, ok := f["tag"].([]string); ok {
		c.Tag = append(c.Tag, tags...)
	}
	return c
}

// Fields 把内容转换回字段集合，作为更新时的旧值
func (c Content) Fields() Fields {
	return Fields{
		"title":       c.Title,
		"weight":      c.Weight,
		"url":         stringValue(c.URL),
		"imgUrl":      stringValue(c.ImgURL),
		"description": stringValue(c.Description),
		"location":    stringValue(c.Location),
		"expireTime":  stringValue(c.ExpireTime),
		"tag":         append([]string{}, c.Tag...),
	}
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func stringValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
