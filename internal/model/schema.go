package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Fields 未经校验的输入字段，通常来自JSON请求体
type Fields map[string]any

// Kind 字段类型
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindStringList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindStringList:
		return "list"
	case KindObject:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// FieldSpec 字段描述。Default每次调用都返回新值，记录之间不共享可变默认值
type FieldSpec struct {
	Name     string
	Kind     Kind
	Settable bool
	Default  func() any
}

// ContentSchema 公告与申请共用的内容字段
var ContentSchema = []FieldSpec{
	{Name: "title", Kind: KindString, Settable: true, Default: func() any { return "Title not set" }},
	{Name: "weight", Kind: KindInteger, Settable: true, Default: func() any { return 0 }},
	{Name: "url", Kind: KindString, Settable: true, Default: nilDefault},
	{Name: "imgUrl", Kind: KindString, Settable: true, Default: nilDefault},
	{Name: "description", Kind: KindString, Settable: true, Default: nilDefault},
	{Name: "location", Kind: KindString, Settable: true, Default: nilDefault},
	{Name: "expireTime", Kind: KindString, Settable: true, Default: nilDefault},
	{Name: "tag", Kind: KindStringList, Settable: true, Default: func() any { return []string{} }},
}

// RequiredFields 创建时必须提供的字段
var RequiredFields = []string{"title"}

// systemFields 由系统维护的字段，请求中可以出现但会被忽略
var systemFields = []string{"id", "publishedAt", "applicant", "application_id", "reviewStatus", "reviewDescription", "fcm"}

func nilDefault() any { return nil }

// Match 判断值是否符合字段类型，符合时返回规范化后的值
func (k Kind) Match(v any) (any, bool) {
	switch k {
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindInteger:
		return asInt(v)
	case KindStringList:
		return asStringList(v)
	case KindObject:
		m, ok := v.(map[string]any)
		return m, ok
	}
	return nil, false
}

func asInt(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		// JSON数字默认解码为float64，只接受整数值
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return nil, false
		}
		return int(n), true
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		if err != nil {
			return nil, false
		}
		return int(i), true
	}
	return nil, false
}

func asStringList(v any) (any, bool) {
	switch l := v.(type) {
	case []string:
		return append([]string{}, l...), true
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Resolve 按字段表生成完整的字段集合
//
// 对每个可设置字段：输入类型匹配则采用输入；否则取origin中的旧值（更新时），
// 再否则取字段默认值。类型不匹配的非空输入会通过onMismatch回调报告。
func Resolve(input, origin Fields, onMismatch func(field string, value any)) Fields {
	out := make(Fields, len(ContentSchema))
	for _, f := range ContentSchema {
		if !f.Settable {
			out[f.Name] = f.Default()
			continue
		}
		if v, ok := input[f.Name]; ok {
			if matched, ok := f.Kind.Match(v); ok {
				out[f.Name] = matched
				continue
			}
			if v != nil && onMismatch != nil {
				onMismatch(f.Name, v)
			}
		}
		if v, ok := origin[f.Name]; ok {
			out[f.Name] = v
			continue
		}
		out[f.Name] = f.Default()
	}
	return out
}

// MissingRequired 返回缺失或为空的必填字段
func MissingRequired(input Fields) []string {
	var missing []string
	for _, name := range RequiredFields {
		s, ok := input[name].(string)
		if !ok || s == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// UnknownKeys 返回不在字段表中的key，按字母排序
func UnknownKeys(input Fields) []string {
	known := sets.New[string](systemFields...)
	for _, f := range ContentSchema {
		known.Insert(f.Name)
	}

	var unknown []string
	for k := range input {
		if !known.Has(k) {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// NormalizeTags 去掉首尾空白和空标签，去重（保留首次出现的顺序）并截断到max个
//
// 查询标签使用同样的规则，存储的标签总能被搜索到。
func NormalizeTags(tags []string, max int) []string {
	seen := sets.New[string]()
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t == "" || seen.Has(t) {
			continue
		}
		seen.Insert(t)
		out = append(out, t)
	}
	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out
}
