package militime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidFormat 时间格式错误
var ErrInvalidFormat = errors.New("invalid military time format")

const (
	inputLayout  = "2006-1-2T15:04:05"
	outputLayout = "2006-01-02T15:04:05Z"
)

// zoneOffsets 军用时区字母到UTC偏移（小时）的映射，J不使用
// https://en.wikipedia.org/wiki/List_of_military_time_zones
var zoneOffsets = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8, 'I': 9,
	'K': 10, 'L': 11, 'M': 12,
	'N': -1, 'O': -2, 'P': -3, 'Q': -4, 'R': -5, 'S': -6,
	'T': -7, 'U': -8, 'V': -9, 'W': -10, 'X': -11, 'Y': -12,
	'Z': 0,
}

// Parse 解析形如 2019-09-02T11:33:29H 的时间字符串，返回UTC时间
func Parse(s string) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	offset, ok := zoneOffsets[s[len(s)-1]]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown zone letter in %q", ErrInvalidFormat, s)
	}

	body := s[:len(s)-1]
	// 布局里没有小数秒，但ParseInLocation会在秒后接受小数部分
	if strings.ContainsRune(body, '.') {
		return time.Time{}, fmt.Errorf("%w: fractional seconds in %q", ErrInvalidFormat, s)
	}

	local, err := time.ParseInLocation(inputLayout, body, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	return local.Add(-time.Duration(offset) * time.Hour), nil
}

// Format 输出zulu格式时间
func Format(t time.Time) string {
	return t.UTC().Format(outputLayout)
}

// Normalize 解析后按zulu格式重新输出
func Normalize(s string) (string, time.Time, error) {
	t, err := Parse(s)
	if err != nil {
		return "", time.Time{}, err
	}
	return Format(t), t, nil
}
