package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized 未登录或用户名密码错误
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden 已登录但没有权限
	ErrForbidden = errors.New("forbidden")
	// ErrBanned 账号被封禁
	ErrBanned = fmt.Errorf("%w: account is banned", ErrForbidden)
)
