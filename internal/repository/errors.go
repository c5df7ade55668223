package repository

import (
	"errors"
	"fmt"
)

// 仓库层错误，调用方使用errors.Is判断
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyApproved = fmt.Errorf("%w: application already approved", ErrConflict)
	ErrUpstream        = errors.New("upstream store failure")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func upstreamError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}
