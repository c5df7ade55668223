package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"announcehub/pkg/logger"
)

var (
	// ErrIdentityRejected 第三方身份token无效或邮箱未验证
	ErrIdentityRejected = errors.New("identity token rejected")
	// ErrProviderUnavailable 无法连接身份提供方
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// IdentityVerifier 校验第三方身份token，返回已验证的邮箱
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

const providerTimeout = 10 * time.Second

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: providerTimeout}
	}
	return client
}

// newProviderBreaker token被拒绝不计为提供方故障
func newProviderBreaker(name string, logger *logger.Logger) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrIdentityRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// breakerError 熔断打开时视为提供方不可用
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrProviderUnavailable, err)
	}
	return err
}
