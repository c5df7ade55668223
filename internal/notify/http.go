package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"announcehub/pkg/logger"
)

// 熔断参数
const (
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	requestTimeout          = 10 * time.Second
)

// newBreaker 连续失败达到阈值后熔断，打开期间请求直接失败
func newBreaker(name string, logger *logger.Logger) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

// jsonPoster 经过熔断器发送JSON请求
type jsonPoster struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[any]
}

func newJSONPoster(name string, client *http.Client, logger *logger.Logger) jsonPoster {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return jsonPoster{client: client, breaker: newBreaker(name, logger)}
}

func (p jsonPoster) post(ctx context.Context, url string, headers map[string]string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	_, err = p.breaker.Execute(func() (any, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	})
	return err
}
