package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"announcehub/pkg/logger"
)

// googleTokenInfo tokeninfo接口返回的字段
type googleTokenInfo struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Aud           string `json:"aud"`
}

// GoogleVerifier 通过Google tokeninfo接口校验id_token
type GoogleVerifier struct {
	tokenInfoURL string
	clientID     string
	client       *http.Client
	breaker      *gobreaker.CircuitBreaker[string]
}

// NewGoogleVerifier 创建Google身份校验器，clientID为空时不校验aud
func NewGoogleVerifier(tokenInfoURL, clientID string, client *http.Client, logger *logger.Logger) *GoogleVerifier {
	return &GoogleVerifier{
		tokenInfoURL: tokenInfoURL,
		clientID:     clientID,
		client:       defaultClient(client),
		breaker:      newProviderBreaker("google-tokeninfo", logger),
	}
}

// Verify 校验id_token并返回邮箱
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("%w: empty token", ErrIdentityRejected)
	}
	email, err := v.breaker.Execute(func() (string, error) {
		return v.fetch(ctx, idToken)
	})
	if err != nil {
		return "", breakerError(err)
	}
	return email, nil
}

func (v *GoogleVerifier) fetch(ctx context.Context, idToken string) (string, error) {
	endpoint := v.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build tokeninfo request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", fmt.Errorf("%w: tokeninfo status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: tokeninfo status %d", ErrIdentityRejected, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read tokeninfo: %v", ErrProviderUnavailable, err)
	}
	var info googleTokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("%w: decode tokeninfo: %v", ErrIdentityRejected, err)
	}

	if v.clientID != "" && info.Aud != v.clientID {
		return "", fmt.Errorf("%w: audience mismatch", ErrIdentityRejected)
	}
	if info.Email == "" || !isVerified(info.EmailVerified) {
		return "", fmt.Errorf("%w: email not verified", ErrIdentityRejected)
	}
	return info.Email, nil
}

// isVerified email_verified可能是布尔值或字符串
func isVerified(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true")
	}
	return false
}
