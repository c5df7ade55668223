package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sony/gobreaker/v2"

	"announcehub/pkg/logger"
)

// AppleIssuer Apple id_token的签发方
const AppleIssuer = "https://appleid.apple.com"

// appleClaims Apple id_token中用到的字段
type appleClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	jwt.RegisteredClaims
}

// AppleVerifier 使用Apple公钥校验id_token
type AppleVerifier struct {
	audience string
	keys     *JWKSCache
	breaker  *gobreaker.CircuitBreaker[string]
}

// NewAppleVerifier 创建Apple身份校验器
func NewAppleVerifier(audience string, keys *JWKSCache, logger *logger.Logger) *AppleVerifier {
	return &AppleVerifier{
		audience: audience,
		keys:     keys,
		breaker:  newProviderBreaker("apple-jwks", logger),
	}
}

// Verify 校验签名、签发方和受众，返回邮箱
func (v *AppleVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("%w: empty token", ErrIdentityRejected)
	}
	email, err := v.breaker.Execute(func() (string, error) {
		return v.parse(ctx, idToken)
	})
	if err != nil {
		return "", breakerError(err)
	}
	return email, nil
}

func (v *AppleVerifier) parse(ctx context.Context, idToken string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(AppleIssuer),
		jwt.WithLeeway(tokenLeeway),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(idToken, &appleClaims{}, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: missing kid", ErrIdentityRejected)
		}
		return v.keys.GetKey(ctx, kid)
	}, opts...)
	if err != nil {
		// 获取公钥失败属于提供方故障
		if errors.Is(err, ErrProviderUnavailable) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrIdentityRejected, err)
	}

	claims, ok := token.Claims.(*appleClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid claims", ErrIdentityRejected)
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: token has no email", ErrIdentityRejected)
	}
	if claims.EmailVerified != nil && !isVerified(claims.EmailVerified) {
		return "", fmt.Errorf("%w: email not verified", ErrIdentityRejected)
	}
	return claims.Email, nil
}
