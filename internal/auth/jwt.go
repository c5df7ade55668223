package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginType 登录方式
type LoginType string

const (
	LoginGeneral LoginType = "General"
	LoginOAuth2  LoginType = "Oauth2"
	LoginApple   LoginType = "Apple_sign_in"
)

// 权限等级
const (
	LevelUser   = 0
	LevelEditor = 1
	LevelAdmin  = 2
)

// tokenLeeway 校验过期时间时允许的时钟偏差
const tokenLeeway = 60 * time.Second

// ErrInvalidToken token无效或已过期
var ErrInvalidToken = errors.New("invalid token")

// Claims token中携带的用户信息
type Claims struct {
	Username        string    `json:"username"`
	LoginType       LoginType `json:"login_type"`
	PermissionLevel int       `json:"permission_level"`
	FCM             *string   `json:"fcm"`
	jwt.RegisteredClaims
}

// JWTManager 签发和校验HS256 token
type JWTManager struct {
	secret  []byte
	timeout time.Duration
	now     func() time.Time
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secret string, timeout time.Duration) (*JWTManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &JWTManager{
		secret:  []byte(secret),
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// GenerateToken 签发token，fcm为空时不携带推送token
func (m *JWTManager) GenerateToken(username string, loginType LoginType, level int, fcm string) (string, error) {
	now := m.now()
	claims := &Claims{
		Username:        username,
		LoginType:       loginType,
		PermissionLevel: level,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if fcm != "" {
		claims.FCM = &fcm
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken 校验签名和有效期
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(tokenLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}
	return claims, nil
}

// TTL token有效期
func (m *JWTManager) TTL() time.Duration {
	return m.timeout
}
