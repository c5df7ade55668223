package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"announcehub/internal/auth"
	"announcehub/internal/constants"
	"announcehub/internal/service"
)

// 上下文中保存当前用户的key
const (
	ContextActor  = "actor"
	ContextClaims = "claims"
)

// cookieName 登录时写入的cookie
const cookieName = "Authorization"

// Authenticator 校验token
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// UserAuth 用户认证中间件
func UserAuth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, constants.ErrUnauthorized)
			return
		}

		claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrBanned):
				abort(c, http.StatusForbidden, constants.ErrBlacklisted)
			case errors.Is(err, service.ErrUnauthorized):
				abort(c, http.StatusUnauthorized, constants.ErrInvalidToken)
			default:
				abort(c, http.StatusServiceUnavailable, constants.ErrUpstream)
			}
			return
		}

		actor := service.Actor{
			Username: claims.Username,
			Level:    claims.PermissionLevel,
		}
		if claims.FCM != nil {
			actor.FCM = *claims.FCM
		}
		c.Set(ContextActor, actor)
		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// bearerToken 从Authorization头或cookie中读取token
func bearerToken(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	if value == "" {
		value, _ = c.Cookie(cookieName)
	}
	value = strings.TrimSpace(value)
	if len(value) > 7 && strings.EqualFold(value[:7], "Bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return ""
}

// CurrentActor 获取当前请求的用户
func CurrentActor(c *gin.Context) service.Actor {
	if v, ok := c.Get(ContextActor); ok {
		if actor, ok := v.(service.Actor); ok {
			return actor
		}
	}
	return service.Actor{}
}

// CurrentClaims 获取当前请求的token信息
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"code": status, "msg": msg})
}
