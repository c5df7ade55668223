package apis

import (
	"announcehub/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterUserRoutes 注册登录注册相关路由
func RegisterUserRoutes(router *gin.RouterGroup, userHandler *handler.UserHandler) {
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)

	oauth := router.Group("/oauth2")
	{
		oauth.POST("/google/token", userHandler.GoogleLogin)
		oauth.POST("/apple/token", userHandler.AppleLogin)
	}
}
