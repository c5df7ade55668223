package apis

import (
	"announcehub/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes 注册不需要认证的路由
func RegisterPublicRoutes(v1 *gin.RouterGroup, userHandler *handler.UserHandler, announcementHandler *handler.AnnouncementHandler) {
	RegisterAnnouncementRoutes(v1, announcementHandler)
	RegisterUserRoutes(v1, userHandler)
}

// RegisterAuthRoutes 注册需要登录的路由
func RegisterAuthRoutes(authRouter *gin.RouterGroup, userHandler *handler.UserHandler, applicationHandler *handler.ApplicationHandler) {
	authRouter.GET("/user/info", userHandler.GetUserInfo)
	RegisterApplicationRoutes(authRouter, applicationHandler)
}
