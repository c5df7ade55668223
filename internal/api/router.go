package api

import (
	"announcehub/internal/api/admin"
	"announcehub/internal/api/apis"
	"announcehub/internal/api/handler"
	"announcehub/internal/middleware"
	"announcehub/internal/service"
	"announcehub/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services 路由依赖的服务
type Services struct {
	Announcements *service.AnnouncementService
	Reviews       *service.ReviewService
	Auth          *service.AuthService
}

// SetupRouter 设置API路由
func SetupRouter(logLevel string, logger *logger.Logger, services Services) *gin.Engine {
	if logLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 使用中间件
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())

	// 初始化处理器
	userHandler := handler.NewUserHandler(services.Auth, logger)
	announcementHandler := handler.NewAnnouncementHandler(services.Announcements, logger)
	applicationHandler := handler.NewApplicationHandler(services.Reviews, logger)

	// 初始化管理员处理器
	userAdminHandler := admin.NewUserAdminHandler(services.Auth, logger)
	announcementAdminHandler := admin.NewAnnouncementAdminHandler(services.Announcements, logger)

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API版本v1
	v1 := router.Group("/api/v1")

	// 注册不需要认证的路由
	apis.RegisterPublicRoutes(v1, userHandler, announcementHandler)

	// 需要登录的路由
	authRouter := v1.Group("")
	authRouter.Use(middleware.UserAuth(services.Auth))
	apis.RegisterAuthRoutes(authRouter, userHandler, applicationHandler)

	// 管理路由，权限在各分组内检查
	adminRouter := v1.Group("/admin")
	adminRouter.Use(middleware.UserAuth(services.Auth))
	admin.RegisterAdminRoutes(adminRouter, userAdminHandler, announcementAdminHandler)

	return router
}
