package admin

import (
	"announcehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAdminRoutes 注册管理API路由，router需已经过UserAuth
func RegisterAdminRoutes(router *gin.RouterGroup, userAdminHandler *UserAdminHandler, announcementAdminHandler *AnnouncementAdminHandler) {
	// 公告管理路由
	announcements := router.Group("/announcements")
	announcements.Use(middleware.EditorAuth())
	{
		announcements.POST("/create", announcementAdminHandler.CreateAnnouncement)
		announcements.PUT("/:id", announcementAdminHandler.UpdateAnnouncement)
		announcements.DELETE("/:id", announcementAdminHandler.DeleteAnnouncement)
	}

	// 审核员管理路由
	editors := router.Group("/editors")
	editors.Use(middleware.AdminAuth())
	{
		editors.GET("", userAdminHandler.ListEditors)
		editors.POST("", userAdminHandler.AddEditor)
		editors.DELETE("/:username", userAdminHandler.RemoveEditor)
	}

	// 封禁名单路由
	banned := router.Group("/banned")
	banned.Use(middleware.AdminAuth())
	{
		banned.GET("", userAdminHandler.ListBanned)
		banned.POST("", userAdminHandler.Ban)
		banned.DELETE("/:username", userAdminHandler.Unban)
	}
}
