package apis

import (
	"announcehub/internal/api/handler"

	"github.com/gin-gonic/gin"
)

// RegisterAnnouncementRoutes 注册公告相关路由
func RegisterAnnouncementRoutes(router *gin.RouterGroup, announcementHandler *handler.AnnouncementHandler) {
	router.GET("/announcements", announcementHandler.GetAnnouncements)
	router.POST("/announcements", announcementHandler.SearchAnnouncements)
	router.GET("/announcements/:id", announcementHandler.GetAnnouncementByID)
	router.GET("/tags", announcementHandler.GetTagCounts)
}
