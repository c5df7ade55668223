package apis

import (
	"announcehub/internal/api/handler"
	"announcehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterApplicationRoutes 注册申请相关路由，审核操作需要审核员权限
func RegisterApplicationRoutes(router *gin.RouterGroup, applicationHandler *handler.ApplicationHandler) {
	router.POST("/applications", applicationHandler.Submit)
	router.GET("/user/applications/:username", applicationHandler.ListByUser)
	router.GET("/applications/:id", applicationHandler.Get)
	router.PUT("/applications/:id", applicationHandler.Update)
	router.DELETE("/applications/:id", applicationHandler.Delete)

	review := router.Group("")
	review.Use(middleware.EditorAuth())
	{
		review.GET("/applications", applicationHandler.ListAll)
		review.POST("/applications/:id/approve", applicationHandler.Approve)
		review.POST("/applications/:id/reject", applicationHandler.Reject)
	}
}
