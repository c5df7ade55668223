package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"announcehub/internal/api/handler"
	"announcehub/internal/constants"
	"announcehub/internal/service"
	"announcehub/pkg/logger"
)

// AnnouncementAdminHandler 公告管理处理器
type AnnouncementAdminHandler struct {
	announcementService *service.AnnouncementService
	logger              *logger.Logger
}

// NewAnnouncementAdminHandler 创建公告管理处理器实例
func NewAnnouncementAdminHandler(announcementService *service.AnnouncementService, logger *logger.Logger) *AnnouncementAdminHandler {
	return &AnnouncementAdminHandler{
		announcementService: announcementService,
		logger:              logger,
	}
}

// CreateAnnouncement 创建公告
// @Summary 创建公告
// @Description 审核员直接发布公告，title必填
// @Tags 公告管理
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/announcements/create [post]
func (h *AnnouncementAdminHandler) CreateAnnouncement(c *gin.Context) {
	input, ok := handler.BindFields(c)
	if !ok {
		return
	}

	id, err := h.announcementService.Create(c.Request.Context(), input)
	if err != nil {
		handler.Error(c, h.logger, "创建公告", err)
		return
	}
	handler.OK(c, constants.SuccessCreate, gin.H{"id": id})
}

// UpdateAnnouncement 更新公告
// @Summary 更新公告
// @Description 未提供的字段保留原值
// @Tags 公告管理
// @Accept json
// @Produce json
// @Param id path int true "公告ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/announcements/{id} [put]
func (h *AnnouncementAdminHandler) UpdateAnnouncement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		handler.Fail(c, http.StatusBadRequest, constants.ErrInvalidAnnouncement)
		return
	}
	input, ok := handler.BindFields(c)
	if !ok {
		return
	}

	if err := h.announcementService.Update(c.Request.Context(), id, input); err != nil {
		handler.Error(c, h.logger, "更新公告", err)
		return
	}
	handler.OK(c, constants.SuccessUpdate, gin.H{"id": id})
}

// DeleteAnnouncement 删除公告
// @Summary 删除公告
// @Description 同一ID存在多条记录时需要force=true
// @Tags 公告管理
// @Produce json
// @Param id path int true "公告ID"
// @Param force query bool false "强制删除"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/admin/announcements/{id} [delete]
func (h *AnnouncementAdminHandler) DeleteAnnouncement(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		handler.Fail(c, http.StatusBadRequest, constants.ErrInvalidAnnouncement)
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	if err := h.announcementService.Delete(c.Request.Context(), id, force); err != nil {
		handler.Error(c, h.logger, "删除公告", err)
		return
	}
	handler.OK(c, constants.SuccessDelete, gin.H{"id": id})
}
