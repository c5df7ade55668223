package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"announcehub/internal/constants"
	"announcehub/internal/service"
	"announcehub/pkg/logger"
)

// AnnouncementHandler 公告处理器
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
	logger              *logger.Logger
}

// NewAnnouncementHandler 创建公告处理器实例
func NewAnnouncementHandler(announcementService *service.AnnouncementService, logger *logger.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
		logger:              logger,
	}
}

// GetAnnouncements 获取公告列表
// @Summary 获取公告列表
// @Description 不带参数返回全部公告；tag为逗号分隔的标签，lang为语言
// @Tags 公告
// @Produce json
// @Param tag query string false "标签，逗号分隔"
// @Param lang query string false "语言，例如zh、zh-tw、en"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/announcements [get]
func (h *AnnouncementHandler) GetAnnouncements(c *gin.Context) {
	var tags []string
	if raw := c.Query("tag"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	list, err := h.announcementService.GetAnnouncements(c.Request.Context(), tags, c.Query("lang"))
	if err != nil {
		Error(c, h.logger, "获取公告列表", err)
		return
	}
	OK(c, constants.SuccessGet, list)
}

// SearchAnnouncementsRequest 按标签查询请求
type SearchAnnouncementsRequest struct {
	Tag  []string `json:"tag"`
	Lang string   `json:"lang"`
}

// SearchAnnouncements 按标签查询公告，lang默认为zh
// @Summary 按标签查询公告
// @Tags 公告
// @Accept json
// @Produce json
// @Param query body SearchAnnouncementsRequest true "查询条件"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/announcements [post]
func (h *AnnouncementHandler) SearchAnnouncements(c *gin.Context) {
	var req SearchAnnouncementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, constants.ErrInvalidRequest)
		return
	}
	if req.Lang == "" {
		req.Lang = "zh"
	}

	list, err := h.announcementService.GetAnnouncements(c.Request.Context(), req.Tag, req.Lang)
	if err != nil {
		Error(c, h.logger, "查询公告", err)
		return
	}
	OK(c, constants.SuccessGet, list)
}

// GetAnnouncementByID 获取公告详情
// @Summary 获取公告详情
// @Tags 公告
// @Produce json
// @Param id path int true "公告ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/announcements/{id} [get]
func (h *AnnouncementHandler) GetAnnouncementByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		Fail(c, http.StatusBadRequest, constants.ErrInvalidAnnouncement)
		return
	}

	announcement, err := h.announcementService.GetAnnouncementByID(c.Request.Context(), id)
	if err != nil {
		Error(c, h.logger, "获取公告详情", err)
		return
	}
	OK(c, constants.SuccessGet, announcement)
}

// GetTagCounts 获取标签统计
// @Summary 获取标签统计
// @Tags 公告
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/tags [get]
func (h *AnnouncementHandler) GetTagCounts(c *gin.Context) {
	counts, err := h.announcementService.GetTagCounts(c.Request.Context())
	if err != nil {
		Error(c, h.logger, "获取标签统计", err)
		return
	}
	OK(c, constants.SuccessGet, counts)
}
