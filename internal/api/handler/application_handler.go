package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"announcehub/internal/constants"
	"announcehub/internal/middleware"
	"announcehub/internal/service"
	"announcehub/pkg/logger"
)

// ApplicationHandler 申请处理器
type ApplicationHandler struct {
	reviewService *service.ReviewService
	logger        *logger.Logger
}

// NewApplicationHandler 创建申请处理器实例
func NewApplicationHandler(reviewService *service.ReviewService, logger *logger.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// Submit 提交申请
// @Summary 提交公告申请
// @Tags 申请
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	input, ok := BindFields(c)
	if !ok {
		return
	}

	id, err := h.reviewService.Submit(c.Request.Context(), middleware.CurrentActor(c), input)
	if err != nil {
		Error(c, h.logger, "提交申请", err)
		return
	}
	OK(c, constants.SuccessCreate, gin.H{"application_id": id})
}

// ListAll 获取全部申请
// @Summary 获取全部申请
// @Tags 申请
// @Produce json
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/applications [get]
func (h *ApplicationHandler) ListAll(c *gin.Context) {
	apps, err := h.reviewService.ListAll(c.Request.Context())
	if err != nil {
		Error(c, h.logger, "获取申请列表", err)
		return
	}
	OK(c, constants.SuccessGet, apps)
}

// ListByUser 获取用户的申请
// @Summary 获取用户的申请
// @Tags 申请
// @Produce json
// @Param username path string true "用户名"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/user/applications/{username} [get]
func (h *ApplicationHandler) ListByUser(c *gin.Context) {
	apps, err := h.reviewService.ListByUser(c.Request.Context(), middleware.CurrentActor(c), c.Param("username"))
	if err != nil {
		Error(c, h.logger, "获取用户申请", err)
		return
	}
	OK(c, constants.SuccessGet, apps)
}

// Get 获取申请详情
func (h *ApplicationHandler) Get(c *gin.Context) {
	app, err := h.reviewService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		Error(c, h.logger, "获取申请详情", err)
		return
	}
	OK(c, constants.SuccessGet, app)
}

// Update 修改申请
func (h *ApplicationHandler) Update(c *gin.Context) {
	input, ok := BindFields(c)
	if !ok {
		return
	}

	app, err := h.reviewService.Update(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), input)
	if err != nil {
		Error(c, h.logger, "修改申请", err)
		return
	}
	OK(c, constants.SuccessUpdate, app)
}

// Delete 删除申请
func (h *ApplicationHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.reviewService.Delete(c.Request.Context(), middleware.CurrentActor(c), id); err != nil {
		Error(c, h.logger, "删除申请", err)
		return
	}
	OK(c, constants.SuccessDelete, gin.H{"application_id": id})
}

// ReviewRequest 审核请求，description可选
type ReviewRequest struct {
	Description string `json:"description"`
}

func bindReview(c *gin.Context) (ReviewRequest, bool) {
	var req ReviewRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, constants.ErrInvalidRequest)
		return req, false
	}
	return req, true
}

// Approve 通过申请
// @Summary 通过申请并发布为公告
// @Tags 申请
// @Accept json
// @Produce json
// @Param id path string true "申请ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/applications/{id}/approve [post]
func (h *ApplicationHandler) Approve(c *gin.Context) {
	req, ok := bindReview(c)
	if !ok {
		return
	}

	id, err := h.reviewService.Approve(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Description)
	if err != nil {
		Error(c, h.logger, "审核申请", err)
		return
	}
	OK(c, constants.SuccessApprove, gin.H{"id": id})
}

// Reject 拒绝申请
// @Summary 拒绝申请
// @Tags 申请
// @Accept json
// @Produce json
// @Param id path string true "申请ID"
// @Success 200 {object} map[string]interface{} "成功"
// @Router /api/v1/applications/{id}/reject [post]
func (h *ApplicationHandler) Reject(c *gin.Context) {
	req, ok := bindReview(c)
	if !ok {
		return
	}

	app, err := h.reviewService.Reject(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Description)
	if err != nil {
		Error(c, h.logger, "拒绝申请", err)
		return
	}
	OK(c, constants.SuccessReject, app)
}
