package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"announcehub/internal/api/handler"
	"announcehub/internal/constants"
	"announcehub/internal/service"
	"announcehub/pkg/logger"
)

// UserAdminHandler 审核员和封禁名单管理
type UserAdminHandler struct {
	authService *service.AuthService
	logger      *logger.Logger
}

// NewUserAdminHandler 创建用户管理处理器实例
func NewUserAdminHandler(authService *service.AuthService, logger *logger.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		authService: authService,
		logger:      logger,
	}
}

// UsernameRequest 用户名请求
type UsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// ListEditors 审核员列表
func (h *UserAdminHandler) ListEditors(c *gin.Context) {
	h.list(c, "获取审核员列表", h.authService.Editors)
}

// AddEditor 添加审核员
func (h *UserAdminHandler) AddEditor(c *gin.Context) {
	h.modify(c, "添加审核员", constants.SuccessCreate, h.authService.AddEditor)
}

// RemoveEditor 移除审核员
func (h *UserAdminHandler) RemoveEditor(c *gin.Context) {
	h.modify(c, "移除审核员", constants.SuccessDelete, h.authService.RemoveEditor)
}

// ListBanned 封禁列表
func (h *UserAdminHandler) ListBanned(c *gin.Context) {
	h.list(c, "获取封禁列表", h.authService.BannedUsers)
}

// Ban 封禁用户
func (h *UserAdminHandler) Ban(c *gin.Context) {
	h.modify(c, "封禁用户", constants.SuccessCreate, h.authService.Ban)
}

// Unban 解除封禁
func (h *UserAdminHandler) Unban(c *gin.Context) {
	h.modify(c, "解除封禁", constants.SuccessDelete, h.authService.Unban)
}

func (h *UserAdminHandler) list(c *gin.Context, action string, fn func(context.Context) ([]string, error)) {
	users, err := fn(c.Request.Context())
	if err != nil {
		handler.Error(c, h.logger, action, err)
		return
	}
	handler.OK(c, constants.SuccessGet, users)
}

// modify 用户名来自路径参数或请求体
func (h *UserAdminHandler) modify(c *gin.Context, action, msg string, fn func(context.Context, string) error) {
	username := c.Param("username")
	if username == "" {
		var req UsernameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handler.Fail(c, http.StatusBadRequest, constants.ErrInvalidParams)
			return
		}
		username = req.Username
	}

	if err := fn(c.Request.Context(), username); err != nil {
		handler.Error(c, h.logger, action, err)
		return
	}
	handler.OK(c, msg, gin.H{"username": username})
}
